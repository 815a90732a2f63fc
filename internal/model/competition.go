package model

import (
	"strings"
	"time"
)

// Competition types.
const (
	CompetitionLeague = "league"
	CompetitionCup    = "cup"
)

// Competition mirrors the `competitions` table.  Deleting a competition
// cascades to its match records and standings.
type Competition struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	CompetitionType string    `json:"competition_type"`
	Season          string    `json:"season"`
	Description     *string   `json:"description,omitempty"`
	StartDate       Date      `json:"start_date"`
	EndDate         Date      `json:"end_date"`
	Rules           *string   `json:"rules,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CompetitionPatch struct {
	Name            *string `json:"name"`
	CompetitionType *string `json:"competition_type"`
	Season          *string `json:"season"`
	Description     *string `json:"description"`
	StartDate       *Date   `json:"start_date"`
	EndDate         *Date   `json:"end_date"`
	Rules           *string `json:"rules"`
}

func (c *Competition) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.CompetitionType = strings.ToLower(strings.TrimSpace(c.CompetitionType))
	c.Season = strings.TrimSpace(c.Season)
	if c.Name == "" {
		return invalid("name is required")
	}
	if c.CompetitionType != CompetitionLeague && c.CompetitionType != CompetitionCup {
		return invalid("competition_type must be league or cup")
	}
	if c.Season == "" {
		return invalid("season is required")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return invalid("start_date and end_date are required")
	}
	if c.EndDate.Before(c.StartDate.Time) {
		return invalid("end_date must not be before start_date")
	}
	return checkLengths(
		lengthRule{"name", &c.Name, 100},
		lengthRule{"season", &c.Season, 20},
	)
}

func (p CompetitionPatch) Apply(c *Competition) error {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.CompetitionType != nil {
		c.CompetitionType = *p.CompetitionType
	}
	if p.Season != nil {
		c.Season = *p.Season
	}
	if p.Description != nil {
		c.Description = p.Description
	}
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.Rules != nil {
		c.Rules = p.Rules
	}
	return c.Validate()
}
