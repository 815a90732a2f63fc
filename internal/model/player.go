package model

import (
	"strings"
	"time"
)

// Positions accepted for Player.Position.
var Positions = map[string]bool{
	"goalkeeper": true,
	"defender":   true,
	"midfielder": true,
	"forward":    true,
}

// Player mirrors the `players` table.
type Player struct {
	ID           uint64    `json:"id"`
	TeamID       uint64    `json:"team_id"`
	JerseyNumber *int      `json:"jersey_number,omitempty"`
	Name         string    `json:"name"`
	Position     string    `json:"position"`
	Height       *float64  `json:"height,omitempty"` // cm
	Weight       *float64  `json:"weight,omitempty"` // kg
	BirthDate    *Date     `json:"birth_date,omitempty"`
	Nationality  *string   `json:"nationality,omitempty"`
	Photo        *string   `json:"photo,omitempty"`
	Biography    *string   `json:"biography,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PlayerPatch carries a partial update.  A player cannot change team
// through a patch; TeamID is set on create only.
type PlayerPatch struct {
	Name         *string  `json:"name"`
	Position     *string  `json:"position"`
	JerseyNumber *int     `json:"jersey_number"`
	Height       *float64 `json:"height"`
	Weight       *float64 `json:"weight"`
	BirthDate    *Date    `json:"birth_date"`
	Nationality  *string  `json:"nationality"`
	Biography    *string  `json:"biography"`
	Photo        *string  `json:"photo"`
}

// PlayerFilter narrows a player listing.  Zero values mean "any".
type PlayerFilter struct {
	TeamID   uint64
	Position string
	Page
}

func (p *Player) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Position = strings.ToLower(strings.TrimSpace(p.Position))
	if p.Name == "" {
		return invalid("name is required")
	}
	if p.TeamID == 0 {
		return invalid("team_id is required")
	}
	if !Positions[p.Position] {
		return invalid("position must be one of goalkeeper, defender, midfielder, forward")
	}
	if p.JerseyNumber != nil && (*p.JerseyNumber < 1 || *p.JerseyNumber > 99) {
		return invalid("jersey_number must be between 1 and 99")
	}
	if p.Height != nil && *p.Height <= 0 {
		return invalid("height must be positive")
	}
	if p.Weight != nil && *p.Weight <= 0 {
		return invalid("weight must be positive")
	}
	return checkLengths(
		lengthRule{"name", &p.Name, 100},
		lengthRule{"nationality", p.Nationality, 50},
		lengthRule{"photo", p.Photo, 255},
	)
}

func (pp PlayerPatch) Apply(p *Player) error {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Position != nil {
		p.Position = *pp.Position
	}
	if pp.JerseyNumber != nil {
		p.JerseyNumber = pp.JerseyNumber
	}
	if pp.Height != nil {
		p.Height = pp.Height
	}
	if pp.Weight != nil {
		p.Weight = pp.Weight
	}
	if pp.BirthDate != nil {
		p.BirthDate = pp.BirthDate
	}
	if pp.Nationality != nil {
		p.Nationality = pp.Nationality
	}
	if pp.Biography != nil {
		p.Biography = pp.Biography
	}
	if pp.Photo != nil {
		p.Photo = pp.Photo
	}
	return p.Validate()
}
