package model

import (
	"strings"
	"time"
)

// Team mirrors the `teams` table.  Deleting a team cascades to its
// players (FK ON DELETE CASCADE).
type Team struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Logo        *string   `json:"logo,omitempty"`
	HomeGround  *string   `json:"home_ground,omitempty"`
	FoundedYear *int      `json:"founded_year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Email       *string   `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeamPatch carries a partial update.  Nil fields are left untouched.
type TeamPatch struct {
	Name        *string `json:"name"`
	Logo        *string `json:"logo"`
	HomeGround  *string `json:"home_ground"`
	FoundedYear *int    `json:"founded_year"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
}

// Validate checks a complete team before insert.
func (t *Team) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return invalid("name is required")
	}
	if t.FoundedYear != nil && (*t.FoundedYear < 1800 || *t.FoundedYear > time.Now().Year()) {
		return invalid("founded_year out of range")
	}
	return checkLengths(
		lengthRule{"name", &t.Name, 100},
		lengthRule{"logo", t.Logo, 255},
		lengthRule{"home_ground", t.HomeGround, 100},
		lengthRule{"phone", t.Phone, 20},
		lengthRule{"email", t.Email, 255},
	)
}

// Apply copies the set fields of p onto t and re-validates the result.
func (p TeamPatch) Apply(t *Team) error {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Logo != nil {
		t.Logo = p.Logo
	}
	if p.HomeGround != nil {
		t.HomeGround = p.HomeGround
	}
	if p.FoundedYear != nil {
		t.FoundedYear = p.FoundedYear
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.Phone != nil {
		t.Phone = p.Phone
	}
	if p.Email != nil {
		t.Email = p.Email
	}
	return t.Validate()
}
