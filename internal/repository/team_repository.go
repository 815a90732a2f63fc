package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/football-club/internal/model"
)

// TeamRepo encapsulates all database queries related to teams.
type TeamRepo struct{ db *sql.DB }

func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

const teamColumns = `id, name, logo, home_ground, founded_year, description, phone, email, created_at, updated_at`

func scanTeam(s interface{ Scan(...any) error }, t *model.Team) error {
	return s.Scan(&t.ID, &t.Name, &t.Logo, &t.HomeGround, &t.FoundedYear, &t.Description,
		&t.Phone, &t.Email, &t.CreatedAt, &t.UpdatedAt)
}

// Create inserts t and reloads it so timestamps are populated. A
// duplicate name yields ErrConflict.
func (r *TeamRepo) Create(ctx context.Context, t *model.Team) error {
	const q = `INSERT INTO teams (name, logo, home_ground, founded_year, description, phone, email)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Logo, t.HomeGround, t.FoundedYear, t.Description, t.Phone, t.Email)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	saved, err := r.Get(ctx, uint64(id))
	if err != nil {
		return err
	}
	*t = *saved
	return nil
}

// Get returns ErrNotFound for an unknown id.
func (r *TeamRepo) Get(ctx context.Context, id uint64) (*model.Team, error) {
	var t model.Team
	row := r.db.QueryRowContext(ctx, "SELECT "+teamColumns+" FROM teams WHERE id = ?", id)
	if err := scanTeam(row, &t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// List returns one page of teams ordered by id.
func (r *TeamRepo) List(ctx context.Context, page model.Page) ([]model.Team, error) {
	page = page.Normalize()
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+teamColumns+" FROM teams ORDER BY id LIMIT ? OFFSET ?", page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Team{}
	for rows.Next() {
		var t model.Team
		if err := scanTeam(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update writes every mutable column of t.
func (r *TeamRepo) Update(ctx context.Context, t *model.Team) error {
	const q = `UPDATE teams
	           SET name = ?, logo = ?, home_ground = ?, founded_year = ?, description = ?, phone = ?, email = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Logo, t.HomeGround, t.FoundedYear, t.Description, t.Phone, t.Email, t.ID)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// Delete removes the team. Its players go with it (players.team_id is
// ON DELETE CASCADE); match records referencing the team are kept from
// deletion by their RESTRICT foreign keys and surface as ErrReference.
func (r *TeamRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}
