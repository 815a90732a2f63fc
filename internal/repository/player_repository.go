package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/football-club/internal/model"
)

// PlayerRepo encapsulates all database queries related to players.
type PlayerRepo struct{ db *sql.DB }

func NewPlayerRepo(db *sql.DB) *PlayerRepo { return &PlayerRepo{db: db} }

const playerColumns = `id, team_id, jersey_number, name, position, height, weight, birth_date,
	nationality, photo, biography, created_at, updated_at`

func scanPlayer(s interface{ Scan(...any) error }, p *model.Player) error {
	return s.Scan(&p.ID, &p.TeamID, &p.JerseyNumber, &p.Name, &p.Position, &p.Height, &p.Weight, &p.BirthDate,
		&p.Nationality, &p.Photo, &p.Biography, &p.CreatedAt, &p.UpdatedAt)
}

// Create inserts p. An unknown team_id yields ErrReference.
func (r *PlayerRepo) Create(ctx context.Context, p *model.Player) error {
	const q = `INSERT INTO players (team_id, jersey_number, name, position, height, weight, birth_date,
	                                nationality, photo, biography)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.TeamID, p.JerseyNumber, p.Name, p.Position, p.Height, p.Weight,
		p.BirthDate, p.Nationality, p.Photo, p.Biography)
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
	*p = *saved
	return nil
}

// Get returns ErrNotFound for an unknown id.
func (r *PlayerRepo) Get(ctx context.Context, id uint64) (*model.Player, error) {
	var p model.Player
	row := r.db.QueryRowContext(ctx, "SELECT "+playerColumns+" FROM players WHERE id = ?", id)
	if err := scanPlayer(row, &p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// List returns players matching f, ordered by id.
func (r *PlayerRepo) List(ctx context.Context, f model.PlayerFilter) ([]model.Player, error) {
	page := f.Page.Normalize()

	var (
		where []string
		args  []any
	)
	if f.TeamID != 0 {
		where = append(where, "team_id = ?")
		args = append(args, f.TeamID)
	}
	if f.Position != "" {
		where = append(where, "position = ?")
		args = append(args, strings.ToLower(f.Position))
	}
	q := "SELECT " + playerColumns + " FROM players"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, page.Limit, page.Skip)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Player{}
	for rows.Next() {
		var p model.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update writes every mutable column of p. team_id is not updated.
func (r *PlayerRepo) Update(ctx context.Context, p *model.Player) error {
	const q = `UPDATE players
	           SET jersey_number = ?, name = ?, position = ?, height = ?, weight = ?, birth_date = ?,
	               nationality = ?, photo = ?, biography = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, p.JerseyNumber, p.Name, p.Position, p.Height, p.Weight, p.BirthDate,
		p.Nationality, p.Photo, p.Biography, p.ID)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (r *PlayerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM players WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(res)
}
