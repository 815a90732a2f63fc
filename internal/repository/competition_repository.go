package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/football-club/internal/model"
)

// CompetitionRepo encapsulates all database queries related to competitions.
type CompetitionRepo struct{ db *sql.DB }

func NewCompetitionRepo(db *sql.DB) *CompetitionRepo { return &CompetitionRepo{db: db} }

const competitionColumns = `id, name, competition_type, season, description, start_date, end_date, rules,
	created_at, updated_at`

func scanCompetition(s interface{ Scan(...any) error }, c *model.Competition) error {
	return s.Scan(&c.ID, &c.Name, &c.CompetitionType, &c.Season, &c.Description, &c.StartDate, &c.EndDate,
		&c.Rules, &c.CreatedAt, &c.UpdatedAt)
}

// Create inserts c. A duplicate name yields ErrConflict.
func (r *CompetitionRepo) Create(ctx context.Context, c *model.Competition) error {
	const q = `INSERT INTO competitions (name, competition_type, season, description, start_date, end_date, rules)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.CompetitionType, c.Season, c.Description,
		c.StartDate, c.EndDate, c.Rules)
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
	*c = *saved
	return nil
}

func (r *CompetitionRepo) Get(ctx context.Context, id uint64) (*model.Competition, error) {
	var c model.Competition
	row := r.db.QueryRowContext(ctx, "SELECT "+competitionColumns+" FROM competitions WHERE id = ?", id)
	if err := scanCompetition(row, &c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// List returns one page of competitions, newest start date first.
func (r *CompetitionRepo) List(ctx context.Context, page model.Page) ([]model.Competition, error) {
	page = page.Normalize()
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+competitionColumns+" FROM competitions ORDER BY start_date DESC, id LIMIT ? OFFSET ?",
		page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Competition{}
	for rows.Next() {
		var c model.Competition
		if err := scanCompetition(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CompetitionRepo) Update(ctx context.Context, c *model.Competition) error {
	const q = `UPDATE competitions
	           SET name = ?, competition_type = ?, season = ?, description = ?, start_date = ?, end_date = ?,
	               rules = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.CompetitionType, c.Season, c.Description,
		c.StartDate, c.EndDate, c.Rules, c.ID)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// Delete removes the competition together with its match records and
// standings (both ON DELETE CASCADE).
func (r *CompetitionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM competitions WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(res)
}
