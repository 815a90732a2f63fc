package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/football-club/internal/model"
)

// MatchRepo stores match results.
type MatchRepo struct{ db *sql.DB }

func NewMatchRepo(db *sql.DB) *MatchRepo { return &MatchRepo{db: db} }

const matchColumns = `id, competition_id, home_team_id, away_team_id, home_goals, away_goals, status,
	played_at, created_at`

// Create inserts m and sets m.ID. Unknown competition or team ids yield
// ErrReference.
func (r *MatchRepo) Create(ctx context.Context, m *model.MatchRecord) error {
	const q = `INSERT INTO match_records (competition_id, home_team_id, away_team_id, home_goals, away_goals,
	                                      status, played_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.CompetitionID, m.HomeTeamID, m.AwayTeamID, m.HomeGoals, m.AwayGoals,
		m.Status, m.PlayedAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListByCompetition returns every match of a competition in play order.
func (r *MatchRepo) ListByCompetition(ctx context.Context, competitionID uint64) ([]model.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+matchColumns+" FROM match_records WHERE competition_id = ? ORDER BY played_at, id",
		competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MatchRecord{}
	for rows.Next() {
		var m model.MatchRecord
		if err := rows.Scan(&m.ID, &m.CompetitionID, &m.HomeTeamID, &m.AwayTeamID, &m.HomeGoals, &m.AwayGoals,
			&m.Status, &m.PlayedAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
