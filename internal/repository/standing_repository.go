package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/football-club/internal/model"
)

// StandingRepo stores the computed competition tables.
type StandingRepo struct{ db *sql.DB }

func NewStandingRepo(db *sql.DB) *StandingRepo { return &StandingRepo{db: db} }

// ListByCompetition returns the table ordered by rank.
func (r *StandingRepo) ListByCompetition(ctx context.Context, competitionID uint64) ([]model.Standing, error) {
	const q = `SELECT competition_id, team_id, ` + "`rank`" + `, played, won, drawn, lost,
	                  goals_for, goals_against, goal_difference, points, updated_at
	           FROM standings WHERE competition_id = ? ORDER BY ` + "`rank`"
	rows, err := r.db.QueryContext(ctx, q, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Standing{}
	for rows.Next() {
		var s model.Standing
		if err := rows.Scan(&s.CompetitionID, &s.TeamID, &s.Rank, &s.Played, &s.Won, &s.Drawn, &s.Lost,
			&s.GoalsFor, &s.GoalsAgainst, &s.GoalDifference, &s.Points, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReplaceForCompetition swaps the whole table of a competition in one
// transaction, so readers never observe a half-written table.
func (r *StandingRepo) ReplaceForCompetition(ctx context.Context, competitionID uint64, table []model.Standing) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM standings WHERE competition_id = ?", competitionID); err != nil {
		return err
	}
	const q = `INSERT INTO standings (competition_id, team_id, ` + "`rank`" + `, played, won, drawn, lost,
	                                  goals_for, goals_against, goal_difference, points)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, s := range table {
		if _, err = tx.ExecContext(ctx, q, competitionID, s.TeamID, s.Rank, s.Played, s.Won, s.Drawn, s.Lost,
			s.GoalsFor, s.GoalsAgainst, s.GoalDifference, s.Points); err != nil {
			return translate(err)
		}
	}
	return nil
}
