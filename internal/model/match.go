package model

import "time"

// Match statuses.  Only finished matches count towards standings.
const (
	MatchInProgress = "in_progress"
	MatchFinished   = "finished"
)

// MatchRecord mirrors the `match_records` table.
type MatchRecord struct {
	ID            uint64    `json:"id"`
	CompetitionID uint64    `json:"competition_id"`
	HomeTeamID    uint64    `json:"home_team_id"`
	AwayTeamID    uint64    `json:"away_team_id"`
	HomeGoals     int       `json:"home_goals"`
	AwayGoals     int       `json:"away_goals"`
	Status        string    `json:"status"`
	PlayedAt      time.Time `json:"played_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (m *MatchRecord) Validate() error {
	if m.HomeTeamID == 0 || m.AwayTeamID == 0 {
		return invalid("home_team_id and away_team_id are required")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return invalid("a team cannot play itself")
	}
	if m.HomeGoals < 0 || m.AwayGoals < 0 {
		return invalid("goals cannot be negative")
	}
	switch m.Status {
	case "":
		m.Status = MatchFinished
	case MatchFinished, MatchInProgress:
	default:
		return invalid("status must be in_progress or finished")
	}
	return nil
}

// Standing is one row of a competition table (`standings`).
type Standing struct {
	CompetitionID  uint64    `json:"competition_id"`
	TeamID         uint64    `json:"team_id"`
	Rank           int       `json:"rank"`
	Played         int       `json:"played"`
	Won            int       `json:"won"`
	Drawn          int       `json:"drawn"`
	Lost           int       `json:"lost"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
	UpdatedAt      time.Time `json:"updated_at"`
}
