package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/iliyamo/football-club/internal/model"
)

// Points awarded per result.
const (
	PointsWin  = 3
	PointsDraw = 1
)

// ComputeStandings builds the table for one competition from its match
// records. Only finished matches count. Rows are ordered by points, then
// goal difference, then goals scored, then team id, and ranked 1..n.
func ComputeStandings(competitionID uint64, matches []model.MatchRecord) []model.Standing {
	rows := map[uint64]*model.Standing{}
	row := func(team uint64) *model.Standing {
		s, ok := rows[team]
		if !ok {
			s = &model.Standing{CompetitionID: competitionID, TeamID: team}
			rows[team] = s
		}
		return s
	}

	for _, m := range matches {
		if m.Status != model.MatchFinished {
			continue
		}
		home, away := row(m.HomeTeamID), row(m.AwayTeamID)
		home.Played++
		away.Played++
		home.GoalsFor += m.HomeGoals
		home.GoalsAgainst += m.AwayGoals
		away.GoalsFor += m.AwayGoals
		away.GoalsAgainst += m.HomeGoals
		switch {
		case m.HomeGoals > m.AwayGoals:
			home.Won++
			away.Lost++
		case m.HomeGoals < m.AwayGoals:
			away.Won++
			home.Lost++
		default:
			home.Drawn++
			away.Drawn++
		}
	}

	table := make([]model.Standing, 0, len(rows))
	for _, s := range rows {
		s.GoalDifference = s.GoalsFor - s.GoalsAgainst
		s.Points = s.Won*PointsWin + s.Drawn*PointsDraw
		table = append(table, *s)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
	for i := range table {
		table[i].Rank = i + 1
	}
	return table
}

// MatchReader lists a competition's matches.
type MatchReader interface {
	ListByCompetition(ctx context.Context, competitionID uint64) ([]model.MatchRecord, error)
}

// StandingStore replaces a competition's table atomically.
type StandingStore interface {
	ReplaceForCompetition(ctx context.Context, competitionID uint64, table []model.Standing) error
}

// StandingsService recomputes tables from the stored matches. A
// recomputation always starts from scratch, so running it twice for the
// same event is harmless.
type StandingsService struct {
	matches   MatchReader
	standings StandingStore
}

func NewStandingsService(matches MatchReader, standings StandingStore) *StandingsService {
	return &StandingsService{matches: matches, standings: standings}
}

// Recompute rebuilds and stores the table for competitionID.
func (s *StandingsService) Recompute(ctx context.Context, competitionID uint64) error {
	matches, err := s.matches.ListByCompetition(ctx, competitionID)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	table := ComputeStandings(competitionID, matches)
	if err := s.standings.ReplaceForCompetition(ctx, competitionID, table); err != nil {
		return fmt.Errorf("store standings: %w", err)
	}
	return nil
}
