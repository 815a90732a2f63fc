package service

import (
	"context"
	"time"

	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/model"
	"github.com/iliyamo/football-club/internal/queue"
)

// MatchWriter persists match records.
type MatchWriter interface {
	Create(ctx context.Context, m *model.MatchRecord) error
}

// EventPublisher sends match events to the broker.
type EventPublisher interface {
	PublishMatchRecorded(ctx context.Context, ev queue.MatchRecordedEvent) error
}

// Recomputer rebuilds a competition table.
type Recomputer interface {
	Recompute(ctx context.Context, competitionID uint64) error
}

// MatchService records results and keeps standings current, either
// through the broker or, when publishing fails, inline.
type MatchService struct {
	matches   MatchWriter
	publisher EventPublisher
	standings Recomputer
	log       logging.Logger
	now       func() time.Time
}

// NewMatchService wires the service. publisher may be nil, in which case
// standings are always recomputed inline.
func NewMatchService(matches MatchWriter, publisher EventPublisher, standings Recomputer, log logging.Logger) *MatchService {
	return &MatchService{matches: matches, publisher: publisher, standings: standings, log: log, now: time.Now}
}

// Record validates and stores m. A stored finished match always leads to
// an updated table; failure to update it is logged, not returned, since
// the match itself was saved.
func (s *MatchService) Record(ctx context.Context, m *model.MatchRecord) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.PlayedAt.IsZero() {
		m.PlayedAt = s.now().UTC()
	}
	if err := s.matches.Create(ctx, m); err != nil {
		return err
	}
	if m.Status != model.MatchFinished {
		return nil
	}

	if s.publisher != nil {
		ev := queue.MatchRecordedEvent{
			MatchID:       m.ID,
			CompetitionID: m.CompetitionID,
			HomeTeamID:    m.HomeTeamID,
			AwayTeamID:    m.AwayTeamID,
			HomeGoals:     m.HomeGoals,
			AwayGoals:     m.AwayGoals,
			RecordedAt:    s.now().UTC().Format(time.RFC3339),
		}
		err := s.publisher.PublishMatchRecorded(ctx, ev)
		if err == nil {
			return nil
		}
		s.log.Warn(ctx, "publish match event failed; recomputing inline", "match_id", m.ID, "error", err)
	}
	if err := s.standings.Recompute(ctx, m.CompetitionID); err != nil {
		s.log.Error(ctx, "recompute standings failed", "competition_id", m.CompetitionID, "error", err)
	}
	return nil
}
