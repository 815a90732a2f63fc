// Package queue defines message payloads exchanged over the message broker.
package queue

// MatchRecordedQueue is the durable queue match results are published to.
const MatchRecordedQueue = "match.recorded"

// MatchRecordedEvent is published when a finished match is stored. It
// carries the score so consumers can log or notify without querying the
// primary database; the standings consumer only needs CompetitionID.
type MatchRecordedEvent struct {
	MatchID       uint64 `json:"match_id"`
	CompetitionID uint64 `json:"competition_id"`
	HomeTeamID    uint64 `json:"home_team_id"`
	AwayTeamID    uint64 `json:"away_team_id"`
	HomeGoals     int    `json:"home_goals"`
	AwayGoals     int    `json:"away_goals"`
	RecordedAt    string `json:"recorded_at"`
}
