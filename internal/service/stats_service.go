package service

import (
	"context"
	"errors"

	"github.com/pellmont/gridwar/internal/model"
	"github.com/pellmont/gridwar/internal/repository"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrArchiveDisabled     = errors.New("match archive not configured")
	ErrLeaderboardDisabled = errors.New("leaderboard not configured")
)

// StatsService serves the read side of the REST surface: rankings, callsign
// stats, and the match archive.
type StatsService struct {
	archive repository.MatchArchive
	board   repository.Leaderboard
}

// NewStatsService creates a StatsService; archive and board may be nil when
// the corresponding store is not configured.
func NewStatsService(archive repository.MatchArchive, board repository.Leaderboard) *StatsService {
	return &StatsService{archive: archive, board: board}
}

// Leaderboard returns the top n callsigns by win count.
func (s *StatsService) Leaderboard(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if s.board == nil {
		return nil, ErrLeaderboardDisabled
	}
	return s.board.Top(ctx, n)
}

// CallsignStats returns one callsign's lifetime results.
func (s *StatsService) CallsignStats(ctx context.Context, callsign string) (*model.CallsignStats, error) {
	if s.board == nil {
		return nil, ErrLeaderboardDisabled
	}
	return s.board.Stats(ctx, callsign)
}

// RecentMatches returns the latest finished matches, newest first. The
// archive is authoritative; without it the leaderboard's capped summary
// list fills in.
func (s *StatsService) RecentMatches(ctx context.Context, limit int) ([]model.MatchRecord, error) {
	if s.archive != nil {
		return s.archive.RecentMatches(ctx, limit)
	}
	if s.board != nil {
		return s.board.RecentSummaries(ctx, limit)
	}
	return nil, ErrArchiveDisabled
}

// MatchByID returns one archived match.
func (s *StatsService) MatchByID(ctx context.Context, id int64) (*model.MatchRecord, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	rec, err := s.archive.MatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrMatchNotFound
	}
	return rec, nil
}
