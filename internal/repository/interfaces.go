// Package repository defines the storage ports of the server. Postgres
// backs the durable match archive, Redis the leaderboard; both are optional
// at runtime and the services above them must tolerate nil.
package repository

import (
	"context"

	"github.com/pellmont/gridwar/internal/model"
)

// MatchArchive defines durable match archive operations.
type MatchArchive interface {
	SaveMatch(ctx context.Context, rec *model.MatchRecord) (int64, error)
	RecentMatches(ctx context.Context, limit int) ([]model.MatchRecord, error)
	MatchByID(ctx context.Context, id int64) (*model.MatchRecord, error)
}

// Leaderboard defines the win-count ranking operations. A record with an
// empty winner counts as a draw for both callsigns.
type Leaderboard interface {
	RecordResult(ctx context.Context, rec *model.MatchRecord) error
	Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
	Stats(ctx context.Context, callsign string) (*model.CallsignStats, error)
	RecentSummaries(ctx context.Context, n int) ([]model.MatchRecord, error)
}
