package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pellmont/gridwar/internal/model"
)

const matchSchema = `
CREATE TABLE IF NOT EXISTS matches (
	id          BIGSERIAL PRIMARY KEY,
	player1     TEXT NOT NULL,
	player2     TEXT NOT NULL,
	winner      TEXT,
	turns       INTEGER NOT NULL,
	duration_ms BIGINT NOT NULL,
	log_path    TEXT,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS matches_finished_at_idx ON matches (finished_at DESC);
`

// MatchRepo handles match archive database operations.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// EnsureSchema creates the matches table if it does not exist.
func (r *MatchRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, matchSchema); err != nil {
		return fmt.Errorf("ensure match schema: %w", err)
	}
	return nil
}

// SaveMatch inserts a finished match and returns its id. An empty winner is
// stored as NULL (a draw).
func (r *MatchRepo) SaveMatch(ctx context.Context, rec *model.MatchRecord) (int64, error) {
	winner := sql.NullString{String: rec.Winner, Valid: rec.Winner != ""}
	logPath := sql.NullString{String: rec.LogPath, Valid: rec.LogPath != ""}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO matches (player1, player2, winner, turns, duration_ms, log_path, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		rec.Player1, rec.Player2, winner, rec.Turns, rec.DurationMs, logPath, rec.StartedAt, rec.FinishedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save match: %w", err)
	}
	return id, nil
}

// RecentMatches returns the most recently finished matches, newest first.
func (r *MatchRepo) RecentMatches(ctx context.Context, limit int) ([]model.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player1, player2, winner, turns, duration_ms, log_path, started_at, finished_at
		 FROM matches ORDER BY finished_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent matches: %w", err)
	}
	defer rows.Close()

	var recs []model.MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// MatchByID returns one archived match, or nil when the id is unknown.
func (r *MatchRepo) MatchByID(ctx context.Context, id int64) (*model.MatchRecord, error) {
	rec, err := scanMatch(r.db.QueryRowContext(ctx,
		`SELECT id, player1, player2, winner, turns, duration_ms, log_path, started_at, finished_at
		 FROM matches WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	return rec, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*model.MatchRecord, error) {
	var rec model.MatchRecord
	var winner, logPath sql.NullString
	if err := row.Scan(&rec.ID, &rec.Player1, &rec.Player2, &winner, &rec.Turns,
		&rec.DurationMs, &logPath, &rec.StartedAt, &rec.FinishedAt); err != nil {
		return nil, err
	}
	rec.Winner = winner.String
	rec.LogPath = logPath.String
	return &rec, nil
}
