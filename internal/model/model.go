// Package model holds the shared data shapes of the match archive.
package model

import "time"

// MatchRecord is one archived game. Only finished games are recorded;
// in-flight state never touches the archive.
type MatchRecord struct {
	ID         int64     `json:"id"`
	Player1    string    `json:"player1"`
	Player2    string    `json:"player2"`
	Winner     string    `json:"winner,omitempty"` // empty on a draw
	Turns      int       `json:"turns"`
	DurationMs int64     `json:"duration_ms"`
	LogPath    string    `json:"log_path,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// CallsignStats aggregates one callsign's lifetime results on the
// leaderboard.
type CallsignStats struct {
	Callsign string `json:"callsign"`
	Wins     int64  `json:"wins"`
	Losses   int64  `json:"losses"`
	Draws    int64  `json:"draws"`
}

// LeaderboardEntry is one row of the win-count ranking.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Callsign string `json:"callsign"`
	Wins     int64  `json:"wins"`
}
