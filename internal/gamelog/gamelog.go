// Package gamelog persists finished games as standalone JSON documents for
// the replay viewer. A log carries everything a replay needs: the board, the
// players, the verdict, and the full delta history.
package gamelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pellmont/gridwar/internal/protocol"
)

// GameLog is the on-disk document, one per finished game.
type GameLog struct {
	// Players maps player ids to callsigns.
	Players       map[string]string   `json:"players"`
	MapDimensions protocol.Dimension  `json:"mapDimensions"`
	Walls         []protocol.Position `json:"walls"`
	// Winner is null on a draw.
	Winner    *string          `json:"winner"`
	Timestamp int64            `json:"timestamp"`
	Turns     []protocol.Delta `json:"turns"`
	// Aborted marks games cut short rather than played to a verdict. The
	// log is still replayable, but the null winner is not a draw.
	Aborted bool `json:"aborted,omitempty"`
}

// FileName returns the canonical name for a log with the given end-of-game
// timestamp.
func FileName(epochMs int64) string {
	return fmt.Sprintf("game_%d.json", epochMs)
}

// Write serializes g under dir, creating the directory if needed, and
// returns the path of the written file.
func Write(dir string, g *GameLog) (string, error) {
	if g == nil {
		return "", fmt.Errorf("nil game log")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create gamelog dir: %w", err)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal game log: %w", err)
	}

	path := filepath.Join(dir, FileName(g.Timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write game log: %w", err)
	}
	return path, nil
}

// Load reads a log written by Write.
func Load(path string) (*GameLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game log: %w", err)
	}
	var g GameLog
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse game log %s: %w", path, err)
	}
	return &g, nil
}
