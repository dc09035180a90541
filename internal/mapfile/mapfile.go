// Package mapfile loads board definitions from disk: ".arena" ASCII
// templates and ".json" map documents using the wire shapes. Loaded
// configs are validated the same way a session would, so a broken map
// file fails at startup instead of at the first connect.
package mapfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// document is the on-disk JSON form of a map config.
type document struct {
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
	Walls  []protocol.Position `json:"walls"`
	Units  []protocol.Unit     `json:"units"`
}

// Load reads a map config from path, dispatching on the file extension.
func Load(path string) (*gridwar.MapConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}

	var cfg *gridwar.MapConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".arena":
		cfg, err = gridwar.ParseArena(string(data))
		if err != nil {
			return nil, fmt.Errorf("map file %s: %w", path, err)
		}
	case ".json":
		cfg, err = parseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("map file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("map file %s: unsupported extension %q", path, ext)
	}

	// A session would reject the config at its first connect; surface that
	// now instead.
	if _, err := gridwar.NewInitialState(cfg, 0); err != nil {
		return nil, fmt.Errorf("map file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrStandard loads path, or returns the built-in map when path is
// empty.
func LoadOrStandard(path string) (*gridwar.MapConfig, error) {
	if path == "" {
		return gridwar.StandardConfig(), nil
	}
	return Load(path)
}

func parseDocument(data []byte) (*gridwar.MapConfig, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("bad dimensions %dx%d", doc.Width, doc.Height)
	}

	walls := make([]gridwar.Position, 0, len(doc.Walls))
	for _, w := range doc.Walls {
		walls = append(walls, gridwar.Position{X: w.X, Y: w.Y})
	}
	units, err := protocol.ToUnits(doc.Units)
	if err != nil {
		return nil, err
	}
	return &gridwar.MapConfig{
		Layout: gridwar.NewMapLayout(doc.Width, doc.Height, walls),
		Units:  units,
	}, nil
}
