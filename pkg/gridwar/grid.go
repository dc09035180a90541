package gridwar

import (
	"fmt"
	"sync"
)

// MapLayout describes the immutable geometry of a session's grid: its
// dimensions and the set of wall tiles. Layouts are shared between turns
// and goroutines; callers must not mutate a layout after NewMapLayout.
type MapLayout struct {
	Width  int
	Height int
	Walls  []Position

	wallSet map[Position]bool
}

// NewMapLayout builds a layout and indexes its wall set.
func NewMapLayout(width, height int, walls []Position) *MapLayout {
	m := &MapLayout{
		Width:   width,
		Height:  height,
		Walls:   walls,
		wallSet: make(map[Position]bool, len(walls)),
	}
	for _, w := range walls {
		m.wallSet[w] = true
	}
	return m
}

// InBounds reports whether pos lies on the grid.
func (m *MapLayout) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < m.Width && pos.Y >= 0 && pos.Y < m.Height
}

// IsWall reports whether pos is a wall tile.
func (m *MapLayout) IsWall(pos Position) bool {
	return m.wallSet[pos]
}

// OpenTiles returns every in-bounds, non-wall tile in row-major order.
func (m *MapLayout) OpenTiles() []Position {
	tiles := make([]Position, 0, m.Width*m.Height-len(m.Walls))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			pos := Position{x, y}
			if !m.wallSet[pos] {
				tiles = append(tiles, pos)
			}
		}
	}
	return tiles
}

// MapConfig couples a layout with the units placed on it at session init.
// The unit list carries the bases, starting pawns, and any pre-placed food
// with their ids already assigned.
type MapConfig struct {
	Layout *MapLayout
	Units  []Unit
}

// NewInitialState builds a session's starting state from a map config. The
// config must place exactly one base per player and pass the structural
// invariant checks; the units are copied so the config stays reusable.
func NewInitialState(cfg *MapConfig, startAt int64) (*GameState, error) {
	gs := &GameState{
		Units:   append([]Unit(nil), cfg.Units...),
		StartAt: startAt,
	}
	if err := CheckState(gs, cfg.Layout); err != nil {
		return nil, fmt.Errorf("map config: %w", err)
	}
	for _, p := range AllPlayers() {
		if gs.BaseOf(p) == nil {
			return nil, fmt.Errorf("map config places no base for %s", p)
		}
	}
	return gs, nil
}

// standardArena is the built-in 9x9 map: bases in opposite corners, one
// starting pawn each, and a rotationally symmetric wall pattern so neither
// player is favored.
const standardArena = `A........
a........
..#...#..
.........
...###...
.........
..#...#..
........b
........B
`

var (
	stdConfigOnce sync.Once
	stdConfigInst *MapConfig
)

// StandardConfig returns the built-in map config. The config is built once
// and cached; callers must not mutate it.
func StandardConfig() *MapConfig {
	stdConfigOnce.Do(func() {
		cfg, err := ParseArena(standardArena)
		if err != nil {
			panic("gridwar: built-in arena invalid: " + err.Error())
		}
		stdConfigInst = cfg
	})
	return stdConfigInst
}
