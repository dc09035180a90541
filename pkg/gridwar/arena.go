package gridwar

import (
	"fmt"
	"strings"
)

// Arena templates are ASCII grids, one glyph per tile: '#' wall, '.' floor,
// 'A'/'a' player1 base/pawn, 'B'/'b' player2 base/pawn, '*' food. Rows must
// all be the same width. The tutorial driver and the replay viewer render
// states back into the same format.

// ParseArena parses an arena template into a map config. Bases take ids 1
// (player1) and 2 (player2); the remaining units are numbered from 3 in
// row-major scan order. A template may omit a base (a rendered mid-game
// state can lack one), but NewInitialState will reject such a config.
func ParseArena(s string) (*MapConfig, error) {
	rows := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(rows) == 0 || rows[0] == "" {
		return nil, fmt.Errorf("empty arena template")
	}
	width := len(rows[0])

	var walls []Position
	var bases [2]*Position
	var rest []Unit
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("arena row %d is %d wide, want %d", y, len(row), width)
		}
		for x, glyph := range []byte(row) {
			pos := Position{x, y}
			switch glyph {
			case '.':
			case '#':
				walls = append(walls, pos)
			case 'A', 'B':
				side := int(glyph - 'A')
				if bases[side] != nil {
					return nil, fmt.Errorf("arena places two %c bases", glyph)
				}
				p := pos
				bases[side] = &p
			case 'a':
				rest = append(rest, Unit{Owner: Player1, Type: Pawn, Pos: pos})
			case 'b':
				rest = append(rest, Unit{Owner: Player2, Type: Pawn, Pos: pos})
			case '*':
				rest = append(rest, Unit{Type: Food, Pos: pos})
			default:
				return nil, fmt.Errorf("arena glyph %q at (%d,%d)", glyph, x, y)
			}
		}
	}

	cfg := &MapConfig{Layout: NewMapLayout(width, len(rows), walls)}
	if bases[0] != nil {
		cfg.Units = append(cfg.Units, Unit{ID: 1, Owner: Player1, Type: Base, Pos: *bases[0]})
	}
	if bases[1] != nil {
		cfg.Units = append(cfg.Units, Unit{ID: 2, Owner: Player2, Type: Base, Pos: *bases[1]})
	}
	nextID := 3
	for _, u := range rest {
		u.ID = nextID
		nextID++
		cfg.Units = append(cfg.Units, u)
	}
	return cfg, nil
}

// RenderState draws a state as an arena template. Stacked tiles show one
// glyph with precedence base > pawn > food, so a render of a state with
// stacked pawns does not parse back to the identical state.
func RenderState(gs *GameState, m *MapLayout) string {
	grid := make([][]byte, m.Height)
	for y := range grid {
		grid[y] = make([]byte, m.Width)
		for x := range grid[y] {
			if m.IsWall(Position{x, y}) {
				grid[y][x] = '#'
			} else {
				grid[y][x] = '.'
			}
		}
	}
	for _, u := range gs.Units {
		if !m.InBounds(u.Pos) {
			continue
		}
		cur := grid[u.Pos.Y][u.Pos.X]
		if cur == 'A' || cur == 'B' {
			continue
		}
		switch {
		case u.Type == Base && u.Owner == Player1:
			grid[u.Pos.Y][u.Pos.X] = 'A'
		case u.Type == Base && u.Owner == Player2:
			grid[u.Pos.Y][u.Pos.X] = 'B'
		case u.Type == Pawn && u.Owner == Player1:
			grid[u.Pos.Y][u.Pos.X] = 'a'
		case u.Type == Pawn && u.Owner == Player2:
			grid[u.Pos.Y][u.Pos.X] = 'b'
		case u.Type == Food && cur == '.':
			grid[u.Pos.Y][u.Pos.X] = '*'
		}
	}
	var b strings.Builder
	b.Grow((m.Width + 1) * m.Height)
	for _, row := range grid {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}
