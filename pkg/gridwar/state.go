package gridwar

import "fmt"

// Position is a tile coordinate on the grid. X grows east, Y grows south,
// with (0,0) the north-west corner.
type Position struct {
	X int
	Y int
}

// Step returns the tile one step from p in the given direction.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{p.X + dx, p.Y + dy}
}

// GameState is a complete snapshot of the grid at the start of a turn.
// Snapshots are replaced atomically by the state updater; nothing mutates
// a published state.
type GameState struct {
	Units   []Unit
	StartAt int64 // session start, epoch milliseconds
}

// UnitByID returns the unit with the given id, or nil if none is alive.
func (gs *GameState) UnitByID(id int) *Unit {
	for i := range gs.Units {
		if gs.Units[i].ID == id {
			return &gs.Units[i]
		}
	}
	return nil
}

// UnitsAt returns all units occupying the given tile.
func (gs *GameState) UnitsAt(pos Position) []Unit {
	var units []Unit
	for _, u := range gs.Units {
		if u.Pos == pos {
			units = append(units, u)
		}
	}
	return units
}

// UnitsOf returns all units belonging to the given player.
func (gs *GameState) UnitsOf(player PlayerID) []Unit {
	var units []Unit
	for _, u := range gs.Units {
		if u.Owner == player {
			units = append(units, u)
		}
	}
	return units
}

// PawnsOf returns all pawns belonging to the given player.
func (gs *GameState) PawnsOf(player PlayerID) []Unit {
	var pawns []Unit
	for _, u := range gs.Units {
		if u.Owner == player && u.Type == Pawn {
			pawns = append(pawns, u)
		}
	}
	return pawns
}

// PawnCount returns the number of pawns owned by the given player.
func (gs *GameState) PawnCount(player PlayerID) int {
	count := 0
	for _, u := range gs.Units {
		if u.Owner == player && u.Type == Pawn {
			count++
		}
	}
	return count
}

// BaseOf returns the player's base, or nil if it has been destroyed.
func (gs *GameState) BaseOf(player PlayerID) *Unit {
	for i := range gs.Units {
		if gs.Units[i].Owner == player && gs.Units[i].Type == Base {
			return &gs.Units[i]
		}
	}
	return nil
}

// Occupied reports whether any unit sits on the given tile.
func (gs *GameState) Occupied(pos Position) bool {
	for _, u := range gs.Units {
		if u.Pos == pos {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the GameState. Mutations to the clone do not
// affect the original, which the updater relies on to keep published
// snapshots immutable.
func (gs *GameState) Clone() *GameState {
	c := &GameState{StartAt: gs.StartAt}
	if gs.Units != nil {
		c.Units = make([]Unit, len(gs.Units))
		copy(c.Units, gs.Units)
	}
	return c
}

// IDSource hands out monotonically increasing unit ids for a session.
// It is touched only from the session's coordinator goroutine.
type IDSource struct {
	next int
}

// NewIDSource returns an IDSource whose first id is one past the highest
// id present in the initial units.
func NewIDSource(initial []Unit) *IDSource {
	s := &IDSource{next: 1}
	for _, u := range initial {
		if u.ID >= s.next {
			s.next = u.ID + 1
		}
	}
	return s
}

// Next returns the next unused unit id.
func (s *IDSource) Next() int {
	id := s.next
	s.next++
	return id
}

// CheckState verifies the structural invariants that must hold after every
// turn: every unit on-map and off walls, no two enemy pawns sharing a tile,
// no same-owner overlap other than pawn stacks, at most one base per player,
// and food unowned. A non-nil error means the state is corrupt and the
// session must terminate.
func CheckState(gs *GameState, m *MapLayout) error {
	bases := make(map[PlayerID]int)
	for _, u := range gs.Units {
		if !m.InBounds(u.Pos) {
			return fmt.Errorf("unit %d off-map at (%d,%d)", u.ID, u.Pos.X, u.Pos.Y)
		}
		if m.IsWall(u.Pos) {
			return fmt.Errorf("unit %d on wall at (%d,%d)", u.ID, u.Pos.X, u.Pos.Y)
		}
		switch u.Type {
		case Food:
			if u.Owner != NoPlayer {
				return fmt.Errorf("food %d has owner %s", u.ID, u.Owner)
			}
		default:
			if u.Owner != Player1 && u.Owner != Player2 {
				return fmt.Errorf("unit %d has no owner", u.ID)
			}
		}
		if u.Type == Base {
			bases[u.Owner]++
			if bases[u.Owner] > 1 {
				return fmt.Errorf("player %s has more than one base", u.Owner)
			}
		}
	}
	for i, a := range gs.Units {
		for _, b := range gs.Units[i+1:] {
			if a.Pos != b.Pos {
				continue
			}
			if a.Type == Pawn && b.Type == Pawn && a.Owner == b.Owner {
				continue // friendly pawns may stack
			}
			if a.Type == Pawn && b.Type == Pawn {
				return fmt.Errorf("enemy pawns %d and %d share (%d,%d)", a.ID, b.ID, a.Pos.X, a.Pos.Y)
			}
		}
	}
	return nil
}
