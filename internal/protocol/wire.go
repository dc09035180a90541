package protocol

import (
	"fmt"

	"github.com/pellmont/gridwar/pkg/gridwar"
)

// Position is a tile coordinate on the wire.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dimension is the grid size.
type Dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Map describes the immutable board: its size and wall tiles.
type Map struct {
	Dimension Dimension  `json:"dimension"`
	Walls     []Position `json:"walls"`
}

// Unit is one unit on the wire. Owner is null exactly for food.
type Unit struct {
	ID       int      `json:"id"`
	Owner    *string  `json:"owner"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
}

// GameState is a full snapshot of the board.
type GameState struct {
	Units   []Unit `json:"units"`
	StartAt int64  `json:"startAt"`
}

// Delta is the change one turn made.
type Delta struct {
	AddedOrModified []Unit `json:"addedOrModified"`
	Removed         []int  `json:"removed"`
	Timestamp       int64  `json:"timestamp"`
}

// FromMap converts an engine layout to its wire form.
func FromMap(m *gridwar.MapLayout) Map {
	walls := make([]Position, 0, len(m.Walls))
	for _, w := range m.Walls {
		walls = append(walls, Position{w.X, w.Y})
	}
	return Map{
		Dimension: Dimension{Width: m.Width, Height: m.Height},
		Walls:     walls,
	}
}

// ToLayout converts a wire map back into an engine layout.
func (m Map) ToLayout() *gridwar.MapLayout {
	walls := make([]gridwar.Position, 0, len(m.Walls))
	for _, w := range m.Walls {
		walls = append(walls, gridwar.Position{X: w.X, Y: w.Y})
	}
	return gridwar.NewMapLayout(m.Dimension.Width, m.Dimension.Height, walls)
}

// FromUnit converts an engine unit to its wire form.
func FromUnit(u gridwar.Unit) Unit {
	w := Unit{
		ID:       u.ID,
		Type:     u.Type.String(),
		Position: Position{u.Pos.X, u.Pos.Y},
	}
	if u.Owner != gridwar.NoPlayer {
		owner := string(u.Owner)
		w.Owner = &owner
	}
	return w
}

// ToUnit converts a wire unit back, rejecting unknown types and owner/type
// combinations the engine would never produce.
func (u Unit) ToUnit() (gridwar.Unit, error) {
	typ, ok := gridwar.ParseUnitType(u.Type)
	if !ok {
		return gridwar.Unit{}, fmt.Errorf("unit %d: unknown type %q", u.ID, u.Type)
	}
	out := gridwar.Unit{
		ID:   u.ID,
		Type: typ,
		Pos:  gridwar.Position{X: u.Position.X, Y: u.Position.Y},
	}
	if u.Owner != nil {
		switch owner := gridwar.PlayerID(*u.Owner); owner {
		case gridwar.Player1, gridwar.Player2:
			out.Owner = owner
		default:
			return gridwar.Unit{}, fmt.Errorf("unit %d: unknown owner %q", u.ID, *u.Owner)
		}
	}
	if (out.Owner == gridwar.NoPlayer) != (typ == gridwar.Food) {
		return gridwar.Unit{}, fmt.Errorf("unit %d: %s with owner %q", u.ID, u.Type, out.Owner)
	}
	return out, nil
}

// FromUnits converts a unit slice to wire form.
func FromUnits(units []gridwar.Unit) []Unit {
	out := make([]Unit, 0, len(units))
	for _, u := range units {
		out = append(out, FromUnit(u))
	}
	return out
}

// ToUnits converts a wire unit slice back.
func ToUnits(units []Unit) ([]gridwar.Unit, error) {
	out := make([]gridwar.Unit, 0, len(units))
	for _, u := range units {
		converted, err := u.ToUnit()
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// FromState converts an engine state to wire form.
func FromState(gs *gridwar.GameState) GameState {
	return GameState{
		Units:   FromUnits(gs.Units),
		StartAt: gs.StartAt,
	}
}

// ToState converts a wire state back.
func (s GameState) ToState() (*gridwar.GameState, error) {
	units, err := ToUnits(s.Units)
	if err != nil {
		return nil, err
	}
	return &gridwar.GameState{Units: units, StartAt: s.StartAt}, nil
}

// FromDelta converts an engine delta to wire form.
func FromDelta(d gridwar.Delta) Delta {
	out := Delta{
		AddedOrModified: FromUnits(d.AddedOrModified),
		Timestamp:       d.Timestamp,
	}
	if len(d.Removed) > 0 {
		out.Removed = append([]int(nil), d.Removed...)
	}
	return out
}

// FromDeltas converts a delta history to wire form.
func FromDeltas(deltas []gridwar.Delta) []Delta {
	out := make([]Delta, 0, len(deltas))
	for _, d := range deltas {
		out = append(out, FromDelta(d))
	}
	return out
}

// ToDelta converts a wire delta back.
func (d Delta) ToDelta() (gridwar.Delta, error) {
	units, err := ToUnits(d.AddedOrModified)
	if err != nil {
		return gridwar.Delta{}, err
	}
	out := gridwar.Delta{
		AddedOrModified: units,
		Timestamp:       d.Timestamp,
	}
	if len(d.Removed) > 0 {
		out.Removed = append([]int(nil), d.Removed...)
	}
	return out, nil
}

// WinnerID converts a winner to its wire form: nil for a draw.
func WinnerID(winner gridwar.PlayerID) *string {
	if winner == gridwar.NoPlayer {
		return nil
	}
	s := string(winner)
	return &s
}
