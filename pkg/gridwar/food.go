package gridwar

import "math/rand"

// FoodGenerator drops food onto the grid between turns. It owns the
// session's seeded randomness, so two sessions with the same seed and
// scarcity see the same drops on the same turns.
type FoodGenerator struct {
	rng      *rand.Rand
	scarcity float64
}

// NewFoodGenerator builds a generator. scarcity is the per-turn drop
// probability, clamped into [0,1].
func NewFoodGenerator(seed int64, scarcity float64) *FoodGenerator {
	if scarcity < 0 {
		scarcity = 0
	}
	if scarcity > 1 {
		scarcity = 1
	}
	return &FoodGenerator{
		rng:      rand.New(rand.NewSource(seed)),
		scarcity: scarcity,
	}
}

// Spawn rolls the per-turn drop. On success it appends one food unit on a
// uniformly chosen open, unoccupied tile of gs and returns a copy of it;
// otherwise it returns nil. A fully occupied board forfeits the roll.
func (g *FoodGenerator) Spawn(gs *GameState, m *MapLayout, ids *IDSource) *Unit {
	if g.rng.Float64() >= g.scarcity {
		return nil
	}
	var open []Position
	for _, pos := range m.OpenTiles() {
		if !gs.Occupied(pos) {
			open = append(open, pos)
		}
	}
	if len(open) == 0 {
		return nil
	}
	u := Unit{
		ID:   ids.Next(),
		Type: Food,
		Pos:  open[g.rng.Intn(len(open))],
	}
	gs.Units = append(gs.Units, u)
	return &u
}
