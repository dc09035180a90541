package bot

import (
	"log"

	"github.com/pellmont/gridwar/pkg/gridwar"
)

// Strategy plans a turn's actions for one side. PlanMoves receives the
// authoritative state from NEXT_TURN and returns the actions to submit;
// pawns without an action hold their tile.
type Strategy interface {
	Name() string
	PlanMoves(gs *gridwar.GameState, m *gridwar.MapLayout, me gridwar.PlayerID) []gridwar.ActionInput
}

// ExternalEnginePath is the path to the GBI engine binary used by the
// "external" strategy. Set this at startup (e.g. from a flag) before
// creating strategies.
var ExternalEnginePath string

// StrategyForName returns the strategy registered under the given name.
// Unknown names fall back to greedy, the default scripted opponent.
func StrategyForName(name string) Strategy {
	switch name {
	case "hold":
		return HoldStrategy{}
	case "random":
		return RandomStrategy{}
	case "external":
		return newExternalOrFallback()
	case "neural":
		return newNeuralOrFallback()
	default:
		return GreedyStrategy{}
	}
}

// newExternalOrFallback attempts to create an ExternalStrategy. If the engine
// path is not configured or the engine fails to start, it falls back to
// GreedyStrategy so the game can proceed.
func newExternalOrFallback() Strategy {
	if ExternalEnginePath == "" {
		log.Printf("bot: external strategy requested but ExternalEnginePath not set; falling back to greedy")
		return GreedyStrategy{}
	}
	es, err := NewExternalStrategy(ExternalEnginePath)
	if err != nil {
		log.Printf("bot: failed to start external engine %q: %v; falling back to greedy", ExternalEnginePath, err)
		return GreedyStrategy{}
	}
	return es
}

// --- HoldStrategy ---

// HoldStrategy submits no actions; every pawn stands its tile each turn.
type HoldStrategy struct{}

func (HoldStrategy) Name() string { return "hold" }

func (HoldStrategy) PlanMoves(_ *gridwar.GameState, _ *gridwar.MapLayout, _ gridwar.PlayerID) []gridwar.ActionInput {
	return nil
}

// --- RandomStrategy ---

// RandomStrategy moves pawns in random legal directions for testing:
// ~30% of pawns hold, the rest step to a random in-bounds non-wall tile.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) PlanMoves(gs *gridwar.GameState, m *gridwar.MapLayout, me gridwar.PlayerID) []gridwar.ActionInput {
	var actions []gridwar.ActionInput
	dirs := gridwar.AllDirections()

	for _, pawn := range gs.PawnsOf(me) {
		if botFloat64() < 0.3 {
			continue
		}

		// Shuffle directions and take the first legal one.
		for _, idx := range botPerm(len(dirs)) {
			d := dirs[idx]
			target := pawn.Pos.Step(d)
			if !m.InBounds(target) || m.IsWall(target) {
				continue
			}
			actions = append(actions, gridwar.ActionInput{
				UnitID:    pawn.ID,
				Direction: d.String(),
			})
			break
		}
	}
	return actions
}
