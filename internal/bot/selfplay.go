package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/pkg/gridwar"
)

// MatchConfig describes one headless game between two strategies. No
// transport or deadline is involved: each turn both strategies are asked
// for moves and the turn resolves immediately.
type MatchConfig struct {
	Config *gridwar.MapConfig
	P1, P2 Strategy
	// MaxTurns caps the game; 0 means unlimited, which two passive
	// strategies never finish.
	MaxTurns int
	// Seed feeds the food generator; 0 derives it from the start time.
	Seed         int64
	FoodScarcity float64
}

// MatchResult is the outcome of one completed headless game.
type MatchResult struct {
	Winner  gridwar.PlayerID `json:"winner,omitempty"`
	Turns   int              `json:"turns"`
	StartAt int64            `json:"startAt"`
	EndedAt int64            `json:"endedAt"`
	// Pawns holds each player's surviving pawn count.
	Pawns map[string]int `json:"pawns"`
	// Deltas is the full history in the shape the session records, with
	// the initial state at index 0. Excluded from JSON summaries.
	Deltas []gridwar.Delta `json:"-"`
}

// RunMatch plays one full game between two strategies. A draw is a normal
// result; errors are reserved for context cancellation, a bad map config,
// or a corrupt successor state.
func RunMatch(ctx context.Context, cfg MatchConfig) (*MatchResult, error) {
	startAt := time.Now().UnixMilli()
	gs, err := gridwar.NewInitialState(cfg.Config, startAt)
	if err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}
	layout := cfg.Config.Layout
	ids := gridwar.NewIDSource(gs.Units)

	seed := cfg.Seed
	if seed == 0 {
		seed = startAt
	}
	food := gridwar.NewFoodGenerator(seed, cfg.FoodScarcity)

	strategies := map[gridwar.PlayerID]Strategy{
		gridwar.Player1: cfg.P1,
		gridwar.Player2: cfg.P2,
	}

	deltas := []gridwar.Delta{gridwar.DiffStates(&gridwar.GameState{}, gs, startAt)}
	var pending []gridwar.PendingSpawn
	turns := 0

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		moves := make(map[gridwar.PlayerID][]gridwar.Move, 2)
		for _, p := range gridwar.AllPlayers() {
			planned := strategies[p].PlanMoves(gs, layout, p)
			valid, rejected := gridwar.ValidateActions(gs, p, planned)
			if len(rejected) > 0 {
				log.Warn().
					Str("player", string(p)).
					Str("strategy", strategies[p].Name()).
					Int("turn", turns+1).
					Str("reason", rejected[0].Reason).
					Msg("Strategy produced invalid actions")
			}
			moves[p] = valid
		}

		now := time.Now().UnixMilli()
		res := gridwar.ApplyTurn(gs, moves, pending, layout, ids, now)
		if u := food.Spawn(res.State, layout, ids); u != nil {
			res.Delta.AddedOrModified = append(res.Delta.AddedOrModified, *u)
		}
		if err := gridwar.CheckState(res.State, layout); err != nil {
			return nil, fmt.Errorf("turn %d: %w", turns+1, err)
		}

		gs = res.State
		pending = res.Pending
		deltas = append(deltas, res.Delta)
		turns++

		outcome := gridwar.Evaluate(gs, res.WinnerCandidates, turns, gridwar.EndRules{MaxTurns: cfg.MaxTurns})
		if outcome.Over {
			log.Debug().
				Str("winner", string(outcome.Winner)).
				Int("turns", turns).
				Msg("Headless game over")
			return &MatchResult{
				Winner:  outcome.Winner,
				Turns:   turns,
				StartAt: startAt,
				EndedAt: time.Now().UnixMilli(),
				Pawns: map[string]int{
					string(gridwar.Player1): gs.PawnCount(gridwar.Player1),
					string(gridwar.Player2): gs.PawnCount(gridwar.Player2),
				},
				Deltas: deltas,
			}, nil
		}
	}
}
