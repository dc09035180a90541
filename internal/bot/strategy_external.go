package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pellmont/gridwar/pkg/gbi"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// ExternalOption configures an ExternalStrategy before launch.
type ExternalOption func(*ExternalStrategy)

// WithMoveTime sets the time budget (in milliseconds) for the engine's go command.
func WithMoveTime(ms int) ExternalOption {
	return func(e *ExternalStrategy) {
		e.moveTimeMs = ms
	}
}

// WithTimeout sets the overall deadline for a single engine query. If the
// engine hasn't answered within this duration after "go", the engine client
// sends "stop" and reads the forced bestactions.
func WithTimeout(d time.Duration) ExternalOption {
	return func(e *ExternalStrategy) {
		e.timeout = d
	}
}

// WithEngineOption queues a "setoption" command to send after the handshake.
func WithEngineOption(name, value string) ExternalOption {
	return func(e *ExternalStrategy) {
		e.options = append(e.options, engineOption{name: name, value: value})
	}
}

// engineOption is a name/value pair sent via "setoption name <n> value <v>".
type engineOption struct {
	name  string
	value string
}

// ExternalStrategy implements Strategy by delegating to a GBI engine
// subprocess. The engine sees positions in arena-glyph form, so its unit
// ids are the row-major numbering of the rendered board; PlanMoves maps
// them back to the session's real unit ids before submitting. Stacked
// friendly pawns collapse to one glyph in that encoding and a pawn on a
// base hides behind the base glyph, so the engine sees and commands a
// single pawn per tile.
type ExternalStrategy struct {
	engine     *gbi.Engine
	moveTimeMs int
	timeout    time.Duration
	options    []engineOption
}

// NewExternalStrategy spawns the engine process, performs the GBI handshake,
// applies any queued engine options, and returns a ready strategy.
func NewExternalStrategy(enginePath string, opts ...ExternalOption) (*ExternalStrategy, error) {
	e := &ExternalStrategy{
		engine:     gbi.NewEngine(enginePath),
		moveTimeMs: 1000,
		timeout:    10 * time.Second,
	}
	for _, o := range opts {
		o(e)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if err := e.engine.Init(ctx); err != nil {
		return nil, fmt.Errorf("external strategy: %w", err)
	}

	if len(e.options) > 0 {
		for _, opt := range e.options {
			e.engine.SetOption(opt.name, opt.value)
		}
		if err := e.engine.IsReady(ctx); err != nil {
			e.engine.Close()
			return nil, fmt.Errorf("external strategy: engine options: %w", err)
		}
	}

	return e, nil
}

func (e *ExternalStrategy) Name() string { return "external" }

// PlanMoves sends the position to the engine and converts the bestactions
// response into the session's unit ids. Any engine failure falls back to
// GreedyStrategy so the game can proceed.
func (e *ExternalStrategy) PlanMoves(gs *gridwar.GameState, m *gridwar.MapLayout, me gridwar.PlayerID) []gridwar.ActionInput {
	rendered := gridwar.RenderState(gs, m)

	e.engine.Position(arenaPosition(rendered))
	e.engine.SetSide(string(me))

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	results, err := e.engine.Go(ctx, gbi.GoParams{MoveTime: e.moveTimeMs})
	if err != nil {
		log.Printf("bot: external engine query failed: %v; falling back to greedy", err)
		return GreedyStrategy{}.PlanMoves(gs, m, me)
	}

	actions, err := parseBestActions(results.BestActions)
	if err != nil {
		log.Printf("bot: bad bestactions %q: %v; falling back to greedy", results.BestActions, err)
		return GreedyStrategy{}.PlanMoves(gs, m, me)
	}

	return remapArenaIDs(rendered, gs, actions)
}

// Close shuts down the engine subprocess.
func (e *ExternalStrategy) Close() error {
	return e.engine.Close()
}

// arenaPosition converts a rendered arena (newline rows) into the
// single-line position-command form with '/' separators.
func arenaPosition(rendered string) string {
	return strings.ReplaceAll(strings.TrimRight(rendered, "\n"), "\n", "/")
}

// parseBestActions parses a bestactions payload ("4:N 7:SE ...") into
// actions in the engine's id space. An empty payload is a pass.
func parseBestActions(s string) ([]gridwar.ActionInput, error) {
	var actions []gridwar.ActionInput
	for _, tok := range strings.Fields(s) {
		id, dir, ok := strings.Cut(tok, ":")
		if !ok {
			return nil, fmt.Errorf("action %q: missing ':'", tok)
		}
		unitID, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("action %q: bad unit id: %w", tok, err)
		}
		actions = append(actions, gridwar.ActionInput{UnitID: unitID, Direction: dir})
	}
	return actions, nil
}

// remapArenaIDs translates actions from the engine's row-major id space
// into the session's unit ids by re-parsing the rendered arena and matching
// each parsed unit to the real unit on the same tile. Engine ids with no
// live counterpart are dropped.
func remapArenaIDs(rendered string, gs *gridwar.GameState, actions []gridwar.ActionInput) []gridwar.ActionInput {
	cfg, err := gridwar.ParseArena(rendered)
	if err != nil {
		log.Printf("bot: rendered arena failed to re-parse: %v; dropping engine actions", err)
		return nil
	}

	used := make(map[int]bool)
	realID := make(map[int]int, len(cfg.Units))
	for _, parsed := range cfg.Units {
		for _, u := range gs.Units {
			if used[u.ID] || u.Type != parsed.Type || u.Owner != parsed.Owner || u.Pos != parsed.Pos {
				continue
			}
			realID[parsed.ID] = u.ID
			used[u.ID] = true
			break
		}
	}

	mapped := make([]gridwar.ActionInput, 0, len(actions))
	for _, a := range actions {
		id, ok := realID[a.UnitID]
		if !ok {
			log.Printf("bot: engine referenced unknown unit %d; dropping action", a.UnitID)
			continue
		}
		mapped = append(mapped, gridwar.ActionInput{UnitID: id, Direction: a.Direction})
	}
	return mapped
}
