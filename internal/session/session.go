package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// inboxSize bounds the coordinator's inbox. Two clients sending one action
// set per turn never come close; overflow means a misbehaving client, and
// its messages are dropped.
const inboxSize = 64

// Params configures one session.
type Params struct {
	Config       *gridwar.MapConfig
	TurnTimeMs   int
	FoodScarcity float64
	MaxTurns     int // 0 means unlimited
	// Seed feeds the food generator; 0 derives it from the session start
	// time. Fix it to make a game reproducible.
	Seed int64
	// TutorialSide wins when MaxTurns is reached. NoPlayer makes the
	// limit an ordinary draw.
	TutorialSide gridwar.PlayerID
}

// Result is the terminal outcome of a session, handed to the recorder.
type Result struct {
	Winner    gridwar.PlayerID // NoPlayer on a draw
	Turns     int
	StartAt   int64
	EndedAt   int64
	Callsigns map[gridwar.PlayerID]string
	Layout    *gridwar.MapLayout
	Deltas    []gridwar.Delta
	// Aborted marks games cut short by shutdown, an invariant failure, or
	// both players vanishing, rather than played to a verdict.
	Aborted bool
}

// Recorder receives the outcome of a finished game. Implementations must
// return promptly; anything slow belongs on their own goroutine or context.
type Recorder interface {
	RecordMatch(ctx context.Context, res Result)
}

// coordinator states.
type state int

const (
	stateWaitingForPlayers state = iota
	stateStarting
	stateAwaitingActions
	stateApplying
	stateEnding
	stateTerminated
)

type inboundKind int

const (
	inboundActions inboundKind = iota
	inboundDisconnect
)

// inbound is one event funneled into the coordinator: a player's action
// submission or a disconnect notice.
type inbound struct {
	kind    inboundKind
	player  gridwar.PlayerID
	actions []gridwar.ActionInput
}

// Session drives one game from the first connect to the END_GAME broadcast.
// Everything below inbox is owned by the Run goroutine and never touched
// from outside it.
type Session struct {
	params   Params
	registry *Registry
	recorder Recorder
	inbox    chan inbound
	done     chan struct{}

	st      state
	gs      *gridwar.GameState
	turnID  int
	ids     *gridwar.IDSource
	food    *gridwar.FoodGenerator
	pending []gridwar.PendingSpawn
	deltas  []gridwar.Delta
	acted   map[gridwar.PlayerID]bool
	actions map[gridwar.PlayerID][]gridwar.ActionInput
	gone    map[gridwar.PlayerID]bool
	wireMap protocol.Map
	winner  gridwar.PlayerID
	aborted bool
}

// New builds a session. Run must be started exactly once for it to make
// progress; recorder may be nil.
func New(params Params, recorder Recorder) *Session {
	return &Session{
		params:   params,
		registry: NewRegistry(),
		recorder: recorder,
		inbox:    make(chan inbound, inboxSize),
		done:     make(chan struct{}),
		acted:    make(map[gridwar.PlayerID]bool, 2),
		actions:  make(map[gridwar.PlayerID][]gridwar.ActionInput, 2),
		gone:     make(map[gridwar.PlayerID]bool, 2),
	}
}

// Attach binds a client transport to a free player slot.
func (s *Session) Attach(info ConnectInfo, t Transport) (gridwar.PlayerID, error) {
	return s.registry.Attach(info, t)
}

// Submit queues a player's action set for the coordinator. A full inbox
// drops the submission; the player simply misses the turn.
func (s *Session) Submit(player gridwar.PlayerID, actions []gridwar.ActionInput) {
	s.enqueue(inbound{kind: inboundActions, player: player, actions: actions})
}

// Disconnect queues a disconnect notice for the coordinator.
func (s *Session) Disconnect(player gridwar.PlayerID) {
	s.enqueue(inbound{kind: inboundDisconnect, player: player})
}

func (s *Session) enqueue(ev inbound) {
	select {
	case s.inbox <- ev:
	case <-s.done:
	default:
		log.Warn().Str("player", string(ev.player)).Msg("session inbox full, event dropped")
	}
}

// Done returns a channel closed when the session has terminated.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Terminated reports whether the session is over.
func (s *Session) Terminated() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Run is the coordinator goroutine: it waits for two players, starts the
// game, and loops turns until a verdict or cancellation. It owns all state
// mutation; returning closes Done.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	defer func() { s.st = stateTerminated }()

	if !s.waitForPlayers(ctx) {
		s.registry.CloseAll()
		return
	}

	if !s.start() {
		s.registry.CloseAll()
		return
	}

	deadline := time.NewTimer(time.Hour)
	defer deadline.Stop()
	s.beginTurn(deadline)

	for {
		select {
		case <-ctx.Done():
			log.Info().Int("turn", s.turnID).Msg("session cancelled, ending game")
			s.abort(ctx)
			return
		case <-deadline.C:
			log.Debug().Int("turn", s.turnID).Msg("turn deadline reached")
			if s.applyTurn() {
				s.finish(ctx)
				return
			}
			s.beginTurn(deadline)
		case ev := <-s.inbox:
			if !s.handleInbound(ev) {
				if s.aborted {
					s.abort(ctx)
					return
				}
				continue
			}
			if s.allSubmitted() {
				if s.applyTurn() {
					s.finish(ctx)
					return
				}
				s.beginTurn(deadline)
			}
		}
	}
}

// waitForPlayers blocks until both slots are filled. Disconnects before the
// game starts free the slot; stray submissions are stale and dropped.
func (s *Session) waitForPlayers(ctx context.Context) bool {
	s.st = stateWaitingForPlayers
	for {
		select {
		case <-ctx.Done():
			return false
		case <-s.registry.Ready():
			// Drain whatever was queued before the gate opened; those
			// events belong to the waiting phase, not to turn 0. A queued
			// disconnect can free a slot again, so re-check before starting.
			drained := false
			for !drained {
				select {
				case ev := <-s.inbox:
					s.handleWaiting(ev)
				default:
					drained = true
				}
			}
			if s.registry.Full() {
				return true
			}
		case ev := <-s.inbox:
			s.handleWaiting(ev)
		}
	}
}

// handleWaiting processes an inbox event before the game has started:
// disconnects free the slot, submissions are stale.
func (s *Session) handleWaiting(ev inbound) {
	switch ev.kind {
	case inboundActions:
		log.Warn().Str("player", string(ev.player)).Msg("stale action before game start, dropped")
	case inboundDisconnect:
		s.registry.Detach(ev.player)
	}
}

// start builds the initial state and emits the opening sequence: each
// player's PLAYER_ASSIGNED, then START_GAME to both, so both players see
// the start before either sees the first NEXT_TURN.
func (s *Session) start() bool {
	s.st = stateStarting
	now := time.Now().UnixMilli()

	gs, err := gridwar.NewInitialState(s.params.Config, now)
	if err != nil {
		log.Error().Err(err).Msg("initial state rejected, session unusable")
		return false
	}
	s.gs = gs
	s.ids = gridwar.NewIDSource(gs.Units)
	seed := s.params.Seed
	if seed == 0 {
		seed = now
	}
	s.food = gridwar.NewFoodGenerator(seed, s.params.FoodScarcity)
	s.wireMap = protocol.FromMap(s.params.Config.Layout)
	s.registry.Seal()

	// Seeding the history with the initial units makes the delta log
	// self-sufficient: replaying it from an empty state reproduces the
	// whole game.
	s.deltas = append(s.deltas, gridwar.DiffStates(&gridwar.GameState{}, gs, now))

	for _, p := range gridwar.AllPlayers() {
		s.registry.Send(p, protocol.PlayerAssigned{PlayerID: string(p)})
	}
	s.registry.Broadcast(protocol.StartGame{GameStart: protocol.GameStart{
		Map:          s.wireMap,
		InitialUnits: protocol.FromUnits(gs.Units),
		Timestamp:    now,
	}})

	log.Info().
		Int64("seed", seed).
		Int("units", len(gs.Units)).
		Str("player1", s.registry.Callsign(gridwar.Player1)).
		Str("player2", s.registry.Callsign(gridwar.Player2)).
		Msg("game started")
	return true
}

// beginTurn opens a fresh submission window: clears the buffers, unicasts
// NEXT_TURN to every connected player, and arms the absolute deadline.
func (s *Session) beginTurn(deadline *time.Timer) {
	s.st = stateAwaitingActions
	clear(s.acted)
	clear(s.actions)

	for _, p := range gridwar.AllPlayers() {
		if s.gone[p] {
			continue
		}
		s.registry.Send(p, protocol.NextTurn{
			PlayerID:    string(p),
			GameState:   protocol.FromState(s.gs),
			TimeLimitMs: s.params.TurnTimeMs,
		})
	}

	if !deadline.Stop() {
		select {
		case <-deadline.C:
		default:
		}
	}
	deadline.Reset(time.Duration(s.params.TurnTimeMs) * time.Millisecond)
}

// handleInbound processes one event during a turn. It returns true when a
// fresh submission was recorded; a disconnect that empties the session sets
// aborted instead.
func (s *Session) handleInbound(ev inbound) bool {
	switch ev.kind {
	case inboundDisconnect:
		s.registry.MarkDisconnected(ev.player)
		s.gone[ev.player] = true
		log.Info().Str("player", string(ev.player)).Int("turn", s.turnID).
			Msg("player disconnected, treating as empty submissions")
		if s.gone[gridwar.Player1] && s.gone[gridwar.Player2] {
			log.Warn().Int("turn", s.turnID).Msg("both players disconnected, aborting session")
			s.aborted = true
			return false
		}
		// The remaining player may already have submitted; the caller
		// re-checks completion.
		return true
	case inboundActions:
		if s.st != stateAwaitingActions {
			log.Warn().Str("player", string(ev.player)).Msg("stale action, dropped")
			return false
		}
		if s.gone[ev.player] {
			log.Warn().Str("player", string(ev.player)).Msg("action from disconnected player, dropped")
			return false
		}
		if s.acted[ev.player] {
			log.Warn().Str("player", string(ev.player)).Int("turn", s.turnID).
				Msg("duplicate submission for turn, ignored")
			return false
		}
		s.acted[ev.player] = true
		s.actions[ev.player] = ev.actions
		return true
	}
	return false
}

// allSubmitted reports whether every still-connected player has submitted.
// A session with no connected players never completes a turn early; it
// aborts on the disconnect path instead.
func (s *Session) allSubmitted() bool {
	live := 0
	for _, p := range gridwar.AllPlayers() {
		if s.gone[p] {
			continue
		}
		live++
		if !s.acted[p] {
			return false
		}
	}
	return live > 0
}

// applyTurn runs one turn: validate both submissions, advance the engine,
// roll the food drop, and evaluate the verdict. It returns true when the
// game is over, including the fatal case of a corrupt successor state.
func (s *Session) applyTurn() bool {
	s.st = stateApplying
	now := time.Now().UnixMilli()
	layout := s.params.Config.Layout

	moves := make(map[gridwar.PlayerID][]gridwar.Move, 2)
	for _, p := range gridwar.AllPlayers() {
		valid, rejected := gridwar.ValidateActions(s.gs, p, s.actions[p])
		if len(rejected) > 0 {
			log.Warn().
				Str("player", string(p)).
				Int("turn", s.turnID).
				Int("rejected", len(rejected)).
				Str("reason", rejected[0].Reason).
				Msg("invalid actions dropped")
			s.registry.Send(p, protocol.InvalidOperation{
				PlayerID: string(p),
				Reason:   rejected[0].Reason,
			})
		}
		moves[p] = valid
	}

	res := gridwar.ApplyTurn(s.gs, moves, s.pending, layout, s.ids, now)
	if u := s.food.Spawn(res.State, layout, s.ids); u != nil {
		res.Delta.AddedOrModified = append(res.Delta.AddedOrModified, *u)
	}

	if err := gridwar.CheckState(res.State, layout); err != nil {
		log.Error().Err(err).Int("turn", s.turnID).Msg("turn produced a corrupt state, terminating session")
		s.aborted = true
		s.winner = gridwar.NoPlayer
		return true
	}

	s.gs = res.State
	s.pending = res.Pending
	s.deltas = append(s.deltas, res.Delta)
	s.turnID++

	outcome := gridwar.Evaluate(s.gs, res.WinnerCandidates, s.turnID, gridwar.EndRules{
		MaxTurns:      s.params.MaxTurns,
		TimeoutWinner: s.params.TutorialSide,
	})
	log.Debug().
		Int("turn", s.turnID).
		Int("units", len(s.gs.Units)).
		Bool("over", outcome.Over).
		Msg("turn applied")
	if outcome.Over {
		s.winner = outcome.Winner
		return true
	}
	return false
}

// abort ends the session without a verdict: best-effort END_GAME with a
// null winner, then the normal teardown.
func (s *Session) abort(ctx context.Context) {
	s.aborted = true
	s.winner = gridwar.NoPlayer
	s.finish(ctx)
}

// finish broadcasts END_GAME as the final message, closes the transports,
// and hands the outcome to the recorder.
func (s *Session) finish(ctx context.Context) {
	s.st = stateEnding
	now := time.Now().UnixMilli()

	s.registry.Broadcast(protocol.EndGame{GameEnd: protocol.GameEnd{
		Map:       s.wireMap,
		Deltas:    protocol.FromDeltas(s.deltas),
		WinnerID:  protocol.WinnerID(s.winner),
		Timestamp: now,
	}})
	s.registry.CloseAll()

	log.Info().
		Str("winner", string(s.winner)).
		Int("turns", s.turnID).
		Bool("aborted", s.aborted).
		Msg("game over")

	if s.recorder != nil {
		s.recorder.RecordMatch(ctx, Result{
			Winner:    s.winner,
			Turns:     s.turnID,
			StartAt:   s.gs.StartAt,
			EndedAt:   now,
			Callsigns: s.registry.Callsigns(),
			Layout:    s.params.Config.Layout,
			Deltas:    s.deltas,
			Aborted:   s.aborted,
		})
	}
}
