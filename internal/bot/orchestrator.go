package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// Report summarizes one finished game from the bot's side of the wire.
type Report struct {
	Side   gridwar.PlayerID
	Winner gridwar.PlayerID // NoPlayer on a draw
	Turns  int
}

// Won reports whether the bot's side won.
func (r Report) Won() bool { return r.Winner != gridwar.NoPlayer && r.Winner == r.Side }

// Orchestrator drives one bot through a full game: connect, wait for the
// seat assignment and the opening state, answer every NEXT_TURN with the
// strategy's actions, and return the verdict from END_GAME.
type Orchestrator struct {
	baseURL  string
	callsign string
	strategy Strategy
}

// NewOrchestrator creates an orchestrator for one seat.
func NewOrchestrator(baseURL, callsign string, strategy Strategy) *Orchestrator {
	return &Orchestrator{baseURL: baseURL, callsign: callsign, strategy: strategy}
}

// Run plays one game to completion.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	log.Info().Str("callsign", o.callsign).Str("strategy", o.strategy.Name()).Msg("Starting bot game")

	c := NewClient(o.callsign)
	if err := c.Connect(o.baseURL); err != nil {
		return Report{}, fmt.Errorf("connect %s: %w", o.callsign, err)
	}
	defer c.Close()

	var (
		side   gridwar.PlayerID
		layout *gridwar.MapLayout
		turns  int
	)

	for {
		select {
		case <-ctx.Done():
			return Report{}, ctx.Err()
		case msg, ok := <-c.Events():
			if !ok {
				return Report{}, fmt.Errorf("connection closed before END_GAME")
			}

			switch m := msg.(type) {
			case protocol.PlayerAssigned:
				side = gridwar.PlayerID(m.PlayerID)
				log.Info().Str("callsign", o.callsign).Str("player", m.PlayerID).Msg("Seat assigned")

			case protocol.StartGame:
				layout = m.GameStart.Map.ToLayout()
				log.Info().Str("callsign", o.callsign).
					Int("units", len(m.GameStart.InitialUnits)).Msg("Game started")

			case protocol.NextTurn:
				if layout == nil || side == gridwar.NoPlayer {
					return Report{}, fmt.Errorf("NEXT_TURN before seat assignment")
				}
				gs, err := m.GameState.ToState()
				if err != nil {
					return Report{}, fmt.Errorf("decode turn state: %w", err)
				}
				turns++
				actions := o.strategy.PlanMoves(gs, layout, side)
				if err := c.SendActions(side, actions); err != nil {
					return Report{}, fmt.Errorf("submit actions: %w", err)
				}
				log.Debug().Str("callsign", o.callsign).
					Int("turn", turns).Int("actions", len(actions)).Msg("Actions submitted")

			case protocol.InvalidOperation:
				if side == gridwar.NoPlayer {
					return Report{}, fmt.Errorf("server rejected connection: %s", m.Reason)
				}
				log.Warn().Str("callsign", o.callsign).Str("reason", m.Reason).
					Msg("Server rejected an operation")

			case protocol.EndGame:
				report := Report{Side: side, Turns: turns}
				if m.GameEnd.WinnerID != nil {
					report.Winner = gridwar.PlayerID(*m.GameEnd.WinnerID)
				}
				log.Info().Str("callsign", o.callsign).
					Str("winner", string(report.Winner)).Int("turns", turns).Msg("Game ended")
				return report, nil
			}
		}
	}
}
