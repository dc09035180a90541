// Package tutorial seats a scripted in-process opponent into every session
// a manager spawns, so a lone human always has someone to play against.
package tutorial

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/internal/bot"
	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/internal/session"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// Install registers the tutorial hook on the manager. Every fresh session
// gets the scripted opponent attached before the human's own attach
// proceeds, so the human always lands in the remaining seat. Pair this
// with Params.TutorialSide so the turn limit decides stalled games for
// the scripted side.
func Install(mgr *session.Manager, opponent bot.Strategy, callsign string) {
	mgr.SetOnCreate(func(s *session.Session) {
		sp := newScriptedPlayer(s, opponent, callsign)
		player, err := s.Attach(session.ConnectInfo{
			Callsign:              callsign,
			ClientVersion:         "tutorial",
			ExpectedServerVersion: protocol.MajorVersion,
			RemoteAddr:            "in-process",
		}, sp)
		if err != nil {
			sp.Close()
			log.Error().Err(err).Msg("Tutorial opponent could not take a seat")
			return
		}
		log.Info().Str("callsign", callsign).Str("strategy", opponent.Name()).
			Str("player", string(player)).Msg("Tutorial opponent seated")
	})
}

// scriptedPlayer is the in-process counterpart of a websocket client: a
// session.Transport whose messages drive a bot strategy instead of a
// socket. Submissions go straight back into the session inbox.
type scriptedPlayer struct {
	sess     *session.Session
	strategy bot.Strategy
	callsign string

	inbox chan protocol.Message
	done  chan struct{}
	once  sync.Once

	// owned by the run goroutine after Attach
	player gridwar.PlayerID
	layout *gridwar.MapLayout
}

func newScriptedPlayer(s *session.Session, strategy bot.Strategy, callsign string) *scriptedPlayer {
	sp := &scriptedPlayer{
		sess:     s,
		strategy: strategy,
		callsign: callsign,
		inbox:    make(chan protocol.Message, 64),
		done:     make(chan struct{}),
	}
	go sp.run()
	return sp
}

// Send queues a message for the scripted player. Like the websocket
// transport it drops rather than stall the coordinator when the buffer is
// full.
func (sp *scriptedPlayer) Send(msg protocol.Message) error {
	select {
	case <-sp.done:
		return fmt.Errorf("tutorial opponent is closed")
	default:
	}
	select {
	case sp.inbox <- msg:
		return nil
	default:
		log.Warn().Str("callsign", sp.callsign).Str("type", msg.Type()).
			Msg("Tutorial inbox full, dropping message")
		return nil
	}
}

// Close stops the scripted player. Safe to call more than once.
func (sp *scriptedPlayer) Close() error {
	sp.once.Do(func() { close(sp.done) })
	return nil
}

func (sp *scriptedPlayer) run() {
	for {
		select {
		case <-sp.done:
			return
		case msg := <-sp.inbox:
			switch m := msg.(type) {
			case protocol.PlayerAssigned:
				sp.player = gridwar.PlayerID(m.PlayerID)

			case protocol.StartGame:
				sp.layout = m.GameStart.Map.ToLayout()

			case protocol.NextTurn:
				if sp.layout == nil || sp.player == gridwar.NoPlayer {
					log.Warn().Str("callsign", sp.callsign).Msg("Turn before seat assignment, holding")
					continue
				}
				gs, err := m.GameState.ToState()
				if err != nil {
					log.Error().Err(err).Str("callsign", sp.callsign).Msg("Tutorial turn state undecodable, holding")
					continue
				}
				actions := sp.strategy.PlanMoves(gs, sp.layout, sp.player)
				sp.sess.Submit(sp.player, actions)

			case protocol.EndGame:
				sp.Close()
				return
			}
		}
	}
}
