package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/pkg/gridwar"
)

// Manager owns the server's one live session. A terminated session is
// replaced by a fresh one on the next connect, so the server pairs clients
// indefinitely without restarts.
type Manager struct {
	mu       sync.Mutex
	ctx      context.Context
	params   Params
	recorder Recorder
	onCreate func(*Session)
	current  *Session
}

// NewManager builds a manager. ctx bounds the lifetime of every session it
// spawns; cancelling it ends the live game.
func NewManager(ctx context.Context, params Params, recorder Recorder) *Manager {
	return &Manager{
		ctx:      ctx,
		params:   params,
		recorder: recorder,
	}
}

// SetOnCreate registers a hook run for every freshly spawned session,
// before the attach that triggered it. The tutorial driver uses it to seat
// the scripted opponent in the player1 slot.
func (m *Manager) SetOnCreate(hook func(*Session)) {
	m.mu.Lock()
	m.onCreate = hook
	m.mu.Unlock()
}

// Attach routes a connecting client to the live session, spawning a fresh
// one if none is running. It returns the session and the assigned player.
func (m *Manager) Attach(info ConnectInfo, t Transport) (*Session, gridwar.PlayerID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.Terminated() {
		m.current = New(m.params, m.recorder)
		go m.current.Run(m.ctx)
		log.Info().Msg("fresh session spawned")
		if m.onCreate != nil {
			m.onCreate(m.current)
		}
	}

	player, err := m.current.Attach(info, t)
	if err != nil {
		return nil, gridwar.NoPlayer, err
	}
	return m.current, player, nil
}

// Current returns the live session, or nil when none has been spawned.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
