package session

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

var (
	// ErrSessionFull rejects a third connection while a game is live.
	ErrSessionFull = errors.New("session already has two players")
	// ErrVersionMismatch rejects a client expecting a different protocol
	// major version.
	ErrVersionMismatch = errors.New("incompatible protocol version")
)

// slot holds one attached client.
type slot struct {
	info      ConnectInfo
	transport Transport
	connected bool
}

// Registry tracks the two player slots of one session. It is the only
// session structure shared between the transport goroutines and the
// coordinator, so every method takes the mutex.
type Registry struct {
	mu     sync.Mutex
	slots  map[gridwar.PlayerID]*slot
	sealed bool

	ready chan struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		slots: make(map[gridwar.PlayerID]*slot, 2),
		ready: make(chan struct{}, 1),
	}
}

// Attach binds a transport to the next free slot, player1 before player2,
// and returns the assigned player id. It rejects incompatible protocol
// versions and a third client.
func (r *Registry) Attach(info ConnectInfo, t Transport) (gridwar.PlayerID, error) {
	if info.ExpectedServerVersion != protocol.MajorVersion {
		return gridwar.NoPlayer, ErrVersionMismatch
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range gridwar.AllPlayers() {
		if r.slots[p] != nil {
			continue
		}
		r.slots[p] = &slot{info: info, transport: t, connected: true}
		log.Info().
			Str("player", string(p)).
			Str("callsign", info.Callsign).
			Str("clientVersion", info.ClientVersion).
			Msg("client attached")
		if r.slots[gridwar.Player1] != nil && r.slots[gridwar.Player2] != nil {
			select {
			case r.ready <- struct{}{}:
			default:
			}
		}
		return p, nil
	}
	return gridwar.NoPlayer, ErrSessionFull
}

// Ready returns a channel signalled whenever an attach fills the second
// slot. The coordinator re-checks Full after waking: a queued pre-start
// disconnect may have freed a slot again.
func (r *Registry) Ready() <-chan struct{} {
	return r.ready
}

// Full reports whether both slots are taken.
func (r *Registry) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[gridwar.Player1] != nil && r.slots[gridwar.Player2] != nil
}

// Seal marks the game as started: from here on Detach no longer frees
// slots, so a mid-game disconnect cannot be replaced by a new client.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Detach frees a player's slot so another client may take it. After Seal it
// only marks the player disconnected.
func (r *Registry) Detach(player gridwar.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slots[player]
	if s == nil {
		return
	}
	if r.sealed {
		s.connected = false
		return
	}
	delete(r.slots, player)
	log.Info().Str("player", string(player)).Str("callsign", s.info.Callsign).Msg("slot freed")
}

// MarkDisconnected keeps the slot but stops deliveries to it.
func (r *Registry) MarkDisconnected(player gridwar.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.slots[player]; s != nil {
		s.connected = false
	}
}

// Connected reports whether the player's transport is still attached.
func (r *Registry) Connected(player gridwar.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slots[player]
	return s != nil && s.connected
}

// Callsign returns the attached client's callsign, or "" for a free slot.
func (r *Registry) Callsign(player gridwar.PlayerID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.slots[player]; s != nil {
		return s.info.Callsign
	}
	return ""
}

// Callsigns returns the callsigns of both slots keyed by player.
func (r *Registry) Callsigns() map[gridwar.PlayerID]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[gridwar.PlayerID]string, len(r.slots))
	for p, s := range r.slots {
		out[p] = s.info.Callsign
	}
	return out
}

// Send delivers one message to one player. Lost messages are logged and
// swallowed: a failed or disconnected transport costs that client the
// message, never the turn.
func (r *Registry) Send(player gridwar.PlayerID, msg protocol.Message) {
	r.mu.Lock()
	s := r.slots[player]
	r.mu.Unlock()
	if s == nil || !s.connected {
		return
	}
	if err := s.transport.Send(msg); err != nil {
		log.Warn().
			Err(err).
			Str("player", string(player)).
			Str("type", msg.Type()).
			Msg("send failed, message lost")
	}
}

// Broadcast delivers one message to both players, player1 first.
func (r *Registry) Broadcast(msg protocol.Message) {
	for _, p := range gridwar.AllPlayers() {
		r.Send(p, msg)
	}
}

// CloseAll closes every attached transport.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	transports := make([]Transport, 0, len(r.slots))
	for _, s := range r.slots {
		if s.connected {
			transports = append(transports, s.transport)
		}
		s.connected = false
	}
	r.mu.Unlock()
	for _, t := range transports {
		if err := t.Close(); err != nil {
			log.Debug().Err(err).Msg("transport close")
		}
	}
}
