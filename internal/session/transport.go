// Package session owns the life of one game: the two-slot client registry,
// the single-goroutine turn coordinator, and the manager that replaces a
// finished session with a fresh one. All game-state mutation happens on the
// coordinator goroutine; transports and handlers only ever talk to it
// through the inbox.
package session

import "github.com/pellmont/gridwar/internal/protocol"

// Transport delivers protocol messages to one client. The websocket conn
// implements it for real clients; the tutorial opponent implements it
// in-process. Send must not block the caller indefinitely: implementations
// buffer and drop rather than stall the coordinator.
type Transport interface {
	Send(msg protocol.Message) error
	Close() error
}

// ConnectInfo is the client-supplied connect metadata. The callsign is an
// opaque label used for logs and the match record, never as the player
// identity.
type ConnectInfo struct {
	Callsign              string
	ClientVersion         string
	ExpectedServerVersion int
	RemoteAddr            string
}
