// Package protocol owns the wire shapes of the GridWar protocol: the typed
// messages exchanged with clients and their JSON encoding. The engine in
// pkg/gridwar never sees JSON; everything crosses this boundary through the
// converters in wire.go.
package protocol

// MajorVersion is the server's protocol major version. Clients advertise the
// major version they expect at connect time; mismatches are rejected before
// a session starts.
const MajorVersion = 1

// Message type tags, carried in the "type" field of every envelope.
const (
	TypePlayerAssigned   = "PLAYER_ASSIGNED"
	TypeStartGame        = "START_GAME"
	TypeNextTurn         = "NEXT_TURN"
	TypeAction           = "ACTION"
	TypeInvalidOperation = "INVALID_OPERATION"
	TypeEndGame          = "END_GAME"
)

// Message is one protocol message. Concrete message structs marshal to the
// payload fields; Encode adds the type tag beside them.
type Message interface {
	Type() string
}

// PlayerAssigned tells a client which side it plays.
type PlayerAssigned struct {
	PlayerID string `json:"playerId"`
}

func (PlayerAssigned) Type() string { return TypePlayerAssigned }

// GameStart carries the immutable session setup: the board and the units on
// it before the first turn.
type GameStart struct {
	Map          Map    `json:"map"`
	InitialUnits []Unit `json:"initialUnits"`
	Timestamp    int64  `json:"timestamp"`
}

// StartGame opens the game once both players are attached.
type StartGame struct {
	GameStart GameStart `json:"gameStart"`
}

func (StartGame) Type() string { return TypeStartGame }

// NextTurn asks one player for its actions, carrying the authoritative
// state and the per-turn deadline.
type NextTurn struct {
	PlayerID    string    `json:"playerId"`
	GameState   GameState `json:"gameState"`
	TimeLimitMs int       `json:"timeLimitMs"`
}

func (NextTurn) Type() string { return TypeNextTurn }

// Action is a player's submission for the current turn.
type Action struct {
	PlayerID string       `json:"playerId"`
	Actions  []ActionItem `json:"actions"`
}

func (Action) Type() string { return TypeAction }

// ActionItem commands one pawn one step in a compass direction.
type ActionItem struct {
	UnitID    int    `json:"unitId"`
	Direction string `json:"direction"`
}

// InvalidOperation reports a rejected submission or connect attempt. The
// player id is empty when the rejection happens before a slot was assigned.
type InvalidOperation struct {
	PlayerID string `json:"playerId,omitempty"`
	Reason   string `json:"reason"`
}

func (InvalidOperation) Type() string { return TypeInvalidOperation }

// GameEnd carries the verdict and the full delta history, enough to replay
// the game without any other record.
type GameEnd struct {
	Map       Map     `json:"map"`
	Deltas    []Delta `json:"deltas"`
	WinnerID  *string `json:"winnerId"` // null on a draw
	Timestamp int64   `json:"timestamp"`
}

// EndGame closes the session; it is the last message a client receives.
type EndGame struct {
	GameEnd GameEnd `json:"gameEnd"`
}

func (EndGame) Type() string { return TypeEndGame }
