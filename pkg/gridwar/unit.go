package gridwar

// PlayerID identifies one of the two players in a session.
type PlayerID string

const (
	Player1 PlayerID = "player1"
	Player2 PlayerID = "player2"
	// NoPlayer is the owner of FOOD units and the winner of a draw.
	NoPlayer PlayerID = ""
)

// AllPlayers returns the two player identities in canonical order.
func AllPlayers() []PlayerID {
	return []PlayerID{Player1, Player2}
}

// Opponent returns the other player, or NoPlayer for NoPlayer.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return NoPlayer
}

// UnitType represents the type of a unit on the grid.
type UnitType int

const (
	Base UnitType = iota
	Pawn
	Food
)

func (t UnitType) String() string {
	switch t {
	case Base:
		return "BASE"
	case Pawn:
		return "PAWN"
	case Food:
		return "FOOD"
	default:
		return "unknown"
	}
}

// ParseUnitType parses the wire spelling of a unit type.
func ParseUnitType(s string) (UnitType, bool) {
	switch s {
	case "BASE":
		return Base, true
	case "PAWN":
		return Pawn, true
	case "FOOD":
		return Food, true
	}
	return 0, false
}

// Unit is a single unit on the grid. Identity is the ID: equality between
// turns is by ID, and IDs are never reused within a session even after the
// unit is destroyed. Owner is NoPlayer exactly when Type is Food.
type Unit struct {
	ID    int
	Owner PlayerID
	Type  UnitType
	Pos   Position
}
