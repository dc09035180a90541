package gridwar

import "fmt"

// Direction is one of the eight compass directions a pawn can move in.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// directionDeltas maps a Direction to its unit (dx, dy) step. Y grows south,
// so North is -1 in y.
var directionDeltas = [8][2]int{
	North:     {0, -1},
	NorthEast: {1, -1},
	East:      {1, 0},
	SouthEast: {1, 1},
	South:     {0, 1},
	SouthWest: {-1, 1},
	West:      {-1, 0},
	NorthWest: {-1, -1},
}

var directionNames = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Delta returns the unit (dx, dy) step for the direction.
func (d Direction) Delta() (int, int) {
	return directionDeltas[d][0], directionDeltas[d][1]
}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// AllDirections returns the eight directions in compass order, starting north.
func AllDirections() []Direction {
	return []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
}

// ParseDirection parses the wire spelling ("N", "NE", ...) of a direction.
func ParseDirection(s string) (Direction, bool) {
	for d, name := range directionNames {
		if s == name {
			return Direction(d), true
		}
	}
	return 0, false
}

// ActionInput is one action exactly as a player submitted it. The direction
// is the raw wire string so the validator can reject unrecognized values
// instead of the codec failing the whole message.
type ActionInput struct {
	UnitID    int
	Direction string
}

// Describe returns a human-readable form of the submitted action.
func (a ActionInput) Describe() string {
	return fmt.Sprintf("unit %d -> %s", a.UnitID, a.Direction)
}

// Move is a validated action: a live pawn of the acting player moving in a
// recognized direction.
type Move struct {
	UnitID int
	Dir    Direction
}

// Rejection pairs an invalid submitted action with the reason it was dropped.
type Rejection struct {
	Action ActionInput
	Reason string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("invalid action %s: %s", r.Action.Describe(), r.Reason)
}
