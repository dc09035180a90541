package gridwar

import "fmt"

// ValidateActions checks a player's submitted actions against the current
// state and returns the ordered subset that is legal, plus a rejection for
// every dropped action. An action is rejected when its unit id refers to no
// live unit, to a unit the player does not own, or to a non-pawn; when its
// direction is unrecognized; or when it duplicates an earlier action for the
// same unit this turn (the first wins).
//
// Invalid actions never fail the turn; callers report rejections to the
// offending player and proceed with the valid subset.
func ValidateActions(gs *GameState, player PlayerID, in []ActionInput) ([]Move, []Rejection) {
	var valid []Move
	var rejected []Rejection
	acted := make(map[int]bool, len(in))

	for _, a := range in {
		if acted[a.UnitID] {
			rejected = append(rejected, Rejection{a, fmt.Sprintf("duplicate action for unit %d", a.UnitID)})
			continue
		}
		unit := gs.UnitByID(a.UnitID)
		if unit == nil {
			rejected = append(rejected, Rejection{a, fmt.Sprintf("no unit with id %d", a.UnitID)})
			continue
		}
		if unit.Owner != player {
			rejected = append(rejected, Rejection{a, fmt.Sprintf("unit %d does not belong to %s", a.UnitID, player)})
			continue
		}
		if unit.Type != Pawn {
			rejected = append(rejected, Rejection{a, fmt.Sprintf("unit %d is a %s, only pawns move", a.UnitID, unit.Type)})
			continue
		}
		dir, ok := ParseDirection(a.Direction)
		if !ok {
			rejected = append(rejected, Rejection{a, fmt.Sprintf("unrecognized direction %q", a.Direction)})
			continue
		}
		acted[a.UnitID] = true
		valid = append(valid, Move{UnitID: a.UnitID, Dir: dir})
	}

	return valid, rejected
}
