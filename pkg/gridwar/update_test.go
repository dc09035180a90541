package gridwar

import (
	"reflect"
	"testing"
)

const turnStamp int64 = 1700000000000

// scenarioMap is the wall-less 5x5 fixture used by the turn scenarios.
func scenarioMap() *MapLayout {
	return NewMapLayout(5, 5, nil)
}

// stateWith builds a state holding both bases in opposite corners (ids 1
// and 2) plus the given units.
func stateWith(units ...Unit) *GameState {
	gs := &GameState{Units: []Unit{
		{ID: 1, Owner: Player1, Type: Base, Pos: Position{0, 0}},
		{ID: 2, Owner: Player2, Type: Base, Pos: Position{4, 4}},
	}}
	gs.Units = append(gs.Units, units...)
	return gs
}

func pawnAt(id int, owner PlayerID, x, y int) Unit {
	return Unit{ID: id, Owner: owner, Type: Pawn, Pos: Position{x, y}}
}

func foodAt(id, x, y int) Unit {
	return Unit{ID: id, Type: Food, Pos: Position{x, y}}
}

// runTurn applies one turn and checks the properties every turn must hold:
// structural invariants on the successor and the delta replaying the
// previous state into it.
func runTurn(t *testing.T, gs *GameState, moves map[PlayerID][]Move, pending []PendingSpawn, m *MapLayout, ids *IDSource) TurnResult {
	t.Helper()
	res := ApplyTurn(gs, moves, pending, m, ids, turnStamp)
	if err := CheckState(res.State, m); err != nil {
		t.Fatalf("invariants violated after turn: %v", err)
	}
	replayed := res.Delta.Apply(gs)
	if !reflect.DeepEqual(replayed.Units, res.State.Units) {
		t.Fatalf("delta replay mismatch: expected %+v, got %+v", res.State.Units, replayed.Units)
	}
	return res
}

func wantAt(t *testing.T, gs *GameState, id, x, y int) {
	t.Helper()
	u := gs.UnitByID(id)
	if u == nil {
		t.Fatalf("expected unit %d alive, got destroyed", id)
	}
	if u.Pos != (Position{x, y}) {
		t.Fatalf("expected unit %d at (%d,%d), got (%d,%d)", id, x, y, u.Pos.X, u.Pos.Y)
	}
}

func wantGone(t *testing.T, gs *GameState, id int) {
	t.Helper()
	if u := gs.UnitByID(id); u != nil {
		t.Fatalf("expected unit %d destroyed, got alive at (%d,%d)", id, u.Pos.X, u.Pos.Y)
	}
}

func TestHeadOnSwapCancels(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(10, Player1, 2, 2), pawnAt(11, Player2, 3, 2))
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: East}},
		Player2: {{UnitID: 11, Dir: West}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantAt(t, res.State, 10, 2, 2)
	wantAt(t, res.State, 11, 3, 2)
	if !res.Delta.Empty() {
		t.Errorf("expected empty delta, got %+v", res.Delta)
	}
	if res.Delta.Timestamp != turnStamp {
		t.Errorf("expected timestamp %d, got %d", turnStamp, res.Delta.Timestamp)
	}
}

func TestMutualAnnihilation(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(10, Player1, 2, 2), pawnAt(11, Player2, 3, 2))
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: East}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantGone(t, res.State, 10)
	wantGone(t, res.State, 11)
	if !reflect.DeepEqual(res.Delta.Removed, []int{10, 11}) {
		t.Errorf("expected removed [10 11], got %v", res.Delta.Removed)
	}
}

func TestFriendlyStack(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(10, Player1, 2, 2), pawnAt(11, Player1, 3, 3))
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: East}, {UnitID: 11, Dir: North}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantAt(t, res.State, 10, 3, 2)
	wantAt(t, res.State, 11, 3, 2)
}

func TestFriendlySwapProceeds(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(10, Player1, 2, 2), pawnAt(11, Player1, 3, 2))
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: East}, {UnitID: 11, Dir: West}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantAt(t, res.State, 10, 3, 2)
	wantAt(t, res.State, 11, 2, 2)
}

func TestOffMapAndWallMovesCancel(t *testing.T) {
	m := NewMapLayout(5, 5, []Position{{2, 1}})
	gs := stateWith(pawnAt(10, Player1, 2, 2), pawnAt(11, Player1, 0, 2))
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: North}, {UnitID: 11, Dir: West}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantAt(t, res.State, 10, 2, 2)
	wantAt(t, res.State, 11, 0, 2)
	if !res.Delta.Empty() {
		t.Errorf("expected empty delta, got %+v", res.Delta)
	}
}

func TestFoodConsumptionAndDelayedSpawn(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(10, Player1, 2, 2), foodAt(99, 3, 2))
	ids := NewIDSource(gs.Units)
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: East}},
	}

	first := runTurn(t, gs, moves, nil, m, ids)

	wantAt(t, first.State, 10, 3, 2)
	wantGone(t, first.State, 99)
	if !reflect.DeepEqual(first.Pending, []PendingSpawn{{Owner: Player1}}) {
		t.Fatalf("expected one pending spawn for player1, got %+v", first.Pending)
	}

	// The owed pawn appears on player1's base at the start of the next turn.
	second := runTurn(t, first.State, nil, first.Pending, m, ids)

	var spawned *Unit
	for i, u := range second.State.Units {
		if u.Type == Pawn && u.Owner == Player1 && u.ID > 99 {
			spawned = &second.State.Units[i]
		}
	}
	if spawned == nil {
		t.Fatal("expected a freshly spawned player1 pawn, got none")
	}
	if spawned.Pos != (Position{0, 0}) {
		t.Errorf("expected spawn at (0,0), got (%d,%d)", spawned.Pos.X, spawned.Pos.Y)
	}
	if len(second.Pending) != 0 {
		t.Errorf("expected no pending spawns after materializing, got %+v", second.Pending)
	}
}

func TestBaseDestructionShortCircuits(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(10, Player1, 4, 3), pawnAt(11, Player2, 0, 4))
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: South}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantGone(t, res.State, 2)
	wantGone(t, res.State, 10)
	wantAt(t, res.State, 11, 0, 4)
	if !reflect.DeepEqual(res.WinnerCandidates, []PlayerID{Player1}) {
		t.Fatalf("expected winner candidates [player1], got %v", res.WinnerCandidates)
	}

	// The attacker wins even though its pawn died razing the base.
	outcome := Evaluate(res.State, res.WinnerCandidates, 1, EndRules{})
	if !outcome.Over || outcome.Winner != Player1 {
		t.Errorf("expected player1 win, got %+v", outcome)
	}
}

func TestBothBasesRazedIsDraw(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(10, Player1, 4, 3), pawnAt(11, Player2, 0, 1))
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: South}},
		Player2: {{UnitID: 11, Dir: North}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantGone(t, res.State, 1)
	wantGone(t, res.State, 2)
	if len(res.WinnerCandidates) != 2 {
		t.Fatalf("expected two winner candidates, got %v", res.WinnerCandidates)
	}

	outcome := Evaluate(res.State, res.WinnerCandidates, 1, EndRules{})
	if !outcome.Over || outcome.Winner != NoPlayer {
		t.Errorf("expected a draw, got %+v", outcome)
	}
}

func TestDefendersStandingOnBaseSurviveRaze(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(
		pawnAt(10, Player1, 4, 3),
		pawnAt(11, Player2, 4, 4), // standing on its own base
	)
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: South}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantGone(t, res.State, 2)
	wantGone(t, res.State, 10)
	wantAt(t, res.State, 11, 4, 4)
}

func TestAnnihilationPairsByAscendingID(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(
		pawnAt(10, Player1, 2, 2),
		pawnAt(12, Player1, 3, 1),
		pawnAt(11, Player2, 3, 2),
	)
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: East}, {UnitID: 12, Dir: South}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantGone(t, res.State, 10)
	wantGone(t, res.State, 11)
	wantAt(t, res.State, 12, 3, 2)
}

func TestFoodWithNoSurvivorStays(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(
		pawnAt(10, Player1, 2, 2),
		pawnAt(11, Player2, 4, 2),
		foodAt(99, 3, 2),
	)
	moves := map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: East}},
		Player2: {{UnitID: 11, Dir: West}},
	}

	res := runTurn(t, gs, moves, nil, m, NewIDSource(gs.Units))

	wantGone(t, res.State, 10)
	wantGone(t, res.State, 11)
	wantAt(t, res.State, 99, 3, 2)
	if len(res.Pending) != 0 {
		t.Errorf("expected no pending spawns, got %+v", res.Pending)
	}
}

func TestSpawnSuppressedWhenEnemyOnBase(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(11, Player2, 0, 0))
	before := len(gs.Units)

	res := runTurn(t, gs, nil, []PendingSpawn{{Owner: Player1}}, m, NewIDSource(gs.Units))

	if got := len(res.State.Units); got != before {
		t.Errorf("expected %d units, got %d", before, got)
	}
	if p := res.State.PawnCount(Player1); p != 0 {
		t.Errorf("expected suppressed spawn, got %d player1 pawns", p)
	}
}

func TestSpawnSuppressedWhenBaseRazed(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(11, Player2, 1, 1))
	moves := map[PlayerID][]Move{
		Player2: {{UnitID: 11, Dir: NorthWest}},
	}

	res := runTurn(t, gs, moves, []PendingSpawn{{Owner: Player1}}, m, NewIDSource(gs.Units))

	wantGone(t, res.State, 1)
	wantGone(t, res.State, 11)
	if p := res.State.PawnCount(Player1); p != 0 {
		t.Errorf("expected suppressed spawn, got %d player1 pawns", p)
	}
	if !reflect.DeepEqual(res.WinnerCandidates, []PlayerID{Player2}) {
		t.Errorf("expected winner candidates [player2], got %v", res.WinnerCandidates)
	}
}

func TestEmptyTurnChangesNothing(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(10, Player1, 2, 2), pawnAt(11, Player2, 3, 3))

	res := runTurn(t, gs, nil, nil, m, NewIDSource(gs.Units))

	if !res.Delta.Empty() {
		t.Errorf("expected empty delta, got %+v", res.Delta)
	}
	if !reflect.DeepEqual(res.State.Units, gs.Units) {
		t.Errorf("expected unchanged units, got %+v", res.State.Units)
	}
}

func TestSpawnIDsStayMonotonic(t *testing.T) {
	m := scenarioMap()
	gs := stateWith(pawnAt(10, Player1, 2, 2), foodAt(99, 3, 2))
	ids := NewIDSource(gs.Units)

	first := runTurn(t, gs, map[PlayerID][]Move{
		Player1: {{UnitID: 10, Dir: East}},
	}, nil, m, ids)
	second := runTurn(t, first.State, nil, first.Pending, m, ids)

	seen := make(map[int]bool)
	last := 0
	for _, u := range second.State.Units {
		if seen[u.ID] {
			t.Fatalf("duplicate unit id %d", u.ID)
		}
		seen[u.ID] = true
		if u.ID < last {
			t.Fatalf("unit ids out of order: %d after %d", u.ID, last)
		}
		last = u.ID
	}
	if next := ids.Next(); next <= 99 {
		t.Errorf("expected ids above 99, got %d", next)
	}
}
