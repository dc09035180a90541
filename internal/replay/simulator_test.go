package replay

import (
	"reflect"
	"testing"

	"github.com/pellmont/gridwar/internal/gamelog"
	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// testLog builds a three-delta recording: opening placement, pawn 3
// stepping east, pawn 4 getting captured.
func testLog(t *testing.T) (*gamelog.GameLog, []*gridwar.GameState) {
	t.Helper()
	cfg, err := gridwar.ParseArena("A.a..\n.....\n..b.B")
	if err != nil {
		t.Fatalf("ParseArena: %v", err)
	}

	s0 := &gridwar.GameState{}
	s1 := &gridwar.GameState{Units: cfg.Units}

	s2 := s1.Clone()
	s2.UnitByID(3).Pos = gridwar.Position{X: 3, Y: 0}

	s3 := s2.Clone()
	var kept []gridwar.Unit
	for _, u := range s3.Units {
		if u.ID != 4 {
			kept = append(kept, u)
		}
	}
	s3.Units = kept

	deltas := []gridwar.Delta{
		gridwar.DiffStates(s0, s1, 100),
		gridwar.DiffStates(s1, s2, 200),
		gridwar.DiffStates(s2, s3, 300),
	}

	wireMap := protocol.FromMap(cfg.Layout)
	doc := &gamelog.GameLog{
		Players:       map[string]string{"player1": "alice", "player2": "bob"},
		MapDimensions: wireMap.Dimension,
		Walls:         wireMap.Walls,
		Winner:        protocol.WinnerID(gridwar.Player1),
		Timestamp:     300,
		Turns:         protocol.FromDeltas(deltas),
	}
	return doc, []*gridwar.GameState{s0, s1, s2, s3}
}

func requireUnits(t *testing.T, sim *Simulator, want *gridwar.GameState, label string) {
	t.Helper()
	got := sim.State()
	if !reflect.DeepEqual(got.Units, want.Units) {
		t.Errorf("%s: units = %+v, want %+v", label, got.Units, want.Units)
	}
}

func TestSimulator_StepForward(t *testing.T) {
	doc, states := testLog(t)
	sim, err := New(doc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if sim.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", sim.Len())
	}
	if sim.Index() != 0 {
		t.Fatalf("Index() = %d, want 0", sim.Index())
	}
	requireUnits(t, sim, states[0], "position 0")

	for i := 1; i < sim.Len(); i++ {
		if err := sim.StepForward(); err != nil {
			t.Fatalf("StepForward to %d: %v", i, err)
		}
		if sim.Index() != i {
			t.Errorf("Index() = %d, want %d", sim.Index(), i)
		}
		requireUnits(t, sim, states[i], "after step")
	}

	if err := sim.StepForward(); err == nil {
		t.Error("StepForward past the end did not fail")
	}
	requireUnits(t, sim, states[3], "after failed step")
}

func TestSimulator_StepBack(t *testing.T) {
	doc, states := testLog(t)
	sim, err := New(doc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := sim.StepBack(); err == nil {
		t.Error("StepBack at the start did not fail")
	}

	if err := sim.JumpTo(3); err != nil {
		t.Fatalf("JumpTo(3): %v", err)
	}
	for i := 2; i >= 0; i-- {
		if err := sim.StepBack(); err != nil {
			t.Fatalf("StepBack to %d: %v", i, err)
		}
		if sim.Index() != i {
			t.Errorf("Index() = %d, want %d", sim.Index(), i)
		}
		requireUnits(t, sim, states[i], "after back step")
	}
}

func TestSimulator_JumpTo(t *testing.T) {
	doc, states := testLog(t)
	sim, err := New(doc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Jumps in both directions land on the same states as sequential play.
	order := []int{3, 1, 2, 0, 3}
	for _, target := range order {
		if err := sim.JumpTo(target); err != nil {
			t.Fatalf("JumpTo(%d): %v", target, err)
		}
		if sim.Index() != target {
			t.Errorf("Index() = %d, want %d", sim.Index(), target)
		}
		requireUnits(t, sim, states[target], "after jump")
	}

	for _, bad := range []int{-1, 4, 99} {
		if err := sim.JumpTo(bad); err == nil {
			t.Errorf("JumpTo(%d) did not fail", bad)
		}
	}
}

func TestSimulator_StateSnapshotsAreStable(t *testing.T) {
	doc, states := testLog(t)
	sim, err := New(doc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := sim.JumpTo(1); err != nil {
		t.Fatalf("JumpTo(1): %v", err)
	}
	held := sim.State()

	if err := sim.JumpTo(3); err != nil {
		t.Fatalf("JumpTo(3): %v", err)
	}
	if !reflect.DeepEqual(held.Units, states[1].Units) {
		t.Errorf("held snapshot changed after stepping: %+v", held.Units)
	}
}

func TestSimulator_BadDocuments(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) did not fail")
	}

	doc, _ := testLog(t)
	doc.Turns[1].AddedOrModified[0].Type = "DRAGON"
	if _, err := New(doc); err == nil {
		t.Error("New with an unknown unit type did not fail")
	}
}
