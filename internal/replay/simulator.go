// Package replay steps a recorded game's delta history back and forth for
// the replay viewer.
package replay

import (
	"fmt"
	"sync"

	"github.com/pellmont/gridwar/internal/gamelog"
	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// Simulator walks the positions of one recorded game. Position 0 is the
// empty board; position 1 is the opening placement (the first recorded
// delta); the last position is the final state. States handed out by State
// are immutable snapshots, so callers may hold them across steps.
type Simulator struct {
	mu     sync.RWMutex
	layout *gridwar.MapLayout
	deltas []gridwar.Delta
	index  int // deltas applied so far
	state  *gridwar.GameState
}

// New builds a simulator from a game log document, decoding its wire
// deltas, and starts at position 0.
func New(doc *gamelog.GameLog) (*Simulator, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil game log")
	}
	layout := protocol.Map{Dimension: doc.MapDimensions, Walls: doc.Walls}.ToLayout()

	deltas := make([]gridwar.Delta, 0, len(doc.Turns))
	for i, wd := range doc.Turns {
		d, err := wd.ToDelta()
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		deltas = append(deltas, d)
	}

	return &Simulator{
		layout: layout,
		deltas: deltas,
		state:  &gridwar.GameState{},
	}, nil
}

// Layout returns the board geometry.
func (s *Simulator) Layout() *gridwar.MapLayout { return s.layout }

// Len returns the number of positions, including the empty position 0.
func (s *Simulator) Len() int { return len(s.deltas) + 1 }

// Index returns the current position.
func (s *Simulator) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// State returns the state at the current position.
func (s *Simulator) State() *gridwar.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// StepForward applies the next delta.
func (s *Simulator) StepForward() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepForwardLocked()
}

func (s *Simulator) stepForwardLocked() error {
	if s.index >= len(s.deltas) {
		return fmt.Errorf("already at the final position")
	}
	s.state = s.deltas[s.index].Apply(s.state)
	s.index++
	return nil
}

// StepBack rewinds one position. Deltas only describe forward changes, so
// the previous state is rebuilt by replaying from the start.
func (s *Simulator) StepBack() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == 0 {
		return fmt.Errorf("already at the start")
	}
	return s.seekLocked(s.index - 1)
}

// JumpTo moves to an absolute position in [0, Len()-1].
func (s *Simulator) JumpTo(target int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if target < 0 || target > len(s.deltas) {
		return fmt.Errorf("position %d out of range [0, %d]", target, len(s.deltas))
	}
	return s.seekLocked(target)
}

func (s *Simulator) seekLocked(target int) error {
	if target < s.index {
		s.state = &gridwar.GameState{}
		s.index = 0
	}
	for s.index < target {
		if err := s.stepForwardLocked(); err != nil {
			return err
		}
	}
	return nil
}
