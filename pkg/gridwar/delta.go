package gridwar

import "sort"

// Delta is the minimal change between two consecutive states: units that
// appeared or changed, and the ids of units that vanished. A session's
// delta history replayed in order from the empty state reproduces every
// state the session went through, which is what the end-of-game broadcast
// and the game log rely on.
type Delta struct {
	AddedOrModified []Unit
	Removed         []int
	Timestamp       int64 // epoch milliseconds
}

// Empty reports whether the delta changes no units.
func (d Delta) Empty() bool {
	return len(d.AddedOrModified) == 0 && len(d.Removed) == 0
}

// DiffStates computes the delta that turns prev into next. Removed ids come
// out in prev's unit order, added/modified units in next's.
func DiffStates(prev, next *GameState, ts int64) Delta {
	d := Delta{Timestamp: ts}
	before := make(map[int]Unit, len(prev.Units))
	for _, u := range prev.Units {
		before[u.ID] = u
	}
	after := make(map[int]bool, len(next.Units))
	for _, u := range next.Units {
		after[u.ID] = true
		if old, ok := before[u.ID]; !ok || old != u {
			d.AddedOrModified = append(d.AddedOrModified, u)
		}
	}
	for _, u := range prev.Units {
		if !after[u.ID] {
			d.Removed = append(d.Removed, u.ID)
		}
	}
	return d
}

// Apply replays the delta onto a state and returns the successor. The input
// state is not mutated. Units stay sorted by ascending id, matching the
// order the updater maintains.
func (d Delta) Apply(gs *GameState) *GameState {
	next := gs.Clone()
	if len(d.Removed) > 0 {
		gone := make(map[int]bool, len(d.Removed))
		for _, id := range d.Removed {
			gone[id] = true
		}
		kept := next.Units[:0]
		for _, u := range next.Units {
			if !gone[u.ID] {
				kept = append(kept, u)
			}
		}
		next.Units = kept
	}
	for _, u := range d.AddedOrModified {
		if cur := next.UnitByID(u.ID); cur != nil {
			*cur = u
		} else {
			next.Units = append(next.Units, u)
		}
	}
	sort.Slice(next.Units, func(i, j int) bool {
		return next.Units[i].ID < next.Units[j].ID
	})
	return next
}
