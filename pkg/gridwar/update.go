package gridwar

import "sort"

// PendingSpawn is a pawn owed to a player for food consumed this turn. It
// materializes on the owner's base tile during the next turn's spawn phase.
type PendingSpawn struct {
	Owner PlayerID
}

// TurnResult is everything one turn produces: the successor state, the delta
// against the previous state, the spawns owed to the next turn, and the
// players who destroyed the enemy base this turn.
type TurnResult struct {
	State            *GameState
	Delta            Delta
	Pending          []PendingSpawn
	WinnerCandidates []PlayerID
}

// intent is one unit's resolved movement for the turn. Non-acting units and
// cancelled moves keep target == unit.Pos with moved false.
type intent struct {
	unit   Unit
	target Position
	moved  bool
}

// ApplyTurn advances the game by one turn. Both players' moves are
// simultaneous: the turn runs in four ordered phases, each computed from its
// input snapshot, so the outcome never depends on submission order.
//
//  1. Intent resolution: each commanded pawn targets pos+dir; off-map and
//     wall targets cancel the move.
//  2. Swap cancellation: two enemy pawns exchanging tiles both stay put.
//     Friendly pawns may pass through each other.
//  3. Tile resolution per target tile: an enemy pawn arriving on a base
//     destroys the base and every pawn that arrived there; otherwise pawns
//     of both owners annihilate pair-by-pair in ascending id order and the
//     majority's remainder survives; a lone owner's pawns stack freely.
//     Food sharing a tile with a surviving pawn is consumed once and owes
//     the survivor's owner a spawn next turn; food with no survivor stays.
//  4. Spawn resolution: spawns owed from the previous turn appear on the
//     owner's base tile, unless the base is gone or an enemy pawn stands
//     on it.
//
// moves must already be validated; unknown ids and non-pawn moves are
// skipped. now stamps the delta, in epoch milliseconds.
func ApplyTurn(gs *GameState, moves map[PlayerID][]Move, pending []PendingSpawn, m *MapLayout, ids *IDSource, now int64) TurnResult {
	intents := make([]intent, len(gs.Units))
	byID := make(map[int]int, len(gs.Units))
	for i, u := range gs.Units {
		intents[i] = intent{unit: u, target: u.Pos}
		byID[u.ID] = i
	}

	// Phase 1: intents.
	for _, player := range AllPlayers() {
		for _, mv := range moves[player] {
			i, ok := byID[mv.UnitID]
			if !ok {
				continue
			}
			in := &intents[i]
			if in.unit.Owner != player || in.unit.Type != Pawn {
				continue
			}
			target := in.unit.Pos.Step(mv.Dir)
			if !m.InBounds(target) || m.IsWall(target) {
				continue // cancelled, the pawn holds
			}
			in.target = target
			in.moved = true
		}
	}

	// Phase 2: enemy swaps cancel both sides. The pairs are collected from
	// the phase-1 snapshot first so one cancellation cannot mask another.
	var swapped []int
	for i := range intents {
		a := &intents[i]
		if !a.moved {
			continue
		}
		for j := i + 1; j < len(intents); j++ {
			b := &intents[j]
			if !b.moved || a.unit.Owner == b.unit.Owner {
				continue
			}
			if a.target == b.unit.Pos && b.target == a.unit.Pos {
				swapped = append(swapped, i, j)
			}
		}
	}
	for _, i := range swapped {
		intents[i].target = intents[i].unit.Pos
		intents[i].moved = false
	}

	// Phase 3: resolve each occupied target tile. Tiles are visited in
	// row-major order and tile members in ascending id order so pairing,
	// food consumption, and the pending-spawn queue are deterministic.
	groups := make(map[Position][]int)
	for i := range intents {
		groups[intents[i].target] = append(groups[intents[i].target], i)
	}
	tiles := make([]Position, 0, len(groups))
	for pos := range groups {
		tiles = append(tiles, pos)
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Y != tiles[j].Y {
			return tiles[i].Y < tiles[j].Y
		}
		return tiles[i].X < tiles[j].X
	})

	destroyed := make(map[int]bool)
	var owed []PendingSpawn
	var candidates []PlayerID

	for _, pos := range tiles {
		members := groups[pos]
		sort.Slice(members, func(a, b int) bool {
			return intents[members[a]].unit.ID < intents[members[b]].unit.ID
		})

		var base *intent
		var foods []int
		pawns := make(map[PlayerID][]int, 2)
		for _, i := range members {
			in := &intents[i]
			switch in.unit.Type {
			case Base:
				base = in
			case Food:
				foods = append(foods, i)
			case Pawn:
				pawns[in.unit.Owner] = append(pawns[in.unit.Owner], i)
			}
		}

		// An enemy pawn reaching a base razes it. The base dies along with
		// every pawn that arrived this turn, friend or foe; pawns already
		// standing on the tile survive.
		if base != nil {
			attacker := base.unit.Owner.Opponent()
			arrived := false
			for _, i := range pawns[attacker] {
				if intents[i].moved {
					arrived = true
					break
				}
			}
			if arrived {
				destroyed[base.unit.ID] = true
				for _, side := range pawns {
					for _, i := range side {
						if intents[i].moved {
							destroyed[intents[i].unit.ID] = true
						}
					}
				}
				candidates = append(candidates, attacker)
				continue
			}
		}

		// Mutual annihilation: both owners present, pair off ascending.
		p1, p2 := pawns[Player1], pawns[Player2]
		if len(p1) > 0 && len(p2) > 0 {
			n := min(len(p1), len(p2))
			for k := 0; k < n; k++ {
				destroyed[intents[p1[k]].unit.ID] = true
				destroyed[intents[p2[k]].unit.ID] = true
			}
		}

		// Food goes to the lowest-id surviving pawn's owner.
		if len(foods) > 0 {
			var eater *intent
			for _, i := range members {
				in := &intents[i]
				if in.unit.Type == Pawn && !destroyed[in.unit.ID] {
					eater = in
					break
				}
			}
			if eater != nil {
				for _, i := range foods {
					destroyed[intents[i].unit.ID] = true
					owed = append(owed, PendingSpawn{Owner: eater.unit.Owner})
				}
			}
		}
	}

	next := &GameState{
		Units:   make([]Unit, 0, len(gs.Units)),
		StartAt: gs.StartAt,
	}
	for _, in := range intents {
		if destroyed[in.unit.ID] {
			continue
		}
		u := in.unit
		u.Pos = in.target
		next.Units = append(next.Units, u)
	}

	// Phase 4: spawns owed from the previous turn. Fresh ids keep the unit
	// list sorted since the allocator is monotonic.
	for _, ps := range pending {
		base := next.BaseOf(ps.Owner)
		if base == nil {
			continue // base destroyed, spawn suppressed
		}
		blocked := false
		for _, u := range next.UnitsAt(base.Pos) {
			if u.Type == Pawn && u.Owner == ps.Owner.Opponent() {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		next.Units = append(next.Units, Unit{
			ID:    ids.Next(),
			Owner: ps.Owner,
			Type:  Pawn,
			Pos:   base.Pos,
		})
	}

	return TurnResult{
		State:            next,
		Delta:            DiffStates(gs, next, now),
		Pending:          owed,
		WinnerCandidates: candidates,
	}
}
