package neural

import "github.com/pellmont/gridwar/pkg/gridwar"

// ScoredMove is one pawn's best policy decision with its logit score.
type ScoredMove struct {
	UnitID    int
	Direction gridwar.Direction
	Stay      bool
	Score     float32
}

// DecodeMoveLogits takes the [MaxPawns, NumMoves] flattened policy logits
// and picks the best legal move per pawn. Off-map and wall steps are
// masked; stay is always legal and wins ties. Pawns beyond the available
// logit rows hold.
func DecodeMoveLogits(logits []float32, gs *gridwar.GameState, m *gridwar.MapLayout, me gridwar.PlayerID) []ScoredMove {
	pawns := gs.PawnsOf(me)
	moves := make([]ScoredMove, 0, len(pawns))

	for i, pawn := range pawns {
		start := i * NumMoves
		if start+NumMoves > len(logits) {
			break
		}
		row := logits[start : start+NumMoves]

		best := ScoredMove{UnitID: pawn.ID, Stay: true, Score: row[StayIndex]}
		for _, d := range gridwar.AllDirections() {
			target := pawn.Pos.Step(d)
			if !m.InBounds(target) || m.IsWall(target) {
				continue
			}
			if s := row[MoveIndex(d)]; s > best.Score {
				best = ScoredMove{UnitID: pawn.ID, Direction: d, Score: s}
			}
		}
		moves = append(moves, best)
	}
	return moves
}
