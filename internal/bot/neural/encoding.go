package neural

import "github.com/pellmont/gridwar/pkg/gridwar"

// EncodeBoard encodes a state into a flat [tiles*NumFeatures] float32 array,
// row-major over tiles. Own and enemy planes are relative to the viewer.
func EncodeBoard(gs *gridwar.GameState, m *gridwar.MapLayout, viewer gridwar.PlayerID) []float32 {
	board := make([]float32, m.Width*m.Height*NumFeatures)

	for _, w := range m.Walls {
		board[TileIndex(w, m)*NumFeatures+FeatWall] = 1
	}

	for _, u := range gs.Units {
		base := TileIndex(u.Pos, m) * NumFeatures
		switch {
		case u.Type == gridwar.Food:
			board[base+FeatFood] = 1
		case u.Type == gridwar.Base && u.Owner == viewer:
			board[base+FeatOwnBase] = 1
		case u.Type == gridwar.Base:
			board[base+FeatEnemyBase] = 1
		case u.Owner == viewer:
			board[base+FeatOwnPawn] = 1
		default:
			board[base+FeatEnemyPawn] = 1
		}
	}
	return board
}

// CollectPawnIndices returns the tile indices of the viewer's pawns in
// state order (ascending ids), padded to MaxPawns with zeros. The order
// matches the per-pawn logit rows the policy model emits.
func CollectPawnIndices(gs *gridwar.GameState, m *gridwar.MapLayout, viewer gridwar.PlayerID) []int64 {
	indices := make([]int64, 0, MaxPawns)
	for _, p := range gs.PawnsOf(viewer) {
		if len(indices) >= MaxPawns {
			break
		}
		indices = append(indices, int64(TileIndex(p.Pos, m)))
	}
	for len(indices) < MaxPawns {
		indices = append(indices, 0)
	}
	return indices
}
