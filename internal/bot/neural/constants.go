// Package neural encodes GridWar states for the ONNX policy network and
// decodes its per-pawn move logits back into legal actions. The encoding
// matches the self-play training pipeline: tile-major feature planes, pawn
// rows in state order, one logit row of eight directions plus stay.
package neural

import "github.com/pellmont/gridwar/pkg/gridwar"

// NumFeatures is the number of feature planes per tile in the board tensor.
const NumFeatures = 6

// MaxPawns is the maximum number of pawns the policy head scores per side.
const MaxPawns = 32

// NumMoves is the number of policy outputs per pawn: the eight compass
// directions in gridwar order plus stay.
const NumMoves = 9

// StayIndex is the policy output index for keeping a pawn on its tile.
const StayIndex = 8

// Feature plane offsets within a tile's feature vector. Own/enemy are
// relative to the viewer passed to EncodeBoard, so one network plays
// both sides.
const (
	FeatWall      = 0
	FeatOwnBase   = 1
	FeatEnemyBase = 2
	FeatOwnPawn   = 3
	FeatEnemyPawn = 4
	FeatFood      = 5
)

// MoveIndex returns the policy output index for a direction. Directions
// occupy indices 0..7 in compass order starting north; compare StayIndex.
func MoveIndex(d gridwar.Direction) int {
	return int(d)
}

// TileIndex returns the row-major tile index of a position.
func TileIndex(pos gridwar.Position, m *gridwar.MapLayout) int {
	return pos.Y*m.Width + pos.X
}
