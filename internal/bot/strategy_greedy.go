package bot

import "github.com/pellmont/gridwar/pkg/gridwar"

// Scoring weights for greedy move selection. Higher is better; the raze
// bonus dominates everything so an adjacent enemy base is always taken.
const (
	greedyRazeScore   = 1000.0
	greedyEatScore    = 100.0
	greedyStepCost    = 3.0  // per BFS step to the nearest food
	greedyAdvanceCost = 1.0  // per BFS step to the enemy base, when no food
	greedyTradeRisk   = 50.0 // target tile holds an enemy pawn
)

// GreedyStrategy chases food and, with none reachable, advances on the
// enemy base. Each pawn scores staying plus its eight steps against BFS
// distance fields and takes the best; tiles holding an enemy pawn are
// penalized so pawns avoid even trades, and a pawn stays put when no move
// beats standing still.
type GreedyStrategy struct{}

func (GreedyStrategy) Name() string { return "greedy" }

func (GreedyStrategy) PlanMoves(gs *gridwar.GameState, m *gridwar.MapLayout, me gridwar.PlayerID) []gridwar.ActionInput {
	var foods []gridwar.Position
	enemyPawns := make(map[gridwar.Position]bool)
	for _, u := range gs.Units {
		switch {
		case u.Type == gridwar.Food:
			foods = append(foods, u.Pos)
		case u.Type == gridwar.Pawn && u.Owner == me.Opponent():
			enemyPawns[u.Pos] = true
		}
	}

	foodDist := bfsDistances(m, foods)
	var baseDist []int
	if base := gs.BaseOf(me.Opponent()); base != nil {
		baseDist = bfsDistances(m, []gridwar.Position{base.Pos})
	}

	var actions []gridwar.ActionInput
	for _, pawn := range gs.PawnsOf(me) {
		best := tileScore(m, pawn.Pos, foodDist, baseDist, enemyPawns)
		var bestDir gridwar.Direction
		move := false

		for _, d := range gridwar.AllDirections() {
			target := pawn.Pos.Step(d)
			if !m.InBounds(target) || m.IsWall(target) {
				continue
			}
			if s := tileScore(m, target, foodDist, baseDist, enemyPawns); s > best {
				best = s
				bestDir = d
				move = true
			}
		}

		if move {
			actions = append(actions, gridwar.ActionInput{
				UnitID:    pawn.ID,
				Direction: bestDir.String(),
			})
		}
	}
	return actions
}

// tileScore rates a tile for one pawn. The enemy base tile always carries
// the raze bonus. Food distance steers movement when any food is reachable
// from the tile; otherwise the pawn is pulled toward the enemy base.
// Distance fields are nil or -1 where unreachable and then contribute
// nothing.
func tileScore(m *gridwar.MapLayout, pos gridwar.Position, foodDist, baseDist []int, enemyPawns map[gridwar.Position]bool) float64 {
	score := 0.0
	if enemyPawns[pos] {
		score -= greedyTradeRisk
	}
	if distAt(m, baseDist, pos) == 0 {
		score += greedyRazeScore
	}

	if d := distAt(m, foodDist, pos); d >= 0 {
		if d == 0 {
			score += greedyEatScore
		}
		score -= greedyStepCost * float64(d)
	} else if d := distAt(m, baseDist, pos); d >= 0 {
		score -= greedyAdvanceCost * float64(d)
	}
	return score
}

// distAt reads a flat distance field, returning -1 for a nil field or an
// unreachable tile.
func distAt(m *gridwar.MapLayout, dist []int, pos gridwar.Position) int {
	if dist == nil {
		return -1
	}
	return dist[pos.Y*m.Width+pos.X]
}

// bfsDistances computes shortest 8-direction step counts from the source
// tiles to every tile on the grid. Walls are impassable; unreachable tiles
// stay -1. Returns nil when there are no sources.
func bfsDistances(m *gridwar.MapLayout, sources []gridwar.Position) []int {
	if len(sources) == 0 {
		return nil
	}

	dist := make([]int, m.Width*m.Height)
	for i := range dist {
		dist[i] = -1
	}

	queue := make([]gridwar.Position, 0, len(sources))
	for _, s := range sources {
		idx := s.Y*m.Width + s.X
		if dist[idx] == -1 {
			dist[idx] = 0
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curDist := dist[cur.Y*m.Width+cur.X]

		for _, d := range gridwar.AllDirections() {
			next := cur.Step(d)
			if !m.InBounds(next) || m.IsWall(next) {
				continue
			}
			idx := next.Y*m.Width + next.X
			if dist[idx] == -1 {
				dist[idx] = curDist + 1
				queue = append(queue, next)
			}
		}
	}
	return dist
}
