package gridwar

// EndRules configures the optional turn limit.
type EndRules struct {
	// MaxTurns ends the game after that many completed turns; 0 means
	// unlimited.
	MaxTurns int
	// TimeoutWinner is awarded the win when MaxTurns is reached. NoPlayer
	// makes the limit a draw; the tutorial sets it to the scripted side.
	TimeoutWinner PlayerID
}

// Outcome is the end evaluator's verdict for one completed turn.
type Outcome struct {
	Over   bool
	Winner PlayerID // NoPlayer on a draw
}

// Evaluate decides whether the game is over after a completed turn.
// candidates are the players who destroyed the enemy base this turn; exactly
// one candidate wins outright, even if the attacking pawn died razing the
// base. Two candidates mean the bases razed each other, which falls through
// to the survivorship rules and ends in a draw. Otherwise: exactly one
// player holding a base and at least one pawn wins; neither holding both is
// a draw; and a configured turn limit ends the game once turnsPlayed
// reaches it.
func Evaluate(gs *GameState, candidates []PlayerID, turnsPlayed int, rules EndRules) Outcome {
	if len(candidates) == 1 {
		return Outcome{Over: true, Winner: candidates[0]}
	}

	var alive []PlayerID
	for _, p := range AllPlayers() {
		if gs.BaseOf(p) != nil && gs.PawnCount(p) > 0 {
			alive = append(alive, p)
		}
	}
	switch len(alive) {
	case 1:
		return Outcome{Over: true, Winner: alive[0]}
	case 0:
		return Outcome{Over: true}
	}

	if rules.MaxTurns > 0 && turnsPlayed >= rules.MaxTurns {
		return Outcome{Over: true, Winner: rules.TimeoutWinner}
	}
	return Outcome{}
}
