package gridwar

import "testing"

func TestEvaluate(t *testing.T) {
	bothAlive := stateWith(pawnAt(10, Player1, 2, 2), pawnAt(11, Player2, 3, 3))
	p2NoPawns := stateWith(pawnAt(10, Player1, 2, 2))
	p2NoBase := &GameState{Units: []Unit{
		{ID: 1, Owner: Player1, Type: Base, Pos: Position{0, 0}},
		pawnAt(10, Player1, 2, 2),
		pawnAt(11, Player2, 3, 3),
	}}
	noBases := &GameState{Units: []Unit{
		pawnAt(10, Player1, 2, 2),
		pawnAt(11, Player2, 3, 3),
	}}

	tests := []struct {
		name        string
		gs          *GameState
		candidates  []PlayerID
		turnsPlayed int
		rules       EndRules
		want        Outcome
	}{
		{"continues", bothAlive, nil, 5, EndRules{}, Outcome{}},
		{"single candidate wins", bothAlive, []PlayerID{Player2}, 5, EndRules{}, Outcome{Over: true, Winner: Player2}},
		{"two candidates fall through to draw", noBases, []PlayerID{Player1, Player2}, 5, EndRules{}, Outcome{Over: true}},
		{"out of pawns loses", p2NoPawns, nil, 5, EndRules{}, Outcome{Over: true, Winner: Player1}},
		{"out of base loses", p2NoBase, nil, 5, EndRules{}, Outcome{Over: true, Winner: Player1}},
		{"neither qualifies is a draw", noBases, nil, 5, EndRules{}, Outcome{Over: true}},
		{"turn limit not reached", bothAlive, nil, 49, EndRules{MaxTurns: 50}, Outcome{}},
		{"turn limit draw", bothAlive, nil, 50, EndRules{MaxTurns: 50}, Outcome{Over: true}},
		{"turn limit tutorial win", bothAlive, nil, 50, EndRules{MaxTurns: 50, TimeoutWinner: Player2}, Outcome{Over: true, Winner: Player2}},
		{"win checked before turn limit", p2NoPawns, nil, 50, EndRules{MaxTurns: 50}, Outcome{Over: true, Winner: Player1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.gs, tc.candidates, tc.turnsPlayed, tc.rules)
			if got != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
