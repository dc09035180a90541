package bot

import (
	"log"
	"sync"

	gonnx "github.com/advancedclimatesystems/gonnx"
	"gorgonia.org/tensor"

	"github.com/pellmont/gridwar/internal/bot/neural"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// NeuralModelPath is the directory containing policy_v1.onnx. Set this at
// startup before creating strategies; empty means "models".
var NeuralModelPath string

// newNeuralOrFallback attempts to create a NeuralStrategy. If loading
// fails, it falls back to GreedyStrategy.
func newNeuralOrFallback() Strategy {
	s, err := newNeuralStrategy()
	if err != nil {
		log.Printf("bot: neural strategy requested but model load failed: %v; falling back to greedy", err)
		return GreedyStrategy{}
	}
	return s
}

// NeuralStrategy uses gonnx (pure Go ONNX runtime) to run policy network
// inference for move selection. The shipped policy model is trained on the
// standard arena; on boards of another size the input shapes disagree,
// inference errors, and every turn falls back to greedy.
type NeuralStrategy struct {
	policy *gonnx.Model
	mu     sync.Mutex
}

// newNeuralStrategy loads the policy model.
func newNeuralStrategy() (*NeuralStrategy, error) {
	path := NeuralModelPath
	if path == "" {
		path = "models"
	}
	policy, err := gonnx.NewModelFromFile(path + "/policy_v1.onnx")
	if err != nil {
		return nil, err
	}
	return &NeuralStrategy{policy: policy}, nil
}

func (s *NeuralStrategy) Name() string { return "neural" }

// PlanMoves encodes the board, runs the policy network, and submits the
// best legal move per pawn. Stay decisions submit nothing.
func (s *NeuralStrategy) PlanMoves(gs *gridwar.GameState, m *gridwar.MapLayout, me gridwar.PlayerID) []gridwar.ActionInput {
	logits := s.runPolicy(gs, m, me)
	if logits == nil {
		log.Printf("bot/neural: policy inference failed for %s, falling back to greedy", me)
		return GreedyStrategy{}.PlanMoves(gs, m, me)
	}

	var actions []gridwar.ActionInput
	for _, mv := range neural.DecodeMoveLogits(logits, gs, m, me) {
		if mv.Stay {
			continue
		}
		actions = append(actions, gridwar.ActionInput{
			UnitID:    mv.UnitID,
			Direction: mv.Direction.String(),
		})
	}
	return actions
}

// runPolicy encodes state and runs the policy model, returning flat logits.
func (s *NeuralStrategy) runPolicy(gs *gridwar.GameState, m *gridwar.MapLayout, me gridwar.PlayerID) []float32 {
	boardData := neural.EncodeBoard(gs, m, me)
	pawnIndices := neural.CollectPawnIndices(gs, m, me)

	boardTensor := tensor.New(
		tensor.WithShape(1, m.Width*m.Height, neural.NumFeatures),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(boardData),
	)
	pawnTensor := tensor.New(
		tensor.WithShape(1, neural.MaxPawns),
		tensor.Of(tensor.Int64),
		tensor.WithBacking(pawnIndices),
	)

	inputs := gonnx.Tensors{
		"board":        boardTensor,
		"pawn_indices": pawnTensor,
	}

	s.mu.Lock()
	outputs, err := s.policy.Run(inputs)
	s.mu.Unlock()
	if err != nil {
		log.Printf("bot/neural: policy run error: %v", err)
		return nil
	}

	out, ok := outputs["move_logits"]
	if !ok {
		log.Printf("bot/neural: output 'move_logits' not found")
		return nil
	}

	switch d := out.Data().(type) {
	case []float32:
		return d
	case []float64:
		f32 := make([]float32, len(d))
		for i, v := range d {
			f32[i] = float32(v)
		}
		return f32
	default:
		log.Printf("bot/neural: unexpected output type %T", out.Data())
		return nil
	}
}
