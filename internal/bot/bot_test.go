package bot

import (
	"testing"

	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/dag"
	"github.com/tetriscore/core/internal/tstate"
)

type stubEval float64

func (e stubEval) Less(o dag.Evaluation) bool  { return e < o.(stubEval) }
func (e stubEval) Add(r dag.Reward) dag.Evaluation { return e + stubEval(r.(float64)) }

type stubEvaluator struct{}

func (stubEvaluator) Zero() dag.Evaluation { return stubEval(0) }

func (stubEvaluator) Average(candidates []dag.Evaluation) dag.Evaluation {
	if len(candidates) == 0 {
		return stubEval(-1000)
	}
	var sum stubEval
	for _, c := range candidates {
		if c == nil {
			sum += -1000
		} else {
			sum += c.(stubEval)
		}
	}
	return sum / stubEval(len(candidates))
}

// stubScorer scores every placement by negative softdrop distance, so
// the least-distance placement is always the best.
type stubScorer struct{}

func (stubScorer) Score(state tstate.GameState, info tstate.PlacementInfo, softDrop uint32) (dag.Evaluation, dag.Reward) {
	return stubEval(0), -float64(softDrop)
}

func TestDoWorkProducesNodesAndSuggestions(t *testing.T) {
	root := tstate.GameState{Bag: board.FullBag, Reserve: board.O}
	b := New(stubEvaluator{}, stubScorer{}, true, root, []board.Piece{board.T})

	stats := b.DoWork()
	if stats.Selections != 1 {
		t.Fatalf("Selections = %d, want 1", stats.Selections)
	}
	if stats.Expansions != 1 {
		t.Fatalf("Expansions = %d, want 1", stats.Expansions)
	}
	if stats.Nodes == 0 {
		t.Fatalf("expected some nodes generated on an empty board")
	}

	suggestions := b.Suggest()
	if len(suggestions) == 0 {
		t.Fatalf("expected at least one suggestion after expansion")
	}
}

func TestDoWorkSecondCycleCountsOneSelection(t *testing.T) {
	root := tstate.GameState{Bag: board.FullBag, Reserve: board.O}
	b := New(stubEvaluator{}, stubScorer{}, true, root, []board.Piece{board.T})

	first := b.DoWork()
	if first.Nodes == 0 {
		t.Fatalf("expected the first cycle to expand the root")
	}

	second := b.DoWork()
	if second.Selections != 1 {
		t.Fatalf("Selections = %d, want 1 (a cycle always counts one selection)", second.Selections)
	}
}

func TestAdvancePopsQueueAndMovesDagRoot(t *testing.T) {
	root := tstate.GameState{Bag: board.FullBag, Reserve: board.O}
	b := New(stubEvaluator{}, stubScorer{}, true, root, []board.Piece{board.T, board.T})

	b.DoWork()
	suggestions := b.Suggest()
	if len(suggestions) == 0 {
		t.Fatalf("expected a suggestion before advancing")
	}

	b.Advance(suggestions[0])
	if len(b.queue) != 1 {
		t.Fatalf("queue length after Advance = %d, want 1", len(b.queue))
	}
}

func TestAdvanceOnEmptyQueuePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Advance on an empty queue to panic")
		}
	}()
	root := tstate.GameState{Bag: board.FullBag, Reserve: board.O}
	b := New(stubEvaluator{}, stubScorer{}, true, root, nil)
	b.Advance(board.Placement{})
}

func TestNewPieceExtendsQueue(t *testing.T) {
	root := tstate.GameState{Bag: board.FullBag, Reserve: board.O}
	b := New(stubEvaluator{}, stubScorer{}, true, root, nil)
	b.NewPiece(board.T)
	if len(b.queue) != 1 || b.queue[0] != board.T {
		t.Fatalf("queue after NewPiece = %v, want [T]", b.queue)
	}
}
