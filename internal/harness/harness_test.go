package harness

import (
	"testing"
	"time"

	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/bot"
	"github.com/tetriscore/core/internal/dag"
	"github.com/tetriscore/core/internal/tstate"
)

type stubEval float64

func (e stubEval) Less(o dag.Evaluation) bool      { return e < o.(stubEval) }
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

type stubScorer struct{}

func (stubScorer) Score(state tstate.GameState, info tstate.PlacementInfo, softDrop uint32) (dag.Evaluation, dag.Reward) {
	return stubEval(0), -float64(softDrop)
}

func TestSuggestReturnsMovesAfterStart(t *testing.T) {
	h := New(stubEvaluator{}, stubScorer{}, 2)
	defer h.Close()

	root := tstate.GameState{Bag: board.FullBag, Reserve: board.O}
	h.Start(root, []board.Piece{board.T}, SevenBagRandomizer)

	var moves []board.Placement
	var info MoveInfo
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var ok bool
		moves, info, ok = h.Suggest()
		if ok && len(moves) > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if len(moves) == 0 {
		t.Fatalf("expected workers to expand the root and produce suggestions")
	}
	if info.Nodes == 0 {
		t.Fatalf("expected accumulated node count > 0, got %+v", info)
	}
}

func TestAdvanceResetsStatistics(t *testing.T) {
	h := New(stubEvaluator{}, stubScorer{}, 1)
	defer h.Close()

	root := tstate.GameState{Bag: board.FullBag, Reserve: board.O}
	h.Start(root, []board.Piece{board.T, board.T}, SevenBagRandomizer)

	var moves []board.Placement
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var ok bool
		moves, _, ok = h.Suggest()
		if ok && len(moves) > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if len(moves) == 0 {
		t.Fatalf("expected a suggestion before Advance")
	}

	h.Advance(moves[0])
	if h.nodes.Load() != 0 {
		t.Fatalf("nodes counter should reset on Advance, got %d", h.nodes.Load())
	}
}

func TestAdvanceAndSuggestAreNoOpsBeforeStart(t *testing.T) {
	h := New(stubEvaluator{}, stubScorer{}, 1)
	defer h.Close()

	if h.Advance(board.Placement{}) {
		t.Fatalf("expected Advance to report false with no bot started")
	}
	if h.NewPiece(board.T) {
		t.Fatalf("expected NewPiece to report false with no bot started")
	}
	if _, _, ok := h.Suggest(); ok {
		t.Fatalf("expected Suggest to report false with no bot started")
	}
}

func TestStopEmptiesTheSlot(t *testing.T) {
	h := New(stubEvaluator{}, stubScorer{}, 1)
	defer h.Close()

	root := tstate.GameState{Bag: board.FullBag, Reserve: board.O}
	h.Start(root, []board.Piece{board.T}, SevenBagRandomizer)
	h.Stop()

	_, ok := h.slot.ReadOpIfExists(func(b *bot.Bot) any { return nil })
	if ok {
		t.Fatalf("expected the bot slot to be empty after Stop")
	}
}
