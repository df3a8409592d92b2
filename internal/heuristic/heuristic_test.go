package heuristic

import (
	"testing"

	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/dag"
	"github.com/tetriscore/core/internal/tstate"
)

func TestDefaultWeightsDecode(t *testing.T) {
	w := DefaultWeights()
	if w.Holes >= 0 {
		t.Fatalf("expected a negative holes coefficient, got %v", w.Holes)
	}
	if w.PerfectClear <= 0 {
		t.Fatalf("expected a positive perfect-clear coefficient, got %v", w.PerfectClear)
	}
}

func TestAverageTreatsNilAsMissingSentinel(t *testing.T) {
	s := New()
	got := s.Average([]dag.Evaluation{Eval(10), nil})
	want := (Eval(10) + missing) / 2
	if got.(Eval) != want {
		t.Fatalf("Average = %v, want %v", got, want)
	}
}

func TestAverageOfEmptyIsMissing(t *testing.T) {
	s := New()
	if s.Average(nil).(Eval) != missing {
		t.Fatalf("Average(nil) = %v, want missing sentinel", s.Average(nil))
	}
}

func TestScorePenalizesHolesMoreThanAFlatBoard(t *testing.T) {
	s := New()

	var flat board.Board
	for i := range flat.Cols {
		flat.Cols[i] = 0b1
	}

	var holey board.Board
	for i := range holey.Cols {
		holey.Cols[i] = 0b101
	}

	flatState := tstate.GameState{Board: flat, Bag: board.FullBag, Reserve: board.O}
	holeyState := tstate.GameState{Board: holey, Bag: board.FullBag, Reserve: board.O}

	info := tstate.PlacementInfo{Placement: board.Placement{Location: board.PieceLocation{Piece: board.O}}}

	flatEval, _ := s.Score(flatState, info, 0)
	holeyEval, _ := s.Score(holeyState, info, 0)

	if !holeyEval.(Eval).Less(flatEval.(Eval)) {
		t.Fatalf("expected a board with holes to evaluate worse: flat=%v holey=%v", flatEval, holeyEval)
	}
}

func TestScoreRewardsLineClears(t *testing.T) {
	s := New()
	state := tstate.GameState{Bag: board.FullBag, Reserve: board.O}
	none := tstate.PlacementInfo{Placement: board.Placement{Location: board.PieceLocation{Piece: board.O}, Spin: board.NoSpin}, LinesCleared: 0}
	single := tstate.PlacementInfo{Placement: board.Placement{Location: board.PieceLocation{Piece: board.O}, Spin: board.NoSpin}, LinesCleared: 1}

	_, noneReward := s.Score(state, none, 0)
	_, singleReward := s.Score(state, single, 0)
	// The default weights penalize a single clear (they favor tetrises),
	// so check that the line-clear weight is what separates the two.
	got := singleReward.(float64) - noneReward.(float64)
	want := s.Weights.NormalClears[1] - s.Weights.NormalClears[0]
	if got != want {
		t.Fatalf("single-clear reward minus no-clear reward = %v, want %v", got, want)
	}
}
