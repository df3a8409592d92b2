package tstate

import (
	"testing"

	"github.com/tetriscore/core/internal/board"
)

func TestAdvanceBagRefillsWhenEmpty(t *testing.T) {
	s := GameState{Bag: board.SetOf(board.I), Reserve: board.O}
	s.Advance(board.I, board.Placement{Location: board.PieceLocation{Piece: board.I, Rotation: board.North, X: 4, Y: 0}})
	if s.Bag != board.FullBag {
		t.Fatalf("Bag = %#b, want FullBag after drain", s.Bag)
	}
}

func TestAdvanceHoldSwapsReserve(t *testing.T) {
	s := GameState{Bag: board.FullBag, Reserve: board.O}
	// "next" is I, but the placement played is actually O (the old
	// reserve) -- this is a hold swap.
	info := s.Advance(board.I, board.Placement{Location: board.PieceLocation{Piece: board.O, Rotation: board.North, X: 4, Y: 0}})
	if s.Reserve != board.I {
		t.Fatalf("Reserve = %v, want I after hold", s.Reserve)
	}
	_ = info
}

func TestAdvancePerfectClear(t *testing.T) {
	var s GameState
	s.Bag = board.FullBag
	s.Reserve = board.O
	// Fill columns 0-5 of row 0, leaving a 4-wide gap for a flat I piece
	// to complete the row without touching any other row.
	for x := int8(0); x < 6; x++ {
		s.Board.Cols[x] = 1
	}
	info := s.Advance(board.I, board.Placement{Location: board.PieceLocation{Piece: board.I, Rotation: board.North, X: 7, Y: 0}})
	if info.LinesCleared != 1 {
		t.Fatalf("LinesCleared = %d, want 1", info.LinesCleared)
	}
	if !info.PerfectClear {
		t.Fatalf("expected perfect clear")
	}
}

func TestAdvanceComboResetsOnNoClear(t *testing.T) {
	var s GameState
	s.Bag = board.FullBag
	s.Reserve = board.O
	s.Combo = 5
	s.Advance(board.O, board.Placement{Location: board.PieceLocation{Piece: board.O, Rotation: board.North, X: 0, Y: 10}})
	if s.Combo != 0 {
		t.Fatalf("Combo = %d, want 0 after no-clear placement", s.Combo)
	}
}

func TestAdvanceBackToBackExtends(t *testing.T) {
	var s GameState
	s.Bag = board.FullBag
	s.Reserve = board.O
	s.BackToBack = true
	// A spin clear (Spin != NoSpin) with at least one line counts as hard.
	// Leave columns 7-9 open for the T piece to fill on row 0.
	for x := int8(0); x < 7; x++ {
		s.Board.Cols[x] = 1
	}
	info := s.Advance(board.T, board.Placement{
		Location: board.PieceLocation{Piece: board.T, Rotation: board.North, X: 8, Y: 0},
		Spin:     board.FullSpin,
	})
	if !info.BackToBack {
		t.Fatalf("expected back-to-back extension")
	}
}
