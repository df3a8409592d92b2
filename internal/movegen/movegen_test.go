package movegen

import (
	"testing"

	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/tstate"
)

// S1: empty board, single I piece: exactly 17 distinct canonical placements
// (the horizontal and vertical orientations across every fitting column).
func TestFindMovesEmptyBoardI(t *testing.T) {
	var b board.Board
	results := FindMoves(b, board.I)
	if len(results) != 17 {
		t.Fatalf("len(results) = %d, want 17", len(results))
	}
	seen := make(map[board.Placement]bool)
	for _, r := range results {
		if seen[r.Placement] {
			t.Fatalf("duplicate placement: %+v", r.Placement)
		}
		seen[r.Placement] = true
		if r.Placement.Location.Obstructed(b) {
			t.Fatalf("returned placement is obstructed: %+v", r.Placement)
		}
		if r.Placement.Location.Canonical() != r.Placement.Location {
			t.Fatalf("returned placement is not canonical: %+v", r.Placement)
		}
	}
}

// S2: a T-spin double cave. find_moves must include a placement with
// Spin == FullSpin that clears 2 lines when advanced.
func TestFindMovesTSpinDouble(t *testing.T) {
	var b board.Board
	// A T-spin double cave centered on column 4, rows 2-3: rows 2 and 3
	// are full except for the T-shaped slot, and (3,4) overhangs it, so a
	// South-facing T only gets in by rotating from East at (4,3).
	b.Cols[0] = 0b01100
	b.Cols[1] = 0b01100
	b.Cols[2] = 0b01100
	b.Cols[3] = 0b10100
	b.Cols[4] = 0b00010
	b.Cols[5] = 0b00100
	b.Cols[6] = 0b01100
	b.Cols[7] = 0b01100
	b.Cols[8] = 0b01100
	b.Cols[9] = 0b01100

	results := FindMoves(b, board.T)

	found := false
	for _, r := range results {
		if r.Placement.Spin != board.FullSpin {
			continue
		}
		s := tstate.GameState{Board: b, Bag: board.FullBag, Reserve: board.O}
		info := s.Advance(board.T, r.Placement)
		if info.LinesCleared == 2 {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("no full-spin placement clearing 2 lines found among %d results", len(results))
	}
}

func TestFindMovesNoDuplicateCanonicalPlacements(t *testing.T) {
	var b board.Board
	b.Cols[5] = 0b111 // a little clutter
	for _, p := range board.Pieces {
		results := FindMoves(b, p)
		seen := make(map[board.Placement]bool)
		for _, r := range results {
			if seen[r.Placement] {
				t.Fatalf("piece %v: duplicate canonical placement %+v", p, r.Placement)
			}
			seen[r.Placement] = true
		}
	}
}

func TestFindMovesEmptyWhenSpawnBlocked(t *testing.T) {
	var b board.Board
	// Fill the entire spawn area (rows 19 through 21 across the spawn
	// columns) so neither spawn attempt succeeds.
	for x := int8(3); x <= 6; x++ {
		b.Cols[x] = (1 << 19) | (1 << 20) | (1 << 21)
	}
	results := FindMoves(b, board.O)
	if len(results) != 0 {
		t.Fatalf("expected no moves with spawn blocked, got %d", len(results))
	}
}
