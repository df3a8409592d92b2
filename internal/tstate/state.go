// Package tstate holds the game-state transition: applying a placement to a
// board and bag/hold/combo/back-to-back bookkeeping, and reporting what the
// placement did (lines cleared, perfect clear, and so on).
package tstate

import (
	"math/bits"

	"github.com/tetriscore/core/internal/board"
)

// GameState is the full state a search node keys on: the board, the
// seven-bag remainder, the held piece, and the back-to-back/combo counters.
type GameState struct {
	Board       board.Board
	Bag         board.PieceSet
	Reserve     board.Piece
	BackToBack  bool
	Combo       uint8
}

// PlacementInfo reports the outcome of applying a placement via Advance.
type PlacementInfo struct {
	Placement     board.Placement
	LinesCleared  uint32
	Combo         uint32
	BackToBack    bool
	PerfectClear  bool
}

// Advance applies placement (the result of actually playing "next") to s
// in place, and returns the resulting PlacementInfo.
func (s *GameState) Advance(next board.Piece, placement board.Placement) PlacementInfo {
	s.Bag = s.Bag.Remove(next)
	if s.Bag.Empty() {
		s.Bag = board.FullBag
	}

	if placement.Location.Piece != next {
		// The piece actually placed came from the previous reserve: this
		// was a hold.
		s.Reserve = next
	}

	s.Board.Place(placement.Location)

	cleared := s.Board.LineClears()
	var backToBackExtended bool
	if cleared != 0 {
		s.Board.RemoveLines(cleared)
		if s.Combo < 255 {
			s.Combo++
		}
		hard := bits.OnesCount64(cleared) == 4 || placement.Spin != board.NoSpin
		backToBackExtended = hard && s.BackToBack
		s.BackToBack = hard
	} else {
		s.Combo = 0
	}

	return PlacementInfo{
		Placement:    placement,
		LinesCleared: uint32(bits.OnesCount64(cleared)),
		Combo:        uint32(s.Combo),
		BackToBack:   backToBackExtended,
		PerfectClear: s.Board.Empty(),
	}
}
