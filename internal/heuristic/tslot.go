package heuristic

import "github.com/tetriscore/core/internal/board"

// wellKnownTSlotLeft and wellKnownTSlotRight find the first column triple
// shaped like a T-slot overhang (a one-cell step down into a covered
// notch), scanning left to right. Used only to bias the evaluation
// toward boards that are setting up a T-spin, never by the move
// generator itself.
func wellKnownTSlotLeft(b board.Board) (board.PieceLocation, bool) {
	for x := int8(0); x < board.Width-2; x++ {
		y := int8(b.ColumnHeight(x))
		if int8(b.ColumnHeight(x+1)) >= y {
			continue
		}
		if !b.Occupied(x+2, y-1) {
			continue
		}
		if b.Occupied(x+2, y) {
			continue
		}
		if !b.Occupied(x+2, y+1) {
			continue
		}
		return board.PieceLocation{Piece: board.T, Rotation: board.South, X: x + 1, Y: y}, true
	}
	return board.PieceLocation{}, false
}

func wellKnownTSlotRight(b board.Board) (board.PieceLocation, bool) {
	for x := int8(0); x < board.Width-2; x++ {
		y := int8(b.ColumnHeight(x + 2))
		if int8(b.ColumnHeight(x+1)) >= y {
			continue
		}
		if !b.Occupied(x, y-1) {
			continue
		}
		if b.Occupied(x, y) {
			continue
		}
		if !b.Occupied(x, y+1) {
			continue
		}
		return board.PieceLocation{Piece: board.T, Rotation: board.South, X: x + 1, Y: y}, true
	}
	return board.PieceLocation{}, false
}
