package movegen

import "github.com/tetriscore/core/internal/board"

// offset is a (dx, dy) kick candidate.
type offset struct{ dx, dy int8 }

// srsOffsets returns, for a piece in rotation r, the five SRS offset-table
// entries relative to its spawn position.
func srsOffsets(p board.Piece, r board.Rotation) [5]offset {
	switch p {
	case board.O:
		switch r {
		case board.North:
			return [5]offset{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}}
		case board.East:
			return [5]offset{{0, -1}, {0, -1}, {0, -1}, {0, -1}, {0, -1}}
		case board.South:
			return [5]offset{{-1, -1}, {-1, -1}, {-1, -1}, {-1, -1}, {-1, -1}}
		default: // West
			return [5]offset{{-1, 0}, {-1, 0}, {-1, 0}, {-1, 0}, {-1, 0}}
		}
	case board.I:
		switch r {
		case board.North:
			return [5]offset{{0, 0}, {-1, 0}, {2, 0}, {-1, 0}, {2, 0}}
		case board.East:
			return [5]offset{{-1, 0}, {0, 0}, {0, 0}, {0, 1}, {0, -2}}
		case board.South:
			return [5]offset{{-1, 1}, {1, 1}, {-2, 1}, {1, 0}, {-2, 0}}
		default: // West
			return [5]offset{{0, 1}, {0, 1}, {0, 1}, {0, -1}, {0, 2}}
		}
	default: // T, L, J, S, Z
		switch r {
		case board.North:
			return [5]offset{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}}
		case board.East:
			return [5]offset{{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}}
		case board.South:
			return [5]offset{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}}
		default: // West
			return [5]offset{{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}}
		}
	}
}

// rotationKicks computes the up-to-5 (dx, dy) candidates for rotating from
// `from` into `to`, derived as the difference between the two rotations'
// SRS offset tables at each of the five indices.
func rotationKicks(piece board.Piece, from, to board.Rotation) [5]offset {
	a := srsOffsets(piece, from)
	b := srsOffsets(piece, to)
	var out [5]offset
	for i := range out {
		out[i] = offset{a[i].dx - b[i].dx, a[i].dy - b[i].dy}
	}
	return out
}

// tSpinCorners are the four cells diagonally adjacent to a T piece's
// center, in North-relative coordinates.
var tSpinCorners = [4]struct{ x, y int8 }{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// tSpinFrontCorners are the two "front" corners (the pair on the side the
// T points toward) in North-relative coordinates, rotated per the target orientation
// by the caller.
var tSpinFrontCorners = [2]struct{ x, y int8 }{{-1, 1}, {1, 1}}

// classifyTSpin determines the Spin produced by a kicked rotation landing
// target, whose kick candidate was accepted at kickIndex (0-based, out of
// 5). Only meaningful when target.Piece == board.T.
func classifyTSpin(b board.Board, target board.PieceLocation, kickIndex int) board.Spin {
	corners := 0
	for _, c := range tSpinCorners {
		if b.Occupied(c.x+target.X, c.y+target.Y) {
			corners++
		}
	}
	if corners < 3 {
		return board.NoSpin
	}

	miniCorners := 0
	for _, c := range tSpinFrontCorners {
		rx, ry := target.Rotation.RotateCell(c.x, c.y)
		if b.Occupied(rx+target.X, ry+target.Y) {
			miniCorners++
		}
	}

	if miniCorners == 2 || kickIndex == 4 {
		return board.FullSpin
	}
	return board.MiniSpin
}
