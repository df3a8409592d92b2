// Package board implements the bitboard, piece, and rotation model that
// every other package in this module builds on: a 10-column stack of
// 64-bit columns, the seven tetromino shapes, and the four SRS rotation
// states.
package board

// Piece enumerates the seven tetrominoes.
type Piece uint8

const (
	I Piece = iota
	O
	T
	L
	J
	S
	Z
	numPieces = 7
)

// Pieces lists all seven pieces in a fixed, stable order, used wherever a
// deterministic iteration over the piece domain is needed (bag refills,
// per-piece child arrays, etc).
var Pieces = [numPieces]Piece{I, O, T, L, J, S, Z}

func (p Piece) String() string {
	switch p {
	case I:
		return "I"
	case O:
		return "O"
	case T:
		return "T"
	case L:
		return "L"
	case J:
		return "J"
	case S:
		return "S"
	case Z:
		return "Z"
	default:
		return "?"
	}
}

// cells lists the four North-rotation cells of a piece in its canonical
// spawn orientation.
func (p Piece) cells() [4]cell {
	switch p {
	case I:
		return [4]cell{{-1, 0}, {0, 0}, {1, 0}, {2, 0}}
	case O:
		return [4]cell{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	case T:
		return [4]cell{{-1, 0}, {0, 0}, {1, 0}, {0, 1}}
	case L:
		return [4]cell{{-1, 0}, {0, 0}, {1, 0}, {1, 1}}
	case J:
		return [4]cell{{-1, 0}, {0, 0}, {1, 0}, {-1, 1}}
	case S:
		return [4]cell{{-1, 0}, {0, 0}, {0, 1}, {1, 1}}
	case Z:
		return [4]cell{{-1, 1}, {0, 1}, {0, 0}, {1, 0}}
	default:
		panic("board: invalid piece")
	}
}

// PieceSet is a bitset over the seven pieces, used for the seven-bag
// randomizer's remaining-pieces state.
type PieceSet uint8

// FullBag is the set containing all seven pieces.
const FullBag PieceSet = 1<<numPieces - 1

func SetOf(pieces ...Piece) PieceSet {
	var s PieceSet
	for _, p := range pieces {
		s = s.Add(p)
	}
	return s
}

func (s PieceSet) Add(p Piece) PieceSet    { return s | (1 << p) }
func (s PieceSet) Remove(p Piece) PieceSet { return s &^ (1 << p) }
func (s PieceSet) Contains(p Piece) bool   { return s&(1<<p) != 0 }
func (s PieceSet) Empty() bool             { return s == 0 }
func (s PieceSet) Len() int {
	n := 0
	for _, p := range Pieces {
		if s.Contains(p) {
			n++
		}
	}
	return n
}

// Pieces returns the members of s in the fixed Pieces order.
func (s PieceSet) Pieces() []Piece {
	out := make([]Piece, 0, numPieces)
	for _, p := range Pieces {
		if s.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Nth returns the i-th member of s in the fixed Pieces order. Panics if i is
// out of range; callers are expected to bound i by s.Len().
func (s PieceSet) Nth(i int) Piece {
	for _, p := range Pieces {
		if s.Contains(p) {
			if i == 0 {
				return p
			}
			i--
		}
	}
	panic("board: PieceSet.Nth out of range")
}

// Rotation is one of the four SRS orientations.
type Rotation uint8

const (
	North Rotation = iota
	East
	South
	West
)

func (r Rotation) CW() Rotation {
	switch r {
	case North:
		return East
	case East:
		return South
	case South:
		return West
	default:
		return North
	}
}

func (r Rotation) CCW() Rotation {
	switch r {
	case North:
		return West
	case West:
		return South
	case South:
		return East
	default:
		return North
	}
}

func (r Rotation) Flip() Rotation {
	switch r {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	default:
		return East
	}
}

type cell struct {
	x, y int8
}

// rotateCell maps a North-relative cell offset into rotation r's frame.
func (r Rotation) rotateCell(c cell) cell {
	switch r {
	case North:
		return c
	case East:
		return cell{c.y, -c.x}
	case South:
		return cell{-c.x, -c.y}
	default: // West
		return cell{-c.y, c.x}
	}
}

// RotateCell maps a North-relative (x, y) cell offset into rotation r's
// frame: North->(x,y), East->(y,-x), South->(-x,-y), West->(-y,x).
// Exported for use by T-spin front-corner classification in movegen.
func (r Rotation) RotateCell(x, y int8) (int8, int8) {
	c := r.rotateCell(cell{x, y})
	return c.x, c.y
}

// rotatedCellsLUT is precomputed once at package init: for each piece and
// rotation, the four cell offsets relative to the piece's origin.
var rotatedCellsLUT [numPieces][4][4]cell

func init() {
	for _, p := range Pieces {
		base := p.cells()
		for _, r := range [4]Rotation{North, East, South, West} {
			var out [4]cell
			for i, c := range base {
				out[i] = r.rotateCell(c)
			}
			rotatedCellsLUT[p][r] = out
		}
	}
}
