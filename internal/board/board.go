package board

import "math/bits"

// Width and Height are the playfield dimensions. Rows at or above Height are
// out of play and must always read as zero after any public mutation.
const (
	Width  = 10
	Height = 40
)

// Board is a 10-column bitboard. Column x, bit y is set iff cell (x, y) is
// filled. Bits 40..64 of every column are zero after any public operation.
type Board struct {
	Cols [Width]uint64
}

// Occupied reports whether (x, y) is filled. Out-of-bounds cells (outside
// [0, Width) x [0, Height)) are always reported occupied, so collision
// checks never need a separate bounds check.
func (b Board) Occupied(x, y int8) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return true
	}
	return b.Cols[x]&(1<<uint(y)) != 0
}

// DistanceToGround counts the contiguous empty cells beneath (x, y) in
// column x, stopping at y = 0.
func (b Board) DistanceToGround(x, y int8) int8 {
	if y == 0 {
		return 0
	}
	// Bits below y, inverted so that set bits mark empty cells; count
	// the run of empties immediately below y by counting the leading ones
	// of the inverted, shifted column.
	mask := ^b.Cols[x] << uint(64-y)
	return int8(bits.LeadingZeros64(^mask))
}

// Place ORs the four absolute cells of loc into the board. Panics if any
// cell is out of bounds; callers must only place collision-free locations.
func (b *Board) Place(loc PieceLocation) {
	for _, c := range loc.Cells() {
		if c.x < 0 || c.x >= Width || c.y < 0 || c.y >= Height {
			panic("board: Place out of bounds")
		}
		b.Cols[c.x] |= 1 << uint(c.y)
	}
}

// LineClears returns a bitmask with a bit set for every row that is full
// across all ten columns.
func (b Board) LineClears() uint64 {
	mask := ^uint64(0)
	for _, c := range b.Cols {
		mask &= c
	}
	return mask
}

// RemoveLines rewrites each column, dropping the rows marked in lines and
// shifting everything above them down to close the gap (bit-deposit
// semantics: keep only bits not in lines, packed down).
func (b *Board) RemoveLines(lines uint64) {
	for i := range b.Cols {
		b.Cols[i] = compress(b.Cols[i], lines)
	}
}

// compress keeps only the bits of col whose positions are not set in drop,
// shifting the kept bits down to close the gaps left by the dropped rows.
// This is the portable equivalent of a BMI2 PEXT against ^drop; no such
// portable instruction exists in Go, so this loop is the one implementation
// (see SPEC_FULL.md §4.1).
func compress(col uint64, drop uint64) uint64 {
	for drop != 0 {
		i := bits.TrailingZeros64(drop)
		mask := uint64(1)<<uint(i) - 1
		col = col&mask | (col>>1)&^mask
		drop &= drop - 1
		drop >>= 1
	}
	return col
}

// Empty reports whether the board has no filled cells at all (used for
// perfect-clear detection).
func (b Board) Empty() bool {
	for _, c := range b.Cols {
		if c != 0 {
			return false
		}
	}
	return true
}

// ColumnHeight returns the height of column x: one past the highest filled bit,
// or 0 if the column is empty.
func (b Board) ColumnHeight(x int8) uint32 {
	return 64 - uint32(bits.LeadingZeros64(b.Cols[x]))
}
