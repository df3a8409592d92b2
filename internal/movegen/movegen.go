// Package movegen enumerates every reachable final placement of a piece on
// a board, including kicked rotations and T-spin classification.
package movegen

import (
	"container/heap"
	"math/bits"

	"github.com/tetriscore/core/internal/board"
)

// Result is a reachable, canonical-form final placement together with the
// minimum soft-drop distance (vertical cells travelled under control) over
// all paths that reach it.
type Result struct {
	Placement board.Placement
	SoftDrop  uint32
}

var allRotations = [4]board.Rotation{board.North, board.East, board.South, board.West}

// FindMoves enumerates every (Placement, softdrop_distance) reachable by
// shift/rotate/soft-drop moves from the spawn position, deduplicated to
// canonical form with the minimum softdrop distance kept for each.
//
// Uses a Dijkstra-style exploration over soft-drop distance, seeded
// from spawn and (in fast mode, for low stacks) from every
// directly-droppable column/rotation.
func FindMoves(b board.Board, piece board.Piece) []Result {
	spawn := board.PieceLocation{Piece: piece, Rotation: board.North, X: 4, Y: 19}
	if spawn.Obstructed(b) {
		spawn.Y = 20
		if spawn.Obstructed(b) {
			return nil
		}
	}
	spawnPlacement := board.Placement{Location: spawn, Spin: board.NoSpin}

	locks := make(map[board.Placement]uint32)
	values := make(map[board.Placement]uint32)
	pq := &intermediateHeap{}

	push := func(mv board.Placement, softDrops uint32) {
		prev, ok := values[mv]
		if !ok || softDrops < prev {
			values[mv] = softDrops
			heap.Push(pq, intermediate{softDrops: softDrops, mv: mv})
		}
	}
	push(spawnPlacement, 0)

	fast := stackLow(b)
	if fast {
		for _, r := range allRotations {
			for x := int8(0); x < board.Width; x++ {
				loc := board.PieceLocation{Piece: piece, Rotation: r, X: x, Y: 19}
				if loc.Obstructed(b) {
					continue
				}
				drop := loc.DropDistance(b)
				seeded := board.PieceLocation{Piece: piece, Rotation: r, X: x, Y: 19 - drop}
				push(board.Placement{Location: seeded}, uint32(drop))
			}
		}
	}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(intermediate)
		if cur.softDrops != values[cur.mv] {
			continue // superseded by a better path to the same placement
		}

		dropDist := cur.mv.Location.DropDistance(b)
		droppedLoc := cur.mv.Location
		droppedLoc.Y -= dropDist
		dropSpin := board.NoSpin
		if dropDist == 0 {
			dropSpin = cur.mv.Spin
		}
		dropped := board.Placement{Location: droppedLoc, Spin: dropSpin}

		key := board.Placement{Location: dropped.Location.Canonical(), Spin: dropped.Spin}
		if prev, ok := locks[key]; !ok || cur.softDrops < prev {
			locks[key] = cur.softDrops
		}

		push(dropped, cur.softDrops+uint32(dropDist))

		// In fast mode, neighbours lying entirely above the stack are not
		// expanded into: they are already covered by fast-mode seeding,
		// since any such state is directly reachable by a seed placement.
		expandInto := func(mv board.Placement, ok bool) {
			if !ok || (fast && mv.Location.AboveStack(b)) {
				return
			}
			push(mv, cur.softDrops)
		}
		expandInto(shift(cur.mv.Location, b, -1))
		expandInto(shift(cur.mv.Location, b, 1))
		expandInto(rotateCW(cur.mv.Location, b))
		expandInto(rotateCCW(cur.mv.Location, b))
	}

	out := make([]Result, 0, len(locks))
	for mv, sd := range locks {
		out = append(out, Result{Placement: mv, SoftDrop: sd})
	}
	return out
}

// stackLow reports whether every column's height is at most 15
// (leading_zeros > 48), the condition under which fast-mode seeding
// is both sound and worthwhile.
func stackLow(b board.Board) bool {
	for _, c := range b.Cols {
		if bits.LeadingZeros64(c) <= 48 {
			return false
		}
	}
	return true
}

func shift(loc board.PieceLocation, b board.Board, dx int8) (board.Placement, bool) {
	loc.X += dx
	if loc.Obstructed(b) {
		return board.Placement{}, false
	}
	return board.Placement{Location: loc, Spin: board.NoSpin}, true
}

func rotateCW(from board.PieceLocation, b board.Board) (board.Placement, bool) {
	return rotate(from, from.Rotation.CW(), b)
}

func rotateCCW(from board.PieceLocation, b board.Board) (board.Placement, bool) {
	return rotate(from, from.Rotation.CCW(), b)
}

func rotate(from board.PieceLocation, to board.Rotation, b board.Board) (board.Placement, bool) {
	kicks := rotationKicks(from.Piece, from.Rotation, to)
	for i, k := range kicks {
		target := board.PieceLocation{
			Piece:    from.Piece,
			Rotation: to,
			X:        from.X + k.dx,
			Y:        from.Y + k.dy,
		}
		if target.Obstructed(b) {
			continue
		}
		spin := board.NoSpin
		if target.Piece == board.T {
			spin = classifyTSpin(b, target, i)
		}
		return board.Placement{Location: target, Spin: spin}, true
	}
	return board.Placement{}, false
}

type intermediate struct {
	softDrops uint32
	mv        board.Placement
}

// intermediateHeap is a min-heap over soft-drop distance, ascending.
type intermediateHeap []intermediate

func (h intermediateHeap) Len() int            { return len(h) }
func (h intermediateHeap) Less(i, j int) bool   { return h[i].softDrops < h[j].softDrops }
func (h intermediateHeap) Swap(i, j int)        { h[i], h[j] = h[j], h[i] }
func (h *intermediateHeap) Push(x interface{}) { *h = append(*h, x.(intermediate)) }
func (h *intermediateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
