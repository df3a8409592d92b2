package dag

import (
	"sync"
	"sync/atomic"

	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/statemap"
)

// parentRef is a backward edge: the parent's handle in the layer above,
// the placement that led here, and which speculated piece that placement
// was played as (meaningless, but harmless, on a known layer).
type parentRef struct {
	parent statemap.Handle
	mv     board.Placement
	piece  board.Piece
}

// child is one entry of a Node's per-piece children list.
type child struct {
	mv         board.Placement
	reward     Reward
	cachedEval Evaluation
}

// Node is one (layer, GameState) vertex of the search DAG. children is nil
// until the node has been expanded; once non-nil (even with empty
// per-piece lists) the node is considered expanded. expanding is a
// pointer so that copying a Node value (as statemap.MapValues does during
// despeculation) never duplicates the underlying atomic flag.
type Node struct {
	parents   []parentRef
	eval      Evaluation
	children  map[board.Piece][]child
	expanding *atomic.Bool

	// bag and reserve are cached off the GameState at creation time,
	// needed during backpropagation where the live GameState isn't in
	// hand (only handles are threaded through update lists).
	bag     board.PieceSet
	reserve board.Piece
}

func newNode(eval Evaluation, bag board.PieceSet, reserve board.Piece) Node {
	return Node{
		eval:      eval,
		expanding: new(atomic.Bool),
		bag:       bag,
		reserve:   reserve,
	}
}

// expanded reports whether this node has ever been given a children map.
func (n *Node) expanded() bool { return n.children != nil }

// Layer owns one search depth: a sharded map from GameState to Node, plus
// the piece this depth is known to be (nil if still speculated) and a
// lazily-created successor depth. Layers form a singly linked chain grown
// on demand, exactly as deep as anything has ever selected into.
type Layer struct {
	states *statemap.StateMap[Node]
	piece  *board.Piece

	nextOnce sync.Once
	next     *Layer
}

func newLayer() *Layer {
	return &Layer{states: statemap.New[Node]()}
}

// Next returns this layer's successor, creating it on first use. Safe for
// concurrent callers; exactly one of them creates the layer.
func (l *Layer) Next() *Layer {
	l.nextOnce.Do(func() {
		l.next = newLayer()
	})
	return l.next
}

// nextPossibilities is {*l.piece} on a known layer, or the full bag on a
// speculated one.
func (l *Layer) nextPossibilities(bag board.PieceSet) []board.Piece {
	if l.piece != nil {
		return []board.Piece{*l.piece}
	}
	return bag.Pieces()
}
