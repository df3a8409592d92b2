// Package dag implements the layered search DAG: per-depth layers of
// GameState to Node, weighted-random selection down to an unexpanded leaf,
// and best-first backpropagation of evaluations back up to the root.
//
// Translated from a Rust self-referential-arena design to Go's
// statemap.Handle indirection: every cross-layer edge is a (Handle,
// Placement, Piece) triple, never a borrowed reference, so there is no
// arena or lifetime to manage.
package dag

import (
	"math"
	"math/rand/v2"

	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/statemap"
	"github.com/tetriscore/core/internal/tstate"
)

// ChildData is one placement an Evaluator produced while expanding a node:
// the state it leads to, the placement itself, that state's freshly
// computed evaluation, and the reward earned along this specific edge.
type ChildData struct {
	ResultingState tstate.GameState
	Mv             board.Placement
	Eval           Evaluation
	Reward         Reward
}

// Dag is the top-level search structure: a chain of Layers rooted at the
// bot's current GameState. Dag itself holds no lock; callers (the
// harness) are responsible for ensuring Advance/AddPiece never run
// concurrently with Select/Selection.Expand, exactly as spec.md's
// concurrency model assigns that exclusion to the bot-slot lock rather
// than to the DAG.
type Dag struct {
	evaluator Evaluator
	root      tstate.GameState
	topLayer  *Layer
}

// New creates a Dag rooted at root, with the first len(queue) layers
// known to the pieces in queue (in order) and every layer beyond that
// left speculated.
func New(evaluator Evaluator, root tstate.GameState, queue []board.Piece) *Dag {
	top := newLayer()
	_, _, unlock := top.states.GetOrInsertWith(root, func() Node {
		return newNode(evaluator.Zero(), root.Bag, root.Reserve)
	})
	unlock()

	layer := top
	for _, p := range queue {
		p := p
		layer.piece = &p
		layer = layer.Next()
	}

	return &Dag{evaluator: evaluator, root: root, topLayer: top}
}

// Advance applies mv (played as the top layer's known piece) to the root
// state and promotes the top layer's successor to be the new top layer.
// Panics if the top layer has no known piece, per spec.md §7: that is a
// frontend bug, not a runtime condition.
func (d *Dag) Advance(mv board.Placement) {
	top := d.topLayer
	if top.piece == nil {
		panic("dag: Advance called with no known piece at the top layer")
	}
	d.root.Advance(*top.piece, mv)
	d.topLayer = top.Next()
	_, _, unlock := d.topLayer.states.GetOrInsertWith(d.root, func() Node {
		return newNode(d.evaluator.Zero(), d.root.Bag, d.root.Reserve)
	})
	unlock()
}

// AddPiece despeculates the first speculated layer (walking down from the
// top), setting its piece and rebuilding every node's children to retain
// only that piece's list, recomputing evals as it goes so invariant 2
// never transiently breaks (SPEC_FULL.md §9(iii)).
func (d *Dag) AddPiece(piece board.Piece) {
	layer := d.topLayer
	for layer.piece != nil {
		layer = layer.Next()
	}
	layer.piece = &piece

	layer.states.MapValues(func(n Node) Node {
		if !n.expanded() {
			return n
		}
		kept := n.children[piece]
		n.children = map[board.Piece][]child{piece: kept}
		n.eval = computeEval(d.evaluator, n.children, []board.Piece{piece}, n.reserve)
		return n
	})
}

// Suggest returns the root's best placement per next-possibility piece
// (the known top-layer piece, or every piece still in the root's bag),
// sorted best evaluation first. Hold is not itself a top-level candidate
// (SPEC_FULL.md §9(i)); it is still considered inside best_for (§9(ii))
// when evals are computed during expansion and backprop.
func (d *Dag) Suggest() []board.Placement {
	n, ok := d.topLayer.states.Get(d.root)
	if !ok || !n.expanded() {
		return nil
	}

	type candidate struct {
		mv   board.Placement
		eval Evaluation
	}
	var candidates []candidate
	for _, p := range d.topLayer.nextPossibilities(d.root.Bag) {
		list := n.children[p]
		if len(list) == 0 {
			continue
		}
		candidates = append(candidates, candidate{mv: list[0].mv, eval: list[0].cachedEval})
	}

	// Insertion sort: candidate lists are at most 7 long.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j-1].eval.Less(candidates[j].eval); j-- {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
		}
	}

	out := make([]board.Placement, len(candidates))
	for i, c := range candidates {
		out[i] = c.mv
	}
	return out
}

// Selection is the result of a successful Select: a path of layers from
// the top down to an unexpanded leaf node, claimed for exclusive
// expansion by the caller.
type Selection struct {
	dag    *Dag
	layers []*Layer
	state  tstate.GameState
}

// State returns the GameState the selection landed on, and the piece
// known for that depth (nil if speculated).
func (s *Selection) State() (tstate.GameState, *board.Piece) {
	layer := s.layers[len(s.layers)-1]
	return s.state, layer.piece
}

// Select walks from the root down through existing children, picking a
// child at each step by weighted-random choice, until it reaches a node
// with no children yet. If that node's expanding flag can be claimed
// (false -> true), selection succeeds; if another worker already claimed
// it, or if speculate is false and the next layer's piece is still
// unknown, selection fails and returns (nil, false).
func (d *Dag) Select(speculate bool) (*Selection, bool) {
	layers := []*Layer{d.topLayer}
	state := d.root

	for {
		layer := layers[len(layers)-1]
		node, ok := layer.states.Get(state)
		if !ok {
			panic("dag: select reached a state with no node")
		}

		if !node.expanded() {
			if node.expanding.CompareAndSwap(false, true) {
				return &Selection{dag: d, layers: layers, state: state}, true
			}
			return nil, false
		}

		if !speculate && layer.Next().piece == nil {
			return nil, false
		}

		next := layer.piece
		var piece board.Piece
		if next != nil {
			piece = *next
		} else {
			pieces := state.Bag.Pieces()
			piece = pieces[rand.IntN(len(pieces))]
		}

		list := node.children[piece]
		if len(list) == 0 {
			return nil, false
		}

		choice, ok := weightedChoice(list)
		if !ok {
			return nil, false
		}

		state.Advance(piece, choice)
		layers = append(layers, layer.Next())
	}
}

// weightedChoice draws s uniformly in (0, 1] and picks index
// floor((-ln(s) / exploration) mod len): index 0 (the current best) is
// the most likely draw, with exponentially decaying odds further down
// the list, wrapped by the modulus rather than rejected and redrawn.
const exploration = 1.0

func weightedChoice(list []child) (board.Placement, bool) {
	if len(list) == 0 {
		return board.Placement{}, false
	}
	s := rand.Float64()
	for s <= 0 {
		s = rand.Float64()
	}
	i := int(-math.Log(s)/exploration) % len(list)
	return list[i].mv, true
}

// backpropUpdate is a pending grandparent-recomputation: the grandparent's
// handle (one layer up from where the update originated), the placement
// that identifies which child-list entry to refresh, the speculation
// piece that entry is filed under, and the handle (in the layer the
// update originated from) whose fresh eval should be read.
type backpropUpdate struct {
	grandparent statemap.Handle
	mv          board.Placement
	piece       board.Piece
	child       statemap.Handle
}

// Expand supplies the evaluator's output for the selected leaf: for each
// speculation piece, the placements it can reach, their resulting states,
// and their evaluations/rewards. Expand installs them as the node's
// children, recomputes the node's eval, and backpropagates any resulting
// change up through every ancestor layer.
func (s *Selection) Expand(children map[board.Piece][]ChildData) {
	layers := s.layers
	leafLayer := layers[len(layers)-1]
	layers = layers[:len(layers)-1]

	next := expand(s.dag.evaluator, leafLayer, s.state, children)
	backprop(s.dag.evaluator, leafLayer, layers, next)
}

func expand(evaluator Evaluator, layer *Layer, parentState tstate.GameState, childrenData map[board.Piece][]ChildData) []backpropUpdate {
	parentHandle := statemap.Index(parentState)
	parent, ok, unlockParent := layer.states.GetRawMut(parentHandle)
	if !ok {
		panic("dag: expand on a vanished parent node")
	}
	defer unlockParent()

	nextLayer := layer.Next()
	childs := make(map[board.Piece][]child)
	for _, p := range board.Pieces {
		for _, d := range childrenData[p] {
			_, childNode, unlockChild := nextLayer.states.GetOrInsertWith(d.ResultingState, func() Node {
				return newNode(d.Eval, d.ResultingState.Bag, d.ResultingState.Reserve)
			})
			childNode.parents = append(childNode.parents, parentRef{parent: parentHandle, mv: d.Mv, piece: p})
			cachedEval := childNode.eval.Add(d.Reward)
			unlockChild()

			childs[p] = append(childs[p], child{mv: d.Mv, reward: d.Reward, cachedEval: cachedEval})
		}
	}

	for p, list := range childs {
		sortChildrenDescending(list)
		childs[p] = list
	}

	parent.children = childs
	parent.eval = computeEval(evaluator, childs, layer.nextPossibilities(parent.bag), parent.reserve)

	updates := make([]backpropUpdate, 0, len(parent.parents))
	for _, pr := range parent.parents {
		updates = append(updates, backpropUpdate{grandparent: pr.parent, mv: pr.mv, piece: pr.piece, child: parentHandle})
	}
	return updates
}

func backprop(evaluator Evaluator, prevLayer *Layer, layers []*Layer, next []backpropUpdate) {
	for len(layers) > 0 && len(next) > 0 {
		layer := layers[len(layers)-1]
		layers = layers[:len(layers)-1]

		var nextUp []backpropUpdate
		for _, u := range next {
			childNode, ok := prevLayer.states.GetRaw(u.child)
			if !ok {
				panic("dag: backprop read a vanished child node")
			}
			childEval := childNode.eval

			parent, ok, unlockParent := layer.states.GetRawMut(u.grandparent)
			if !ok {
				panic("dag: backprop on a vanished grandparent node")
			}

			list := parent.children[u.piece]
			index := -1
			for i, c := range list {
				if c.mv == u.mv {
					index = i
					break
				}
			}
			if index < 0 {
				unlockParent()
				continue
			}

			list[index].cachedEval = childEval.Add(list[index].reward)
			index = resort(list, index)

			if index == 0 {
				possibilities := layer.nextPossibilities(parent.bag)
				eval := computeEval(evaluator, parent.children, possibilities, parent.reserve)
				changed := parent.eval == nil || eval.Less(parent.eval) || parent.eval.Less(eval)
				if changed {
					parent.eval = eval
					for _, pr := range parent.parents {
						nextUp = append(nextUp, backpropUpdate{grandparent: pr.parent, mv: pr.mv, piece: pr.piece, child: u.grandparent})
					}
				}
			}
			unlockParent()
		}

		next = nextUp
		prevLayer = layer
	}
}

// resort moves list[index] to keep the list sorted by cachedEval
// descending, shifting in whichever single direction is needed, and
// returns its final index.
func resort(list []child, index int) int {
	for index > 0 && list[index-1].cachedEval.Less(list[index].cachedEval) {
		list[index-1], list[index] = list[index], list[index-1]
		index--
	}
	for index < len(list)-1 && list[index].cachedEval.Less(list[index+1].cachedEval) {
		list[index+1], list[index] = list[index], list[index+1]
		index++
	}
	return index
}

func sortChildrenDescending(list []child) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j-1].cachedEval.Less(list[j].cachedEval); j-- {
			list[j-1], list[j] = list[j], list[j-1]
		}
	}
}

// bestFor implements the hold-aware best_for(p) rule resolved in
// SPEC_FULL.md §9(ii): the better of piece p's own best child and the
// reserve piece's best child, applied uniformly regardless of whether the
// layer is known or speculated.
func bestFor(children map[board.Piece][]child, p, reserve board.Piece) Evaluation {
	var best Evaluation
	if list := children[p]; len(list) > 0 {
		best = list[0].cachedEval
	}
	var reserveBest Evaluation
	if list := children[reserve]; len(list) > 0 {
		reserveBest = list[0].cachedEval
	}
	switch {
	case best == nil:
		return reserveBest
	case reserveBest == nil:
		return best
	case best.Less(reserveBest):
		return reserveBest
	default:
		return best
	}
}

func computeEval(evaluator Evaluator, children map[board.Piece][]child, possibilities []board.Piece, reserve board.Piece) Evaluation {
	candidates := make([]Evaluation, len(possibilities))
	for i, p := range possibilities {
		candidates[i] = bestFor(children, p, reserve)
	}
	return evaluator.Average(candidates)
}
