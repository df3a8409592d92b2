// Package bot is the facade that turns queue/placement events from a
// frontend into operations on a search DAG: it owns the current game
// state and piece queue, runs move generation and scoring for one
// select/expand cycle, and reports aggregate statistics.
package bot

import (
	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/dag"
	"github.com/tetriscore/core/internal/movegen"
	"github.com/tetriscore/core/internal/tstate"
)

// Scorer turns one placement's resulting state into the evaluation and
// reward the DAG stores for it. A concrete Scorer (internal/heuristic,
// for the shipped binary) also implements dag.Evaluator; Bot takes the
// two capabilities as separate parameters so the DAG itself never needs
// to know how a placement is scored.
type Scorer interface {
	Score(state tstate.GameState, info tstate.PlacementInfo, softDrop uint32) (dag.Evaluation, dag.Reward)
}

// Statistics accumulates the counters one DoWork cycle produces.
type Statistics struct {
	Nodes      uint64
	Selections uint64
	Expansions uint64
}

// Accumulate adds other's counters into s.
func (s *Statistics) Accumulate(other Statistics) {
	s.Nodes += other.Nodes
	s.Selections += other.Selections
	s.Expansions += other.Expansions
}

// Bot is the single-game facade: one DAG rooted at the current state,
// plus the queue and hold-piece bookkeeping needed to turn future
// events into DAG operations.
type Bot struct {
	scorer    Scorer
	speculate bool

	current tstate.GameState
	queue   []board.Piece

	dag *dag.Dag
}

// New creates a Bot rooted at root, with queue as the known upcoming
// pieces. speculate controls whether Select is allowed to guess beyond
// the known queue (true for a seven-bag randomizer, false otherwise).
func New(evaluator dag.Evaluator, scorer Scorer, speculate bool, root tstate.GameState, queue []board.Piece) *Bot {
	return &Bot{
		scorer:    scorer,
		speculate: speculate,
		current:   root,
		queue:     append([]board.Piece{}, queue...),
		dag:       dag.New(evaluator, root, queue),
	}
}

// Advance plays mv: the next queued piece is popped, applied to the
// tracked current state, and the DAG root moves forward one layer.
func (b *Bot) Advance(mv board.Placement) {
	if len(b.queue) == 0 {
		panic("bot: Advance called with an empty queue")
	}
	next := b.queue[0]
	b.queue = b.queue[1:]
	b.current.Advance(next, mv)
	b.dag.Advance(mv)
}

// NewPiece records an additional known piece at the back of the queue
// and despeculates the DAG's earliest speculated layer to it.
func (b *Bot) NewPiece(piece board.Piece) {
	b.queue = append(b.queue, piece)
	b.dag.AddPiece(piece)
}

// Suggest returns the current best placements for the top layer's known
// (or every bagged) piece, ordered by cached evaluation.
func (b *Bot) Suggest() []board.Placement {
	return b.dag.Suggest()
}

// DoWork performs one select/movegen/score/expand cycle and returns the
// statistics it produced. A failed Select (nothing left to claim) still
// counts as one selection, with zero nodes and zero expansions.
func (b *Bot) DoWork() Statistics {
	var stats Statistics
	stats.Selections = 1

	sel, ok := b.dag.Select(b.speculate)
	if !ok {
		return stats
	}

	state, next := sel.State()
	var possibilities []board.Piece
	if next != nil {
		possibilities = []board.Piece{*next}
	} else {
		possibilities = state.Bag.Pieces()
	}

	moves := make(map[board.Piece][]movegen.Result, len(possibilities)+1)
	needed := append([]board.Piece{}, possibilities...)
	if !containsPiece(needed, state.Reserve) {
		needed = append(needed, state.Reserve)
	}
	for _, p := range needed {
		moves[p] = movegen.FindMoves(state.Board, p)
	}

	children := make(map[board.Piece][]dag.ChildData, len(possibilities))
	for _, piece := range possibilities {
		list := moves[piece]
		if piece != state.Reserve {
			// Holding swaps piece into reserve and plays the piece that
			// was reserved; every placement reachable via the reserve
			// piece is also reachable as "next" in this way.
			list = append(append([]movegen.Result{}, list...), moves[state.Reserve]...)
		}

		entries := make([]dag.ChildData, 0, len(list))
		for _, r := range list {
			resulting := state
			info := resulting.Advance(piece, r.Placement)
			eval, reward := b.scorer.Score(resulting, info, r.SoftDrop)
			entries = append(entries, dag.ChildData{
				ResultingState: resulting,
				Mv:             r.Placement,
				Eval:           eval,
				Reward:         reward,
			})
		}
		children[piece] = entries
		stats.Nodes += uint64(len(entries))
	}

	stats.Expansions = 1
	sel.Expand(children)
	return stats
}

func containsPiece(list []board.Piece, p board.Piece) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
