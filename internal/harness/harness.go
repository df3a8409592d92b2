package harness

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tetriscore/core/internal/bot"
	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/dag"
	"github.com/tetriscore/core/internal/tstate"
)

// Randomizer describes what is feeding the piece queue. Speculative
// search is only sound against a seven-bag randomizer, where every
// future draw is known to come from an exhausting bag.
type Randomizer int

const (
	UnknownRandomizer Randomizer = iota
	SevenBagRandomizer
)

// MoveInfo is what Suggest reports alongside the ranked placements.
type MoveInfo struct {
	Nodes uint64
	NPS   float64
	Extra string
}

// Harness multiplexes a small pool of worker goroutines against a
// single, possibly-absent Bot. Start/Stop/Advance/NewPiece are writer
// operations taking exclusive access to the bot slot; DoWork cycles run
// under shared access, since the Bot's own DAG already serializes what
// needs serializing at a finer grain. Worker goroutines are spawned and
// shut down with an errgroup rather than a hand-rolled WaitGroup and
// channel pair.
type Harness struct {
	evaluator dag.Evaluator
	scorer    bot.Scorer

	slot *SharedState[bot.Bot]

	nodes      atomic.Uint64
	selections atomic.Uint64
	expansions atomic.Uint64
	startedAt  atomic.Int64 // UnixNano, reset by Start/Advance

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New creates a Harness and immediately spawns workers background
// workers, each running an infinite select/expand cycle while a bot
// exists. Per spec.md §5 this is a small pool, order of 1-4; callers
// typically clamp runtime.GOMAXPROCS(0) before passing it in. No bot
// exists until Start is called.
func New(evaluator dag.Evaluator, scorer bot.Scorer, workers int) *Harness {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	h := &Harness{
		evaluator: evaluator,
		scorer:    scorer,
		slot:      NewSharedState[bot.Bot](),
		group:     group,
		cancel:    cancel,
	}

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for {
				h.slot.ReadOp(func(b *bot.Bot) any {
					stats := b.DoWork()
					h.nodes.Add(stats.Nodes)
					h.selections.Add(stats.Selections)
					h.expansions.Add(stats.Expansions)
					return nil
				})
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
		})
	}
	return h
}

// Close cancels the worker loop. Workers already blocked waiting for a
// bot to appear are released the next time Start wakes them, and exit
// on their next iteration; Close does not wait for in-flight DoWork
// cycles beyond that.
func (h *Harness) Close() {
	h.cancel()
}

// Start (re)initializes the bot at root with queue as the known
// upcoming pieces, resets statistics, and wakes any worker blocked
// waiting for a bot to exist. speculate follows directly from
// randomizer: only a seven-bag randomizer makes speculative search
// sound.
func (h *Harness) Start(root tstate.GameState, queue []board.Piece, randomizer Randomizer) {
	speculate := randomizer == SevenBagRandomizer
	h.resetStats()
	h.slot.Start(*bot.New(h.evaluator, h.scorer, speculate, root, queue))
}

// Stop discards the bot. Workers already mid-cycle finish naturally and
// block on their next iteration.
func (h *Harness) Stop() {
	h.slot.Stop()
}

// Advance plays mv against the live bot and resets statistics. A no-op,
// reporting false, if no bot currently exists, rather than blocking the
// caller on a bot that may never arrive.
func (h *Harness) Advance(mv board.Placement) bool {
	_, ok := h.slot.WriteOpIfExists(func(b *bot.Bot) any {
		b.Advance(mv)
		return nil
	})
	if ok {
		h.resetStats()
	}
	return ok
}

// NewPiece records an additional known piece against the live bot. A
// no-op, reporting false, if no bot currently exists.
func (h *Harness) NewPiece(piece board.Piece) bool {
	_, ok := h.slot.WriteOpIfExists(func(b *bot.Bot) any {
		b.NewPiece(piece)
		return nil
	})
	return ok
}

// Suggest returns the live bot's best placements plus a snapshot of
// accumulated statistics, including nodes-per-second since the last
// Start or Advance. Reports false, without blocking, if no bot
// currently exists.
func (h *Harness) Suggest() ([]board.Placement, MoveInfo, bool) {
	var moves []board.Placement
	_, ok := h.slot.ReadOpIfExists(func(b *bot.Bot) any {
		moves = b.Suggest()
		return nil
	})
	if !ok {
		return nil, MoveInfo{}, false
	}

	nodes := h.nodes.Load()
	elapsed := time.Since(time.Unix(0, h.startedAt.Load())).Seconds()
	var nps float64
	if elapsed > 0 {
		nps = float64(nodes) / elapsed
	}
	info := MoveInfo{
		Nodes: nodes,
		NPS:   nps,
		Extra: fmt.Sprintf("selections=%d expansions=%d", h.selections.Load(), h.expansions.Load()),
	}
	return moves, info, true
}

func (h *Harness) resetStats() {
	h.nodes.Store(0)
	h.selections.Store(0)
	h.expansions.Store(0)
	h.startedAt.Store(time.Now().UnixNano())
}
