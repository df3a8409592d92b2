package heuristic

import (
	"math/bits"

	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/dag"
	"github.com/tetriscore/core/internal/tstate"
)

// Eval is the float64-backed dag.Evaluation this package produces.
type Eval float64

func (e Eval) Less(other dag.Evaluation) bool { return e < other.(Eval) }

func (e Eval) Add(r dag.Reward) dag.Evaluation { return e + Eval(r.(float64)) }

// missing is the sentinel evaluation a next-piece branch with no
// children yet contributes to Average, so an unexplored branch never
// looks artificially good relative to explored ones.
const missing Eval = -1000

// Scorer implements both dag.Evaluator (Zero/Average, the DAG's own
// bookkeeping) and bot.Scorer (Score, one placement's contribution) off
// a single set of Weights.
type Scorer struct {
	Weights Weights
}

// New returns a Scorer initialized with the compiled-in default weights.
func New() Scorer { return Scorer{Weights: DefaultWeights()} }

func (Scorer) Zero() dag.Evaluation { return Eval(0) }

func (Scorer) Average(candidates []dag.Evaluation) dag.Evaluation {
	if len(candidates) == 0 {
		return missing
	}
	var sum Eval
	for _, c := range candidates {
		if c == nil {
			sum += missing
		} else {
			sum += c.(Eval)
		}
	}
	return sum / Eval(len(candidates))
}

// Score evaluates the board state resulting from one placement and the
// reward earned by playing it, combining line-clear/back-to-back/combo
// rewards with a positional evaluation (holes, coveredness, height,
// row transitions, T-slot setup).
func (s Scorer) Score(state tstate.GameState, info tstate.PlacementInfo, softDrop uint32) (dag.Evaluation, dag.Reward) {
	w := &s.Weights
	var reward float64

	if info.PerfectClear {
		reward += w.PerfectClear
	}
	if !info.PerfectClear || !w.PerfectClearOverride {
		if info.BackToBack {
			reward += w.BackToBackClear
		}
		switch info.Placement.Spin {
		case board.NoSpin:
			reward += w.NormalClears[info.LinesCleared]
		case board.MiniSpin:
			reward += w.MiniSpinClears[info.LinesCleared]
		case board.FullSpin:
			reward += w.SpinClears[info.LinesCleared]
		}
		combo := info.Combo
		if combo > 0 {
			combo--
		}
		reward += w.ComboAttack * float64(combo/2)
	}
	if info.Placement.Location.Piece == board.T &&
		(info.LinesCleared < 2 || info.Placement.Spin != board.FullSpin) {
		reward += w.WastedT
	}
	reward += w.SoftDrop * float64(softDrop)

	var eval float64
	if state.BackToBack {
		eval += w.HasBackToBack
	}

	// T-slot cutouts: count once for a bagged T, once more for a held T,
	// once more if the bag is nearly exhausted (a T draw is imminent).
	cutouts := 0
	if state.Bag.Contains(board.T) {
		cutouts++
	}
	if state.Reserve == board.T {
		cutouts++
	}
	if state.Bag.Len() <= 3 {
		cutouts++
	}
	boardForCutouts := state.Board
	for i := 0; i < cutouts; i++ {
		loc, ok := wellKnownTSlotLeft(boardForCutouts)
		if !ok {
			loc, ok = wellKnownTSlotRight(boardForCutouts)
		}
		if !ok {
			break
		}
		trial := boardForCutouts
		trial.Place(loc)
		clears := bits.OnesCount64(trial.LineClears())
		eval += w.TSlot[clears]
		if clears > 1 {
			trial.RemoveLines(trial.LineClears())
			boardForCutouts = trial
		}
	}

	eval += w.Holes * float64(countHoles(state.Board))
	eval += w.CellCoveredness * float64(coveredness(state.Board, w.MaxCellCoveredHeight))
	eval += w.TetrisWellDepth * float64(tetrisWellDepth(state.Board))

	highest := int8(0)
	for _, c := range state.Board.Cols {
		if h := int8(64 - bits.LeadingZeros64(c)); h > highest {
			highest = h
		}
	}
	eval += w.Height * float64(highest)
	if highest > 10 {
		eval += w.HeightUpperHalf * float64(highest-10)
	}
	if highest > 15 {
		eval += w.HeightUpperQuarter * float64(highest-15)
	}

	rowTransitions := bits.OnesCount64(^uint64(0) ^ state.Board.Cols[0])
	rowTransitions += bits.OnesCount64(^uint64(0) ^ state.Board.Cols[board.Width-1])
	for i := 0; i < board.Width-1; i++ {
		rowTransitions += bits.OnesCount64(state.Board.Cols[i] ^ state.Board.Cols[i+1])
	}
	eval += w.RowTransitions * float64(rowTransitions)

	return Eval(eval), reward
}

// countHoles sums, per column, the empty cells with a filled cell
// somewhere above them.
func countHoles(b board.Board) int {
	holes := 0
	for _, c := range b.Cols {
		height := 64 - bits.LeadingZeros64(c)
		underneath := uint64(1)<<uint(height) - 1
		holes += bits.OnesCount64(^c & underneath)
	}
	return holes
}

// coveredness sums, per hole, the distance (clamped to maxHeight) up to
// the cell covering it — a hole buried eight rows deep costs far more
// than one about to be dug out.
func coveredness(b board.Board, maxHeight int8) int {
	total := 0
	for _, c := range b.Cols {
		height := 64 - bits.LeadingZeros64(c)
		underneath := uint64(1)<<uint(height) - 1
		holes := ^c & underneath
		for holes != 0 {
			y := bits.TrailingZeros64(holes)
			d := height - y
			if d > int(maxHeight) {
				d = int(maxHeight)
			}
			total += d
			holes &= holes - 1
		}
	}
	return total
}

// tetrisWellDepth reports how many rows deep the shallowest column's
// well runs, counting only rows that are otherwise full across every
// other column — the classic "keep one column open for an I-piece
// tetris" shape.
func tetrisWellDepth(b board.Board) int {
	well := 0
	wellHeight := 65
	for i, c := range b.Cols {
		h := 64 - bits.LeadingZeros64(c)
		if h < wellHeight {
			wellHeight = h
			well = i
		}
	}
	fullExceptWell := ^uint64(0)
	for i, c := range b.Cols {
		if i == well {
			continue
		}
		fullExceptWell &= c
	}
	return bits.TrailingZeros64(^(fullExceptWell >> uint(wellHeight)))
}
