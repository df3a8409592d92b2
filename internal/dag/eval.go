package dag

// Reward is the opaque per-placement reward an Evaluator attaches to a
// single edge of the DAG (e.g. a score delta from clearing lines). The DAG
// never inspects a Reward itself; it only ever hands one back to the
// Evaluation it came with, via Evaluation.Add.
type Reward any

// Evaluation is the DAG's only view of "how good is this node". The DAG
// never reproduces a scoring scheme of its own: it stores, orders, and
// combines Evaluation values supplied by an Evaluator, nothing else.
//
// Implementations must be safe to compare with Less and to combine with
// Add repeatedly; the DAG treats a nil Evaluation as "no value yet".
type Evaluation interface {
	// Less reports whether this evaluation is strictly worse than other.
	Less(other Evaluation) bool
	// Add combines this evaluation with a reward picked up along one edge,
	// returning the evaluation as seen from the edge's parent.
	Add(r Reward) Evaluation
}

// Evaluator supplies the two operations the DAG needs but must never hard
// code: a zero/default value for brand new nodes, and a way to average a
// set of next-possibility evaluations (some of which may be absent,
// reported as a nil Evaluation) into one.
type Evaluator interface {
	// Zero returns the evaluation assigned to a freshly created,
	// not-yet-expanded node.
	Zero() Evaluation
	// Average combines the best evaluation reachable for each candidate
	// next piece into the evaluation of the node they hang from. A nil
	// entry marks a piece with no children yet; implementations commonly
	// treat that as a low sentinel rather than skipping it, so that an
	// unexplored branch doesn't look artificially good.
	Average(candidates []Evaluation) Evaluation
}
