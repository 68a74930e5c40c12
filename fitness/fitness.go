// Package fitness scores candidate feature masks by the clustering
// quality of the descriptor subset they select.
package fitness

import (
	"math/rand"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/descgo/cluster"
	"github.com/hupe1980/descgo/matrix"
)

// PenaltyScore is returned for masks violating the target
// cardinality. It is the worst possible silhouette, so violating
// offspring stay legal but are outcompeted.
const PenaltyScore = -1.0

// Evaluator scores masks against an out-of-core descriptor matrix.
// It is safe for concurrent use as long as each caller supplies its
// own rng.
type Evaluator struct {
	matrix    *matrix.Matrix
	targetDim uint
	maxIter   int
}

// New creates an Evaluator for the given matrix and target subset
// size. maxIter bounds the clustering per evaluation; <= 0 uses the
// cluster package default.
func New(m *matrix.Matrix, targetDim uint, maxIter int) *Evaluator {
	return &Evaluator{matrix: m, targetDim: targetDim, maxIter: maxIter}
}

// Evaluate returns the clustering-quality score for the descriptor
// subset selected by mask. A mask whose popcount differs from the
// target dimensionality scores exactly PenaltyScore without touching
// the matrix.
func (e *Evaluator) Evaluate(mask *bitset.BitSet, rng *rand.Rand) (float64, error) {
	if mask.Count() != e.targetDim {
		return PenaltyScore, nil
	}

	cols := make([]int, 0, e.targetDim)
	for i, ok := mask.NextSet(0); ok; i, ok = mask.NextSet(i + 1) {
		cols = append(cols, int(i))
	}

	points, err := e.matrix.Slice(cols, nil)
	if err != nil {
		return 0, err
	}

	return cluster.Score(points, len(cols), rng, e.maxIter)
}
