// Package prefilter removes degenerate and redundant descriptors
// before the evolutionary search starts.
//
// The pipeline runs three deterministic stages: near-constant columns
// are dropped by dominant-value frequency, every survivor gets a
// standalone clustering-quality score, and over-correlated columns are
// pruned worst-performer-first until no Spearman correlation exceeds
// the tolerance.
package prefilter

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/descgo/cluster"
	"github.com/hupe1980/descgo/table"
)

// ErrNoSurvivors is returned when filtering drops every descriptor;
// there is nothing left to evolve against.
var ErrNoSurvivors = errors.New("prefilter: no descriptors survived filtering")

// ErrTolerance indicates a tolerance outside [0, 1].
type ErrTolerance struct {
	Name  string
	Value float64
}

func (e *ErrTolerance) Error() string {
	return fmt.Sprintf("prefilter: %s tolerance %v outside [0,1]", e.Name, e.Value)
}

// Result carries the filtered table along with what was removed and
// the per-descriptor silhouette scores used for pruning tie-breaks.
type Result struct {
	Table *table.Table
	// Scores maps surviving-at-scoring-time descriptor names to their
	// standalone 2-cluster silhouette score.
	Scores map[string]float64
	// DroppedConstant lists descriptors removed by the variance stage.
	DroppedConstant []string
	// DroppedCorrelated lists descriptors removed by the correlation
	// stage, in removal order.
	DroppedCorrelated []string
}

// Filter runs the full preprocessing pipeline. varianceTol is the
// maximum tolerated dominant-value fraction; correlationTol the
// maximum tolerated absolute pairwise Spearman correlation. rng seeds
// the per-feature clustering used for scoring.
func Filter(t *table.Table, varianceTol, correlationTol float64, rng *rand.Rand) (*Result, error) {
	if varianceTol < 0 || varianceTol > 1 {
		return nil, &ErrTolerance{Name: "variance", Value: varianceTol}
	}
	if correlationTol < 0 || correlationTol > 1 {
		return nil, &ErrTolerance{Name: "correlation", Value: correlationTol}
	}

	res := &Result{Scores: make(map[string]float64)}

	// Stage 1: near-constant removal.
	var constant []int
	for j := 0; j < t.Columns(); j++ {
		if DominantFraction(t.Column(j)) >= varianceTol {
			constant = append(constant, j)
			res.DroppedConstant = append(res.DroppedConstant, t.Names()[j])
		}
	}
	if len(constant) == t.Columns() {
		return nil, ErrNoSurvivors
	}
	filtered := t
	if len(constant) > 0 {
		var err error
		filtered, err = t.Drop(constant)
		if err != nil {
			return nil, err
		}
	}

	// Stage 2: standalone clustering-quality score per survivor.
	for j := 0; j < filtered.Columns(); j++ {
		score, err := cluster.Score(filtered.Column(j), 1, rng, 0)
		if err != nil {
			return nil, fmt.Errorf("prefilter: scoring %q: %w", filtered.Names()[j], err)
		}
		res.Scores[filtered.Names()[j]] = score
	}

	// Stage 3: worst-first correlation pruning.
	pruned, droppedNames, err := pruneCorrelated(filtered, correlationTol, res.Scores)
	if err != nil {
		return nil, err
	}
	res.Table = pruned
	res.DroppedCorrelated = droppedNames

	return res, nil
}

// DominantFraction returns the fraction of rows holding the column's
// most frequent value.
func DominantFraction(col []float64) float64 {
	counts := make(map[float64]int, len(col))
	most := 0
	for _, v := range col {
		counts[v]++
		if counts[v] > most {
			most = counts[v]
		}
	}
	return float64(most) / float64(len(col))
}

// pruneCorrelated repeatedly drops the lowest-scoring flagged column
// until no pair of survivors exceeds the tolerance. Greedy and not
// minimal, but deterministic.
func pruneCorrelated(t *table.Table, tol float64, scores map[string]float64) (*table.Table, []string, error) {
	current := t
	var droppedNames []string

	for {
		flagged := flagCorrelated(current, tol)
		if flagged.IsEmpty() {
			return current, droppedNames, nil
		}

		// Worst performer among the flagged columns; ties break toward
		// the lower column index.
		victim := -1
		worst := math.Inf(1)
		flagged.Iterate(func(j uint32) bool {
			if s := scores[current.Names()[j]]; s < worst {
				worst = s
				victim = int(j)
			}
			return true
		})

		droppedNames = append(droppedNames, current.Names()[victim])
		next, err := current.Drop([]int{victim})
		if err != nil {
			if errors.Is(err, table.ErrEmptyTable) {
				return nil, droppedNames, ErrNoSurvivors
			}
			return nil, droppedNames, err
		}
		current = next
	}
}

// flagCorrelated returns the set of columns participating in at least
// one upper-triangle pair whose absolute Spearman correlation exceeds
// tol.
func flagCorrelated(t *table.Table, tol float64) *roaring.Bitmap {
	n := t.Columns()
	ranks := make([][]float64, n)
	for j := 0; j < n; j++ {
		ranks[j] = rankTransform(t.Column(j))
	}

	flagged := roaring.New()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := stat.Correlation(ranks[i], ranks[j], nil)
			if math.Abs(r) > tol {
				flagged.Add(uint32(i))
				flagged.Add(uint32(j))
			}
		}
	}
	return flagged
}
