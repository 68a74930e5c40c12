// Package genetic implements the population-based search over
// fixed-cardinality descriptor subsets: boolean-mask individuals,
// the selection/crossover/mutation operators, and the generational
// engine with stagnation-based convergence.
package genetic

import (
	"math/rand"

	"github.com/bits-and-blooms/bitset"
)

// Individual is one candidate feature mask. Fitness is attached
// lazily after evaluation and invalidated whenever the genome is
// touched by an operator.
type Individual struct {
	Genome *bitset.BitSet

	fitness  float64
	hasScore bool
}

// NewIndividual wraps an existing genome with no fitness attached.
func NewIndividual(genome *bitset.BitSet) *Individual {
	return &Individual{Genome: genome}
}

// NewRandomIndividual creates a mask of the given length with exactly
// targetDim distinct positions set, sampled without replacement.
func NewRandomIndividual(length, targetDim uint, rng *rand.Rand) *Individual {
	genome := bitset.New(length)

	// Partial Fisher-Yates: the first targetDim draws are distinct.
	idx := make([]uint, length)
	for i := range idx {
		idx[i] = uint(i)
	}
	for i := uint(0); i < targetDim && i < length; i++ {
		j := i + uint(rng.Intn(int(length-i)))
		idx[i], idx[j] = idx[j], idx[i]
		genome.Set(idx[i])
	}

	return NewIndividual(genome)
}

// Fitness returns the attached score and whether one is attached.
func (ind *Individual) Fitness() (float64, bool) {
	return ind.fitness, ind.hasScore
}

// SetFitness attaches a score.
func (ind *Individual) SetFitness(score float64) {
	ind.fitness = score
	ind.hasScore = true
}

// Invalidate detaches the score after the genome changed.
func (ind *Individual) Invalidate() {
	ind.fitness = 0
	ind.hasScore = false
}

// Cardinality returns the popcount of the mask.
func (ind *Individual) Cardinality() uint {
	return ind.Genome.Count()
}

// Clone returns a deep copy including any attached fitness.
func (ind *Individual) Clone() *Individual {
	return &Individual{
		Genome:   ind.Genome.Clone(),
		fitness:  ind.fitness,
		hasScore: ind.hasScore,
	}
}

// Population is one generation's ordered set of individuals.
type Population []*Individual

// Best returns the individual with the highest attached fitness; ties
// break toward the earlier position. Individuals without fitness are
// skipped; nil if none has one.
func (p Population) Best() *Individual {
	var best *Individual
	bestScore := 0.0
	for _, ind := range p {
		score, ok := ind.Fitness()
		if !ok {
			continue
		}
		if best == nil || score > bestScore {
			best = ind
			bestScore = score
		}
	}
	return best
}
