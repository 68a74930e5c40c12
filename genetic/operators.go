package genetic

import (
	"math/rand"

	"github.com/bits-and-blooms/bitset"
)

// EvaluateFunc scores a mask. Implementations must be safe for
// concurrent calls; rng is private to the calling worker.
type EvaluateFunc func(mask *bitset.BitSet, rng *rand.Rand) (float64, error)

// SelectFunc picks one parent from a population.
type SelectFunc func(pop Population, rng *rand.Rand) *Individual

// CrossoverFunc recombines two genomes in place.
type CrossoverFunc func(a, b *bitset.BitSet, rng *rand.Rand)

// MutateFunc perturbs a genome in place with the given per-bit
// probability.
type MutateFunc func(genome *bitset.BitSet, indpb float64, rng *rand.Rand)

// Operators bundles the evaluation and variation functions the engine
// runs. All fields must be set; Defaults covers everything but
// Evaluate.
type Operators struct {
	Evaluate  EvaluateFunc
	Select    SelectFunc
	Crossover CrossoverFunc
	Mutate    MutateFunc
}

// Defaults returns the standard operator set for the given evaluation
// function: tournament-of-3 selection, partially matched crossover
// and bit-flip mutation.
func Defaults(evaluate EvaluateFunc) Operators {
	return Operators{
		Evaluate:  evaluate,
		Select:    Tournament(3),
		Crossover: PartiallyMatchedCrossover,
		Mutate:    BitFlipMutation,
	}
}

// Tournament returns a SelectFunc drawing size individuals uniformly
// at random with replacement and keeping the fittest.
func Tournament(size int) SelectFunc {
	return func(pop Population, rng *rand.Rand) *Individual {
		best := pop[rng.Intn(len(pop))]
		bestScore, _ := best.Fitness()
		for i := 1; i < size; i++ {
			cand := pop[rng.Intn(len(pop))]
			if score, ok := cand.Fitness(); ok && score > bestScore {
				best = cand
				bestScore = score
			}
		}
		return best
	}
}

// PartiallyMatchedCrossover exchanges a random segment between the
// two genomes. On binary genomes the PMX mapping repair is the
// identity, so the matched-segment swap is the whole operator.
func PartiallyMatchedCrossover(a, b *bitset.BitSet, rng *rand.Rand) {
	n := int(a.Len())
	if n < 2 {
		return
	}

	lo := rng.Intn(n)
	hi := rng.Intn(n)
	if lo > hi {
		lo, hi = hi, lo
	}
	hi++ // segment is [lo, hi)

	for i := lo; i < hi; i++ {
		u := uint(i)
		av, bv := a.Test(u), b.Test(u)
		if av != bv {
			a.SetTo(u, bv)
			b.SetTo(u, av)
		}
	}
}

// BitFlipMutation flips each bit independently with probability indpb.
func BitFlipMutation(genome *bitset.BitSet, indpb float64, rng *rand.Rand) {
	for i := uint(0); i < genome.Len(); i++ {
		if rng.Float64() < indpb {
			genome.Flip(i)
		}
	}
}
