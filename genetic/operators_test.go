package genetic

import (
	"math/rand"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomIndividual_ExactCardinality(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		ind := NewRandomIndividual(40, 5, rng)
		assert.Equal(t, uint(5), ind.Cardinality())
		assert.Equal(t, uint(40), ind.Genome.Len())

		_, ok := ind.Fitness()
		assert.False(t, ok, "fitness must not be attached at construction")
	}
}

func TestNewRandomIndividual_FullMask(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ind := NewRandomIndividual(8, 8, rng)
	assert.Equal(t, uint(8), ind.Cardinality())
}

func TestTournament_PrefersFitter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	pop := make(Population, 10)
	for i := range pop {
		pop[i] = NewRandomIndividual(16, 4, rng)
		pop[i].SetFitness(0.1)
	}
	champion := pop[4]
	champion.SetFitness(0.9)

	wins := 0
	for i := 0; i < 200; i++ {
		picked := Tournament(3)(pop, rng)
		assert.Contains(t, pop, picked)
		if picked == champion {
			wins++
		}
	}

	// P(champion in a 3-draw sample) is about 27%; anything close
	// confirms the fittest candidate wins its tournaments.
	assert.Greater(t, wins, 30)
}

func TestPartiallyMatchedCrossover_PreservesCombinedCardinality(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 100; i++ {
		a := NewRandomIndividual(32, 6, rng).Genome
		b := NewRandomIndividual(32, 6, rng).Genome
		before := a.Count() + b.Count()

		PartiallyMatchedCrossover(a, b, rng)

		assert.Equal(t, before, a.Count()+b.Count())
	}
}

func TestPartiallyMatchedCrossover_SwapsSegment(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	// Complementary genomes: after any segment swap, a and b must
	// still be complements of each other.
	a := bitset.New(16)
	b := bitset.New(16)
	for i := uint(0); i < 16; i++ {
		if i%2 == 0 {
			a.Set(i)
		} else {
			b.Set(i)
		}
	}

	PartiallyMatchedCrossover(a, b, rng)

	for i := uint(0); i < 16; i++ {
		assert.NotEqual(t, a.Test(i), b.Test(i))
	}
}

func TestBitFlipMutation_Extremes(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	genome := bitset.New(24)
	genome.Set(1).Set(5).Set(13)
	original := genome.Clone()

	BitFlipMutation(genome, 0, rng)
	require.True(t, genome.Equal(original), "indpb=0 must not change the genome")

	BitFlipMutation(genome, 1, rng)
	for i := uint(0); i < 24; i++ {
		assert.NotEqual(t, original.Test(i), genome.Test(i), "indpb=1 must flip every bit")
	}
}

func TestIndividual_CloneIsIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	ind := NewRandomIndividual(16, 4, rng)
	ind.SetFitness(0.5)

	clone := ind.Clone()
	score, ok := clone.Fitness()
	require.True(t, ok)
	assert.Equal(t, 0.5, score)

	clone.Genome.Flip(0)
	assert.NotEqual(t, ind.Genome.Test(0), clone.Genome.Test(0))

	clone.Invalidate()
	_, ok = clone.Fitness()
	assert.False(t, ok)
	_, ok = ind.Fitness()
	assert.True(t, ok)
}
