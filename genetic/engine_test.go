package genetic

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantEvaluate(score float64) EvaluateFunc {
	return func(mask *bitset.BitSet, rng *rand.Rand) (float64, error) {
		return score, nil
	}
}

func TestNew_Validation(t *testing.T) {
	cfg := DefaultConfig(20, 5)

	_, err := New(Operators{}, cfg)
	assert.ErrorIs(t, err, ErrMissingEvaluate)

	bad := cfg
	bad.PopulationSize = 1
	_, err = New(Defaults(constantEvaluate(0)), bad)
	assert.Error(t, err)

	bad = cfg
	bad.TargetDim = 21
	_, err = New(Defaults(constantEvaluate(0)), bad)
	assert.Error(t, err)

	bad = cfg
	bad.MaskLength = 0
	_, err = New(Defaults(constantEvaluate(0)), bad)
	assert.Error(t, err)
}

func TestRun_StagnationTermination(t *testing.T) {
	cfg := DefaultConfig(20, 5)
	cfg.PopulationSize = 10
	cfg.StagnationLimit = 100
	cfg.MaxGenerations = 0
	cfg.Workers = 1
	cfg.Seed = 11

	e, err := New(Defaults(constantEvaluate(0.25)), cfg)
	require.NoError(t, err)
	assert.Equal(t, StateInitialized, e.State())

	best, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, best)

	// A constant fitness never improves, so the engine must run the
	// first stable generation plus exactly 100 stagnant ones.
	history := e.History()
	require.Len(t, history, 100)
	assert.Equal(t, 100, history[len(history)-1].Stagnation)
	assert.Equal(t, StateConverged, e.State())

	score, ok := best.Fitness()
	require.True(t, ok)
	assert.Equal(t, 0.25, score)
}

func TestRun_MonotonicElitism(t *testing.T) {
	// Noisy fitness: best-so-far can only ratchet upward because the
	// next generation is the top P of the merged 2P pool.
	noisy := func(mask *bitset.BitSet, rng *rand.Rand) (float64, error) {
		return rng.Float64(), nil
	}

	cfg := DefaultConfig(30, 6)
	cfg.PopulationSize = 20
	cfg.MaxGenerations = 40
	cfg.StagnationLimit = 1000
	cfg.Workers = 2
	cfg.Seed = 5

	e, err := New(Defaults(noisy), cfg)
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.ErrorIs(t, err, ErrMaxGenerations)

	history := e.History()
	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i].BestFitness, history[i-1].BestFitness,
			"best fitness regressed at generation %d", history[i].Generation)
	}
}

func TestRun_GenerationCapReturnsBest(t *testing.T) {
	cfg := DefaultConfig(20, 5)
	cfg.PopulationSize = 10
	cfg.MaxGenerations = 5
	cfg.StagnationLimit = 1000
	cfg.Workers = 1
	cfg.Seed = 3

	e, err := New(Defaults(constantEvaluate(0.5)), cfg)
	require.NoError(t, err)

	best, err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrMaxGenerations)
	require.NotNil(t, best)
	assert.Len(t, e.History(), 5)
}

func TestRun_EvaluationFailureIsFatal(t *testing.T) {
	boom := errors.New("backing store gone")
	failing := func(mask *bitset.BitSet, rng *rand.Rand) (float64, error) {
		return 0, boom
	}

	cfg := DefaultConfig(20, 5)
	cfg.PopulationSize = 10
	cfg.Workers = 2
	cfg.Seed = 3

	e, err := New(Defaults(failing), cfg)
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig(20, 5)
	cfg.PopulationSize = 10
	cfg.Seed = 3

	e, err := New(Defaults(constantEvaluate(0)), cfg)
	require.NoError(t, err)

	_, err = e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_FindsPlantedSubset(t *testing.T) {
	// Fitness rewards overlap with a planted 3-descriptor subset; the
	// search must recover it exactly.
	planted := bitset.New(16)
	planted.Set(2).Set(9).Set(15)

	overlap := func(mask *bitset.BitSet, rng *rand.Rand) (float64, error) {
		if mask.Count() != 3 {
			return -1.0, nil
		}
		inter := mask.IntersectionCardinality(planted)
		return float64(inter) / 3.0, nil
	}

	cfg := DefaultConfig(16, 3)
	cfg.PopulationSize = 60
	cfg.StagnationLimit = 100
	cfg.MaxGenerations = 2000
	cfg.Workers = 4
	cfg.Seed = 17

	e, err := New(Defaults(overlap), cfg)
	require.NoError(t, err)

	best, err := e.Run(context.Background())
	require.NoError(t, err)

	score, ok := best.Fitness()
	require.True(t, ok)
	assert.Equal(t, 1.0, score)
	assert.True(t, best.Genome.Equal(planted))
}
