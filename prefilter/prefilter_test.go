package prefilter

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/descgo/table"
)

func TestDominantFraction(t *testing.T) {
	assert.Equal(t, 1.0, DominantFraction([]float64{5, 5, 5, 5}))
	assert.Equal(t, 0.75, DominantFraction([]float64{5, 5, 5, 1}))
	assert.Equal(t, 0.25, DominantFraction([]float64{1, 2, 3, 4}))
}

func TestRankTransform(t *testing.T) {
	assert.Equal(t, []float64{3, 1, 2}, rankTransform([]float64{30, 10, 20}))
	// Ties get the average of their rank span.
	assert.Equal(t, []float64{1.5, 1.5, 3}, rankTransform([]float64{10, 10, 20}))
}

func TestFilter_RemovesConstants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tbl, err := table.New(
		[]string{"const", "varied"},
		[][]float64{
			{7, 7, 7, 7, 7, 7, 7, 7, 7, 7},
			{0, 1, 2, 3, 4, 100, 101, 102, 103, 104},
		},
	)
	require.NoError(t, err)

	res, err := Filter(tbl, 0.95, 1.0, rng)
	require.NoError(t, err)

	assert.Equal(t, []string{"const"}, res.DroppedConstant)
	assert.Equal(t, []string{"varied"}, res.Table.Names())
}

func TestFilter_KeepsColumnBelowDominanceThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tbl, err := table.New(
		[]string{"mixed", "varied"},
		[][]float64{
			// Dominant value in 60% of rows, below the 0.95 tolerance.
			{7, 7, 7, 1, 2, 7, 7, 3, 7, 4},
			{0, 1, 2, 3, 4, 100, 101, 102, 103, 104},
		},
	)
	require.NoError(t, err)

	res, err := Filter(tbl, 0.95, 1.0, rng)
	require.NoError(t, err)

	assert.Empty(t, res.DroppedConstant)
	assert.Equal(t, []string{"mixed", "varied"}, res.Table.Names())
}

func TestFilter_AllConstantFatal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tbl, err := table.New(
		[]string{"a", "b"},
		[][]float64{{1, 1, 1}, {2, 2, 2}},
	)
	require.NoError(t, err)

	_, err = Filter(tbl, 0.95, 0.7, rng)
	assert.ErrorIs(t, err, ErrNoSurvivors)
}

func TestFilter_ToleranceValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tbl, err := table.New([]string{"a"}, [][]float64{{1, 2, 3}})
	require.NoError(t, err)

	_, err = Filter(tbl, 1.5, 0.7, rng)
	var te *ErrTolerance
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "variance", te.Name)

	_, err = Filter(tbl, 0.95, -0.1, rng)
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "correlation", te.Name)
}

func TestPruneCorrelated_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	base := make([]float64, 20)
	for i := range base {
		base[i] = float64(i % 2 * 10)
	}
	noisy := make([]float64, 20)
	indep := make([]float64, 20)
	for i := range noisy {
		noisy[i] = base[i] + 0.01*float64(i) // near-perfect rank correlation with base
		indep[i] = float64((i*7)%13) - 6
	}

	tbl, err := table.New([]string{"base", "noisy", "indep"}, [][]float64{base, noisy, indep})
	require.NoError(t, err)

	res, err := Filter(tbl, 0.99, 0.9, rng)
	require.NoError(t, err)
	require.NotEmpty(t, res.DroppedCorrelated)

	// A second pass over the pruned output must flag nothing.
	again, dropped, err := pruneCorrelated(res.Table, 0.9, res.Scores)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Equal(t, res.Table.Names(), again.Names())
}

func TestFilter_EndToEndScenario(t *testing.T) {
	// 10 descriptors: 2 exactly constant, 3 pairwise correlated above
	// 0.9, tolerances (variance=0.95, correlation=0.7).
	rng := rand.New(rand.NewSource(5))
	n := 30

	mk := func(f func(i int) float64) []float64 {
		col := make([]float64, n)
		for i := range col {
			col[i] = f(i)
		}
		return col
	}

	base := mk(func(i int) float64 { return float64(i%7) + float64(i)/10 })
	cols := [][]float64{
		mk(func(int) float64 { return 1 }),                       // const1
		mk(func(int) float64 { return -3.5 }),                    // const2
		base,                                                     // corr1
		mk(func(i int) float64 { return base[i]*2 + 0.5 }),       // corr2 (monotone in corr1)
		mk(func(i int) float64 { return base[i] + 100 }),         // corr3
		mk(func(i int) float64 { return float64((i*11)%17) }),    // indep1
		mk(func(i int) float64 { return float64((i*5)%23) - 9 }), // indep2
		mk(func(i int) float64 { return math.Sin(float64(i)) }),  // indep3
		mk(func(i int) float64 { return float64(i*i % 29) }),     // indep4
		mk(func(i int) float64 { return float64((i*13)%19)/2 - 4 }), // indep5
	}
	names := []string{"const1", "const2", "corr1", "corr2", "corr3",
		"indep1", "indep2", "indep3", "indep4", "indep5"}

	tbl, err := table.New(names, cols)
	require.NoError(t, err)

	res, err := Filter(tbl, 0.95, 0.7, rng)
	require.NoError(t, err)

	// Exactly the two constants go in stage 1.
	assert.ElementsMatch(t, []string{"const1", "const2"}, res.DroppedConstant)

	// At least one of the correlated trio goes in stage 3.
	assert.GreaterOrEqual(t, len(res.DroppedCorrelated), 1)
	for _, name := range res.DroppedCorrelated {
		assert.Contains(t, []string{"corr1", "corr2", "corr3"}, name)
	}

	// No surviving pair exceeds the tolerance.
	assert.True(t, flagCorrelated(res.Table, 0.7).IsEmpty())
}
