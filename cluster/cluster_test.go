package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBipartition_SeparatesTwoBlobs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// Two tight blobs around (0,0) and (10,10).
	points := []float64{
		0, 0, 0, 1, 1, 0,
		10, 10, 10, 11, 11, 10,
	}

	assignments, err := Bipartition(points, 2, rng, 0)
	require.NoError(t, err)
	require.Len(t, assignments, 6)

	assert.Equal(t, assignments[0], assignments[1])
	assert.Equal(t, assignments[0], assignments[2])
	assert.Equal(t, assignments[3], assignments[4])
	assert.Equal(t, assignments[3], assignments[5])
	assert.NotEqual(t, assignments[0], assignments[3])
}

func TestBipartition_TooFewPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Bipartition([]float64{1, 2}, 2, rng, 0)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestBipartition_BadShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Bipartition([]float64{1, 2, 3}, 2, rng, 0)
	assert.Error(t, err)
}

func TestSilhouette_WellSeparated(t *testing.T) {
	points := []float64{
		0, 0, 0, 1, 1, 0,
		10, 10, 10, 11, 11, 10,
	}
	assignments := []int{0, 0, 0, 1, 1, 1}

	s := Silhouette(points, 2, assignments)
	assert.Greater(t, s, 0.8)
	assert.LessOrEqual(t, s, 1.0)
}

func TestSilhouette_MixedAssignmentScoresLower(t *testing.T) {
	points := []float64{
		0, 0, 0, 1, 1, 0,
		10, 10, 10, 11, 11, 10,
	}
	good := Silhouette(points, 2, []int{0, 0, 0, 1, 1, 1})
	bad := Silhouette(points, 2, []int{0, 1, 0, 1, 0, 1})

	assert.Greater(t, good, bad)
}

func TestSilhouette_EmptyClusterIsWorst(t *testing.T) {
	points := []float64{0, 0, 1, 1, 2, 2}
	s := Silhouette(points, 2, []int{0, 0, 0})
	assert.Equal(t, -1.0, s)
}

func TestScore_SeededDeterminism(t *testing.T) {
	points := []float64{
		0, 0, 0, 1, 1, 0,
		10, 10, 10, 11, 11, 10,
	}

	s1, err := Score(points, 2, rand.New(rand.NewSource(7)), 0)
	require.NoError(t, err)
	s2, err := Score(points, 2, rand.New(rand.NewSource(7)), 0)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Greater(t, s1, 0.8)
}
