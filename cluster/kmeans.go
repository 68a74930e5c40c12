package cluster

import (
	"errors"
	"math"
	"math/rand"
)

// DefaultMaxIter bounds Lloyd's algorithm when callers pass maxIter <= 0.
const DefaultMaxIter = 100

// ErrTooFewPoints is returned when there are fewer points than clusters.
var ErrTooFewPoints = errors.New("cluster: need at least 2 points to bipartition")

// Bipartition assigns each point to one of two clusters using Lloyd's
// algorithm. points is flattened row-major (n * dim). The returned
// slice holds cluster labels 0 or 1 per point.
func Bipartition(points []float64, dim int, rng *rand.Rand, maxIter int) ([]int, error) {
	if dim <= 0 || len(points)%dim != 0 {
		return nil, errors.New("cluster: points length is not a multiple of dim")
	}
	n := len(points) / dim
	if n < 2 {
		return nil, ErrTooFewPoints
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	const k = 2
	centroids := make([]float64, k*dim)

	// Initialize centroids from two distinct data points.
	perm := rng.Perm(n)
	for i := 0; i < k; i++ {
		copy(centroids[i*dim:(i+1)*dim], points[perm[i]*dim:(perm[i]+1)*dim])
	}

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := make([]float64, k*dim)

	for iter := 0; iter < maxIter; iter++ {
		changed := false

		// Assignment step
		for i := 0; i < n; i++ {
			vec := points[i*dim : (i+1)*dim]
			best := 0
			minDist := sqDist(vec, centroids[:dim])
			if d := sqDist(vec, centroids[dim:]); d < minDist {
				best = 1
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed && iter > 0 {
			break
		}

		// Update step
		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}
		for i := 0; i < n; i++ {
			c := assignments[i]
			vec := points[i*dim : (i+1)*dim]
			for d := 0; d < dim; d++ {
				sums[c*dim+d] += vec[d]
			}
			counts[c]++
		}
		for j := 0; j < k; j++ {
			if counts[j] > 0 {
				scale := 1.0 / float64(counts[j])
				for d := 0; d < dim; d++ {
					centroids[j*dim+d] = sums[j*dim+d] * scale
				}
			} else {
				// Re-seed an empty cluster with a random point.
				idx := rng.Intn(n)
				copy(centroids[j*dim:(j+1)*dim], points[idx*dim:(idx+1)*dim])
			}
		}
	}

	return assignments, nil
}

// Score bipartitions the points and returns the silhouette score of
// the resulting assignment; a degenerate single-cluster outcome rates
// -1, the worst possible separation.
func Score(points []float64, dim int, rng *rand.Rand, maxIter int) (float64, error) {
	assignments, err := Bipartition(points, dim, rng, maxIter)
	if err != nil {
		return 0, err
	}
	return Silhouette(points, dim, assignments), nil
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func dist(a, b []float64) float64 {
	return math.Sqrt(sqDist(a, b))
}
