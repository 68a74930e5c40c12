package cluster

// Silhouette returns the mean silhouette coefficient in [-1, 1] for a
// 2-cluster assignment over flattened row-major points. Higher means
// better-separated clusters.
//
// Conventions for degenerate inputs follow the usual definition:
// points in a singleton cluster contribute 0, and an assignment that
// leaves one cluster empty rates -1.
func Silhouette(points []float64, dim int, assignments []int) float64 {
	n := len(assignments)

	var sizes [2]int
	for _, a := range assignments {
		sizes[a]++
	}
	if sizes[0] == 0 || sizes[1] == 0 {
		return -1
	}

	var total float64
	for i := 0; i < n; i++ {
		own := assignments[i]
		if sizes[own] == 1 {
			continue // s(i) = 0 for singleton clusters
		}

		vec := points[i*dim : (i+1)*dim]
		var intra, inter float64
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			d := dist(vec, points[j*dim:(j+1)*dim])
			if assignments[j] == own {
				intra += d
			} else {
				inter += d
			}
		}

		a := intra / float64(sizes[own]-1)
		b := inter / float64(sizes[1-own])

		if m := max(a, b); m > 0 {
			total += (b - a) / m
		}
	}

	return total / float64(n)
}
