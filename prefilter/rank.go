package prefilter

import "gonum.org/v1/gonum/floats"

// rankTransform maps values to their 1-based ranks, averaging ties,
// so Pearson correlation over the ranks yields Spearman's rho.
func rankTransform(col []float64) []float64 {
	n := len(col)
	sorted := make([]float64, n)
	copy(sorted, col)
	inds := make([]int, n)
	floats.Argsort(sorted, inds)

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && sorted[j+1] == sorted[i] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[inds[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
