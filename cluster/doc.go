// Package cluster implements 2-way k-means partitioning and the
// silhouette quality score used to rate descriptor subsets.
//
// Points are passed as flattened row-major []float64 slices (n * dim),
// the same layout the out-of-core matrix produces when slicing
// columns, so no reshaping is needed between the two.
package cluster
