package breakpoint

import (
	"math"
	"slices"
)

// rbfCost is the kernel segment cost with an RBF kernel whose bandwidth
// follows the median heuristic.
type rbfCost struct {
	gram [][]float64
	n    int
}

func newRBFCost(signal []float64) *rbfCost {
	gamma := medianGamma(signal)
	n := len(signal)
	gram := make([][]float64, n)
	for i := range gram {
		gram[i] = make([]float64, n)
		for j := range gram[i] {
			diff := signal[i] - signal[j]
			gram[i][j] = math.Exp(-gamma * diff * diff)
		}
	}
	return &rbfCost{gram: gram, n: n}
}

// medianGamma is the inverse of the median non-zero squared distance
// between samples.
func medianGamma(signal []float64) float64 {
	var dists []float64
	for i := range signal {
		for j := i + 1; j < len(signal); j++ {
			diff := signal[i] - signal[j]
			if d := diff * diff; d > 0 {
				dists = append(dists, d)
			}
		}
	}
	if len(dists) == 0 {
		return 1
	}
	slices.Sort(dists)
	return 1 / dists[len(dists)/2]
}

// cost of the segment [start, end): trace minus the mean of the block.
func (c *rbfCost) cost(start, end int) float64 {
	if start >= end || start < 0 || end > c.n {
		return math.Inf(1)
	}
	var diag, total float64
	for i := start; i < end; i++ {
		for j := start; j < end; j++ {
			total += c.gram[i][j]
		}
		diag += c.gram[i][i]
	}
	return diag - total/float64(end-start)
}
