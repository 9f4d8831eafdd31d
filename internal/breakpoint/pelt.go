// Package breakpoint finds the year a distance series changes regime.
package breakpoint

import (
	"errors"
	"math"
	"slices"

	"github.com/coastal-guardian/shoreline-stats/internal/properties"
)

var ErrNoBreakpoint = errors.New("no breakpoint found")

// partition is a segmentation of a signal prefix: its segment ends in
// increasing order and its penalised cost, accumulated segment by segment.
type partition struct {
	ends []int
	cost float64
}

// Detector segments a signal with the pruned exact linear time search.
type Detector struct {
	penalty float64
	minSize int
	jump    int
}

func NewDetector(cfg properties.BreakpointsConfig) *Detector {
	return &Detector{
		penalty: cfg.Penalty,
		minSize: max(cfg.MinSize, 1),
		jump:    max(cfg.Jump, 1),
	}
}

// Predict returns the sorted segment ends of the optimal partition. The
// last element is always len(signal).
func (d *Detector) Predict(signal []float64) []int {
	n := len(signal)
	if n == 0 {
		return nil
	}
	c := newRBFCost(signal)

	partitions := map[int]partition{0: {}}
	var admissible []int

	var ends []int
	for k := 0; k < n; k += d.jump {
		if k >= d.minSize {
			ends = append(ends, k)
		}
	}
	ends = append(ends, n)

	for _, end := range ends {
		newPt := int(math.Floor(float64(end-d.minSize)/float64(d.jump))) * d.jump
		admissible = append(admissible, newPt)

		var (
			candidates []partition
			starts     []int
		)
		for _, t := range admissible {
			left, ok := partitions[t]
			if !ok {
				continue
			}
			candidates = append(candidates, partition{
				ends: append(slices.Clip(left.ends), end),
				cost: left.cost + c.cost(t, end) + d.penalty,
			})
			starts = append(starts, t)
		}
		if len(candidates) == 0 {
			continue
		}

		best := 0
		for i := 1; i < len(candidates); i++ {
			if candidates[i].cost < candidates[best].cost {
				best = i
			}
		}
		partitions[end] = candidates[best]

		bestCost := candidates[best].cost
		admissible = admissible[:0]
		for i, t := range starts {
			if candidates[i].cost <= bestCost+d.penalty {
				admissible = append(admissible, t)
			}
		}
	}

	return slices.Clone(partitions[n].ends)
}

// First returns the label at the first breakpoint of the signal.
func (d *Detector) First(signal []float64, labels []string) (string, error) {
	bkps := d.Predict(signal)
	if len(bkps) < 2 {
		return "", ErrNoBreakpoint
	}
	return labels[bkps[0]], nil
}
