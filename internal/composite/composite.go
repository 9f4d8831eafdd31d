// Package composite merges yearly observations with their gap-filled
// substitutes.
package composite

import (
	"fmt"

	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/raster"
)

var requiredBands = []string{
	raster.BandIndex,
	raster.BandGapfillIndex,
	raster.BandGapfillTide,
	raster.BandStdev,
	raster.BandTide,
	raster.BandCount,
}

// Reliable reports whether a pixel's own observation is trusted. NaN count
// or stdev never pass.
func Reliable(count, stdev float64, cfg properties.CompositorConfig) bool {
	return count > cfg.MinCount && stdev < cfg.MaxStdev
}

// Composite returns a copy of the stack whose index and tide bands hold the
// observed value where Reliable, and the gap-filled value elsewhere.
func Composite(stack *raster.Stack, cfg properties.CompositorConfig) (*raster.Stack, error) {
	for _, name := range requiredBands {
		if _, ok := stack.Band(name); !ok {
			return nil, fmt.Errorf("%w: band %s is missing", raster.ErrMisaligned, name)
		}
	}

	merged := stack.Clone()
	index, _ := merged.Band(raster.BandIndex)
	tide, _ := merged.Band(raster.BandTide)
	gapIndex, _ := merged.Band(raster.BandGapfillIndex)
	gapTide, _ := merged.Band(raster.BandGapfillTide)
	stdev, _ := merged.Band(raster.BandStdev)
	count, _ := merged.Band(raster.BandCount)

	for y := range merged.Years {
		for i := range index[y] {
			if Reliable(count[y][i], stdev[y][i], cfg) {
				continue
			}
			index[y][i] = gapIndex[y][i]
			tide[y][i] = gapTide[y][i]
		}
	}

	return merged, nil
}
