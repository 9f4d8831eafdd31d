// Package ocean separates open ocean from land and inland water, and builds
// the per-year masks handed to the contour extractor.
package ocean

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/coastal-guardian/shoreline-stats/internal/log"
	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/raster"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyStudyArea = errors.New("study area does not overlap the raster grid")
	ErrNoWater        = errors.New("no year contains water pixels")
)

// Classification holds every mask derived from a composited stack.
type Classification struct {
	Grid raster.Grid
	// Years that contain at least one water pixel, ascending.
	Years []int
	// Frequency is the fraction of valid years each pixel was water; NaN
	// where no year was valid.
	Frequency     []float64
	AllTimeOcean  raster.Mask
	CoastalBuffer raster.Mask
	YearlyOcean   map[int]raster.Mask
	Inclusion     map[int]raster.Mask
	// Masked holds the index layer of each year with NaN outside Inclusion.
	Masked map[int][]float64
}

// Threshold classifies a layer into 1 (water, value > threshold), 0 (land)
// and NaN (no-data).
func Threshold(layer []float64, threshold float64) []float64 {
	out := make([]float64, len(layer))
	for i, v := range layer {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case v > threshold:
			out[i] = 1
		default:
			out[i] = 0
		}
	}
	return out
}

// WaterMask turns a thresholded layer into a mask; no-data is not water.
func WaterMask(grid raster.Grid, thresholded []float64) raster.Mask {
	m := raster.NewMask(grid.Width, grid.Height)
	for i, v := range thresholded {
		m.Data[i] = v == 1
	}
	return m
}

// MaskOcean keeps the largest connected body of water and grows it by the
// configured number of pixels to take in mixed boundary pixels.
func MaskOcean(water raster.Mask, cfg properties.ClassifierConfig) raster.Mask {
	ocean := LargestRegion(water, cfg.Connectivity)
	return Dilate(ocean, Square(2*cfg.OceanDilation+1))
}

// Frequency returns the NaN-skipping mean of thresholded layers.
func Frequency(size int, thresholded [][]float64) []float64 {
	out := make([]float64, size)
	for i := 0; i < size; i++ {
		sum, n := 0.0, 0
		for _, layer := range thresholded {
			if v := layer[i]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Classify derives the all-time ocean, the coastal buffer and the yearly
// inclusion masks from a composited stack. The all-time masks are complete
// before any yearly mask is computed.
func Classify(ctx context.Context, stack *raster.Stack, studyArea, estuary raster.Mask, cfg properties.Config) (*Classification, error) {
	grid := stack.Grid
	if studyArea.Width != grid.Width || studyArea.Height != grid.Height ||
		estuary.Width != grid.Width || estuary.Height != grid.Height {
		return nil, fmt.Errorf("%w: vector masks do not match the %dx%d grid", raster.ErrMisaligned, grid.Width, grid.Height)
	}
	if studyArea.Count() == 0 {
		return nil, ErrEmptyStudyArea
	}

	index, ok := stack.Band(raster.BandIndex)
	if !ok {
		return nil, fmt.Errorf("%w: band %s is missing", raster.ErrMisaligned, raster.BandIndex)
	}

	cls := &Classification{
		Grid:        grid,
		YearlyOcean: make(map[int]raster.Mask),
		Inclusion:   make(map[int]raster.Mask),
		Masked:      make(map[int][]float64),
	}

	thresholdedByYear := make(map[int][]float64)
	var kept [][]float64
	for i, year := range stack.Years {
		t := Threshold(index[i], cfg.IndexThreshold)
		water := 0
		for p := range t {
			if estuary.Data[p] && !math.IsNaN(t[p]) {
				t[p] = 0
			}
			if t[p] == 1 {
				water++
			}
		}
		if water == 0 {
			log.Warnw("dropping year without water pixels", "year", year)
			continue
		}
		cls.Years = append(cls.Years, year)
		thresholdedByYear[year] = t
		kept = append(kept, t)
	}
	if len(cls.Years) == 0 {
		return nil, ErrNoWater
	}

	cls.Frequency = Frequency(grid.Size(), kept)
	frequent := raster.NewMask(grid.Width, grid.Height)
	for i, f := range cls.Frequency {
		frequent.Data[i] = f > cfg.Classifier.FrequencyThreshold
	}
	cls.AllTimeOcean = MaskOcean(Open(frequent, Disk(cfg.Classifier.OpeningRadius)), cfg.Classifier)

	bufferOcean := Dilate(cls.AllTimeOcean, Disk(cfg.Classifier.BufferRadius))
	bufferLand := Dilate(cls.AllTimeOcean.Not(), Disk(cfg.Classifier.BufferRadius))
	cls.CoastalBuffer = bufferOcean.And(bufferLand)

	log.Infow("all-time masks ready",
		"years", len(cls.Years),
		"ocean_pixels", cls.AllTimeOcean.Count(),
		"buffer_pixels", cls.CoastalBuffer.Count())

	allowed := cls.CoastalBuffer.And(studyArea, estuary.Not())

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, year := range stack.Years {
		t, ok := thresholdedByYear[year]
		if !ok {
			continue
		}
		i, year := i, year
		layer := index[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			yearly := MaskOcean(WaterMask(grid, t), cfg.Classifier)
			inclusion := yearly.And(allowed)
			masked := raster.NaNLayer(grid.Size())
			for p, in := range inclusion.Data {
				if in {
					masked[p] = layer[p]
				}
			}

			mu.Lock()
			cls.YearlyOcean[year] = yearly
			cls.Inclusion[year] = inclusion
			cls.Masked[year] = masked
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return cls, nil
}
