// Package sampler measures how far every year's shoreline lies from a
// baseline shoreline at evenly spaced points.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/coastal-guardian/shoreline-stats/internal/contour"
	"github.com/coastal-guardian/shoreline-stats/internal/log"
	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/raster"
	"github.com/coastal-guardian/shoreline-stats/internal/utils"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoBaseline  = errors.New("baseline year has no shoreline")
	ErrNoReference = errors.New("reference year has no shoreline")
	ErrNoPoints    = errors.New("baseline shoreline is too short to sample")
)

type SamplePoint struct {
	ID     int
	Offset float64
	Point  orb.Point
}

// Baseline places points every spacing map units along the line, starting
// at its first vertex and stopping before the truncated total length.
func Baseline(line orb.MultiLineString, spacing float64) []SamplePoint {
	length := math.Floor(planar.Length(line))
	var points []SamplePoint
	for offset := 0.0; offset < length; offset += spacing {
		points = append(points, SamplePoint{
			ID:     len(points),
			Offset: offset,
			Point:  Interpolate(line, offset),
		})
	}
	return points
}

// Measurements are the distance and tide tables of a run.
type Measurements struct {
	Points []SamplePoint
	// Distances are signed, rounded and re-based on ReferenceYear.
	Distances     *Table
	Tides         *Table
	BaselineYear  int
	ReferenceYear int
	// Nearest holds the matched point on each year's shoreline.
	Nearest map[int][]orb.Point
}

type yearResult struct {
	distances []float64
	tides     []float64
	nearest   []orb.Point
}

// Measure compares every shoreline with the baseline shoreline.
//
// The sign of a distance compares the baseline index at the matched point
// with the comparison-year index at the sample point: when the baseline
// value is larger the comparison shoreline lies seaward of the baseline and
// the distance is positive, otherwise negative. Later years falling below
// earlier years therefore indicate erosion.
func Measure(ctx context.Context, shorelines []contour.Shoreline, stack *raster.Stack, cfg properties.Config) (*Measurements, error) {
	lines := make(map[int]orb.MultiLineString, len(shorelines))
	for _, s := range shorelines {
		lines[s.Year] = s.Line
	}
	years := utils.GetSortedKeys(lines, true)
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoBaseline, cfg.BaselineYear)
	}

	baseline, ok := lines[cfg.BaselineYear]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoBaseline, cfg.BaselineYear)
	}
	baselineIndex, err := stack.Layer(raster.BandIndex, cfg.BaselineYear)
	if err != nil {
		return nil, err
	}

	reference := cfg.ReferenceYear
	if reference == 0 {
		reference = years[0]
	}
	if _, ok := lines[reference]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoReference, reference)
	}

	points := Baseline(baseline, cfg.Sampler.Spacing)
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	log.Infow("sampling shorelines", "points", len(points), "years", len(years), "baseline", cfg.BaselineYear, "reference", reference)

	results := make([]yearResult, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for yi, year := range years {
		yi, year := yi, year
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			compIndex, err := stack.Layer(raster.BandIndex, year)
			if err != nil {
				return err
			}
			compTide, err := stack.Layer(raster.BandTide, year)
			if err != nil {
				return err
			}
			results[yi] = measureYear(points, lines[year], stack.Grid, baselineIndex, compIndex, compTide, cfg.Sampler.RoundDecimals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &Measurements{
		Points:        points,
		Distances:     NewTable(len(points), years),
		Tides:         NewTable(len(points), years),
		BaselineYear:  cfg.BaselineYear,
		ReferenceYear: reference,
		Nearest:       make(map[int][]orb.Point, len(years)),
	}
	for yi, year := range years {
		for p := range points {
			m.Distances.Values[p][yi] = results[yi].distances[p]
			m.Tides.Values[p][yi] = results[yi].tides[p]
		}
		m.Nearest[year] = results[yi].nearest
	}

	if err := m.Distances.Rebase(reference); err != nil {
		return nil, err
	}
	return m, nil
}

func measureYear(points []SamplePoint, line orb.MultiLineString, grid raster.Grid, baselineIndex, compIndex, compTide []float64, decimals int) yearResult {
	r := yearResult{
		distances: make([]float64, len(points)),
		tides:     make([]float64, len(points)),
		nearest:   make([]orb.Point, len(points)),
	}
	for i, p := range points {
		nearest, dist := Nearest(line, p.Point)

		compAtPoint := grid.Interp(compIndex, p.Point[0], p.Point[1])
		baselineAtNearest := grid.Interp(baselineIndex, nearest[0], nearest[1])
		sign := -1.0
		if baselineAtNearest > compAtPoint {
			sign = 1.0
		}

		r.distances[i] = Round(dist*sign, decimals)
		r.tides[i] = grid.Interp(compTide, p.Point[0], p.Point[1])
		r.nearest[i] = nearest
	}
	return r
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
