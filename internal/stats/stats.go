// Package stats runs the per-point regressions of a study area.
package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/coastal-guardian/shoreline-stats/internal/breakpoint"
	"github.com/coastal-guardian/shoreline-stats/internal/log"
	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/regress"
	"github.com/coastal-guardian/shoreline-stats/internal/sampler"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
)

type PointStats struct {
	Point sampler.SamplePoint
	// Distances is the re-based distance series aligned with Report.Years.
	Distances []float64
	Time      regress.Result
	Tide      regress.Result
	Climate   map[string]regress.Result
	// Breakpoint is the first breakpoint year, empty when none was found
	// or detection is disabled.
	Breakpoint string
}

type Report struct {
	Years        []int
	ClimateNames []string
	Points       []PointStats
}

// Compute regresses each point's distances on time, on tide height and on
// every climate index. climate series must be aligned with the measurement
// years. Degenerate regressions are recorded in the result status; only
// configuration errors abort the run.
func Compute(ctx context.Context, m *sampler.Measurements, climateNames []string, climate map[string][]float64, cfg properties.Config) (*Report, error) {
	years := m.Distances.Years
	for _, name := range climateNames {
		if len(climate[name]) != len(years) {
			return nil, fmt.Errorf("climate index %s has %d values for %d years", name, len(climate[name]), len(years))
		}
	}

	x := make([]float64, len(years))
	labels := make([]string, len(years))
	for i, y := range years {
		x[i] = float64(y)
		labels[i] = strconv.Itoa(y)
	}
	opts := regress.Options{
		OutlierThreshold: cfg.Regression.OutlierThreshold,
		Method:           cfg.Regression.OutlierMethod,
	}
	var detector *breakpoint.Detector
	if cfg.Breakpoints.Enabled {
		detector = breakpoint.NewDetector(cfg.Breakpoints)
	}

	report := &Report{
		Years:        years,
		ClimateNames: climateNames,
		Points:       make([]PointStats, len(m.Points)),
	}

	var (
		mu             sync.Mutex
		firstErr       error
		stopProcessing sync.Once
		progressBar    = progressbar.Default(int64(len(m.Points)), "Computing rates of change")
	)

	wp := workerpool.New(max(cfg.Workers, 1))
	for i, point := range m.Points {
		i, point := i, point
		wp.Submit(func() {
			if ctx.Err() != nil {
				stopProcessing.Do(func() { firstErr = ctx.Err() })
				return
			}
			ps, err := computePoint(point, m.Distances.Row(i), m.Tides.Row(i), x, labels, climateNames, climate, opts, detector)
			if err != nil {
				stopProcessing.Do(func() { firstErr = err })
				return
			}
			report.Points[i] = ps

			mu.Lock()
			progressBar.Add(1)
			mu.Unlock()
		})
	}
	wp.StopWait()

	if firstErr != nil {
		return nil, fmt.Errorf("error computing statistics: %w", firstErr)
	}
	log.Infow("computed rates of change", "points", len(report.Points), "climate_indices", len(climateNames))
	return report, nil
}

func computePoint(point sampler.SamplePoint, distances, tides, x []float64, labels, climateNames []string, climate map[string][]float64, opts regress.Options, detector *breakpoint.Detector) (PointStats, error) {
	ps := PointStats{
		Point:     point,
		Distances: distances,
		Climate:   make(map[string]regress.Result, len(climateNames)),
	}

	var err error
	if ps.Time, err = regressPoint(distances, x, labels, opts); err != nil {
		return ps, err
	}
	if ps.Tide, err = regressPoint(distances, tides, labels, opts); err != nil {
		return ps, err
	}
	for _, name := range climateNames {
		res, err := regressPoint(distances, climate[name], labels, opts)
		if err != nil {
			return ps, err
		}
		ps.Climate[name] = res
	}

	if detector != nil {
		var signal []float64
		var valid []string
		for i, d := range distances {
			if !math.IsNaN(d) {
				signal = append(signal, d)
				valid = append(valid, labels[i])
			}
		}
		if year, err := detector.First(signal, valid); err == nil {
			ps.Breakpoint = year
		}
	}
	return ps, nil
}

// regressPoint keeps degenerate series as a status instead of an error.
func regressPoint(y, x []float64, labels []string, opts regress.Options) (regress.Result, error) {
	res, err := regress.Regress(y, x, labels, opts)
	switch {
	case err == nil:
	case errors.Is(err, regress.ErrInsufficientData), errors.Is(err, regress.ErrConstantX):
		log.Debugw("degenerate regression", "status", res.Status, "error", err)
	default:
		return res, err
	}
	return res, nil
}
