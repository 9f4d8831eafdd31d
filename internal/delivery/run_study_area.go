// Package delivery wires the processing stages into a study-area run.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/coastal-guardian/shoreline-stats/internal/cache"
	"github.com/coastal-guardian/shoreline-stats/internal/climate"
	"github.com/coastal-guardian/shoreline-stats/internal/composite"
	"github.com/coastal-guardian/shoreline-stats/internal/contour"
	"github.com/coastal-guardian/shoreline-stats/internal/log"
	"github.com/coastal-guardian/shoreline-stats/internal/ocean"
	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/raster"
	"github.com/coastal-guardian/shoreline-stats/internal/regress"
	"github.com/coastal-guardian/shoreline-stats/internal/sampler"
	"github.com/coastal-guardian/shoreline-stats/internal/stats"
	"github.com/coastal-guardian/shoreline-stats/internal/vector"
	"github.com/coastal-guardian/shoreline-stats/output"
	"github.com/paulmach/orb"
)

type Pipeline struct {
	Config  properties.Config
	Loader  raster.Loader
	Vectors VectorSource
	// Cache holds extracted shorelines; nil disables caching.
	Cache cache.Service[orb.MultiLineString]
}

// NewPipeline reads inputs with GDAL and caches shorelines on disk.
func NewPipeline(cfg properties.Config) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Loader:  raster.GodalLoader{Dir: properties.ResolvePath(cfg.Inputs.RasterDir)},
		Vectors: GodalVectors{Inputs: cfg.Inputs},
		Cache:   cache.NewFileCache[orb.MultiLineString](properties.ResolvePath(filepath.Join(cfg.Output.Dir, cfg.Output.CacheSubDir))),
	}
}

type Report struct {
	StudyArea  string
	Years      []int
	Shorelines []contour.Shoreline
	Stats      *stats.Report
	Paths      output.Paths
	Duration   time.Duration
}

// Summary is a short human readable account of the run.
func (r *Report) Summary() string {
	counts := map[string]int{}
	for _, p := range r.Stats.Points {
		counts[output.RateClass(p.Time)]++
	}
	return fmt.Sprintf("%d shorelines (%v), %d points: %d erosion, %d accretion, %d stable, %d unknown, took %v",
		len(r.Shorelines), r.Years, len(r.Stats.Points),
		counts["erosion"], counts["accretion"], counts["stable"], counts["unknown"], r.Duration.Round(time.Second))
}

// RunStudyArea derives the shoreline change statistics of one study area
// and writes them under the output directory.
func (p *Pipeline) RunStudyArea(ctx context.Context, studyArea string) (*Report, error) {
	start := time.Now()
	cfg := p.Config
	log.Infow("starting study area", "study_area", studyArea, "water_index", cfg.WaterIndex, "threshold", cfg.IndexThreshold)

	stack, err := p.Loader.Load(studyArea, cfg.WaterIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to load rasters: %w", err)
	}
	composited, err := composite.Composite(stack, cfg.Compositor)
	if err != nil {
		return nil, err
	}
	grid := composited.Grid

	studyMask, estuaryMask, err := p.masks(studyArea, grid)
	if err != nil {
		return nil, err
	}

	cls, err := ocean.Classify(ctx, composited, studyMask, estuaryMask, cfg)
	if err != nil {
		return nil, err
	}

	shorelines, err := p.shorelines(ctx, studyArea, grid, cls.Masked)
	if err != nil {
		return nil, err
	}
	log.Infow("shorelines extracted", "count", len(shorelines))

	measurements, err := sampler.Measure(ctx, shorelines, composited, cfg)
	if err != nil {
		return nil, err
	}

	names, series, err := p.climate(measurements.Distances.Years)
	if err != nil {
		return nil, err
	}

	statsReport, err := stats.Compute(ctx, measurements, names, series, cfg)
	if err != nil {
		return nil, err
	}

	report := &Report{
		StudyArea:  studyArea,
		Years:      measurements.Distances.Years,
		Shorelines: shorelines,
		Stats:      statsReport,
		Paths:      output.NewPaths(studyArea, cfg),
	}
	if err := p.write(report); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	log.Infow("study area finished", "study_area", studyArea, "points", len(statsReport.Points), "duration", report.Duration)
	return report, nil
}

// masks burns the study area and the estuaries onto the grid. Estuaries are
// taken over the whole raster extent because they also shape the all-time
// ocean mask beyond the study area.
func (p *Pipeline) masks(studyArea string, grid raster.Grid) (raster.Mask, raster.Mask, error) {
	geom, err := p.Vectors.StudyArea(studyArea, grid)
	if err != nil {
		return raster.Mask{}, raster.Mask{}, fmt.Errorf("failed to read study area: %w", err)
	}
	studyMask, err := vector.Rasterize(grid, []orb.Geometry{geom})
	if err != nil {
		return raster.Mask{}, raster.Mask{}, fmt.Errorf("failed to rasterize study area: %w", err)
	}

	estuaries, err := p.Vectors.Estuaries(grid, grid.Bound())
	if err != nil {
		return raster.Mask{}, raster.Mask{}, fmt.Errorf("failed to read estuaries: %w", err)
	}
	estuaryMask, err := vector.Rasterize(grid, estuaries)
	if err != nil {
		return raster.Mask{}, raster.Mask{}, fmt.Errorf("failed to rasterize estuaries: %w", err)
	}
	log.Debugw("vector masks ready", "study_area_pixels", studyMask.Count(), "estuaries", len(estuaries), "estuary_pixels", estuaryMask.Count())
	return studyMask, estuaryMask, nil
}

// shorelines extracts the yearly contours, reusing cached lines for masked
// layers seen before.
func (p *Pipeline) shorelines(ctx context.Context, studyArea string, grid raster.Grid, masked map[int][]float64) ([]contour.Shoreline, error) {
	cfg := p.Config
	keys := make(map[int]string, len(masked))
	var cached []contour.Shoreline
	pending := make(map[int][]float64)
	for year, layer := range masked {
		keys[year] = cache.GenerateKey(studyArea, year, cfg.IndexThreshold, cfg.Contour.MinVertices, grid.Transform, cache.LayerDigest(layer))
		if p.Cache != nil {
			if line, ok := p.Cache.Get(keys[year]); ok {
				cached = append(cached, contour.Shoreline{Year: year, Line: line})
				continue
			}
		}
		pending[year] = layer
	}
	log.Debugw("shoreline cache", "hits", len(cached), "misses", len(pending))

	extracted, err := contour.ExtractAll(ctx, grid, pending, cfg.IndexThreshold, cfg.Contour.MinVertices, cfg.Workers)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		for _, s := range extracted {
			if err := p.Cache.Set(keys[s.Year], s.Line); err != nil {
				log.Warnw("failed to cache shoreline", "year", s.Year, "error", err)
			}
		}
	}

	all := append(cached, extracted...)
	slices.SortFunc(all, func(a, b contour.Shoreline) int { return a.Year - b.Year })
	return all, nil
}

// climate loads the climate indices aligned with years. A missing file
// disables the climate regressions.
func (p *Pipeline) climate(years []int) ([]string, map[string][]float64, error) {
	path := properties.ResolvePath(p.Config.Inputs.ClimatePath)
	if path == "" {
		return nil, nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Warnw("climate indices not found, skipping climate regressions", "path", path)
		return nil, nil, nil
	}

	indices, err := climate.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	series, err := indices.Join(years)
	if err != nil {
		return nil, nil, err
	}
	return indices.Names, series, nil
}

func (p *Pipeline) write(r *Report) error {
	cfg := p.Config
	if err := output.CreateContoursGeoJSON(r.Shorelines, r.Paths.Contours); err != nil {
		return err
	}
	if err := output.CreateStatsGeoJSON(r.Stats, r.Paths.Stats); err != nil {
		return err
	}
	if err := output.CreateSummaryCSV(r.Stats, r.Paths.Summary, r.Paths.Climate); err != nil {
		return err
	}
	if cfg.Output.Image {
		if err := output.CreateOverviewImage(r.Shorelines, r.Stats, r.Paths.Image); err != nil {
			return err
		}
	}
	if cfg.Output.Archive {
		if err := output.CreateArchive(r.Paths.VectorsDir, r.Paths.Archive); err != nil {
			return err
		}
	}
	return nil
}

// DegenerateCount returns how many time regressions could not be fitted.
func (r *Report) DegenerateCount() int {
	n := 0
	for _, p := range r.Stats.Points {
		if p.Time.Status != regress.StatusOK {
			n++
		}
	}
	return n
}
