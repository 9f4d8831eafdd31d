package output

import (
	"archive/zip"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/coastal-guardian/shoreline-stats/internal/contour"
	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/regress"
	"github.com/coastal-guardian/shoreline-stats/internal/sampler"
	"github.com/coastal-guardian/shoreline-stats/internal/stats"
	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *stats.Report {
	ok := regress.Result{Slope: -1.5, Intercept: 3000, PValue: 0.01, Outliers: "2003", N: 4, Status: regress.StatusOK}
	bad := regress.Result{Slope: math.NaN(), Intercept: math.NaN(), PValue: math.NaN(), N: 1, Status: regress.StatusInsufficientData}
	return &stats.Report{
		Years:        []int{2000, 2001},
		ClimateNames: []string{"SOI"},
		Points: []stats.PointStats{
			{
				Point:     sampler.SamplePoint{ID: 0, Point: orb.Point{10, 20}},
				Distances: []float64{0, -1.5},
				Time:      ok,
				Tide:      ok,
				Climate:   map[string]regress.Result{"SOI": ok},
			},
			{
				Point:      sampler.SamplePoint{ID: 1, Offset: 30, Point: orb.Point{40, 20}},
				Distances:  []float64{0, math.NaN()},
				Time:       bad,
				Tide:       bad,
				Climate:    map[string]regress.Result{"SOI": bad},
				Breakpoint: "2001",
			},
		},
	}
}

func testShorelines() []contour.Shoreline {
	return []contour.Shoreline{
		{Year: 2000, Line: orb.MultiLineString{{{0, 0}, {50, 40}}}},
		{Year: 2001, Line: orb.MultiLineString{{{0, 5}, {50, 45}}}},
	}
}

func TestNewPaths(t *testing.T) {
	t.Setenv("ROOT_PATH", "")
	cfg := properties.DefaultConfig()

	p := NewPaths("S01", cfg)
	assert.Equal(t, filepath.Join("output_data", "S01", "vectors", "S01_contours_mndwi_0.00.geojson"), p.Contours)
	assert.Equal(t, filepath.Join("output_data", "S01", "vectors", "S01_stats_mndwi_0.0.geojson"), p.Stats)
	assert.Equal(t, filepath.Join("output_data", "outputs_S01.zip"), p.Archive)
}

func TestCreateStatsGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors", "stats.geojson")
	require.NoError(t, CreateStatsGeoJSON(testReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0].Properties
	assert.Equal(t, -1.5, first["rate_time"])
	assert.Equal(t, 0.01, first["sig_SOI"])
	assert.Equal(t, "2003", first["outl_tide"])
	assert.Equal(t, -1.5, first["2001"])
	assert.NotContains(t, first, "breakpoint")

	second := fc.Features[1].Properties
	assert.Nil(t, second["rate_time"], "NaN is written as null")
	assert.Nil(t, second["2001"])
	assert.Equal(t, "2001", second["breakpoint"])
	assert.Equal(t, orb.Point{40, 20}, fc.Features[1].Geometry)
}

func TestCreateContoursGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contours.geojson")
	require.NoError(t, CreateContoursGeoJSON(testShorelines(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "2001", fc.Features[1].Properties["year"])
}

func TestCreateSummaryCSV(t *testing.T) {
	dir := t.TempDir()
	summaryPath := filepath.Join(dir, "summary.csv")
	climatePath := filepath.Join(dir, "climate.csv")
	require.NoError(t, CreateSummaryCSV(testReport(), summaryPath, climatePath))

	file, err := os.Open(summaryPath)
	require.NoError(t, err)
	defer file.Close()
	var rows []SummaryRow
	require.NoError(t, gocsv.UnmarshalFile(file, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, -1.5, rows[0].RateTime)
	assert.Equal(t, regress.StatusInsufficientData, rows[1].StatusTime)
	assert.Equal(t, "2001", rows[1].Breakpoint)

	climate, err := os.Open(climatePath)
	require.NoError(t, err)
	defer climate.Close()
	var climateRows []ClimateRow
	require.NoError(t, gocsv.UnmarshalFile(climate, &climateRows))
	require.Len(t, climateRows, 2)
	assert.Equal(t, "SOI", climateRows[0].Index)
}

func TestRateClass(t *testing.T) {
	assert.Equal(t, "erosion", RateClass(regress.Result{Slope: -1, PValue: 0.01, Status: regress.StatusOK}))
	assert.Equal(t, "accretion", RateClass(regress.Result{Slope: 2, PValue: 0.001, Status: regress.StatusOK}))
	assert.Equal(t, "stable", RateClass(regress.Result{Slope: 2, PValue: 0.4, Status: regress.StatusOK}))
	assert.Equal(t, "unknown", RateClass(regress.Result{Status: regress.StatusConstantX}))
}

func TestShorelineColor(t *testing.T) {
	assert.Equal(t, newestShoreline, shorelineColor(0, 1))

	first, last := shorelineColor(0, 5), shorelineColor(4, 5)
	assert.InDelta(t, 0, first.DistanceLab(oldestShoreline), 1e-6)
	assert.InDelta(t, 0, last.DistanceLab(newestShoreline), 1e-6)

	l0, _, _ := first.Lab()
	l2, _, _ := shorelineColor(2, 5).Lab()
	l4, _, _ := last.Lab()
	assert.Greater(t, l0, l2)
	assert.Greater(t, l2, l4)
}

func TestCreateOverviewImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overview.png")
	require.NoError(t, CreateOverviewImage(testShorelines(), testReport(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, CreateOverviewImage(nil, nil, path))
}

func TestCreateArchive(t *testing.T) {
	dir := t.TempDir()
	vectors := filepath.Join(dir, "vectors")
	require.NoError(t, os.MkdirAll(filepath.Join(vectors, "sub"), os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(vectors, "a.geojson"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(vectors, "sub", "b.csv"), []byte("id\n"), 0o644))

	path := filepath.Join(dir, "outputs.zip")
	require.NoError(t, CreateArchive(vectors, path))

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"a.geojson", "sub/b.csv"}, names)
}
