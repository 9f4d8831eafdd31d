package ocean

import (
	"context"
	"math"
	"testing"

	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maskFrom(rows ...string) raster.Mask {
	m := raster.NewMask(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			m.Set(x, y, c == '#')
		}
	}
	return m
}

func TestMaskOceanAllWater(t *testing.T) {
	cfg := properties.DefaultConfig().Classifier
	water := raster.FullMask(6, 4, true)

	ocean := MaskOcean(water, cfg)
	assert.True(t, ocean.Equal(water))
}

func TestMaskOceanExcludesIsolatedSpeck(t *testing.T) {
	cfg := properties.DefaultConfig().Classifier
	water := maskFrom(
		"###.......",
		"###.......",
		"###.......",
		"###.......",
		"###.....#.",
		"###.......",
	)

	ocean := MaskOcean(water, cfg)

	assert.False(t, ocean.At(8, 4), "speck must be excluded")
	assert.False(t, ocean.At(7, 4), "speck neighbourhood must stay land")
	assert.True(t, ocean.At(3, 0), "ocean grows by one pixel")
	assert.False(t, ocean.At(4, 0))
	assert.Equal(t, 4*6, ocean.Count())
}

func TestLargestRegionConnectivity(t *testing.T) {
	m := maskFrom(
		"#..",
		".#.",
		"..#",
		"##.",
	)

	four := LargestRegion(m, 1)
	assert.Equal(t, 2, four.Count(), "4-connectivity keeps the bottom pair")
	assert.True(t, four.At(0, 3))

	eight := LargestRegion(m, 2)
	assert.Equal(t, 5, eight.Count(), "8-connectivity joins the diagonal")

	assert.Equal(t, 0, LargestRegion(raster.NewMask(3, 3), 1).Count())
}

func TestLargestRegionTieGoesToFirst(t *testing.T) {
	m := maskFrom(
		"##..##",
	)
	region := LargestRegion(m, 1)
	assert.True(t, region.At(0, 0))
	assert.False(t, region.At(4, 0))
}

func TestDilateDisk(t *testing.T) {
	m := raster.NewMask(11, 11)
	m.Set(5, 5, true)

	// lattice points with dx²+dy² <= 4
	assert.Equal(t, 13, Dilate(m, Disk(2)).Count())
	assert.Equal(t, 5, Dilate(m, Disk(1)).Count())
	assert.Equal(t, 9, Dilate(m, Square(3)).Count())
	assert.True(t, Dilate(m, Disk(0)).Equal(m))
}

func TestSquaredDistance(t *testing.T) {
	m := maskFrom(
		"#....",
		".....",
	)
	d := SquaredDistance(m)
	assert.Equal(t, 0.0, d[0])
	assert.Equal(t, 16.0, d[4])
	assert.Equal(t, 17.0, d[9])
}

func TestErodeAndOpen(t *testing.T) {
	full := raster.FullMask(5, 5, true)
	assert.True(t, Erode(full, Disk(1)).Equal(full), "border must not erode")

	m := maskFrom(
		"#.......",
		"....###.",
		"....###.",
		"....###.",
		"........",
	)
	opened := Open(m, Disk(1))
	assert.False(t, opened.At(0, 0), "speck removed")
	assert.True(t, opened.At(5, 2), "block centre kept")
	assert.True(t, opened.At(5, 1))
}

// synthetic coast: ocean on the left, land on the right, a small lake
func coastStack(t *testing.T, years []int, emptyYear int) *raster.Stack {
	t.Helper()
	grid := raster.Grid{Width: 20, Height: 20, Transform: raster.GeoTransform{0, 30, 0, 600, 0, -30}}
	s := raster.NewStack(grid, years)

	layers := make([][]float64, len(years))
	for i, year := range years {
		layer := make([]float64, grid.Size())
		for y := 0; y < grid.Height; y++ {
			for x := 0; x < grid.Width; x++ {
				v := -0.5
				if x < 10 || (x >= 15 && x <= 16 && y >= 2 && y <= 3) {
					v = 0.5
				}
				if year == emptyYear {
					v = -0.5
				}
				layer[grid.Index(x, y)] = v
			}
		}
		layers[i] = layer
	}
	require.NoError(t, s.AddBand(raster.BandIndex, layers))
	return s
}

func classifierConfig() properties.Config {
	cfg := properties.DefaultConfig()
	cfg.Classifier.OpeningRadius = 1
	cfg.Classifier.BufferRadius = 3
	cfg.Workers = 2
	return cfg
}

func TestClassify(t *testing.T) {
	stack := coastStack(t, []int{2000, 2001, 2002}, 2002)
	grid := stack.Grid
	studyArea := raster.FullMask(grid.Width, grid.Height, true)
	estuary := raster.NewMask(grid.Width, grid.Height)

	cls, err := Classify(context.Background(), stack, studyArea, estuary, classifierConfig())
	require.NoError(t, err)

	assert.Equal(t, []int{2000, 2001}, cls.Years, "year without water is dropped")
	assert.Len(t, cls.Masked, 2)

	assert.True(t, cls.AllTimeOcean.At(10, 10))
	assert.False(t, cls.AllTimeOcean.At(11, 10))
	assert.False(t, cls.AllTimeOcean.At(15, 2), "lake is not ocean")

	assert.True(t, cls.CoastalBuffer.At(8, 10))
	assert.True(t, cls.CoastalBuffer.At(13, 10))
	assert.False(t, cls.CoastalBuffer.At(0, 10))
	assert.False(t, cls.CoastalBuffer.At(15, 10))

	masked := cls.Masked[2000]
	assert.Equal(t, 0.5, masked[grid.Index(9, 10)])
	assert.Equal(t, -0.5, masked[grid.Index(10, 10)])
	assert.True(t, math.IsNaN(masked[grid.Index(0, 10)]), "open water far from the coast is masked")
	assert.True(t, math.IsNaN(masked[grid.Index(15, 2)]), "lake is masked")
}

func TestClassifyEstuaryAndStudyArea(t *testing.T) {
	stack := coastStack(t, []int{2000, 2001}, 0)
	grid := stack.Grid

	studyArea := raster.FullMask(grid.Width, grid.Height, true)
	for x := 0; x < grid.Width; x++ {
		studyArea.Set(x, 19, false)
	}
	estuary := raster.NewMask(grid.Width, grid.Height)
	for y := 0; y <= 4; y++ {
		for x := 0; x <= 12; x++ {
			estuary.Set(x, y, true)
		}
	}

	cls, err := Classify(context.Background(), stack, studyArea, estuary, classifierConfig())
	require.NoError(t, err)

	masked := cls.Masked[2001]
	assert.True(t, math.IsNaN(masked[grid.Index(9, 2)]), "estuary pixels are excluded")
	assert.True(t, math.IsNaN(masked[grid.Index(9, 19)]), "pixels outside the study area are excluded")
	assert.False(t, math.IsNaN(masked[grid.Index(9, 10)]))
}

func TestClassifyErrors(t *testing.T) {
	stack := coastStack(t, []int{2000}, 0)
	grid := stack.Grid
	cfg := classifierConfig()

	_, err := Classify(context.Background(), stack, raster.NewMask(grid.Width, grid.Height), raster.NewMask(grid.Width, grid.Height), cfg)
	assert.ErrorIs(t, err, ErrEmptyStudyArea)

	_, err = Classify(context.Background(), stack, raster.FullMask(3, 3, true), raster.NewMask(grid.Width, grid.Height), cfg)
	assert.ErrorIs(t, err, raster.ErrMisaligned)

	dry := coastStack(t, []int{2000}, 2000)
	_, err = Classify(context.Background(), dry, raster.FullMask(grid.Width, grid.Height, true), raster.NewMask(grid.Width, grid.Height), cfg)
	assert.ErrorIs(t, err, ErrNoWater)
}
