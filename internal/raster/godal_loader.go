package raster

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/coastal-guardian/shoreline-stats/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// Loader loads the yearly raster stack of a study area.
type Loader interface {
	Load(studyArea, waterIndex string) (*Stack, error)
}

// GodalLoader reads GeoTIFFs through GDAL.
type GodalLoader struct {
	Dir string
}

func (l GodalLoader) Load(studyArea, waterIndex string) (*Stack, error) {
	series, err := DiscoverSeries(l.Dir, studyArea, waterIndex)
	if err != nil {
		return nil, err
	}

	utils.RegisterDrivers()

	var stack *Stack
	bands := []string{BandIndex, BandGapfillIndex, BandGapfillTide, BandStdev, BandTide, BandCount}
	progressBar := progressbar.Default(int64(len(bands)*len(series.Years)), "Loading rasters")

	for _, band := range bands {
		layers := make([][]float64, 0, len(series.Years))
		for _, path := range series.Files[band] {
			grid, layer, err := ReadGeoTIFF(path)
			if err != nil {
				return nil, err
			}
			if stack == nil {
				stack = NewStack(grid, series.Years)
			} else if !stack.Grid.Aligned(grid) {
				return nil, fmt.Errorf("%w: %s does not share the grid of the stack", ErrMisaligned, path)
			}
			layers = append(layers, layer)
			progressBar.Add(1)
		}
		if err := stack.AddBand(band, layers); err != nil {
			return nil, err
		}
	}
	progressBar.Finish()

	return stack, nil
}

// ReadGeoTIFF reads the first band of a raster; no-data values become NaN.
func ReadGeoTIFF(path string) (Grid, []float64, error) {
	var (
		grid  Grid
		layer []float64
		err   error
	)
	utils.ExecuteWithMutex(func() {
		grid, layer, err = readGeoTIFF(path)
	})
	return grid, layer, err
}

func readGeoTIFF(path string) (Grid, []float64, error) {
	dataset, err := godal.Open(path)
	if err != nil {
		return Grid{}, nil, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	defer dataset.Close()

	geoTransform, err := dataset.GeoTransform()
	if err != nil {
		return Grid{}, nil, fmt.Errorf("failed to get GeoTransform of %s: %w", path, err)
	}

	structure := dataset.Structure()
	grid := Grid{
		Width:      structure.SizeX,
		Height:     structure.SizeY,
		Transform:  GeoTransform(geoTransform),
		Projection: dataset.Projection(),
	}

	bands := dataset.Bands()
	if len(bands) == 0 {
		return Grid{}, nil, fmt.Errorf("raster %s has no bands", path)
	}

	data := make([]float64, grid.Size())
	if err := bands[0].Read(0, 0, data, grid.Width, grid.Height); err != nil {
		return Grid{}, nil, fmt.Errorf("failed to read raster data of %s: %w", path, err)
	}

	if nodata, ok := bands[0].NoData(); ok {
		for i, v := range data {
			if v == nodata {
				data[i] = math.NaN()
			}
		}
	}

	return grid, data, nil
}
