package raster

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Band names shared by the loader and the compositor.
const (
	BandIndex        = "index"
	BandStdev        = "stdev"
	BandCount        = "count"
	BandTide         = "tide"
	BandGapfillIndex = "gapfill_index"
	BandGapfillTide  = "gapfill_tide"
)

var ErrMisaligned = errors.New("raster layers are misaligned")

// Stack is a set of named bands sharing one grid and one year axis.
// Each band holds one row-major layer per year; NaN marks no-data.
type Stack struct {
	Grid  Grid
	Years []int
	bands map[string][][]float64
}

func NewStack(grid Grid, years []int) *Stack {
	return &Stack{
		Grid:  grid,
		Years: slices.Clone(years),
		bands: make(map[string][][]float64),
	}
}

// AddBand registers a band. Layer count and layer sizes must match the
// stack's year axis and grid.
func (s *Stack) AddBand(name string, layers [][]float64) error {
	if len(layers) != len(s.Years) {
		return fmt.Errorf("%w: band %s has %d years, stack has %d", ErrMisaligned, name, len(layers), len(s.Years))
	}
	for i, layer := range layers {
		if len(layer) != s.Grid.Size() {
			return fmt.Errorf("%w: band %s year %d has %d pixels, grid has %d", ErrMisaligned, name, s.Years[i], len(layer), s.Grid.Size())
		}
	}
	s.bands[name] = layers
	return nil
}

func (s *Stack) Band(name string) ([][]float64, bool) {
	b, ok := s.bands[name]
	return b, ok
}

func (s *Stack) BandNames() []string {
	names := make([]string, 0, len(s.bands))
	for name := range s.bands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Stack) YearIndex(year int) (int, bool) {
	i := slices.Index(s.Years, year)
	return i, i >= 0
}

// Layer returns a band's layer for a year.
func (s *Stack) Layer(name string, year int) ([]float64, error) {
	band, ok := s.bands[name]
	if !ok {
		return nil, fmt.Errorf("band %s not found", name)
	}
	i, ok := s.YearIndex(year)
	if !ok {
		return nil, fmt.Errorf("year %d not found in band %s", year, name)
	}
	return band[i], nil
}

// Sample interpolates a band bilinearly at map coordinates.
func (s *Stack) Sample(name string, year int, x, y float64) float64 {
	layer, err := s.Layer(name, year)
	if err != nil {
		return math.NaN()
	}
	return s.Grid.Interp(layer, x, y)
}

// Clone copies the stack, layers included.
func (s *Stack) Clone() *Stack {
	c := NewStack(s.Grid, s.Years)
	for name, band := range s.bands {
		layers := make([][]float64, len(band))
		for i, layer := range band {
			layers[i] = slices.Clone(layer)
		}
		c.bands[name] = layers
	}
	return c
}

// NaNLayer returns a layer filled with no-data.
func NaNLayer(size int) []float64 {
	layer := make([]float64, size)
	for i := range layer {
		layer[i] = math.NaN()
	}
	return layer
}
