// Package climate loads yearly climate indices used as explanatory
// variables for shoreline change.
package climate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

const yearColumn = "year"

var (
	ErrMissingYear   = errors.New("climate index has no value for year")
	ErrNoYearColumn  = errors.New("climate table has no year column")
	ErrDuplicateYear = errors.New("climate table repeats a year")
)

// Indices maps index name to yearly values.
type Indices struct {
	Names  []string
	values map[string]map[int]float64
}

func LoadFile(path string) (*Indices, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open climate indices %s: %w", path, err)
	}
	defer file.Close()

	return Load(file)
}

// Load reads a table with a year column followed by one column per index.
// Index columns keep their file order.
func Load(r io.Reader) (*Indices, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	header, _, _ := strings.Cut(string(data), "\n")
	columns := strings.Split(strings.TrimSpace(header), ",")
	if !slices.Contains(columns, yearColumn) {
		return nil, ErrNoYearColumn
	}

	rows, err := gocsv.CSVToMaps(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse climate indices: %w", err)
	}

	ind := &Indices{values: map[string]map[int]float64{}}
	for _, c := range columns {
		if c != yearColumn && c != "" {
			ind.Names = append(ind.Names, c)
			ind.values[c] = map[int]float64{}
		}
	}

	for i, row := range rows {
		year, err := strconv.Atoi(strings.TrimSpace(row[yearColumn]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid year %q: %w", i+1, row[yearColumn], err)
		}
		for _, name := range ind.Names {
			if _, dup := ind.values[name][year]; dup {
				return nil, fmt.Errorf("%w: %d", ErrDuplicateYear, year)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[name]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s value %q: %w", i+1, name, row[name], err)
			}
			ind.values[name][year] = v
		}
	}
	return ind, nil
}

// Join returns, per index, the values aligned with years. Every year must
// be present for every index.
func (ind *Indices) Join(years []int) (map[string][]float64, error) {
	out := make(map[string][]float64, len(ind.Names))
	for _, name := range ind.Names {
		series := make([]float64, len(years))
		for i, year := range years {
			v, ok := ind.values[name][year]
			if !ok {
				return nil, fmt.Errorf("%w: %s %d", ErrMissingYear, name, year)
			}
			series[i] = v
		}
		out[name] = series
	}
	return out, nil
}
