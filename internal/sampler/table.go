package sampler

import (
	"fmt"
	"math"
	"slices"
)

// Table is a points × years matrix keyed explicitly by year.
type Table struct {
	Years  []int
	Values [][]float64
}

func NewTable(rows int, years []int) *Table {
	t := &Table{Years: slices.Clone(years), Values: make([][]float64, rows)}
	for i := range t.Values {
		t.Values[i] = make([]float64, len(years))
		for j := range t.Values[i] {
			t.Values[i][j] = math.NaN()
		}
	}
	return t
}

func (t *Table) Column(year int) (int, bool) {
	i := slices.Index(t.Years, year)
	return i, i >= 0
}

// Row returns a copy of a point's series, aligned with Years.
func (t *Table) Row(i int) []float64 {
	return slices.Clone(t.Values[i])
}

// Rebase subtracts the reference year's column from every column, leaving
// the reference column exactly zero where it was defined.
func (t *Table) Rebase(year int) error {
	ref, ok := t.Column(year)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoReference, year)
	}
	for _, row := range t.Values {
		base := row[ref]
		for j := range row {
			row[j] -= base
		}
		if !math.IsNaN(base) {
			row[ref] = 0
		}
	}
	return nil
}
