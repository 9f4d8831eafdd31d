// Package contour extracts sub-pixel iso-lines from raster layers.
package contour

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/coastal-guardian/shoreline-stats/internal/raster"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// Shoreline is the iso-line of one year.
type Shoreline struct {
	Year int
	Line orb.MultiLineString
}

// edge identifies a cell side: the horizontal side right of pixel (col,row)
// or the vertical side below it.
type edge struct {
	col, row   int
	horizontal bool
}

type segment struct {
	a, b edge
}

// Extract traces the level iso-line of a layer with marching squares. Cells
// with a NaN corner produce nothing. Lines with fewer than minVertices
// vertices are dropped. Coordinates are map coordinates, vertices lie on
// lines joining pixel centres.
func Extract(grid raster.Grid, layer []float64, level float64, minVertices int) orb.MultiLineString {
	segments := traceSegments(grid, layer, level)
	chains := joinSegments(segments)

	var out orb.MultiLineString
	for _, chain := range chains {
		if len(chain) < minVertices {
			continue
		}
		line := make(orb.LineString, len(chain))
		for i, e := range chain {
			col, row := crossing(grid, layer, level, e)
			x, y := grid.ToMap(col, row)
			line[i] = orb.Point{x, y}
		}
		out = append(out, line)
	}
	return out
}

// ExtractAll runs Extract for each year in parallel and returns the
// non-empty shorelines sorted by year.
func ExtractAll(ctx context.Context, grid raster.Grid, layers map[int][]float64, level float64, minVertices, workers int) ([]Shoreline, error) {
	var (
		mu  sync.Mutex
		out []Shoreline
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for year, layer := range layers {
		year, layer := year, layer
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			line := Extract(grid, layer, level, minVertices)
			if len(line) == 0 {
				return nil
			}
			mu.Lock()
			out = append(out, Shoreline{Year: year, Line: line})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b Shoreline) int { return a.Year - b.Year })
	return out, nil
}

func crossing(grid raster.Grid, layer []float64, level float64, e edge) (float64, float64) {
	v0 := layer[grid.Index(e.col, e.row)]
	var v1 float64
	if e.horizontal {
		v1 = layer[grid.Index(e.col+1, e.row)]
	} else {
		v1 = layer[grid.Index(e.col, e.row+1)]
	}
	t := 0.5
	if v1 != v0 {
		t = (level - v0) / (v1 - v0)
	}
	if e.horizontal {
		return float64(e.col) + t, float64(e.row)
	}
	return float64(e.col), float64(e.row) + t
}

func traceSegments(grid raster.Grid, layer []float64, level float64) []segment {
	var segments []segment
	for row := 0; row < grid.Height-1; row++ {
		for col := 0; col < grid.Width-1; col++ {
			tl := layer[grid.Index(col, row)]
			tr := layer[grid.Index(col+1, row)]
			br := layer[grid.Index(col+1, row+1)]
			bl := layer[grid.Index(col, row+1)]
			if math.IsNaN(tl) || math.IsNaN(tr) || math.IsNaN(br) || math.IsNaN(bl) {
				continue
			}

			top := edge{col, row, true}
			bottom := edge{col, row + 1, true}
			left := edge{col, row, false}
			right := edge{col + 1, row, false}

			c := 0
			if tl > level {
				c |= 1
			}
			if tr > level {
				c |= 2
			}
			if br > level {
				c |= 4
			}
			if bl > level {
				c |= 8
			}

			switch c {
			case 0, 15:
			case 1, 14:
				segments = append(segments, segment{top, left})
			case 2, 13:
				segments = append(segments, segment{top, right})
			case 3, 12:
				segments = append(segments, segment{left, right})
			case 4, 11:
				segments = append(segments, segment{right, bottom})
			case 6, 9:
				segments = append(segments, segment{top, bottom})
			case 7, 8:
				segments = append(segments, segment{left, bottom})
			case 5, 10:
				// saddle: the cell centre decides which corners connect
				centre := (tl + tr + br + bl) / 4
				tlConnectsBr := (c == 5) == (centre > level)
				if tlConnectsBr {
					segments = append(segments, segment{top, right}, segment{left, bottom})
				} else {
					segments = append(segments, segment{top, left}, segment{right, bottom})
				}
			}
		}
	}
	return segments
}

// joinSegments links segments sharing an edge into chains of edges. Open
// chains come first, closed rings repeat their first edge at the end.
func joinSegments(segments []segment) [][]edge {
	touching := make(map[edge][]int, 2*len(segments))
	for i, s := range segments {
		touching[s.a] = append(touching[s.a], i)
		touching[s.b] = append(touching[s.b], i)
	}

	used := make([]bool, len(segments))

	other := func(i int, e edge) edge {
		if segments[i].a == e {
			return segments[i].b
		}
		return segments[i].a
	}
	next := func(e edge) (int, bool) {
		for _, j := range touching[e] {
			if !used[j] {
				return j, true
			}
		}
		return 0, false
	}
	walk := func(start edge) []edge {
		chain := []edge{start}
		cur := start
		for {
			i, ok := next(cur)
			if !ok {
				return chain
			}
			used[i] = true
			cur = other(i, cur)
			chain = append(chain, cur)
		}
	}

	var chains [][]edge
	// open chains start at an edge touched by a single segment
	for i, s := range segments {
		if used[i] {
			continue
		}
		for _, e := range []edge{s.a, s.b} {
			if len(touching[e]) == 1 {
				chains = append(chains, walk(e))
				break
			}
		}
	}
	for i, s := range segments {
		if used[i] {
			continue
		}
		chains = append(chains, walk(s.a))
	}
	return chains
}
