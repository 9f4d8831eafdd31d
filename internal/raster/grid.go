package raster

import (
	"math"

	"github.com/paulmach/orb"
)

// GeoTransform is the GDAL affine transform:
// x = t[0] + col*t[1] + row*t[2], y = t[3] + col*t[4] + row*t[5].
type GeoTransform [6]float64

type Grid struct {
	Width      int
	Height     int
	Transform  GeoTransform
	Projection string
}

func (g Grid) Size() int {
	return g.Width * g.Height
}

func (g Grid) Index(col, row int) int {
	return row*g.Width + col
}

func (g Grid) Contains(col, row int) bool {
	return col >= 0 && col < g.Width && row >= 0 && row < g.Height
}

// Center returns the map coordinates of the centre of a pixel.
func (g Grid) Center(col, row int) (float64, float64) {
	return g.ToMap(float64(col), float64(row))
}

// ToMap converts fractional pixel coordinates, where integers address pixel
// centres, to map coordinates.
func (g Grid) ToMap(col, row float64) (float64, float64) {
	t := g.Transform
	c, r := col+0.5, row+0.5
	return t[0] + c*t[1] + r*t[2], t[3] + c*t[4] + r*t[5]
}

// ToPixel is the inverse of ToMap.
func (g Grid) ToPixel(x, y float64) (float64, float64) {
	t := g.Transform
	det := t[1]*t[5] - t[2]*t[4]
	if det == 0 {
		return math.NaN(), math.NaN()
	}
	dx, dy := x-t[0], y-t[3]
	col := (t[5]*dx - t[2]*dy) / det
	row := (-t[4]*dx + t[1]*dy) / det
	return col - 0.5, row - 0.5
}

// Bound returns the extent covered by the grid's pixels.
func (g Grid) Bound() orb.Bound {
	b := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, corner := range [][2]float64{{-0.5, -0.5}, {float64(g.Width) - 0.5, -0.5}, {-0.5, float64(g.Height) - 0.5}, {float64(g.Width) - 0.5, float64(g.Height) - 0.5}} {
		x, y := g.ToMap(corner[0], corner[1])
		b = b.Extend(orb.Point{x, y})
	}
	return b
}

// CellBound returns the extent of a single pixel.
func (g Grid) CellBound(col, row int) orb.Bound {
	x0, y0 := g.ToMap(float64(col)-0.5, float64(row)-0.5)
	x1, y1 := g.ToMap(float64(col)+0.5, float64(row)+0.5)
	return orb.Bound{Min: orb.Point{x0, y0}, Max: orb.Point{x0, y0}}.Extend(orb.Point{x1, y1})
}

// Aligned reports whether both grids address the same pixels.
func (g Grid) Aligned(o Grid) bool {
	if g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for i := range g.Transform {
		if math.Abs(g.Transform[i]-o.Transform[i]) > 1e-6 {
			return false
		}
	}
	return true
}

// Bilinear samples a layer at fractional pixel coordinates. Samples outside
// the pixel-centre hull, or touching a NaN, are NaN.
func (g Grid) Bilinear(layer []float64, col, row float64) float64 {
	if math.IsNaN(col) || math.IsNaN(row) {
		return math.NaN()
	}
	maxCol, maxRow := float64(g.Width-1), float64(g.Height-1)
	if col < 0 || row < 0 || col > maxCol || row > maxRow {
		return math.NaN()
	}

	c0, r0 := int(math.Floor(col)), int(math.Floor(row))
	c1, r1 := c0+1, r0+1
	if c1 > g.Width-1 {
		c1 = c0
	}
	if r1 > g.Height-1 {
		r1 = r0
	}
	fc, fr := col-float64(c0), row-float64(r0)

	v00 := layer[g.Index(c0, r0)]
	v10 := layer[g.Index(c1, r0)]
	v01 := layer[g.Index(c0, r1)]
	v11 := layer[g.Index(c1, r1)]

	top := v00*(1-fc) + v10*fc
	bottom := v01*(1-fc) + v11*fc
	// neighbours with zero weight are ignored, even when NaN
	if fc == 0 {
		top, bottom = v00, v01
	}
	if fr == 0 {
		return top
	}
	return top*(1-fr) + bottom*fr
}

// Interp samples a layer at map coordinates.
func (g Grid) Interp(layer []float64, x, y float64) float64 {
	col, row := g.ToPixel(x, y)
	return g.Bilinear(layer, col, row)
}
