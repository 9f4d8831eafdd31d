package ocean

import (
	"github.com/coastal-guardian/shoreline-stats/internal/raster"
)

// Element is a flat structuring element.
type Element struct {
	radius int
	square bool
}

// Disk covers the offsets with dx²+dy² <= r².
func Disk(radius int) Element {
	return Element{radius: radius}
}

// Square covers a size×size block; size is odd.
func Square(size int) Element {
	return Element{radius: size / 2, square: true}
}

// Dilate grows the true region of m by the element. Pixels outside the grid
// are false.
func Dilate(m raster.Mask, el Element) raster.Mask {
	if el.radius <= 0 || m.Count() == 0 {
		return m.Clone()
	}
	if el.square {
		return dilateSquare(m, el.radius)
	}
	return dilateDisk(m, el.radius)
}

// Erode shrinks the true region of m by the element. Pixels outside the
// grid are true, so the border does not erode.
func Erode(m raster.Mask, el Element) raster.Mask {
	return Dilate(m.Not(), el).Not()
}

// Open removes true features smaller than the element.
func Open(m raster.Mask, el Element) raster.Mask {
	return Dilate(Erode(m, el), el)
}

func dilateSquare(m raster.Mask, r int) raster.Mask {
	rows := raster.NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.At(x, y) {
				continue
			}
			for dx := -r; dx <= r; dx++ {
				if x+dx >= 0 && x+dx < m.Width {
					rows.Set(x+dx, y, true)
				}
			}
		}
	}

	out := raster.NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !rows.At(x, y) {
				continue
			}
			for dy := -r; dy <= r; dy++ {
				if y+dy >= 0 && y+dy < m.Height {
					out.Set(x, y+dy, true)
				}
			}
		}
	}
	return out
}

func dilateDisk(m raster.Mask, r int) raster.Mask {
	dist := SquaredDistance(m)
	limit := float64(r * r)
	out := raster.NewMask(m.Width, m.Height)
	for i, d := range dist {
		out.Data[i] = d <= limit
	}
	return out
}

// far stands in for infinity; it keeps the parabola intersections finite.
const far = 1e20

// SquaredDistance returns, for every pixel, the squared Euclidean distance
// in pixels to the nearest true pixel of m (Felzenszwalb & Huttenlocher).
func SquaredDistance(m raster.Mask) []float64 {
	w, h := m.Width, m.Height
	n := max(w, h)
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	out := make([]float64, w*h)
	for i, b := range m.Data {
		if b {
			out[i] = 0
		} else {
			out[i] = far
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			f[y] = out[y*w+x]
		}
		distance1D(f[:h], d[:h], v, z)
		for y := 0; y < h; y++ {
			out[y*w+x] = d[y]
		}
	}

	for y := 0; y < h; y++ {
		copy(f[:w], out[y*w:(y+1)*w])
		distance1D(f[:w], d[:w], v, z)
		copy(out[y*w:(y+1)*w], d[:w])
	}

	return out
}

func distance1D(f, d []float64, v []int, z []float64) {
	n := len(f)
	if n == 0 {
		return
	}
	k := 0
	v[0] = 0
	z[0] = -far
	z[1] = far
	for q := 1; q < n; q++ {
		fq := f[q] + float64(q*q)
		s := (fq - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		for s <= z[k] {
			k--
			s = (fq - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = far
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}
