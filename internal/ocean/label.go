package ocean

import (
	"github.com/coastal-guardian/shoreline-stats/internal/raster"
)

var (
	neighbours4 = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	neighbours8 = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

// Label assigns a component id (starting at 1, in scan order) to every true
// pixel. Connectivity 1 joins edge neighbours, 2 also joins diagonals.
// It returns the labels and the size of each component, indexed by id.
func Label(m raster.Mask, connectivity int) ([]int, []int) {
	directions := neighbours4
	if connectivity >= 2 {
		directions = neighbours8
	}

	labels := make([]int, len(m.Data))
	sizes := []int{0}
	stack := make([][2]int, 0, 64)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.At(x, y) || labels[y*m.Width+x] != 0 {
				continue
			}

			id := len(sizes)
			size := 0
			labels[y*m.Width+x] = id
			stack = append(stack[:0], [2]int{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				size++
				for _, d := range directions {
					nx, ny := p[0]+d[0], p[1]+d[1]
					if !m.At(nx, ny) || labels[ny*m.Width+nx] != 0 {
						continue
					}
					labels[ny*m.Width+nx] = id
					stack = append(stack, [2]int{nx, ny})
				}
			}
			sizes = append(sizes, size)
		}
	}

	return labels, sizes
}

// LargestRegion keeps the largest connected component of m. Ties go to the
// component found first in scan order. An empty mask stays empty.
func LargestRegion(m raster.Mask, connectivity int) raster.Mask {
	labels, sizes := Label(m, connectivity)

	best := 0
	for id := 1; id < len(sizes); id++ {
		if sizes[id] > sizes[best] {
			best = id
		}
	}

	out := raster.NewMask(m.Width, m.Height)
	if best == 0 {
		return out
	}
	for i, l := range labels {
		out.Data[i] = l == best
	}
	return out
}
