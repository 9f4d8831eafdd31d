package sampler

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Interpolate returns the point at distance d along the concatenated parts
// of a multi-line. Distances past the end clamp to the last vertex.
func Interpolate(ml orb.MultiLineString, d float64) orb.Point {
	var last orb.Point
	remaining := math.Max(d, 0)
	for _, ls := range ml {
		for i := 1; i < len(ls); i++ {
			a, b := ls[i-1], ls[i]
			seg := planar.Distance(a, b)
			if remaining <= seg {
				if seg == 0 {
					return a
				}
				t := remaining / seg
				return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
			}
			remaining -= seg
			last = b
		}
		if len(ls) == 1 {
			last = ls[0]
		}
	}
	return last
}

// Nearest returns the point of ml closest to p, projecting onto segments.
func Nearest(ml orb.MultiLineString, p orb.Point) (orb.Point, float64) {
	best := orb.Point{math.NaN(), math.NaN()}
	bestDist := math.Inf(1)
	for _, ls := range ml {
		if len(ls) == 1 {
			if d := planar.Distance(ls[0], p); d < bestDist {
				best, bestDist = ls[0], d
			}
			continue
		}
		for i := 1; i < len(ls); i++ {
			q := project(ls[i-1], ls[i], p)
			if d := planar.Distance(q, p); d < bestDist {
				best, bestDist = q, d
			}
		}
	}
	return best, bestDist
}

func project(a, b, p orb.Point) orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return a
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return orb.Point{a[0] + t*dx, a[1] + t*dy}
}
