package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/coastal-guardian/shoreline-stats/internal/contour"
	"github.com/coastal-guardian/shoreline-stats/internal/log"
	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/regress"
	"github.com/coastal-guardian/shoreline-stats/internal/stats"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"
)

const (
	imageSize    = 1024
	imagePadding = 16
	// significance level below which a rate is coloured
	significance = 0.05
)

var (
	oldestShoreline = colorful.Color{R: 0.82, G: 0.88, B: 0.95}
	newestShoreline = colorful.Color{R: 0.03, G: 0.19, B: 0.42}
)

// shorelineColor blends from the oldest to the newest shoreline colour in Lab
// space.
func shorelineColor(i, n int) colorful.Color {
	if n < 2 {
		return newestShoreline
	}
	return oldestShoreline.BlendLab(newestShoreline, float64(i)/float64(n-1)).Clamped()
}

// RateClass buckets a time regression for display.
func RateClass(r regress.Result) string {
	switch {
	case r.Status != regress.StatusOK || math.IsNaN(r.PValue):
		return "unknown"
	case r.PValue > significance || r.Slope == 0:
		return "stable"
	case r.Slope < 0:
		return "erosion"
	default:
		return "accretion"
	}
}

// CreateOverviewImage draws the yearly shorelines, oldest lightest, and the
// sample points coloured by their rate class.
func CreateOverviewImage(shorelines []contour.Shoreline, report *stats.Report, path string) error {
	bound, ok := overviewBound(shorelines, report)
	if !ok {
		return fmt.Errorf("nothing to draw")
	}

	w, h := bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1]
	scale := float64(imageSize-2*imagePadding) / math.Max(math.Max(w, h), 1e-9)
	width := int(math.Ceil(w*scale)) + 2*imagePadding
	height := int(math.Ceil(h*scale)) + 2*imagePadding
	project := func(p orb.Point) (float64, float64) {
		return imagePadding + (p[0]-bound.Min[0])*scale, imagePadding + (bound.Max[1]-p[1])*scale
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetLineWidth(1.5)
	for i, s := range shorelines {
		c := shorelineColor(i, len(shorelines))
		dc.SetRGB(c.R, c.G, c.B)
		for _, ls := range s.Line {
			for j, p := range ls {
				x, y := project(p)
				if j == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.Stroke()
		}
	}

	if report != nil {
		for _, p := range report.Points {
			c := properties.ColorMap[RateClass(p.Time)]
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			x, y := project(p.Point.Point)
			dc.DrawCircle(x, y, 3)
			dc.Fill()
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create result folder: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	log.Infof("Overview image saved to: %s (%dx%d)", path, width, height)
	return nil
}

func overviewBound(shorelines []contour.Shoreline, report *stats.Report) (orb.Bound, bool) {
	var (
		bound orb.Bound
		ok    bool
	)
	extend := func(b orb.Bound) {
		if !ok {
			bound, ok = b, true
			return
		}
		bound = bound.Union(b)
	}
	for _, s := range shorelines {
		if len(s.Line) > 0 {
			extend(s.Line.Bound())
		}
	}
	if report != nil {
		for _, p := range report.Points {
			extend(p.Point.Point.Bound())
		}
	}
	return bound, ok
}
