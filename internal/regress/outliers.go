package regress

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// consistency constants of the modified z-score for normal data
const (
	madScale    = 0.6745
	meanADScale = 1.253314
)

// rejectOutliers marks pairs whose x or y score exceeds the threshold.
// Scores are recomputed over the survivors until a pass rejects nothing,
// so cleaned data never loses further pairs when cleaned again.
func rejectOutliers(x, y []float64, opts Options) ([]bool, error) {
	score, err := scorer(opts.Method)
	if err != nil {
		return nil, err
	}

	keep := make([]bool, len(x))
	for i := range keep {
		keep[i] = true
	}
	if opts.OutlierThreshold <= 0 {
		return keep, nil
	}

	for {
		var idx []int
		var kx, ky []float64
		for i, k := range keep {
			if k {
				idx = append(idx, i)
				kx = append(kx, x[i])
				ky = append(ky, y[i])
			}
		}
		if len(idx) < 2 {
			return keep, nil
		}

		zx, zy := score(kx), score(ky)
		changed := false
		for j, i := range idx {
			if math.Abs(zx[j]) > opts.OutlierThreshold || math.Abs(zy[j]) > opts.OutlierThreshold {
				keep[i] = false
				changed = true
			}
		}
		if !changed {
			return keep, nil
		}
	}
}

func scorer(method string) (func([]float64) []float64, error) {
	switch method {
	case MethodModifiedZScore, "":
		return ModifiedZScore, nil
	case MethodZScore:
		return ZScore, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// ZScore standardises v with its population mean and standard deviation.
// A series without spread scores zero everywhere.
func ZScore(v []float64) []float64 {
	mean, std := stat.PopMeanStdDev(v, nil)
	z := make([]float64, len(v))
	if std == 0 || math.IsNaN(std) {
		return z
	}
	for i, e := range v {
		z[i] = (e - mean) / std
	}
	return z
}

// ModifiedZScore scores v by its distance from the median in units of the
// median absolute deviation, falling back to the mean absolute deviation
// when more than half of the values coincide.
func ModifiedZScore(v []float64) []float64 {
	z := make([]float64, len(v))
	if len(v) == 0 {
		return z
	}

	med := median(v)
	dev := make([]float64, len(v))
	for i, e := range v {
		dev[i] = math.Abs(e - med)
	}

	if mad := median(dev); mad > 0 {
		for i, e := range v {
			z[i] = madScale * (e - med) / mad
		}
		return z
	}
	if meanAD := stat.Mean(dev, nil); meanAD > 0 {
		for i, e := range v {
			z[i] = (e - med) / (meanADScale * meanAD)
		}
	}
	return z
}

func median(v []float64) float64 {
	s := slices.Clone(v)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
