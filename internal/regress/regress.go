// Package regress fits ordinary least-squares trends to shoreline distance
// series after rejecting outlying observations.
package regress

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	MethodModifiedZScore = "modified-zscore"
	MethodZScore         = "zscore"

	StatusOK               = "ok"
	StatusInsufficientData = "insufficient data"
	StatusConstantX        = "constant x"

	// tiny keeps the t statistic finite for perfect fits.
	tiny = 1e-20
)

var (
	ErrInsufficientData = errors.New("fewer than two observations remain")
	ErrConstantX        = errors.New("all explanatory values are identical")
	ErrLengthMismatch   = errors.New("series lengths differ")
	ErrUnknownMethod    = errors.New("unknown outlier method")
)

type Options struct {
	OutlierThreshold float64
	Method           string
	// Detrend is an optional (slope, intercept) trend removed from y before
	// outliers are searched for.
	Detrend *[2]float64
}

func DefaultOptions() Options {
	return Options{OutlierThreshold: 3, Method: MethodModifiedZScore}
}

type Result struct {
	Slope     float64
	Intercept float64
	PValue    float64
	// Outliers holds the labels of rejected observations, space separated,
	// in input order.
	Outliers string
	N        int
	Status   string
}

// Regress regresses y on x. Pairs with a NaN are ignored, outliers are
// rejected until none remain, and the slope, intercept and two-sided slope
// p-value are rounded to three decimals.
func Regress(y, x []float64, labels []string, opts Options) (Result, error) {
	res := Result{Slope: math.NaN(), Intercept: math.NaN(), PValue: math.NaN()}
	if len(y) != len(x) || len(labels) != len(x) {
		return res, fmt.Errorf("%w: y=%d x=%d labels=%d", ErrLengthMismatch, len(y), len(x), len(labels))
	}

	var (
		xs, ys []float64
		ls     []string
	)
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		yi := y[i]
		if opts.Detrend != nil {
			yi -= opts.Detrend[0]*x[i] + opts.Detrend[1]
		}
		xs = append(xs, x[i])
		ys = append(ys, yi)
		ls = append(ls, labels[i])
	}

	keep, err := rejectOutliers(xs, ys, opts)
	if err != nil {
		return res, err
	}

	var (
		cx, cy  []float64
		dropped []string
	)
	for i, k := range keep {
		if k {
			cx = append(cx, xs[i])
			cy = append(cy, ys[i])
		} else {
			dropped = append(dropped, ls[i])
		}
	}
	res.Outliers = strings.Join(dropped, " ")
	res.N = len(cx)

	if len(cx) < 2 {
		res.Status = StatusInsufficientData
		return res, fmt.Errorf("%w: %d left", ErrInsufficientData, len(cx))
	}
	if stat.Variance(cx, nil) == 0 {
		res.Status = StatusConstantX
		return res, ErrConstantX
	}

	intercept, slope := stat.LinearRegression(cx, cy, nil, false)
	res.Slope = round3(slope)
	res.Intercept = round3(intercept)
	res.PValue = round3(pValue(cx, cy))
	res.Status = StatusOK
	return res, nil
}

// pValue is the two-sided probability of a slope at least this steep under
// the null hypothesis of no trend.
func pValue(x, y []float64) float64 {
	n := len(x)
	if n == 2 {
		if y[0] == y[1] {
			return 1
		}
		return 0
	}

	r := 0.0
	if stat.Variance(y, nil) != 0 {
		r = stat.Correlation(x, y, nil)
	}
	r = math.Max(-1, math.Min(1, r))

	df := float64(n - 2)
	t := r * math.Sqrt(df/((1-r+tiny)*(1+r+tiny)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
