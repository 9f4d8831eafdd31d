package regress

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearLabels(x []float64) []string {
	labels := make([]string, len(x))
	for i, v := range x {
		labels[i] = strconv.Itoa(int(v))
	}
	return labels
}

func TestRegressRejectsOutlier(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 2, 3, 4, 100}

	res, err := Regress(y, x, yearLabels(x), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "5", res.Outliers)
	assert.Equal(t, 4, res.N)
	assert.InDelta(t, 1.0, res.Slope, 1e-9)
	assert.InDelta(t, 0.0, res.Intercept, 1e-9)
	assert.Equal(t, 0.0, res.PValue)
	assert.Equal(t, StatusOK, res.Status)
}

func TestRegressOrdinaryLeastSquares(t *testing.T) {
	tests := []struct {
		name      string
		x, y      []float64
		slope     float64
		intercept float64
		pvalue    float64
	}{
		{
			name:      "strong trend",
			x:         []float64{1, 2, 3, 4, 5},
			y:         []float64{2.1, 3.9, 6.2, 7.8, 10.1},
			slope:     1.99,
			intercept: 0.05,
			pvalue:    0,
		},
		{
			name:      "weak trend",
			x:         []float64{1, 2, 3, 4},
			y:         []float64{1, 3, 2, 4},
			slope:     0.8,
			intercept: 0.5,
			pvalue:    0.2,
		},
		{
			name:      "two points",
			x:         []float64{1, 2},
			y:         []float64{3, 5},
			slope:     2,
			intercept: 1,
			pvalue:    0,
		},
		{
			name:      "two equal points",
			x:         []float64{1, 2},
			y:         []float64{3, 3},
			slope:     0,
			intercept: 3,
			pvalue:    1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Regress(tt.y, tt.x, yearLabels(tt.x), DefaultOptions())
			require.NoError(t, err)
			assert.Empty(t, res.Outliers)
			assert.InDelta(t, tt.slope, res.Slope, 1e-9)
			assert.InDelta(t, tt.intercept, res.Intercept, 1e-9)
			assert.InDelta(t, tt.pvalue, res.PValue, 1e-9)
		})
	}
}

func TestRegressIgnoresMissingPairs(t *testing.T) {
	x := []float64{1, 2, math.NaN(), 4}
	y := []float64{1, 2, 3, math.NaN()}

	res, err := Regress(y, x, []string{"a", "b", "c", "d"}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, res.N)
	assert.Empty(t, res.Outliers, "missing pairs are not outliers")
	assert.InDelta(t, 1.0, res.Slope, 1e-9)
}

func TestRegressOutlierRejectionIsIdempotent(t *testing.T) {
	x := []float64{2000, 2001, 2002, 2003, 2004, 2005, 2006, 2007}
	y := []float64{0, -1.5, -2.2, -40, -3.9, -5.1, 30, -7.2}

	for _, method := range []string{MethodModifiedZScore, MethodZScore} {
		t.Run(method, func(t *testing.T) {
			opts := Options{OutlierThreshold: 1.5, Method: method}
			first, err := Regress(y, x, yearLabels(x), opts)
			require.NoError(t, err)
			require.NotEmpty(t, first.Outliers)

			var cx, cy []float64
			dropped := map[string]bool{}
			for _, l := range splitLabels(first.Outliers) {
				dropped[l] = true
			}
			for i := range x {
				if !dropped[yearLabels(x)[i]] {
					cx = append(cx, x[i])
					cy = append(cy, y[i])
				}
			}

			second, err := Regress(cy, cx, yearLabels(cx), opts)
			require.NoError(t, err)
			assert.Empty(t, second.Outliers)
			assert.Equal(t, first.Slope, second.Slope)
			assert.Equal(t, first.Intercept, second.Intercept)
		})
	}
}

func splitLabels(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func TestRegressDetrendLinearSeries(t *testing.T) {
	x := []float64{2000, 2001, 2002, 2003, 2004}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = -1.5*v + 3100
	}

	opts := DefaultOptions()
	opts.Detrend = &[2]float64{-1.5, 3100}
	res, err := Regress(y, x, yearLabels(x), opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.Slope, 1e-9)
	assert.InDelta(t, 0.0, res.Intercept, 1e-9)
	assert.Empty(t, res.Outliers)
}

func TestRegressPopulationZScore(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 2, 3, 4, 100}

	res, err := Regress(y, x, yearLabels(x), Options{OutlierThreshold: 3, Method: MethodZScore})
	require.NoError(t, err)
	assert.Empty(t, res.Outliers, "a population z-score of five values never exceeds two")

	res, err = Regress(y, x, yearLabels(x), Options{OutlierThreshold: 1.5, Method: MethodZScore})
	require.NoError(t, err)
	assert.Equal(t, "5", res.Outliers)
	assert.InDelta(t, 1.0, res.Slope, 1e-9)
}

func TestRegressDegenerate(t *testing.T) {
	res, err := Regress([]float64{1, math.NaN()}, []float64{1, 2}, []string{"a", "b"}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, StatusInsufficientData, res.Status)
	assert.True(t, math.IsNaN(res.Slope))

	res, err = Regress([]float64{1, 2, 3}, []float64{2, 2, 2}, []string{"a", "b", "c"}, DefaultOptions())
	assert.ErrorIs(t, err, ErrConstantX)
	assert.Equal(t, StatusConstantX, res.Status)

	_, err = Regress([]float64{1}, []float64{1, 2}, []string{"a", "b"}, DefaultOptions())
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Regress([]float64{1, 2}, []float64{1, 2}, []string{"a", "b"}, Options{OutlierThreshold: 3, Method: "iqr"})
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestModifiedZScore(t *testing.T) {
	z := ModifiedZScore([]float64{1, 2, 3, 4, 100})
	assert.InDelta(t, 0.6745*97, z[4], 1e-9)
	assert.InDelta(t, 0.0, z[2], 1e-12)

	// more than half equal: mean absolute deviation fallback
	z = ModifiedZScore([]float64{5, 5, 5, 9})
	assert.InDelta(t, 4/(1.253314*1.0), z[3], 1e-9)

	assert.Equal(t, []float64{0, 0, 0}, ModifiedZScore([]float64{2, 2, 2}))
	assert.Equal(t, []float64{0, 0}, ZScore([]float64{7, 7}))
}
