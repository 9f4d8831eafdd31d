package stats

import (
	"context"
	"math"
	"testing"

	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/regress"
	"github.com/coastal-guardian/shoreline-stats/internal/sampler"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func measurements() *sampler.Measurements {
	years := []int{2000, 2001, 2002, 2003, 2004}
	m := &sampler.Measurements{
		Points: []sampler.SamplePoint{
			{ID: 0, Point: orb.Point{0, 0}},
			{ID: 1, Offset: 30, Point: orb.Point{30, 0}},
		},
		Distances: sampler.NewTable(2, years),
		Tides:     sampler.NewTable(2, years),
	}
	m.Distances.Values[0] = []float64{0, -1, -2, -3, -4}
	m.Distances.Values[1] = []float64{0, math.NaN(), math.NaN(), math.NaN(), math.NaN()}
	m.Tides.Values[0] = []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	m.Tides.Values[1] = []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	return m
}

func TestCompute(t *testing.T) {
	cfg := properties.DefaultConfig()
	cfg.Workers = 2
	climate := map[string][]float64{"SOI": {1, 0, -1, -2, -3}}

	report, err := Compute(context.Background(), measurements(), []string{"SOI"}, climate, cfg)
	require.NoError(t, err)
	require.Len(t, report.Points, 2)

	p := report.Points[0]
	assert.InDelta(t, -1.0, p.Time.Slope, 1e-9)
	assert.InDelta(t, 2000.0, p.Time.Intercept, 1e-9)
	assert.Equal(t, 0.0, p.Time.PValue)
	assert.InDelta(t, -10.0, p.Tide.Slope, 1e-9)
	assert.InDelta(t, 1.0, p.Climate["SOI"].Slope, 1e-9)
	assert.Empty(t, p.Breakpoint, "detection disabled")

	degenerate := report.Points[1]
	assert.Equal(t, regress.StatusInsufficientData, degenerate.Time.Status)
	assert.Equal(t, regress.StatusInsufficientData, degenerate.Climate["SOI"].Status)
}

func TestComputeBreakpoints(t *testing.T) {
	cfg := properties.DefaultConfig()
	cfg.Breakpoints.Enabled = true
	cfg.Breakpoints.Penalty = 1

	m := measurements()
	m.Distances.Values[0] = []float64{0, 0.1, 0, -10, -10.1, -10}

	years := []int{2000, 2001, 2002, 2003, 2004, 2005}
	m.Distances.Years = years
	m.Tides = sampler.NewTable(2, years)
	m.Distances.Values[1] = []float64{0, 0, 0, 0, 0, 0}

	report, err := Compute(context.Background(), m, nil, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "2003", report.Points[0].Breakpoint)
	assert.Empty(t, report.Points[1].Breakpoint)
}

func TestComputeErrors(t *testing.T) {
	cfg := properties.DefaultConfig()

	_, err := Compute(context.Background(), measurements(), []string{"SOI"}, map[string][]float64{"SOI": {1}}, cfg)
	assert.Error(t, err)

	cfg.Regression.OutlierMethod = "iqr"
	_, err = Compute(context.Background(), measurements(), nil, nil, cfg)
	assert.ErrorIs(t, err, regress.ErrUnknownMethod)
}
