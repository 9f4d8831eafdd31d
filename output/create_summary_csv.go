package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/coastal-guardian/shoreline-stats/internal/log"
	"github.com/coastal-guardian/shoreline-stats/internal/stats"
	"github.com/gocarina/gocsv"
)

type SummaryRow struct {
	ID         int     `csv:"id"`
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
	RateTime   float64 `csv:"rate_time"`
	IncptTime  float64 `csv:"incpt_time"`
	SigTime    float64 `csv:"sig_time"`
	OutlTime   string  `csv:"outl_time"`
	NTime      int     `csv:"n_time"`
	StatusTime string  `csv:"status_time"`
	RateTide   float64 `csv:"rate_tide"`
	IncptTide  float64 `csv:"incpt_tide"`
	SigTide    float64 `csv:"sig_tide"`
	OutlTide   string  `csv:"outl_tide"`
	Breakpoint string  `csv:"breakpoint"`
}

// ClimateRow is one point's regression against one climate index.
type ClimateRow struct {
	ID       int     `csv:"id"`
	Index    string  `csv:"index"`
	Rate     float64 `csv:"rate"`
	Incpt    float64 `csv:"incpt"`
	Sig      float64 `csv:"sig"`
	Outliers string  `csv:"outl"`
	Status   string  `csv:"status"`
}

func SummaryRows(report *stats.Report) []SummaryRow {
	rows := make([]SummaryRow, 0, len(report.Points))
	for _, p := range report.Points {
		rows = append(rows, SummaryRow{
			ID:         p.Point.ID,
			X:          p.Point.Point[0],
			Y:          p.Point.Point[1],
			RateTime:   p.Time.Slope,
			IncptTime:  p.Time.Intercept,
			SigTime:    p.Time.PValue,
			OutlTime:   p.Time.Outliers,
			NTime:      p.Time.N,
			StatusTime: p.Time.Status,
			RateTide:   p.Tide.Slope,
			IncptTide:  p.Tide.Intercept,
			SigTide:    p.Tide.PValue,
			OutlTide:   p.Tide.Outliers,
			Breakpoint: p.Breakpoint,
		})
	}
	return rows
}

func ClimateRows(report *stats.Report) []ClimateRow {
	var rows []ClimateRow
	for _, p := range report.Points {
		for _, name := range report.ClimateNames {
			r := p.Climate[name]
			rows = append(rows, ClimateRow{
				ID:       p.Point.ID,
				Index:    name,
				Rate:     r.Slope,
				Incpt:    r.Intercept,
				Sig:      r.PValue,
				Outliers: r.Outliers,
				Status:   r.Status,
			})
		}
	}
	return rows
}

// CreateSummaryCSV writes the per-point time and tide statistics, and the
// climate regressions when there are any.
func CreateSummaryCSV(report *stats.Report, summaryPath, climatePath string) error {
	summary := SummaryRows(report)
	if err := marshalFile(&summary, summaryPath); err != nil {
		return err
	}
	if len(report.ClimateNames) == 0 {
		return nil
	}
	climate := ClimateRows(report)
	return marshalFile(&climate, climatePath)
}

func marshalFile(rows any, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	log.Infof("CSV file created successfully at %s", path)
	return nil
}
