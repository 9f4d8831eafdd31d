package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/coastal-guardian/shoreline-stats/internal/contour"
	"github.com/coastal-guardian/shoreline-stats/internal/log"
	"github.com/coastal-guardian/shoreline-stats/internal/regress"
	"github.com/coastal-guardian/shoreline-stats/internal/stats"
	"github.com/paulmach/orb/geojson"
)

// CreateContoursGeoJSON writes one feature per yearly shoreline.
func CreateContoursGeoJSON(shorelines []contour.Shoreline, path string) error {
	fc := geojson.NewFeatureCollection()
	for _, s := range shorelines {
		f := geojson.NewFeature(s.Line)
		f.Properties["year"] = strconv.Itoa(s.Year)
		fc.Append(f)
	}
	return writeFeatureCollection(fc, path)
}

// CreateStatsGeoJSON writes one point feature per sample point with its
// rates, significances, outliers and distance series.
func CreateStatsGeoJSON(report *stats.Report, path string) error {
	fc := geojson.NewFeatureCollection()
	for _, p := range report.Points {
		f := geojson.NewFeature(p.Point.Point)
		props := f.Properties
		props["id"] = p.Point.ID

		setResult(props, "time", p.Time)
		for _, name := range report.ClimateNames {
			setResult(props, name, p.Climate[name])
		}
		setResult(props, "tide", p.Tide)

		if p.Breakpoint != "" {
			props["breakpoint"] = p.Breakpoint
		}
		for i, year := range report.Years {
			props[strconv.Itoa(year)] = jsonNumber(p.Distances[i])
		}
		fc.Append(f)
	}
	return writeFeatureCollection(fc, path)
}

func setResult(props geojson.Properties, name string, r regress.Result) {
	props["rate_"+name] = jsonNumber(r.Slope)
	props["sig_"+name] = jsonNumber(r.PValue)
	props["outl_"+name] = r.Outliers
}

// jsonNumber maps NaN, which JSON cannot carry, to null.
func jsonNumber(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func writeFeatureCollection(fc *geojson.FeatureCollection, path string) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("error encoding GeoJSON: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error creating GeoJSON file: %w", err)
	}
	log.Infof("GeoJSON file created successfully at %s", path)
	return nil
}
