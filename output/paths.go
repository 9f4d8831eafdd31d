package output

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coastal-guardian/shoreline-stats/internal/properties"
)

// Paths names the files written for a study area.
type Paths struct {
	VectorsDir string
	Contours   string
	Stats      string
	Summary    string
	Climate    string
	Image      string
	Archive    string
}

func NewPaths(studyArea string, cfg properties.Config) Paths {
	dir := filepath.Join(properties.ResolvePath(cfg.Output.Dir), studyArea)
	vectors := filepath.Join(dir, "vectors")
	threshold := formatThreshold(cfg.IndexThreshold)
	return Paths{
		VectorsDir: vectors,
		Contours:   filepath.Join(vectors, fmt.Sprintf("%s_contours_%s_%.2f.geojson", studyArea, cfg.WaterIndex, cfg.IndexThreshold)),
		Stats:      filepath.Join(vectors, fmt.Sprintf("%s_stats_%s_%s.geojson", studyArea, cfg.WaterIndex, threshold)),
		Summary:    filepath.Join(vectors, fmt.Sprintf("%s_stats_%s_%s.csv", studyArea, cfg.WaterIndex, threshold)),
		Climate:    filepath.Join(vectors, fmt.Sprintf("%s_climate_%s_%s.csv", studyArea, cfg.WaterIndex, threshold)),
		Image:      filepath.Join(dir, fmt.Sprintf("%s_overview_%s.png", studyArea, cfg.WaterIndex)),
		Archive:    filepath.Join(properties.ResolvePath(cfg.Output.Dir), fmt.Sprintf("outputs_%s.zip", studyArea)),
	}
}

// formatThreshold always keeps a decimal point, e.g. 0 -> "0.0".
func formatThreshold(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
