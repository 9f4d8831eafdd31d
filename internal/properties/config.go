package properties

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a shoreline statistics run.
type Config struct {
	WaterIndex     string  `yaml:"water_index"`
	IndexThreshold float64 `yaml:"index_threshold"`
	BaselineYear   int     `yaml:"baseline_year"`
	// ReferenceYear is the year every distance series is re-based on.
	// Zero selects the first year with a shoreline.
	ReferenceYear int `yaml:"reference_year"`

	Inputs      InputsConfig      `yaml:"inputs"`
	Output      OutputConfig      `yaml:"output"`
	Compositor  CompositorConfig  `yaml:"compositor"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Contour     ContourConfig     `yaml:"contour"`
	Sampler     SamplerConfig     `yaml:"sampler"`
	Regression  RegressionConfig  `yaml:"regression"`
	Breakpoints BreakpointsConfig `yaml:"breakpoints"`
	Workers     int               `yaml:"workers"`
}

type InputsConfig struct {
	RasterDir        string `yaml:"raster_dir"`
	StudyAreaPath    string `yaml:"study_area_path"`
	StudyAreaIDField string `yaml:"study_area_id_field"`
	EstuaryPath      string `yaml:"estuary_path"`
	ClimatePath      string `yaml:"climate_path"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Archive     bool   `yaml:"archive"`
	Image       bool   `yaml:"image"`
	CacheSubDir string `yaml:"cache_sub_dir"`
}

// CompositorConfig controls when gap-filled values replace observations.
type CompositorConfig struct {
	MinCount float64 `yaml:"min_count"`
	MaxStdev float64 `yaml:"max_stdev"`
}

type ClassifierConfig struct {
	// Connectivity 1 is 4-connected, 2 is 8-connected.
	Connectivity       int     `yaml:"connectivity"`
	OceanDilation      int     `yaml:"ocean_dilation"`
	FrequencyThreshold float64 `yaml:"frequency_threshold"`
	OpeningRadius      int     `yaml:"opening_radius"`
	BufferRadius       int     `yaml:"buffer_radius"`
}

type ContourConfig struct {
	MinVertices int `yaml:"min_vertices"`
}

type SamplerConfig struct {
	Spacing       float64 `yaml:"spacing"`
	RoundDecimals int     `yaml:"round_decimals"`
}

type RegressionConfig struct {
	OutlierThreshold float64 `yaml:"outlier_threshold"`
	// OutlierMethod is "modified-zscore" or "zscore".
	OutlierMethod string `yaml:"outlier_method"`
}

type BreakpointsConfig struct {
	Enabled bool    `yaml:"enabled"`
	Penalty float64 `yaml:"penalty"`
	MinSize int     `yaml:"min_size"`
	Jump    int     `yaml:"jump"`
}

func DefaultConfig() Config {
	return Config{
		WaterIndex:     "mndwi",
		IndexThreshold: 0.0,
		BaselineYear:   2018,
		Inputs: InputsConfig{
			RasterDir:        "output_data",
			StudyAreaPath:    "input_data/Euc_SCC_coast10kmbuffer.geojson",
			StudyAreaIDField: "ID_Seconda",
			EstuaryPath:      "input_data/estuary_mask.shp",
			ClimatePath:      "input_data/climate_indices.csv",
		},
		Output: OutputConfig{
			Dir:         "output_data",
			Archive:     true,
			Image:       true,
			CacheSubDir: "cache/contours",
		},
		Compositor: CompositorConfig{
			MinCount: 5,
			MaxStdev: 0.5,
		},
		Classifier: ClassifierConfig{
			Connectivity:       1,
			OceanDilation:      1,
			FrequencyThreshold: 0.9,
			OpeningRadius:      3,
			BufferRadius:       25,
		},
		Contour: ContourConfig{
			MinVertices: 10,
		},
		Sampler: SamplerConfig{
			Spacing:       30,
			RoundDecimals: 2,
		},
		Regression: RegressionConfig{
			OutlierThreshold: 3,
			OutlierMethod:    "modified-zscore",
		},
		Breakpoints: BreakpointsConfig{
			Enabled: false,
			Penalty: 10,
			MinSize: 2,
			Jump:    1,
		},
		Workers: runtime.NumCPU(),
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path or a
// missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.WaterIndex == "" {
		errs = append(errs, errors.New("water_index must be set"))
	}
	if c.BaselineYear <= 0 {
		errs = append(errs, errors.New("baseline_year must be positive"))
	}
	if c.Classifier.Connectivity != 1 && c.Classifier.Connectivity != 2 {
		errs = append(errs, fmt.Errorf("classifier.connectivity must be 1 or 2, got %d", c.Classifier.Connectivity))
	}
	if c.Classifier.OceanDilation < 0 || c.Classifier.OpeningRadius < 0 || c.Classifier.BufferRadius < 0 {
		errs = append(errs, errors.New("classifier radii must not be negative"))
	}
	if c.Classifier.FrequencyThreshold < 0 || c.Classifier.FrequencyThreshold > 1 {
		errs = append(errs, fmt.Errorf("classifier.frequency_threshold must be within [0, 1], got %v", c.Classifier.FrequencyThreshold))
	}
	if c.Contour.MinVertices < 2 {
		errs = append(errs, errors.New("contour.min_vertices must be at least 2"))
	}
	if c.Sampler.Spacing <= 0 {
		errs = append(errs, errors.New("sampler.spacing must be positive"))
	}
	if c.Sampler.RoundDecimals < 0 {
		errs = append(errs, errors.New("sampler.round_decimals must not be negative"))
	}
	if c.Regression.OutlierThreshold <= 0 {
		errs = append(errs, errors.New("regression.outlier_threshold must be positive"))
	}
	switch c.Regression.OutlierMethod {
	case "zscore", "modified-zscore":
	default:
		errs = append(errs, fmt.Errorf("regression.outlier_method %q is not supported", c.Regression.OutlierMethod))
	}
	if c.Breakpoints.Enabled && (c.Breakpoints.MinSize < 1 || c.Breakpoints.Jump < 1) {
		errs = append(errs, errors.New("breakpoints.min_size and breakpoints.jump must be at least 1"))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("workers must be at least 1"))
	}
	return errors.Join(errs...)
}
