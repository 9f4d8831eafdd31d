package vector

import (
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/coastal-guardian/shoreline-stats/internal/log"
	"github.com/coastal-guardian/shoreline-stats/internal/utils"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

var ErrFeatureNotFound = errors.New("feature not found")

// Feature is a geometry in the raster's coordinate system with its
// attributes as strings.
type Feature struct {
	Geometry orb.Geometry
	Fields   map[string]string
}

// ReadFeatures reads every feature of the first layer of a vector file,
// reprojected to the given WKT projection. An empty projection keeps the
// source coordinates.
func ReadFeatures(path, projection string) ([]Feature, error) {
	var (
		features []Feature
		err      error
	)
	utils.RegisterDrivers()
	utils.ExecuteWithMutex(func() {
		features, err = readFeatures(path, projection)
	})
	return features, err
}

func readFeatures(path, projection string) ([]Feature, error) {
	ds, err := godal.Open(path, godal.VectorOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to open vector %s: %w", path, err)
	}
	defer ds.Close()

	layers := ds.Layers()
	if len(layers) == 0 {
		return nil, fmt.Errorf("vector %s has no layers", path)
	}

	var target *godal.SpatialRef
	if projection != "" {
		target, err = godal.NewSpatialRefFromWKT(projection)
		if err != nil {
			return nil, fmt.Errorf("invalid raster projection: %w", err)
		}
		defer target.Close()
	}

	var features []Feature
	layer := layers[0]
	for {
		feat := layer.NextFeature()
		if feat == nil {
			break
		}
		f, err := convertFeature(feat, target)
		feat.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read feature of %s: %w", path, err)
		}
		if f.Geometry != nil {
			features = append(features, f)
		}
	}
	return features, nil
}

func convertFeature(feat *godal.Feature, target *godal.SpatialRef) (Feature, error) {
	f := Feature{Fields: map[string]string{}}
	for name, field := range feat.Fields() {
		f.Fields[name] = field.String()
	}

	geom := feat.Geometry()
	if geom == nil || geom.Empty() {
		return f, nil
	}
	raw, err := geom.WKB()
	if err != nil {
		return f, err
	}

	if target != nil && geom.SpatialRef() != nil {
		owned, err := godal.NewGeometryFromWKB(raw, geom.SpatialRef())
		if err != nil {
			return f, err
		}
		defer owned.Close()
		if err := owned.Reproject(target); err != nil {
			return f, fmt.Errorf("failed to reproject geometry: %w", err)
		}
		if raw, err = owned.WKB(); err != nil {
			return f, err
		}
	}

	f.Geometry, err = wkb.Unmarshal(raw)
	return f, err
}

// ReadStudyArea returns the geometry of the feature whose idField equals id.
func ReadStudyArea(path, idField, id, projection string) (orb.Geometry, error) {
	features, err := ReadFeatures(path, projection)
	if err != nil {
		return nil, err
	}
	for _, f := range features {
		if f.Fields[idField] == id {
			return f.Geometry, nil
		}
	}
	return nil, fmt.Errorf("%w: %s=%s in %s", ErrFeatureNotFound, idField, id, path)
}

// ReadWithin returns the geometries of path whose extent overlaps bound.
// A layer without such features yields no geometries and no error.
func ReadWithin(path, projection string, bound orb.Bound) ([]orb.Geometry, error) {
	features, err := ReadFeatures(path, projection)
	if err != nil {
		return nil, err
	}
	return FilterWithin(features, bound), nil
}

func FilterWithin(features []Feature, bound orb.Bound) []orb.Geometry {
	var out []orb.Geometry
	for _, f := range features {
		if f.Geometry.Bound().Intersects(bound) {
			out = append(out, f.Geometry)
		}
	}
	if len(out) == 0 {
		log.Debugw("no features overlap the study area", "features", len(features))
	}
	return out
}
