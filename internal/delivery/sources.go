package delivery

import (
	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/coastal-guardian/shoreline-stats/internal/raster"
	"github.com/coastal-guardian/shoreline-stats/internal/vector"
	"github.com/paulmach/orb"
)

// VectorSource provides the polygons that bound a run, in the raster's
// coordinate system.
type VectorSource interface {
	StudyArea(id string, grid raster.Grid) (orb.Geometry, error)
	// Estuaries returns the estuary polygons overlapping bound, the raster
	// extent; none is not an error.
	Estuaries(grid raster.Grid, bound orb.Bound) ([]orb.Geometry, error)
}

// GodalVectors reads the configured vector files through GDAL.
type GodalVectors struct {
	Inputs properties.InputsConfig
}

func (v GodalVectors) StudyArea(id string, grid raster.Grid) (orb.Geometry, error) {
	return vector.ReadStudyArea(properties.ResolvePath(v.Inputs.StudyAreaPath), v.Inputs.StudyAreaIDField, id, grid.Projection)
}

func (v GodalVectors) Estuaries(grid raster.Grid, bound orb.Bound) ([]orb.Geometry, error) {
	return vector.ReadWithin(properties.ResolvePath(v.Inputs.EstuaryPath), grid.Projection, bound)
}
