// Package vector reads study-area and estuary polygons and burns them onto
// the raster grid.
package vector

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/coastal-guardian/shoreline-stats/internal/raster"
	"github.com/coastal-guardian/shoreline-stats/internal/utils"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// Rasterize burns geometries onto the grid. Every pixel touched by a
// geometry is set, not only those whose centre lies inside it. No
// geometries yields an all-false mask without touching GDAL.
func Rasterize(grid raster.Grid, geoms []orb.Geometry) (raster.Mask, error) {
	m := raster.NewMask(grid.Width, grid.Height)
	if len(geoms) == 0 {
		return m, nil
	}

	utils.RegisterDrivers()
	var err error
	utils.ExecuteWithMutex(func() {
		err = rasterize(grid, geoms, m)
	})
	return m, err
}

func rasterize(grid raster.Grid, geoms []orb.Geometry, m raster.Mask) error {
	ds, err := godal.Create(godal.Memory, "", 1, godal.Byte, grid.Width, grid.Height)
	if err != nil {
		return fmt.Errorf("failed to create mask dataset: %w", err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(grid.Transform); err != nil {
		return fmt.Errorf("failed to set mask GeoTransform: %w", err)
	}

	for _, g := range geoms {
		if err := burn(ds, g); err != nil {
			return err
		}
	}

	data := make([]uint8, grid.Size())
	if err := ds.Bands()[0].Read(0, 0, data, grid.Width, grid.Height); err != nil {
		return fmt.Errorf("failed to read mask: %w", err)
	}
	for i, v := range data {
		m.Data[i] = v != 0
	}
	return nil
}

func burn(ds *godal.Dataset, g orb.Geometry) error {
	if g == nil {
		return nil
	}
	raw, err := wkb.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", g.GeoJSONType(), err)
	}
	geom, err := godal.NewGeometryFromWKB(raw, nil)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", g.GeoJSONType(), err)
	}
	defer geom.Close()

	if err := ds.RasterizeGeometry(geom, godal.AllTouched(), godal.Values(1)); err != nil {
		return fmt.Errorf("failed to rasterize %s: %w", g.GeoJSONType(), err)
	}
	return nil
}
