package utils

import (
	"sync"

	"github.com/airbusgeo/godal"
)

var (
	gdalMu       sync.Mutex
	registerOnce sync.Once
)

// ExecuteWithMutex serialises calls into GDAL, which is not safe for
// concurrent use on shared handles.
func ExecuteWithMutex(fn func()) {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	fn()
}

// RegisterDrivers registers the GDAL raster and vector drivers once.
func RegisterDrivers() {
	registerOnce.Do(godal.RegisterInternalDrivers)
}
