package raster

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// SeriesFiles lists the yearly GeoTIFFs of a study area per band.
type SeriesFiles struct {
	Years []int
	Files map[string][]string
}

// DiscoverSeries finds the yearly rasters of a study area:
//
//	<dir>/<study>/<index>_<YYYY>.tif
//	<dir>/<study>/gapfill_<index>_<YYYY>.tif
//	<dir>/<study>/gapfill_tide_m_<YYYY>.tif
//	<dir>/<study>/{stdev,tide_m,count}_<YYYY>.tif
//
// The gap-fill series define the year axis. The direct series start one year
// earlier (the first year has no gap-fill composite) so their first file is
// skipped and the remainder truncated to the gap-fill length.
func DiscoverSeries(dir, studyArea, waterIndex string) (*SeriesFiles, error) {
	base := filepath.Join(dir, studyArea)

	glob := func(prefix string) ([]string, error) {
		files, err := filepath.Glob(filepath.Join(base, prefix+"_*.tif"))
		if err != nil {
			return nil, err
		}
		slices.Sort(files)
		return files, nil
	}

	gapfillIndex, err := glob("gapfill_" + waterIndex)
	if err != nil {
		return nil, err
	}
	if len(gapfillIndex) == 0 {
		return nil, fmt.Errorf("%w: no gapfill_%s rasters found in %s", ErrMisaligned, waterIndex, base)
	}
	n := len(gapfillIndex)

	gapfillTide, err := glob("gapfill_tide_m")
	if err != nil {
		return nil, err
	}

	series := &SeriesFiles{Files: map[string][]string{
		BandGapfillIndex: gapfillIndex,
		BandGapfillTide:  gapfillTide,
	}}

	direct := map[string]string{
		BandIndex: waterIndex,
		BandStdev: "stdev",
		BandTide:  "tide_m",
		BandCount: "count",
	}
	for band, prefix := range direct {
		files, err := glob(prefix)
		if err != nil {
			return nil, err
		}
		if len(files) < n+1 {
			return nil, fmt.Errorf("%w: %s has %d rasters, need %d", ErrMisaligned, prefix, len(files), n+1)
		}
		series.Files[band] = files[1 : n+1]
	}

	years, err := yearsOf(series.Files[BandIndex])
	if err != nil {
		return nil, err
	}
	series.Years = years

	for band, files := range series.Files {
		if len(files) != n {
			return nil, fmt.Errorf("%w: band %s has %d rasters, expected %d", ErrMisaligned, band, len(files), n)
		}
		bandYears, err := yearsOf(files)
		if err != nil {
			return nil, err
		}
		if !slices.Equal(bandYears, years) {
			return nil, fmt.Errorf("%w: band %s covers years %v, expected %v", ErrMisaligned, band, bandYears, years)
		}
	}

	return series, nil
}

// yearOf reads the year from the last four characters of a file's stem.
func yearOf(path string) (int, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(stem) < 4 {
		return 0, fmt.Errorf("cannot read year from %s", path)
	}
	year, err := strconv.Atoi(stem[len(stem)-4:])
	if err != nil {
		return 0, fmt.Errorf("cannot read year from %s: %w", path, err)
	}
	return year, nil
}

func yearsOf(files []string) ([]int, error) {
	years := make([]int, len(files))
	for i, f := range files {
		y, err := yearOf(f)
		if err != nil {
			return nil, err
		}
		years[i] = y
	}
	return years, nil
}
