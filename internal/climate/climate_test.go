package climate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `year,SOI,IOD,SAM
2000,0.5,-0.1,1.2
2001,-0.3,0.4,0.8
2002,1.1,0.0,-0.2
`

func TestLoadAndJoin(t *testing.T) {
	ind, err := Load(strings.NewReader(table))
	require.NoError(t, err)
	assert.Equal(t, []string{"SOI", "IOD", "SAM"}, ind.Names)

	joined, err := ind.Join([]int{2002, 2000})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.1, 0.5}, joined["SOI"])
	assert.Equal(t, []float64{-0.2, 1.2}, joined["SAM"])
}

func TestJoinMissingYear(t *testing.T) {
	ind, err := Load(strings.NewReader(table))
	require.NoError(t, err)

	_, err = ind.Join([]int{2000, 2003})
	assert.ErrorIs(t, err, ErrMissingYear)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader("SOI,IOD\n1,2\n"))
	assert.ErrorIs(t, err, ErrNoYearColumn)

	_, err = Load(strings.NewReader("year,SOI\n2000,1\n2000,2\n"))
	assert.ErrorIs(t, err, ErrDuplicateYear)

	_, err = Load(strings.NewReader("year,SOI\n2000,abc\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "climate_indices.csv")
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	ind, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, ind.Names, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
