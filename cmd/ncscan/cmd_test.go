package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchatco/go-netcdf-catalog/internal"
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
)

func run(t *testing.T, args ...string) (string, *viper.Viper, error) {
	t.Helper()
	var out bytes.Buffer
	cfg := viper.New()
	root := newRoot(cfg, &out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), cfg, err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ncscan v"+version+"\n", out)
}

func TestScanConfigFlags(t *testing.T) {
	cfg := viper.New()
	root := newRoot(cfg, &bytes.Buffer{})
	scanCmd, _, err := root.Find([]string{"scan"})
	require.NoError(t, err)
	require.NoError(t, scanCmd.ParseFlags([]string{
		"--sort", "--vars=tas,pr", "--steps=2,3", "--cells=10,5",
		"--chunk-cache-max=1024", "--cubesphere=false", "--log-level=info",
	}))

	c, err := scanConfig(cfg)
	require.NoError(t, err)
	assert.True(t, c.SortVarNames)
	assert.False(t, c.ConvertCubeSphere)
	assert.True(t, c.ReadCellCorners)
	assert.EqualValues(t, 1024, c.ChunkCacheMax)
	assert.Equal(t, internal.LevelInfo, c.LogLevel)

	f, ok := c.Query.(*api.Filter)
	require.True(t, ok)
	assert.Equal(t, []string{"tas", "pr"}, f.Names)
	assert.Equal(t, []int{2, 3}, f.Steps)
	start, count, ok := f.CellRange()
	assert.True(t, ok)
	assert.Equal(t, 10, start)
	assert.Equal(t, 5, count)
}

func TestScanConfigDefaults(t *testing.T) {
	cfg := viper.New()
	newRoot(cfg, &bytes.Buffer{})
	c, err := scanConfig(cfg)
	require.NoError(t, err)
	assert.Nil(t, c.Query)
	assert.Equal(t, internal.LogLevelDefault, c.LogLevel)
}

func TestScanConfigEnv(t *testing.T) {
	t.Setenv("NCSCAN_LOG_LEVEL", "error")
	t.Setenv("NCSCAN_IGNORE_VALID_RANGE", "true")
	cfg := viper.New()
	newRoot(cfg, &bytes.Buffer{})
	c, err := scanConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, internal.LevelError, c.LogLevel)
	assert.True(t, c.IgnoreValidRange)
}

func TestScanConfigBadLevel(t *testing.T) {
	t.Setenv("NCSCAN_LOG_LEVEL", "loud")
	cfg := viper.New()
	newRoot(cfg, &bytes.Buffer{})
	_, err := scanConfig(cfg)
	assert.Error(t, err)
}

func writeFile(t *testing.T) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "sst.nc")
	f, err := os.Create(fname)
	require.NoError(t, err)
	defer f.Close()

	h := cdf.NewHeader([]string{"lat", "lon"}, []int{2, 2})
	h.AddAttribute("", "institution", "ncscan")
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddVariable("sst", []string{"lat", "lon"}, []float32{0})
	h.AddAttribute("sst", "units", "K")
	h.Define()
	cf, err := cdf.Create(f, h)
	require.NoError(t, err)
	_, err = cf.Writer("lat", []int{0}, []int{2}).Write([]float64{-10, 10})
	require.NoError(t, err)
	_, err = cf.Writer("lon", []int{0}, []int{2}).Write([]float64{0, 90})
	require.NoError(t, err)
	_, err = cf.Writer("sst", []int{0, 0}, []int{2, 2}).Write([]float32{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, cdf.UpdateNumRecs(f))
	return fname
}

func TestScanCommand(t *testing.T) {
	fname := writeFile(t)
	out, _, err := run(t, "scan", "--metrics", fname)
	require.NoError(t, err)
	assert.Contains(t, out, "File name   : "+fname)
	assert.Contains(t, out, "Institution : ncscan")
	assert.Contains(t, out, "sst")
	assert.Contains(t, out, "lonlat")
	assert.Contains(t, out, "ncscan_scans_total 1")
	assert.Contains(t, out, "ncscan_data_variables_total 1")
}

func TestScanCommandFailure(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "bogus.nc")
	require.NoError(t, os.WriteFile(bogus, []byte("bogus"), 0o644))
	_, _, err := run(t, "scan", bogus)
	assert.ErrorContains(t, err, "1 of 1 files failed")
}
