package netcdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
	"github.com/batchatco/go-netcdf-catalog/netcdf/ncstore"
	"github.com/batchatco/go-netcdf-catalog/netcdf/scan"
)

func writeFile(t *testing.T) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "tas.nc")
	f, err := os.Create(fname)
	require.NoError(t, err)
	defer f.Close()

	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{0, 2, 3})
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddAttribute("lat", "standard_name", "latitude")
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddAttribute("lon", "standard_name", "longitude")
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "hours since 2000-01-01 00:00:00")
	h.AddAttribute("time", "calendar", "standard")
	h.AddVariable("tas", []string{"time", "lat", "lon"}, []float32{0})
	h.AddAttribute("tas", "units", "K")
	h.AddAttribute("tas", "code", []int32{167})
	h.Define()

	cf, err := cdf.Create(f, h)
	require.NoError(t, err)
	_, err = cf.Writer("lat", []int{0}, []int{2}).Write([]float64{-45, 45})
	require.NoError(t, err)
	_, err = cf.Writer("lon", []int{0}, []int{3}).Write([]float64{0, 120, 240})
	require.NoError(t, err)
	_, err = cf.Writer("time", nil, nil).Write([]float64{0, 6})
	require.NoError(t, err)
	_, err = cf.Writer("tas", nil, nil).Write(make([]float32, 12))
	require.NoError(t, err)
	require.NoError(t, cdf.UpdateNumRecs(f))
	return fname
}

// writeBoundsFile writes two daily forecast records with time bounds.
// Every record variable is read past its first record.
func writeBoundsFile(t *testing.T) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "bnds.nc")
	f, err := os.Create(fname)
	require.NoError(t, err)
	defer f.Close()

	h := cdf.NewHeader([]string{"time", "nv", "lat", "lon"}, []int{0, 2, 2, 3})
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "hours since 2000-01-01")
	h.AddAttribute("time", "bounds", "time_bnds")
	h.AddVariable("time_bnds", []string{"time", "nv"}, []float64{0})
	h.AddVariable("lead", []string{"time"}, []float64{0})
	h.AddAttribute("lead", "units", "hours")
	h.AddAttribute("lead", "standard_name", "forecast_period")
	h.AddVariable("pr", []string{"time", "lat", "lon"}, []float32{0})
	h.Define()

	cf, err := cdf.Create(f, h)
	require.NoError(t, err)
	_, err = cf.Writer("lat", []int{0}, []int{2}).Write([]float64{-45, 45})
	require.NoError(t, err)
	_, err = cf.Writer("lon", []int{0}, []int{3}).Write([]float64{0, 120, 240})
	require.NoError(t, err)
	_, err = cf.Writer("time", nil, nil).Write([]float64{12, 36})
	require.NoError(t, err)
	_, err = cf.Writer("time_bnds", nil, nil).Write([]float64{0, 24, 24, 48})
	require.NoError(t, err)
	_, err = cf.Writer("lead", nil, nil).Write([]float64{12, 36})
	require.NoError(t, err)
	_, err = cf.Writer("pr", nil, nil).Write(make([]float32, 12))
	require.NoError(t, err)
	require.NoError(t, cdf.UpdateNumRecs(f))
	return fname
}

func TestScanRecordBounds(t *testing.T) {
	cat, err := Scan(writeBoundsFile(t), scan.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, cat.Variables, 1)
	assert.Equal(t, "pr", cat.Variables[0].Name)

	ta := cat.TimeAxis
	assert.True(t, ta.HasBounds)
	assert.Equal(t, catalog.TimeForecast, ta.Type)
	assert.Equal(t, catalog.UnitHour, ta.ForecastUnit)

	require.Len(t, cat.Timesteps, 2)
	ts := cat.Timesteps[1]
	assert.Equal(t, catalog.DateTime{Year: 2000, Month: 1, Day: 2, Hour: 12}, ts.Time)
	assert.Equal(t, catalog.DateTime{Year: 2000, Month: 1, Day: 2}, ts.Lower)
	assert.Equal(t, catalog.DateTime{Year: 2000, Month: 1, Day: 3}, ts.Upper)
	assert.Equal(t, 36.0, ts.ForecastPeriod)
	assert.Equal(t, 12.0, cat.Timesteps[0].ForecastPeriod)
}

func TestScanRecordStepQuery(t *testing.T) {
	cfg := scan.DefaultConfig()
	cfg.Query = &api.Filter{Steps: []int{2}}
	cat, err := Scan(writeBoundsFile(t), cfg)
	require.NoError(t, err)

	require.Len(t, cat.Timesteps, 1)
	ts := cat.Timesteps[0]
	assert.Equal(t, 0, ts.Index)
	assert.Equal(t, 1, ts.StoreIndex)
	assert.Equal(t, catalog.DateTime{Year: 2000, Month: 1, Day: 2}, ts.Lower)
	assert.Equal(t, catalog.DateTime{Year: 2000, Month: 1, Day: 3}, ts.Upper)
	assert.Equal(t, 36.0, ts.ForecastPeriod)
}

func TestScan(t *testing.T) {
	cat, err := Scan(writeFile(t), scan.DefaultConfig())
	require.NoError(t, err)

	require.Len(t, cat.Variables, 1)
	tas := cat.Variables[0]
	assert.Equal(t, "tas", tas.Name)
	assert.Equal(t, "K", tas.Units)
	assert.Equal(t, 167, tas.Code)
	assert.True(t, tas.TimeVarying)

	g := cat.Grid(tas.Grid)
	require.NotNil(t, g)
	assert.Equal(t, catalog.GridLonLat, g.Type)
	assert.Equal(t, 3, g.XSize)
	assert.Equal(t, 2, g.YSize)
	lons, err := g.X.Values.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 120, 240}, lons)

	assert.Equal(t, catalog.TimeRelative, cat.TimeAxis.Type)
	assert.Equal(t, catalog.UnitHour, cat.TimeAxis.Unit)
	require.Len(t, cat.Timesteps, 2)
	assert.Equal(t, catalog.DateTime{Year: 2000, Month: 1, Day: 1, Hour: 6}, cat.Timesteps[1].Time)
}

func TestOpenLazy(t *testing.T) {
	cfg := scan.DefaultConfig()
	cfg.LazyGrids = true
	d, err := Open(writeFile(t), cfg)
	require.NoError(t, err)
	defer d.Close()

	g := d.Grid(d.Variables[0].Grid)
	require.NotNil(t, g)
	assert.True(t, g.Y.Values.IsDeferred())
	lats, err := g.Y.Values.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{-45, 45}, lats)
}

func TestScanUnknown(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "bogus")
	require.NoError(t, os.WriteFile(fname, []byte("bogus"), 0o644))
	_, err := Scan(fname, scan.DefaultConfig())
	assert.ErrorIs(t, err, ncstore.ErrUnknown)
}
