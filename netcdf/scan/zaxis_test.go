package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
	"github.com/batchatco/go-netcdf-catalog/netcdf/memstore"
)

// levelStore is a 2x3 regular grid with a data variable ta over the
// vertical dimension z.
func levelStore(z string, levels []float64, zattrs ...api.Attribute) *memstore.Store {
	s := memstore.New()
	s.AddDim(z, uint64(len(levels)))
	s.AddDim("lat", 2)
	s.AddDim("lon", 3)
	s.AddVar(z, api.TypeDouble, []string{z}, levels, zattrs...)
	s.AddVar("lat", api.TypeDouble, []string{"lat"}, []float64{-45, 45},
		memstore.Text("units", "degrees_north"))
	s.AddVar("lon", api.TypeDouble, []string{"lon"}, []float64{0, 120, 240},
		memstore.Text("units", "degrees_east"))
	s.AddVar("ta", api.TypeFloat, []string{z, "lat", "lon"}, nil)
	return s
}

func TestScanZAxisTypes(t *testing.T) {
	tests := []struct {
		name  string
		attrs []api.Attribute
		want  catalog.ZAxisType
	}{
		{"plev", []api.Attribute{memstore.Text("units", "Pa")}, catalog.ZAxisPressure},
		{"depth", []api.Attribute{memstore.Text("units", "m"), memstore.Text("standard_name", "depth")},
			catalog.ZAxisDepthBelowSea},
		{"height", []api.Attribute{memstore.Text("units", "m"), memstore.Text("standard_name", "height")},
			catalog.ZAxisHeight},
		{"alt", []api.Attribute{memstore.Text("units", "km"), memstore.Text("long_name", "altitude")},
			catalog.ZAxisAltitude},
		{"soil", []api.Attribute{memstore.Text("units", "cm"), memstore.Text("long_name", "depth below land")},
			catalog.ZAxisDepthBelowLand},
		{"lev", []api.Attribute{memstore.Text("units", "level")}, catalog.ZAxisGeneric},
		{"pres", []api.Attribute{memstore.Text("standard_name", "air_pressure")}, catalog.ZAxisPressure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Scan(levelStore(tt.name, []float64{1, 2}, tt.attrs...), testConfig())
			require.NoError(t, err)
			v := cat.Variable("ta")
			require.NotNil(t, v)
			assert.Equal(t, 321, v.IXYZ)
			z := cat.ZAxis(v.ZAxis)
			assert.Equal(t, tt.want, z.Type)
			assert.Equal(t, 2, z.Size)
			assert.Equal(t, tt.name, z.Name)
			assert.Equal(t, tt.name, z.DimName)
			levels, err := z.Levels.Values()
			require.NoError(t, err)
			assert.Equal(t, []float64{1, 2}, levels)
		})
	}
}

func TestScanZAxisPositive(t *testing.T) {
	cat, err := Scan(levelStore("depth", []float64{5, 15},
		memstore.Text("units", "m"),
		memstore.Text("standard_name", "depth"),
		memstore.Text("positive", "down")), testConfig())
	require.NoError(t, err)
	z := cat.ZAxis(cat.Variable("ta").ZAxis)
	assert.Equal(t, 2, z.Positive)
	assert.Equal(t, "m", z.Units)
	assert.Equal(t, "depth", z.StdName)
}

func TestScanEchamHybrid(t *testing.T) {
	s := levelStore("lev", []float64{1, 2},
		memstore.Text("units", "level"),
		memstore.Text("long_name", "hybrid level at layer midpoints"))
	s.AddDim("ilev", 3)
	s.AddVar("hyai", api.TypeDouble, []string{"ilev"}, []float64{0, 5000, 0})
	s.AddVar("hybi", api.TypeDouble, []string{"ilev"}, []float64{0, 0.5, 1})
	s.AddVar("hyam", api.TypeDouble, []string{"lev"}, []float64{2500, 2500})
	s.AddVar("hybm", api.TypeDouble, []string{"lev"}, []float64{0.25, 0.75})

	cat, err := Scan(s, testConfig())
	require.NoError(t, err)
	require.Len(t, cat.Variables, 1)
	v := cat.Variables[0]
	assert.Equal(t, "ta", v.Name)
	assert.Equal(t, 321, v.IXYZ)
	z := cat.ZAxis(v.ZAxis)
	assert.Equal(t, catalog.ZAxisHybrid, z.Type)
	assert.Equal(t, []float64{0, 5000, 0, 0, 0.5, 1}, z.VCT)
	assert.Empty(t, z.PSName)
	levels, err := z.Levels.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, levels)
}

func TestScanCFHybrid(t *testing.T) {
	s := levelStore("lev", []float64{0.25, 0.75},
		memstore.Text("standard_name", "atmosphere_hybrid_sigma_pressure_coordinate"),
		memstore.Text("formula_terms", "ap: hyam b: hybm ps: aps"),
		memstore.Text("bounds", "lev_bnds"))
	s.AddDim("nb2", 2)
	s.AddDim("ilev", 3)
	s.AddVar("lev_bnds", api.TypeDouble, []string{"lev", "nb2"}, []float64{0, 0.5, 0.5, 1},
		memstore.Text("formula_terms", "ap: hyai b: hybi"))
	s.AddVar("hyai", api.TypeDouble, []string{"ilev"}, []float64{0, 5000, 0})
	s.AddVar("hybi", api.TypeDouble, []string{"ilev"}, []float64{0, 0.5, 1})
	s.AddVar("hyam", api.TypeDouble, []string{"lev"}, []float64{2500, 2500})
	s.AddVar("hybm", api.TypeDouble, []string{"lev"}, []float64{0.25, 0.75})
	s.AddVar("aps", api.TypeFloat, []string{"lat", "lon"}, nil)

	cat, err := Scan(s, testConfig())
	require.NoError(t, err)
	var names []string
	for _, v := range cat.Variables {
		names = append(names, v.Name)
	}
	assert.ElementsMatch(t, []string{"ta", "aps"}, names)

	z := cat.ZAxis(cat.Variable("ta").ZAxis)
	assert.Equal(t, catalog.ZAxisHybrid, z.Type)
	assert.Equal(t, []float64{0, 5000, 0, 0, 0.5, 1}, z.VCT)
	assert.Equal(t, "aps", z.PSName)
	assert.False(t, z.HasP0)
	assert.Equal(t, []float64{0, 0.5}, z.Lower)
	assert.Equal(t, []float64{0.5, 1}, z.Upper)

	ps := cat.ZAxis(cat.Variable("aps").ZAxis)
	assert.Equal(t, catalog.ZAxisSurface, ps.Type)
	assert.Equal(t, 21, cat.Variable("aps").IXYZ)
}

func TestScanCharZAxis(t *testing.T) {
	s := memstore.New()
	s.AddDim("region", 2)
	s.AddDim("nchar", 6)
	s.AddDim("lat", 2)
	s.AddDim("lon", 3)
	s.AddTextVar("region_name", []string{"region", "nchar"}, []string{"north", "south"},
		memstore.Text("standard_name", "region"))
	s.AddVar("lat", api.TypeDouble, []string{"lat"}, []float64{-45, 45},
		memstore.Text("units", "degrees_north"))
	s.AddVar("lon", api.TypeDouble, []string{"lon"}, []float64{0, 120, 240},
		memstore.Text("units", "degrees_east"))
	s.AddVar("tas", api.TypeFloat, []string{"region", "lat", "lon"}, nil,
		memstore.Text("coordinates", "region_name"))

	cat, err := Scan(s, testConfig())
	require.NoError(t, err)
	require.Len(t, cat.Variables, 1)
	v := cat.Variables[0]
	assert.Equal(t, "tas", v.Name)
	assert.Equal(t, 321, v.IXYZ)
	assert.Equal(t, catalog.GridLonLat, cat.Grid(v.Grid).Type)

	z := cat.ZAxis(v.ZAxis)
	assert.Equal(t, catalog.ZAxisChar, z.Type)
	assert.Equal(t, catalog.UInt8, z.Datatype)
	assert.Equal(t, "region_name", z.Name)
	assert.Equal(t, "region", z.DimName)
	assert.Equal(t, []string{"north", "south"}, z.Labels)
	assert.False(t, z.Levels.IsSet())
}
