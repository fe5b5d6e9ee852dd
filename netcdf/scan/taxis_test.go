package scan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
	"github.com/batchatco/go-netcdf-catalog/netcdf/memstore"
)

func TestParseTimeString(t *testing.T) {
	tests := []struct {
		in   string
		want catalog.DateTime
		ok   bool
	}{
		{"2000-01-01", date(2000, 1, 1), true},
		{"2000-01-01 06:30:15.25", catalog.DateTime{Year: 2000, Month: 1, Day: 1, Hour: 6, Minute: 30, Second: 15, Millisecond: 250}, true},
		{"1970-01-01t00:00:00z", date(1970, 1, 1), true},
		{"1-1-2000", date(2000, 1, 1), true},
		{"", catalog.DateTime{}, true},
		{"garbage", catalog.DateTime{}, false},
		{"2000-01", catalog.DateTime{Year: 2000, Month: 1}, false},
	}
	for _, tt := range tests {
		got, ok := parseTimeString(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("parseTimeString(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
		if ok != tt.ok {
			t.Errorf("parseTimeString(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}

func TestParseWRFTime(t *testing.T) {
	want := catalog.DateTime{Year: 2006, Month: 1, Day: 2, Hour: 15, Minute: 4, Second: 5}
	assert.Equal(t, want, parseWRFTime("2006-01-02_15:04:05"))
	assert.Equal(t, want, parseWRFTime("2006-01-02_15:04:05 padding"))
	assert.Equal(t, date(1, 1, 1), parseWRFTime(""))
}

func TestTimeUnits(t *testing.T) {
	assert.Equal(t, catalog.UnitSecond, timeUnit("s"))
	assert.Equal(t, catalog.UnitSecond, timeUnit("seconds"))
	assert.Equal(t, catalog.UnitMonth, timeUnit("calendar_months"))
	assert.Equal(t, catalog.UnitNone, timeUnit("hr"))
	assert.Equal(t, catalog.UnitNone, timeUnit("kelvin"))

	assert.True(t, isTimeUnits(" Days "))
	assert.True(t, isTimeAxisUnits("hours since 2000-01-01"))
	assert.True(t, isTimeAxisUnits("day as %Y%m%d.%f"))
	assert.False(t, isTimeAxisUnits("hours"))
	assert.False(t, isTimeAxisUnits("K since 2000"))
}

func TestSetBaseTime(t *testing.T) {
	tests := []struct {
		units string
		ok    bool
		want  catalog.TimeAxis
	}{
		{"hours since 2000-01-01 00:00:00", true,
			catalog.TimeAxis{Type: catalog.TimeRelative, Unit: catalog.UnitHour, Reference: date(2000, 1, 1)}},
		{"  Days since 1-1-1", true,
			catalog.TimeAxis{Type: catalog.TimeRelative, Unit: catalog.UnitDay, Reference: date(1, 1, 1)}},
		{"day as %Y%m%d.%f", true,
			catalog.TimeAxis{Type: catalog.TimeAbsolute, Unit: catalog.UnitDay}},
		{"month as %Y%m.%f", true,
			catalog.TimeAxis{Type: catalog.TimeAbsolute, Unit: catalog.UnitMonth}},
		{"day as %Y-%m-%d", true,
			catalog.TimeAxis{Type: catalog.TimeAbsolute, Unit: catalog.UnitNone}},
		{"days", true,
			catalog.TimeAxis{Type: catalog.TimeAbsolute, Unit: catalog.UnitDay}},
		{"fortnights since 2000-01-01", false, catalog.TimeAxis{}},
	}
	for _, tt := range tests {
		t.Run(tt.units, func(t *testing.T) {
			s := newScanner(memstore.New(), testConfig())
			var axis catalog.TimeAxis
			ok := s.setBaseTime(tt.units, &axis)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, axis)
		})
	}
}

// timeStore is a scalar series x over n steps of a time variable.
func timeStore(vals []float64, timeAttrs ...api.Attribute) *memstore.Store {
	s := memstore.New()
	s.AddUnlimitedDim("time", uint64(len(vals)))
	s.AddVar("time", api.TypeDouble, []string{"time"}, vals, timeAttrs...)
	s.AddVar("x", api.TypeFloat, []string{"time"}, nil)
	return s
}

func stepTimes(cat *catalog.Catalog) []catalog.DateTime {
	var ret []catalog.DateTime
	for _, ts := range cat.Timesteps {
		ret = append(ret, ts.Time)
	}
	return ret
}

func TestScanCalendars(t *testing.T) {
	tests := []struct {
		name     string
		units    string
		calendar string
		vals     []float64
		wantCal  catalog.Calendar
		want     []catalog.DateTime
	}{
		{"360_day", "days since 2000-01-01", "360_day", []float64{0, 30, 359},
			catalog.Calendar360Days, []catalog.DateTime{date(2000, 1, 1), date(2000, 2, 1), date(2000, 12, 30)}},
		{"noleap", "days since 2000-02-28", "noleap", []float64{0, 1},
			catalog.Calendar365Days, []catalog.DateTime{date(2000, 2, 28), date(2000, 3, 1)}},
		{"default", "days since 2000-02-28", "", []float64{0, 1},
			catalog.CalendarStandard, []catalog.DateTime{date(2000, 2, 28), date(2000, 2, 29)}},
		{"julian", "days since 1582-10-04", "julian", []float64{1},
			catalog.CalendarJulian, []catalog.DateTime{date(1582, 10, 5)}},
		{"reform", "days since 1582-10-04", "standard", []float64{1},
			catalog.CalendarStandard, []catalog.DateTime{date(1582, 10, 15)}},
		{"proleptic", "days since 1582-10-04", "proleptic_gregorian", []float64{1},
			catalog.CalendarProleptic, []catalog.DateTime{date(1582, 10, 5)}},
		{"months", "months since 2000-01-31", "standard", []float64{1},
			catalog.CalendarStandard, []catalog.DateTime{date(2000, 2, 29)}},
		{"none", "hours since 2000-01-01", "none", []float64{24},
			catalog.CalendarNone, []catalog.DateTime{date(2000, 1, 2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := []api.Attribute{memstore.Text("units", tt.units)}
			if tt.calendar != "" {
				attrs = append(attrs, memstore.Text("calendar", tt.calendar))
			}
			cat, err := Scan(timeStore(tt.vals, attrs...), testConfig())
			require.NoError(t, err)
			assert.Equal(t, catalog.TimeRelative, cat.TimeAxis.Type)
			assert.Equal(t, tt.wantCal, cat.TimeAxis.Calendar)
			if diff := cmp.Diff(tt.want, stepTimes(cat)); diff != "" {
				t.Errorf("timesteps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanAbsoluteTime(t *testing.T) {
	cat, err := Scan(timeStore([]float64{20000101.5, 20000102},
		memstore.Text("units", "day as %Y%m%d.%f")), testConfig())
	require.NoError(t, err)
	ta := cat.TimeAxis
	assert.Equal(t, catalog.TimeAbsolute, ta.Type)
	assert.Equal(t, catalog.UnitDay, ta.Unit)
	assert.Equal(t, catalog.CalendarUndefined, ta.Calendar)
	want := []catalog.DateTime{
		{Year: 2000, Month: 1, Day: 1, Hour: 12},
		date(2000, 1, 2),
	}
	assert.Equal(t, want, stepTimes(cat))

	require.Len(t, cat.Variables, 1)
	v := cat.Variables[0]
	assert.Equal(t, "x", v.Name)
	g := cat.Grid(v.Grid)
	assert.Equal(t, catalog.GridGeneric, g.Type)
	assert.Equal(t, 1, g.Size)
}

func TestScanUnsupportedTimeUnits(t *testing.T) {
	cat, err := Scan(timeStore([]float64{0, 1},
		memstore.Text("units", "fortnights since 2000-01-01")), testConfig())
	require.NoError(t, err)
	assert.Contains(t, cat.Diagnostics, "WARN Unsupported TIMEUNIT: fortnights since 2000-01-01!")
	require.Len(t, cat.Timesteps, 2)
	assert.True(t, cat.Timesteps[1].Time.IsZero())
}

func TestScanBadTimeReference(t *testing.T) {
	s := timeStore([]float64{0, 1}, memstore.Text("units", "days since garbage"))
	s.AddVar("y", api.TypeFloat, []string{"time"}, nil)

	cat, err := Scan(s, testConfig())
	require.NoError(t, err)
	assert.Equal(t, catalog.TimeRelative, cat.TimeAxis.Type)
	assert.True(t, cat.TimeAxis.Reference.IsZero())
	var n int
	for _, d := range cat.Diagnostics {
		if d == "WARN Unsupported time reference: garbage!" {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestScanTimeBounds(t *testing.T) {
	s := memstore.New()
	s.AddUnlimitedDim("time", 2)
	s.AddDim("nv", 2)
	s.AddVar("time", api.TypeDouble, []string{"time"}, []float64{12, 36},
		memstore.Text("units", "hours since 2000-01-01"), memstore.Text("bounds", "time_bnds"))
	s.AddVar("time_bnds", api.TypeDouble, []string{"time", "nv"}, []float64{0, 24, 24, 48})
	s.AddVar("x", api.TypeFloat, []string{"time"}, nil)

	cat, err := Scan(s, testConfig())
	require.NoError(t, err)
	require.Len(t, cat.Variables, 1)
	assert.True(t, cat.TimeAxis.HasBounds)
	assert.False(t, cat.TimeAxis.Climatology)
	require.Len(t, cat.Timesteps, 2)
	ts := cat.Timesteps[1]
	assert.Equal(t, date(2000, 1, 2), ts.Lower)
	assert.Equal(t, date(2000, 1, 3), ts.Upper)
	assert.Equal(t, catalog.DateTime{Year: 2000, Month: 1, Day: 2, Hour: 12}, ts.Time)
}

func TestScanForecast(t *testing.T) {
	s := timeStore([]float64{0, 6}, memstore.Text("units", "hours since 2000-01-01"))
	s.AddVar("lead", api.TypeDouble, []string{"time"}, []float64{0, 6},
		memstore.Text("units", "hours"), memstore.Text("standard_name", "forecast_period"))

	cat, err := Scan(s, testConfig())
	require.NoError(t, err)
	assert.Nil(t, cat.Variable("lead"))
	assert.Equal(t, catalog.TimeForecast, cat.TimeAxis.Type)
	assert.Equal(t, catalog.UnitHour, cat.TimeAxis.ForecastUnit)
	require.Len(t, cat.Timesteps, 2)
	assert.Equal(t, 6.0, cat.Timesteps[1].ForecastPeriod)
}

func TestScanWRFTimes(t *testing.T) {
	s := memstore.New()
	s.AddUnlimitedDim("Time", 2)
	s.AddDim("DateStrLen", 19)
	s.AddDim("south_north", 2)
	s.AddDim("west_east", 3)
	s.AddTextVar("Times", []string{"Time", "DateStrLen"},
		[]string{"2006-01-02_15:04:05", "2006-01-02_18:04:05"})
	s.AddVar("T2", api.TypeFloat, []string{"Time", "south_north", "west_east"}, nil)

	cat, err := Scan(s, testConfig())
	require.NoError(t, err)
	require.Len(t, cat.Variables, 1)
	assert.Equal(t, "T2", cat.Variables[0].Name)

	ta := cat.TimeAxis
	assert.Equal(t, catalog.TimeAbsolute, ta.Type)
	assert.Equal(t, catalog.UnitDay, ta.Unit)
	assert.Equal(t, "Times", ta.Name)
	want := []catalog.DateTime{
		{Year: 2006, Month: 1, Day: 2, Hour: 15, Minute: 4, Second: 5},
		{Year: 2006, Month: 1, Day: 2, Hour: 18, Minute: 4, Second: 5},
	}
	assert.Equal(t, want, stepTimes(cat))

	g := cat.Grid(cat.Variables[0].Grid)
	assert.Equal(t, catalog.GridGeneric, g.Type)
	assert.Equal(t, 3, g.XSize)
	assert.Equal(t, 2, g.YSize)
}

func TestScanMissingTimeVar(t *testing.T) {
	s := memstore.New()
	s.AddUnlimitedDim("rec", 3)
	s.AddVar("x", api.TypeFloat, []string{"rec"}, nil)

	cat, err := Scan(s, testConfig())
	require.NoError(t, err)
	assert.Contains(t, cat.Diagnostics, "WARN Time variable >rec< not found!")
	require.Len(t, cat.Timesteps, 3)
	assert.True(t, cat.Timesteps[2].Time.IsZero())
	assert.Equal(t, 2, cat.Timesteps[2].StoreIndex)
}
