package ncstore

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
)

// writeClassic writes a small classic file with a record dimension.
func writeClassic(t *testing.T) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "classic.nc")
	f, err := os.Create(fname)
	require.NoError(t, err)
	defer f.Close()

	h := cdf.NewHeader(
		[]string{"time", "lat", "lon", "nchar"},
		[]int{0, 2, 3, 4})
	h.AddAttribute("", "institution", "ncscan")
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "hours since 2000-01-01 00:00:00")
	h.AddVariable("tas", []string{"time", "lat", "lon"}, []float32{0})
	h.AddAttribute("tas", "missing_value", []float32{-999})
	h.AddAttribute("tas", "code", []int32{167})
	h.AddVariable("name", []string{"lat", "nchar"}, "")
	h.Define()

	cf, err := cdf.Create(f, h)
	require.NoError(t, err)
	write := func(name string, data any) {
		end := cf.Header.Lengths(name)
		start := make([]int, len(end))
		_, err := cf.Writer(name, start, end).Write(data)
		require.NoError(t, err, name)
	}
	write("lat", []float64{-45, 45})
	write("lon", []float64{0, 120, 240})
	write("name", "abc\x00defg")
	_, err = cf.Writer("time", nil, nil).Write([]float64{0, 6})
	require.NoError(t, err)
	tas := make([]float32, 12)
	for i := range tas {
		tas[i] = float32(i)
	}
	_, err = cf.Writer("tas", nil, nil).Write(tas)
	require.NoError(t, err)
	require.NoError(t, cdf.UpdateNumRecs(f))
	return fname
}

func varID(t *testing.T, s *Store, name string) int {
	t.Helper()
	for i, v := range s.Vars() {
		if v.Name == name {
			return i
		}
	}
	t.Fatalf("no variable %s", name)
	return -1
}

func TestOpenClassic(t *testing.T) {
	s, err := Open(writeClassic(t))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, api.FormatClassic, s.Format())
	require.Len(t, s.Dims(), 4)
	u := s.Unlimited()
	require.GreaterOrEqual(t, u, 0)
	assert.Equal(t, "time", s.Dims()[u].Name)
	assert.EqualValues(t, 2, s.Dims()[u].Len)

	tas := s.Vars()[varID(t, s, "tas")]
	assert.Equal(t, api.TypeFloat, tas.Type)
	require.Len(t, tas.Dims, 3)
	assert.Equal(t, u, tas.Dims[0])

	attrs := map[string]api.Attribute{}
	for _, a := range tas.Attrs {
		attrs[a.Name] = a
	}
	assert.Equal(t, api.TypeFloat, attrs["missing_value"].Type)
	assert.Equal(t, []float32{-999}, attrs["missing_value"].Value)
	assert.Equal(t, api.TypeInt, attrs["code"].Type)

	require.Len(t, s.Attributes(), 1)
	assert.Equal(t, "ncscan", s.Attributes()[0].Value)
	assert.Empty(t, s.Subgroups())
}

func TestReadWindows(t *testing.T) {
	s, err := Open(writeClassic(t))
	require.NoError(t, err)
	defer s.Close()

	lon, err := s.ReadFloat64(varID(t, s, "lon"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 120, 240}, lon)

	tas := varID(t, s, "tas")
	step, err := s.ReadFloat64(tas, []int{1, 0, 0}, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 7, 8, 9, 10, 11}, step)

	col, err := s.ReadInt64(tas, []int{0, 1, 2}, []int{2, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 11}, col)

	times, err := s.ReadFloat64(varID(t, s, "time"), []int{1}, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, times)

	rows, err := s.ReadText(varID(t, s, "name"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "defg"}, rows)
}

func TestBadWindow(t *testing.T) {
	s, err := Open(writeClassic(t))
	require.NoError(t, err)
	defer s.Close()

	lon := varID(t, s, "lon")
	_, err = s.ReadFloat64(lon, []int{2}, []int{2})
	assert.ErrorIs(t, err, api.ErrBadWindow)
	_, err = s.ReadFloat64(lon, []int{0, 0}, []int{1, 1})
	assert.ErrorIs(t, err, api.ErrBadWindow)
	_, err = s.ReadFloat64(99, nil, nil)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestOpenUnknown(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus")
	require.NoError(t, os.WriteFile(bogus, []byte("bogus"), 0o644))
	_, err := Open(bogus)
	assert.ErrorIs(t, err, ErrUnknown)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Open(empty)
	assert.ErrorIs(t, err, ErrUnknown)

	_, err = Open(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestConvertAttr(t *testing.T) {
	a := convertAttr("scale_factor", "double", 0.5)
	assert.Equal(t, api.TypeDouble, a.Type)
	assert.Equal(t, []float64{0.5}, a.Value)

	a = convertAttr("n", "", int16(3))
	assert.Equal(t, api.TypeShort, a.Type)
	assert.Equal(t, []int16{3}, a.Value)

	a = convertAttr("flags", "string", []string{"a", "b"})
	assert.Equal(t, api.TypeString, a.Type)
	assert.Equal(t, []string{"a", "b"}, a.Value)

	a = convertAttr("title", "", "hello")
	assert.Equal(t, api.TypeChar, a.Type)
	assert.Equal(t, 5, a.Len())
}

func TestFlatten(t *testing.T) {
	var got []float64
	err := flatten(reflect.ValueOf([][]int16{{1, 2}, {3, 4}}), func(v reflect.Value) error {
		got = append(got, float64(v.Int()))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, got)
}

func TestReadRecordWindows(t *testing.T) {
	s, err := Open(writeClassic(t))
	require.NoError(t, err)
	defer s.Close()

	tas := varID(t, s, "tas")
	assert.True(t, s.isRecordVar(tas))
	assert.False(t, s.isRecordVar(varID(t, s, "lat")))

	for range 2 {
		last, err := s.ReadFloat64(tas, []int{1, 1, 1}, []int{1, 1, 2})
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 11}, last)

		first, err := s.ReadFloat64(tas, []int{0, 0, 0}, []int{1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, []float64{0}, first)
	}
	assert.Len(t, s.records, 1)

	times, err := s.ReadInt64(varID(t, s, "time"), []int{0}, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 6}, times)

	empty, err := s.ReadFloat64(tas, []int{1, 0, 0}, []int{0, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodePanic(t *testing.T) {
	val, err := decode("tas", func() (any, error) {
		var r io.Reader
		_, err := r.Read(nil)
		return nil, err
	})
	assert.Nil(t, val)
	assert.ErrorIs(t, err, api.ErrCorrupt)
	assert.Contains(t, err.Error(), "ncstore: tas: ")

	val, err = decode("tas", func() (any, error) { return []float32{1}, nil })
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, val)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "bc", clip("abcd", 1, 2))
	assert.Equal(t, "cd", clip("abcd", 2, 5))
	assert.Equal(t, "", clip("abcd", 4, 1))
}
