// Package ncstore implements the array store over NetCDF files, classic
// (CDF) or NetCDF4 (HDF5).
package ncstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/batchatco/go-native-netcdf/netcdf"
	ncapi "github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/cdf"
	"github.com/spf13/cast"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
)

const (
	kindCDF = 'C'
	kindHDF = 0x89
)

var ErrUnknown = errors.New("not a CDF or HDF5 file")

// Store is an opened NetCDF file.
type Store struct {
	group     ncapi.Group
	format    api.Format
	dims      []api.Dim
	unlimited int
	vars      []api.Var
	getters   []ncapi.VarGetter
	attrs     []api.Attribute
	subgroups []string

	mu      sync.Mutex
	records map[int][]any // leaves of record variables, by variable id
}

var _ api.Store = (*Store)(nil)

// Open opens a NetCDF file by name and reads its header.
func Open(fname string) (*Store, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	kind, err := getKind(file)
	if err != nil {
		return nil, ErrUnknown
	}
	s := &Store{unlimited: -1}
	var numRecs int64 = -1
	switch kind {
	case kindCDF:
		s.format = api.FormatClassic
		numRecs = recordCount(file)
	case kindHDF:
		s.format = api.FormatNetCDF4
	default:
		return nil, ErrUnknown
	}
	g, err := netcdf.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("ncstore: open %s: %w", fname, err)
	}
	s.group = g
	if err := s.load(numRecs); err != nil {
		g.Close()
		return nil, fmt.Errorf("ncstore: open %s: %w", fname, err)
	}
	return s, nil
}

func getKind(file io.ReadSeeker) (byte, error) {
	var b [1]byte
	n, err := file.Read(b[:])
	if n == 0 {
		return 0, err
	}
	_, err = file.Seek(0, io.SeekStart)
	return b[0], err
}

// recordCount returns the number of records of a classic file, or -1
// when the file has no record dimension or its header cannot be read.
func recordCount(file *os.File) int64 {
	fi, err := file.Stat()
	if err != nil {
		return -1
	}
	f, err := cdf.Open(readOnly{file})
	if err != nil {
		return -1
	}
	for _, n := range f.Header.Lengths("") {
		if n == 0 {
			return f.Header.NumRecs(fi.Size())
		}
	}
	return -1
}

// readOnly satisfies cdf.ReaderWriterAt for a file opened for reading.
type readOnly struct {
	io.ReaderAt
}

func (readOnly) WriteAt([]byte, int64) (int, error) {
	return 0, os.ErrPermission
}

func (s *Store) load(numRecs int64) error {
	g := s.group
	index := map[string]int{}
	for _, name := range g.ListDimensions() {
		n, _ := g.GetDimension(name)
		if n == 0 && numRecs >= 0 && s.unlimited < 0 {
			s.unlimited = len(s.dims)
			n = uint64(numRecs)
		}
		index[name] = len(s.dims)
		s.dims = append(s.dims, api.Dim{Name: name, Len: n})
	}

	for _, name := range g.ListVariables() {
		vg, err := g.GetVarGetter(name)
		if err != nil {
			return err
		}
		v := api.Var{Name: name, Type: s.varType(vg.Type())}
		if v.Type == api.TypeCompound {
			v.Compound = s.compoundMembers(vg.Type())
		}
		shape := vg.Shape()
		for i, dn := range vg.Dimensions() {
			id, ok := index[dn]
			if !ok {
				// NetCDF4 files may use dimensions without a dimension scale.
				var n uint64
				if i < len(shape) {
					n = uint64(shape[i])
				}
				id = len(s.dims)
				index[dn] = id
				s.dims = append(s.dims, api.Dim{Name: dn, Len: n})
			}
			v.Dims = append(v.Dims, id)
		}
		v.Attrs = convertAttrs(vg.Attributes())
		s.vars = append(s.vars, v)
		s.getters = append(s.getters, vg)
	}
	s.attrs = convertAttrs(g.Attributes())
	s.subgroups = g.ListSubgroups()
	return nil
}

// varType resolves a CDL type name, following user-defined types.
func (s *Store) varType(cdl string) api.Type {
	if t := api.ParseCDLType(cdl); t != api.TypeUnknown {
		return t
	}
	if strings.HasPrefix(cdl, "compound") {
		return api.TypeCompound
	}
	if def, ok := s.group.GetType(cdl); ok && strings.HasPrefix(def, "compound") {
		return api.TypeCompound
	}
	return api.TypeUnknown
}

// compoundMembers parses the member types of a CDL compound definition:
//
//	compound {
//		float r;
//		float i;
//	}
func (s *Store) compoundMembers(cdl string) []api.Type {
	if def, ok := s.group.GetType(cdl); ok {
		cdl = def
	}
	open := strings.Index(cdl, "{")
	end := strings.LastIndex(cdl, "}")
	if open < 0 || end < open {
		return nil
	}
	var members []api.Type
	for _, line := range strings.Split(cdl[open+1:end], ";") {
		f := strings.Fields(line)
		if len(f) < 2 {
			continue
		}
		members = append(members, api.ParseCDLType(f[0]))
	}
	return members
}

func convertAttrs(am ncapi.AttributeMap) []api.Attribute {
	if am == nil {
		return nil
	}
	keys := am.Keys()
	attrs := make([]api.Attribute, 0, len(keys))
	for _, k := range keys {
		val, ok := am.Get(k)
		if !ok {
			continue
		}
		cdl, _ := am.GetType(k)
		attrs = append(attrs, convertAttr(k, cdl, val))
	}
	return attrs
}

// convertAttr normalizes an attribute value: scalars become 1-length
// slices, a single string stays a string.
func convertAttr(name, cdl string, val any) api.Attribute {
	t := api.ParseCDLType(cdl)
	switch v := val.(type) {
	case string:
		if t == api.TypeUnknown {
			t = api.TypeChar
		}
		return api.Attribute{Name: name, Type: t, Value: v}
	case []string:
		if t == api.TypeUnknown {
			t = api.TypeString
		}
		if len(v) == 1 {
			return api.Attribute{Name: name, Type: t, Value: v[0]}
		}
		return api.Attribute{Name: name, Type: t, Value: v}
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Slice {
		sl := reflect.MakeSlice(reflect.SliceOf(rv.Type()), 1, 1)
		sl.Index(0).Set(rv)
		val = sl.Interface()
	}
	if t == api.TypeUnknown {
		t = goSliceType(val)
	}
	return api.Attribute{Name: name, Type: t, Value: val}
}

func goSliceType(val any) api.Type {
	switch val.(type) {
	case []int8:
		return api.TypeByte
	case []uint8:
		return api.TypeUByte
	case []int16:
		return api.TypeShort
	case []uint16:
		return api.TypeUShort
	case []int32:
		return api.TypeInt
	case []uint32:
		return api.TypeUInt
	case []int64:
		return api.TypeInt64
	case []uint64:
		return api.TypeUInt64
	case []float32:
		return api.TypeFloat
	case []float64:
		return api.TypeDouble
	}
	return api.TypeUnknown
}

func (s *Store) Format() api.Format { return s.format }

func (s *Store) Dims() []api.Dim { return s.dims }

func (s *Store) Unlimited() int { return s.unlimited }

func (s *Store) Vars() []api.Var { return s.vars }

func (s *Store) Attributes() []api.Attribute { return s.attrs }

func (s *Store) Subgroups() []string { return s.subgroups }

func (s *Store) Close() error {
	if s.group != nil {
		s.group.Close()
		s.group = nil
	}
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
	return nil
}

// read returns the raw, possibly nested, values of a window.
func (s *Store) read(varID int, start, count []int) (any, error) {
	if varID < 0 || varID >= len(s.getters) {
		return nil, fmt.Errorf("ncstore: variable %d: %w", varID, api.ErrNotFound)
	}
	vg := s.getters[varID]
	name := s.vars[varID].Name
	shape := vg.Shape()
	if start == nil && count == nil {
		if len(shape) > 0 && shape[0] == 0 {
			return nil, nil
		}
		return decode(name, vg.Values)
	}
	if len(start) != len(shape) || len(count) != len(shape) {
		return nil, fmt.Errorf("ncstore: %s: rank %d window for rank %d: %w",
			s.vars[varID].Name, len(start), len(shape), api.ErrBadWindow)
	}
	if len(shape) == 0 {
		return decode(name, vg.Values)
	}
	begin := make([]int64, len(start))
	end := make([]int64, len(start))
	for i := range start {
		begin[i] = int64(start[i])
		end[i] = int64(start[i] + count[i])
		if start[i] < 0 || count[i] < 0 || end[i] > shape[i] {
			return nil, fmt.Errorf("ncstore: %s: window [%d,%d) of %d: %w",
				s.vars[varID].Name, begin[i], end[i], shape[i], api.ErrBadWindow)
		}
		if count[i] == 0 {
			return nil, nil
		}
	}
	if s.isRecordVar(varID) {
		return s.recordWindow(varID, shape, start, count)
	}
	return decode(name, func() (any, error) {
		return vg.GetSliceMD(begin, end)
	})
}

// decode runs a decoder call and returns its panics as ErrCorrupt.
func decode(name string, f func() (any, error)) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			val, err = nil, fmt.Errorf("ncstore: %s: %v: %w", name, r, api.ErrCorrupt)
		}
	}()
	return f()
}

func (s *Store) isRecordVar(varID int) bool {
	dims := s.vars[varID].Dims
	return s.format == api.FormatClassic && s.unlimited >= 0 &&
		len(dims) > 0 && dims[0] == s.unlimited
}

// recordWindow cuts a window out of the values of a classic record
// variable. The classic decoder only slices records from the first one, so
// the whole variable is read once and kept.
func (s *Store) recordWindow(varID int, shape []int64, start, count []int) (any, error) {
	leaves, err := s.recordLeaves(varID)
	if err != nil {
		return nil, err
	}
	name := s.vars[varID].Name
	dims := make([]int, len(shape))
	for i, n := range shape {
		dims[i] = int(n)
	}
	// Char leaves are rows of the last dimension.
	rank := len(dims)
	text := s.vars[varID].Type == api.TypeChar
	if text {
		rank--
	}
	offsets := api.WindowOffsets(dims[:rank], start[:rank], count[:rank])
	out := make([]any, 0, len(offsets))
	for _, off := range offsets {
		if off >= len(leaves) {
			return nil, fmt.Errorf("ncstore: %s: value %d of %d: %w", name, off, len(leaves), api.ErrCorrupt)
		}
		leaf := leaves[off]
		if text {
			row, ok := leaf.(string)
			if !ok {
				return nil, fmt.Errorf("ncstore: %s is not text: %w", name, api.ErrBadWindow)
			}
			leaf = clip(row, start[rank], count[rank])
		}
		out = append(out, leaf)
	}
	return out, nil
}

func (s *Store) recordLeaves(varID int) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if leaves, ok := s.records[varID]; ok {
		return leaves, nil
	}
	raw, err := decode(s.vars[varID].Name, s.getters[varID].Values)
	if err != nil {
		return nil, err
	}
	var leaves []any
	_ = flatten(reflect.ValueOf(raw), func(v reflect.Value) error {
		leaves = append(leaves, v.Interface())
		return nil
	})
	if s.records == nil {
		s.records = map[int][]any{}
	}
	s.records[varID] = leaves
	return leaves, nil
}

// clip returns the bytes [start, start+n) of row, bounded by its length.
func clip(row string, start, n int) string {
	if start >= len(row) {
		return ""
	}
	return row[start:min(len(row), start+n)]
}

func (s *Store) ReadFloat64(varID int, start, count []int) ([]float64, error) {
	raw, err := s.read(varID, start, count)
	if err != nil {
		return nil, err
	}
	var out []float64
	err = flatten(reflect.ValueOf(raw), func(v reflect.Value) error {
		x, err := cast.ToFloat64E(v.Interface())
		if err != nil {
			return fmt.Errorf("ncstore: %s: %w", s.vars[varID].Name, err)
		}
		out = append(out, x)
		return nil
	})
	return out, err
}

func (s *Store) ReadInt64(varID int, start, count []int) ([]int64, error) {
	raw, err := s.read(varID, start, count)
	if err != nil {
		return nil, err
	}
	var out []int64
	err = flatten(reflect.ValueOf(raw), func(v reflect.Value) error {
		switch v.Kind() {
		case reflect.Float32, reflect.Float64:
			out = append(out, int64(v.Float()))
			return nil
		}
		x, err := cast.ToInt64E(v.Interface())
		if err != nil {
			return fmt.Errorf("ncstore: %s: %w", s.vars[varID].Name, err)
		}
		out = append(out, x)
		return nil
	})
	return out, err
}

func (s *Store) ReadText(varID int, start, count []int) ([]string, error) {
	raw, err := s.read(varID, start, count)
	if err != nil {
		return nil, err
	}
	var rows []string
	err = flatten(reflect.ValueOf(raw), func(v reflect.Value) error {
		if v.Kind() != reflect.String {
			return fmt.Errorf("ncstore: %s is not text: %w", s.vars[varID].Name, api.ErrBadWindow)
		}
		rows = append(rows, strings.TrimRight(v.String(), "\x00"))
		return nil
	})
	return rows, err
}

// flatten walks nested slices in row-major order and calls fn on every
// leaf. Strings are leaves.
func flatten(v reflect.Value, fn func(reflect.Value) error) error {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return flatten(v.Elem(), fn)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := flatten(v.Index(i), fn); err != nil {
				return err
			}
		}
		return nil
	}
	return fn(v)
}
