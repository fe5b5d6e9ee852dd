// Package memstore is an in-memory array store. It backs synthetic
// datasets in tests and in tools that build catalogs without a file.
package memstore

import (
	"fmt"
	"strings"

	"github.com/batchatco/go-netcdf-catalog/internal"
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
)

type variable struct {
	api.Var
	data []float64
	// text holds one row per index of all but the last dimension
	text []string
}

// Store is a mutable in-memory dataset. It is not safe for concurrent
// modification; reads may run concurrently once it is built.
type Store struct {
	format    api.Format
	dims      []api.Dim
	unlimited int
	vars      []variable
	attrs     []api.Attribute
	subgroups []string
	readErr   error
}

var _ api.Store = (*Store)(nil)

func New() *Store {
	return &Store{unlimited: -1}
}

func (s *Store) SetFormat(f api.Format) *Store {
	s.format = f
	return s
}

// mustValidName panics on names a NetCDF file could not hold.
func mustValidName(name string) {
	if !internal.IsValidNetCDFName(name) {
		panic(fmt.Errorf("memstore: %q: %w", name, api.ErrInvalidName))
	}
}

// AddDim adds a dimension and returns its index.
func (s *Store) AddDim(name string, n uint64) int {
	mustValidName(name)
	s.dims = append(s.dims, api.Dim{Name: name, Len: n})
	return len(s.dims) - 1
}

// AddUnlimitedDim adds the record dimension.
func (s *Store) AddUnlimitedDim(name string, n uint64) int {
	s.unlimited = s.AddDim(name, n)
	return s.unlimited
}

func (s *Store) dimIndex(name string) int {
	for i, d := range s.dims {
		if d.Name == name {
			return i
		}
	}
	panic(fmt.Sprintf("memstore: unknown dimension %q", name))
}

func (s *Store) dimIDs(names []string) []int {
	ids := make([]int, len(names))
	for i, n := range names {
		ids[i] = s.dimIndex(n)
	}
	return ids
}

// AddVar adds a numeric variable over the named dimensions. data may be
// shorter than the variable; missing values read as 0.
func (s *Store) AddVar(name string, t api.Type, dims []string, data []float64, attrs ...api.Attribute) int {
	mustValidName(name)
	s.vars = append(s.vars, variable{
		Var:  api.Var{Name: name, Type: t, Dims: s.dimIDs(dims), Attrs: attrs},
		data: data,
	})
	return len(s.vars) - 1
}

// AddTextVar adds a char variable. Each row fills the last dimension.
func (s *Store) AddTextVar(name string, dims []string, rows []string, attrs ...api.Attribute) int {
	mustValidName(name)
	s.vars = append(s.vars, variable{
		Var:  api.Var{Name: name, Type: api.TypeChar, Dims: s.dimIDs(dims), Attrs: attrs},
		text: rows,
	})
	return len(s.vars) - 1
}

// SetChunking sets the storage layout reported for a variable.
func (s *Store) SetChunking(varID int, c api.Chunking) {
	s.vars[varID].Chunking = c
}

// SetCompound marks a variable as a compound of the given member types.
func (s *Store) SetCompound(varID int, members ...api.Type) {
	s.vars[varID].Type = api.TypeCompound
	s.vars[varID].Compound = members
}

func (s *Store) AddAttr(a api.Attribute) {
	s.attrs = append(s.attrs, a)
}

func (s *Store) AddSubgroup(name string) {
	s.subgroups = append(s.subgroups, name)
}

// FailReads makes every following read return err.
func (s *Store) FailReads(err error) {
	s.readErr = err
}

func (s *Store) Format() api.Format { return s.format }

func (s *Store) Dims() []api.Dim { return s.dims }

func (s *Store) Unlimited() int { return s.unlimited }

func (s *Store) Vars() []api.Var {
	vars := make([]api.Var, len(s.vars))
	for i := range s.vars {
		vars[i] = s.vars[i].Var
	}
	return vars
}

func (s *Store) Attributes() []api.Attribute { return s.attrs }

func (s *Store) Subgroups() []string { return s.subgroups }

func (s *Store) Close() error { return nil }

func (s *Store) lookup(varID int) (*variable, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if varID < 0 || varID >= len(s.vars) {
		return nil, fmt.Errorf("memstore: variable %d: %w", varID, api.ErrNotFound)
	}
	return &s.vars[varID], nil
}

func (s *Store) shape(v *variable) []int {
	shape := make([]int, len(v.Dims))
	for i, d := range v.Dims {
		shape[i] = int(s.dims[d].Len)
	}
	return shape
}

// window checks start/count against shape; nil selects everything.
func window(shape, start, count []int) ([]int, []int, error) {
	if start == nil && count == nil {
		start = make([]int, len(shape))
		count = append([]int(nil), shape...)
	}
	if len(start) != len(shape) || len(count) != len(shape) {
		return nil, nil, fmt.Errorf("memstore: rank %d window for rank %d: %w", len(start), len(shape), api.ErrBadWindow)
	}
	for i := range shape {
		if start[i] < 0 || count[i] < 0 || start[i]+count[i] > shape[i] {
			return nil, nil, fmt.Errorf("memstore: window [%d,+%d) of %d: %w", start[i], count[i], shape[i], api.ErrBadWindow)
		}
	}
	return start, count, nil
}

func (s *Store) ReadFloat64(varID int, start, count []int) ([]float64, error) {
	v, err := s.lookup(varID)
	if err != nil {
		return nil, err
	}
	if v.Type.IsText() {
		return nil, fmt.Errorf("memstore: numeric read of text variable %s: %w", v.Name, api.ErrBadWindow)
	}
	shape := s.shape(v)
	start, count, err = window(shape, start, count)
	if err != nil {
		return nil, err
	}
	if len(shape) == 0 {
		if len(v.data) == 0 {
			return []float64{0}, nil
		}
		return v.data[:1], nil
	}
	idx := api.WindowOffsets(shape, start, count)
	out := make([]float64, len(idx))
	for i, off := range idx {
		if off < len(v.data) {
			out[i] = v.data[off]
		}
	}
	return out, nil
}

func (s *Store) ReadInt64(varID int, start, count []int) ([]int64, error) {
	vals, err := s.ReadFloat64(varID, start, count)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(vals))
	for i, x := range vals {
		out[i] = int64(x)
	}
	return out, nil
}

func (s *Store) ReadText(varID int, start, count []int) ([]string, error) {
	v, err := s.lookup(varID)
	if err != nil {
		return nil, err
	}
	if !v.Type.IsText() {
		return nil, fmt.Errorf("memstore: text read of numeric variable %s: %w", v.Name, api.ErrBadWindow)
	}
	shape := s.shape(v)
	start, count, err = window(shape, start, count)
	if err != nil {
		return nil, err
	}
	if len(shape) <= 1 {
		row := ""
		if len(v.text) > 0 {
			row = v.text[0]
		}
		if len(shape) == 1 {
			row = clip(row, start[0], count[0])
		}
		return []string{strings.TrimRight(row, "\x00")}, nil
	}
	n := len(shape) - 1
	idx := api.WindowOffsets(shape[:n], start[:n], count[:n])
	out := make([]string, len(idx))
	for i, off := range idx {
		if off < len(v.text) {
			out[i] = strings.TrimRight(clip(v.text[off], start[n], count[n]), "\x00")
		}
	}
	return out, nil
}

func clip(s string, start, count int) string {
	if start >= len(s) {
		return ""
	}
	s = s[start:]
	if count < len(s) {
		s = s[:count]
	}
	return s
}

// Attribute constructors.

func Text(name, value string) api.Attribute {
	return api.Attribute{Name: name, Type: api.TypeChar, Value: value}
}

func Double(name string, vals ...float64) api.Attribute {
	return api.Attribute{Name: name, Type: api.TypeDouble, Value: vals}
}

func Float(name string, vals ...float32) api.Attribute {
	return api.Attribute{Name: name, Type: api.TypeFloat, Value: vals}
}

func Int(name string, vals ...int32) api.Attribute {
	return api.Attribute{Name: name, Type: api.TypeInt, Value: vals}
}

func Short(name string, vals ...int16) api.Attribute {
	return api.Attribute{Name: name, Type: api.TypeShort, Value: vals}
}

func Int64(name string, vals ...int64) api.Attribute {
	return api.Attribute{Name: name, Type: api.TypeInt64, Value: vals}
}

// Seq returns n values starting at first, stepping by step.
func Seq(first, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = first + float64(i)*step
	}
	return out
}

// Fill returns n copies of x.
func Fill(x float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = x
	}
	return out
}

// FillDouble is the default NetCDF double fill value.
const FillDouble = internal.FillDouble
