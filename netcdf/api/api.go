// Package api is the array store interface consumed by the catalog scanner.
// Implementations exist for NetCDF files (ncstore) and for in-memory
// datasets (memstore).
package api

import (
	"errors"
	"reflect"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid NetCDF name")
	ErrBadWindow   = errors.New("invalid read window")
	// ErrCorrupt is returned when stored data cannot be decoded.
	ErrCorrupt     = errors.New("undecodable data")
)

// Format is the container format of a store.
type Format int

const (
	FormatClassic Format = iota
	FormatNetCDF4
)

func (f Format) String() string {
	if f == FormatNetCDF4 {
		return "netcdf4"
	}
	return "classic"
}

// Type is the stored element type of a variable or attribute.
type Type int

const (
	TypeUnknown Type = iota
	TypeByte
	TypeUByte
	TypeChar
	TypeShort
	TypeUShort
	TypeInt
	TypeUInt
	TypeInt64
	TypeUInt64
	TypeFloat
	TypeDouble
	TypeString
	// TypeCompound is a user-defined compound type. Stores describe its
	// fields with Var.Compound.
	TypeCompound
)

var cdlNames = []string{
	TypeUnknown:  "unknown",
	TypeByte:     "byte",
	TypeUByte:    "ubyte",
	TypeChar:     "char",
	TypeShort:    "short",
	TypeUShort:   "ushort",
	TypeInt:      "int",
	TypeUInt:     "uint",
	TypeInt64:    "int64",
	TypeUInt64:   "uint64",
	TypeFloat:    "float",
	TypeDouble:   "double",
	TypeString:   "string",
	TypeCompound: "compound",
}

// String returns the type in CDL format.
func (t Type) String() string {
	if t < 0 || int(t) >= len(cdlNames) {
		return cdlNames[TypeUnknown]
	}
	return cdlNames[t]
}

// ParseCDLType maps a CDL base type name to a Type.
func ParseCDLType(s string) Type {
	for i, name := range cdlNames {
		if name == s {
			return Type(i)
		}
	}
	return TypeUnknown
}

func (t Type) IsText() bool  { return t == TypeChar || t == TypeString }
func (t Type) IsFloat() bool { return t == TypeFloat || t == TypeDouble }

func (t Type) IsInteger() bool {
	switch t {
	case TypeByte, TypeUByte, TypeShort, TypeUShort, TypeInt, TypeUInt, TypeInt64, TypeUInt64:
		return true
	}
	return false
}

// Attribute is a named attribute with its stored type. Value holds a string
// for text attributes, a []string for multi-valued string attributes and a
// numeric slice ([]int8 ... []float64) otherwise. Scalars are 1-length slices.
type Attribute struct {
	Name  string
	Type  Type
	Value any
}

// Len returns the number of stored elements. Text counts characters.
func (a Attribute) Len() int {
	switch v := a.Value.(type) {
	case nil:
		return 0
	case string:
		return len(v)
	}
	rv := reflect.ValueOf(a.Value)
	if rv.Kind() == reflect.Slice {
		return rv.Len()
	}
	return 1
}

// Chunking describes storage layout as far as the container reports it.
type Chunking struct {
	Chunked      bool
	ChunkShape   []int
	Deflate      bool
	DeflateLevel int
	Shuffle      bool
	Szip         bool
	FilterID     int
	// Chunk cache tuning; zero when unknown.
	CacheSize       uint64
	CacheElems      uint64
	CachePreemption float64
}

// Dim is a dimension as stored.
type Dim struct {
	Name string
	Len  uint64
}

// Var is a variable as stored. Dims index into Store.Dims.
type Var struct {
	Name     string
	Type     Type
	Dims     []int
	Attrs    []Attribute
	Chunking Chunking
	// Compound lists the member types of a compound variable.
	Compound []Type
}

// Store is the capability set of an opened dataset.
//
// Windows are given as start and count per dimension. A nil window reads
// the whole variable. Text reads return one string per row of the last
// dimension with trailing NULs removed.
type Store interface {
	Format() Format
	Dims() []Dim
	// Unlimited returns the record dimension, or -1 when there is none.
	Unlimited() int
	Vars() []Var
	Attributes() []Attribute
	Subgroups() []string

	ReadFloat64(varID int, start, count []int) ([]float64, error)
	ReadInt64(varID int, start, count []int) ([]int64, error)
	ReadText(varID int, start, count []int) ([]string, error)

	Close() error
}

// Reader is the subset of Store needed to resolve deferred reads.
type Reader interface {
	ReadFloat64(varID int, start, count []int) ([]float64, error)
}

// Query restricts the scan output. Implementations must not change the
// classification of what remains in scope.
type Query interface {
	// NumNames is the number of selected variable names; 0 selects all.
	NumNames() int
	HasName(name string) bool
	// CellRange returns a 1-based start and a count for unstructured grids.
	CellRange() (start, count int, ok bool)
	// NumSteps is the number of selected steps; 0 selects all.
	NumSteps() int
	// HasStep reports whether the 1-based step index is selected.
	HasStep(step int) bool
}

// Filter is a simple Query. A nil *Filter selects everything.
type Filter struct {
	Names     []string
	CellStart int
	CellCount int
	Steps     []int
}

func (f *Filter) NumNames() int {
	if f == nil {
		return 0
	}
	return len(f.Names)
}

func (f *Filter) HasName(name string) bool {
	if f == nil {
		return false
	}
	for _, n := range f.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (f *Filter) CellRange() (int, int, bool) {
	if f == nil || f.CellStart <= 0 {
		return 0, 0, false
	}
	count := f.CellCount
	if count <= 0 {
		count = 1
	}
	return f.CellStart, count, true
}

func (f *Filter) NumSteps() int {
	if f == nil {
		return 0
	}
	return len(f.Steps)
}

func (f *Filter) HasStep(step int) bool {
	if f == nil {
		return false
	}
	for _, s := range f.Steps {
		if s == step {
			return true
		}
	}
	return false
}

// WindowLen returns the element count of a window.
func WindowLen(count []int) int {
	n := 1
	for _, c := range count {
		n *= c
	}
	return n
}

// WindowOffsets lists the row-major flat offsets of a start/count window
// into an array of the given shape.
func WindowOffsets(shape, start, count []int) []int {
	n := WindowLen(count)
	out := make([]int, 0, n)
	if n == 0 {
		return out
	}
	idx := append([]int(nil), start...)
	for {
		off := 0
		for i := range shape {
			off = off*shape[i] + idx[i]
		}
		out = append(out, off)
		k := len(idx) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < start[k]+count[k] {
				break
			}
			idx[k] = start[k]
		}
		if k < 0 {
			return out
		}
	}
}
