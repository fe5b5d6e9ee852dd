// Package catalog holds the result of scanning a dataset: data variables
// with the grids, vertical axes and time steps they are defined on.
package catalog

import (
	"fmt"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/util"
)

// Datatype is the in-memory element type of a variable.
type Datatype int

const (
	DatatypeUndefined Datatype = iota
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Flt32
	Flt64
	Cpx32
	Cpx64
)

var datatypeNames = []string{"undefined", "i8", "u8", "i16", "u16", "i32", "u32", "f32", "f64", "c32", "c64"}

func (d Datatype) String() string {
	if d < 0 || int(d) >= len(datatypeNames) {
		return datatypeNames[DatatypeUndefined]
	}
	return datatypeNames[d]
}

// Param identifies a parameter as number, category and discipline.
type Param struct {
	Num, Cat, Dis int
}

func (p Param) String() string {
	return fmt.Sprintf("%d.%d.%d", p.Num, p.Cat, p.Dis)
}

// ChunkType describes how a variable is split for reading.
type ChunkType int

const (
	ChunkAuto ChunkType = iota
	ChunkGrid
	ChunkLines
)

// Ensemble is the ensemble description of a variable.
type Ensemble struct {
	Realization int
	Members     int
	InitType    int
}

// Variable is a data variable of the catalog.
type Variable struct {
	ID       int
	StoreID  int
	Name     string
	LongName string
	StdName  string
	Units    string

	Grid        GridID
	ZAxis       ZAxisID
	TimeVarying bool

	Code     int
	Table    int
	Param    Param
	Datatype Datatype
	Unsigned bool

	MissingValue    float64
	HasMissingValue bool
	FillValue       float64
	HasFillValue    bool
	ValidRange      [2]float64
	HasValidRange   bool
	ScaleFactor     float64
	AddOffset       float64

	Chunking       api.Chunking
	ChunkType      ChunkType
	ChunkSize      int
	ChunkCacheSize uint64
	// IXYZ encodes the storage order of x, y and z, e.g. 321 for z,y,x.
	IXYZ int

	Ensemble    *Ensemble
	Institution string
	Model       string
	Attrs       *util.OrderedMap[api.Attribute]
}

func newAttrs() *util.OrderedMap[api.Attribute] {
	om, _ := util.NewOrderedMap[api.Attribute](nil, nil)
	return om
}

// NewVariable returns a variable with an empty attribute set.
func NewVariable(name string) *Variable {
	return &Variable{Name: name, ScaleFactor: 1, Attrs: newAttrs()}
}

// Catalog is the scan result.
type Catalog struct {
	Format      api.Format
	Attrs       *util.OrderedMap[api.Attribute]
	Institution string
	Model       string

	Variables []*Variable
	Grids     []*Grid
	ZAxes     []*ZAxis
	TimeAxis  TimeAxis
	Timesteps []Timestep
	// ConstantRecords are the records of variables without a time dimension.
	ConstantRecords []Record

	Diagnostics []string
}

func New() *Catalog {
	return &Catalog{Attrs: newAttrs()}
}

// Grid returns the grid with the given id.
func (c *Catalog) Grid(id GridID) *Grid {
	if int(id) < 0 || int(id) >= len(c.Grids) {
		return nil
	}
	return c.Grids[id]
}

// ZAxis returns the z-axis with the given id.
func (c *Catalog) ZAxis(id ZAxisID) *ZAxis {
	if int(id) < 0 || int(id) >= len(c.ZAxes) {
		return nil
	}
	return c.ZAxes[id]
}

// Variable returns the named variable, or nil.
func (c *Catalog) Variable(name string) *Variable {
	for _, v := range c.Variables {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// AddGridIfNew returns the id of an equal existing grid, or appends g.
func (c *Catalog) AddGridIfNew(g *Grid) (GridID, bool) {
	for _, e := range c.Grids {
		if e.Equal(g) {
			return e.ID, false
		}
	}
	g.ID = GridID(len(c.Grids))
	c.Grids = append(c.Grids, g)
	return g.ID, true
}

// AddZAxisIfNew returns the id of an equal existing axis, or appends z.
func (c *Catalog) AddZAxisIfNew(z *ZAxis) (ZAxisID, bool) {
	for _, e := range c.ZAxes {
		if e.Equal(z) {
			return e.ID, false
		}
	}
	z.ID = ZAxisID(len(c.ZAxes))
	c.ZAxes = append(c.ZAxes, z)
	return z.ID, true
}
