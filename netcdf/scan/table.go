package scan

import (
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

// validMiss marks an unset bound of a valid range.
const validMiss = -1e300

const (
	maxCoordVars = 5
	maxAuxVars   = 4
	maxDims      = 8
	// number of distinct missing coordinate names that are reported
	maxCheckVars = 9
)

// Status is the classification of a variable.
type Status int

const (
	Unclassified Status = iota
	CoordVar
	DataVar
)

func (s Status) String() string {
	switch s {
	case CoordVar:
		return "coordinate"
	case DataVar:
		return "data"
	}
	return "unclassified"
}

type timeType int

const (
	timeConstant timeType = iota
	timeVarying
)

type dimension struct {
	id       DimID
	name     string
	len      uint64
	axis     Axis
	coordVar Opt[VarID]
}

type hybridTerms struct {
	a, b, ps, p0 Opt[VarID]
}

type variable struct {
	id       VarID
	name     string
	xtype    api.Type
	compound []api.Type
	dims     []DimID
	dimAxes  []Axis
	attrs    []api.Attribute
	residual []api.Attribute
	chunking api.Chunking

	status       Status
	ignore       bool
	printWarning bool
	isUnsigned   bool
	timeType     timeType

	gridType  catalog.GridType
	zaxisType catalog.ZAxisType

	longName, stdName, units string
	hasCalendar              bool

	param    catalog.Param
	hasParam bool
	hasCode  bool
	code     int
	table    int

	positive int
	trunc    int
	numLPE   int
	position int

	missval, fillval       float64
	hasMissval, hasFillval bool
	validRange             [2]float64
	hasValidRange          bool
	addOffset              float64
	scaleFactor            float64

	bounds        Opt[VarID]
	isClimatology bool
	cellArea      Opt[VarID]
	gridMapping   Opt[VarID]
	coordVars     []Opt[VarID]
	auxVars       []VarID

	xvar, yvar, zvar, tvar, ivar, rpvar Opt[VarID]
	cvars                               [maxCoordVars]Opt[VarID]

	hybrid          hybridTerms
	hasFormulaTerms bool
	vct             []float64

	isLon, isLat, isXAxis, isYAxis, isZAxis, isTAxis bool
	isCharAxis, isIndexAxis                          bool
	isLonLatMapping, isHealpixMapping, isCubeSphere  bool

	ensemble *catalog.Ensemble

	grid      Opt[catalog.GridID]
	zaxis     Opt[catalog.ZAxisID]
	gridSize  int
	xSize     int
	ySize     int
	zSize     int
	chunkType catalog.ChunkType
	chunkSize int
}

func (v *variable) ndims() int { return len(v.dims) }

// readTable mirrors the store's dimensions and variables. Dimension
// references are translated to dense table indices.
func (s *scanner) readTable() {
	sd := s.store.Dims()
	s.dims = make([]dimension, len(sd))
	for i, d := range sd {
		s.dims[i] = dimension{id: DimID(i), name: d.Name, len: d.Len}
	}
	sv := s.store.Vars()
	s.vars = make([]variable, len(sv))
	for i, v := range sv {
		nv := variable{
			id:           VarID(i),
			name:         v.Name,
			xtype:        v.Type,
			compound:     v.Compound,
			attrs:        v.Attrs,
			chunking:     v.Chunking,
			printWarning: true,
			scaleFactor:  1,
			validRange:   [2]float64{validMiss, validMiss},
		}
		nv.dims = make([]DimID, len(v.Dims))
		nv.dimAxes = make([]Axis, len(v.Dims))
		for j, d := range v.Dims {
			nv.dims[j] = DimID(d)
		}
		if len(nv.dims) > maxDims {
			s.log.Warnf("Variable %s has %d dimensions, only %d are supported!", v.Name, len(nv.dims), maxDims)
		}
		s.vars[i] = nv
	}
}

func (s *scanner) lookupVar(name string) (VarID, bool) {
	for i := range s.vars {
		if s.vars[i].name == name {
			return VarID(i), true
		}
	}
	return 0, false
}

func (s *scanner) dimLen(d DimID) int {
	return int(s.dims[d].len)
}
