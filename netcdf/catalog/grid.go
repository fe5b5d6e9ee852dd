package catalog

import (
	"gonum.org/v1/gonum/floats"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/util"
)

type GridID int

// GridType is the horizontal grid kind.
type GridType int

const (
	GridUndefined GridType = iota
	GridGeneric
	GridLonLat
	GridGaussian
	GridGaussianReduced
	GridSpectral
	GridFourier
	GridTrajectory
	GridUnstructured
	GridCurvilinear
	GridHealpix
	GridProjection
	GridCharXY
)

var gridTypeNames = []string{
	GridUndefined:       "undefined",
	GridGeneric:         "generic",
	GridLonLat:          "lonlat",
	GridGaussian:        "gaussian",
	GridGaussianReduced: "gaussian_reduced",
	GridSpectral:        "spectral",
	GridFourier:         "fourier",
	GridTrajectory:      "trajectory",
	GridUnstructured:    "unstructured",
	GridCurvilinear:     "curvilinear",
	GridHealpix:         "healpix",
	GridProjection:      "projection",
	GridCharXY:          "charxy",
}

func (t GridType) String() string {
	if t < 0 || int(t) >= len(gridTypeNames) {
		return gridTypeNames[GridUndefined]
	}
	return gridTypeNames[t]
}

// Axis holds one horizontal coordinate of a grid.
type Axis struct {
	Name     string
	LongName string
	StdName  string
	Units    string
	DimName  string
	Datatype Datatype
	Values   Array
	Bounds   Array
	// Labels replaces Values for char coordinates.
	Labels []string
}

// Grid is a resolved horizontal grid.
type Grid struct {
	ID    GridID
	Type  GridType
	Size  int
	XSize int
	YSize int
	// NVertex is the number of bounds per cell.
	NVertex int

	X Axis
	Y Axis

	Area          Array
	ReducedPoints []int
	Indices       []int64

	NP       int
	Trunc    int
	LComplex bool

	// Projection links a projected grid to its mapping variable.
	MappingName    string
	MappingVarName string
	Mapping        *util.OrderedMap[api.Attribute]
	// Projected is the grid spanned by the dimension coordinates when the
	// explicit coordinates are two dimensional.
	Projected *Grid

	Position         int
	NumberOfGridUsed int
	UUID             string
	ReferenceURI     string
	VDimName         string
}

// NewGrid returns an empty grid of the given type.
func NewGrid(t GridType) *Grid {
	return &Grid{Type: t, Mapping: newAttrs()}
}

// Equal reports whether two grids describe the same cells. Deferred
// coordinates compare by their read window, eager ones by value with NaN
// equal to NaN.
func (g *Grid) Equal(o *Grid) bool {
	if g.Type != o.Type || g.Size != o.Size || g.XSize != o.XSize || g.YSize != o.YSize {
		return false
	}
	if g.Position != o.Position || g.NP != o.NP || g.Trunc != o.Trunc || g.NVertex != o.NVertex {
		return false
	}
	if g.MappingVarName != o.MappingVarName || g.UUID != o.UUID || !intsEqual(g.ReducedPoints, o.ReducedPoints) {
		return false
	}
	return sameArray(g.X.Values, o.X.Values) && sameArray(g.Y.Values, o.Y.Values) &&
		sameArray(g.X.Bounds, o.X.Bounds) && sameArray(g.Y.Bounds, o.Y.Bounds) &&
		sameArray(g.Area, o.Area)
}

func sameArray(a, b Array) bool {
	if a.IsDeferred() || b.IsDeferred() {
		da, db := a.Deferred(), b.Deferred()
		if da == nil || db == nil {
			return false
		}
		sa, ca := da.Window()
		sb, cb := db.Window()
		return da.VarID == db.VarID && da.ScaleFactor == db.ScaleFactor && da.AddOffset == db.AddOffset &&
			intsEqual(sa, sb) && intsEqual(ca, cb)
	}
	return floats.Same(a.data, b.data)
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
