package catalog

import (
	"gonum.org/v1/gonum/floats"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/util"
)

type ZAxisID int

// ZAxisType is the vertical axis kind.
type ZAxisType int

const (
	ZAxisUndefined ZAxisType = iota
	ZAxisSurface
	ZAxisGeneric
	ZAxisHybrid
	ZAxisHybridHalf
	ZAxisPressure
	ZAxisHeight
	ZAxisDepthBelowSea
	ZAxisDepthBelowLand
	ZAxisAltitude
	ZAxisReference
	ZAxisChar
	ZAxisTOA
	ZAxisCloudBase
	ZAxisCloudTop
	ZAxisIsotherm0
	ZAxisSeaBottom
	ZAxisLakeBottom
	ZAxisSedimentBottom
	ZAxisSedimentBottomTA
	ZAxisSedimentBottomTW
	ZAxisMixLayer
	ZAxisAtmosphere
)

var zaxisTypeNames = []string{
	ZAxisUndefined:        "undefined",
	ZAxisSurface:          "surface",
	ZAxisGeneric:          "generic",
	ZAxisHybrid:           "hybrid",
	ZAxisHybridHalf:       "hybrid_half",
	ZAxisPressure:         "pressure",
	ZAxisHeight:           "height",
	ZAxisDepthBelowSea:    "depth_below_sea",
	ZAxisDepthBelowLand:   "depth_below_land",
	ZAxisAltitude:         "altitude",
	ZAxisReference:        "reference",
	ZAxisChar:             "char",
	ZAxisTOA:              "toa",
	ZAxisCloudBase:        "cloud_base",
	ZAxisCloudTop:         "cloud_top",
	ZAxisIsotherm0:        "isotherm_zero",
	ZAxisSeaBottom:        "sea_bottom",
	ZAxisLakeBottom:       "lake_bottom",
	ZAxisSedimentBottom:   "sediment_bottom",
	ZAxisSedimentBottomTA: "sediment_bottom_ta",
	ZAxisSedimentBottomTW: "sediment_bottom_tw",
	ZAxisMixLayer:         "mix_layer",
	ZAxisAtmosphere:       "atmosphere",
}

func (t ZAxisType) String() string {
	if t < 0 || int(t) >= len(zaxisTypeNames) {
		return zaxisTypeNames[ZAxisUndefined]
	}
	return zaxisTypeNames[t]
}

// IsHybrid reports whether t carries a vertical coordinate table.
func (t ZAxisType) IsHybrid() bool {
	return t == ZAxisHybrid || t == ZAxisHybridHalf
}

// ZAxis is a resolved vertical axis.
type ZAxis struct {
	ID       ZAxisID
	Type     ZAxisType
	Size     int
	Name     string
	LongName string
	StdName  string
	Units    string
	DimName  string
	Datatype Datatype
	Scalar   bool
	// Positive is 1 for up, 2 for down, 0 when unknown.
	Positive int

	Levels Array
	Lower  []float64
	Upper  []float64
	Labels []string

	// VCT holds the half level a coefficients followed by the b coefficients.
	VCT    []float64
	PSName string
	P0Name string
	P0     float64
	HasP0  bool

	UUID  string
	Attrs *util.OrderedMap[api.Attribute]
}

func NewZAxis(t ZAxisType, size int) *ZAxis {
	return &ZAxis{Type: t, Size: size, Attrs: newAttrs()}
}

// Equal reports whether two axes describe the same levels.
func (z *ZAxis) Equal(o *ZAxis) bool {
	if z.Type != o.Type || z.Size != o.Size || z.Scalar != o.Scalar || z.Name != o.Name {
		return false
	}
	if !floats.Same(z.VCT, o.VCT) || len(z.Labels) != len(o.Labels) {
		return false
	}
	for i := range z.Labels {
		if z.Labels[i] != o.Labels[i] {
			return false
		}
	}
	return sameArray(z.Levels, o.Levels)
}
