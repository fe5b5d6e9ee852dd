package scan

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

// defineAllVars turns the data variables into catalog variables.
func (s *scanner) defineAllVars() {
	var ids []VarID
	for i := range s.vars {
		if s.vars[i].status == DataVar {
			ids = append(ids, VarID(i))
		}
	}
	if s.cfg.SortVarNames {
		sort.SliceStable(ids, func(i, j int) bool {
			return s.vars[ids[i]].name < s.vars[ids[j]].name
		})
	}
	for _, id := range ids {
		s.cat.Variables = append(s.cat.Variables, s.defineVar(&s.vars[id], len(s.cat.Variables)))
	}
}

func (s *scanner) defineVar(v *variable, id int) *catalog.Variable {
	cv := catalog.NewVariable(v.name)
	cv.ID = id
	cv.StoreID = int(v.id)
	cv.TimeVarying = v.timeType == timeVarying
	if g, ok := v.grid.Get(); ok {
		cv.Grid = g
	}
	if z, ok := v.zaxis.Get(); ok {
		cv.ZAxis = z
	}
	cv.LongName = v.longName
	cv.StdName = v.stdName
	cv.Units = v.units

	cv.Chunking = v.chunking
	if v.chunking.Chunked {
		cv.ChunkType = v.chunkType
		if v.chunkSize > 1 {
			cv.ChunkSize = v.chunkSize
		}
		cv.ChunkCacheSize = s.chunkCacheSize(v)
	}

	s.setCodeAndParam(cv, v)

	if v.hasValidRange {
		cv.ValidRange = v.validRange
		cv.HasValidRange = true
	}
	cv.AddOffset = v.addOffset
	cv.ScaleFactor = v.scaleFactor
	cv.Datatype = s.datatype(v)
	cv.Unsigned = v.isUnsigned

	cv.MissingValue, cv.HasMissingValue = v.missval, v.hasMissval
	cv.FillValue, cv.HasFillValue = v.fillval, v.hasFillval
	if !v.hasFillval && v.hasMissval {
		cv.FillValue, cv.HasFillValue = v.missval, true
	}

	cv.IXYZ = s.ixyz(v)
	if v.ensemble != nil && v.ensemble.Members != -1 {
		e := *v.ensemble
		cv.Ensemble = &e
	}
	cv.Institution = s.institution
	cv.Model = s.model

	for _, a := range v.residual {
		if !fitsInt32(a) {
			continue
		}
		cv.Attrs.Add(a.Name, a)
	}
	return cv
}

// setCodeAndParam takes the code from the param or code attributes, else
// from names like var130, code130 or param1.2.3.
func (s *scanner) setCodeAndParam(cv *catalog.Variable, v *variable) {
	cv.Code = -cv.ID - 1
	cv.Param = catalog.Param{Num: cv.Code, Cat: 255, Dis: 255}
	if v.hasParam {
		cv.Param = v.param
		cv.Code = v.param.Num
	}
	if v.hasCode {
		cv.Code = v.code
		cv.Table = v.table
		cv.Param = catalog.Param{Num: v.code, Cat: v.table, Dis: 255}
	}
	if v.hasParam || v.hasCode {
		return
	}
	name := v.name
	switch {
	case len(name) > 3 && isDigit(name[3]):
		if hasPrefix(name, "var") {
			cv.Code = leadingInt(name[3:])
			cv.Param.Num = cv.Code
		}
	case len(name) > 4 && isDigit(name[4]):
		if hasPrefix(name, "code") {
			cv.Code = leadingInt(name[4:])
			cv.Param.Num = cv.Code
		}
	case len(name) > 5 && isDigit(name[5]):
		if hasPrefix(name, "param") {
			p := parseParam(name[5:])
			cv.Param = p
			cv.Code = p.Num
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// leadingInt parses the digits at the start of s.
func leadingInt(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n, _ := strconv.Atoi(s[:i])
	return n
}

// parseParam reads "N.C.D"; missing parts default to 255.
func parseParam(s string) catalog.Param {
	p := catalog.Param{Num: -1, Cat: 255, Dis: 255}
	dst := []*int{&p.Num, &p.Cat, &p.Dis}
	for i, part := range strings.SplitN(s, ".", 3) {
		j := 0
		for j < len(part) && isDigit(part[j]) {
			j++
		}
		if j == 0 {
			break
		}
		*dst[i] = leadingInt(part)
		if j < len(part) {
			break
		}
	}
	return p
}

// elemSize is the stored size of one element in bytes.
func elemSize(t api.Type) uint64 {
	switch t {
	case api.TypeByte, api.TypeUByte, api.TypeChar:
		return 1
	case api.TypeShort, api.TypeUShort:
		return 2
	case api.TypeInt, api.TypeUInt, api.TypeFloat:
		return 4
	}
	return 8
}

func sizeOfDimChunks(n, c uint64) uint64 {
	return (n/c + boolToUint(n%c > 0)) * c
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// chunkCacheSize is the cache needed to read one horizontal field or
// one time step through the chunks of v. It is 0 when a single chunk
// covers the read.
func (s *scanner) chunkCacheSize(v *variable) uint64 {
	chunks := v.chunking.ChunkShape
	if len(chunks) != v.ndims() || len(chunks) == 0 {
		return 0
	}
	var nx, ny, nz, cx, cy, cz uint64
	for i, a := range v.dimAxes {
		switch a {
		case AxisZ:
			cz, nz = uint64(chunks[i]), uint64(v.zSize)
		case AxisY:
			cy, ny = uint64(chunks[i]), uint64(v.ySize)
		case AxisX:
			cx, nx = uint64(chunks[i]), uint64(v.xSize)
		}
	}
	numSteps := uint64(1)
	if s.timeDim.Is(v.dims[0]) {
		numSteps = uint64(chunks[0])
	}
	size := numSteps
	if nz > 0 && cz > 0 {
		if numSteps == 1 {
			size *= cz
		} else {
			size *= sizeOfDimChunks(nz, cz)
		}
	}
	if size == 1 {
		return 0
	}
	if ny > 0 && cy > 0 {
		size *= sizeOfDimChunks(ny, cy)
	}
	if nx > 0 && cx > 0 {
		size *= sizeOfDimChunks(nx, cx)
	}
	size *= elemSize(v.xtype)
	if s.cfg.ChunkCacheMax > 0 && size > s.cfg.ChunkCacheMax {
		size = s.cfg.ChunkCacheMax
	}
	return size
}

// ixyz encodes the storage order of the x, y and z dimensions of v as
// decimal digits, x=1, y=2, z=3, outermost first.
func (s *scanner) ixyz(v *variable) int {
	if v.isCubeSphere || v.ndims() == 0 {
		return 0
	}
	var xy xyDims
	if g, ok := v.grid.Get(); ok {
		xy = s.gridDims[g]
	}
	var zdim Opt[DimID]
	if z, ok := v.zaxis.Get(); ok {
		zdim = s.zaxisDims[z]
	}
	iodim := 0
	if v.timeType != timeConstant {
		iodim = 1
	}
	n := v.ndims()
	if n-iodim <= 2 && (xy.y.Same(xy.x) || !xy.y.IsSet()) {
		if xy.x.Is(v.dims[n-1]) {
			return 321
		}
		return 213
	}
	code := 0
	for i := iodim; i < n; i++ {
		p := n - i - 1
		if p > 3 {
			continue
		}
		pow := int(math.Pow10(p))
		d := v.dims[i]
		switch {
		case xy.x.Is(d):
			code += 1 * pow
		case xy.y.Is(d):
			code += 2 * pow
		case zdim.Is(d):
			code += 3 * pow
		}
	}
	return code
}

// fitsInt32 drops 64-bit integer attributes that cannot be kept as int.
func fitsInt32(a api.Attribute) bool {
	if a.Type != api.TypeInt64 && a.Type != api.TypeUInt64 {
		return true
	}
	for _, n := range attrInt64s(a) {
		if n > math.MaxInt32 || n < math.MinInt32 {
			return false
		}
	}
	return true
}
