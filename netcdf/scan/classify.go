package scan

import (
	"strings"

	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

// setVarDim claims role a for the i-th dimension of v.
func (s *scanner) setVarDim(v *variable, i int, a Axis) {
	merged, conflict := mergeAxis(v.dimAxes[i], a)
	if conflict {
		s.log.Warnf("Inconsistent dimension definition for %s! dimid=%d type=%c newtype=%c",
			v.name, v.dims[i], byte(v.dimAxes[i]), byte(a))
	}
	v.dimAxes[i] = merged
}

// setVarDimCoord marks v as the coordinate of dimension d with role a.
func (s *scanner) setVarDimCoord(v *variable, d DimID, a Axis) {
	s.setStatus(v, CoordVar)
	s.setVarDim(v, 0, a)
	s.setDimAxis(d, a)
}

// findCoordinateVars links every dimension to the 1-D variable of the
// same name.
func (s *scanner) findCoordinateVars() {
	for d := range s.dims {
		dim := &s.dims[d]
		for i := range s.vars {
			v := &s.vars[i]
			if v.ndims() != 1 || v.dims[0] != DimID(d) || v.name != dim.name {
				continue
			}
			if !dim.coordVar.IsSet() {
				dim.coordVar = Some(v.id)
				s.setStatus(v, CoordVar)
			}
		}
	}
}

func (s *scanner) findTimeDim() {
	if u := s.store.Unlimited(); u >= 0 && u < len(s.dims) {
		s.timeDim = Some(DimID(u))
	} else {
		s.timeDim = s.timeDimByName()
	}
	d, ok := s.timeDim.Get()
	if !ok {
		return
	}
	s.checkDimSize(s.dims[d].len, "time")
	s.ntsteps = s.dimLen(d)
	s.setDimAxis(d, AxisT)
}

// timeDimByName finds a dimension called time, or the dimension of the
// first 1-D variable with time units.
func (s *scanner) timeDimByName() Opt[DimID] {
	for d := range s.dims {
		if strings.ToLower(s.dims[d].name) == "time" {
			return Some(DimID(d))
		}
	}
	checked := map[DimID]bool{}
	for i := range s.vars {
		v := &s.vars[i]
		if v.ndims() != 1 {
			continue
		}
		d := v.dims[0]
		if checked[d] {
			continue
		}
		if cv, ok := s.dims[d].coordVar.Get(); ok && cv != v.id {
			continue
		}
		checked[d] = true
		if isTimeUnits(attrSet(v.attrs).Text("units", maxNameLen)) {
			return Some(d)
		}
	}
	return None[DimID]()
}

// setVarsTimeType marks variables led by the time dimension as time
// varying. Time in any other position cannot be represented.
func (s *scanner) setVarsTimeType() {
	if !s.timeDim.IsSet() {
		return
	}
	for i := range s.vars {
		v := &s.vars[i]
		if v.ndims() == 0 {
			continue
		}
		if s.timeDim.Is(v.dims[0]) {
			v.timeType = timeVarying
			s.setVarDim(v, 0, AxisT)
			continue
		}
		for j := 1; j < v.ndims(); j++ {
			if s.timeDim.Is(v.dims[j]) {
				s.demote(v, "Time must be the first dimension! Unsupported array structure, skipped variable %s!", v.name)
				break
			}
		}
	}
}

// verifyVarsAttr applies the axis attribute kept in the residual set.
func (s *scanner) verifyVarsAttr() {
	for i := range s.vars {
		v := &s.vars[i]
		for _, a := range v.residual {
			if a.Name == "axis" && isTextAttr(a) {
				s.scanAttrAxis(v, attrText(a, maxNameLen))
			}
		}
	}
}

// scanAttrAxis reads an axis attribute such as "TYX", one letter per
// dimension, or "Z" on a scalar level variable.
func (s *scanner) scanAttrAxis(v *variable, axis string) {
	if v.ndims() == 0 {
		if axis == "z" || axis == "Z" {
			s.setStatus(v, CoordVar)
			v.isZAxis = true
		}
		return
	}
	if len(axis) != v.ndims() || strings.Trim(axis, "-tTzZyYxX") != "" {
		return
	}
	for i := len(axis) - 1; i >= 0; i-- {
		var a Axis
		switch axis[i] {
		case 't', 'T':
			if i != 0 {
				s.log.Warnf("axis attribute 't' not on first position")
			}
			a = AxisT
		case 'z', 'Z':
			a = AxisZ
		case 'y', 'Y':
			a = AxisY
		case 'x', 'X':
			a = AxisX
		default:
			continue
		}
		s.setVarDim(v, i, a)
		if a != AxisT && v.ndims() == 1 {
			s.setStatus(v, CoordVar)
			s.setDimAxis(v.dims[0], a)
		}
	}
}

// findVaryingDataVars1D promotes 1-D series over the time dimension.
func (s *scanner) findVaryingDataVars1D() {
	for i := range s.vars {
		v := &s.vars[i]
		if v.ndims() == 1 && s.timeDim.Is(v.dims[0]) && v.status != CoordVar {
			s.setStatus(v, DataVar)
		}
	}
}

func (s *scanner) findTimeVars() {
	bt := &s.basetime
	d, ok := s.timeDim.Get()
	if !ok {
		for i := range s.vars {
			v := &s.vars[i]
			if v.ndims() == 0 && v.name == "time" && isTimeUnits(v.units) {
				bt.timeVar = Some(v.id)
				break
			}
		}
	} else {
		bt.timeVar = s.dims[d].coordVar
		for i := range s.vars {
			v := &s.vars[i]
			if v.ndims() != 1 || v.dims[0] != d || v.xtype.IsText() || bt.timeVar.Is(v.id) {
				continue
			}
			if !isTimeAxisUnits(v.units) {
				continue
			}
			v.status = CoordVar
			if !bt.timeVar.IsSet() {
				bt.timeVar = Some(v.id)
			} else {
				s.log.Warnf("Found more than one time variable, skipped variable %s!", v.name)
			}
		}
		if !bt.timeVar.IsSet() {
			s.findWRFTime(d)
		}
		if !bt.timeVar.IsSet() && s.dims[d].len > 0 {
			s.log.Warnf("Time variable >%s< not found!", s.dims[d].name)
		}
	}

	tv, ok := bt.timeVar.Get()
	if !ok || bt.isWRF {
		return
	}
	v := &s.vars[tv]
	bt.hasUnits = v.units != ""
	if b, ok := v.bounds.Get(); ok {
		bv := &s.vars[b]
		if bv.ndims() == 2 && s.dimLen(bv.dims[1]) == 2 && s.timeDim.Is(bv.dims[0]) {
			bt.hasBounds = true
			bt.boundsVar = Some(b)
			bt.climatology = v.isClimatology
		}
	}
}

// findWRFTime looks for a Times style text variable holding one date
// string per step.
func (s *scanner) findWRFTime(d DimID) {
	for i := range s.vars {
		v := &s.vars[i]
		if v.ndims() != 2 || v.dims[0] != d || !v.xtype.IsText() {
			continue
		}
		if n := s.dimLen(v.dims[1]); n == 19 || n == 64 {
			v.isTAxis = true
			s.basetime.timeVar = Some(v.id)
			s.basetime.isWRF = true
			return
		}
	}
}

func (s *scanner) findLeadtime() {
	d, ok := s.timeDim.Get()
	if !ok {
		return
	}
	for i := range s.vars {
		v := &s.vars[i]
		if v.ndims() == 1 && v.dims[0] == d && v.stdName == "forecast_period" {
			s.basetime.leadtimeVar = Some(v.id)
			s.setStatus(v, CoordVar)
			return
		}
	}
}

// checkVariables settles unclassified variables and rejects data
// variables whose shape or type cannot be cataloged.
func (s *scanner) checkVariables() {
	for i := range s.vars {
		v := &s.vars[i]
		if v.isTAxis && v.ndims() == 2 {
			v.status = CoordVar
			continue
		}
		if v.status == Unclassified && v.ndims() > 1 && s.timeDim.Is(v.dims[0]) {
			s.setStatus(v, DataVar)
		}
		if v.status == Unclassified {
			if v.ndims() == 0 && len(s.vars) != 1 {
				s.setStatus(v, CoordVar)
			} else {
				s.setStatus(v, DataVar)
			}
		}
		if v.status == CoordVar {
			continue
		}
		n := v.ndims()
		switch {
		case (n > 4 && !v.isCubeSphere) || n > 5:
			s.demote(v, "%d dimensional variables are not supported, skipped variable %s!", n, v.name)
		case ((n == 4 && !v.isCubeSphere) || n == 5) && !s.timeDim.IsSet():
			s.demote(v, "%d dimensional variables without time dimension are not supported, skipped variable %s!", n, v.name)
		case v.xtype.IsText():
			s.demote(v, "Unsupported data type (char/string), skipped variable %s!", v.name)
		case s.datatype(v) == catalog.DatatypeUndefined:
			s.demote(v, "Unsupported data type, skipped variable %s!", v.name)
		case s.timeDim.IsSet() && s.ntsteps == 0 && n > 0 && s.timeDim.Is(v.dims[0]):
			s.demote(v, "Number of time steps undefined, skipped variable %s!", v.name)
		}
	}
}

// hybridLevelType recognizes model level axes described by their long
// name.
func hybridLevelType(units, longname string) (catalog.ZAxisType, bool) {
	switch longname {
	case "hybrid level at layer midpoints", "hybrid model level at layer midpoints":
		return catalog.ZAxisHybrid, true
	case "hybrid level at layer interfaces", "hybrid model level at layer interfaces":
		return catalog.ZAxisHybridHalf, true
	}
	if hasPrefix(longname, "hybrid level at midpoints") {
		return catalog.ZAxisHybrid, true
	}
	if hasPrefix(longname, "hybrid level at interfaces") {
		return catalog.ZAxisHybridHalf, true
	}
	if units == "level" {
		return catalog.ZAxisGeneric, true
	}
	return catalog.ZAxisUndefined, false
}

// lonLatByLongName catches coordinates whose only hint is a long name
// such as "Longitude" or "latitude".
func (s *scanner) lonLatByLongName(v *variable, d DimID, setDim bool) bool {
	if v.isLon || v.isLat || len(v.longName) < 2 {
		return false
	}
	rest := v.longName[1:]
	switch {
	case hasPrefix(rest, "ongitude"):
		v.isLon = true
		if setDim {
			s.setVarDimCoord(v, d, AxisX)
		}
		return true
	case hasPrefix(rest, "atitude"):
		v.isLat = true
		if setDim {
			s.setVarDimCoord(v, d, AxisY)
		}
		return true
	}
	return false
}

// verifyCoordinateVars1 gives roles to the dimension coordinates.
func (s *scanner) verifyCoordinateVars1() {
	for d := range s.dims {
		dim := &s.dims[d]
		vid, ok := dim.coordVar.Get()
		if !ok {
			continue
		}
		v := &s.vars[vid]
		did := DimID(d)
		if s.timeDim.Is(v.dims[0]) {
			v.isTAxis = true
			s.setDimAxis(did, AxisT)
			continue
		}
		if s.isHybridSigmaPressure(v) {
			s.isHybridCF = true
			continue
		}
		if v.units != "" {
			switch {
			case isLonAxis(v.units, v.stdName):
				v.isLon = true
				s.setVarDimCoord(v, did, AxisX)
			case isLatAxis(v.units, v.stdName):
				v.isLat = true
				s.setVarDimCoord(v, did, AxisY)
			case isXAxis(v.stdName):
				v.isXAxis = true
				s.setVarDimCoord(v, did, AxisX)
			case isYAxis(v.stdName):
				v.isYAxis = true
				s.setVarDimCoord(v, did, AxisY)
			case isPressureUnits(v.units):
				v.zaxisType = catalog.ZAxisPressure
			case v.units == "level" || v.units == "1":
				if t, ok := hybridLevelType(v.units, v.longName); ok {
					v.zaxisType = t
				}
			case isDBLAxis(v.longName):
				v.zaxisType = catalog.ZAxisDepthBelowLand
			case isHeightUnits(v.units):
				switch {
				case isDepthAxis(v.stdName, v.longName):
					v.zaxisType = catalog.ZAxisDepthBelowSea
				case isHeightAxis(v.stdName, v.longName):
					v.zaxisType = catalog.ZAxisHeight
				case isAltitudeAxis(v.stdName, v.longName):
					v.zaxisType = catalog.ZAxisAltitude
				}
			}
		} else {
			switch {
			case isReferenceAxis(v.stdName, v.longName):
				v.zaxisType = catalog.ZAxisReference
			case v.stdName == "air_pressure":
				v.zaxisType = catalog.ZAxisPressure
			}
		}
		if s.lonLatByLongName(v, did, true) {
			continue
		}
		if v.zaxisType != catalog.ZAxisUndefined {
			v.isZAxis = true
			s.setVarDimCoord(v, did, AxisZ)
		}
	}
}

// verifyCoordinateVars2 flags the roles of auxiliary coordinates.
func (s *scanner) verifyCoordinateVars2() {
	for i := range s.vars {
		v := &s.vars[i]
		if v.status != CoordVar {
			continue
		}
		if v.units != "" {
			switch {
			case isLonAxis(v.units, v.stdName):
				v.isLon = true
				continue
			case isLatAxis(v.units, v.stdName):
				v.isLat = true
				continue
			case isXAxis(v.stdName):
				v.isXAxis = true
				continue
			case isYAxis(v.stdName):
				v.isYAxis = true
				continue
			case v.stdName == "healpix_index":
				v.isIndexAxis = true
				continue
			case v.zaxisType == catalog.ZAxisUndefined && (v.units == "level" || v.units == "1"):
				if t, ok := hybridLevelType(v.units, v.longName); ok {
					v.zaxisType = t
				}
				continue
			case v.zaxisType == catalog.ZAxisUndefined && isPressureUnits(v.units):
				v.zaxisType = catalog.ZAxisPressure
				continue
			case isDBLAxis(v.longName):
				v.zaxisType = catalog.ZAxisDepthBelowLand
				continue
			case isHeightUnits(v.units):
				if isDepthAxis(v.stdName, v.longName) {
					v.zaxisType = catalog.ZAxisDepthBelowSea
				} else if isHeightAxis(v.stdName, v.longName) {
					v.zaxisType = catalog.ZAxisHeight
				}
				continue
			}
		} else {
			switch {
			case v.stdName == "region", v.stdName == "area_type", s.datatype(v) == catalog.UInt8:
				v.isCharAxis = true
			case v.stdName == "air_pressure":
				v.zaxisType = catalog.ZAxisPressure
			}
		}
		s.lonLatByLongName(v, 0, false)
	}
}

// setUCLADimTypes assigns roles to the dimensions of UCLA-LES output,
// which are named after their axis.
func (s *scanner) setUCLADimTypes() {
	for d := range s.dims {
		dim := &s.dims[d]
		vid, ok := dim.coordVar.Get()
		if !ok || dim.axis != AxisNone {
			continue
		}
		v := &s.vars[vid]
		if v.units == "" || v.units[0] != 'm' {
			continue
		}
		switch dim.name[0] {
		case 'x':
			s.setDimAxis(DimID(d), AxisX)
		case 'y':
			s.setDimAxis(DimID(d), AxisY)
		case 'z':
			s.setDimAxis(DimID(d), AxisZ)
		}
	}
}

// setCoordinateVarIDs resolves the coordinates attribute of each data
// variable into axis variables.
func (s *scanner) setCoordinateVarIDs() {
	for i := range s.vars {
		v := &s.vars[i]
		if v.status != DataVar {
			continue
		}
		for j, cvOpt := range v.coordVars {
			cid, ok := cvOpt.Get()
			if !ok {
				continue
			}
			cv := &s.vars[cid]
			switch {
			case cv.isLon || cv.isXAxis:
				v.xvar = Some(cid)
			case cv.isLat || cv.isYAxis:
				v.yvar = Some(cid)
			case cv.isZAxis:
				v.zvar = Some(cid)
			case cv.isTAxis:
				v.tvar = Some(cid)
			case cv.isCharAxis && j < maxCoordVars:
				v.cvars[j] = Some(cid)
			case cv.isIndexAxis:
				v.ivar = Some(cid)
			case cv.printWarning:
				s.log.Warnf("Coordinates variable %s can't be assigned!", cv.name)
				cv.printWarning = false
			}
		}
	}
}

// charCoords returns the set character coordinates of v in order.
func (v *variable) charCoords() []VarID {
	var ret []VarID
	for _, c := range v.cvars {
		if id, ok := c.Get(); ok {
			ret = append(ret, id)
		}
	}
	return ret
}

// axesPresent reports which horizontal and vertical roles v already has.
func (s *scanner) axesPresent(v *variable) (lx, ly, lz bool) {
	for _, a := range v.dimAxes {
		switch a {
		case AxisX:
			lx = true
		case AxisY:
			ly = true
		case AxisZ:
			lz = true
		}
	}
	if x, ok := v.xvar.Get(); ok && s.vars[x].ndims() == 0 {
		lx = true
	}
	if y, ok := v.yvar.Get(); ok && s.vars[y].ndims() == 0 {
		ly = true
	}
	return lx, ly, lz
}

// setDimTypes fills in the remaining dimension roles of data variables.
func (s *scanner) setDimTypes() {
	for i := range s.vars {
		v := &s.vars[i]
		if v.status != DataVar {
			continue
		}
		for j, d := range v.dims {
			switch a := s.dims[d].axis; a {
			case AxisX, AxisY, AxisZ, AxisT:
				s.setVarDim(v, j, a)
			}
		}
	}

	for i := range s.vars {
		v := &s.vars[i]
		if v.status != DataVar {
			continue
		}
		lx, ly, lz := s.axesPresent(v)
		if !lx || !(ly || v.gridType == catalog.GridUnstructured) {
			continue
		}
		cvars := v.charCoords()
		for j := v.ndims() - 1; j >= 0; j-- {
			if v.dimAxes[j] != AxisNone || lz {
				continue
			}
			s.claimZ(v, j, &cvars)
			lz = true
		}
	}

	for i := range s.vars {
		v := &s.vars[i]
		for j, d := range v.dims {
			if v.dimAxes[j] == AxisNone && s.dims[d].axis == AxisZ {
				v.isZAxis = true
				s.setVarDim(v, j, AxisZ)
			}
		}
	}

	for i := range s.vars {
		v := &s.vars[i]
		if v.status != DataVar {
			continue
		}
		lx, ly, lz := s.axesPresent(v)
		cvars := v.charCoords()
		for j := v.ndims() - 1; j >= 0; j-- {
			if v.dimAxes[j] != AxisNone {
				continue
			}
			switch {
			case !lx:
				if !v.xvar.IsSet() && len(cvars) > 0 {
					v.xvar = Some(cvars[0])
					cvars = cvars[1:]
				}
				s.setVarDim(v, j, AxisX)
				lx = true
			case !ly && v.gridType != catalog.GridUnstructured && !v.isHealpixMapping:
				if !v.yvar.IsSet() && len(cvars) > 0 {
					v.yvar = Some(cvars[0])
					cvars = cvars[1:]
				}
				s.setVarDim(v, j, AxisY)
				ly = true
			case !lz:
				s.claimZ(v, j, &cvars)
				lz = true
			}
		}
	}
}

// claimZ makes the j-th dimension of v its vertical dimension. A pending
// character coordinate becomes the level labels.
func (s *scanner) claimZ(v *variable, j int, cvars *[]VarID) {
	if len(*cvars) > 0 {
		z := (*cvars)[0]
		*cvars = (*cvars)[1:]
		v.zvar = Some(z)
		s.vars[z].zaxisType = catalog.ZAxisChar
	}
	s.setVarDim(v, j, AxisZ)
	if s.dims[v.dims[j]].axis == AxisNone {
		s.setDimAxis(v.dims[j], AxisZ)
	}
}

// processVarQuery demotes data variables the query does not select.
func (s *scanner) processVarQuery() {
	q := s.cfg.Query
	if q == nil || q.NumNames() == 0 {
		return
	}
	for i := range s.vars {
		v := &s.vars[i]
		if v.status == DataVar && !q.HasName(v.name) {
			v.status = CoordVar
		}
	}
}

// verifyVars drops data variables with a dimension that has no role,
// or that did not get a grid and a z-axis.
func (s *scanner) verifyVars() {
	for i := range s.vars {
		v := &s.vars[i]
		if v.status != DataVar {
			continue
		}
		for _, a := range v.dimAxes {
			if a == AxisNone {
				s.demote(v, "Inconsistent number of dimensions, skipped variable %s!", v.name)
				break
			}
		}
		if v.status == DataVar && (!v.grid.IsSet() || !v.zaxis.IsSet()) {
			s.demote(v, "Unsupported data variable %s, skipped!", v.name)
		}
	}
}
