package scan

// Axis is the role of a dimension.
type Axis byte

const (
	AxisNone Axis = 0
	AxisX    Axis = 'X'
	AxisY    Axis = 'Y'
	AxisZ    Axis = 'Z'
	AxisE    Axis = 'E'
	AxisT    Axis = 'T'
)

func (a Axis) String() string {
	if a == AxisNone {
		return "-"
	}
	return string(rune(a))
}

// mergeAxis combines the current role of a dimension with a new claim.
// The first defined role wins: claiming the current role again is a
// no-op, and a different role is reported as a conflict and dropped.
func mergeAxis(cur, claim Axis) (Axis, bool) {
	switch {
	case claim == AxisNone || cur == claim:
		return cur, false
	case cur == AxisNone:
		return claim, false
	}
	return cur, true
}

// mergeStatus combines the current status of a variable with a new
// claim. Unclassified takes any claim; conflicting claims leave the
// variable a coordinate. The result is DataVar only if every claim was.
func mergeStatus(cur, claim Status) (Status, bool) {
	switch {
	case claim == Unclassified || cur == claim:
		return cur, false
	case cur == Unclassified:
		return claim, false
	}
	return CoordVar, true
}

// setDimAxis claims role a for dimension d.
func (s *scanner) setDimAxis(d DimID, a Axis) {
	dim := &s.dims[d]
	merged, conflict := mergeAxis(dim.axis, a)
	if conflict {
		s.log.Warnf("Inconsistent dimension definition for %s! Keeping %s axis, ignoring %s.", dim.name, dim.axis, a)
	}
	dim.axis = merged
}

// setStatus claims status st for v.
func (s *scanner) setStatus(v *variable, st Status) {
	merged, conflict := mergeStatus(v.status, st)
	if conflict && v.printWarning {
		if !v.ignore {
			s.log.Warnf("Inconsistent variable definition for %s!", v.name)
		}
		v.printWarning = false
	}
	v.status = merged
}

// demote turns v into a coordinate variable because it cannot be used as
// data.
func (s *scanner) demote(v *variable, format string, args ...any) {
	v.status = CoordVar
	s.log.Warnf(format, args...)
}
