package scan

// GEOS writes cubed-sphere output with these global attributes.
var cubeSphereAttrs = []string{"additional_vars", "file_format_version", "gridspec_file", "grid_mapping_name"}

// checkCubeSphere detects gnomonic cubed-sphere output. The face
// dimension becomes an ensemble-like E axis, and variables spread over
// the six faces are marked so that their grid is built as one
// unstructured grid.
func (s *scanner) checkCubeSphere() {
	var mapping string
	for _, name := range cubeSphereAttrs {
		a, ok := s.cat.Attrs.Get(name)
		if !ok || !isTextAttr(a) {
			return
		}
		mapping = attrText(a, maxNameLen)
	}
	if !hasPrefix(mapping, "gnomonic cubed-sphere") {
		return
	}
	for _, name := range cubeSphereAttrs {
		s.cat.Attrs.Hide(name)
	}

	var nf Opt[DimID]
	for i := range s.vars {
		v := &s.vars[i]
		if v.ndims() == 1 && v.name == "nf" && s.dimLen(v.dims[0]) == 6 {
			nf = Some(v.dims[0])
			break
		}
	}
	nfDim, ok := nf.Get()
	if !ok {
		return
	}
	s.setDimAxis(nfDim, AxisE)

	for i := range s.vars {
		v := &s.vars[i]
		switch v.name {
		case "orientation", "anchor", "contacts":
			s.setStatus(v, CoordVar)
		}
	}
	for i := range s.vars {
		v := &s.vars[i]
		n := v.ndims()
		if n >= 3 && v.dims[n-3] == nfDim && len(v.coordVars) == 2 && v.gridMapping.IsSet() {
			v.isCubeSphere = true
		}
	}

	var lons, lats, cornerLons, cornerLats Opt[VarID]
	for i := range s.vars {
		v := &s.vars[i]
		if v.ndims() != 3 {
			continue
		}
		switch v.name {
		case "lons":
			lons = Some(v.id)
		case "lats":
			lats = Some(v.id)
		case "corner_lons":
			cornerLons = Some(v.id)
		case "corner_lats":
			cornerLats = Some(v.id)
		}
	}
	x, okX := lons.Get()
	y, okY := lats.Get()
	bx, okBX := cornerLons.Get()
	by, okBY := cornerLats.Get()
	if !okX || !okY || !okBX || !okBY {
		return
	}
	s.setStatus(&s.vars[bx], CoordVar)
	s.setStatus(&s.vars[by], CoordVar)
	s.vars[x].bounds = Some(bx)
	s.vars[y].bounds = Some(by)
}
