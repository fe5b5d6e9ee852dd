package scan

import (
	"fmt"
	"strings"

	"github.com/batchatco/go-netcdf-catalog/internal"
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

type valueKind int

const (
	kindText valueKind = iota
	kindNumber
)

func (k valueKind) matches(a api.Attribute) bool {
	if k == kindText {
		return isTextAttr(a)
	}
	return isNumberAttr(a)
}

// attrHandler consumes one attribute of a variable. It returns false when
// the attribute should be kept as a residual attribute instead.
type attrHandler struct {
	kind   valueKind
	handle func(s *scanner, v *variable, a api.Attribute) bool
}

// varAttrVocabulary is keyed by attribute name. An attribute whose stored
// kind does not match its entry is kept as residual.
var varAttrVocabulary map[string]attrHandler

func init() {
	text := func(f func(s *scanner, v *variable, a api.Attribute) bool) attrHandler {
		return attrHandler{kindText, f}
	}
	number := func(f func(s *scanner, v *variable, a api.Attribute) bool) attrHandler {
		return attrHandler{kindNumber, f}
	}
	varAttrVocabulary = map[string]attrHandler{
		"long_name": text(func(s *scanner, v *variable, a api.Attribute) bool {
			v.longName = attrText(a, maxNameLen)
			return true
		}),
		"standard_name": text(func(s *scanner, v *variable, a api.Attribute) bool {
			v.stdName = attrText(a, maxNameLen)
			return true
		}),
		"units": text(func(s *scanner, v *variable, a api.Attribute) bool {
			v.units = attrText(a, maxNameLen)
			return true
		}),
		"calendar": text(func(s *scanner, v *variable, a api.Attribute) bool {
			v.hasCalendar = true
			return true
		}),
		"param":                       text(handleParam),
		"trunc_type":                  text(handleTruncType),
		"grid_type":                   text(handleGridType),
		"CDI_grid_type":               text(handleGridType),
		"CDI_grid_latitudes":          text(handleGridLatitudes),
		"CDI_grid_reduced_points":     text(handleReducedPoints),
		"level_type":                  text(handleLevelType),
		"climatology":                 text(handleClimatology),
		"bounds":                      text(handleBounds),
		"formula_terms":               text(handleFormulaTerms),
		"cell_measures":               text(handleCellMeasures),
		"coordinates":                 text(handleCoordinates),
		"associate":                   text(handleCoordinates),
		"auxiliary_variable":          text(handleAuxiliary),
		"grid_mapping":                text(handleGridMapping),
		"positive":                    text(handlePositive),
		"cdi":                         text(handleCDI),
		"_Unsigned":                   text(handleUnsigned),
		"code":                        number(handleCode),
		"table":                       number(handleTable),
		"CDI_grid_num_LPE":            number(func(s *scanner, v *variable, a api.Attribute) bool { v.numLPE = firstInt(a); return true }),
		"trunc_count":                 number(func(s *scanner, v *variable, a api.Attribute) bool { v.trunc = firstInt(a); return true }),
		"truncation":                  number(func(s *scanner, v *variable, a api.Attribute) bool { v.trunc = firstInt(a); return true }),
		"number_of_grid_in_reference": number(func(s *scanner, v *variable, a api.Attribute) bool { v.position = firstInt(a); return true }),
		"add_offset":                  number(func(s *scanner, v *variable, a api.Attribute) bool { v.addOffset = firstFloat(a); return true }),
		"scale_factor":                number(func(s *scanner, v *variable, a api.Attribute) bool { v.scaleFactor = firstFloat(a); return true }),
		"_FillValue":                  number(handleFillValue),
		"missing_value":               number(handleMissingValue),
		"valid_range":                 number(handleValidRange),
		"valid_min":                   number(handleValidMin),
		"valid_max":                   number(handleValidMax),
		"realization":                 number(handleEnsemble),
		"ensemble_members":            number(handleEnsemble),
		"forecast_init_type":          number(handleEnsemble),
	}
}

func firstInt(a api.Attribute) int {
	if vals := attrInt64s(a); len(vals) > 0 {
		return int(vals[0])
	}
	return 0
}

func firstFloat(a api.Attribute) float64 {
	if vals := attrFloats(a); len(vals) > 0 {
		return vals[0]
	}
	return 0
}

// scanVarsAttr runs every variable attribute through the vocabulary.
func (s *scanner) scanVarsAttr() {
	for i := range s.vars {
		v := &s.vars[i]
		for _, a := range v.attrs {
			h, ok := varAttrVocabulary[a.Name]
			if ok && h.kind.matches(a) && h.handle(s, v, a) {
				continue
			}
			v.residual = append(v.residual, a)
		}
	}
}

func handleParam(s *scanner, v *variable, a api.Attribute) bool {
	p := catalog.Param{Num: 0, Cat: 255, Dis: 255}
	fmt.Sscanf(attrText(a, maxNameLen), "%d.%d.%d", &p.Num, &p.Cat, &p.Dis)
	v.param = p
	v.hasParam = true
	s.setStatus(v, DataVar)
	return true
}

func handleTruncType(s *scanner, v *variable, a api.Attribute) bool {
	if attrText(a, maxNameLen) == "Triangular" {
		v.gridType = catalog.GridSpectral
	}
	return true
}

func handleGridType(s *scanner, v *variable, a api.Attribute) bool {
	name := strings.ToLower(attrText(a, maxNameLen))
	gt, ok, known := gridTypeFromAttr(name)
	switch {
	case ok:
		v.gridType = gt
	case !known:
		s.log.Warnf("Unsupported grid type: %s", name)
	}
	s.setStatus(v, DataVar)
	return true
}

// linkVar resolves a sibling variable named by an attribute.
func (s *scanner) linkVar(name string) (VarID, bool) {
	if name == "" {
		return 0, false
	}
	return s.lookupVar(name)
}

func handleGridLatitudes(s *scanner, v *variable, a api.Attribute) bool {
	name := attrText(a, maxNameLen)
	if id, ok := s.linkVar(name); ok {
		v.yvar = Some(id)
		s.setStatus(&s.vars[id], CoordVar)
	} else {
		s.log.Warnf("%s - %s", errVarNotFound, name)
	}
	s.setStatus(v, DataVar)
	return true
}

func handleReducedPoints(s *scanner, v *variable, a api.Attribute) bool {
	name := attrText(a, maxNameLen)
	if id, ok := s.linkVar(name); ok {
		v.rpvar = Some(id)
		s.setStatus(&s.vars[id], CoordVar)
	} else {
		s.log.Warnf("%s - %s", errVarNotFound, name)
	}
	s.setStatus(v, DataVar)
	return true
}

func handleLevelType(s *scanner, v *variable, a api.Attribute) bool {
	name := strings.ToLower(attrText(a, maxNameLen))
	if zt, ok := levelTypes[name]; ok {
		v.zaxisType = zt
	} else {
		s.log.Warnf("Unsupported zaxis type: %s", name)
	}
	s.setStatus(v, DataVar)
	return true
}

func handleClimatology(s *scanner, v *variable, a api.Attribute) bool {
	name := attrText(a, maxNameLen)
	if id, ok := s.linkVar(name); ok {
		v.bounds = Some(id)
		v.isClimatology = true
		s.setStatus(&s.vars[id], CoordVar)
		s.setStatus(v, CoordVar)
	} else {
		s.log.Warnf("%s - %s", errVarNotFound, name)
	}
	return true
}

func handleBounds(s *scanner, v *variable, a api.Attribute) bool {
	name := attrText(a, maxNameLen)
	if id, ok := s.linkVar(name); ok {
		v.bounds = Some(id)
		s.setStatus(&s.vars[id], CoordVar)
		s.setStatus(v, CoordVar)
	} else {
		s.log.Warnf("%s - %s", errVarNotFound, name)
	}
	return true
}

func handleFormulaTerms(s *scanner, v *variable, a api.Attribute) bool {
	v.hasFormulaTerms = true
	return true
}

// handleCellMeasures links "area: name". Other measures stay residual.
func handleCellMeasures(s *scanner, v *variable, a api.Attribute) bool {
	f := strings.Fields(attrText(a, 8192))
	if len(f) < 2 || !hasPrefix(f[0], "area") {
		return false
	}
	id, ok := s.linkVar(f[1])
	if !ok {
		return false
	}
	v.cellArea = Some(id)
	s.vars[id].status = CoordVar
	s.setStatus(v, DataVar)
	return true
}

func handleCoordinates(s *scanner, v *variable, a api.Attribute) bool {
	for _, name := range internal.SplitNames(attrText(a, 8192), maxCoordVars) {
		id, ok := s.linkVar(name)
		if ok && s.isValidCoordinate(&s.vars[id]) {
			s.setStatus(&s.vars[id], CoordVar)
			v.coordVars = append(v.coordVars, Some(id))
			continue
		}
		if !ok {
			s.warnMissingCoordinate(v, name)
		}
		v.coordVars = append(v.coordVars, None[VarID]())
	}
	s.setStatus(v, DataVar)
	return true
}

// isValidCoordinate rejects multidimensional geopotential heights that
// some models list among the coordinates.
func (s *scanner) isValidCoordinate(c *variable) bool {
	return !(c.ndims() > 1 && (c.name == "zg" || c.name == "zghalf"))
}

func (s *scanner) warnMissingCoordinate(v *variable, name string) {
	if s.missingCoords[name] || len(s.missingCoords) >= maxCheckVars {
		return
	}
	s.missingCoords[name] = true
	s.log.Warnf("%s - >%s<", errVarNotFound, name)
}

func handleAuxiliary(s *scanner, v *variable, a api.Attribute) bool {
	for _, name := range internal.SplitNames(attrText(a, 8192), maxAuxVars) {
		if id, ok := s.linkVar(name); ok {
			s.setStatus(&s.vars[id], CoordVar)
			v.auxVars = append(v.auxVars, id)
		} else {
			s.log.Warnf("%s - %s", errVarNotFound, name)
		}
	}
	s.setStatus(v, DataVar)
	return true
}

func handleGridMapping(s *scanner, v *variable, a api.Attribute) bool {
	name := attrText(a, maxNameLen)
	if id, ok := s.linkVar(name); ok {
		v.gridMapping = Some(id)
		gm := &s.vars[id]
		s.setStatus(gm, CoordVar)
		switch attrSet(gm.attrs).Text("grid_mapping_name", maxNameLen) {
		case "healpix":
			v.isHealpixMapping = true
		case "latitude_longitude":
			v.isLonLatMapping = true
		}
	} else {
		s.log.Warnf("%s - %s", errVarNotFound, name)
	}
	s.setStatus(v, DataVar)
	return true
}

func handlePositive(s *scanner, v *variable, a api.Attribute) bool {
	switch strings.ToLower(attrText(a, maxNameLen)) {
	case "down":
		v.positive = 2
	case "up":
		v.positive = 1
	}
	if v.status != Unclassified {
		return false
	}
	switch {
	case v.ndims() == 0:
		s.setStatus(v, CoordVar)
		v.isZAxis = true
		return true
	case v.ndims() == 1:
		d := v.dims[0]
		if v.dimAxes[0] != AxisNone || s.dims[d].coordVar.IsSet() {
			return false
		}
		s.setStatus(v, CoordVar)
		v.isZAxis = true
		v.dimAxes[0] = AxisZ
		s.setDimAxis(d, AxisZ)
		return true
	}
	return false
}

func handleCDI(s *scanner, v *variable, a api.Attribute) bool {
	if strings.EqualFold(attrText(a, maxNameLen), "ignore") {
		v.ignore = true
		s.setStatus(v, CoordVar)
	}
	return true
}

func handleUnsigned(s *scanner, v *variable, a api.Attribute) bool {
	if strings.EqualFold(attrText(a, maxNameLen), "true") {
		v.isUnsigned = true
	}
	return true
}

func handleCode(s *scanner, v *variable, a api.Attribute) bool {
	v.code = firstInt(a)
	v.hasCode = true
	s.setStatus(v, DataVar)
	return true
}

func handleTable(s *scanner, v *variable, a api.Attribute) bool {
	if t := firstInt(a); t > 0 {
		v.table = t
	}
	s.setStatus(v, DataVar)
	return true
}

func handleFillValue(s *scanner, v *variable, a api.Attribute) bool {
	v.fillval = firstFloat(a)
	v.hasFillval = true
	return true
}

func handleMissingValue(s *scanner, v *variable, a api.Attribute) bool {
	v.missval = firstFloat(a)
	v.hasMissval = true
	return true
}

// validRangeUsable reports whether a valid_* attribute may be read into v.
// Attributes whose float-ness differs from the variable are reported.
func (s *scanner) validRangeUsable(v *variable, a api.Attribute) bool {
	if a.Type.IsFloat() != v.xtype.IsFloat() {
		s.log.Warnf("Inconsistent data type for attribute %s:%s, ignored!", v.name, a.Name)
		return false
	}
	return !s.cfg.IgnoreValidRange
}

func handleValidRange(s *scanner, v *variable, a api.Attribute) bool {
	if a.Len() != 2 {
		return false
	}
	if v.hasValidRange || !s.validRangeUsable(v, a) {
		return true
	}
	vals := attrFloats(a)
	v.validRange = [2]float64{vals[0], vals[1]}
	v.hasValidRange = vals[0] <= vals[1]
	if int(vals[0]) == 0 && int(vals[1]) == 255 {
		v.isUnsigned = true
	}
	return true
}

func handleValidMin(s *scanner, v *variable, a api.Attribute) bool {
	return handleValidBound(s, v, a, 0)
}

func handleValidMax(s *scanner, v *variable, a api.Attribute) bool {
	return handleValidBound(s, v, a, 1)
}

func handleValidBound(s *scanner, v *variable, a api.Attribute, i int) bool {
	if a.Len() != 1 {
		return false
	}
	if s.validRangeUsable(v, a) {
		v.validRange[i] = firstFloat(a)
		v.hasValidRange = true
	}
	return true
}

func handleEnsemble(s *scanner, v *variable, a api.Attribute) bool {
	if v.ensemble == nil {
		v.ensemble = &catalog.Ensemble{Realization: -1, Members: -1, InitType: -1}
	}
	n := firstInt(a)
	switch a.Name {
	case "realization":
		v.ensemble.Realization = n
	case "ensemble_members":
		v.ensemble.Members = n
	case "forecast_init_type":
		v.ensemble.InitType = n
	}
	s.setStatus(v, DataVar)
	return true
}
