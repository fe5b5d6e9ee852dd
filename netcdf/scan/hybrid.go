package scan

import (
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

const maxFormulaTerms = 4

// formulaTerms resolves the "a: var b: var ..." pairs of a formula_terms
// attribute. Missing variables are reported, except for the surface
// pressure which may live in another file.
func (s *scanner) formulaTerms(v *variable) hybridTerms {
	var t hybridTerms
	f := strings.Fields(attrSet(v.attrs).Text("formula_terms", 1024))
	for i := 0; i < maxFormulaTerms && 2*i+1 < len(f); i++ {
		tag, name := f[2*i], f[2*i+1]
		id, ok := s.lookupVar(name)
		if !ok {
			if tag != "ps:" {
				s.log.Warnf("%s - %s", errVarNotFound, name)
			}
			continue
		}
		switch tag {
		case "ap:", "a:":
			t.a = Some(id)
		case "b:":
			t.b = Some(id)
		case "ps:":
			t.ps = Some(id)
		case "p0:":
			t.p0 = Some(id)
		}
	}
	return t
}

// isHybridSigmaPressure recognizes a CF hybrid sigma pressure coordinate
// and reads its vertical coordinate table from the interface bounds.
func (s *scanner) isHybridSigmaPressure(v *variable) bool {
	if v.stdName != "atmosphere_hybrid_sigma_pressure_coordinate" {
		return false
	}
	v.zaxisType = catalog.ZAxisHybrid
	d := v.dims[0]
	dimlen := s.dimLen(d)

	var t1 hybridTerms
	if v.hasFormulaTerms {
		t1 = s.formulaTerms(v)
	}
	for _, o := range []Opt[VarID]{t1.a, t1.b} {
		if id, ok := o.Get(); ok {
			s.vars[id].status = CoordVar
		}
	}
	if t1.ps.IsSet() {
		v.hybrid.ps = t1.ps
	}
	if t1.p0.IsSet() {
		v.hybrid.p0 = t1.p0
	}

	b, ok := v.bounds.Get()
	if !ok || !s.vars[b].hasFormulaTerms {
		return true
	}
	t2 := s.formulaTerms(&s.vars[b])
	a2, okA := t2.a.Get()
	b2, okB := t2.b.Get()
	if !okA || !okB {
		return true
	}
	s.vars[a2].status = CoordVar
	s.vars[b2].status = CoordVar

	av := &s.vars[a2]
	if av.ndims() == 0 {
		return true
	}
	ndims2 := av.ndims()
	dimlen2 := s.dimLen(av.dims[0])
	if !(ndims2 == 2 && av.dims[0] == d) && !(ndims2 == 1 && dimlen == dimlen2-1) {
		return true
	}
	px := 1.0
	if p0, ok := t1.p0.Get(); ok && t1.p0.Same(t2.p0) {
		px = s.readScalar(p0)
	}
	vct := s.readVCT(ndims2, dimlen, dimlen2, a2, b2)
	if t1.p0.IsSet() && px != 1 {
		floats.Scale(px, vct[:dimlen+1])
	}
	v.vct = vct
	return true
}

// readVCT assembles the a and b interface coefficients from either
// (level, 2) bounds arrays or 1-D interface arrays.
func (s *scanner) readVCT(ndims2, dimlen, dimlen2 int, a, b VarID) []float64 {
	vct := make([]float64, (dimlen+1)*2)
	abuf := s.readFloats(a, nil, nil)
	bbuf := s.readFloats(b, nil, nil)
	if ndims2 == 2 {
		if len(abuf) < dimlen*2 || len(bbuf) < dimlen*2 {
			return vct
		}
		for i := 0; i < dimlen; i++ {
			vct[i] = abuf[i*2]
			vct[i+dimlen+1] = bbuf[i*2]
		}
		vct[dimlen] = abuf[dimlen*2-1]
		vct[dimlen*2+1] = bbuf[dimlen*2-1]
		return vct
	}
	for i := 0; i < dimlen2 && i < len(abuf) && i < len(bbuf); i++ {
		vct[i] = abuf[i]
		vct[i+dimlen+1] = bbuf[i]
	}
	return vct
}

// readEchamVCT reads the hyai/hybi interface coefficients written by
// ECHAM and hides the coefficient variables.
func (s *scanner) readEchamVCT() {
	var vcta, vctb Opt[VarID]
	var nvct Opt[DimID]
	for i := range s.vars {
		v := &s.vars[i]
		if v.ndims() != 1 || len(v.name) != 4 || !hasPrefix(v.name, "hy") {
			continue
		}
		switch v.name[2:] {
		case "ai":
			vcta = Some(v.id)
			nvct = Some(v.dims[0])
			v.status = CoordVar
		case "bi":
			vctb = Some(v.id)
			nvct = Some(v.dims[0])
			v.status = CoordVar
		case "am", "bm":
			v.status = CoordVar
		}
	}
	d, ok := nvct.Get()
	if !ok || !vcta.IsSet() || !vctb.IsSet() {
		return
	}
	a, _ := vcta.Get()
	b, _ := vctb.Get()
	n := s.dimLen(d)
	vct := make([]float64, 2*n)
	copy(vct[:n], s.readFloats(a, nil, nil))
	copy(vct[n:], s.readFloats(b, nil, nil))
	s.echamVCT = vct
}
