package scan

import (
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

func (s *scanner) defineAllZAxes() {
	for i := range s.vars {
		v := &s.vars[i]
		if v.status == DataVar && !v.zaxis.IsSet() {
			s.defineZAxis(v)
		}
	}
}

// zDim is the last Z dimension of v.
func (v *variable) zDim() Opt[DimID] {
	var zdim Opt[DimID]
	for i, a := range v.dimAxes {
		if a == AxisZ {
			zdim = Some(v.dims[i])
		}
	}
	return zdim
}

func zDatatype(t api.Type) catalog.Datatype {
	switch t {
	case api.TypeFloat:
		return catalog.Flt32
	case api.TypeInt:
		return catalog.Int32
	case api.TypeShort:
		return catalog.Int16
	}
	return catalog.Flt64
}

func (s *scanner) defineZAxis(v *variable) {
	var zdim Opt[DimID]
	var zvar Opt[VarID]
	zsize := 1
	isScalar := false
	if id, ok := v.zvar.Get(); ok && s.vars[id].ndims() == 0 {
		zvar = v.zvar
		isScalar = true
	} else {
		zdim = v.zDim()
		if d, ok := zdim.Get(); ok {
			zvar = orOpt(v.zvar, s.dims[d].coordVar)
			zsize = s.dimLen(d)
		}
	}
	s.checkDimSize(uint64(zsize), "z-axis")

	zaxisType := catalog.ZAxisUndefined
	if id, ok := zvar.Get(); ok {
		zaxisType = s.vars[id].zaxisType
	}
	if zaxisType == catalog.ZAxisUndefined {
		zaxisType = catalog.ZAxisGeneric
	}

	z := catalog.NewZAxis(zaxisType, zsize)
	z.Datatype = catalog.Flt64
	if id, ok := zvar.Get(); ok {
		zv := &s.vars[id]
		z.Positive = zv.positive
		z.Name = zv.name
		z.LongName = zv.longName
		z.Units = zv.units
		z.StdName = zv.stdName
		z.Datatype = zDatatype(zv.xtype)

		if zaxisType == catalog.ZAxisChar && zv.ndims() == 2 {
			z.Datatype = catalog.UInt8
			z.Labels = s.readText(id, nil, nil)
			if len(z.Labels) > zsize {
				z.Labels = z.Labels[:zsize]
			}
		}
		if zaxisType.IsHybrid() {
			z.VCT = s.echamVCT
			if zv.vct != nil {
				z.VCT = zv.vct
				if ps, ok := zv.hybrid.ps.Get(); ok {
					z.PSName = s.vars[ps].name
				}
				if p0, ok := zv.hybrid.p0.Get(); ok {
					z.P0Name = s.vars[p0].name
					z.P0 = s.readScalar(p0)
					z.HasP0 = true
				}
			}
		}
		if zaxisType != catalog.ZAxisChar {
			levels := s.readFloats(id, nil, nil)
			if len(levels) > zsize {
				levels = levels[:zsize]
			}
			z.Levels = catalog.Eager(levels)
		}
		s.readZBounds(z, zv, zsize, isScalar)
		for _, a := range zv.residual {
			z.Attrs.Add(a.Name, a)
		}
	} else {
		if d, ok := zdim.Get(); ok {
			z.Name = s.dims[d].name
		} else if zsize == 1 {
			z.Type = catalog.ZAxisSurface
			if v.zaxisType != catalog.ZAxisUndefined {
				z.Type = v.zaxisType
			}
			z.Levels = catalog.Eager([]float64{0})
		}
		if z.Type.IsHybrid() {
			z.VCT = s.echamVCT
		}
	}
	// half levels carry no surface pressure
	if z.Type != catalog.ZAxisHybrid {
		z.PSName, z.P0Name, z.P0, z.HasP0 = "", "", 0, false
	}
	z.Scalar = isScalar
	z.UUID = s.uuidOfVGrid
	if d, ok := zdim.Get(); ok {
		z.DimName = s.dims[d].name
	}

	zid, _ := s.cat.AddZAxisIfNew(z)
	v.zaxis = Some(zid)
	v.zSize = zsize
	s.zaxisDims[zid] = zdim

	for j := int(v.id) + 1; j < len(s.vars); j++ {
		v2 := &s.vars[j]
		if v2.status != DataVar || v2.zaxis.IsSet() {
			continue
		}
		if s.sameZAxis(v2, zdim, zvar, z.Type) {
			v2.zaxis = v.zaxis
			v2.zSize = zsize
		}
	}
}

// sameZAxis reports whether v2 is defined on the axis built from zdim
// and zvar.
func (s *scanner) sameZAxis(v2 *variable, zdim Opt[DimID], zvar Opt[VarID], zaxisType catalog.ZAxisType) bool {
	var zvar2 Opt[VarID]
	if id, ok := v2.zvar.Get(); ok && s.vars[id].ndims() == 0 {
		zvar2 = v2.zvar
	}
	if !zdim.Same(v2.zDim()) {
		return false
	}
	undef := v2.zaxisType == catalog.ZAxisUndefined
	switch {
	case zdim.IsSet():
		return undef
	case zvar.IsSet() && zvar.Same(zvar2):
		return true
	case zaxisType == v2.zaxisType:
		return true
	}
	return !zvar2.IsSet() && undef
}

// readZBounds reads (level, 2) layer bounds into lower and upper.
func (s *scanner) readZBounds(z *catalog.ZAxis, zv *variable, zsize int, isScalar bool) {
	b, ok := zv.bounds.Get()
	if !ok {
		return
	}
	bv := &s.vars[b]
	if bv.ndims() != 2 && !isScalar {
		return
	}
	nlevel, vi := 1, 0
	if !isScalar {
		nlevel = s.dimLen(bv.dims[0])
		vi = 1
	}
	if vi >= bv.ndims() || nlevel != zsize || s.dimLen(bv.dims[vi]) != 2 {
		return
	}
	vals := s.readFloats(b, nil, nil)
	if len(vals) < 2*nlevel {
		return
	}
	z.Lower = make([]float64, nlevel)
	z.Upper = make([]float64, nlevel)
	for i := 0; i < nlevel; i++ {
		z.Lower[i] = vals[2*i]
		z.Upper[i] = vals[2*i+1]
	}
}
