package scan

import (
	"math"

	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

// gridPart is the cell window selected by a query.
type gridPart struct {
	start, count int
	readPart     bool
}

func (s *scanner) defineAllGrids() {
	for i := range s.vars {
		v := &s.vars[i]
		if v.status == DataVar && !v.grid.IsSet() {
			s.defineGrid(v)
		}
	}
}

// xyDimsOf finds the horizontal dimensions of v. Two X (or two Y)
// dimensions are read as y, x in storage order.
func (s *scanner) xyDimsOf(v *variable) (xdim, ydim Opt[DimID], nydims int) {
	var xs, ys []DimID
	for i, a := range v.dimAxes {
		switch {
		case a == AxisX && len(xs) < 2:
			xs = append(xs, v.dims[i])
		case a == AxisY && len(ys) < 2:
			ys = append(ys, v.dims[i])
		}
	}
	switch {
	case len(xs) == 2:
		return Some(xs[1]), Some(xs[0]), len(ys)
	case len(ys) == 2:
		return Some(ys[1]), Some(ys[0]), len(ys)
	}
	if len(xs) > 0 {
		xdim = Some(xs[0])
	}
	if len(ys) > 0 {
		ydim = Some(ys[0])
	}
	return xdim, ydim, len(ys)
}

func (s *scanner) dimCoord(d Opt[DimID]) Opt[VarID] {
	if id, ok := d.Get(); ok {
		return s.dims[id].coordVar
	}
	return None[VarID]()
}

func (s *scanner) optDimLen(d Opt[DimID]) int {
	if id, ok := d.Get(); ok {
		return s.dimLen(id)
	}
	return 0
}

func orOpt[T ~int](a, b Opt[T]) Opt[T] {
	if a.IsSet() {
		return a
	}
	return b
}

func (s *scanner) defineGrid(v *variable) {
	xdim, ydim, nydims := s.xyDimsOf(v)
	xaxis, yaxis := s.dimCoord(xdim), s.dimCoord(ydim)
	xvar := orOpt(v.xvar, xaxis)
	yvar := orOpt(v.yvar, yaxis)
	xsize, ysize := s.optDimLen(xdim), s.optDimLen(ydim)

	if y, ok := yvar.Get(); ok && !ydim.IsSet() && s.vars[y].ndims() == 1 {
		ydim = Some(s.vars[y].dims[0])
		ysize = s.dimLen(s.vars[y].dims[0])
	}

	gm, lproj := v.gridMapping.Get()
	isHealpix := lproj && v.isHealpixMapping && s.hasIntAttr(gm, "refinement_level")
	if isHealpix {
		v.gridType = catalog.GridHealpix
	}
	if !lproj && xaxis.IsSet() && !xaxis.Same(xvar) && yaxis.IsSet() && !yaxis.Same(yvar) {
		lproj = true
	}
	if v.isCubeSphere && lproj && s.ndimsIs(xvar, 3) && s.ndimsIs(yvar, 3) {
		lproj = false
		v.gridType = catalog.GridUnstructured
		xsize = xsize * ysize * 6
		ysize = xsize
	}
	lgrid := !(lproj && !v.xvar.IsSet())

	isUnstructured := xdim.IsSet() && xdim.Same(ydim) && nydims == 0
	if (v.gridType == catalog.GridUndefined || v.gridType == catalog.GridGeneric) && isUnstructured {
		v.gridType = catalog.GridUnstructured
	}

	gridType := v.gridType
	if !lgrid && !isHealpix {
		gridType = catalog.GridProjection
	}
	grid := catalog.NewGrid(gridType)
	var proj *catalog.Grid
	if lgrid && lproj {
		proj = catalog.NewGrid(catalog.GridProjection)
	}
	xaxis, yaxis = s.dimCoord(xdim), s.dimCoord(ydim)

	part, ok := s.gridQuery(v, xdim, ydim, &xsize, &ysize)
	if !ok {
		return
	}
	var vdim Opt[DimID]
	if !s.readCoordinates(grid, v, xvar, yvar, xsize, ysize, &part, &vdim) {
		return
	}
	if s.gridInfo.hasGridUsed && (grid.Type == catalog.GridUndefined || grid.Type == catalog.GridGeneric) &&
		xdim.IsSet() && xsize > 999 {
		grid.Type = catalog.GridUnstructured
	}
	if !v.isCubeSphere && grid.Type == catalog.GridUnstructured {
		if !s.setUnstructuredPar(v, grid, &xdim, &ydim, part.readPart) {
			return
		}
	}
	if proj != nil {
		var pdim Opt[DimID]
		s.readCoordinates(proj, v, xaxis, yaxis, xsize, ysize, nil, &pdim)
	}

	if lproj {
		target := grid
		if proj != nil {
			target = proj
		}
		if gm, ok := v.gridMapping.Get(); ok {
			s.setMapping(target, gm)
		}
	}
	if grid.Type == catalog.GridUnstructured && s.gridInfo.gridFile != "" && !part.readPart {
		grid.ReferenceURI = s.gridInfo.gridFile
	}
	if d, ok := xdim.Get(); ok {
		grid.X.DimName = s.dims[d].name
	}
	if d, ok := ydim.Get(); ok {
		grid.Y.DimName = s.dims[d].name
	}
	if d, ok := vdim.Get(); ok {
		grid.VDimName = s.dims[d].name
	}
	if x, ok := xvar.Get(); ok && s.vars[x].stdName != "" {
		grid.X.StdName = s.vars[x].stdName
	}
	if y, ok := yvar.Get(); ok && s.vars[y].stdName != "" {
		grid.Y.StdName = s.vars[y].stdName
	}

	if proj != nil {
		pid, _ := s.cat.AddGridIfNew(proj)
		grid.Projected = s.cat.Grid(pid)
	}
	gid, _ := s.cat.AddGridIfNew(grid)
	g := s.cat.Grid(gid)
	v.grid = Some(gid)
	v.gridSize, v.xSize, v.ySize = g.Size, g.XSize, g.YSize
	if v.chunking.Chunked {
		s.setChunkType(g, v)
	}
	s.gridDims[gid] = xyDims{x: xdim, y: ydim}

	for j := int(v.id) + 1; j < len(s.vars); j++ {
		s.setGridToSimilarVar(v, &s.vars[j], g.Type, xdim, ydim)
	}
}

func (s *scanner) ndimsIs(o Opt[VarID], n int) bool {
	id, ok := o.Get()
	return ok && s.vars[id].ndims() == n
}

func (s *scanner) hasIntAttr(vid VarID, name string) bool {
	a, ok := attrSet(s.vars[vid].attrs).find(name)
	return ok && a.Type.IsInteger()
}

// setMapping attaches the grid mapping variable to a projected grid.
func (s *scanner) setMapping(g *catalog.Grid, gm VarID) {
	mv := &s.vars[gm]
	g.MappingVarName = mv.name
	g.MappingName = attrSet(mv.attrs).Text("grid_mapping_name", maxNameLen)
	for _, a := range mv.residual {
		if a.Name == "_FillValue" {
			continue
		}
		g.Mapping.Add(a.Name, a)
	}
}

// gridQuery applies a cell window to 1-D grids.
func (s *scanner) gridQuery(v *variable, xdim, ydim Opt[DimID], xsize, ysize *int) (gridPart, bool) {
	var part gridPart
	q := s.cfg.Query
	if q == nil {
		return part, true
	}
	start, count, ok := q.CellRange()
	if !ok {
		return part, true
	}
	if xdim.IsSet() && ydim.IsSet() {
		s.demote(v, "Query parameter cell is only available for 1D grids, skipped variable %s!", v.name)
		return part, false
	}
	if start+count <= *xsize {
		*xsize, *ysize = count, count
		part = gridPart{start: start - 1, count: count, readPart: true}
	}
	return part, true
}

// readCoordinates fills g from the x and y coordinate variables. It
// returns false when v has been skipped.
func (s *scanner) readCoordinates(g *catalog.Grid, v *variable, xvar, yvar Opt[VarID], xsize, ysize int,
	part *gridPart, vdim *Opt[DimID]) bool {
	g.X.Datatype, g.Y.Datatype = catalog.Flt64, catalog.Flt64
	size := 0
	start := []int{0, 0, 0}
	count := []int{1, 1, 1}
	readPart := false

	if v.gridType == catalog.GridTrajectory {
		if !v.xvar.IsSet() {
			s.log.Errorf("Longitude coordinates undefined for %s!", v.name)
			v.status = CoordVar
			return false
		}
		if !v.yvar.IsSet() {
			s.log.Errorf("Latitude coordinates undefined for %s!", v.name)
			v.status = CoordVar
			return false
		}
	} else {
		ht := 0
		x, okX := xvar.Get()
		y, okY := yvar.Get()
		if okX && okY {
			xv, yv := &s.vars[x], &s.vars[y]
			n := xv.ndims()
			switch {
			case n != yv.ndims() && !xv.isCharAxis && !yv.isCharAxis:
				s.log.Warnf("Inconsistent grid structure for variable %s!", v.name)
				v.xvar, v.yvar = None[VarID](), None[VarID]()
				xvar, yvar = None[VarID](), None[VarID]()
			case n > 3:
				s.log.Warnf("Unsupported grid structure for variable %s (grid dims > 2)!", v.name)
				v.xvar, v.yvar = None[VarID](), None[VarID]()
				xvar, yvar = None[VarID](), None[VarID]()
			case n > 1:
				if s.timeDim.Is(xv.dims[0]) && s.timeDim.Is(yv.dims[0]) {
					if s.ntsteps > 1 {
						s.log.Warnf("Time varying grids unsupported, using grid at time step 1!")
					}
					ht = 1
					for i := 1; i < n; i++ {
						count[i] = s.dimLen(xv.dims[i])
					}
				}
			case part != nil && part.readPart:
				start[0], count[0] = part.start, part.count
				readPart = true
			}
		}
		for _, o := range []*Opt[VarID]{&xvar, &yvar} {
			id, ok := o.Get()
			if ok && !v.isCubeSphere && s.vars[id].ndims()-ht > 2 {
				s.log.Warnf("Coordinates variable %s has too many dimensions (%d), skipped!", s.vars[id].name, s.vars[id].ndims())
				*o = None[VarID]()
			}
		}

		var isLon, isLat bool
		if x, ok := xvar.Get(); ok {
			isLon = s.vars[x].isLon
			if !s.readAxisCoord(&g.X, v, x, false, &xsize, &ysize, ht, readPart, start, count) {
				return false
			}
		}
		if y, ok := yvar.Get(); ok {
			isLat = s.vars[y].isLat
			if !s.readAxisCoord(&g.Y, v, y, true, &xsize, &ysize, ht, readPart, start, count) {
				return false
			}
		}

		switch {
		case v.gridType == catalog.GridUnstructured, v.gridType == catalog.GridGaussianReduced, ysize == 0:
			size = xsize
		case xsize == 0:
			size = ysize
		default:
			size = xsize * ysize
		}
		if v.gridType == catalog.GridUndefined || v.gridType == catalog.GridGeneric {
			v.gridType = s.checkGridType(g, isLon, isLat, xsize, ysize)
		}
	}

	gridType := g.Type
	if gridType != catalog.GridProjection || (v.gridType == catalog.GridLonLat && v.isLonLatMapping) {
		gridType = v.gridType
	}

	switch gridType {
	case catalog.GridGeneric, catalog.GridLonLat, catalog.GridGaussian, catalog.GridUnstructured,
		catalog.GridCurvilinear, catalog.GridProjection:
		g.Size, g.XSize, g.YSize = size, xsize, ysize
		if s.cfg.ReadCellCorners {
			if x, ok := xvar.Get(); ok {
				s.readBounds(g, &g.X, v, x, false, vdim, readPart, start, count)
			}
			if y, ok := yvar.Get(); ok {
				s.readBounds(g, &g.Y, v, y, true, vdim, readPart, start, count)
			}
		}
		if ca, ok := v.cellArea.Get(); ok {
			g.Area = s.loadValues(ca, nil, nil, 1, 0)
		}
		if gridType == catalog.GridGaussian && v.numLPE > 0 {
			g.NP = v.numLPE
		}
	case catalog.GridHealpix:
		g.Size = size
		if iv, ok := v.ivar.Get(); ok {
			g.Indices = s.readInts(iv)
		}
	case catalog.GridGaussianReduced:
		if rp, ok := v.rpvar.Get(); ok && v.numLPE > 0 && s.vars[rp].ndims() == 1 {
			g.Size = size
			s.readReducedPoints(g, v, rp, yvar, vdim)
		}
	case catalog.GridSpectral:
		g.Size = size
		g.LComplex = true
		g.Trunc = v.trunc
	case catalog.GridFourier:
		g.Size = size
		g.Trunc = v.trunc
	case catalog.GridTrajectory:
		g.Size = 1
	case catalog.GridCharXY:
		g.Size, g.XSize, g.YSize = size, xsize, ysize
	}
	g.Type = gridType

	if g.Size == 0 {
		if !s.scalarGridShape(v) {
			s.demote(v, "Unsupported grid, skipped variable %s!", v.name)
			return false
		}
		g.Type = catalog.GridGeneric
		g.Size, g.XSize, g.YSize = 1, 0, 0
	}
	return true
}

// scalarGridShape reports whether v has no horizontal extent: it is a
// scalar, a time series, a profile or a time series of profiles.
func (s *scanner) scalarGridShape(v *variable) bool {
	a := v.dimAxes
	switch len(a) {
	case 0:
		return true
	case 1:
		return a[0] == AxisT || a[0] == AxisZ
	case 2:
		return a[0] == AxisT && a[1] == AxisZ
	}
	return false
}

// readAxisCoord reads the coordinate variable cid into ax. isY selects the
// y rules. It returns false when v has been skipped.
func (s *scanner) readAxisCoord(ax *catalog.Axis, v *variable, cid VarID, isY bool, xsize, ysize *int,
	ht int, readPart bool, start, count []int) bool {
	cv := &s.vars[cid]
	n := cv.ndims()
	label := "x"
	own := xsize
	if isY {
		label = "y"
		own = ysize
	}
	if n == 1 && cv.xtype.IsText() {
		s.demote(v, "Unsupported %s-coordinate type (char/string), skipped variable %s!", label, v.name)
		return false
	}
	dt := s.datatype(cv)

	size := 0
	skip := true
	switch {
	case n-ht == 2:
		d1 := s.dimLen(cv.dims[n-2])
		d2 := s.dimLen(cv.dims[n-1])
		if dt == catalog.UInt8 {
			v.gridType = catalog.GridCharXY
			size = d1 * d2
			skip = d1 != *own
		} else {
			v.gridType = catalog.GridCurvilinear
			size = *xsize * *ysize
			skip = d1*d2 != size
		}
	case n-ht == 1:
		size = *own
		if isY && size == 0 {
			size = *xsize
		}
		skip = !readPart && s.dimLen(cv.dims[n-1]) != size
	case n == 0 && *own == 0:
		*own = 1
		skip = false
	case v.isCubeSphere:
		skip = false
	}
	if skip {
		s.demote(v, "Unsupported array structure, skipped variable %s!", v.name)
		return false
	}

	if dt != catalog.DatatypeUndefined {
		ax.Datatype = dt
	}
	switch {
	case dt == catalog.UInt8 && cv.xtype.IsText():
		ax.Labels = s.readText(cid, nil, nil)
	case s.cfg.ReadCellCenters:
		var ws, wc []int
		if ht == 1 || readPart {
			ws, wc = start[:n], count[:n]
		}
		ax.Values = s.loadValues(cid, ws, wc, cv.scaleFactor, cv.addOffset)
	}
	ax.Name = cv.name
	ax.LongName = cv.longName
	ax.Units = cv.units
	return true
}

// checkGridType tells regular and Gaussian longitude/latitude grids from
// generic ones by their coordinates.
func (s *scanner) checkGridType(g *catalog.Grid, isLon, isLat bool, xsize, ysize int) catalog.GridType {
	if !g.Y.Values.IsSet() {
		return catalog.GridGeneric
	}
	if !(isLat && (isLon || xsize == 0)) {
		if isLon && !isLat && ysize == 0 {
			return catalog.GridLonLat
		}
		return catalog.GridGeneric
	}
	lats, err := g.Y.Values.Values()
	if err != nil {
		s.log.Errorf("Reading latitudes failed: %v", err)
		return catalog.GridLonLat
	}
	if ysize > len(lats) {
		ysize = len(lats)
	}
	yinc := 0.0
	if isLon && ysize > 1 {
		yinc = math.Abs(lats[0] - lats[1])
		for i := 2; i < ysize; i++ {
			if math.Abs(lats[i-1]-lats[i])-yinc > yinc*s.cfg.GaussianTolerance {
				yinc = 0
				break
			}
		}
	}
	if ysize < s.cfg.GaussianMaxRows && yinc == 0 && isGaussianLatitudes(lats[:ysize]) {
		g.NP = ysize / 2
		return catalog.GridGaussian
	}
	return catalog.GridLonLat
}

// readBounds reads the cell bounds of coordinate cid. The vertex
// dimension is taken from the x bounds, or from the y bounds when x has
// none.
func (s *scanner) readBounds(g *catalog.Grid, ax *catalog.Axis, v *variable, cid VarID, isY bool,
	vdim *Opt[DimID], readPart bool, start, count []int) {
	b, ok := s.vars[cid].bounds.Get()
	if !ok {
		return
	}
	label := "x"
	if isY {
		label = "y"
	}
	bv := &s.vars[b]
	nb := bv.ndims()
	if nb != 2 && nb != 3 {
		return
	}
	switch {
	case s.timeDim.Is(bv.dims[0]):
		s.log.Warnf("Time varying grid %s-bounds unsupported, skipped!", label)
	case v.isCubeSphere:
		g.NVertex = 4
		if nb == 3 {
			ax.Bounds = catalog.Eager(s.cubeSphereBounds(b, g.Size))
		}
	case nb == s.vars[cid].ndims()+1:
		if !isY || !vdim.IsSet() {
			*vdim = Some(bv.dims[nb-1])
			g.NVertex = s.dimLen(bv.dims[nb-1])
		}
		var bs, bc []int
		if readPart {
			bs = []int{start[0], 0}
			bc = []int{count[0], g.NVertex}
		}
		ax.Bounds = s.loadValues(b, bs, bc, 1, 0)
	default:
		s.log.Warnf("%s-bounds doesn't follow the CF-Convention, skipped!", label)
	}
}

// cubeSphereBounds turns the (face, y+1, x+1) corner arrays of a cubed
// sphere into four vertices per cell.
func (s *scanner) cubeSphereBounds(b VarID, size int) []float64 {
	bv := &s.vars[b]
	bx := s.dimLen(bv.dims[2])
	by := s.dimLen(bv.dims[1])
	corners := s.readFloats(b, nil, nil)
	if len(corners) < 6*bx*by {
		return nil
	}
	out := make([]float64, 0, size*4)
	for k := 0; k < 6; k++ {
		off := k * by * bx
		for j := 0; j < by-1; j++ {
			for i := 0; i < bx-1; i++ {
				out = append(out,
					corners[off+(j+1)*bx+i],
					corners[off+j*bx+i],
					corners[off+j*bx+i+1],
					corners[off+(j+1)*bx+i+1])
			}
		}
	}
	return out
}

func (s *scanner) readReducedPoints(g *catalog.Grid, v *variable, rp VarID, yvar Opt[VarID], vdim *Opt[DimID]) {
	g.YSize = s.dimLen(s.vars[rp].dims[0])
	pts := s.readInts(rp)
	g.ReducedPoints = make([]int, len(pts))
	for i, p := range pts {
		g.ReducedPoints[i] = int(p)
	}
	g.NP = v.numLPE

	y, ok := yvar.Get()
	if !ok {
		return
	}
	b, ok := s.vars[y].bounds.Get()
	if !ok {
		return
	}
	bv := &s.vars[b]
	if nb := bv.ndims(); nb == 2 || nb == 3 {
		if !vdim.IsSet() {
			*vdim = Some(bv.dims[nb-1])
			g.NVertex = s.dimLen(bv.dims[nb-1])
		}
		g.Y.Bounds = s.loadValues(b, nil, nil, 1, 0)
	}
}

// setUnstructuredPar settles an unstructured grid whose variable still
// has both an x and a y dimension: the short one becomes vertical.
func (s *scanner) setUnstructuredPar(v *variable, g *catalog.Grid, xdim, ydim *Opt[DimID], readPart bool) bool {
	xi, yi := -1, -1
	hasZ := false
	for i, a := range v.dimAxes {
		switch a {
		case AxisX:
			xi = i
		case AxisY:
			yi = i
		case AxisZ:
			hasZ = true
		}
	}
	if xdim.IsSet() && ydim.IsSet() && !hasZ {
		switch {
		case g.XSize > g.YSize && g.YSize < 1000:
			if yi >= 0 {
				v.dimAxes[yi] = AxisZ
			}
			*ydim = None[DimID]()
			g.Size = g.XSize
			g.YSize = 0
		case g.YSize > g.XSize && g.XSize < 1000:
			if xi >= 0 {
				v.dimAxes[xi] = AxisZ
			}
			*xdim = *ydim
			*ydim = None[DimID]()
			g.Size = g.YSize
			g.XSize = g.YSize
			g.YSize = 0
		}
	}
	if g.Size != g.XSize {
		s.demote(v, "Unsupported array structure, skipped variable %s!", v.name)
		return false
	}
	if !readPart {
		if s.gridInfo.hasGridUsed {
			g.NumberOfGridUsed = s.gridInfo.numberOfGridUsed
		}
		if v.position > 0 {
			g.Position = v.position
		}
		g.UUID = s.gridInfo.uuid
	}
	return true
}

// setChunkType classifies the chunk shape of v against its grid.
func (s *scanner) setChunkType(g *catalog.Grid, v *variable) {
	shape := v.chunking.ChunkShape
	n := len(shape)
	if n == 0 || n != v.ndims() {
		return
	}
	all := 1
	for _, c := range shape {
		all *= c
	}
	dimN := shape[n-1]
	if g.Type == catalog.GridUnstructured {
		chunkSize := 0
		if all == dimN {
			chunkSize = dimN
		}
		if chunkSize == g.Size {
			v.chunkType = catalog.ChunkGrid
		} else {
			v.chunkType = catalog.ChunkAuto
			if chunkSize > 1 {
				v.chunkSize = chunkSize
			}
		}
		return
	}
	switch {
	case g.XSize > 1 && g.YSize > 1 && n > 1 && g.XSize == dimN && g.YSize == shape[n-2]:
		v.chunkType = catalog.ChunkGrid
	case g.XSize > 1 && g.XSize == dimN && all == dimN:
		v.chunkType = catalog.ChunkLines
	default:
		v.chunkType = catalog.ChunkAuto
	}
}

// setGridToSimilarVar gives v2 the grid of v1 when they share horizontal
// dimensions and coordinates.
func (s *scanner) setGridToSimilarVar(v1, v2 *variable, gridType catalog.GridType, xdim, ydim Opt[DimID]) {
	if v2.status != DataVar || v2.grid.IsSet() {
		return
	}
	var xdim2, ydim2 Opt[DimID]
	xi, yi := -1, -1
	hasZ := false
	for i, a := range v2.dimAxes {
		switch a {
		case AxisX:
			xdim2, xi = Some(v2.dims[i]), i
		case AxisY:
			ydim2, yi = Some(v2.dims[i]), i
		case AxisZ:
			hasZ = true
		}
	}
	if !v2.isCubeSphere {
		switch {
		case v2.gridType == catalog.GridUndefined && gridType == catalog.GridUnstructured:
			if xdim.Same(xdim2) && ydim2.IsSet() && !hasZ {
				v2.dimAxes[yi] = AxisZ
				ydim2 = None[DimID]()
			}
			if xdim.IsSet() && xdim.Same(ydim2) && xdim2.IsSet() && !hasZ {
				v2.dimAxes[xi] = AxisZ
				xdim2 = ydim2
				ydim2 = None[DimID]()
			}
		case v2.gridType == catalog.GridGaussianReduced && gridType == catalog.GridGaussianReduced:
			ydim = None[DimID]()
		}
	}
	if !xdim.Same(xdim2) || !(ydim.Same(ydim2) || (xdim.Same(ydim) && !ydim2.IsSet())) {
		return
	}
	if !v1.xvar.Same(v2.xvar) || !v1.yvar.Same(v2.yvar) || v1.position != v2.position {
		return
	}
	v2.grid = v1.grid
	v2.chunkType = v1.chunkType
	v2.chunkSize = v1.chunkSize
	v2.gridSize, v2.xSize, v2.ySize = v1.gridSize, v1.xSize, v1.ySize
}
