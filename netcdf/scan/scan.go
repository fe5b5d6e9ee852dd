// Package scan classifies the variables of an array store and builds the
// catalog of its data variables.
//
// A scan runs a fixed sequence of passes over an in-memory table of
// dimensions and variables. Passes only add information; conflicting
// claims on a dimension or variable are resolved by merge rules and
// reported as warnings. Fatal conditions unwind the scan through
// thrower and are returned as errors.
package scan

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/batchatco/go-thrower"
	"github.com/jonboulle/clockwork"

	"github.com/batchatco/go-netcdf-catalog/internal"
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

type gridInfo struct {
	gridFile         string
	uuid             string
	numberOfGridUsed int
	hasGridUsed      bool
}

type baseTime struct {
	timeVar     Opt[VarID]
	boundsVar   Opt[VarID]
	leadtimeVar Opt[VarID]
	isWRF       bool
	hasUnits    bool
	hasBounds   bool
	climatology bool
}

// xyDims records the horizontal dimensions a grid was built from.
type xyDims struct {
	x, y Opt[DimID]
}

type scanner struct {
	cfg   Config
	store api.Store
	log   *internal.Logger
	cat   *catalog.Catalog

	dims []dimension
	vars []variable

	timeDim Opt[DimID]
	ntsteps int

	institution string
	model       string
	uclaLES     bool
	uuidOfVGrid string
	gridInfo    gridInfo
	basetime    baseTime

	echamVCT   []float64
	isHybridCF bool

	gridDims  map[catalog.GridID]xyDims
	zaxisDims map[catalog.ZAxisID]Opt[DimID]

	missingCoords map[string]bool
}

func newScanner(store api.Store, cfg Config) *scanner {
	cfg.Query = activeQuery(cfg.Query)
	log := internal.NewLogger(cfg.Logger).With("component", "scan")
	log.SetLogLevel(cfg.LogLevel)
	return &scanner{
		cfg:           cfg,
		store:         store,
		log:           log,
		cat:           catalog.New(),
		gridDims:      map[catalog.GridID]xyDims{},
		zaxisDims:     map[catalog.ZAxisID]Opt[DimID]{},
		missingCoords: map[string]bool{},
	}
}

// Scan builds the catalog of store. Diagnostics are logged as they are
// found and are also collected in the returned catalog.
//
// The scan fails with ErrUnsupportedFileStructure when store has no
// variables or no data variables, and with ErrDimSizeExceeded when the
// time or a vertical dimension is too long. Read errors of the store are
// returned as they are, except undecodable data (api.ErrCorrupt), which
// also matches ErrUnsupportedFileStructure.
func Scan(store api.Store, cfg Config) (cat *catalog.Catalog, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := newScanner(store, cfg)
	start := clock.Now()
	defer func() {
		s.finish(cat, err, clock.Since(start))
	}()
	defer thrower.RecoverError(&err)
	return s.run()
}

func (s *scanner) run() (*catalog.Catalog, error) {
	s.cat.Format = s.store.Format()
	s.readTable()
	if s.cat.Format == api.FormatNetCDF4 {
		s.checkGroups()
	}
	if len(s.vars) == 0 {
		s.log.Warn("No arrays found!")
		return nil, ErrUnsupportedFileStructure
	}

	s.findCoordinateVars()
	s.scanGlobalAttrs()
	s.findTimeDim()
	s.setVarsTimeType()
	s.scanVarsAttr()
	s.verifyVarsAttr()
	if s.cfg.ConvertCubeSphere {
		s.checkCubeSphere()
	}
	s.findVaryingDataVars1D()
	s.findTimeVars()
	s.findLeadtime()
	s.checkVariables()
	s.verifyCoordinateVars1()
	s.verifyCoordinateVars2()
	if s.uclaLES {
		s.setUCLADimTypes()
	}
	s.setCoordinateVarIDs()
	s.setDimTypes()
	if !s.isHybridCF {
		s.readEchamVCT()
	}
	s.processVarQuery()

	s.defineAllGrids()
	s.defineAllZAxes()
	s.verifyVars()

	if s.countDataVars() == 0 {
		s.log.Warn("No data arrays found!")
		return nil, ErrUnsupportedFileStructure
	}
	if !s.timeDim.IsSet() && s.basetime.timeVar.IsSet() {
		s.ntsteps = 1
	}

	s.defineAllVars()
	s.defineTimeAxis()
	s.readTimesteps()
	return s.cat, nil
}

func (s *scanner) countDataVars() int {
	n := 0
	for i := range s.vars {
		if s.vars[i].status == DataVar {
			n++
		}
	}
	return n
}

// finish copies the diagnostics into the catalog and updates the metrics.
func (s *scanner) finish(cat *catalog.Catalog, err error, elapsed time.Duration) {
	diags := s.log.Diagnostics()
	if cat != nil {
		for _, d := range diags {
			cat.Diagnostics = append(cat.Diagnostics, d.String())
		}
	}
	m := s.cfg.Metrics
	if m == nil {
		return
	}
	m.Scans.Inc()
	m.ScanDuration.Observe(elapsed.Seconds())
	for _, d := range diags {
		m.Diagnostics.WithLabelValues(d.Level.String()).Inc()
	}
	if err != nil {
		m.ScanFailures.WithLabelValues(failureClass(err)).Inc()
		return
	}
	m.DataVars.Add(float64(len(cat.Variables)))
	m.Grids.Add(float64(len(cat.Grids)))
	m.ZAxes.Add(float64(len(cat.ZAxes)))
	m.Timesteps.Add(float64(len(cat.Timesteps)))
}

func failureClass(err error) string {
	switch {
	case errors.Is(err, ErrDimSizeExceeded):
		return "dimsize"
	case errors.Is(err, ErrUnsupportedFileStructure):
		return "structure"
	}
	return "store"
}

func (s *scanner) checkGroups() {
	n := len(s.store.Subgroups())
	if n == 0 {
		return
	}
	plural := ""
	if n > 1 {
		plural = "s"
	}
	s.log.Warnf("NetCDF4 groups not supported! Found %d root group%s.", n, plural)
}

func (s *scanner) checkDimSize(n uint64, what string) {
	if n > math.MaxInt32 {
		s.log.Warnf("Size limit exceeded for %s dimension (limit=%d)!", what, math.MaxInt32)
		thrower.Throw(ErrDimSizeExceeded)
	}
}

// Store reads. Errors unwind the scan.

func (s *scanner) throwRead(vid VarID, err error) {
	s.log.Errorf("Reading %s failed: %v", s.vars[vid].name, err)
	if errors.Is(err, api.ErrCorrupt) {
		err = fmt.Errorf("%w: %w", ErrUnsupportedFileStructure, err)
	}
	thrower.Throw(err)
}

func (s *scanner) readFloats(vid VarID, start, count []int) []float64 {
	vals, err := s.store.ReadFloat64(int(vid), start, count)
	if err != nil {
		s.throwRead(vid, err)
	}
	return vals
}

func (s *scanner) readInts(vid VarID) []int64 {
	vals, err := s.store.ReadInt64(int(vid), nil, nil)
	if err != nil {
		s.throwRead(vid, err)
	}
	return vals
}

func (s *scanner) readText(vid VarID, start, count []int) []string {
	rows, err := s.store.ReadText(int(vid), start, count)
	if err != nil {
		s.throwRead(vid, err)
	}
	return rows
}

// readScalar reads the first value of a variable.
func (s *scanner) readScalar(vid VarID) float64 {
	start, count := s.fullWindow(vid)
	for i := range count {
		if count[i] > 1 {
			count[i] = 1
		}
	}
	vals := s.readFloats(vid, start, count)
	if len(vals) == 0 {
		return 0
	}
	return vals[0]
}

// fullWindow is the start/count window covering all of vid.
func (s *scanner) fullWindow(vid VarID) (start, count []int) {
	v := &s.vars[vid]
	if v.ndims() == 0 {
		return nil, nil
	}
	start = make([]int, v.ndims())
	count = make([]int, v.ndims())
	for i, d := range v.dims {
		count[i] = s.dimLen(d)
	}
	return start, count
}

// loadValues returns the window of vid as an Array, deferred when the
// configuration asks for lazy grids.
func (s *scanner) loadValues(vid VarID, start, count []int, scale, offset float64) catalog.Array {
	if start == nil && count == nil {
		start, count = s.fullWindow(vid)
	}
	if s.cfg.LazyGrids {
		return catalog.NewDeferred(s.store, int(vid), s.vars[vid].name, start, count, scale, offset)
	}
	vals := s.readFloats(vid, start, count)
	internal.ScaleAdd(vals, scale, offset)
	return catalog.Eager(vals)
}
