package scan

import (
	"fmt"
	"math"
	"strings"

	"github.com/batchatco/go-netcdf-catalog/internal"
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

// WRF date strings are "YYYY-MM-DD_HH:MM:SS" followed by padding.
const wrfDateLen = 19

// parseTimeString reads the reference date of a "since" clause. Missing
// trailing fields stay zero. A leading day with a short year is swapped,
// for "DD-MM-YYYY" style references. It reports false when s does not start
// with a year, month and day.
func parseTimeString(s string) (catalog.DateTime, bool) {
	var year, month, day, hour, minute int
	var fsec float64
	var sep rune
	ok := true
	if s != "" {
		n, _ := fmt.Sscanf(s, "%d-%d-%d%c%d:%d:%f", &year, &month, &day, &sep, &hour, &minute, &fsec)
		ok = n >= 3
	}
	if day > 999 && year < 32 {
		year, day = day, year
	}
	whole, frac := math.Modf(fsec)
	return catalog.DateTime{
		Year: year, Month: month, Day: day,
		Hour: hour, Minute: minute,
		Second:      int(whole),
		Millisecond: int(frac * 1000),
	}, ok
}

func parseWRFTime(s string) catalog.DateTime {
	t := catalog.DateTime{Year: 1, Month: 1, Day: 1}
	if len(s) > wrfDateLen {
		s = s[:wrfDateLen]
	}
	if len(s) == wrfDateLen {
		fmt.Sscanf(s, "%d-%d-%d_%d:%d:%d", &t.Year, &t.Month, &t.Day, &t.Hour, &t.Minute, &t.Second)
	}
	return t
}

// setBaseTime parses a CF time units string into axis. It returns false
// for an unknown unit word.
func (s *scanner) setBaseTime(units string, axis *catalog.TimeAxis) bool {
	trimmed := strings.TrimLeft(units, " \t\n\r\v\f")
	tu := strings.ToLower(trimmed)
	f := strings.Fields(tu)
	unit := catalog.UnitNone
	if len(f) > 0 {
		unit = timeUnit(f[0])
	}
	if unit == catalog.UnitNone {
		s.log.Warnf("Unsupported TIMEUNIT: %s!", trimmed)
		return false
	}
	axis.Type = catalog.TimeAbsolute
	if len(f) > 1 {
		if hasPrefix(f[1], "since") {
			axis.Type = catalog.TimeRelative
		}
		if len(f) > 2 {
			rest := skipWord(skipWord(tu))
			if axis.Type == catalog.TimeRelative {
				ref, ok := parseTimeString(rest)
				if !ok {
					s.log.Warnf("Unsupported time reference: %s!", rest)
				}
				axis.Reference = ref
			} else {
				unit = s.checkAbsoluteFormat(unit, rest, tu)
			}
		}
	}
	axis.Unit = unit
	return true
}

// skipWord drops the leading word of s and the blanks after it.
func skipWord(s string) string {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	if i := strings.IndexAny(s, " \t\n\r\v\f"); i >= 0 {
		return strings.TrimLeft(s[i:], " \t\n\r\v\f")
	}
	return ""
}

func (s *scanner) checkAbsoluteFormat(unit catalog.TimeUnit, format, units string) catalog.TimeUnit {
	want := map[catalog.TimeUnit]string{
		catalog.UnitDay:   "%y%m%d.%f",
		catalog.UnitMonth: "%y%m.%f",
		catalog.UnitYear:  "%y.%f",
	}
	w, ok := want[unit]
	if !ok {
		s.log.Warnf("Unsupported format for time units: %s!", units)
		return unit
	}
	if !hasPrefix(format, w) {
		s.log.Warnf("Unsupported format %s for TIMEUNIT %s!", format, strings.TrimSuffix(unit.String(), "s"))
		return catalog.UnitNone
	}
	return unit
}

func timeDatatype(t api.Type) catalog.Datatype {
	switch t {
	case api.TypeInt:
		return catalog.Int32
	case api.TypeFloat:
		return catalog.Flt32
	}
	return catalog.Flt64
}

// defineTimeAxis sets up the shared time axis from the time variable.
func (s *scanner) defineTimeAxis() {
	bt := &s.basetime
	axis := &s.cat.TimeAxis
	*axis = catalog.TimeAxis{}

	units := ""
	if tv, ok := bt.timeVar.Get(); ok && bt.hasUnits && !bt.isWRF {
		units = s.vars[tv].units
	} else {
		bt.hasUnits = false
	}

	if bt.hasUnits {
		if !s.setBaseTime(units, axis) {
			bt.timeVar = None[VarID]()
			bt.hasUnits = false
			units = ""
		}
		if lt, ok := bt.leadtimeVar.Get(); ok && axis.Type == catalog.TimeRelative {
			axis.Type = catalog.TimeForecast
			fc := catalog.UnitNone
			if lu := s.vars[lt].units; lu != "" {
				fc = timeUnit(strings.ToLower(firstField(lu)))
				if fc == catalog.UnitNone {
					s.log.Warnf("Unsupported TIMEUNIT: %s!", lu)
				}
			}
			if fc == catalog.UnitNone {
				fc = axis.Unit
			}
			axis.ForecastUnit = fc
		} else {
			bt.leadtimeVar = None[VarID]()
		}
	} else {
		bt.leadtimeVar = None[VarID]()
	}

	if bt.hasBounds {
		axis.HasBounds = true
		axis.Climatology = bt.climatology
	}

	calendar := catalog.CalendarUndefined
	if tv, ok := bt.timeVar.Get(); ok {
		v := &s.vars[tv]
		axis.Name = v.name
		axis.LongName = v.longName
		axis.Units = units
		axis.Datatype = timeDatatype(v.xtype)
		if v.hasCalendar {
			calendar, _ = calendarFromAttr(strings.ToLower(attrSet(v.attrs).Text("calendar", 1024)))
		}
	}
	if bt.isWRF {
		axis.Type = catalog.TimeAbsolute
	}
	if axis.Type == catalog.TimeAbsolute && !bt.hasUnits {
		axis.Unit = catalog.UnitDay
	}
	if calendar == catalog.CalendarUndefined && axis.Type != catalog.TimeAbsolute {
		calendar = catalog.CalendarStandard
	}
	axis.Calendar = calendar
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// readTimesteps decodes the selected time steps and lists their records.
func (s *scanner) readTimesteps() {
	s.cat.ConstantRecords = s.records(false)
	if s.ntsteps == 0 {
		return
	}
	bt := &s.basetime
	axis := s.cat.TimeAxis
	tv, hasTimesteps := bt.timeVar.Get()
	hasTimesteps = hasTimesteps && (bt.isWRF || bt.hasUnits)

	var times []catalog.DateTime
	if hasTimesteps {
		times = make([]catalog.DateTime, s.ntsteps)
		if bt.isWRF {
			rows := s.readText(tv, nil, nil)
			for i := range times {
				if i < len(rows) {
					times[i] = parseWRFTime(rows[i])
				} else {
					times[i] = parseWRFTime("")
				}
			}
		} else {
			vals := s.readFloats(tv, nil, nil)
			for i := range times {
				var x float64
				if i < len(vals) {
					x = internal.ClampFill(vals[i])
				}
				times[i] = decodeTimeValue(x, &axis)
			}
		}
	}

	q := s.cfg.Query
	filter := q != nil && q.NumSteps() > 0
	varying := s.records(true)
	for ts := 0; ts < s.ntsteps; ts++ {
		if filter && !q.HasStep(ts+1) {
			continue
		}
		step := catalog.Timestep{
			Index:      len(s.cat.Timesteps),
			StoreIndex: ts,
			Axis:       axis,
			Records:    varying,
		}
		if hasTimesteps {
			step.Time = times[ts]
		}
		s.cat.Timesteps = append(s.cat.Timesteps, step)
	}
	if !hasTimesteps {
		return
	}

	if b, ok := bt.boundsVar.Get(); ok {
		for i := range s.cat.Timesteps {
			step := &s.cat.Timesteps[i]
			bnds := s.readFloats(b, []int{step.StoreIndex, 0}, []int{1, 2})
			if len(bnds) < 2 {
				continue
			}
			step.Lower = decodeTimeValue(internal.ClampFill(bnds[0]), &axis)
			step.Upper = decodeTimeValue(internal.ClampFill(bnds[1]), &axis)
		}
	}
	if lt, ok := bt.leadtimeVar.Get(); ok {
		for i := range s.cat.Timesteps {
			step := &s.cat.Timesteps[i]
			vals := s.readFloats(lt, []int{step.StoreIndex}, []int{1})
			if len(vals) > 0 {
				step.ForecastPeriod = internal.ClampFill(vals[0])
			}
		}
	}
}

// records lists the (variable, level) pairs of the time-varying or the
// constant data variables of the catalog.
func (s *scanner) records(timeVarying bool) []catalog.Record {
	var recs []catalog.Record
	for _, cv := range s.cat.Variables {
		if cv.TimeVarying != timeVarying {
			continue
		}
		nlev := 1
		if z := s.cat.ZAxis(cv.ZAxis); z != nil && z.Size > 0 {
			nlev = z.Size
		}
		for l := 0; l < nlev; l++ {
			recs = append(recs, catalog.Record{Var: cv.ID, Level: l})
		}
	}
	return recs
}
