package catalog

import (
	"fmt"
)

// TimeAxisType tells how step values relate to the reference time.
type TimeAxisType int

const (
	TimeAbsolute TimeAxisType = iota
	TimeRelative
	TimeForecast
)

func (t TimeAxisType) String() string {
	switch t {
	case TimeRelative:
		return "relative"
	case TimeForecast:
		return "forecast"
	}
	return "absolute"
}

// TimeUnit is the unit of the numeric time values.
type TimeUnit int

const (
	UnitNone TimeUnit = iota
	UnitSecond
	UnitMinute
	UnitHour
	UnitDay
	UnitMonth
	UnitYear
)

var unitNames = []string{"none", "seconds", "minutes", "hours", "days", "months", "years"}

func (u TimeUnit) String() string {
	if u < 0 || int(u) >= len(unitNames) {
		return unitNames[UnitNone]
	}
	return unitNames[u]
}

// Seconds returns the length of u in seconds for fixed-length units.
func (u TimeUnit) Seconds() float64 {
	switch u {
	case UnitSecond:
		return 1
	case UnitMinute:
		return 60
	case UnitHour:
		return 3600
	case UnitDay:
		return 86400
	}
	return 0
}

// Calendar is a CF calendar.
type Calendar int

const (
	CalendarUndefined Calendar = iota
	CalendarStandard
	CalendarGregorian
	CalendarProleptic
	CalendarJulian
	Calendar360Days
	Calendar365Days
	Calendar366Days
	CalendarNone
)

var calendarNames = []string{
	CalendarUndefined: "undefined",
	CalendarStandard:  "standard",
	CalendarGregorian: "gregorian",
	CalendarProleptic: "proleptic_gregorian",
	CalendarJulian:    "julian",
	Calendar360Days:   "360_day",
	Calendar365Days:   "365_day",
	Calendar366Days:   "366_day",
	CalendarNone:      "none",
}

func (c Calendar) String() string {
	if c < 0 || int(c) >= len(calendarNames) {
		return calendarNames[CalendarUndefined]
	}
	return calendarNames[c]
}

// DateTime is a calendar-agnostic date and time.
type DateTime struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	Millisecond          int
}

func (d DateTime) IsZero() bool { return d == DateTime{} }

func (d DateTime) String() string {
	s := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
	if d.Millisecond != 0 {
		s += fmt.Sprintf(".%03d", d.Millisecond)
	}
	return s
}

// TimeAxis is the shared description of the time coordinate.
type TimeAxis struct {
	Type         TimeAxisType
	Unit         TimeUnit
	Calendar     Calendar
	Reference    DateTime
	ForecastUnit TimeUnit
	HasBounds    bool
	Climatology  bool

	Name     string
	LongName string
	Units    string
	Datatype Datatype
}

// Record is one (variable, level) slice of a timestep.
type Record struct {
	Var   int
	Level int
}

// Timestep is one entry of the time axis.
type Timestep struct {
	Index      int
	StoreIndex int
	Time       DateTime
	Lower      DateTime
	Upper      DateTime
	// ForecastPeriod is in ForecastUnit of the axis.
	ForecastPeriod float64
	Axis           TimeAxis
	Records        []Record
}
