package scan

import (
	"math"

	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

const secondsPerDay = 86400

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// First day of the Gregorian reform in the standard calendar.
var gregorianStart = catalog.DateTime{Year: 1582, Month: 10, Day: 15}

func isGregorianLeap(y int) bool { return y%4 == 0 && (y%100 != 0 || y%400 == 0) }

func isJulianLeap(y int) bool { return y%4 == 0 }

func before(a, b catalog.DateTime) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	return a.Day < b.Day
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// gregorianDays and julianDays return Julian day numbers.
func gregorianDays(y, m, d int) int {
	a := floorDiv(14-m, 12)
	yy := y + 4800 - a
	mm := m + 12*a - 3
	return d + floorDiv(153*mm+2, 5) + 365*yy + floorDiv(yy, 4) - floorDiv(yy, 100) + floorDiv(yy, 400) - 32045
}

func julianDays(y, m, d int) int {
	a := floorDiv(14-m, 12)
	yy := y + 4800 - a
	mm := m + 12*a - 3
	return d + floorDiv(153*mm+2, 5) + 365*yy + floorDiv(yy, 4) - 32083
}

func fromGregorianDays(jd int) (y, m, d int) {
	a := jd + 32044
	b := floorDiv(4*a+3, 146097)
	c := a - floorDiv(146097*b, 4)
	dd := floorDiv(4*c+3, 1461)
	e := c - floorDiv(1461*dd, 4)
	mm := floorDiv(5*e+2, 153)
	d = e - floorDiv(153*mm+2, 5) + 1
	m = mm + 3 - 12*floorDiv(mm, 10)
	y = 100*b + dd - 4800 + floorDiv(mm, 10)
	return y, m, d
}

func fromJulianDays(jd int) (y, m, d int) {
	c := jd + 32082
	dd := floorDiv(4*c+3, 1461)
	e := c - floorDiv(1461*dd, 4)
	mm := floorDiv(5*e+2, 153)
	d = e - floorDiv(153*mm+2, 5) + 1
	m = mm + 3 - 12*floorDiv(mm, 10)
	y = dd - 4800 + floorDiv(mm, 10)
	return y, m, d
}

// fixedYearDays is the day number for calendars where every year has
// the same length.
func fixedYearDays(cal catalog.Calendar, y, m, d int) int {
	switch cal {
	case catalog.Calendar360Days:
		return y*360 + (m-1)*30 + d - 1
	}
	n := y * 365
	leap := cal == catalog.Calendar366Days
	if leap {
		n = y * 366
	}
	for i := 0; i < m-1 && i < 12; i++ {
		n += monthDays[i]
		if i == 1 && leap {
			n++
		}
	}
	return n + d - 1
}

func fromFixedYearDays(cal catalog.Calendar, n int) (y, m, d int) {
	if cal == catalog.Calendar360Days {
		y = floorDiv(n, 360)
		r := n - y*360
		return y, r/30 + 1, r%30 + 1
	}
	ylen := 365
	leap := cal == catalog.Calendar366Days
	if leap {
		ylen = 366
	}
	y = floorDiv(n, ylen)
	r := n - y*ylen
	m = 1
	for i := 0; i < 12; i++ {
		ml := monthDays[i]
		if i == 1 && leap {
			ml++
		}
		if r < ml {
			break
		}
		r -= ml
		m++
	}
	return y, m, r + 1
}

// dayNumber maps a date to a day count in cal.
func dayNumber(cal catalog.Calendar, t catalog.DateTime) int {
	switch cal {
	case catalog.Calendar360Days, catalog.Calendar365Days, catalog.Calendar366Days:
		return fixedYearDays(cal, t.Year, t.Month, t.Day)
	case catalog.CalendarJulian:
		return julianDays(t.Year, t.Month, t.Day)
	case catalog.CalendarProleptic:
		return gregorianDays(t.Year, t.Month, t.Day)
	}
	if before(t, gregorianStart) {
		return julianDays(t.Year, t.Month, t.Day)
	}
	return gregorianDays(t.Year, t.Month, t.Day)
}

func dateOf(cal catalog.Calendar, n int) (y, m, d int) {
	switch cal {
	case catalog.Calendar360Days, catalog.Calendar365Days, catalog.Calendar366Days:
		return fromFixedYearDays(cal, n)
	case catalog.CalendarJulian:
		return fromJulianDays(n)
	case catalog.CalendarProleptic:
		return fromGregorianDays(n)
	}
	if n < gregorianDays(gregorianStart.Year, gregorianStart.Month, gregorianStart.Day) {
		return fromJulianDays(n)
	}
	return fromGregorianDays(n)
}

func daysInMonth(cal catalog.Calendar, y, m int) int {
	switch cal {
	case catalog.Calendar360Days:
		return 30
	case catalog.Calendar365Days:
		return monthDays[m-1]
	case catalog.Calendar366Days:
		if m == 2 {
			return 29
		}
		return monthDays[m-1]
	}
	if m != 2 {
		return monthDays[m-1]
	}
	leap := isGregorianLeap(y)
	if cal == catalog.CalendarJulian || (cal != catalog.CalendarProleptic && y < gregorianStart.Year) {
		leap = isJulianLeap(y)
	}
	if leap {
		return 29
	}
	return 28
}

// addSeconds moves t by secs in cal, rounded to milliseconds.
func addSeconds(cal catalog.Calendar, t catalog.DateTime, secs float64) catalog.DateTime {
	ms := int64(math.Round(secs * 1000))
	day := int64(dayNumber(cal, t))
	ms += int64(t.Hour*3600+t.Minute*60+t.Second)*1000 + int64(t.Millisecond)
	const msPerDay = secondsPerDay * 1000
	dd := ms / msPerDay
	ms -= dd * msPerDay
	if ms < 0 {
		ms += msPerDay
		dd--
	}
	y, m, d := dateOf(cal, int(day+dd))
	return catalog.DateTime{
		Year: y, Month: m, Day: d,
		Hour:        int(ms / 3600000),
		Minute:      int(ms / 60000 % 60),
		Second:      int(ms / 1000 % 60),
		Millisecond: int(ms % 1000),
	}
}

// addMonths moves t by a possibly fractional number of months. The day
// is clamped to the target month; the fraction is taken of the target
// month length.
func addMonths(cal catalog.Calendar, t catalog.DateTime, months float64) catalog.DateTime {
	whole := math.Floor(months)
	frac := months - whole
	n := t.Year*12 + (t.Month - 1) + int(whole)
	t.Year = floorDiv(n, 12)
	t.Month = n - t.Year*12 + 1
	if dim := daysInMonth(cal, t.Year, t.Month); t.Day > dim {
		t.Day = dim
	}
	if frac != 0 {
		t = addSeconds(cal, t, frac*float64(daysInMonth(cal, t.Year, t.Month)*secondsPerDay))
	}
	return t
}

// decodeTimeValue converts a numeric time value on axis into a date.
func decodeTimeValue(value float64, axis *catalog.TimeAxis) catalog.DateTime {
	if axis.Type == catalog.TimeAbsolute {
		return decodeAbsolute(value, axis.Unit)
	}
	cal := axis.Calendar
	switch axis.Unit {
	case catalog.UnitMonth:
		return addMonths(cal, axis.Reference, value)
	case catalog.UnitYear:
		return addMonths(cal, axis.Reference, value*12)
	case catalog.UnitNone:
		return axis.Reference
	}
	return addSeconds(cal, axis.Reference, value*axis.Unit.Seconds())
}

// decodeAbsolute reads YYYYMMDD.f day, YYYYMM.f month and YYYY.f year
// encodings.
func decodeAbsolute(value float64, unit catalog.TimeUnit) catalog.DateTime {
	whole := math.Floor(value)
	frac := value - whole
	n := int(whole)
	switch unit {
	case catalog.UnitYear:
		return catalog.DateTime{Year: n, Month: 1, Day: 1}
	case catalog.UnitMonth:
		return catalog.DateTime{Year: n / 100, Month: n % 100, Day: 1}
	}
	t := catalog.DateTime{Year: n / 10000, Month: n / 100 % 100, Day: n % 100}
	ms := int(math.Round(frac * secondsPerDay * 1000))
	t.Hour = ms / 3600000
	t.Minute = ms / 60000 % 60
	t.Second = ms / 1000 % 60
	t.Millisecond = ms % 1000
	return t
}
