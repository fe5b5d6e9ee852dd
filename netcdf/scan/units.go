package scan

import (
	"strings"

	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

// Size of the text buffers attribute strings are bounded to.
const maxNameLen = 256

func hasPrefix(s, prefix string) bool { return strings.HasPrefix(s, prefix) }

// timeUnit recognizes the unit word at the start of a time units string.
func timeUnit(s string) catalog.TimeUnit {
	if len(s) == 1 && s[0] == 's' {
		return catalog.UnitSecond
	}
	if len(s) <= 2 {
		return catalog.UnitNone
	}
	switch {
	case hasPrefix(s, "sec"):
		return catalog.UnitSecond
	case hasPrefix(s, "minute"):
		return catalog.UnitMinute
	case hasPrefix(s, "hour"):
		return catalog.UnitHour
	case hasPrefix(s, "day"):
		return catalog.UnitDay
	case hasPrefix(s, "month"), hasPrefix(s, "calendar_month"):
		return catalog.UnitMonth
	case hasPrefix(s, "year"):
		return catalog.UnitYear
	}
	return catalog.UnitNone
}

func isTimeUnits(units string) bool {
	return timeUnit(strings.ToLower(strings.TrimSpace(units))) != catalog.UnitNone
}

// isTimeAxisUnits accepts "<unit> since ..." and "<unit> as ...".
func isTimeAxisUnits(units string) bool {
	f := strings.Fields(strings.ToLower(units))
	if len(f) < 2 || timeUnit(f[0]) == catalog.UnitNone {
		return false
	}
	return hasPrefix(f[1], "since") || hasPrefix(f[1], "as")
}

// degreeDirection returns the direction letter of degrees_east style
// units, or 0.
func degreeDirection(units string) byte {
	u := strings.ToLower(units)
	if !hasPrefix(u, "degree") {
		return 0
	}
	i := len("degree")
	for _, c := range []byte{'s', ' ', '_'} {
		if i < len(u) && u[i] == c {
			i++
		}
	}
	if i < len(u) {
		return u[i]
	}
	return 0
}

func isDegreeUnits(units string) bool {
	u := strings.ToLower(units)
	return hasPrefix(u, "degree") || hasPrefix(u, "radian")
}

func isLonAxis(units, stdname string) bool {
	if isDegreeUnits(units) && (hasPrefix(stdname, "grid_longitude") || hasPrefix(stdname, "longitude")) {
		return true
	}
	return degreeDirection(units) == 'e' && !hasPrefix(stdname, "grid_latitude") && !hasPrefix(stdname, "latitude")
}

func isLatAxis(units, stdname string) bool {
	if isDegreeUnits(units) && (hasPrefix(stdname, "grid_latitude") || hasPrefix(stdname, "latitude")) {
		return true
	}
	return degreeDirection(units) == 'n' && !hasPrefix(stdname, "grid_longitude") && !hasPrefix(stdname, "longitude")
}

func isXAxis(stdname string) bool { return stdname == "projection_x_coordinate" }
func isYAxis(stdname string) bool { return stdname == "projection_y_coordinate" }

func isPressureUnits(units string) bool {
	switch {
	case hasPrefix(units, "millibar"), hasPrefix(units, "mb"), hasPrefix(units, "hectopas"),
		hasPrefix(units, "hPa"), hasPrefix(units, "pa"), hasPrefix(units, "Pa"):
		return true
	}
	return false
}

func isHeightUnits(units string) bool {
	if units == "" {
		return false
	}
	u0 := units[0]
	if (u0 == 'm' && (len(units) == 1 || hasPrefix(units, "meter"))) ||
		(len(units) == 2 && units[1] == 'm' && (u0 == 'c' || u0 == 'd' || u0 == 'k')) {
		return true
	}
	for _, p := range []string{"decimeter", "centimeter", "millimeter", "kilometer"} {
		if hasPrefix(units, p) {
			return true
		}
	}
	return false
}

func isDBLAxis(longname string) bool {
	return longname == "depth below land" || longname == "depth_below_land" ||
		longname == "levels below the surface"
}

func isDepthAxis(stdname, longname string) bool {
	return stdname == "depth" || longname == "depth_below_sea" || longname == "depth below sea"
}

func isHeightAxis(stdname, longname string) bool {
	return stdname == "height" || longname == "height" || longname == "height above the surface"
}

func isAltitudeAxis(stdname, longname string) bool {
	return stdname == "altitude" || longname == "altitude"
}

func isReferenceAxis(stdname, longname string) bool {
	return hasPrefix(longname, "generalized_height") && stdname == "height"
}

// gridTypeFromAttr maps a grid_type attribute. ok is false for names that
// are recognized but carry no grid type.
func gridTypeFromAttr(s string) (t catalog.GridType, ok bool, known bool) {
	switch {
	case s == "gaussian_reduced", s == "reduced_gaussian":
		return catalog.GridGaussianReduced, true, true
	case s == "gaussian":
		return catalog.GridGaussian, true, true
	case hasPrefix(s, "spectral"):
		return catalog.GridSpectral, true, true
	case hasPrefix(s, "fourier"):
		return catalog.GridFourier, true, true
	case s == "trajectory":
		return catalog.GridTrajectory, true, true
	case s == "generic":
		return catalog.GridGeneric, true, true
	case s == "cell", s == "unstructured":
		return catalog.GridUnstructured, true, true
	case s == "characterxy":
		return catalog.GridCharXY, true, true
	case s == "curvilinear", s == "sinusoidal", s == "laea", s == "lcc2", s == "linear":
		return catalog.GridUndefined, false, true
	}
	return catalog.GridUndefined, false, false
}

var levelTypes = map[string]catalog.ZAxisType{
	"toa":              catalog.ZAxisTOA,
	"cloudbase":        catalog.ZAxisCloudBase,
	"cloudtop":         catalog.ZAxisCloudTop,
	"isotherm0":        catalog.ZAxisIsotherm0,
	"seabottom":        catalog.ZAxisSeaBottom,
	"lakebottom":       catalog.ZAxisLakeBottom,
	"sedimentbottom":   catalog.ZAxisSedimentBottom,
	"sedimentbottomta": catalog.ZAxisSedimentBottomTA,
	"sedimentbottomtw": catalog.ZAxisSedimentBottomTW,
	"mixlayer":         catalog.ZAxisMixLayer,
	"atmosphere":       catalog.ZAxisAtmosphere,
}

func calendarFromAttr(s string) (catalog.Calendar, bool) {
	switch {
	case s == "standard":
		return catalog.CalendarStandard, true
	case hasPrefix(s, "gregorian"):
		return catalog.CalendarGregorian, true
	case s == "none":
		return catalog.CalendarNone, true
	case hasPrefix(s, "proleptic"):
		return catalog.CalendarProleptic, true
	case hasPrefix(s, "julian"):
		return catalog.CalendarJulian, true
	case hasPrefix(s, "360"):
		return catalog.Calendar360Days, true
	case hasPrefix(s, "365"), hasPrefix(s, "noleap"):
		return catalog.Calendar365Days, true
	case hasPrefix(s, "366"), hasPrefix(s, "all_leap"):
		return catalog.Calendar366Days, true
	}
	return catalog.CalendarStandard, false
}
