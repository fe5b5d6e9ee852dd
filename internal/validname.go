package internal

import (
	"regexp"
	"strings"
)

const (
	// A valid name must start with a letter, digit or underscore.
	// It may contain any character after that except control and slash.
	pattern = `^[\pL\pN_][^\pC/]*$`
	// It may not end with a whitespace character, or be a reserved word.
	antiPattern = `(\pZ|^(u?byte|char|string|u?short|u?int|u?int64|uint64|float|double|enum|opaque|compound))$`
)

var (
	re     = regexp.MustCompile(pattern)
	antiRe = regexp.MustCompile(antiPattern)
)

// IsValidNetCDFName returns true if name is a valid NetCDF name.
func IsValidNetCDFName(name string) bool {
	return re.MatchString(name) && !antiRe.MatchString(name)
}

// SplitNames splits an attribute value that lists variable names, such as
// "coordinates" or "bounds", on whitespace. A trailing comma on a name is
// dropped. At most limit names are returned; limit <= 0 means no limit.
func SplitNames(s string, limit int) []string {
	var names []string
	for _, f := range strings.Fields(s) {
		f = strings.TrimSuffix(f, ",")
		if f == "" {
			continue
		}
		if limit > 0 && len(names) == limit {
			break
		}
		names = append(names, f)
	}
	return names
}
