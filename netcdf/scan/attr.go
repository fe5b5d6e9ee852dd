package scan

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
)

// attrSet reads typed values from an attribute list. Mismatched kinds
// yield zero values, never errors.
type attrSet []api.Attribute

func (as attrSet) find(name string) (api.Attribute, bool) {
	for _, a := range as {
		if a.Name == name {
			return a, true
		}
	}
	return api.Attribute{}, false
}

func (as attrSet) has(name string) bool {
	_, ok := as.find(name)
	return ok
}

// numbers returns the numeric elements of a, or nil for text and user types.
func numbers[T any](a api.Attribute, conv func(any) (T, error)) []T {
	if !a.Type.IsInteger() && !a.Type.IsFloat() {
		return nil
	}
	rv := reflect.ValueOf(a.Value)
	if rv.Kind() != reflect.Slice {
		if x, err := conv(a.Value); err == nil {
			return []T{x}
		}
		return nil
	}
	ret := make([]T, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		x, err := conv(rv.Index(i).Interface())
		if err != nil {
			return nil
		}
		ret = append(ret, x)
	}
	return ret
}

func attrFloats(a api.Attribute) []float64 { return numbers(a, cast.ToFloat64E) }
func attrInt64s(a api.Attribute) []int64   { return numbers(a, cast.ToInt64E) }

func (as attrSet) Float(name string) float64 {
	if a, ok := as.find(name); ok {
		if vals := attrFloats(a); len(vals) > 0 {
			return vals[0]
		}
	}
	return 0
}

func (as attrSet) Int64(name string) int64 {
	if a, ok := as.find(name); ok {
		if vals := attrInt64s(a); len(vals) > 0 {
			return vals[0]
		}
	}
	return 0
}

func (as attrSet) Int(name string) int {
	return int(as.Int64(name))
}

// Text returns a text attribute bounded to size-1 bytes, the way a
// NUL-terminated buffer of that size would hold it. A multi-byte rune that
// does not fit is dropped whole.
func (as attrSet) Text(name string, size int) string {
	a, ok := as.find(name)
	if !ok {
		return ""
	}
	return attrText(a, size)
}

func attrText(a api.Attribute, size int) string {
	var s string
	switch v := a.Value.(type) {
	case string:
		if a.Type != api.TypeChar && a.Type != api.TypeString {
			return ""
		}
		s = v
	case []string:
		if a.Type != api.TypeString || len(v) != 1 {
			return ""
		}
		s = v[0]
	default:
		return ""
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if size > 0 && len(s) > size-1 {
		// Cut at a rune boundary.
		n := size - 1
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	return s
}

func isTextAttr(a api.Attribute) bool   { return a.Type.IsText() }
func isNumberAttr(a api.Attribute) bool { return a.Type.IsInteger() || a.Type.IsFloat() }
