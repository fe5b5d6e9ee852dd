package util

import (
	"errors"
	"sort"
)

// OrderedMap keeps values in insertion order. Hidden keys stay out of Keys
// and are never re-added.
type OrderedMap[V any] struct {
	keys        []string
	values      map[string]V
	visibleKeys []string
	hiddenKeys  map[string]bool
}

var (
	ErrorKeysDontMatchValues = errors.New("keys don't match values")
)

func NewOrderedMap[V any](keys []string, values map[string]V) (*OrderedMap[V], error) {
	if len(keys) != len(values) {
		return nil, ErrorKeysDontMatchValues
	}
	mapKeys := make([]string, 0, len(values))
	for k := range values {
		mapKeys = append(mapKeys, k)
	}
	sort.Strings(mapKeys)

	sortedKeys := make([]string, len(keys))
	copy(sortedKeys, keys)
	sort.Strings(sortedKeys)

	for i := range sortedKeys {
		if mapKeys[i] != sortedKeys[i] {
			return nil, ErrorKeysDontMatchValues
		}
	}
	if values == nil {
		values = map[string]V{}
	}

	return &OrderedMap[V]{
		keys:        append([]string(nil), keys...),
		values:      values,
		visibleKeys: append([]string(nil), keys...),
		hiddenKeys:  map[string]bool{}}, nil
}

// Add appends name, or replaces its value in place if it already exists.
func (om *OrderedMap[V]) Add(name string, val V) {
	if om.hiddenKeys[name] {
		return
	}
	if _, has := om.values[name]; !has {
		om.keys = append(om.keys, name)
		om.visibleKeys = append(om.visibleKeys, name)
	}
	om.values[name] = val
}

func (om *OrderedMap[V]) Get(key string) (val V, has bool) {
	if om.hiddenKeys[key] {
		return val, false
	}
	val, has = om.values[key]
	return
}

func (om *OrderedMap[V]) Hide(hiddenKey string) {
	om.hiddenKeys[hiddenKey] = true
	// recompute visible keys
	visibleKeys := []string{}
	for _, key := range om.keys {
		if om.hiddenKeys[key] {
			continue
		}
		visibleKeys = append(visibleKeys, key)
	}
	om.visibleKeys = visibleKeys
}

func (om *OrderedMap[V]) Keys() []string {
	return om.visibleKeys
}

func (om *OrderedMap[V]) Len() int {
	return len(om.visibleKeys)
}

// Values returns the visible values in key order.
func (om *OrderedMap[V]) Values() []V {
	ret := make([]V, 0, len(om.visibleKeys))
	for _, k := range om.visibleKeys {
		ret = append(ret, om.values[k])
	}
	return ret
}
