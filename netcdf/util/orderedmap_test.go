package util

import (
	"testing"
)

func TestNewOrderedMap(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		values map[string]int
		ok     bool
	}{
		{"nil", nil, nil, true},
		{"empty map", nil, map[string]int{}, true},
		{"empty keys", []string{}, nil, true},
		{"ordered", []string{"lon", "lat"}, map[string]int{"lat": 1, "lon": 0}, true},
		{"short map", []string{"lon", "lat"}, map[string]int{"lon": 0}, false},
		{"other key", []string{"lon", "lat"}, map[string]int{"lon": 0, "time": 2}, false},
	}
	for _, tt := range tests {
		om, err := NewOrderedMap(tt.keys, tt.values)
		if !tt.ok {
			if err != ErrorKeysDontMatchValues {
				t.Errorf("%s: got %v, want ErrorKeysDontMatchValues", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if om.Len() != len(tt.keys) {
			t.Errorf("%s: length %d", tt.name, om.Len())
		}
		for i, k := range om.Keys() {
			if k != tt.keys[i] {
				t.Errorf("%s: key %d is %s, want %s", tt.name, i, k, tt.keys[i])
			}
		}
	}
}

func TestHidden(t *testing.T) {
	om, err := NewOrderedMap([]string{"a", "b"},
		map[string]int{"a": 0, "b": 0})
	if err != nil {
		t.Error(err)
		return
	}
	om.Hide("a")
	keys := om.Keys()
	if len(keys) != 1 || keys[0] != "b" {
		t.Error("Hide() failed")
		return
	}
	om.Add("a", 1)
	keys = om.Keys()
	if len(keys) != 1 || keys[0] != "b" {
		t.Error("Hide() failed")
		return
	}
	if _, has := om.Get("a"); has {
		t.Error("hidden key still visible")
	}
	om.Hide("c")
}

func TestAdd(t *testing.T) {
	om, err := NewOrderedMap[int](nil, nil)
	if err != nil {
		t.Error(err)
		return
	}
	om.Add("b", 2)
	om.Add("a", 1)
	val, has := om.Get("a")
	if !has {
		t.Error("Did not find expected key")
		return
	}
	if val != 1 {
		t.Error("Did not get expected value back")
		return
	}
	om.Add("b", 3)
	keys := om.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Error("replacing a value changed the order", keys)
		return
	}
	vals := om.Values()
	if len(vals) != 2 || vals[0] != 3 || vals[1] != 1 {
		t.Error("unexpected values", vals)
	}
	if om.Len() != 2 {
		t.Error("unexpected length", om.Len())
	}
}
