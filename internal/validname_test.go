package internal

import "testing"

func TestIsValidNetCDFName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"lat_bnds", true},
		{"_", true},
		{"2m_temperature", true},
		{"T2", true},
		{"temp°", true},
		{"doubles", true},
		{"double", false},
		{"uint64", false},
		{"time ", false},
		{"lev/2", false},
		{"°C", false},
		{"\tx", false},
		{"x\x08", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidNetCDFName(tt.name); got != tt.ok {
			t.Errorf("IsValidNetCDFName(%q) = %v, want %v", tt.name, got, tt.ok)
		}
	}
}

func TestSplitNames(t *testing.T) {
	got := SplitNames(" lon lat,  time ", 0)
	want := []string{"lon", "lat", "time"}
	if len(got) != len(want) {
		t.Fatal("got", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Error("got", got[i], "want", want[i])
		}
	}
	if got := SplitNames("a b c", 2); len(got) != 2 {
		t.Error("max not honored", got)
	}
	if got := SplitNames(" , ", 0); len(got) != 0 {
		t.Error("expected no names", got)
	}
}
