package catalog

import (
	"github.com/batchatco/go-netcdf-catalog/internal"
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
)

// Array is either eager data or a deferred read that is resolved on the
// first call to Values. The zero Array is empty.
type Array struct {
	data     []float64
	deferred *Deferred
}

// Deferred describes a coordinate read that has not happened yet.
type Deferred struct {
	VarID       int
	VarName     string
	ScaleFactor float64
	AddOffset   float64
	slicer      *internal.Slicer
}

func Eager(data []float64) Array {
	return Array{data: data}
}

// NewDeferred returns an Array reading the start/count window of varID
// from r on first use.
func NewDeferred(r api.Reader, varID int, varName string, start, count []int, scale, offset float64) Array {
	read := func(start, count []int) ([]float64, error) {
		return r.ReadFloat64(varID, start, count)
	}
	return Array{deferred: &Deferred{
		VarID:       varID,
		VarName:     varName,
		ScaleFactor: scale,
		AddOffset:   offset,
		slicer:      internal.NewSlicer(read, start, count, scale, offset),
	}}
}

func (a Array) IsDeferred() bool { return a.deferred != nil }

// Deferred returns the read descriptor, or nil for eager arrays.
func (a Array) Deferred() *Deferred { return a.deferred }

func (a Array) IsSet() bool { return a.deferred != nil || a.data != nil }

func (a Array) Len() int {
	if a.deferred != nil {
		return a.deferred.slicer.Len()
	}
	return len(a.data)
}

// Values returns the data, reading it first if the array is deferred.
func (a Array) Values() ([]float64, error) {
	if a.deferred != nil {
		return a.deferred.slicer.Values()
	}
	return a.data, nil
}

// Window returns the deferred read window.
func (d *Deferred) Window() (start, count []int) {
	return d.slicer.Window()
}
