package internal

import (
	"sync"
)

// ReadFunc reads a start/count window of one variable as doubles.
type ReadFunc func(start, count []int) ([]float64, error)

// Slicer is a window of a variable that is read on first use. Scale and
// offset are applied after the read.
type Slicer struct {
	read   ReadFunc
	start  []int
	count  []int
	scale  float64
	offset float64

	once sync.Once
	vals []float64
	err  error
}

func NewSlicer(read ReadFunc, start, count []int, scale, offset float64) *Slicer {
	return &Slicer{
		read:   read,
		start:  append([]int(nil), start...),
		count:  append([]int(nil), count...),
		scale:  scale,
		offset: offset,
	}
}

// Len is the number of values in the window. A nil count is a scalar.
func (sl *Slicer) Len() int {
	n := 1
	for _, c := range sl.count {
		n *= c
	}
	return n
}

func (sl *Slicer) Window() (start, count []int) {
	return sl.start, sl.count
}

func (sl *Slicer) Values() ([]float64, error) {
	sl.once.Do(func() {
		var vals []float64
		vals, sl.err = sl.read(sl.start, sl.count)
		if sl.err == nil {
			ScaleAdd(vals, sl.scale, sl.offset)
			sl.vals = vals
		}
	})
	return sl.vals, sl.err
}

// ScaleAdd applies v*scale+offset in place. A scale of 1 and an offset of
// 0 leave the values untouched.
func ScaleAdd(vals []float64, scale, offset float64) {
	hasScale := scale != 1
	hasOffset := offset != 0
	switch {
	case hasScale && hasOffset:
		for i := range vals {
			vals[i] = vals[i]*scale + offset
		}
	case hasScale:
		for i := range vals {
			vals[i] *= scale
		}
	case hasOffset:
		for i := range vals {
			vals[i] += offset
		}
	}
}
