package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCDLType(t *testing.T) {
	for typ := TypeUnknown; typ <= TypeCompound; typ++ {
		assert.Equal(t, typ, ParseCDLType(typ.String()))
	}
	assert.Equal(t, TypeUnknown, ParseCDLType("opaque"))
	assert.Equal(t, "unknown", Type(99).String())
}

func TestTypeClasses(t *testing.T) {
	assert.True(t, TypeChar.IsText())
	assert.True(t, TypeString.IsText())
	assert.True(t, TypeFloat.IsFloat())
	assert.True(t, TypeUInt64.IsInteger())
	assert.False(t, TypeDouble.IsInteger())
	assert.False(t, TypeCompound.IsFloat())
}

func TestAttributeLen(t *testing.T) {
	assert.Equal(t, 0, Attribute{}.Len())
	assert.Equal(t, 3, Attribute{Value: "abc"}.Len())
	assert.Equal(t, 2, Attribute{Value: []int16{1, 2}}.Len())
	assert.Equal(t, 1, Attribute{Value: 1.5}.Len())
}

func TestFilter(t *testing.T) {
	var q Query = &Filter{Names: []string{"tas"}, Steps: []int{2}}
	assert.Equal(t, 1, q.NumNames())
	assert.True(t, q.HasName("tas"))
	assert.False(t, q.HasName("pr"))
	assert.True(t, q.HasStep(2))
	assert.False(t, q.HasStep(1))
	_, _, ok := q.CellRange()
	assert.False(t, ok)

	start, count, ok := (&Filter{CellStart: 5}).CellRange()
	assert.True(t, ok)
	assert.Equal(t, 5, start)
	assert.Equal(t, 1, count)
}

func TestWindowLen(t *testing.T) {
	assert.Equal(t, 1, WindowLen(nil))
	assert.Equal(t, 6, WindowLen([]int{2, 3}))
	assert.Equal(t, 0, WindowLen([]int{2, 0}))
}

func TestWindowOffsets(t *testing.T) {
	assert.Equal(t, []int{4, 5, 7, 8}, WindowOffsets([]int{3, 3}, []int{1, 1}, []int{2, 2}))
	assert.Equal(t, []int{5, 11}, WindowOffsets([]int{2, 2, 3}, []int{0, 1, 2}, []int{2, 1, 1}))
	assert.Equal(t, []int{0}, WindowOffsets(nil, nil, nil))
	assert.Empty(t, WindowOffsets([]int{3}, []int{0}, []int{0}))
}

func TestNilFilter(t *testing.T) {
	var f *Filter
	var q Query = f
	assert.Equal(t, 0, q.NumNames())
	assert.False(t, q.HasName("tas"))
	assert.Equal(t, 0, q.NumSteps())
	assert.False(t, q.HasStep(1))
	_, _, ok := q.CellRange()
	assert.False(t, ok)
}
