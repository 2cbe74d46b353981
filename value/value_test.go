package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pusl-lang/pusl/gc"
	"github.com/pusl-lang/pusl/value"
)

func TestTruthiness(t *testing.T) {
	assert.False(t, value.Null().IsTruthy())
	assert.False(t, value.Bool(false).IsTruthy())
	assert.True(t, value.Bool(true).IsTruthy())
	assert.True(t, value.Int(0).IsTruthy())
	assert.True(t, value.Float(0).IsTruthy())
}

func TestObjectPrototypeLookup(t *testing.T) {
	h := gc.NewHeap()
	parent := h.Alloc(value.NewObjectData(nil))
	parent.Data.(*value.ObjectData).Fields["x"] = value.Int(7)

	child := h.Alloc(value.NewObjectData(parent))

	v, ok := child.Data.(*value.ObjectData).Get("x")
	assert.True(t, ok)
	assert.Equal(t, int64(7), v.Int)

	assert.False(t, child.Data.(*value.ObjectData).HasOwn("x"))
	assert.True(t, parent.Data.(*value.ObjectData).HasOwn("x"))
}

func TestCloneSharesReference(t *testing.T) {
	h := gc.NewHeap()
	cell := h.Alloc(&value.StringData{Value: "hi"})
	a := value.Str(cell)
	b := a // clone by assignment
	assert.Same(t, a.Ref, b.Ref)
	assert.Equal(t, "hi", b.AsString())
}

func TestValueTraceReachesNestedObject(t *testing.T) {
	h := gc.NewHeap()
	parent := h.Alloc(value.NewObjectData(nil))
	child := h.Alloc(value.NewObjectData(parent))

	root := value.Obj(child)
	freed := h.Collect([]gc.Anchor{root})
	assert.Equal(t, 0, freed)
	assert.Equal(t, 2, h.Len())
}
