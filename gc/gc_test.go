package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pusl-lang/pusl/gc"
)

// leafData has no outgoing references; it stands in for a string cell.
type leafData struct{ value string }

func (leafData) Trace(func(*gc.Cell)) {}

// linkData points at one other cell, standing in for an object with a
// parent pointer.
type linkData struct{ next *gc.Cell }

func (l linkData) Trace(mark func(*gc.Cell)) {
	if l.next != nil {
		mark(l.next)
	}
}

// rootAnchor lets a test pin an arbitrary set of cells as GC roots.
type rootAnchor struct{ cells []*gc.Cell }

func (r rootAnchor) Trace(mark func(*gc.Cell)) {
	for _, c := range r.cells {
		mark(c)
	}
}

func TestCollectFreesUnreachable(t *testing.T) {
	h := gc.NewHeap()
	reachable := h.Alloc(leafData{"kept"})
	unreachable := h.Alloc(leafData{"dropped"})
	_ = unreachable

	freed := h.Collect([]gc.Anchor{rootAnchor{[]*gc.Cell{reachable}}})

	assert.Equal(t, 1, freed)
	assert.Equal(t, 1, h.Len())
}

func TestCollectFollowsChains(t *testing.T) {
	h := gc.NewHeap()
	grandchild := h.Alloc(leafData{"gc"})
	child := h.Alloc(linkData{grandchild})
	root := h.Alloc(linkData{child})

	freed := h.Collect([]gc.Anchor{rootAnchor{[]*gc.Cell{root}}})

	assert.Equal(t, 0, freed)
	assert.Equal(t, 3, h.Len())
}

func TestCollectHandlesCycles(t *testing.T) {
	h := gc.NewHeap()
	a := h.Alloc(linkData{})
	b := h.Alloc(linkData{a})
	aData := a.Data.(linkData)
	aData.next = b
	a.Data = aData

	freed := h.Collect([]gc.Anchor{rootAnchor{[]*gc.Cell{a}}})
	assert.Equal(t, 0, freed)

	// Dropping the anchor entirely frees the whole cycle.
	freed = h.Collect(nil)
	assert.Equal(t, 2, freed)
}

func TestMarkBitClearedAfterSweep(t *testing.T) {
	h := gc.NewHeap()
	c := h.Alloc(leafData{"x"})
	h.Collect([]gc.Anchor{rootAnchor{[]*gc.Cell{c}}})
	assert.False(t, c.Marked)
}
