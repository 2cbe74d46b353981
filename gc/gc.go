// Package gc implements the mark-sweep garbage collector that owns every
// heap-allocated value in a Pusl VM instance: strings, objects, and bound
// function closures. The collector is intentionally small and
// stop-the-world — Pusl has no concurrency inside a single VM, so there is
// nothing a collection could race with.
package gc

// CellData is implemented by every kind of heap payload a Cell can carry
// (strings, objects, bound functions). Trace must invoke mark on every
// outgoing managed reference the payload holds, so that Collect can
// compute full reachability from a set of anchors.
type CellData interface {
	Trace(mark func(*Cell))
}

// Cell is a single heap-owned allocation. The mark bit starts false and is
// only ever set true during a collection's mark phase; Sweep always clears
// it back to false for everything that survives.
type Cell struct {
	Marked bool
	Data   CellData
}

// Heap owns every live Cell by strong reference. External holders of a
// *Cell (frames, objects, the import table) hold non-owning pointers that
// remain valid between collections — sweeps only ever free cells that
// were not marked reachable.
type Heap struct {
	cells []*Cell
}

// NewHeap returns an empty heap ready to allocate.
func NewHeap() *Heap {
	return &Heap{}
}

// Alloc places data in the heap and returns a pointer to its owning cell.
// The returned Cell is unmarked; it survives the next collection only if
// something reachable from an anchor references it by then.
func (h *Heap) Alloc(data CellData) *Cell {
	c := &Cell{Data: data}
	h.cells = append(h.cells, c)
	return c
}

// Len reports how many cells the heap currently owns, live or not yet
// swept. Mostly useful for tests and debug tooling.
func (h *Heap) Len() int {
	return len(h.cells)
}

// Anchor is anything the collector should treat as a GC root: frames'
// operand/variable stacks, the builtins map, per-file import objects, and
// so on. Anything reachable from an anchor survives a collection.
type Anchor interface {
	Trace(mark func(*Cell))
}

// Collect runs one full mark-sweep pass: every anchor is traced
// transitively, marking every cell it can reach, then every unmarked cell
// is freed and every surviving cell's mark bit is cleared back to false.
// It returns the number of cells freed.
func (h *Heap) Collect(anchors []Anchor) int {
	var mark func(c *Cell)
	mark = func(c *Cell) {
		if c == nil || c.Marked {
			return
		}
		c.Marked = true
		c.Data.Trace(mark)
	}

	for _, a := range anchors {
		if a == nil {
			continue
		}
		a.Trace(mark)
	}

	kept := h.cells[:0]
	freed := 0
	for _, c := range h.cells {
		if c.Marked {
			c.Marked = false
			kept = append(kept, c)
		} else {
			freed++
		}
	}
	h.cells = kept
	return freed
}
