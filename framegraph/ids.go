// Package framegraph implements the declarative per-frame task/resource
// graph: description-time registration (Registry), baking into a culled,
// topologically ordered, physically-described Plan (Builder), and
// cross-frame reuse of transient GPU resources (Pool).
package framegraph

// ID is an opaque, stable identifier for a node in a Registry. It is
// generated monotonically at node creation and never reused within the
// lifetime of a single Registry.
type ID uint32

// InvalidID is the sentinel zero value; no node is ever assigned it.
const InvalidID ID = 0

// idGenerator mints monotonically increasing, never-reused IDs.
type idGenerator struct {
	next ID
}

func (g *idGenerator) generate() ID {
	g.next++
	return g.next
}
