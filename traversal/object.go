// Package traversal implements the traversal engine (C6): the object
// stack / strategy stack cursor that walks a compiled protocol graph,
// makes choices at Branch/LoopEntry/Terminal nodes, and drives the
// adapter and model kernel one step at a time.
package traversal

import "github.com/ajhcs/beacon/spec"

// Cursor is the object stack (§4.6): the position in the NDA graph plus
// the loop counters live at that position. protocol() inlines ref()
// targets into the graph at compile time (spec.lowerRef), so unlike a
// general interpreter's call stack, one Cursor is enough to track a
// traversal's position — there is no separate frame per protocol call
// to push and pop, only per-loop counters, which are keyed by the
// LoopEntry node id they belong to since the graph never re-enters the
// same LoopEntry node from two different call sites (cycles between
// protocols are rejected at compile time).
type Cursor struct {
	Graph *spec.Graph
	Node  spec.NodeID
	Loops map[spec.NodeID]int
}

// NewCursor starts a cursor at graph's start node.
func NewCursor(graph *spec.Graph) *Cursor {
	return &Cursor{Graph: graph, Node: graph.Start, Loops: map[spec.NodeID]int{}}
}

// At returns the node the cursor currently sits on.
func (c *Cursor) At() *spec.Node {
	return c.Graph.Nodes[c.Node]
}

// MoveTo advances the cursor to the given node.
func (c *Cursor) MoveTo(id spec.NodeID) {
	c.Node = id
}

// Done reports whether the cursor has reached the protocol's End node.
func (c *Cursor) Done() bool {
	return c.At().Kind == spec.KindEnd
}

// AbstractStateID identifies the traversal's current position for the
// weight table's (edge_id, abstract_state_id) keying (§4.7). The graph
// node a Branch choice is made from is used directly: it already
// disambiguates every point in the protocol where a weighted decision
// can occur, without needing a second derived hash of the full model
// state that the base spec does not otherwise require for this
// purpose.
func (c *Cursor) AbstractStateID() string {
	return string(c.Node)
}
