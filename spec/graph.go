package spec

import (
	"fmt"

	"github.com/ajhcs/beacon/set"
)

// NodeID names one node of a lowered NDA graph.
type NodeID string

// NodeKind enumerates the NDA graph node shapes (§4.2).
type NodeKind string

const (
	KindStart     NodeKind = "start"
	KindEnd       NodeKind = "end"
	KindTerminal  NodeKind = "terminal"
	KindBranch    NodeKind = "branch"
	KindLoopEntry NodeKind = "loopEntry"
	KindLoopExit  NodeKind = "loopExit"
)

// Edge is one outgoing edge of a Branch node (§4.2).
type Edge struct {
	ID       string // author-supplied alt-branch identifier
	Weight   float64
	Target   NodeID
	Guard    *Expr
}

// Node is one node of a lowered NDA graph. Only the fields relevant to
// Kind are populated.
type Node struct {
	ID   NodeID
	Kind NodeKind

	// KindTerminal
	Action string
	Guard  *Expr

	// KindStart, KindTerminal, KindLoopExit: single successor.
	Next NodeID

	// KindBranch
	Edges []Edge

	// KindLoopEntry
	Min, Max    int
	BodyHead    NodeID
	LoopExitID  NodeID

	// KindLoopExit
	LoopEntryID NodeID
}

// Graph is one protocol's lowered, traversable form.
type Graph struct {
	Name  string
	Nodes map[NodeID]*Node
	Start NodeID
}

type graphBuilder struct {
	doc      *Document
	tc       *TypeContext
	nodes    map[NodeID]*Node
	counter  int
	lowering set.Set[string] // protocols currently being lowered, for cycle detection
	errs     *CompileErrors
}

func newNodeID(b *graphBuilder) NodeID {
	b.counter++
	return NodeID(fmt.Sprintf("n%d", b.counter))
}

// lowerProtocol lowers the named protocol into a standalone Graph.
func lowerProtocol(doc *Document, tc *TypeContext, name string, errs *CompileErrors) *Graph {
	b := &graphBuilder{
		doc:      doc,
		tc:       tc,
		nodes:    make(map[NodeID]*Node),
		lowering: set.Of(name),
		errs:     errs,
	}
	decl, ok := doc.Protocols[name]
	if !ok {
		*errs = append(*errs, fmt.Errorf("%w: protocol %q", ErrDanglingReference, name))
		return nil
	}
	endID := newNodeID(b)
	b.nodes[endID] = &Node{ID: endID, Kind: KindEnd}

	entry := b.lower(decl.Root, endID)
	if entry == "" {
		return nil
	}
	startID := newNodeID(b)
	b.nodes[startID] = &Node{ID: startID, Kind: KindStart, Next: entry}

	return &Graph{Name: name, Nodes: b.nodes, Start: startID}
}

// lower lowers node, wiring every terminal exit of node's subgraph to
// continue at cont, and returns the id of node's entry.
func (b *graphBuilder) lower(node ProtocolNode, cont NodeID) NodeID {
	switch node.Kind {
	case NodeCall:
		return b.lowerCall(node, cont)
	case NodeSeq:
		return b.lowerSeq(node, cont)
	case NodeAlt:
		return b.lowerAlt(node, cont)
	case NodeRepeat:
		return b.lowerRepeat(node, cont)
	case NodeRef:
		return b.lowerRef(node, cont)
	default:
		*b.errs = append(*b.errs, fmt.Errorf("%w: unknown protocol node kind %q", ErrUnknownOperator, node.Kind))
		return ""
	}
}

func (b *graphBuilder) lowerCall(node ProtocolNode, cont NodeID) NodeID {
	var guard *Expr
	if node.Guard.Kind != "" {
		guard = compileExpr(b.tc, EmptyFrame, node.Guard, 1, b.errs)
	}
	id := newNodeID(b)
	b.nodes[id] = &Node{ID: id, Kind: KindTerminal, Action: node.Action, Guard: guard, Next: cont}
	return id
}

func (b *graphBuilder) lowerSeq(node ProtocolNode, cont NodeID) NodeID {
	if len(node.Seq) == 0 {
		return cont
	}
	next := cont
	for i := len(node.Seq) - 1; i >= 0; i-- {
		next = b.lower(node.Seq[i], next)
		if next == "" {
			return ""
		}
	}
	return next
}

func (b *graphBuilder) lowerAlt(node ProtocolNode, cont NodeID) NodeID {
	if len(node.Branches) == 0 {
		*b.errs = append(*b.errs, fmt.Errorf("%w: alt has no branches", ErrZeroWeightBranch))
		return ""
	}
	hasPositiveWeight := false
	edges := make([]Edge, 0, len(node.Branches))
	for _, br := range node.Branches {
		if br.Weight > 0 {
			hasPositiveWeight = true
		}
		var guard *Expr
		if br.Guard.Kind != "" {
			guard = compileExpr(b.tc, EmptyFrame, br.Guard, 1, b.errs)
		}
		target := b.lower(br.Body, cont)
		if target == "" {
			continue
		}
		edges = append(edges, Edge{ID: br.ID, Weight: br.Weight, Target: target, Guard: guard})
	}
	if !hasPositiveWeight {
		*b.errs = append(*b.errs, fmt.Errorf("%w", ErrZeroWeightBranch))
		return ""
	}
	id := newNodeID(b)
	b.nodes[id] = &Node{ID: id, Kind: KindBranch, Edges: edges}
	return id
}

func (b *graphBuilder) lowerRepeat(node ProtocolNode, cont NodeID) NodeID {
	if node.Min < 0 || node.Max < node.Min {
		*b.errs = append(*b.errs, fmt.Errorf("%w: min=%d max=%d", ErrInvalidRepeatBound, node.Min, node.Max))
		return ""
	}
	if node.Body == nil {
		*b.errs = append(*b.errs, fmt.Errorf("%w: repeat missing body", ErrArityMismatch))
		return ""
	}
	entryID := newNodeID(b)
	exitID := newNodeID(b)
	bodyHead := b.lower(*node.Body, exitID)
	if bodyHead == "" {
		return ""
	}
	b.nodes[entryID] = &Node{ID: entryID, Kind: KindLoopEntry, Min: node.Min, Max: node.Max, BodyHead: bodyHead, LoopExitID: exitID}
	b.nodes[exitID] = &Node{ID: exitID, Kind: KindLoopExit, LoopEntryID: entryID, Next: cont}
	return entryID
}

func (b *graphBuilder) lowerRef(node ProtocolNode, cont NodeID) NodeID {
	if b.lowering.Contains(node.Ref) {
		*b.errs = append(*b.errs, fmt.Errorf("%w: %q", ErrProtocolCycle, node.Ref))
		return ""
	}
	decl, ok := b.doc.Protocols[node.Ref]
	if !ok {
		*b.errs = append(*b.errs, fmt.Errorf("%w: protocol %q", ErrDanglingReference, node.Ref))
		return ""
	}
	b.lowering.Add(node.Ref)
	entry := b.lower(decl.Root, cont)
	b.lowering.Remove(node.Ref)
	return entry
}
