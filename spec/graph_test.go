package spec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func countKinds(g *Graph) map[NodeKind]int {
	out := map[NodeKind]int{}
	for _, n := range g.Nodes {
		out[n.Kind]++
	}
	return out
}

func TestLowerSeq(t *testing.T) {
	doc := minimalDocument()
	ir, err := Compile(doc)
	require.NoError(t, err)
	g := ir.Graphs["main"]
	require.NotNil(t, g)
	kinds := countKinds(g)
	require.Equal(t, 1, kinds[KindStart])
	require.Equal(t, 1, kinds[KindEnd])
	require.Equal(t, 2, kinds[KindTerminal])
}

func TestLowerAltProducesBranchWithEdgePerBranch(t *testing.T) {
	doc := minimalDocument()
	doc.Protocols["main"] = ProtocolDecl{Root: ProtocolNode{
		Kind: NodeAlt,
		Branches: []AltBranch{
			{ID: "a", Weight: 1, Body: ProtocolNode{Kind: NodeCall, Action: "create_user"}},
			{ID: "b", Weight: 1, Body: ProtocolNode{Kind: NodeCall, Action: "create_document"}},
		},
	}}
	ir, err := Compile(doc)
	require.NoError(t, err)
	g := ir.Graphs["main"]
	var branch *Node
	for _, n := range g.Nodes {
		if n.Kind == KindBranch {
			branch = n
		}
	}
	require.NotNil(t, branch)
	require.Len(t, branch.Edges, 2)
}

func TestLowerRepeatProducesEntryAndExit(t *testing.T) {
	doc := minimalDocument()
	body := ProtocolNode{Kind: NodeCall, Action: "create_user"}
	doc.Protocols["main"] = ProtocolDecl{Root: ProtocolNode{
		Kind: NodeRepeat,
		Min:  2,
		Max:  5,
		Body: &body,
	}}
	ir, err := Compile(doc)
	require.NoError(t, err)
	g := ir.Graphs["main"]
	kinds := countKinds(g)
	require.Equal(t, 1, kinds[KindLoopEntry])
	require.Equal(t, 1, kinds[KindLoopExit])

	var entry, exit *Node
	for _, n := range g.Nodes {
		if n.Kind == KindLoopEntry {
			entry = n
		}
		if n.Kind == KindLoopExit {
			exit = n
		}
	}
	require.Equal(t, 2, entry.Min)
	require.Equal(t, 5, entry.Max)
	require.Equal(t, exit.ID, entry.LoopExitID)
	require.Equal(t, entry.ID, exit.LoopEntryID)
}

func TestLowerRefInlinesProtocol(t *testing.T) {
	doc := minimalDocument()
	doc.Protocols["inner"] = ProtocolDecl{Root: ProtocolNode{Kind: NodeCall, Action: "create_user"}}
	doc.Protocols["main"] = ProtocolDecl{Root: ProtocolNode{Kind: NodeRef, Ref: "inner"}}
	ir, err := Compile(doc)
	require.NoError(t, err)
	g := ir.Graphs["main"]
	kinds := countKinds(g)
	require.Equal(t, 1, kinds[KindTerminal])
}
