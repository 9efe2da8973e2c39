package traversal

import (
	"testing"

	"github.com/ajhcs/beacon/spec"
	"github.com/stretchr/testify/require"
)

func twoNodeGraph() *spec.Graph {
	return &spec.Graph{
		Name: "p",
		Nodes: map[spec.NodeID]*spec.Node{
			"start": {ID: "start", Kind: spec.KindStart, Next: "end"},
			"end":   {ID: "end", Kind: spec.KindEnd},
		},
		Start: "start",
	}
}

func TestCursorStartsAtGraphStart(t *testing.T) {
	g := twoNodeGraph()
	c := NewCursor(g)
	require.Equal(t, spec.NodeID("start"), c.Node)
	require.False(t, c.Done())
}

func TestCursorMoveToAndDone(t *testing.T) {
	g := twoNodeGraph()
	c := NewCursor(g)
	c.MoveTo("end")
	require.True(t, c.Done())
}

func TestAbstractStateIDTracksCurrentNode(t *testing.T) {
	g := twoNodeGraph()
	c := NewCursor(g)
	require.Equal(t, "start", c.AbstractStateID())
	c.MoveTo("end")
	require.Equal(t, "end", c.AbstractStateID())
}
