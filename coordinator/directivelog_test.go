package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectiveLogSinceReturnsOnlyNewEntries(t *testing.T) {
	l := NewDirectiveLog()
	l.Append([]Directive{{Kind: DirectiveAdjustWeight, EdgeID: "e1"}})

	got, cursor := l.Since(0)
	require.Len(t, got, 1)

	more, cursor2 := l.Since(cursor)
	require.Empty(t, more)
	require.Equal(t, cursor, cursor2)

	l.Append([]Directive{{Kind: DirectiveForce, TerminalSeq: []string{"a"}}, {Kind: DirectiveLoopLimit, Loops: 3}})
	more, cursor3 := l.Since(cursor)
	require.Len(t, more, 2)
	require.Greater(t, cursor3, cursor)
}

func TestDirectiveLogMultipleReadersTrackIndependentCursors(t *testing.T) {
	l := NewDirectiveLog()
	l.Append([]Directive{{Kind: DirectiveSkip, EdgeID: "e1"}})

	a, cursorA := l.Since(0)
	b, cursorB := l.Since(0)
	require.Equal(t, a, b)

	l.Append([]Directive{{Kind: DirectiveSkip, EdgeID: "e2"}})
	onlyA, _ := l.Since(cursorA)
	onlyB, _ := l.Since(cursorB)
	require.Equal(t, onlyA, onlyB)
	require.Len(t, onlyA, 1)
}
