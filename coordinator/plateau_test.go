package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlateauDetectorFiresAfterBetaStalledEpochs(t *testing.T) {
	p := newPlateauDetector(3)
	require.False(t, p.Observe("t", false))
	require.False(t, p.Observe("t", false))
	require.True(t, p.Observe("t", false), "third consecutive stall reaches beta")
	require.False(t, p.Observe("t", false), "already reported, does not re-fire")
}

func TestPlateauDetectorResetsOnProgress(t *testing.T) {
	p := newPlateauDetector(2)
	require.False(t, p.Observe("t", false))
	require.False(t, p.Observe("t", true), "progress clears the streak")
	require.False(t, p.Observe("t", false))
	require.True(t, p.Observe("t", false))
}

func TestPlateauDetectorTracksTargetsIndependently(t *testing.T) {
	p := newPlateauDetector(1)
	require.True(t, p.Observe("a", false))
	require.False(t, p.Observe("b", true))
}
