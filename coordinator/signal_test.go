package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueAssignsMonotonicSequenceNumbers(t *testing.T) {
	q := NewQueue(8)
	q.Enqueue(Signal{Kind: SignalCrash})
	q.Enqueue(Signal{Kind: SignalTimeout})
	q.Enqueue(Signal{Kind: SignalDiscrepancy})

	batch := q.Drain(8)
	require.Len(t, batch, 3)
	require.Equal(t, uint64(1), batch[0].Seq)
	require.Equal(t, uint64(2), batch[1].Seq)
	require.Equal(t, uint64(3), batch[2].Seq)
}

func TestQueueDrainRespectsMaxAndLeavesRemainder(t *testing.T) {
	q := NewQueue(8)
	for i := 0; i < 5; i++ {
		q.Enqueue(Signal{Kind: SignalGuardFailure})
	}
	first := q.Drain(3)
	require.Len(t, first, 3)
	second := q.Drain(3)
	require.Len(t, second, 2)
}
