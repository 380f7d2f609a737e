package docjob

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnqueueFailsWhenQueueFull(t *testing.T) {
	w := NewWorker(zap.NewNop(), 1500, 2)

	require.NoError(t, w.Enqueue(1))
	require.NoError(t, w.Enqueue(2))

	err := w.Enqueue(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}

func TestEnqueueBlockingWaitsForSpace(t *testing.T) {
	w := NewWorker(zap.NewNop(), 1500, 1)

	done := make(chan struct{})
	go func() {
		for _, id := range []uint{1, 2, 3} {
			w.enqueueBlocking(id)
		}
		close(done)
	}()

	// Drain the queue as a running worker would; every id must arrive even
	// though the queue only holds one at a time.
	var got []uint
	for i := 0; i < 3; i++ {
		select {
		case id := <-w.jobs:
			got = append(got, id)
		case <-time.After(2 * time.Second):
			t.Fatal("blocking enqueue never delivered all documents")
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking enqueue did not return after the queue drained")
	}

	assert.Equal(t, []uint{1, 2, 3}, got)
}
