package coro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testG(id uint64) *g {
	return &g{id: id, status: newGState(GRunable)}
}

func TestLocalQueuePutGetFIFO(t *testing.T) {
	q := &localQueue{}
	for i := uint64(0); i < localQueueCap; i++ {
		require.True(t, q.put(testG(i)))
	}
	require.Equal(t, localQueueCap, q.len())

	for i := uint64(0); i < localQueueCap; i++ {
		gp := q.get()
		require.NotNil(t, gp)
		assert.Equal(t, i, gp.id)
	}
	assert.Nil(t, q.get())
}

func TestLocalQueueOverflowReportsFalse(t *testing.T) {
	q := &localQueue{}
	for i := uint64(0); i < localQueueCap; i++ {
		require.True(t, q.put(testG(i)))
	}
	assert.False(t, q.put(testG(999)), "put beyond capacity must report false so the caller redirects to the global queue")
	assert.Equal(t, localQueueCap, q.len())
}

func TestLocalQueueWrapsAroundRingBuffer(t *testing.T) {
	q := &localQueue{}
	for i := uint64(0); i < localQueueCap; i++ {
		require.True(t, q.put(testG(i)))
	}
	// drain half, refill: exercises the head wraparound.
	for i := 0; i < localQueueCap/2; i++ {
		q.get()
	}
	for i := uint64(100); i < 100+localQueueCap/2; i++ {
		require.True(t, q.put(testG(i)))
	}
	require.Equal(t, localQueueCap, q.len())
	var got []uint64
	for gp := q.get(); gp != nil; gp = q.get() {
		got = append(got, gp.id)
	}
	assert.Equal(t, []uint64{4, 5, 6, 7, 100, 101, 102, 103}, got)
}

func TestLocalQueueTryStealRequiresAtLeastTwo(t *testing.T) {
	q := &localQueue{}
	require.True(t, q.put(testG(1)))
	assert.Nil(t, q.trySteal(), "stealing from a queue with fewer than 2 items must yield nothing")
}

func TestLocalQueueTryStealTakesHalfFromTailPreservingOrder(t *testing.T) {
	q := &localQueue{}
	for i := uint64(0); i < 5; i++ {
		require.True(t, q.put(testG(i)))
	}
	stolen := q.trySteal()
	require.Len(t, stolen, 3) // ceil(5/2) == 3
	var ids []uint64
	for _, gp := range stolen {
		ids = append(ids, gp.id)
	}
	assert.Equal(t, []uint64{2, 3, 4}, ids, "steal takes from the tail, and preserves victim FIFO order for the thief")
	assert.Equal(t, 2, q.len())
}

func TestLocalQueuePutBatch(t *testing.T) {
	q := &localQueue{}
	batch := []*g{testG(1), testG(2), testG(3)}
	q.putBatch(batch)
	require.Equal(t, 3, q.len())
	assert.Equal(t, uint64(1), q.get().id)
	assert.Equal(t, uint64(2), q.get().id)
	assert.Equal(t, uint64(3), q.get().id)
}
