package coro

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalQueuePutLenFIFO(t *testing.T) {
	q := newGlobalQueue()
	for i := uint64(0); i < 5; i++ {
		q.put(testG(i))
	}
	assert.Equal(t, 5, q.len())
	assert.Equal(t, uint64(5), q.enqueuedCount())

	first := q.getBatch(1, 1, nil)
	require.NotNil(t, first)
	assert.Equal(t, uint64(0), first.id)
	assert.Equal(t, 4, q.len())
}

func TestGlobalQueueGetBatchSizingAndOverflowToLocal(t *testing.T) {
	q := newGlobalQueue()
	for i := uint64(0); i < 20; i++ {
		q.put(testG(i))
	}
	dst := &localQueue{}
	// max=0 -> automatic sizing: ceil(20/4)+1 = 6, capped at P_CAP/2 = 4.
	first := q.getBatch(0, 4, dst)
	require.NotNil(t, first)
	assert.Equal(t, uint64(0), first.id)
	assert.Equal(t, 3, dst.len(), "3 of the 4-item batch go to dst, the first is returned directly")
	assert.Equal(t, 16, q.len())
}

func TestGlobalQueueGetBatchEmpty(t *testing.T) {
	q := newGlobalQueue()
	assert.Nil(t, q.getBatch(1, 1, nil))
}

func TestGlobalQueueWaitForWorkWakesOnPut(t *testing.T) {
	q := newGlobalQueue()
	var wg sync.WaitGroup
	wg.Add(1)
	woke := make(chan struct{})
	go func() {
		defer wg.Done()
		q.waitForWork()
		close(woke)
	}()

	time.Sleep(20 * time.Millisecond) // let the waiter block in cond.Wait
	q.put(testG(1))

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waitForWork did not wake on put")
	}
	wg.Wait()
}

func TestGlobalQueueBroadcastWakeWakesAllWaiters(t *testing.T) {
	q := newGlobalQueue()
	const n = 5
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			q.waitForWork()
		}()
	}
	time.Sleep(20 * time.Millisecond)
	q.broadcastWake()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcastWake did not wake all waiters")
	}
}
