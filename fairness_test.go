package coro_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	coro "github.com/joeycumines/go-coro"
)

// TestFairnessUnderSingleProcGlobalQueueStarvation reproduces Scenario D:
// with COMAXPROCS=1 and K coroutines started, more than fit in the local
// queue (capacity 8) overflow to the global queue. Every one of them must
// still eventually run, exercising the periodic global-queue fairness
// check in the single-P case where no work stealing is possible at all.
func TestFairnessUnderSingleProcGlobalQueueStarvation(t *testing.T) {
	const k = 64 // > localQueueCap

	rt, err := coro.Init(coro.WithMaxProcs(1))
	require.NoError(t, err)
	defer rt.Shutdown()

	var ran int64
	var wg sync.WaitGroup
	wg.Add(k)

	for i := 0; i < k; i++ {
		coro.Start("fairness", func(self *coro.G, _ any) {
			defer wg.Done()
			self.Yield()
			atomic.AddInt64(&ran, 1)
		}, nil)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatalf("only %d/%d coroutines ran before timeout: global-queue starvation", atomic.LoadInt64(&ran), k)
	}

	require.Equal(t, int64(k), ran)
}

// TestSingleProcNoStealingNeeded verifies the single-P boundary behaviour
// explicitly: with one P, the scheduler's steal path is always a no-op
// (there are no other P's), yet the scheduler still makes progress purely
// off its local and global queues.
func TestSingleProcNoStealingNeeded(t *testing.T) {
	rt, err := coro.Init(coro.WithMaxProcs(1))
	require.NoError(t, err)
	defer rt.Shutdown()

	done := make(chan struct{})
	coro.Start("solo", func(self *coro.G, _ any) {
		for i := 0; i < 10; i++ {
			self.Yield()
		}
		close(done)
	}, nil)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("single coroutine under single-P configuration did not complete")
	}

	st := rt.Stats()
	require.Equal(t, 1, st.TotalP)
	require.Equal(t, uint64(0), st.Procs[0].StealCount)
}
