package coro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemInitSetsCount(t *testing.T) {
	var sem Semaphore
	SemInit(&sem, 3)
	assert.Equal(t, int64(3), sem.count)
	assert.Empty(t, sem.waiters)
}

func TestSemFastPathNeverBlocks(t *testing.T) {
	var sem Semaphore
	SemInit(&sem, 1)

	h := &G{g: testG(1)}
	h.SemWait(&sem) // count: 1 -> 0, fast path, no park
	assert.Equal(t, int64(0), sem.count)
	assert.Empty(t, sem.waiters)
}

func TestSemPostWakesOneWaiterAndEnqueuesIt(t *testing.T) {
	var sem Semaphore
	SemInit(&sem, 0)

	waiter := testG(42)
	waiter.status.Store(GSemWaiting)
	sem.lock()
	sem.count--
	sem.enqueueWaiter(waiter)

	require.Len(t, sem.waiters, 1)
	assert.Equal(t, GSemWaiting, waiter.status.Load())

	sched := newScheduler(&config{maxProcs: 1, stackSize: DefaultStackSize, idleSleep: defaultIdleSleep})
	activeScheduler.Store(sched)
	defer activeScheduler.Store(nil)

	SemPost(&sem)

	assert.Equal(t, GRunable, waiter.status.Load())
	assert.Empty(t, sem.waiters)

	found := false
	for _, pp := range sched.procs {
		if pp.runq.len() > 0 {
			found = true
		}
	}
	assert.True(t, found, "SemPost must enqueue the woken waiter onto some P's run queue")
}

func TestSemPostFastPathWithNoWaiters(t *testing.T) {
	var sem Semaphore
	SemInit(&sem, 0)
	SemPost(&sem)
	assert.Equal(t, int64(1), sem.count)
}
