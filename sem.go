package coro

import (
	"runtime"
	"sync/atomic"
)

// Semaphore is a counting semaphore: a signed count, a spin-lock, and a
// FIFO slice of waiter G's.
type Semaphore struct {
	locked  atomic.Uint32
	count   int64
	waiters []*g
}

// SemInit prepares sem with the given initial count.
func SemInit(sem *Semaphore, initial int64) {
	sem.locked.Store(0)
	sem.count = initial
	sem.waiters = nil
}

// lock is the spin-lock primitive: a tight CAS loop, never parking the OS
// thread, matching "each semaphore has its own spin-lock" in §5.
func (s *Semaphore) lock() {
	for !s.locked.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

func (s *Semaphore) unlock() { s.locked.Store(0) }

// enqueueWaiter appends gp to the waiter list and marks it SEM_WAITING
// before releasing the spin-lock, so a concurrent SemPost can never pop and
// redispatch gp before its status reflects the wait. It must be called only
// by the M dispatching a reasonSemWait park, while the spin-lock taken in
// SemWait is still held.
func (s *Semaphore) enqueueWaiter(gp *g) {
	s.waiters = append(s.waiters, gp)
	gp.status.Store(GSemWaiting)
	s.unlock()
}

func (s *Semaphore) popWaiter() *g {
	if len(s.waiters) == 0 {
		return nil
	}
	w := s.waiters[0]
	s.waiters = s.waiters[1:]
	return w
}

// SemWait decrements sem's count. If the result is non-negative the fast
// path returns immediately; otherwise the calling coroutine parks with
// reasonSemWait, and the scheduler performs the waiter-list enqueue under
// the still-held spin-lock (see enqueueWaiter).
func (h *G) SemWait(sem *Semaphore) {
	gp := h.g
	sem.lock()
	sem.count--
	if sem.count >= 0 {
		sem.unlock()
		return
	}
	gp.semTarget = sem
	gp.parkAndWait(reasonSemWait)
}

// SemPost increments sem's count. If the result is positive the fast path
// returns immediately; otherwise it pops one waiter, marks it RUNABLE, and
// enqueues it through the standard run-queue path.
func SemPost(sem *Semaphore) {
	sem.lock()
	sem.count++
	if sem.count > 0 {
		sem.unlock()
		return
	}
	w := sem.popWaiter()
	sem.unlock()
	if w != nil {
		w.status.Store(GRunable)
		currentScheduler().runqPut(w)
	}
}
