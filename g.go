package coro

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
)

// parkReason is the small integer reason code a parking G delivers to its
// M, dispatched by the table in m.go's dispatch.
type parkReason uint8

const (
	reasonYield parkReason = iota
	reasonWait
	reasonSemWait
	reasonExit
)

// G is the public, non-owning handle to a coroutine returned by Start.
// Only the fields needed by callers (Wait, Free) are exported; the
// scheduler-internal state lives on the unexported g this wraps.
type G struct {
	g *g
}

// ID returns the coroutine's unique identifier.
func (h *G) ID() uint64 { return h.g.id }

// Name returns the coroutine's display name.
func (h *G) Name() string { return h.g.name }

// Status returns the coroutine's current status.
func (h *G) Status() GStatus { return h.g.status.Load() }

// g is the scheduler-internal coroutine representation: stack, saved
// context (realized as a parked-goroutine handshake, see switch.go),
// status, waiters, and the intrusive list fields that let it move between
// queues without reallocation.
type g struct {
	id     uint64
	name   string
	entry  EntryFunc
	arg    any
	status *gState

	// stack is retained purely as the resource-accounting and
	// canary-storage artifact described in SPEC_FULL.md's Go realization
	// of the context switch: the first 8 bytes hold the canary, checked
	// on every scheduler entry/exit. Actual execution uses the host
	// goroutine's own runtime-managed stack.
	stack []byte

	// intrusive list fields: a g belongs to at most one queue at a time.
	gqNext, gqPrev *g // globalQueue

	waitersMu sync.Mutex
	waiters   []*g

	dead chan struct{} // closed exactly once, when status becomes GDead

	p atomic.Pointer[p] // owning P, or nil if in the global queue / not yet scheduled

	// parked/resume realize the save-and-jump / long-jump pair: parked is
	// sent on by the G's own goroutine just before it blocks on resume.
	parked chan parkReason
	resume chan struct{}

	// transfer slot (populated by the G immediately before parking,
	// consumed only by the M that receives the corresponding park signal)
	waitTarget *g
	semTarget  *Semaphore

	isMain bool // true only for the synthetic main-G surrogate
}

func newG(id uint64, name string, entry EntryFunc, arg any, stackSize int) *g {
	stack := make([]byte, stackSize)
	binary.LittleEndian.PutUint64(stack[:8], stackCanary)
	return &g{
		id:     id,
		name:   name,
		entry:  entry,
		arg:    arg,
		status: newGState(GNew),
		stack:  stack,
		dead:   make(chan struct{}),
		parked: make(chan parkReason, 1),
		resume: make(chan struct{}, 1),
	}
}

// checkCanary verifies the stack-bottom sentinel, fataling (per §7,
// "internal invariant violation") if it has been corrupted.
func (gp *g) checkCanary() {
	got := binary.LittleEndian.Uint64(gp.stack[:8])
	assert(got == stackCanary, "stack canary corrupted for G %d (%s): got %#x, want %#x", gp.id, gp.name, got, stackCanary)
}

// addWaiter links w into gp's waiter list under the waiter-list lock,
// returning false (without linking) if gp has already reached GDead, in
// which case the caller must treat the wait as immediately satisfied.
func (gp *g) addWaiter(w *g) bool {
	gp.waitersMu.Lock()
	defer gp.waitersMu.Unlock()
	if gp.status.Load() == GDead {
		return false
	}
	gp.waiters = append(gp.waiters, w)
	return true
}

// releaseWaiters is step 4 of the coroutine wrapper's exit sequence:
// under gp's waiter-lock, remove and return every waiter so the caller can
// mark each RUNABLE and enqueue it via runq_put.
func (gp *g) releaseWaiters() []*g {
	gp.waitersMu.Lock()
	defer gp.waitersMu.Unlock()
	out := gp.waiters
	gp.waiters = nil
	return out
}
