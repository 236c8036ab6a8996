package coro

import "sync/atomic"

// p is a logical processor: owns a bounded local run queue and scheduling
// counters, bound to at most one m at a time.
type p struct {
	id     int
	status atomic.Uint32 // PStatus

	runq localQueue

	boundM atomic.Pointer[m]

	idleNext *p // intrusive idle-list node, guarded by scheduler.idleMu

	schedTick  atomic.Uint64
	stealCount atomic.Uint64
}

func newP(id int) *p {
	pp := &p{id: id}
	pp.status.Store(uint32(PIdle))
	return pp
}

func (pp *p) getStatus() PStatus { return PStatus(pp.status.Load()) }

func (pp *p) setStatus(s PStatus) { pp.status.Store(uint32(s)) }

// runqPut enqueues gp, routing to sched's global queue on local overflow,
// exactly as §4.2 specifies, and bumping the global enqueue counter when
// it does.
func (pp *p) runqPut(sched *scheduler, gp *g) {
	gp.p.Store(pp)
	if pp.runq.put(gp) {
		sched.global.broadcastWake()
		return
	}
	gp.p.Store(nil)
	sched.global.put(gp)
}
