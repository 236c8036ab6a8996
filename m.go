package coro

import (
	"runtime"
	"time"
)

// m is a worker thread: it runs the scheduler loop described in §4.4,
// locked to its own OS thread for the lifetime of the scheduler so that
// "N OS threads in parallel" is a literal property, not an artifact of
// Go's own M:N goroutine multiplexing.
type m struct {
	id    uint64
	sched *scheduler
	curP  *p // owned exclusively by this M's own goroutine
	curG  *g

	// lastParked is when the previously dispatched G (if any) parked.
	// dispatch uses the gap between this and the next G actually starting
	// to run as the recorded context-switch latency sample.
	lastParked time.Time
}

func newM(id uint64, sched *scheduler) *m {
	return &m{id: id, sched: sched}
}

// mainLoop is the per-M scheduler entry/exit described in §4.4.
func (mm *m) mainLoop() {
	defer mm.sched.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	pinToCPU(mm.id)

	pp := mm.acquireP()
	mm.curP = pp

	for !mm.sched.stop.Load() {
		gp := mm.sched.findRunnable(pp)
		if gp == nil {
			mm.idleWait()
			continue
		}
		mm.dispatch(gp)
	}

	mm.sched.putIdle(pp)
	mm.curP = nil
}

// acquireP binds an idle P to this M bidirectionally. The scheduler always
// creates exactly one M per P, so this succeeds on the first attempt
// except during pathological scheduling delays at startup.
func (mm *m) acquireP() *p {
	for {
		if pp := mm.sched.getIdle(); pp != nil {
			pp.setStatus(PRunning)
			pp.boundM.Store(mm)
			return pp
		}
		time.Sleep(time.Millisecond)
	}
}

// idleWait blocks until work becomes available, bounded by the configured
// idle-sleep safety net (the condition-variable wake is the primary
// mechanism; the timer only guards against a missed signal during
// shutdown races).
func (mm *m) idleWait() {
	timer := time.AfterFunc(mm.sched.idleSleep, mm.sched.global.broadcastWake)
	mm.sched.global.waitForWork()
	timer.Stop()
}

// dispatch runs gp to its next suspension point and applies the §4.4
// dispatch table to the reason it parks with.
func (mm *m) dispatch(gp *g) {
	// The sample recorded is the gap between the previously dispatched G
	// parking and this G actually starting to run below: time spent in
	// findRunnable, stealing, and idleWait, not how long gp itself runs.
	if !mm.lastParked.IsZero() {
		mm.sched.latency.Record(time.Since(mm.lastParked))
	}

	wasNew := gp.status.Load() == GNew
	gp.status.Store(GRunning)
	mm.curG = gp
	gp.p.Store(mm.curP)

	if wasNew {
		go gp.run(mm)
	} else {
		gp.resume <- struct{}{}
	}

	reason := <-gp.parked
	mm.lastParked = time.Now()

	switch reason {
	case reasonYield:
		gp.status.Store(GRunable)
		mm.curP.runqPut(mm.sched, gp)

	case reasonWait:
		target := gp.waitTarget
		gp.waitTarget = nil
		// gp.status is already GWaiting, set by Wait itself before parking;
		// addWaiter's own status check on target is what makes the dead/alive
		// race safe, so there is nothing left to set here on the success path.
		if !target.addWaiter(gp) {
			// target reached GDead between the fast-path check in Wait
			// and the scheduler observing it here: restore immediately.
			gp.status.Store(GRunable)
			mm.curP.runqPut(mm.sched, gp)
		}

	case reasonSemWait:
		sem := gp.semTarget
		gp.semTarget = nil
		sem.enqueueWaiter(gp)

	case reasonExit:
		// no extra action: markDead already ran in Exit or the wrapper.
	}

	mm.curG = nil
}
