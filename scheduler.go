package coro

import (
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// scheduler is the process-global singleton: the fixed-length P array, the
// idle-P list, the global run queue, the M list, the dead-G list, the ID
// generators, and the stop flag. Exactly one exists per Init/Shutdown
// cycle; see lifecycle.go.
type scheduler struct {
	procs []*p

	idleMu   sync.Mutex
	idleHead *p
	nIdle    atomic.Int32

	global *globalQueue

	mMu sync.Mutex
	ms  []*m

	deadMu sync.Mutex
	dead   []*g

	nextGID   atomic.Uint64
	nextMID   atomic.Uint64
	coroCount atomic.Uint64
	stop      atomic.Bool

	n         int
	stackSize int
	idleSleep time.Duration
	schedLog  io.Writer

	start time.Time

	latency     latencyTracker
	completions *completionCounter

	mainG *g

	wg sync.WaitGroup
}

func newScheduler(c *config) *scheduler {
	s := &scheduler{
		n:           c.maxProcs,
		stackSize:   c.stackSize,
		idleSleep:   c.idleSleep,
		schedLog:    c.schedLog,
		start:       time.Now(),
		global:      newGlobalQueue(),
		completions: newCompletionCounter(10*time.Second, 100*time.Millisecond),
	}
	s.procs = make([]*p, c.maxProcs)
	for i := range s.procs {
		s.procs[i] = newP(i)
	}
	s.mainG = &g{
		id:     0,
		name:   "main",
		status: newGState(GRunning),
		dead:   make(chan struct{}),
		isMain: true,
	}
	return s
}

// putIdle returns pp to the idle list, guarded by idleMu as specified.
func (s *scheduler) putIdle(pp *p) {
	s.idleMu.Lock()
	pp.setStatus(PIdle)
	pp.boundM.Store(nil)
	pp.idleNext = s.idleHead
	s.idleHead = pp
	s.idleMu.Unlock()
	s.nIdle.Add(1)
}

// getIdle pops one P from the idle list, or returns nil if none are idle.
// A P is either in the idle list or bound to an M, never both.
func (s *scheduler) getIdle() *p {
	s.idleMu.Lock()
	defer s.idleMu.Unlock()
	pp := s.idleHead
	if pp == nil {
		return nil
	}
	s.idleHead = pp.idleNext
	pp.idleNext = nil
	s.nIdle.Add(-1)
	return pp
}

// runqPut is the standard enqueue path used by the scheduler itself
// (releasing waiters, draining a semaphore) when no specific P is the
// natural target: it places gp on a pseudo-randomly chosen P's local
// queue, falling back to the global queue on overflow, per §4.2.
func (s *scheduler) runqPut(gp *g) {
	pp := s.procs[rand.Intn(len(s.procs))]
	pp.runqPut(s, gp)
}

// findRunnable implements §4.3's four-step policy for pp.
func (s *scheduler) findRunnable(pp *p) *g {
	tick := pp.schedTick.Add(1)

	// Step 1: periodic global-queue fairness check.
	if tick%schedCheckInterval == 0 && pp.runq.len() < localQueueCap {
		if gp := s.global.getBatch(1, s.n, &pp.runq); gp != nil {
			return gp
		}
	}

	// Step 2: local queue.
	if gp := pp.runq.get(); gp != nil {
		return gp
	}

	// Step 3: global queue, automatic batch sizing.
	if gp := s.global.getBatch(0, s.n, &pp.runq); gp != nil {
		return gp
	}

	// Step 4: work stealing.
	if gp := s.steal(pp); gp != nil {
		pp.stealCount.Add(1)
		return gp
	}

	return nil
}

// steal iterates up to stealTries randomized permutations of all other
// P's, try-locking each RUNNING victim's queue in turn.
func (s *scheduler) steal(thief *p) *g {
	others := make([]*p, 0, len(s.procs)-1)
	for _, pp := range s.procs {
		if pp != thief {
			others = append(others, pp)
		}
	}
	if len(others) == 0 {
		return nil
	}

	for try := 0; try < stealTries; try++ {
		perm := rand.Perm(len(others))
		for _, idx := range perm {
			victim := others[idx]
			if victim.getStatus() != PRunning {
				continue
			}
			stolen := victim.runq.trySteal()
			if len(stolen) == 0 {
				continue
			}
			first := stolen[0]
			if rest := stolen[1:]; len(rest) > 0 {
				thief.runq.putBatch(rest)
			}
			return first
		}
	}
	logThrottled("steal_miss", "no stealable work found this round", map[string]any{"p": thief.id})
	return nil
}

// markDead performs §4.5 steps 2-4: transition to GDead, append to the
// dead list, and release every waiter, enqueuing each as RUNABLE.
func (s *scheduler) markDead(gp *g) {
	gp.checkCanary()
	gp.status.Store(GDead)
	close(gp.dead)

	s.deadMu.Lock()
	s.dead = append(s.dead, gp)
	s.deadMu.Unlock()

	for _, w := range gp.releaseWaiters() {
		w.status.Store(GRunable)
		s.runqPut(w)
	}
	s.completions.Increment()
	s.global.broadcastWake()
}

// free implements the public Free contract: remove from the dead list
// under the mutex, releasing the stack buffer. It fatals if gp is not on
// the dead list (live G's and the main G must never be freed).
func (s *scheduler) free(gp *g) {
	assert(!gp.isMain, "Free called on the main coroutine")

	s.deadMu.Lock()
	defer s.deadMu.Unlock()
	for i, d := range s.dead {
		if d == gp {
			s.dead = append(s.dead[:i], s.dead[i+1:]...)
			gp.stack = nil
			return
		}
	}
	fatalf("Free called on G %d (%s) which is not on the dead list", gp.id, gp.name)
}

func (s *scheduler) nextCoroutineID() uint64 {
	s.coroCount.Add(1)
	return s.nextGID.Add(1)
}

// snapshot builds the Stats value backing both Stats() and the
// CO_SCHED_LOG dump.
func (s *scheduler) snapshot() Stats {
	st := Stats{
		ElapsedMS:            time.Since(s.start).Milliseconds(),
		TotalP:               len(s.procs),
		TotalCoroutines:      s.coroCount.Load(),
		GlobalRunqSize:       s.global.len(),
		GlobalEnqueued:       s.global.enqueuedCount(),
		Procs:                make([]ProcStats, len(s.procs)),
		SwitchLatency:        s.latency.Snapshot(),
		CompletionsPerSecond: s.completions.Rate(),
	}
	for i, pp := range s.procs {
		st.Procs[i] = ProcStats{
			ID:         pp.id,
			RunqSize:   pp.runq.len(),
			SchedTicks: pp.schedTick.Load(),
			StealCount: pp.stealCount.Load(),
		}
	}
	return st
}

func (q *globalQueue) enqueuedCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enqueued
}
