package coro

import "sync/atomic"

// GStatus is the status of a coroutine (G), per the state machine: NEW is
// initial, DEAD is terminal.
//
// Transitions:
//
//	GNew        → GRunning     [fresh-stack-jump into wrapper]
//	GRunning    → GRunable     [yield, or enqueued for another reason]
//	GRunning    → GWaiting     [wait on another live G]
//	GRunning    → GSemWaiting  [slow-path semaphore acquire]
//	GRunning    → GDead        [wrapper completion or explicit exit]
//	GRunable    → GRunning     [scheduler picks, resumes saved context]
//	GWaiting    → GRunable     [waited-for G exits, releases waiters]
//	GSemWaiting → GRunable     [a sem_post drains this waiter]
type GStatus uint32

const (
	GNew GStatus = iota
	GRunning
	GRunable
	GWaiting
	GSemWaiting
	GDead
)

func (s GStatus) String() string {
	switch s {
	case GNew:
		return "NEW"
	case GRunning:
		return "RUNNING"
	case GRunable:
		return "RUNABLE"
	case GWaiting:
		return "WAITING"
	case GSemWaiting:
		return "SEM_WAITING"
	case GDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// gState is a lock-free status word with cache-line padding, so that
// hammering one G's status never false-shares the cache line of an
// adjacent G's status in, e.g., a freshly allocated slice of G's.
type gState struct { // betteralign:ignore
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

func newGState(initial GStatus) *gState {
	s := &gState{}
	s.v.Store(uint32(initial))
	return s
}

func (s *gState) Load() GStatus { return GStatus(s.v.Load()) }

func (s *gState) Store(v GStatus) { s.v.Store(uint32(v)) }

// CompareAndSwap attempts the transition from → to, returning whether it
// took effect. Used wherever a transition's correctness depends on the
// prior state still holding (e.g., "only mark DEAD if still RUNNING").
func (s *gState) CompareAndSwap(from, to GStatus) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// PStatus is the status of a processor (P): IDLE, RUNNING (bound to an M),
// or DEAD. The scheduler never assigns DEAD: when an M stops at shutdown,
// its P goes back to IDLE.
type PStatus uint32

const (
	PIdle PStatus = iota
	PRunning
	PDead
)

func (s PStatus) String() string {
	switch s {
	case PIdle:
		return "IDLE"
	case PRunning:
		return "RUNNING"
	case PDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}
