// Package coro implements a user-space M:N coroutine runtime: a
// work-stealing scheduler that multiplexes many lightweight, cooperatively
// scheduled coroutines (G) onto a fixed pool of OS threads (M), each bound
// to a logical processor (P) with a bounded local run queue.
//
// # Architecture
//
// Three entity kinds, connected through run queues:
//
//   - G (coroutine): a unit of cooperative execution, represented here by
//     a dedicated, parked-by-default goroutine plus a fixed-size stack
//     accounting buffer carrying an overflow canary.
//   - P (processor): owns a bounded local run queue (capacity 8) and is
//     bound to at most one M at a time.
//   - M (OS-thread worker): runs the scheduler loop, acquires an idle P,
//     and dispatches G's onto it one at a time.
//
// Coroutines suspend only at explicit calls to [G.Yield], [G.Wait], or the
// slow path of [G.SemWait]; there is no preemption.
//
// # Usage
//
//	rt, err := coro.Init(coro.WithMaxProcs(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Shutdown()
//
//	g := coro.Start("worker", func(self *coro.G, arg any) {
//	    self.Yield()
//	}, nil)
//	rt.Main.Wait(g)
//	coro.Free(g)
//
// A coroutine's entry function receives its own handle as its first
// argument, rather than relying on an implicit per-thread "current
// coroutine": [G.Yield], [G.Wait], [G.Exit], and [G.SemWait] are methods on
// that handle.
//
// # Synchronization primitives
//
// [G.Wait] suspends the calling coroutine until a target coroutine reaches
// [GDead]. [Semaphore] provides a counting semaphore with [SemInit],
// [G.SemWait], and [SemPost], suitable for bounded producer/consumer
// patterns.
//
// # Configuration
//
// COMAXPROCS (environment variable, positive integer, default 4) and
// CO_SCHED_LOG (environment variable; any non-empty value enables a final
// human-readable scheduler dump on [Runtime.Shutdown]) are read as
// defaults by [Init]; both can be overridden with [WithMaxProcs] and
// [WithSchedulerLog].
package coro
