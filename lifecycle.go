package coro

import (
	"fmt"
	"sync/atomic"
)

// activeScheduler is the process-global singleton pointer, populated by
// Init and cleared by Shutdown. Go has no portable load-time constructor
// hook equivalent to the source's __attribute__((constructor)); per
// SPEC_FULL.md's DESIGN NOTES this implementation exposes the preferred
// explicit Init/Shutdown pair instead.
var activeScheduler atomic.Pointer[scheduler]

func currentScheduler() *scheduler { return activeScheduler.Load() }

// Runtime is the handle returned by Init, controlling the scheduler's
// shutdown and exposing statistics.
type Runtime struct {
	sched *scheduler
	// Main is the synthetic handle representing the goroutine that called
	// Init: the "main coroutine" special case in Yield/Wait, never placed
	// on any run queue.
	Main *G
}

// Init creates N processors and N worker threads, per COMAXPROCS, and
// installs the process-global scheduler. The calling goroutine becomes the
// main-coroutine surrogate for the lifetime of the returned Runtime.
//
// Init returns a *ConfigError (not a panic) for invalid configuration
// (COMAXPROCS <= 0), since this is the one fatal category a host program
// can plausibly act on before any coroutine has started.
func Init(opts ...SchedulerOption) (*Runtime, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		if ce, ok := err.(*ConfigError); ok {
			logConfigError(ce)
		}
		return nil, err
	}

	sched := newScheduler(cfg)
	activeLogger.Store(cfg.logger)

	if !activeScheduler.CompareAndSwap(nil, sched) {
		return nil, newConfigError(0, "Init called while a scheduler is already running")
	}

	for i := 0; i < sched.n; i++ {
		mm := newM(sched.nextMID.Add(1), sched)
		sched.mMu.Lock()
		sched.ms = append(sched.ms, mm)
		sched.mMu.Unlock()
		sched.wg.Add(1)
		go mm.mainLoop()
	}

	logLifecycle("scheduler initialized", map[string]any{"procs": sched.n, "stack_size": sched.stackSize})

	return &Runtime{sched: sched, Main: &G{g: sched.mainG}}, nil
}

// Shutdown sets the stop flag, wakes every idle M so it observes the flag
// promptly, joins all worker threads, and — if CO_SCHED_LOG or
// WithSchedulerLog requested it — writes the final human-readable
// scheduler dump.
func (rt *Runtime) Shutdown() {
	sched := rt.sched
	sched.stop.Store(true)
	sched.global.broadcastWake()
	sched.wg.Wait()

	if sched.schedLog != nil {
		dumpSchedulerLog(sched.schedLog, sched.snapshot())
	}

	activeScheduler.CompareAndSwap(sched, nil)
	logLifecycle("scheduler shut down", map[string]any{"elapsed_ms": fmt.Sprintf("%d", sched.snapshot().ElapsedMS)})
}

// Stats returns a point-in-time scheduler statistics snapshot.
func (rt *Runtime) Stats() Stats { return rt.sched.snapshot() }
