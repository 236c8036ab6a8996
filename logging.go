package coro

import (
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// activeLogger holds the structured logger installed by Init, or a
// bootstrap default before Init has run. Package-level API functions
// (Start, Yield, fatalf, ...) read it through this indirection rather than
// threading a logger argument through every call, matching the way the
// coroutine core treats the scheduler itself as a process-global
// singleton.
var activeLogger atomic.Pointer[logiface.Logger[*stumpy.Event]]

func init() {
	activeLogger.Store(logiface.New[*stumpy.Event](stumpy.L.WithStumpy()))
}

// logDiagnosticLimiter throttles high-frequency, low-value diagnostic
// events (coroutine creation, failed steal rounds) so a busy scheduler
// under contention does not flood stderr with millions of near-identical
// lines. Categories are per-event-kind, not per-P, so the limit is a
// global rate per kind of noise.
var logDiagnosticLimiter = catrate.NewLimiter(map[time.Duration]int{
	time.Second: 5,
})

func logger() *logiface.Logger[*stumpy.Event] {
	return activeLogger.Load()
}

func logFatal(err error) {
	logger().Emerg().Err(err).Log("fatal scheduler invariant violated")
}

func logConfigError(err *ConfigError) {
	logger().Err().Str("message", err.Message).Log("scheduler configuration rejected")
}

func logLifecycle(event string, fields map[string]any) {
	b := logger().Info()
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(event)
}

// logThrottled emits a debug-level event at most a few times per second per
// category, via go-catrate's sliding-window limiter.
func logThrottled(category string, event string, fields map[string]any) {
	if _, ok := logDiagnosticLimiter.Allow(category); !ok {
		return
	}
	b := logger().Debug()
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(event)
}
