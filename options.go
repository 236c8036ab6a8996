package coro

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

const (
	// DefaultMaxProcs is COMAXPROCS's default when unset and not overridden.
	DefaultMaxProcs = 4
	// DefaultStackSize is the fixed per-coroutine stack accounting size.
	DefaultStackSize = 1024 * 1024
	// localQueueCap is P_CAP: the bounded local run queue capacity.
	localQueueCap = 8
	// schedCheckInterval is P_SCHED_CHECK_INTERVAL.
	schedCheckInterval = 61
	// stealTries is P_STEAL_TRIES.
	stealTries = 3
	// stackCanary is the fixed 64-bit sentinel written at the stack bottom.
	stackCanary = uint64(0xDEADBEEFCAFEBABE)
	// defaultIdleSleep bounds how long an M waits for a wake before retrying
	// find-runnable on its own; the condition-variable wake (see queue_global.go)
	// makes this a safety net rather than the primary mechanism.
	defaultIdleSleep = 10 * time.Millisecond
)

// config holds resolved scheduler configuration, produced by resolveConfig.
type config struct {
	maxProcs   int
	stackSize  int
	idleSleep  time.Duration
	schedLog   io.Writer
	logger     *logiface.Logger[*stumpy.Event]
}

// SchedulerOption configures the runtime at Init.
type SchedulerOption interface {
	applyScheduler(*config)
}

type schedulerOptionFunc struct {
	fn func(*config)
}

func (o *schedulerOptionFunc) applyScheduler(c *config) { o.fn(c) }

// WithMaxProcs overrides COMAXPROCS (must be positive; validated in Init).
func WithMaxProcs(n int) SchedulerOption {
	return &schedulerOptionFunc{fn: func(c *config) { c.maxProcs = n }}
}

// WithStackSize overrides the default per-coroutine stack accounting size
// (must be positive; validated in Init).
func WithStackSize(n int) SchedulerOption {
	return &schedulerOptionFunc{fn: func(c *config) { c.stackSize = n }}
}

// WithIdleSleep overrides the upper bound an idle M waits for a wake before
// retrying find-runnable on its own.
func WithIdleSleep(d time.Duration) SchedulerOption {
	return &schedulerOptionFunc{fn: func(c *config) { c.idleSleep = d }}
}

// WithSchedulerLog enables the final human-readable scheduler dump on
// Shutdown, writing it to w instead of the CO_SCHED_LOG-driven default of
// os.Stderr; when CO_SCHED_LOG is also set, the dump goes to w only.
func WithSchedulerLog(w io.Writer) SchedulerOption {
	return &schedulerOptionFunc{fn: func(c *config) { c.schedLog = w }}
}

// WithLogger installs a structured logger for lifecycle and fault events.
// If omitted, Init installs a default stumpy-backed logger writing to
// os.Stderr at Informational level.
func WithLogger(l *logiface.Logger[*stumpy.Event]) SchedulerOption {
	return &schedulerOptionFunc{fn: func(c *config) { c.logger = l }}
}

// resolveConfig applies defaults, then environment fallbacks, then explicit
// options, in that order, so that an explicit option always wins and an
// environment variable only ever supplies a default.
func resolveConfig(opts []SchedulerOption) (*config, error) {
	c := &config{
		maxProcs:  DefaultMaxProcs,
		stackSize: DefaultStackSize,
		idleSleep: defaultIdleSleep,
	}

	if v, ok := os.LookupEnv("COMAXPROCS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, newConfigError(1, "COMAXPROCS must be a positive integer, got %q", v)
		}
		c.maxProcs = n
	}
	if v, ok := os.LookupEnv("CO_SCHED_LOG"); ok && v != "" {
		c.schedLog = os.Stderr
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyScheduler(c)
	}

	if c.maxProcs <= 0 {
		return nil, newConfigError(1, "COMAXPROCS must be a positive integer, got %d", c.maxProcs)
	}
	if c.stackSize <= 0 {
		return nil, newConfigError(1, "stack size must be positive, got %d", c.stackSize)
	}

	if c.logger == nil {
		c.logger = logiface.New[*stumpy.Event](stumpy.L.WithStumpy())
	}

	return c, nil
}
