//go:build !linux

package coro

// pinToCPU is a no-op on platforms without sched_setaffinity; see
// affinity_linux.go.
func pinToCPU(mID uint64) {}
