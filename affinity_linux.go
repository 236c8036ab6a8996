//go:build linux

package coro

import "golang.org/x/sys/unix"

// pinToCPU makes a best-effort attempt to pin the calling (already
// OS-thread-locked) M to a single CPU, strengthening the "N OS threads in
// parallel" property beyond what runtime.LockOSThread alone guarantees.
// Failure is silently ignored: affinity is a performance hint, never a
// correctness requirement, and containerized or restricted environments
// routinely reject it.
func pinToCPU(mID uint64) {
	var set unix.CPUSet
	set.Zero()
	set.Set(int(mID % uint64(len(set)*64)))
	_ = unix.SchedSetaffinity(0, &set)
}
