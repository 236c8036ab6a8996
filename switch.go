package coro

// switch.go realizes §4.1's two context-switch primitives without
// register-snapshot assembly: save-and-jump is a channel handshake from
// the G's own goroutine to its M (parkAndWait), and switch-to-fresh-stack
// is simply the one-time `go gp.run(mm)` launch of that goroutine (see
// SPEC_FULL.md's "Go realization" note under §4.1).

// exitSignal unwinds the G's call stack back to run's deferred recover,
// the Go substitute for the source's "exit never returns" non-local jump:
// Exit cannot use a bare return, since it may be called from arbitrary
// nesting depth inside the user function.
type exitSignal struct{}

// parkAndWait performs save-and-jump: it delivers reason (plus whatever
// transfer-slot fields the caller has already populated on gp) to the
// owning M, then blocks until that M sends on resume — the long-jump back
// into this saved context. On return, the stack canary is re-verified,
// matching "On resumption, check the canary and continue."
func (gp *g) parkAndWait(reason parkReason) {
	gp.parked <- reason
	<-gp.resume
	gp.checkCanary()
}

// run is the coroutine wrapper (§4.5): it is launched exactly once per G,
// the moment the scheduler fresh-stack-jumps into a G whose status is
// GNew. It sets RUNNING, calls the user function, and on return (or on
// recovering an explicit Exit) performs the dead-handling.
func (gp *g) run(mm *m) {
	defer func() {
		switch r := recover().(type) {
		case nil:
			// fell off the end of the user function: this is an implicit
			// exit, equivalent to calling Exit explicitly.
			mm.sched.markDead(gp)
		case exitSignal:
			// Exit() already performed markDead before panicking.
		default:
			panic(r)
		}
		gp.parked <- reasonExit
	}()

	gp.status.Store(GRunning)
	gp.entry(&G{g: gp}, gp.arg)
}
