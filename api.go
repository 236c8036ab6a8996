package coro

// EntryFunc is a coroutine's entry point. self is the coroutine's own
// handle, passed explicitly so Yield/Wait/Exit can be called as methods on
// it — the idiomatic Go substitute for the source's implicit
// thread-local "current coroutine" (see DESIGN.md).
type EntryFunc func(self *G, arg any)

// Start allocates a coroutine and enqueues it, returning its handle.
// Mirrors start(name, fn, arg) → G*.
func Start(name string, fn EntryFunc, arg any) *G {
	sched := currentScheduler()
	assert(sched != nil, "Start called before Init")

	gp := newG(sched.nextCoroutineID(), name, fn, arg, sched.stackSize)
	sched.runqPut(gp)
	logThrottled("start", "coroutine created", map[string]any{"id": gp.id, "name": gp.name})
	return &G{g: gp}
}

// Yield cooperatively yields the calling coroutine. If called on the main
// coroutine surrogate, it is a silent no-op (the main coroutine is never
// scheduled).
func (h *G) Yield() {
	gp := h.g
	if gp.isMain {
		return
	}
	gp.checkCanary()
	gp.status.Store(GRunable)
	gp.parkAndWait(reasonYield)
}

// Wait suspends the caller until target reaches GDead. If target is
// already dead, it returns immediately. The main coroutine surrogate
// blocks on target's dead channel instead of parking, since it is never
// scheduled (see SPEC_FULL.md §9: this replaces the source's busy poll
// with the suggested condition-variable-style wake).
func (h *G) Wait(target *G) {
	assert(target != nil, "Wait: target is nil")
	self := h.g
	tg := target.g

	if tg.status.Load() == GDead {
		return
	}
	if self.isMain {
		<-tg.dead
		return
	}

	self.waitTarget = tg
	self.status.Store(GWaiting)
	self.parkAndWait(reasonWait)
}

// Exit terminates the calling coroutine. It never returns: control
// unwinds back to the wrapper launched in switch.go via a sentinel panic,
// the Go substitute for a non-local jump out of arbitrary call depth. On
// the main coroutine surrogate it is a silent no-op.
func (h *G) Exit() {
	gp := h.g
	if gp.isMain {
		return
	}
	currentScheduler().markDead(gp)
	panic(exitSignal{})
}

// Free releases a dead coroutine's resources. It fatals if g is live or is
// the main coroutine.
func Free(g *G) {
	currentScheduler().free(g.g)
}
