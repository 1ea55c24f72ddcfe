package book

// reentryGuard is the mutual-exclusion flag wrapping every state-mutating
// entry point that performs an external asset transfer. An asset
// implementation with callback hooks can re-enter the book before the outer
// call completes; the guard rejects the nested call with ErrReentrantCall and
// leaves the outer call untouched. It is a plain flag, not a lock: a nested
// call happens on the same goroutine, so blocking would deadlock.
type reentryGuard struct {
	entered bool
}

func (g *reentryGuard) enter() error {
	if g.entered {
		return ErrReentrantCall
	}
	g.entered = true
	return nil
}

func (g *reentryGuard) leave() {
	g.entered = false
}
