package tracing

import "sync"

// Thread is the moral equivalent of a runtime-provided thread-local slot:
// it holds the one call stack currently "active" on behalf of whatever
// logical thread of execution the caller threads this handle through.
// A Thread must not be shared between goroutines running concurrently
// without external synchronization, mirroring the source's single-thread
// ownership of a TLS slot.
type Thread struct {
	tracer *Tracer

	mu     sync.Mutex
	active *CallStack
}

// RegisterThread allocates a fresh bound call stack and returns a Thread
// handle with it installed as the active stack.
func (t *Tracer) RegisterThread() (*Thread, error) {
	cs, err := newCallStack(t)
	if err != nil {
		return nil, err
	}
	cs.state.Store(stateBound) // bound-active: ready for span_create/event_emit

	t.threadCount.Add(1)

	return &Thread{tracer: t, active: cs}, nil
}

// Active returns the thread's currently bound call stack.
func (th *Thread) Active() *CallStack {
	th.mu.Lock()
	defer th.mu.Unlock()

	return th.active
}

// Unregister requires the active stack to have an empty frame list, then
// destroys it and decrements the tracer's registered-thread count.
func (th *Thread) Unregister() error {
	th.mu.Lock()
	defer th.mu.Unlock()

	cs := th.active
	cs.state.Store(cs.state.Load() &^ stateBound) // unbind before Destroy's precondition check
	if err := cs.Destroy(); err != nil {
		cs.state.Store(cs.state.Load() | stateBound) // restore: unregister failed, still bound

		return err
	}
	th.tracer.threadCount.Add(-1)
	th.active = nil

	return nil
}

// Switch moves new from unbound-suspended (not blocked) to bound, and
// clears BOUND on the thread's previously active stack, making new the
// thread's active stack. Fails with ferr.ErrPermission if new is not
// unbound-suspended-not-blocked.
func (th *Thread) Switch(newStack *CallStack) error {
	newStack.lock()
	defer newStack.unlock()

	s := newStack.state.Load() &^ stateLocked
	if s != stateSuspended {
		return permissionf("Switch", "target stack is not unbound-suspended")
	}
	newStack.state.Store(s | stateBound)

	th.mu.Lock()
	old := th.active
	th.active = newStack
	th.mu.Unlock()

	if old != nil {
		for {
			os := old.state.Load()
			if old.state.CompareAndSwap(os, os&^stateBound) {
				break
			}
		}
	}

	return nil
}
