package tracing

import (
	"sync/atomic"
)

// Bits of a CallStack's atomic state word.
const (
	stateBound     uint32 = 1 << 0
	stateSuspended uint32 = 1 << 1
	stateBlocked   uint32 = 1 << 2
	stateLocked    uint32 = 1 << 3
)

// Frame is one entry of a call stack's span list: the descriptor of the
// span that pushed it, the cursor/level-cap it must restore on pop, and its
// link to the enclosing frame.
type Frame struct {
	desc           *Desc
	parentCursor   int
	parentLevelCap Level
	parent         *Frame
}

// CallStack is a per-subscriber-fanned-out tracing stack: a scratch
// formatting buffer, a cursor into it, a current maximum-level cap, a
// linked list of open spans, and the atomic state word gating which
// operations are currently legal.
//
// The state word's four bits are the state* constants above; it is written
// only by the state-machine operations in this file and by
// Tracer.RegisterThread, Thread.Switch and Thread.Unregister.
type CallStack struct {
	tracer *Tracer

	state atomic.Uint32

	handles []any // one per subscriber, in subscriber order

	buf      []byte
	cursor   int
	levelCap Level

	top *Frame
}

func newCallStack(t *Tracer) (*CallStack, error) {
	cs := &CallStack{
		tracer:   t,
		buf:      make([]byte, t.bufferSize),
		levelCap: t.maxLevel,
	}
	cs.state.Store(stateSuspended) // fresh-unbound-suspended

	handles := make([]any, len(t.subscribers))
	for i, sub := range t.subscribers {
		h, err := sub.CreateStack()
		if err != nil {
			for j := 0; j < i; j++ {
				t.subscribers[j].DropStack(handles[j])
			}

			return nil, err
		}
		handles[i] = h
	}
	cs.handles = handles

	return cs, nil
}

func (cs *CallStack) isBound() bool     { return cs.state.Load()&stateBound != 0 }
func (cs *CallStack) isSuspended() bool { return cs.state.Load()&stateSuspended != 0 }
func (cs *CallStack) isBlocked() bool   { return cs.state.Load()&stateBlocked != 0 }

// lock spins on the LOCKED bit, serialising switch/unblock against each
// other on this stack. The bit must never be held across a subscriber
// callback.
func (cs *CallStack) lock() {
	for {
		s := cs.state.Load()
		if s&stateLocked == 0 && cs.state.CompareAndSwap(s, s|stateLocked) {
			return
		}
	}
}

func (cs *CallStack) unlock() {
	for {
		s := cs.state.Load()
		if cs.state.CompareAndSwap(s, s&^stateLocked) {
			return
		}
	}
}

// Suspend moves the stack from bound-active to bound-suspended, optionally
// setting BLOCKED, and notifies every subscriber. Returns
// ferr.ErrPermission if the stack is not currently bound-active.
func (cs *CallStack) Suspend(block bool) error {
	want := stateBound | stateSuspended
	if block {
		want |= stateBlocked
	}
	if !cs.state.CompareAndSwap(stateBound, want) {
		return permissionf("Suspend", "stack is not bound-active")
	}
	for i, sub := range cs.tracer.subscribers {
		sub.Suspend(cs.handles[i], block)
	}

	return nil
}

// Resume moves the stack from bound-suspended (not blocked) to
// bound-active and notifies every subscriber.
func (cs *CallStack) Resume() error {
	if !cs.state.CompareAndSwap(stateBound|stateSuspended, stateBound) {
		return permissionf("Resume", "stack is not bound-suspended")
	}
	for i, sub := range cs.tracer.subscribers {
		sub.Resume(cs.handles[i])
	}

	return nil
}

// Unblock moves the stack from unbound-suspended-blocked to
// unbound-suspended, serialised against Switch by the LOCKED bit. The bit
// is released before subscribers are notified.
func (cs *CallStack) Unblock() error {
	cs.lock()
	s := cs.state.Load() &^ stateLocked
	if s != stateSuspended|stateBlocked {
		cs.unlock()

		return permissionf("Unblock", "stack is not unbound-suspended-blocked")
	}
	cs.state.Store(stateSuspended) // also clears LOCKED

	for i, sub := range cs.tracer.subscribers {
		sub.Unblock(cs.handles[i])
	}

	return nil
}

// Destroy releases the stack's per-subscriber handles. Permitted only when
// the stack is unbound, not blocked, and its frame list is empty.
func (cs *CallStack) Destroy() error {
	if cs.isBound() || cs.isBlocked() || cs.top != nil {
		return permissionf("Destroy", "stack is still bound, blocked, or has open spans")
	}
	for i, sub := range cs.tracer.subscribers {
		sub.DestroyStack(cs.handles[i])
	}

	return nil
}
