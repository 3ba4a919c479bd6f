package tracing

// SpanCreate opens a new span on cs: it renders message into the scratch
// buffer, narrows the stack's level cap to the stricter of its current cap
// and desc.Level, links a new Frame onto cs.top to remember what to restore
// on SpanDestroy, and fans the push out to every subscriber in order.
//
// Permitted only when cs is bound-active. If a subscriber's SpanPush fails,
// every subscriber already notified is unwound via SpanDrop, in reverse
// notification order, before the error is returned; the frame is not linked
// and the cursor/level cap are left as they were on entry.
func (cs *CallStack) SpanCreate(desc *Desc, message string) (*Frame, error) {
	if !cs.isBound() || cs.isSuspended() {
		return nil, permissionf("SpanCreate", "stack is not bound-active")
	}

	savedCursor := cs.cursor
	savedLevelCap := cs.levelCap

	cs.cursor += copy(cs.buf[cs.cursor:], message)

	for i, sub := range cs.tracer.subscribers {
		if err := sub.SpanPush(cs.handles[i], desc, message); err != nil {
			for j := i - 1; j >= 0; j-- {
				cs.tracer.subscribers[j].SpanDrop(cs.handles[j], desc)
			}
			cs.cursor = savedCursor
			cs.levelCap = savedLevelCap

			return nil, err
		}
	}

	if desc.Level < cs.levelCap {
		cs.levelCap = desc.Level
	}

	frame := &Frame{
		desc:           desc,
		parentCursor:   savedCursor,
		parentLevelCap: savedLevelCap,
		parent:         cs.top,
	}
	cs.top = frame

	return frame, nil
}

// SpanDestroy closes frame, which must be the top frame of cs's open span
// list: it notifies every subscriber via SpanPop, restores the cursor and
// level cap captured when the span was created, and unlinks the frame.
// Permitted only when cs is bound-active.
func (cs *CallStack) SpanDestroy(frame *Frame) error {
	if !cs.isBound() || cs.isSuspended() {
		return permissionf("SpanDestroy", "stack is not bound-active")
	}
	if cs.top != frame {
		return permissionf("SpanDestroy", "frame is not the top of the active stack")
	}

	for i, sub := range cs.tracer.subscribers {
		sub.SpanPop(cs.handles[i], frame.desc)
	}

	cs.cursor = frame.parentCursor
	cs.levelCap = frame.parentLevelCap
	cs.top = frame.parent

	return nil
}

// EventEmit renders a one-shot event into the tail of cs's scratch buffer
// without advancing the cursor, and fans it out to every subscriber.
//
// Permitted only when cs is bound-active. Silently dropped (cs.levelCap)
// if desc.Level is more verbose than the stack's current cap — callers pay
// no rendering or subscriber-dispatch cost for a suppressed event. A
// subscriber's EventEmit failure does not stop delivery to the remaining
// subscribers; the first such error is returned to the caller and nothing
// is unwound: unlike a span, an event has no paired teardown to undo.
func (cs *CallStack) EventEmit(desc *Desc, message string) error {
	if !cs.isBound() || cs.isSuspended() {
		return permissionf("EventEmit", "stack is not bound-active")
	}
	if !desc.Level.allowedUnder(cs.levelCap) {
		return nil
	}

	copy(cs.buf[cs.cursor:], message)

	var firstErr error
	for i, sub := range cs.tracer.subscribers {
		if err := sub.EventEmit(cs.handles[i], desc, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
