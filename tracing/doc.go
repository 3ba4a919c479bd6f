// Package tracing implements the per-thread, call-stack-oriented
// structured-event pipeline: call stacks, stack frames, the call-stack
// state machine, and fan-out to an ordered set of subscribers.
//
// Go has no portable thread-local storage and goroutines are not OS
// threads, so "thread" binding here is represented explicitly: a Thread
// handle (obtained from Tracer.RegisterThread) is the moral equivalent of
// the thread-local slot the source associates with a call stack, and
// callers thread it through their own call graph the way they would a
// context.Context. The call-stack state machine (see CallStack) is the
// contract that binding must honor, not any particular storage mechanism.
package tracing
