package tracing

import "sync/atomic"

// DefaultBufferSize is the default per-call-stack scratch formatting buffer
// size, in bytes.
const DefaultBufferSize = 1024

// Config configures a Tracer at creation time.
type Config struct {
	MaxLevel    Level
	Subscribers []Subscriber
	// BufferSize is the per-call-stack scratch buffer size; zero selects
	// DefaultBufferSize.
	BufferSize int
}

// Tracer owns the tracing subsystem's configuration and the process-wide
// registered-thread count. It is created once per Context and is immutable
// after construction: the subscriber set never changes for its lifetime.
type Tracer struct {
	maxLevel    Level
	subscribers []Subscriber
	bufferSize  int

	threadCount atomic.Int32
}

// NewTracer constructs a Tracer from cfg.
func NewTracer(cfg Config) *Tracer {
	bufSize := cfg.BufferSize
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Tracer{
		maxLevel:    cfg.MaxLevel,
		subscribers: append([]Subscriber(nil), cfg.Subscribers...),
		bufferSize:  bufSize,
	}
}

// NewCallStack allocates a call stack in the fresh-unbound-suspended state,
// ready to be bound to a thread via Thread.Switch. Each subscriber's
// CreateStack hook runs in subscriber order; a failure unwinds the handles
// already created via DropStack and is returned.
func (t *Tracer) NewCallStack() (*CallStack, error) {
	return newCallStack(t)
}

// IsEnabled reports whether tracing is active: the configured max level is
// not Off and at least one subscriber is installed.
func (t *Tracer) IsEnabled() bool {
	return t.maxLevel != LevelOff && len(t.subscribers) > 0
}

// Flush iterates subscribers in order, invoking their Flush hook.
func (t *Tracer) Flush() {
	for _, sub := range t.subscribers {
		sub.Flush()
	}
}

// ThreadCount returns the number of currently registered threads.
func (t *Tracer) ThreadCount() int32 {
	return t.threadCount.Load()
}

// Shutdown destroys the tracer's subscribers. The caller must ensure every
// registered thread has already been unregistered (ThreadCount() == 0);
// context teardown treats a nonzero count as a programming error.
func (t *Tracer) Shutdown() {
	for _, sub := range t.subscribers {
		sub.Destroy()
	}
}
