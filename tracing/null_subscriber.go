package tracing

// NullSubscriber is a Subscriber that discards every notification. It is
// useful as a placeholder subscriber slot, or to measure the overhead of
// the call-stack machinery itself in isolation from any real sink.
type NullSubscriber struct{}

var _ Subscriber = NullSubscriber{}

func (NullSubscriber) CreateStack() (any, error) { return nil, nil }
func (NullSubscriber) DropStack(any)             {}
func (NullSubscriber) DestroyStack(any)          {}
func (NullSubscriber) Suspend(any, bool)         {}
func (NullSubscriber) Resume(any)                {}
func (NullSubscriber) Unblock(any)               {}
func (NullSubscriber) SpanPush(any, *Desc, string) error {
	return nil
}
func (NullSubscriber) SpanDrop(any, *Desc)             {}
func (NullSubscriber) SpanPop(any, *Desc)              {}
func (NullSubscriber) EventEmit(any, *Desc, string) error {
	return nil
}
func (NullSubscriber) Flush()  {}
func (NullSubscriber) Destroy() {}
