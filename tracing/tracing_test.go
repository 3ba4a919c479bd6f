package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fimoengine/fimo-std/ferr"
)

// recordingSubscriber counts SpanPush/SpanPop/EventEmit calls so tests can
// assert exactly how many notifications a level-gated operation produced.
type recordingSubscriber struct {
	spanPush, spanPop, spanDrop, eventEmit int
	failPush                               bool
}

func (r *recordingSubscriber) CreateStack() (any, error)  { return new(int), nil }
func (r *recordingSubscriber) DropStack(any)              {}
func (r *recordingSubscriber) DestroyStack(any)           {}
func (r *recordingSubscriber) Suspend(any, bool)          {}
func (r *recordingSubscriber) Resume(any)                 {}
func (r *recordingSubscriber) Unblock(any)                {}
func (r *recordingSubscriber) Flush()                     {}
func (r *recordingSubscriber) Destroy()                   {}

func (r *recordingSubscriber) SpanPush(any, *Desc, string) error {
	r.spanPush++
	if r.failPush {
		return errors.New("push failed")
	}

	return nil
}

func (r *recordingSubscriber) SpanDrop(any, *Desc) { r.spanDrop++ }
func (r *recordingSubscriber) SpanPop(any, *Desc)  { r.spanPop++ }

func (r *recordingSubscriber) EventEmit(any, *Desc, string) error {
	r.eventEmit++

	return nil
}

func TestEventEmit_LevelGatedEventIsDropped(t *testing.T) {
	sub := &recordingSubscriber{}
	tracer := NewTracer(Config{MaxLevel: LevelInfo, Subscribers: []Subscriber{sub}})

	th, err := tracer.RegisterThread()
	require.NoError(t, err)

	cs := th.Active()

	spanDesc := &Desc{Name: "outer", Level: LevelInfo}
	frame, err := cs.SpanCreate(spanDesc, "entering outer")
	require.NoError(t, err)
	assert.Equal(t, 1, sub.spanPush)

	eventDesc := &Desc{Name: "noisy", Level: LevelDebug}
	require.NoError(t, cs.EventEmit(eventDesc, "should be dropped"))
	assert.Equal(t, 0, sub.eventEmit, "debug event must be dropped under an info-capped stack")

	require.NoError(t, cs.SpanDestroy(frame))
	assert.Equal(t, 1, sub.spanPop)
	assert.Equal(t, 0, sub.spanDrop)
}

func TestSpanCreate_PushFailureUnwindsInReverseOrder(t *testing.T) {
	var order []int
	first := &recordingSubscriber{}
	second := &orderRecordingSubscriber{id: 2, order: &order}
	third := &orderRecordingSubscriber{id: 3, order: &order, failPush: true}

	tracer := NewTracer(Config{MaxLevel: LevelTrace, Subscribers: []Subscriber{first, second, third}})
	th, err := tracer.RegisterThread()
	require.NoError(t, err)

	cs := th.Active()
	_, err = cs.SpanCreate(&Desc{Name: "span", Level: LevelInfo}, "hello")
	require.Error(t, err)
	assert.Equal(t, 1, first.spanPush)
	assert.Nil(t, cs.top, "no frame should be linked on a failed span create")
	// second was notified (push), third's push was attempted and failed,
	// then second was unwound (drop); third's failing push never produced
	// a drop.
	assert.Equal(t, []int{2, 3, 2}, order)
}

type orderRecordingSubscriber struct {
	id       int
	order    *[]int
	failPush bool
}

func (o *orderRecordingSubscriber) CreateStack() (any, error) { return new(int), nil }
func (o *orderRecordingSubscriber) DropStack(any)              {}
func (o *orderRecordingSubscriber) DestroyStack(any)           {}
func (o *orderRecordingSubscriber) Suspend(any, bool)          {}
func (o *orderRecordingSubscriber) Resume(any)                 {}
func (o *orderRecordingSubscriber) Unblock(any)                {}
func (o *orderRecordingSubscriber) Flush()                     {}
func (o *orderRecordingSubscriber) Destroy()                   {}

func (o *orderRecordingSubscriber) SpanPush(any, *Desc, string) error {
	*o.order = append(*o.order, o.id)
	if o.failPush {
		return errors.New("push failed")
	}

	return nil
}

func (o *orderRecordingSubscriber) SpanDrop(any, *Desc) { *o.order = append(*o.order, o.id) }
func (o *orderRecordingSubscriber) SpanPop(any, *Desc)  {}
func (o *orderRecordingSubscriber) EventEmit(any, *Desc, string) error { return nil }

func TestThreadSwitch_SuspendFromOriginalThreadFailsAfterMove(t *testing.T) {
	tracer := NewTracer(Config{MaxLevel: LevelInfo, Subscribers: []Subscriber{NullSubscriber{}}})

	t1, err := tracer.RegisterThread()
	require.NoError(t, err)
	t2, err := tracer.RegisterThread()
	require.NoError(t, err)

	shared, err := tracer.NewCallStack()
	require.NoError(t, err) // fresh-unbound-suspended

	// Bind shared onto t1, releasing t1's original stack.
	originalT1 := t1.Active()
	require.NoError(t, t1.Switch(shared))
	assert.True(t, shared.isBound())
	assert.False(t, originalT1.isBound())

	// Move shared off of t1 by switching t1 back onto a fresh stack, then
	// rebind the now-unbound shared stack onto t2.
	reboundT1, err := tracer.NewCallStack()
	require.NoError(t, err)
	require.NoError(t, t1.Switch(reboundT1))
	assert.False(t, shared.isBound())

	require.NoError(t, t2.Switch(shared))
	assert.True(t, shared.isBound())

	// t1's original stack was unbound by the first Switch and is bound to
	// no thread: suspending it through that stale reference must fail,
	// since Suspend requires bound-active.
	err = originalT1.Suspend(false)
	require.Error(t, err)
}

func TestSuspendedStack_RejectsSpansAndEvents(t *testing.T) {
	tracer := NewTracer(Config{MaxLevel: LevelTrace, Subscribers: []Subscriber{NullSubscriber{}}})
	th, err := tracer.RegisterThread()
	require.NoError(t, err)
	cs := th.Active()

	frame, err := cs.SpanCreate(&Desc{Name: "open", Level: LevelInfo}, "open")
	require.NoError(t, err)

	require.NoError(t, cs.Suspend(false))

	_, err = cs.SpanCreate(&Desc{Name: "nested", Level: LevelInfo}, "nested")
	assert.ErrorIs(t, err, ferr.ErrPermission)
	assert.ErrorIs(t, cs.EventEmit(&Desc{Name: "ev", Level: LevelError}, "ev"), ferr.ErrPermission)
	assert.ErrorIs(t, cs.SpanDestroy(frame), ferr.ErrPermission)

	require.NoError(t, cs.Resume())
	require.NoError(t, cs.SpanDestroy(frame))
	require.NoError(t, th.Unregister())
}

func TestUnblock_TransitionsAndPreconditions(t *testing.T) {
	tracer := NewTracer(Config{MaxLevel: LevelInfo, Subscribers: []Subscriber{NullSubscriber{}}})

	cs, err := tracer.NewCallStack()
	require.NoError(t, err)

	// Fresh-unbound-suspended is not blocked: Unblock must refuse.
	assert.ErrorIs(t, cs.Unblock(), ferr.ErrPermission)

	// Bind it (a switched-onto stack arrives bound-suspended), activate,
	// suspend with BLOCKED, then unbind via a switch away.
	th, err := tracer.RegisterThread()
	require.NoError(t, err)
	require.NoError(t, th.Switch(cs))
	require.NoError(t, cs.Resume())
	require.NoError(t, cs.Suspend(true))

	replacement, err := tracer.NewCallStack()
	require.NoError(t, err)
	require.NoError(t, th.Switch(replacement))

	assert.True(t, cs.isBlocked())
	require.NoError(t, cs.Unblock())
	assert.False(t, cs.isBlocked())

	require.NoError(t, cs.Destroy())
}

func TestUnregister_FailsWithOpenSpans(t *testing.T) {
	tracer := NewTracer(Config{MaxLevel: LevelTrace, Subscribers: []Subscriber{NullSubscriber{}}})
	th, err := tracer.RegisterThread()
	require.NoError(t, err)
	assert.Equal(t, int32(1), tracer.ThreadCount())

	cs := th.Active()
	frame, err := cs.SpanCreate(&Desc{Name: "open", Level: LevelInfo}, "open")
	require.NoError(t, err)

	assert.ErrorIs(t, th.Unregister(), ferr.ErrPermission)
	assert.Equal(t, int32(1), tracer.ThreadCount(), "a failed unregister leaves the thread counted")

	require.NoError(t, cs.SpanDestroy(frame))
	require.NoError(t, th.Unregister())
	assert.Equal(t, int32(0), tracer.ThreadCount())
}

func TestIsEnabled(t *testing.T) {
	assert.False(t, NewTracer(Config{MaxLevel: LevelOff, Subscribers: []Subscriber{NullSubscriber{}}}).IsEnabled())
	assert.False(t, NewTracer(Config{MaxLevel: LevelInfo}).IsEnabled())
	assert.True(t, NewTracer(Config{MaxLevel: LevelInfo, Subscribers: []Subscriber{NullSubscriber{}}}).IsEnabled())
}

func TestSpanCreate_NarrowsLevelCapForNestedEvents(t *testing.T) {
	sub := &recordingSubscriber{}
	tracer := NewTracer(Config{MaxLevel: LevelTrace, Subscribers: []Subscriber{sub}})
	th, err := tracer.RegisterThread()
	require.NoError(t, err)
	cs := th.Active()

	outer, err := cs.SpanCreate(&Desc{Name: "outer", Level: LevelWarn}, "outer")
	require.NoError(t, err)

	// The warn-level span narrowed the cap: an info event is now dropped.
	require.NoError(t, cs.EventEmit(&Desc{Name: "info-ev", Level: LevelInfo}, "dropped"))
	assert.Equal(t, 0, sub.eventEmit)

	require.NoError(t, cs.EventEmit(&Desc{Name: "warn-ev", Level: LevelWarn}, "kept"))
	assert.Equal(t, 1, sub.eventEmit)

	require.NoError(t, cs.SpanDestroy(outer))

	// Cap restored to the configured max: the info event passes again.
	require.NoError(t, cs.EventEmit(&Desc{Name: "info-ev", Level: LevelInfo}, "kept now"))
	assert.Equal(t, 2, sub.eventEmit)

	require.NoError(t, th.Unregister())
}

func BenchmarkSpanPushPop(b *testing.B) {
	tracer := NewTracer(Config{MaxLevel: LevelTrace, Subscribers: []Subscriber{NullSubscriber{}}})
	th, err := tracer.RegisterThread()
	if err != nil {
		b.Fatal(err)
	}
	cs := th.Active()
	desc := &Desc{Name: "bench", Level: LevelInfo}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		frame, err := cs.SpanCreate(desc, "bench span")
		if err != nil {
			b.Fatal(err)
		}
		if err := cs.SpanDestroy(frame); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEventEmit(b *testing.B) {
	tracer := NewTracer(Config{MaxLevel: LevelTrace, Subscribers: []Subscriber{NullSubscriber{}}})
	th, err := tracer.RegisterThread()
	if err != nil {
		b.Fatal(err)
	}
	cs := th.Active()
	desc := &Desc{Name: "bench", Level: LevelInfo}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := cs.EventEmit(desc, "bench event"); err != nil {
			b.Fatal(err)
		}
	}
}
