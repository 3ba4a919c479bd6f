package tracing

import (
	"sync"

	hclog "github.com/hashicorp/go-hclog"
)

// hclogStackHandle is the per-call-stack state an HCLogSubscriber attaches:
// a child logger named "stack" carrying a per-stack "stack_id" field, and a
// depth counter used purely to indent nested span names for readability.
type hclogStackHandle struct {
	logger hclog.Logger
	depth  int
}

// HCLogSubscriber adapts the tracing pipeline onto a hashicorp/go-hclog
// logger: spans become paired "enter"/"exit" log lines at the span's own
// level, and events become a single log line at the event's level.
type HCLogSubscriber struct {
	mu     sync.Mutex
	base   hclog.Logger
	nextID int
}

var _ Subscriber = (*HCLogSubscriber)(nil)

// NewHCLogSubscriber wraps base, an already-configured hclog.Logger, as a
// tracing Subscriber.
func NewHCLogSubscriber(base hclog.Logger) *HCLogSubscriber {
	return &HCLogSubscriber{base: base}
}

func (h *HCLogSubscriber) CreateStack() (any, error) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.mu.Unlock()

	return &hclogStackHandle{logger: h.base.Named("stack").With("stack_id", id)}, nil
}

func (h *HCLogSubscriber) DropStack(any)    {}
func (h *HCLogSubscriber) DestroyStack(any) {}

func (h *HCLogSubscriber) Suspend(handle any, blocked bool) {
	handle.(*hclogStackHandle).logger.Trace("suspend", "blocked", blocked)
}

func (h *HCLogSubscriber) Resume(handle any) {
	handle.(*hclogStackHandle).logger.Trace("resume")
}

func (h *HCLogSubscriber) Unblock(handle any) {
	handle.(*hclogStackHandle).logger.Trace("unblock")
}

func (h *HCLogSubscriber) SpanPush(handle any, desc *Desc, message string) error {
	hs := handle.(*hclogStackHandle)
	hs.logger.Log(desc.Level.hclogLevel(), "span enter: "+desc.Name, "target", desc.Target, "depth", hs.depth, "msg", message)
	hs.depth++

	return nil
}

func (h *HCLogSubscriber) SpanDrop(handle any, desc *Desc) {
	hs := handle.(*hclogStackHandle)
	if hs.depth > 0 {
		hs.depth--
	}
	hs.logger.Log(desc.Level.hclogLevel(), "span dropped: "+desc.Name, "target", desc.Target)
}

func (h *HCLogSubscriber) SpanPop(handle any, desc *Desc) {
	hs := handle.(*hclogStackHandle)
	if hs.depth > 0 {
		hs.depth--
	}
	hs.logger.Log(desc.Level.hclogLevel(), "span exit: "+desc.Name, "target", desc.Target, "depth", hs.depth)
}

func (h *HCLogSubscriber) EventEmit(handle any, desc *Desc, message string) error {
	hs := handle.(*hclogStackHandle)
	hs.logger.Log(desc.Level.hclogLevel(), desc.Name, "target", desc.Target, "depth", hs.depth, "msg", message)

	return nil
}

func (h *HCLogSubscriber) Flush() {}

func (h *HCLogSubscriber) Destroy() {}
