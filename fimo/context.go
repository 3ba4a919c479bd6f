package fimo

import (
	"fmt"
	"sync/atomic"

	"github.com/fimoengine/fimo-std/ferr"
	"github.com/fimoengine/fimo-std/module"
	"github.com/fimoengine/fimo-std/tracing"
)

// Context is the process-wide, reference-counted root: it owns the module
// registry and the tracing subsystem. There are no weak
// handles — a caller that wants a non-owning view takes a raw *Context and
// is trusted not to outlive the strong owner that will eventually call
// Release.
type Context struct {
	strong atomic.Int32

	registry *module.Registry
	tracer   *tracing.Tracer
}

// NewContext builds a Context from a list of tagged inputs. Only
// TracingCreationConfig is recognised today; any other TaggedInput fails
// with ferr.ErrInvalid. The returned Context starts with a strong count of
// one, held by the caller.
func NewContext(inputs ...TaggedInput) (*Context, error) {
	tracingCfg := tracing.Config{}

	for _, in := range inputs {
		switch v := in.(type) {
		case TracingCreationConfig:
			tracingCfg = v.Config
		default:
			return nil, fmt.Errorf("fimo: NewContext: unrecognised input tag %q: %w", in.inputTag(), ferr.ErrInvalid)
		}
	}

	registry, err := module.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("fimo: NewContext: %w", err)
	}

	ctx := &Context{
		registry: registry,
		tracer:   tracing.NewTracer(tracingCfg),
	}
	ctx.strong.Store(1)

	return ctx, nil
}

// Registry returns the Context's module registry.
func (c *Context) Registry() *module.Registry { return c.registry }

// Tracer returns the Context's tracing subsystem.
func (c *Context) Tracer() *tracing.Tracer { return c.tracer }

// CheckVersion compares this implementation's BuildInfo against required,
// returning ferr.ErrNotCompatible (wrapped) when incompatible.
func (c *Context) CheckVersion(required module.Version) error {
	return CheckVersion(required)
}

// Acquire increments the strong reference count and returns c, so callers
// can chain it the way they would a retained pointer.
func (c *Context) Acquire() *Context {
	c.strong.Add(1)

	return c
}

// Release decrements the strong reference count. The last release tears
// down the owned subsystems in reverse dependency order: the module
// registry first, then tracing. Tearing down the registry while modules
// remain loaded, or tracing while threads remain registered, is a
// programming error in the host and panics rather than silently leaking or
// corrupting state — both conditions are fully within the host's control
// to avoid (unload every module, unregister every thread, before the last
// Release).
func (c *Context) Release() {
	if c.strong.Add(-1) != 0 {
		return
	}

	if stats := c.registry.Stats(); stats.ModuleCount != 0 {
		panic(fmt.Sprintf("fimo: Context.Release: %d modules still loaded at context teardown", stats.ModuleCount))
	}
	if n := c.tracer.ThreadCount(); n != 0 {
		panic(fmt.Sprintf("fimo: Context.Release: %d threads still registered at context teardown", n))
	}
	c.tracer.Shutdown()
}
