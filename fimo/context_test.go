package fimo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fimoengine/fimo-std/module"
	"github.com/fimoengine/fimo-std/tracing"
)

func TestNewContext_RejectsUnknownInputTag(t *testing.T) {
	_, err := NewContext(unknownInput{})
	require.Error(t, err)
}

type unknownInput struct{}

func (unknownInput) inputTag() string { return "unknown" }

func TestNewContext_WithTracingConfig(t *testing.T) {
	ctx, err := NewContext(TracingCreationConfig{Config: tracing.Config{
		MaxLevel:    tracing.LevelInfo,
		Subscribers: []tracing.Subscriber{tracing.NullSubscriber{}},
	}})
	require.NoError(t, err)
	assert.True(t, ctx.Tracer().IsEnabled())

	ctx.Release()
}

func TestContext_CheckVersion(t *testing.T) {
	ctx, err := NewContext()
	require.NoError(t, err)
	defer ctx.Release()

	require.NoError(t, ctx.CheckVersion(module.Version{Major: VersionMajor, Minor: VersionMinor, Patch: 0}))
	require.Error(t, ctx.CheckVersion(module.Version{Major: VersionMajor + 1}))
}

func TestContext_AcquireReleaseRefcounting(t *testing.T) {
	ctx, err := NewContext()
	require.NoError(t, err)

	ctx.Acquire()
	ctx.Release() // still one strong ref held below
	ctx.Release() // last release, should not panic: no modules, no threads
}

func TestContext_ReleasePanicsWithModulesStillLoaded(t *testing.T) {
	ctx, err := NewContext()
	require.NoError(t, err)

	_, err = ctx.Registry().NewPseudoModule("still-loaded")
	require.NoError(t, err)

	assert.Panics(t, func() { ctx.Release() })
}

func TestContext_ReleasePanicsWithThreadsStillRegistered(t *testing.T) {
	ctx, err := NewContext(TracingCreationConfig{Config: tracing.Config{
		MaxLevel:    tracing.LevelInfo,
		Subscribers: []tracing.Subscriber{tracing.NullSubscriber{}},
	}})
	require.NoError(t, err)

	_, err = ctx.Tracer().RegisterThread()
	require.NoError(t, err)

	assert.Panics(t, func() { ctx.Release() })
}

// ExampleNewContext wires a context with tracing enabled, loads one module
// through a loading set, and tears everything down in reverse order.
func ExampleNewContext() {
	ctx, err := NewContext(TracingCreationConfig{Config: tracing.Config{
		MaxLevel:    tracing.LevelInfo,
		Subscribers: []tracing.Subscriber{tracing.NullSubscriber{}},
	}})
	if err != nil {
		panic(err)
	}

	set := ctx.Registry().NewLoadingSet()
	err = set.AppendFreestandingModule(nil, module.Manifest{
		Name:    "greeter",
		Exports: []module.ExportDecl{{Key: module.SymbolKey{Name: "greet"}, Version: module.Version{Major: 1}, Ptr: "hello"}},
	})
	if err != nil {
		panic(err)
	}
	infos, err := set.Finish(ctx)
	if err != nil {
		panic(err)
	}

	host, err := ctx.Registry().NewPseudoModule("host")
	if err != nil {
		panic(err)
	}
	if err := ctx.Registry().AcquireDependency(host, infos[0]); err != nil {
		panic(err)
	}
	ptr, err := ctx.Registry().LoadSymbol(host, "greet", "", module.Version{Major: 1})
	if err != nil {
		panic(err)
	}
	fmt.Println(ptr)

	if err := ctx.Registry().RelinquishDependency(host, infos[0]); err != nil {
		panic(err)
	}
	if err := ctx.Registry().DestroyPseudoModule(host); err != nil {
		panic(err)
	}
	if err := ctx.Registry().Unload(infos[0]); err != nil {
		panic(err)
	}
	ctx.Release()
	// Output: hello
}
