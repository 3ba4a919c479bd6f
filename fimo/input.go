package fimo

import "github.com/fimoengine/fimo-std/tracing"

// TaggedInput is one entry of the list NewContext accepts. Each concrete
// input type advertises the tag NewContext dispatches on; an input whose
// tag NewContext does not recognise fails construction with
// ferr.ErrInvalid.
type TaggedInput interface {
	inputTag() string
}

const tagTracingCreationConfig = "tracing_creation_config"

// TracingCreationConfig is the one recognised TaggedInput today: it supplies
// the tracing.Config the Context's Tracer is built from. Omitting it entirely
// constructs a Tracer with tracing.Config's zero value (tracing disabled, no
// subscribers).
type TracingCreationConfig struct {
	tracing.Config
}

func (TracingCreationConfig) inputTag() string { return tagTracingCreationConfig }
