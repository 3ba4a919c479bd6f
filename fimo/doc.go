// Package fimo is the root of the plugin/module framework: it owns a
// module.Registry and a tracing.Tracer behind a single refcounted Context,
// and exposes the one operation that cuts across both subsystems —
// CheckVersion — against the library's own build-time version tuple.
//
// Construction takes a list of tagged inputs (currently only a tracing
// configuration is recognised) rather than a fixed parameter list, mirroring
// the source's "tagged struct" initialisation convention so new subsystem
// configs can be added without breaking existing callers.
package fimo
