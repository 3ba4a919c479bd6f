package fimo

import "github.com/fimoengine/fimo-std/module"

// Build-time version constants. A real release pipeline would inject these
// via -ldflags; this repo has none, so they default to fixed values.
const (
	VersionMajor uint64 = 0
	VersionMinor uint64 = 1
	VersionPatch uint64 = 0
	VersionBuild uint64 = 0
)

// BuildInfo is this implementation's own {major, minor, patch, build} tuple,
// the "got" side of every CheckVersion call.
var BuildInfo = module.Version{
	Major: VersionMajor,
	Minor: VersionMinor,
	Patch: VersionPatch,
	Build: VersionBuild,
}

// CheckVersion reports whether this implementation's BuildInfo satisfies
// required, per the comparison rule in module.Version.Compatible. It returns
// ferr.ErrNotCompatible (wrapped) when it does not.
func CheckVersion(required module.Version) error {
	return module.CheckCompatible(BuildInfo, required)
}
