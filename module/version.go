package module

import (
	"fmt"

	"github.com/hashicorp/go-version"

	"github.com/fimoengine/fimo-std/ferr"
)

// Version is a module/symbol version number of the form
// {major, minor, patch, build}.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
	Build uint64
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d+%d", v.Major, v.Minor, v.Patch, v.Build)
}

// coreTriple builds the "major.minor.patch" string go-version compares
// lexicographically; the build number is excluded here and compared
// separately per the "long" comparison rule.
func (v Version) coreTriple() (*version.Version, error) {
	return version.NewVersion(fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch))
}

// Compatible reports whether a got-version g satisfies a required version r:
// g.Major must equal r.Major; if r.Major == 0, g.Minor must also equal
// r.Minor (the 0.x series has no cross-minor compatibility promise); and
// (r.Major, r.Minor, r.Patch) <= (g.Major, g.Minor, g.Patch) lexicographically.
// Build numbers play no role unless the triples are otherwise equal, in
// which case the "long" comparison additionally requires g.Build >= r.Build.
func (g Version) Compatible(r Version) bool {
	if g.Major != r.Major {
		return false
	}
	if r.Major == 0 && g.Minor != r.Minor {
		return false
	}

	gv, err := g.coreTriple()
	if err != nil {
		return false
	}
	rv, err := r.coreTriple()
	if err != nil {
		return false
	}
	switch gv.Compare(rv) {
	case -1:
		return false
	case 0:
		return g.Build >= r.Build
	default:
		return true
	}
}

// CheckCompatible returns ferr.ErrNotCompatible wrapped with context when g
// does not satisfy r, and nil otherwise.
func CheckCompatible(g, r Version) error {
	if !g.Compatible(r) {
		return fmt.Errorf("module: version %s not compatible with required %s: %w", g, r, ferr.ErrNotCompatible)
	}

	return nil
}
