package module

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"github.com/fimoengine/fimo-std/graph"
)

// Registry is the module table: live modules, their exported symbols and
// namespace contributions, and the dependency graph connecting them.
// These registry-wide tables are guarded by a single mutex: operations that
// change them take its write lock, and read-only queries may proceed
// concurrently under its read lock. Changes to a module's namespace
// inclusions and parameter reads/writes do not take this mutex; they are
// serialised only by that module's own lock and each parameter's own lock.
type Registry struct {
	mu sync.RWMutex

	g *graph.Graph // node payload *Module, edge payload bool (static?)

	byName     map[string]uint64 // module name -> node key
	symbols    map[SymbolKey]*Module
	namespaces map[string]int // namespace -> number of modules exporting into it
}

// NewRegistry constructs an empty module registry.
func NewRegistry() (*Registry, error) {
	g, err := graph.New(1, 1, func(any) {}, func(any) {})
	if err != nil {
		return nil, err
	}

	return &Registry{
		g:          g,
		byName:     make(map[string]uint64),
		symbols:    make(map[SymbolKey]*Module),
		namespaces: map[string]int{"": 1}, // the empty namespace always exists
	}, nil
}

// FindByName performs an exact lookup by module name.
func (r *Registry) FindByName(name string) (*Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.moduleLocked(name)
	if !ok {
		return nil, notFoundf("FindByName", "%q", name)
	}

	return newInfo(m), nil
}

func (r *Registry) moduleLocked(name string) (*Module, bool) {
	key, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	payload, _ := r.g.NodePayload(key)

	return payload.(*Module), true
}

// FindBySymbol searches for a module exporting a symbol matching name and
// namespace with a version compatible with required.
func (r *Registry) FindBySymbol(name, ns string, required Version) (*Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.symbols[SymbolKey{Name: name, Namespace: ns}]
	if !ok {
		return nil, notFoundf("FindBySymbol", "%s/%s", ns, name)
	}
	m.mu.RLock()
	sym := m.exports[SymbolKey{Name: name, Namespace: ns}]
	m.mu.RUnlock()
	if sym == nil || !sym.Version.Compatible(required) {
		return nil, notFoundf("FindBySymbol", "%s/%s compatible with %s", ns, name, required)
	}

	return newInfo(m), nil
}

// NamespaceExists reports whether any module currently exports into ns, or
// ns is the empty namespace.
func (r *Registry) NamespaceExists(ns string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.namespaces[ns] > 0
}

// LoadSymbol resolves (name, ns, version) on behalf of caller. It succeeds
// only when caller has a dependency edge to the exporting module and caller
// has included ns.
func (r *Registry) LoadSymbol(caller *Info, name, ns string, required Version) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.symbols[SymbolKey{Name: name, Namespace: ns}]
	if !ok {
		return nil, notFoundf("LoadSymbol", "%s/%s", ns, name)
	}
	owner.mu.RLock()
	sym := owner.exports[SymbolKey{Name: name, Namespace: ns}]
	owner.mu.RUnlock()
	if sym == nil || !sym.Version.Compatible(required) {
		return nil, notFoundf("LoadSymbol", "%s/%s compatible with %s", ns, name, required)
	}

	if !r.g.ContainsEdge(caller.m.nodeKey, owner.nodeKey) {
		return nil, permissionf("LoadSymbol", "%s has no dependency on %s", caller.m.Name, owner.Name)
	}
	caller.m.mu.RLock()
	_, included := caller.m.namespaces[ns]
	caller.m.mu.RUnlock()
	if ns != "" && !included {
		return nil, permissionf("LoadSymbol", "%s has not included namespace %q", caller.m.Name, ns)
	}

	return sym.Ptr, nil
}

// NamespaceInclude adds ns to caller's dynamic inclusion set. The namespace
// must currently exist (some loaded module exports into it, or it is the
// empty namespace).
func (r *Registry) NamespaceInclude(caller *Info, ns string) error {
	if !r.NamespaceExists(ns) {
		return notFoundf("NamespaceInclude", "namespace %q", ns)
	}

	caller.m.mu.Lock()
	defer caller.m.mu.Unlock()

	if _, ok := caller.m.namespaces[ns]; ok {
		return alreadyExistsf("NamespaceInclude", "%q already included by %s", ns, caller.m.Name)
	}
	caller.m.namespaces[ns] = false

	return nil
}

// NamespaceExclude removes ns from caller's dynamic inclusion set. Excluding
// a statically-included namespace fails with ferr.ErrPermission.
func (r *Registry) NamespaceExclude(caller *Info, ns string) error {
	caller.m.mu.Lock()
	defer caller.m.mu.Unlock()

	static, ok := caller.m.namespaces[ns]
	if !ok {
		return notFoundf("NamespaceExclude", "%q not included by %s", ns, caller.m.Name)
	}
	if static {
		return permissionf("NamespaceExclude", "%q is a static inclusion of %s", ns, caller.m.Name)
	}
	delete(caller.m.namespaces, ns)

	return nil
}

// NamespaceIncluded reports whether caller currently includes ns, and
// whether that inclusion is static.
func (r *Registry) NamespaceIncluded(caller *Info, ns string) (included, static bool) {
	caller.m.mu.RLock()
	defer caller.m.mu.RUnlock()

	static, included = caller.m.namespaces[ns]

	return included, static
}

// AcquireDependency adds a dynamic dependency edge caller->target. Fails
// with ferr.ErrInvalid if the edge would introduce a cycle.
func (r *Registry) AcquireDependency(caller, target *Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.g.PathExists(target.m.nodeKey, caller.m.nodeKey) {
		return invalidf("AcquireDependency", "%s->%s would introduce a cycle", caller.m.Name, target.m.Name)
	}
	if _, err := r.g.AddEdge(caller.m.nodeKey, target.m.nodeKey, false, nil); err != nil {
		return err
	}

	return nil
}

// RelinquishDependency removes a dynamic dependency edge. Fails with
// ferr.ErrPermission if the edge is static.
func (r *Registry) RelinquishDependency(caller, target *Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, isStatic, ok := r.g.FindEdge(caller.m.nodeKey, target.m.nodeKey)
	if !ok {
		return notFoundf("RelinquishDependency", "%s->%s", caller.m.Name, target.m.Name)
	}
	if isStatic.(bool) {
		return permissionf("RelinquishDependency", "%s->%s is a static dependency", caller.m.Name, target.m.Name)
	}
	if _, err := r.g.RemoveEdge(key); err != nil {
		return err
	}

	return nil
}

// HasDependency reports whether caller has a (static or dynamic) dependency
// edge on target, and if so whether that edge is static.
func (r *Registry) HasDependency(caller, target *Info) (has, static bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, payload, ok := r.g.FindEdge(caller.m.nodeKey, target.m.nodeKey)
	if !ok {
		return false, false
	}

	return true, payload.(bool)
}

// ParamQuery returns the type and read/write visibilities of a named
// parameter of owner.
func (r *Registry) ParamQuery(owner *Info, name string) (ParamType, ParamAccess, ParamAccess, error) {
	owner.m.mu.RLock()
	defer owner.m.mu.RUnlock()

	p, ok := owner.m.Params[name]
	if !ok {
		return 0, 0, 0, notFoundf("ParamQuery", "%q on %s", name, owner.m.Name)
	}

	return p.Type, p.ReadAccess, p.WriteAccess, nil
}

func (r *Registry) param(owner *Info, name string) (*Parameter, error) {
	owner.m.mu.RLock()
	defer owner.m.mu.RUnlock()

	p, ok := owner.m.Params[name]
	if !ok {
		return nil, notFoundf("param", "%q on %s", name, owner.m.Name)
	}

	return p, nil
}

// ParamGetPublic reads a parameter declared public-readable; any caller may
// invoke it.
func (r *Registry) ParamGetPublic(owner *Info, name string) (int64, error) {
	p, err := r.param(owner, name)
	if err != nil {
		return 0, err
	}
	if p.ReadAccess != AccessPublic {
		return 0, permissionf("ParamGetPublic", "%q is not public-readable", name)
	}

	return p.GetSigned(), nil
}

// ParamSetPublic writes a parameter declared public-writable.
func (r *Registry) ParamSetPublic(owner *Info, name string, v int64) error {
	p, err := r.param(owner, name)
	if err != nil {
		return err
	}
	if p.WriteAccess != AccessPublic {
		return permissionf("ParamSetPublic", "%q is not public-writable", name)
	}

	return p.SetSigned(v)
}

// ParamGetDependency reads a parameter declared dependency-readable;
// caller must hold a dependency edge on owner.
func (r *Registry) ParamGetDependency(caller, owner *Info, name string) (int64, error) {
	has, _ := r.HasDependency(caller, owner)
	if !has {
		return 0, permissionf("ParamGetDependency", "%s has no dependency on %s", caller.m.Name, owner.m.Name)
	}
	p, err := r.param(owner, name)
	if err != nil {
		return 0, err
	}
	if p.ReadAccess != AccessDependency && p.ReadAccess != AccessPublic {
		return 0, permissionf("ParamGetDependency", "%q is not dependency-readable", name)
	}

	return p.GetSigned(), nil
}

// ParamSetDependency writes a parameter declared dependency-writable;
// caller must hold a dependency edge on owner.
func (r *Registry) ParamSetDependency(caller, owner *Info, name string, v int64) error {
	has, _ := r.HasDependency(caller, owner)
	if !has {
		return permissionf("ParamSetDependency", "%s has no dependency on %s", caller.m.Name, owner.m.Name)
	}
	p, err := r.param(owner, name)
	if err != nil {
		return err
	}
	if p.WriteAccess != AccessDependency && p.WriteAccess != AccessPublic {
		return permissionf("ParamSetDependency", "%q is not dependency-writable", name)
	}

	return p.SetSigned(v)
}

// ParamGetPrivate reads any parameter of owner, but only when caller is
// owner itself.
func (r *Registry) ParamGetPrivate(caller, owner *Info, name string) (int64, error) {
	if caller.m != owner.m {
		return 0, permissionf("ParamGetPrivate", "%s is not %s", caller.m.Name, owner.m.Name)
	}

	return r.ParamGetInner(owner, name)
}

// ParamSetPrivate writes any parameter of owner, but only when caller is
// owner itself.
func (r *Registry) ParamSetPrivate(caller, owner *Info, name string, v int64) error {
	if caller.m != owner.m {
		return permissionf("ParamSetPrivate", "%s is not %s", caller.m.Name, owner.m.Name)
	}

	return r.ParamSetInner(owner, name, v)
}

// ParamGetInner is the unchecked accessor used by a module on a direct
// handle it already possesses, bypassing visibility checks entirely.
func (r *Registry) ParamGetInner(owner *Info, name string) (int64, error) {
	p, err := r.param(owner, name)
	if err != nil {
		return 0, err
	}

	return p.GetSigned(), nil
}

// ParamSetInner is the unchecked setter mirroring ParamGetInner.
func (r *Registry) ParamSetInner(owner *Info, name string, v int64) error {
	p, err := r.param(owner, name)
	if err != nil {
		return err
	}

	return p.SetSigned(v)
}

// NewPseudoModule creates a host-owned module record with no exports and
// no static dependencies, which may still acquire dynamic dependencies,
// include namespaces, and load symbols.
func (r *Registry) NewPseudoModule(name string) (*Info, error) {
	m := &Module{
		Manifest:   Manifest{Name: name},
		exports:    make(map[SymbolKey]*Symbol),
		imports:    make(map[SymbolKey]*Symbol),
		namespaces: map[string]bool{"": true},
		pseudo:     true,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return nil, alreadyExistsf("NewPseudoModule", "%q", name)
	}
	key, err := r.g.AddNode(m)
	if err != nil {
		return nil, err
	}
	m.nodeKey = key
	r.byName[name] = key

	return newInfo(m), nil
}

// DestroyPseudoModule releases a pseudo-module created by NewPseudoModule.
// It follows the same unload path as a regular module.
func (r *Registry) DestroyPseudoModule(info *Info) error {
	if !info.m.pseudo {
		return invalidf("DestroyPseudoModule", "%s is not a pseudo-module", info.m.Name)
	}

	return r.Unload(info)
}

// unloadableLocked reports whether m is currently a candidate for unload:
// no other loaded module holds a dependency edge into it, and no
// outstanding Info reference is held above the registry's own.
func (r *Registry) unloadableLocked(m *Module) bool {
	if len(r.g.Neighbors(m.nodeKey, true)) > 0 {
		return false
	}

	return atomic.LoadInt32(&m.refcount) <= 0
}

// Unload implements the safe unload protocol of §4.4.
func (r *Registry) Unload(info *Info) error {
	m := info.m

	if !m.unloadLocked.CompareAndSwap(false, true) {
		return permissionf("Unload", "%s is already being unloaded", m.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.unloadableLocked(m) {
		m.unloadLocked.Store(false)

		return permissionf("Unload", "%s is in use", m.Name)
	}

	// A destructor failure is reported to the caller, but the module is
	// removed regardless: a half-unloaded module left in the registry
	// would be unusable either way.
	var destructErr error
	if m.Destruct != nil {
		if err := m.Destruct(m.state); err != nil {
			destructErr = fmt.Errorf("module: Unload: destructing %q: %w", m.Name, err)
		}
	}

	_, _ = r.g.RemoveNode(m.nodeKey) // also removes m's own (outgoing) dependency edges

	m.mu.Lock()
	for key := range m.exports {
		delete(r.symbols, key)
		if key.Namespace == "" {
			continue
		}
		if r.namespaces[key.Namespace]--; r.namespaces[key.Namespace] <= 0 {
			delete(r.namespaces, key.Namespace)
		}
	}
	m.exports = nil
	m.imports = nil
	m.namespaces = nil
	m.mu.Unlock()

	delete(r.byName, m.Name)

	return destructErr
}

// UnloadAll computes every currently-unloadable module and unloads them in
// reverse topological order (dependents before dependencies), equivalent to
// repeated single-module unloads. Errors from individual unloads are
// aggregated; the operation continues past a single module's failure.
func (r *Registry) UnloadAll() error {
	r.mu.RLock()
	order, err := r.g.TopologicalSort(true)
	r.mu.RUnlock()
	if err != nil {
		return err
	}

	var multi *multierror.Error
	for i := len(order) - 1; i >= 0; i-- {
		r.mu.RLock()
		payload, ok := r.g.NodePayload(order[i])
		r.mu.RUnlock()
		if !ok {
			continue
		}
		m := payload.(*Module)

		r.mu.RLock()
		unloadable := r.unloadableLocked(m)
		r.mu.RUnlock()
		if !unloadable {
			continue
		}
		if err := r.Unload(newInfo(m)); err != nil {
			multi = multierror.Append(multi, err)
		}
	}

	return multi.ErrorOrNil()
}

// RegistryStats summarizes the registry's current shape, mirroring
// graph.Stats for the underlying dependency graph.
type RegistryStats struct {
	ModuleCount     int
	DependencyEdges int
	NamespaceCount  int
}

// Stats returns a read-only snapshot of the registry's size.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gs := r.g.Stats()

	return RegistryStats{
		ModuleCount:     gs.NodeCount,
		DependencyEdges: gs.EdgeCount,
		NamespaceCount:  len(r.namespaces),
	}
}
