package module

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// SuccessFunc is invoked exactly once for a pending module that finished
// loading successfully.
type SuccessFunc func(info *Info, userData any)

// ErrorFunc is invoked exactly once for a pending module that failed to
// load, or whose set was dismissed before it could load.
type ErrorFunc func(manifest *Manifest, userData any)

type callbackEntry struct {
	onSuccess SuccessFunc
	onError   ErrorFunc
	userData  any
}

type pendingModule struct {
	manifest  Manifest
	callbacks []callbackEntry
}

// Inspector enumerates candidate module exports discoverable under a
// filesystem prefix (an external collaborator in the production system;
// here, any function producing a sequence of manifests). keep, returned
// from visit for each candidate, mirrors the host's inspect_fn callback.
type Inspector func(visit func(m *Manifest) (keep bool)) error

// Filter selects which inspected manifests enter a loading set.
type Filter func(m *Manifest, data any) bool

// LoadingSet is the unit of atomicity for adding modules to a Registry: a
// batch of candidate modules and their per-module callbacks, committed or
// dismissed as a whole.
type LoadingSet struct {
	registry *Registry
	handle   uuid.UUID

	order   []string
	pending map[string]*pendingModule

	dismissed bool
	finished  bool
}

// NewLoadingSet creates an empty loading set bound to r.
func (r *Registry) NewLoadingSet() *LoadingSet {
	return &LoadingSet{
		registry: r,
		handle:   uuid.New(),
		pending:  make(map[string]*pendingModule),
	}
}

// Handle returns the set's opaque identity token.
func (s *LoadingSet) Handle() uuid.UUID { return s.handle }

// HasModule reports whether name is already present in the set's pending
// contents (not the registry).
func (s *LoadingSet) HasModule(name string) bool {
	_, ok := s.pending[name]

	return ok
}

// HasSymbol reports whether some pending module declares an export matching
// name/ns/version.
func (s *LoadingSet) HasSymbol(name, ns string, v Version) bool {
	for _, pm := range s.pending {
		for _, e := range pm.manifest.Exports {
			if e.Key.Name == name && e.Key.Namespace == ns && e.Version == v {
				return true
			}
		}
	}

	return false
}

// AppendCallback attaches hooks fired when moduleName, already appended to
// the set, finishes loading (successfully or not). Callbacks are invoked
// exactly once.
func (s *LoadingSet) AppendCallback(moduleName string, onSuccess SuccessFunc, onError ErrorFunc, userData any) error {
	pm, ok := s.pending[moduleName]
	if !ok {
		return notFoundf("AppendCallback", "%q not pending in this set", moduleName)
	}
	pm.callbacks = append(pm.callbacks, callbackEntry{onSuccess: onSuccess, onError: onError, userData: userData})

	return nil
}

// AppendFreestandingModule adds a manifest constructed in memory by caller.
func (s *LoadingSet) AppendFreestandingModule(caller *Info, m Manifest) error {
	if s.finished || s.dismissed {
		return invalidf("AppendFreestandingModule", "set already %s", s.state())
	}
	if m.Name == "" {
		return invalidf("AppendFreestandingModule", "empty module name")
	}
	if _, ok := s.pending[m.Name]; ok {
		return alreadyExistsf("AppendFreestandingModule", "%q already pending", m.Name)
	}
	if _, err := s.registry.FindByName(m.Name); err == nil {
		return alreadyExistsf("AppendFreestandingModule", "%q already loaded", m.Name)
	}

	s.pending[m.Name] = &pendingModule{manifest: m}
	s.order = append(s.order, m.Name)

	return nil
}

// AppendModules invokes inspector to enumerate candidate exports rooted at
// path, offering each to filter; only accepted candidates are appended.
func (s *LoadingSet) AppendModules(path string, filter Filter, filterData any, inspector Inspector) error {
	if s.finished || s.dismissed {
		return invalidf("AppendModules", "set already %s", s.state())
	}

	return inspector(func(m *Manifest) bool {
		if m.RootPath == "" {
			m.RootPath = path
		}
		if filter != nil && !filter(m, filterData) {
			return false
		}
		if err := s.AppendFreestandingModule(nil, *m); err != nil {
			return false
		}

		return true
	})
}

func (s *LoadingSet) state() string {
	if s.finished {
		return "finished"
	}
	if s.dismissed {
		return "dismissed"
	}

	return "open"
}

// Dismiss drops the set without committing. Every pending module's
// on_error callbacks fire, in append order.
func (s *LoadingSet) Dismiss() {
	if s.finished || s.dismissed {
		return
	}
	s.dismissed = true
	for _, name := range s.order {
		pm := s.pending[name]
		for _, cb := range pm.callbacks {
			if cb.onError != nil {
				cb.onError(&pm.manifest, cb.userData)
			}
		}
	}
}

// Finish commits the set: resolves static imports, checks acyclicity,
// constructs pending modules in dependency order, and either installs all
// of them into the registry or rolls every constructed module back.
func (s *LoadingSet) Finish(ctx any) ([]*Info, error) {
	if s.finished || s.dismissed {
		return nil, invalidf("Finish", "set already %s", s.state())
	}
	s.finished = true

	r := s.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	// 1: duplicate-export checks across pending+registry (missing
	// exporters are detected below, while resolving imports).
	exportOwner := make(map[SymbolKey]string, len(s.order))
	exportVersion := make(map[SymbolKey]Version, len(s.order))
	for _, name := range s.order {
		for _, e := range s.pending[name].manifest.Exports {
			if prev, dup := exportOwner[e.Key]; dup {
				return nil, s.abortFinish(invalidf("Finish", "duplicate export %s/%s by %q and %q", e.Key.Namespace, e.Key.Name, prev, name))
			}
			if _, exists := r.symbols[e.Key]; exists {
				return nil, s.abortFinish(invalidf("Finish", "export %s/%s already loaded", e.Key.Namespace, e.Key.Name))
			}
			exportOwner[e.Key] = name
			exportVersion[e.Key] = e.Version
		}
	}

	// 3: add placeholder nodes + static dependency edges to the registry's
	// own graph; checked for acyclicity, then rolled back on any failure
	// (including the cyclicity failure itself) before returning.
	nodeKeys := make(map[string]uint64, len(s.order))
	var addedNodes []uint64
	var addedEdges []uint64
	rollbackGraph := func() {
		for _, eid := range addedEdges {
			_, _ = r.g.RemoveEdge(eid)
		}
		for _, nid := range addedNodes {
			_, _ = r.g.RemoveNode(nid)
		}
	}

	for _, name := range s.order {
		m := &Module{
			Manifest:   s.pending[name].manifest,
			exports:    make(map[SymbolKey]*Symbol),
			imports:    make(map[SymbolKey]*Symbol),
			namespaces: make(map[string]bool),
		}
		for _, ns := range m.StaticNamespaces {
			m.namespaces[ns] = true
		}
		m.namespaces[""] = true

		key, err := r.g.AddNode(m)
		if err != nil {
			rollbackGraph()

			return nil, s.abortFinish(err)
		}
		m.nodeKey = key
		nodeKeys[name] = key
		addedNodes = append(addedNodes, key)
	}

	// importedFrom records, per pending module, the node key of the module
	// each resolved import is bound against, so the import table can be
	// filled in from the exporter's own symbols once construction succeeds.
	importedFrom := make(map[string]map[SymbolKey]uint64, len(s.order))

	for _, name := range s.order {
		pm := s.pending[name]
		srcKey := nodeKeys[name]
		importedFrom[name] = make(map[SymbolKey]uint64, len(pm.manifest.StaticImports))
		for _, imp := range pm.manifest.StaticImports {
			ownerName, ok := exportOwner[imp.Key]
			var dstKey uint64
			var got Version
			if ok {
				dstKey = nodeKeys[ownerName]
				got = exportVersion[imp.Key]
			} else if existing, ok2 := r.symbols[imp.Key]; ok2 {
				dstKey = existing.nodeKey
				existing.mu.RLock()
				got = existing.exports[imp.Key].Version
				existing.mu.RUnlock()
			} else {
				rollbackGraph()

				return nil, s.abortFinish(invalidf("Finish", "%q: missing exporter for %s/%s", name, imp.Key.Namespace, imp.Key.Name))
			}
			if !got.Compatible(imp.Required) {
				rollbackGraph()

				return nil, s.abortFinish(invalidf("Finish", "%q: exporter of %s/%s has version %s, not compatible with required %s",
					name, imp.Key.Namespace, imp.Key.Name, got, imp.Required))
			}
			importedFrom[name][imp.Key] = dstKey

			eid, err := r.g.AddEdge(srcKey, dstKey, true, nil)
			if err != nil {
				rollbackGraph()

				return nil, s.abortFinish(err)
			}
			addedEdges = append(addedEdges, eid)
		}

		// Each statically included namespace (beyond the implicit empty
		// one) must be backed by a dependency edge to some module
		// exporting into it.
		for _, ns := range pm.manifest.StaticNamespaces {
			if ns == "" {
				continue
			}
			dstKey, found := uint64(0), false
			for key, ownerName := range exportOwner {
				if key.Namespace == ns {
					dstKey, found = nodeKeys[ownerName], true
					break
				}
			}
			if !found {
				for key, existing := range r.symbols {
					if key.Namespace == ns {
						dstKey, found = existing.nodeKey, true
						break
					}
				}
			}
			if !found {
				rollbackGraph()

				return nil, s.abortFinish(invalidf("Finish", "%q: no exporter into included namespace %q", name, ns))
			}
			if srcKey == dstKey || r.g.ContainsEdge(srcKey, dstKey) {
				continue
			}
			eid, err := r.g.AddEdge(srcKey, dstKey, true, nil)
			if err != nil {
				rollbackGraph()

				return nil, s.abortFinish(err)
			}
			addedEdges = append(addedEdges, eid)
		}
	}

	if r.g.IsCyclic() {
		rollbackGraph()

		return nil, s.abortFinish(invalidf("Finish", "committing this set would introduce a dependency cycle"))
	}

	// 4: topological order restricted to this set's pending nodes. Edges
	// run dependent->dependency, so the reverse-direction sort (inward=true)
	// places each dependency ahead of the modules depending on it.
	fullOrder, err := r.g.TopologicalSort(true)
	if err != nil {
		rollbackGraph()

		return nil, s.abortFinish(err)
	}
	isPending := make(map[uint64]bool, len(addedNodes))
	for _, k := range addedNodes {
		isPending[k] = true
	}
	var pendingOrder []uint64
	for _, k := range fullOrder {
		if isPending[k] {
			pendingOrder = append(pendingOrder, k)
		}
	}

	// 5: construct in order; roll back on first failure.
	var constructed []*Module
	keyToName := make(map[uint64]string, len(nodeKeys))
	for name, key := range nodeKeys {
		keyToName[key] = name
	}

	for _, key := range pendingOrder {
		name := keyToName[key]
		payload, _ := r.g.NodePayload(key)
		m := payload.(*Module)

		var state any
		var err error
		if m.Construct != nil {
			state, err = m.Construct(ctx, s)
		}
		if err != nil {
			finishErr := fmt.Errorf("module: Finish: constructing %q: %w", name, err)
			if rbErr := s.rollbackConstructed(constructed); rbErr != nil {
				finishErr = multierror.Append(finishErr, rbErr)
			}
			rollbackGraph()
			s.fireRemainingErrors(pendingOrder, keyToName)

			return nil, finishErr
		}
		m.state = state
		constructed = append(constructed, m)
	}

	// success: install exports/namespaces, bind imports, fire on_success,
	// consume set.
	infos := make([]*Info, 0, len(constructed))
	for _, m := range constructed {
		for _, e := range m.Exports {
			sym := &Symbol{Name: e.Key.Name, Namespace: e.Key.Namespace, Version: e.Version, Ptr: e.Ptr, Owner: m.Name}
			m.exports[e.Key] = sym
			r.symbols[e.Key] = m
			if e.Key.Namespace != "" {
				r.namespaces[e.Key.Namespace]++
			}
		}
		r.byName[m.Name] = m.nodeKey
	}
	for _, m := range constructed {
		for key, ownerKey := range importedFrom[m.Name] {
			payload, _ := r.g.NodePayload(ownerKey)
			owner := payload.(*Module)
			owner.mu.RLock()
			m.imports[key] = owner.exports[key]
			owner.mu.RUnlock()
		}
	}
	for _, m := range constructed {
		info := newInfo(m)
		infos = append(infos, info)
		for _, cb := range s.pending[m.Name].callbacks {
			if cb.onSuccess != nil {
				cb.onSuccess(info, cb.userData)
			}
		}
	}

	return infos, nil
}

// rollbackConstructed destructs every already-constructed module in
// reverse construction order. Destructor failures do not stop the
// rollback; they are aggregated and returned so the caller can surface
// them alongside the construction error that triggered the rollback.
func (s *LoadingSet) rollbackConstructed(constructed []*Module) error {
	var multi *multierror.Error
	for i := len(constructed) - 1; i >= 0; i-- {
		m := constructed[i]
		if m.Destruct == nil {
			continue
		}
		if err := m.Destruct(m.state); err != nil {
			multi = multierror.Append(multi, fmt.Errorf("module: Finish: rolling back %q: %w", m.Name, err))
		}
	}

	return multi.ErrorOrNil()
}

func (s *LoadingSet) fireRemainingErrors(pendingOrder []uint64, keyToName map[uint64]string) {
	for _, key := range pendingOrder {
		name := keyToName[key]
		pm := s.pending[name]
		for _, cb := range pm.callbacks {
			if cb.onError != nil {
				cb.onError(&pm.manifest, cb.userData)
			}
		}
	}
}

// abortFinish fires on_error for every pending module (the whole set failed
// to commit) and returns err unchanged, for use as `return nil,
// s.abortFinish(err)`.
func (s *LoadingSet) abortFinish(err error) error {
	for _, name := range s.order {
		pm := s.pending[name]
		for _, cb := range pm.callbacks {
			if cb.onError != nil {
				cb.onError(&pm.manifest, cb.userData)
			}
		}
	}

	return err
}
