package module

// SymbolKey identifies an exported symbol by its (name, namespace) pair;
// a given key may be exported by at most one module at a time, under a
// single version.
type SymbolKey struct {
	Name      string
	Namespace string
}

// Symbol is an exported item of a module: a (name, namespace, version)
// triple bound to an opaque pointer owned by the exporting module.
type Symbol struct {
	Name      string
	Namespace string
	Version   Version
	// Ptr is the opaque exported value; callers loading the symbol receive
	// it unchanged.
	Ptr any
	// Owner is the exporting module's name.
	Owner string
}

// Key returns the symbol's lookup key.
func (s *Symbol) Key() SymbolKey {
	return SymbolKey{Name: s.Name, Namespace: s.Namespace}
}
