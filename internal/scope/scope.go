// Package scope implements the per-file scope chain used during a semantic
// pass: a stack of symbol layers with a memoized lookup cache.
package scope

// Symbol is a declared identifier within one lexical scope layer.
type Symbol struct {
	Name string
	// Depth is the index of the declaring layer, 0 being the file layer.
	Depth int
	Meta  map[string]any
}

// lookupResult caches a lookup outcome. A cached miss (Sym == nil) is as
// valid as a cached hit until an invalidating operation runs.
type lookupResult struct {
	Sym *Symbol
}

// Tracker is a per-file stack of symbol layers. It is created at the start
// of a semantic pass and discarded at the end; it is not safe for concurrent
// use.
type Tracker struct {
	layers []map[string]*Symbol
	cache  map[string]lookupResult
	walks  int
}

// NewTracker returns a Tracker with the file-level layer already entered.
func NewTracker() *Tracker {
	return &Tracker{
		layers: []map[string]*Symbol{{}},
		cache:  make(map[string]lookupResult),
	}
}

// Depth returns the number of active scope layers.
func (t *Tracker) Depth() int {
	return len(t.layers)
}

// Walks returns how many full scope-chain walks Lookup has performed.
// Used by tests to verify the memoization contract.
func (t *Tracker) Walks() int {
	return t.walks
}

// EnterScope pushes a new innermost layer. The entire lookup cache is
// invalidated: which names are visible changes with depth.
func (t *Tracker) EnterScope() {
	t.layers = append(t.layers, map[string]*Symbol{})
	t.cache = make(map[string]lookupResult)
}

// ExitScope pops the innermost layer and invalidates the entire lookup
// cache. The file-level layer is never popped.
func (t *Tracker) ExitScope() {
	if len(t.layers) <= 1 {
		return
	}
	t.layers = t.layers[:len(t.layers)-1]
	t.cache = make(map[string]lookupResult)
}

// Declare binds name in the innermost layer, shadowing any outer binding.
// Only the cache entry for name is invalidated — a cached hit or miss for
// that specific name may now be wrong, every other entry is still valid.
func (t *Tracker) Declare(name string, meta map[string]any) *Symbol {
	depth := len(t.layers) - 1
	sym := &Symbol{Name: name, Depth: depth, Meta: meta}
	t.layers[depth][name] = sym
	delete(t.cache, name)
	return sym
}

// Lookup resolves name against the scope chain, innermost layer first.
// Outcomes — hits and explicit misses — are cached; two Lookups with no
// intervening EnterScope/ExitScope/Declare return identical results and
// walk the chain exactly once.
func (t *Tracker) Lookup(name string) (*Symbol, bool) {
	if res, ok := t.cache[name]; ok {
		return res.Sym, res.Sym != nil
	}

	t.walks++
	for i := len(t.layers) - 1; i >= 0; i-- {
		if sym, ok := t.layers[i][name]; ok {
			t.cache[name] = lookupResult{Sym: sym}
			return sym, true
		}
	}

	t.cache[name] = lookupResult{}
	return nil, false
}
