package thicket

import (
	"fmt"

	"github.com/jward/thicket/internal/contract"
	"github.com/jward/thicket/internal/gml"
	"github.com/jward/thicket/internal/index"
	"github.com/jward/thicket/internal/refactor"
)

// loopHoistBound is the last numeric suffix tried when resolving a
// loop-hoist identifier. Exhausting it is an explicit failure, not an error.
const loopHoistBound = 1000

// Context is an immutable, capability-tagged query facade over one project
// index snapshot. It is rebuilt only when its index is rebuilt; queries are
// safe for concurrent use.
type Context struct {
	idx    *index.Index
	caps   contract.CapabilitySet
	bridge refactor.Bridge
}

// ContextOption configures a Context at construction.
type ContextOption func(*Context)

// WithContextBridge attaches a semantic bridge: occupancy checks then also
// consult true symbol resolution, not just the lexical index.
func WithContextBridge(b refactor.Bridge) ContextOption {
	return func(c *Context) {
		c.bridge = b
	}
}

// WithCapabilities restricts the context's capability set. Callers must
// treat an absent capability identically to "no context available".
func WithCapabilities(caps CapabilitySet) ContextOption {
	return func(c *Context) {
		c.caps = caps
	}
}

// NewContext wraps a frozen index in a query facade. By default the context
// carries the full capability set of a lexically built index.
func NewContext(idx *Index, opts ...ContextOption) *Context {
	c := &Context{idx: idx, caps: contract.AllCapabilities}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the project root of the underlying index.
func (c *Context) Root() string {
	return c.idx.Root()
}

// Index returns the underlying frozen index snapshot.
func (c *Context) Index() *Index {
	return c.idx
}

// Has reports whether the context supports the given capability.
func (c *Context) Has(cap Capability) bool {
	return c.caps.Has(cap)
}

// Capabilities returns the context's capability set.
func (c *Context) Capabilities() CapabilitySet {
	return c.caps
}

// IsNameOccupied reports whether the normalized name appears anywhere in
// the project — in the lexical index, or as a true semantic symbol when a
// bridge is attached.
func (c *Context) IsNameOccupied(name string) bool {
	if c.idx.Occupied(name) {
		return true
	}
	if c.bridge != nil {
		if _, ok := c.bridge.ResolveSymbolID(name); ok {
			return true
		}
	}
	return false
}

// OccurrenceFiles returns the sorted absolute paths of files containing the
// normalized name, or nil.
func (c *Context) OccurrenceFiles(name string) []string {
	return c.idx.Files(name)
}

// RenameRequest asks whether Identifier can be renamed to Preferred.
type RenameRequest struct {
	Identifier string
	Preferred  string
}

// FeatherRename is the conflict verdict for one rename request.
type FeatherRename struct {
	Identifier string
	Preferred  string
	Safe       bool
	Reason     ReasonCode
}

// PlanFeatherRenames classifies each request: a no-op rename (identical
// names under GML's case-insensitive comparison) is always unsafe, a
// preferred name that is already occupied collides, anything else is safe.
func (c *Context) PlanFeatherRenames(reqs []RenameRequest) []FeatherRename {
	plans := make([]FeatherRename, len(reqs))
	for i, req := range reqs {
		plan := FeatherRename{Identifier: req.Identifier, Preferred: req.Preferred}
		switch {
		case gml.Normalize(req.Identifier) == gml.Normalize(req.Preferred):
			plan.Reason = ReasonNoOpRename
		case c.IsNameOccupied(req.Preferred):
			plan.Reason = ReasonNameCollision
		default:
			plan.Safe = true
		}
		plans[i] = plan
	}
	return plans
}

// RewriteAssessment is the verdict on rewriting a legacy globalvar
// declaration to the modern form.
type RewriteAssessment struct {
	Allow  bool
	Reason ReasonCode
}

// AssessGlobalVarRewrite allows the rewrite when the declaration has an
// initializer, or when the file path is known even without one. A missing
// path with no initializer is the one disallowed case.
func (c *Context) AssessGlobalVarRewrite(filePath string, hasInitializer bool) RewriteAssessment {
	if hasInitializer || filePath != "" {
		return RewriteAssessment{Allow: true}
	}
	return RewriteAssessment{Reason: ReasonMissingFilePath}
}

// ResolveLoopHoistIdentifier picks a hoisted-variable name that does not
// collide with localNames: the preferred name if free, else preferred_1,
// preferred_2, … up to preferred_1000. Returns ("", false) when the bound
// is exhausted — an explicit failure boundary.
func (c *Context) ResolveLoopHoistIdentifier(preferred string, localNames []string) (string, bool) {
	taken := make(map[string]bool, len(localNames))
	for _, n := range localNames {
		taken[gml.Normalize(n)] = true
	}
	if !taken[gml.Normalize(preferred)] {
		return preferred, true
	}
	for i := 1; i <= loopHoistBound; i++ {
		candidate := fmt.Sprintf("%s_%d", preferred, i)
		if !taken[gml.Normalize(candidate)] {
			return candidate, true
		}
	}
	return "", false
}
