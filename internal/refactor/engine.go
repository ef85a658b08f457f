// Package refactor plans identifier renames against an external refactor
// engine, accepting a candidate name only when the engine validates it and
// the resulting edit set stays inside the originating file.
package refactor

// Edit is one text edit in a rename plan's workspace. Only Path matters for
// safety classification; positions are carried for callers that apply edits.
type Edit struct {
	Path      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	NewText   string
}

// Validation is the engine's verdict on a candidate rename.
type Validation struct {
	Valid  bool
	Errors []string
}

// Plan is the engine's computed rename plan for one candidate name.
type Plan struct {
	Validation Validation
	Edits      []Edit
}

// Engine is the external refactor engine collaborator. Given a stable
// symbol id and a candidate new name it computes the full multi-file edit
// set and a validation verdict.
type Engine interface {
	PrepareRenamePlan(symbolID, newName string) (*Plan, error)
}

// Bridge provides richer-than-lexical symbol resolution when available.
// A nil Bridge (or a failed resolution) drops the planner into local-only
// fallback mode.
type Bridge interface {
	// ResolveSymbolID returns a stable symbol id for an identifier name,
	// or ("", false) when no semantic symbol resolves.
	ResolveSymbolID(name string) (string, bool)
	// SymbolOccurrences lists the files where the named symbol occurs.
	SymbolOccurrences(name string) []string
}
