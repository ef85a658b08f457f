package thicket

import (
	"fmt"

	"github.com/jward/thicket/internal/contract"
	"github.com/jward/thicket/internal/index"
	"github.com/jward/thicket/internal/refactor"
	"github.com/jward/thicket/internal/scope"
	"github.com/jward/thicket/internal/store"
)

// Public type aliases for internal types used in the facade API. These are
// Go type aliases (=) — identical to the internal types at compile time.
// External consumers use these names; no conversion is needed.

type Index = index.Index
type IndexBuilder = index.Builder
type IndexBuilderOption = index.BuilderOption

type ScopeTracker = scope.Tracker
type ScopeSymbol = scope.Symbol

type Capability = contract.Capability
type CapabilitySet = contract.CapabilitySet
type ReasonCode = contract.ReasonCode
type Declaration = contract.Declaration
type Rules = contract.Rules

type RenamePlanner = refactor.Planner
type RenameOutcome = refactor.Outcome
type RenameMode = refactor.Mode
type RefactorEngine = refactor.Engine
type RefactorPlan = refactor.Plan
type RefactorValidation = refactor.Validation
type RefactorEdit = refactor.Edit
type SemanticBridge = refactor.Bridge

type SnapshotStore = store.Store

// Re-exported capability and reason-code constants.
const (
	CapOccupancy      = contract.CapOccupancy
	CapOccurrences    = contract.CapOccurrences
	CapLoopHoist      = contract.CapLoopHoist
	CapRenamePlanning = contract.CapRenamePlanning
	AllCapabilities   = contract.AllCapabilities

	ReasonNone                  = contract.ReasonNone
	ReasonNameCollision         = contract.ReasonNameCollision
	ReasonNoOpRename            = contract.ReasonNoOpRename
	ReasonMissingFilePath       = contract.ReasonMissingFilePath
	ReasonProjectWideEdits      = contract.ReasonProjectWideEdits
	ReasonCandidateExhausted    = contract.ReasonCandidateExhausted
	ReasonMissingProjectContext = contract.ReasonMissingProjectContext

	ModeProject       = refactor.ModeProject
	ModeLocalFallback = refactor.ModeLocalFallback
)

// Capabilities combines individual capabilities into a set.
func Capabilities(caps ...Capability) CapabilitySet {
	return contract.Capabilities(caps...)
}

// NewIndexBuilder constructs an index builder with the default excluded
// directory names plus any options.
func NewIndexBuilder(opts ...IndexBuilderOption) *IndexBuilder {
	return index.NewBuilder(opts...)
}

// WithIndexExcludedDirs adds case-insensitive directory names to the
// builder's exclusion set.
func WithIndexExcludedDirs(names ...string) IndexBuilderOption {
	return index.WithExcludedDirs(names...)
}

// WithIndexAllowedDirs sets absolute path prefixes that override exclusion.
func WithIndexAllowedDirs(paths ...string) IndexBuilderOption {
	return index.WithAllowedDirs(paths...)
}

// NewScopeTracker returns a per-file scope tracker with the file layer
// already entered.
func NewScopeTracker() *ScopeTracker {
	return scope.NewTracker()
}

// NewRules returns an empty rule declaration registry.
func NewRules() *Rules {
	return contract.NewRules()
}

// OpenSnapshotStore opens (and migrates) the SQLite snapshot database at
// dbPath.
func OpenSnapshotStore(dbPath string) (*SnapshotStore, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("thicket: open snapshot store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("thicket: migrate snapshot store: %w", err)
	}
	return s, nil
}
