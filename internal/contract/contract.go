// Package contract defines the static capability and reason-code contract
// for project-aware rules. Capabilities gate which context queries a rule
// may rely on; reason codes are the closed vocabulary for "unsafe fix
// withheld" diagnostics. Contract violations are authoring bugs: they fail
// at rule registration, not at runtime.
package contract

import (
	"errors"
	"fmt"
	"strings"
)

// Capability is one feature a project context can support.
type Capability uint8

const (
	// CapOccupancy allows IsNameOccupied queries.
	CapOccupancy Capability = 1 << iota
	// CapOccurrences allows OccurrenceFiles queries.
	CapOccurrences
	// CapLoopHoist allows ResolveLoopHoistIdentifier.
	CapLoopHoist
	// CapRenamePlanning allows PlanFeatherRenames.
	CapRenamePlanning
)

// AllCapabilities is the full capability set of a lexically built context.
const AllCapabilities = CapabilitySet(CapOccupancy | CapOccurrences | CapLoopHoist | CapRenamePlanning)

func (c Capability) String() string {
	switch c {
	case CapOccupancy:
		return "occupancy"
	case CapOccurrences:
		return "occurrences"
	case CapLoopHoist:
		return "loop-hoist"
	case CapRenamePlanning:
		return "rename-planning"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

// CapabilitySet is a bitset of Capabilities.
type CapabilitySet uint8

// Capabilities combines individual capabilities into a set.
func Capabilities(caps ...Capability) CapabilitySet {
	var set CapabilitySet
	for _, c := range caps {
		set |= CapabilitySet(c)
	}
	return set
}

// Has reports whether the set contains c.
func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

func (s CapabilitySet) String() string {
	var names []string
	for _, c := range []Capability{CapOccupancy, CapOccurrences, CapLoopHoist, CapRenamePlanning} {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return strings.Join(names, ",")
}

// ReasonCode identifies why a fix was withheld or a rename judged unsafe.
// The zero value means "no reason" (the operation was safe).
type ReasonCode uint8

const (
	ReasonNone ReasonCode = iota
	// ReasonNameCollision: the replacement name is already occupied.
	ReasonNameCollision
	// ReasonNoOpRename: old and new names are identical.
	ReasonNoOpRename
	// ReasonMissingFilePath: a rewrite needs a known file path and has none.
	ReasonMissingFilePath
	// ReasonProjectWideEdits: the edit set touches files beyond the origin.
	ReasonProjectWideEdits
	// ReasonCandidateExhausted: every candidate name was skipped.
	ReasonCandidateExhausted
	// ReasonMissingProjectContext is reserved for the dedicated
	// missing-context diagnostic path. Rules may never declare or emit it
	// as an unsafe-fix reason.
	ReasonMissingProjectContext
)

func (r ReasonCode) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonNameCollision:
		return "name-collision"
	case ReasonNoOpRename:
		return "no-op-rename"
	case ReasonMissingFilePath:
		return "missing-file-path"
	case ReasonProjectWideEdits:
		return "project-wide-edits"
	case ReasonCandidateExhausted:
		return "candidate-exhausted"
	case ReasonMissingProjectContext:
		return "missing-project-context"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// Known reports whether r is a registered reason code.
func (r ReasonCode) Known() bool {
	return r >= ReasonNameCollision && r <= ReasonMissingProjectContext
}

// Contract violation sentinels.
var (
	ErrUnknownReasonCode  = errors.New("unknown reason code")
	ErrReservedReasonCode = errors.New("missing-project-context is reserved and may not be declared or emitted as an unsafe-fix reason")
	ErrUndeclaredReason   = errors.New("reason code not declared by rule")
	ErrDuplicateRule      = errors.New("rule already registered")
)

// Declaration is the static contract a project-aware rule registers:
// the capabilities it requires and the reason codes it may emit for
// withheld fixes.
type Declaration struct {
	Rule          string
	Required      CapabilitySet
	UnsafeReasons []ReasonCode
}

// Validate checks the declaration against the central reason-code registry.
func (d Declaration) Validate() error {
	if d.Rule == "" {
		return fmt.Errorf("declaration: rule name is empty")
	}
	for _, r := range d.UnsafeReasons {
		if !r.Known() {
			return fmt.Errorf("declaration %s: %w: %d", d.Rule, ErrUnknownReasonCode, uint8(r))
		}
		if r == ReasonMissingProjectContext {
			return fmt.Errorf("declaration %s: %w", d.Rule, ErrReservedReasonCode)
		}
	}
	return nil
}

// Rules is a validated registry of rule declarations.
type Rules struct {
	byName map[string]Declaration
}

// NewRules returns an empty registry.
func NewRules() *Rules {
	return &Rules{byName: make(map[string]Declaration)}
}

// Register validates d and adds it to the registry.
func (rs *Rules) Register(d Declaration) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, ok := rs.byName[d.Rule]; ok {
		return fmt.Errorf("register %s: %w", d.Rule, ErrDuplicateRule)
	}
	rs.byName[d.Rule] = d
	return nil
}

// MustRegister is Register for static rule tables; it panics on a contract
// violation so an authoring bug cannot ship.
func (rs *Rules) MustRegister(d Declaration) {
	if err := rs.Register(d); err != nil {
		panic(err)
	}
}

// Declaration returns the registered declaration for a rule name.
func (rs *Rules) Declaration(rule string) (Declaration, bool) {
	d, ok := rs.byName[rule]
	return d, ok
}

// CheckEmission validates that rule may emit reason as an unsafe-fix
// reason. The reserved code is rejected outright, so a rule can never
// report both "missing project context" and an unsafe fix carrying the
// reserved code — the dedicated diagnostic path is the only way to signal
// a missing context.
func (rs *Rules) CheckEmission(rule string, reason ReasonCode) error {
	d, ok := rs.byName[rule]
	if !ok {
		return fmt.Errorf("emission from unregistered rule %q", rule)
	}
	if !reason.Known() {
		return fmt.Errorf("rule %s: %w: %d", rule, ErrUnknownReasonCode, uint8(reason))
	}
	if reason == ReasonMissingProjectContext {
		return fmt.Errorf("rule %s: %w", rule, ErrReservedReasonCode)
	}
	for _, declared := range d.UnsafeReasons {
		if declared == reason {
			return nil
		}
	}
	return fmt.Errorf("rule %s: %w: %s", rule, ErrUndeclaredReason, reason)
}
