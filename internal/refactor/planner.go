package refactor

import (
	"fmt"
	"strings"

	"github.com/jward/thicket/internal/contract"
)

// maxCandidates bounds the candidate search: the preferred name plus
// preferred_1 through preferred_32.
const maxCandidates = 33

// msgProjectWideEdits is the skip reason recorded when a validated plan
// would touch files beyond the origin.
const msgProjectWideEdits = "Rename requires project-wide edits and cannot be applied safely inside formatter-only mode."

// Mode says how a rename outcome was decided.
type Mode uint8

const (
	// ModeProject means the engine validated the rename against the project.
	ModeProject Mode = iota
	// ModeLocalFallback means no semantic symbol resolved; the preferred
	// name was accepted verbatim since no cross-file conflict can be proven
	// or disproven.
	ModeLocalFallback
)

func (m Mode) String() string {
	switch m {
	case ModeProject:
		return "project"
	case ModeLocalFallback:
		return "local-fallback"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Outcome is the immutable result of planning one rename.
type Outcome struct {
	Identifier  string
	Replacement string // empty when no safe replacement was found
	Accepted    bool
	Mode        Mode
	SkipReason  string
}

// candidateResult is the explicit per-candidate verdict: accepted, or
// skipped with a reason. Engine failures become skip reasons, never
// aborted batches.
type candidateResult struct {
	accepted bool
	reason   string
}

func accepted() candidateResult             { return candidateResult{accepted: true} }
func skipped(reason string) candidateResult { return candidateResult{reason: reason} }

// Planner orchestrates candidate-name generation against the Engine.
type Planner struct {
	engine Engine
	bridge Bridge
}

// NewPlanner wires a Planner to an engine and an optional semantic bridge.
func NewPlanner(engine Engine, bridge Bridge) *Planner {
	return &Planner{engine: engine, bridge: bridge}
}

// Plan decides a replacement name for renaming identifier name in the file
// at originPath, preferring preferred. Candidates are tried in order until
// the engine validates one whose edits stay inside originPath.
func (p *Planner) Plan(originPath, name, preferred string) Outcome {
	if name == preferred {
		return Outcome{
			Identifier: name,
			Mode:       ModeProject,
			SkipReason: contract.ReasonNoOpRename.String(),
		}
	}

	symbolID, ok := p.resolveSymbol(name)
	if !ok {
		// No semantic symbol resolves at all: local-only mode.
		return Outcome{
			Identifier:  name,
			Replacement: preferred,
			Accepted:    true,
			Mode:        ModeLocalFallback,
		}
	}

	lastReason := contract.ReasonCandidateExhausted.String()
	for i := 0; i < maxCandidates; i++ {
		candidate := preferred
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d", preferred, i)
		}
		res := p.tryCandidate(symbolID, candidate, originPath)
		if res.accepted {
			return Outcome{
				Identifier:  name,
				Replacement: candidate,
				Accepted:    true,
				Mode:        ModeProject,
			}
		}
		lastReason = res.reason
	}

	return Outcome{
		Identifier: name,
		Mode:       ModeProject,
		SkipReason: lastReason,
	}
}

// tryCandidate runs one candidate through the engine and classifies the
// result. Engine errors and validation failures are skips; a validated plan
// is accepted only when every edit stays inside originPath.
func (p *Planner) tryCandidate(symbolID, candidate, originPath string) candidateResult {
	plan, err := p.engine.PrepareRenamePlan(symbolID, candidate)
	if err != nil {
		return skipped(err.Error())
	}
	if plan == nil {
		return skipped("engine returned no plan")
	}
	if !plan.Validation.Valid {
		if len(plan.Validation.Errors) > 0 {
			return skipped(strings.Join(plan.Validation.Errors, "; "))
		}
		return skipped("validation failed")
	}
	for _, edit := range plan.Edits {
		if edit.Path != "" && edit.Path != originPath {
			return skipped(msgProjectWideEdits)
		}
	}
	return accepted()
}

func (p *Planner) resolveSymbol(name string) (string, bool) {
	if p.bridge == nil {
		return "", false
	}
	return p.bridge.ResolveSymbolID(name)
}
