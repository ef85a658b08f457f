package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitySet_Has(t *testing.T) {
	t.Parallel()
	set := Capabilities(CapOccupancy, CapLoopHoist)
	assert.True(t, set.Has(CapOccupancy))
	assert.True(t, set.Has(CapLoopHoist))
	assert.False(t, set.Has(CapOccurrences))
	assert.False(t, set.Has(CapRenamePlanning))
}

func TestAllCapabilities(t *testing.T) {
	t.Parallel()
	for _, c := range []Capability{CapOccupancy, CapOccurrences, CapLoopHoist, CapRenamePlanning} {
		assert.True(t, AllCapabilities.Has(c), c.String())
	}
}

func TestCapabilitySet_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "occupancy,rename-planning",
		Capabilities(CapOccupancy, CapRenamePlanning).String())
}

func TestReasonCode_Strings(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", ReasonNone.String())
	assert.Equal(t, "name-collision", ReasonNameCollision.String())
	assert.Equal(t, "no-op-rename", ReasonNoOpRename.String())
	assert.Equal(t, "missing-file-path", ReasonMissingFilePath.String())
	assert.Equal(t, "project-wide-edits", ReasonProjectWideEdits.String())
	assert.Equal(t, "candidate-exhausted", ReasonCandidateExhausted.String())
	assert.Equal(t, "missing-project-context", ReasonMissingProjectContext.String())
}

func TestDeclaration_Validate(t *testing.T) {
	t.Parallel()

	valid := Declaration{
		Rule:          "prefer-loop-length-hoist",
		Required:      Capabilities(CapOccupancy, CapLoopHoist),
		UnsafeReasons: []ReasonCode{ReasonNameCollision, ReasonCandidateExhausted},
	}
	require.NoError(t, valid.Validate())

	missingName := valid
	missingName.Rule = ""
	require.Error(t, missingName.Validate())

	unknown := valid
	unknown.UnsafeReasons = []ReasonCode{ReasonCode(200)}
	err := unknown.Validate()
	require.ErrorIs(t, err, ErrUnknownReasonCode)

	reserved := valid
	reserved.UnsafeReasons = []ReasonCode{ReasonMissingProjectContext}
	err = reserved.Validate()
	require.ErrorIs(t, err, ErrReservedReasonCode)
}

func TestRules_Register(t *testing.T) {
	t.Parallel()
	rs := NewRules()

	d := Declaration{
		Rule:          "globalvar-to-global",
		Required:      Capabilities(CapOccupancy),
		UnsafeReasons: []ReasonCode{ReasonMissingFilePath},
	}
	require.NoError(t, rs.Register(d))

	got, ok := rs.Declaration("globalvar-to-global")
	require.True(t, ok)
	assert.Equal(t, d, got)

	err := rs.Register(d)
	require.ErrorIs(t, err, ErrDuplicateRule)
}

func TestRules_MustRegister_PanicsOnViolation(t *testing.T) {
	t.Parallel()
	rs := NewRules()
	assert.Panics(t, func() {
		rs.MustRegister(Declaration{
			Rule:          "bad-rule",
			UnsafeReasons: []ReasonCode{ReasonMissingProjectContext},
		})
	})
}

func TestRules_CheckEmission(t *testing.T) {
	t.Parallel()
	rs := NewRules()
	rs.MustRegister(Declaration{
		Rule:          "feather-rename",
		Required:      Capabilities(CapOccupancy, CapRenamePlanning),
		UnsafeReasons: []ReasonCode{ReasonNameCollision, ReasonNoOpRename},
	})

	require.NoError(t, rs.CheckEmission("feather-rename", ReasonNameCollision))

	err := rs.CheckEmission("feather-rename", ReasonCandidateExhausted)
	require.ErrorIs(t, err, ErrUndeclaredReason)

	err = rs.CheckEmission("feather-rename", ReasonMissingProjectContext)
	require.ErrorIs(t, err, ErrReservedReasonCode)

	err = rs.CheckEmission("feather-rename", ReasonCode(200))
	require.ErrorIs(t, err, ErrUnknownReasonCode)

	err = rs.CheckEmission("not-registered", ReasonNameCollision)
	require.Error(t, err)
}
