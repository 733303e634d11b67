package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PlainQueryHasNoDirective(t *testing.T) {
	parsed := Parse("What is agile planning?")
	assert.Equal(t, DirectiveNone, parsed.Directive)
}

func TestParse_Next(t *testing.T) {
	assert.Equal(t, DirectiveNext, Parse("next").Directive)
	assert.Equal(t, DirectiveNext, Parse("Next, let's talk about goals").Directive)
}

func TestParse_Previous(t *testing.T) {
	assert.Equal(t, DirectivePrevious, Parse("previous").Directive)
	assert.Equal(t, DirectivePrevious, Parse("back").Directive)
}

func TestParse_JumpToStep(t *testing.T) {
	parsed := Parse("jump to step 4")
	require.Equal(t, DirectiveJump, parsed.Directive)
	assert.Equal(t, 4, parsed.Target)

	parsed = Parse("Go to step 2 please")
	require.Equal(t, DirectiveJump, parsed.Directive)
	assert.Equal(t, 2, parsed.Target)
}

func TestParse_JumpWithoutNumberIsPlainQuery(t *testing.T) {
	parsed := Parse("go to step two")
	assert.Equal(t, DirectiveNone, parsed.Directive)
}

func TestParse_NextInsideSentenceIsNotADirective(t *testing.T) {
	parsed := Parse("what comes next in the process?")
	assert.Equal(t, DirectiveNone, parsed.Directive)
}

func TestApply_NextClampsAtMax(t *testing.T) {
	step, err := Apply(6, &Parsed{Directive: DirectiveNext}, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, step)

	step, err = Apply(2, &Parsed{Directive: DirectiveNext}, 6)
	require.NoError(t, err)
	assert.Equal(t, 3, step)
}

func TestApply_PreviousClampsAtOne(t *testing.T) {
	step, err := Apply(1, &Parsed{Directive: DirectivePrevious}, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, step)
}

func TestApply_JumpOutOfRangeRejected(t *testing.T) {
	_, err := Apply(2, &Parsed{Directive: DirectiveJump, Target: 99}, 6)
	require.Error(t, err)

	var invalidErr *InvalidStepError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, 99, invalidErr.Target)
	assert.Equal(t, 6, invalidErr.MaxSteps)
}

func TestApply_JumpZeroRejected(t *testing.T) {
	_, err := Apply(2, &Parsed{Directive: DirectiveJump, Target: 0}, 6)
	assert.Error(t, err)
}

func TestApply_NoneKeepsStep(t *testing.T) {
	step, err := Apply(4, &Parsed{Directive: DirectiveNone}, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, step)
}

func TestValidateOverride(t *testing.T) {
	assert.NoError(t, ValidateOverride(1, 6))
	assert.NoError(t, ValidateOverride(6, 6))
	assert.Error(t, ValidateOverride(0, 6))
	assert.Error(t, ValidateOverride(7, 6))
}
