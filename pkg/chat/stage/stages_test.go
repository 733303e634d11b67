package stage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_AllStagesDefined(t *testing.T) {
	for step := 1; step <= DefaultCount; step++ {
		s, ok := Get(step)
		require.True(t, ok, "stage %d should be defined", step)
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Concept)
		assert.NotEmpty(t, s.Questions)
	}
}

func TestGet_UndefinedStage(t *testing.T) {
	_, ok := Get(7)
	assert.False(t, ok)

	_, ok = Get(0)
	assert.False(t, ok)
}

func TestSystemPrompt_IncludesStageFocus(t *testing.T) {
	prompt := SystemPrompt(2)

	assert.Contains(t, prompt, "CURRENT FOCUS: Stage 2: Making Connections")
	assert.Contains(t, prompt, "GUIDING QUESTIONS TO ADDRESS:")
}

func TestSystemPrompt_PlannerStepHasPlannerFocus(t *testing.T) {
	prompt := SystemPrompt(PlannerStep)

	assert.Contains(t, prompt, "initial draft of the six-stage planner")
}

func TestSystemPrompt_NonPlannerStepsDoNot(t *testing.T) {
	for step := 1; step <= DefaultCount; step++ {
		if step == PlannerStep {
			continue
		}
		prompt := SystemPrompt(step)
		assert.False(t, strings.Contains(prompt, "initial draft of the six-stage planner"), "step %d", step)
	}
}

func TestSystemPrompt_UndefinedStepFallsBackToBase(t *testing.T) {
	prompt := SystemPrompt(42)
	assert.NotContains(t, prompt, "CURRENT FOCUS")
	assert.Contains(t, prompt, "six-stage process")
}
