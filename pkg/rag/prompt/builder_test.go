package prompt

import (
	"strings"
	"testing"

	ragcontext "doc-chat-be/pkg/rag/context"

	"github.com/stretchr/testify/assert"
)

func TestBuild_IncludesContextSectionsInOrder(t *testing.T) {
	bundle := &ragcontext.Bundle{Sections: []ragcontext.Section{
		{Label: "File Context from report.pdf", Content: "file text"},
		{Label: "Relevant Framework Information", Content: "framework text"},
	}}

	out := NewTurnBuilder(2, bundle, "", "summarize the report").Build()

	assert.Contains(t, out, "Relevant Context for Stage 2")
	fileIdx := strings.Index(out, "File Context from report.pdf")
	fwIdx := strings.Index(out, "Relevant Framework Information")
	assert.Greater(t, fileIdx, -1)
	assert.Less(t, fileIdx, fwIdx)
	assert.Contains(t, out, "User: summarize the report")
}

func TestBuild_EmptyBundleRendersPlaceholder(t *testing.T) {
	out := NewTurnBuilder(1, &ragcontext.Bundle{}, "", "hello").Build()

	assert.Contains(t, out, "N/A")
}

func TestBuild_PlannerIncludedWhenPresent(t *testing.T) {
	out := NewTurnBuilder(4, &ragcontext.Bundle{}, "1. Ship it", "refine the plan").Build()

	assert.Contains(t, out, "Current Six-Stage Planner")
	assert.Contains(t, out, "1. Ship it")
}

func TestBuild_PlannerOmittedWhenEmpty(t *testing.T) {
	out := NewTurnBuilder(4, &ragcontext.Bundle{}, "", "refine the plan").Build()

	assert.NotContains(t, out, "Current Six-Stage Planner")
}
