// Package prompt renders the final model input for a chat turn.
package prompt

import (
	"fmt"
	"strings"

	ragcontext "doc-chat-be/pkg/rag/context"
)

// TurnBuilder assembles the user-side message for one chat turn: the
// retrieved context bundle, the planner state, and the user's request.
// The stage instruction travels separately as the system message.
type TurnBuilder struct {
	step    int
	bundle  *ragcontext.Bundle
	planner string
	query   string
}

func NewTurnBuilder(step int, bundle *ragcontext.Bundle, planner, query string) *TurnBuilder {
	return &TurnBuilder{
		step:    step,
		bundle:  bundle,
		planner: planner,
		query:   query,
	}
}

// Build renders the turn content. Sections keep the order the assembler
// produced them in.
func (b *TurnBuilder) Build() string {
	var prompt strings.Builder

	b.writeContext(&prompt)
	b.writePlanner(&prompt)
	b.writeUserRequest(&prompt)

	return prompt.String()
}

func (b *TurnBuilder) writeContext(prompt *strings.Builder) {
	fmt.Fprintf(prompt, "--- Relevant Context for Stage %d ---\n", b.step)
	rendered := ""
	if b.bundle != nil {
		rendered = b.bundle.Render()
	}
	if rendered == "" {
		rendered = "N/A"
	}
	prompt.WriteString(rendered)
	prompt.WriteString("\n\n")
}

func (b *TurnBuilder) writePlanner(prompt *strings.Builder) {
	if b.planner == "" {
		return
	}
	prompt.WriteString("--- Current Six-Stage Planner ---\n")
	prompt.WriteString(b.planner)
	prompt.WriteString("\n\n")
}

func (b *TurnBuilder) writeUserRequest(prompt *strings.Builder) {
	prompt.WriteString("--- User's Request ---\n")
	fmt.Fprintf(prompt, "User: %s\n\n", b.query)
	prompt.WriteString("--- Your Task ---\n")
	fmt.Fprintf(prompt, "Address the user's request in the context of Stage %d. Use the guiding questions for this stage to provide comprehensive guidance.\n", b.step)
	prompt.WriteString("Format any questions you pose in markdown.")
}
