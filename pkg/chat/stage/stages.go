// Package stage defines the guided planning stages the chat walks a user
// through, and renders the per-stage system instruction.
package stage

import (
	"fmt"
	"strings"
)

// DefaultCount is the number of defined planning stages.
const DefaultCount = 6

// PlannerStep is the stage at which the assistant drafts the project planner.
const PlannerStep = 3

// Stage describes one step of the guided planning process.
type Stage struct {
	Name      string
	Concept   string
	Questions []string
}

var stages = map[int]Stage{
	1: {
		Name:    "Starting Point",
		Concept: "The very beginning of the project: what exists today, and what makes the idea possible at all.",
		Questions: []string{
			"What is the starting point or initial state of the project?",
			"What are the core components of this initial state?",
			"What makes this project possible in the first place?",
		},
	},
	2: {
		Name:    "Making Connections",
		Concept: "Linking the key elements together and understanding how they relate. Weighing whether the idea can work.",
		Questions: []string{
			"What follows from the starting point? Which key elements need to be connected?",
			"How do these elements relate to each other?",
			"What do these relationships say about the project's chances of success?",
		},
	},
	3: {
		Name:    "First Plan",
		Concept: "What emerges when the connected elements interact. The first draft of the project plan takes shape here.",
		Questions: []string{
			"What emerges from the interaction of the elements defined in the previous stage?",
			"Based on the first two stages, what are the key pillars of this project?",
			"What are the key objectives or tasks for each of the six stages of the plan?",
		},
	},
	4: {
		Name:    "Exploring Options",
		Concept: "The concrete result of the first plan: a space of design options to explore and compare.",
		Questions: []string{
			"What concrete result follows from the initial plan?",
			"What range of options for development does it open up?",
			"How should the plan be refined in light of those options?",
		},
	},
	5: {
		Name:    "Choosing the Direction",
		Concept: "Finding the central motive among the options and committing to the most effective direction.",
		Questions: []string{
			"What is the central focus among the options from the previous stage?",
			"Which direction is the most effective one for the project to take?",
			"How should the plan be adjusted to follow that direction?",
		},
	},
	6: {
		Name:    "Setting Boundaries",
		Concept: "Defining the final scope and limits of the project. Boundaries constrain options but make completion possible.",
		Questions: []string{
			"What defines the completed boundary or scope for this project?",
			"How do these limits enable the project to actually get done?",
			"What final refinements does the plan need within these boundaries?",
		},
	},
}

// Get returns the stage definition for a step, or false when the step has no
// defined stage.
func Get(step int) (Stage, bool) {
	s, ok := stages[step]
	return s, ok
}

const baseSystemPrompt = `You are an AI assistant guiding users through project definition and planning using a six-stage process.
Your goal is to help the user clarify their project step by step, leveraging provided document context and user input.
Always focus on the user's CURRENT STAGE in the process.
Use the concept and guiding questions for the current stage to direct the conversation.
Be concise, clear, and action-oriented.`

const plannerFocusPrompt = `Your primary goal now is to synthesize the information from the first two stages, along with any relevant context, to help the user create an initial draft of the six-stage planner. The planner should outline key goals or tasks for each stage as they apply to the user's project.`

// SystemPrompt renders the full system instruction for a step. Steps without
// a defined stage get the base instruction only.
func SystemPrompt(step int) string {
	s, ok := stages[step]
	if !ok {
		return baseSystemPrompt
	}

	var b strings.Builder
	b.WriteString(baseSystemPrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "CURRENT FOCUS: Stage %d: %s\n", step, s.Name)
	fmt.Fprintf(&b, "CONCEPT: %s\n", s.Concept)
	b.WriteString("GUIDING QUESTIONS TO ADDRESS:\n")
	for _, q := range s.Questions {
		fmt.Fprintf(&b, "- %s\n", q)
	}

	if step == PlannerStep {
		b.WriteString("\n")
		b.WriteString(plannerFocusPrompt)
	} else {
		b.WriteString("\nMaintain awareness of the overall six-stage plan, especially when refining it after the planner has been drafted.")
	}

	return b.String()
}
