// Package navigation parses step-movement directives out of chat queries.
package navigation

import (
	"fmt"
	"strconv"
	"strings"
)

// Directive represents the step movement a query asks for.
type Directive string

const (
	DirectiveNone     Directive = "NONE"     // Plain query, step unchanged
	DirectiveNext     Directive = "NEXT"     // step+1, clamped at the last stage
	DirectivePrevious Directive = "PREVIOUS" // step-1, clamped at 1
	DirectiveJump     Directive = "JUMP"     // explicit "jump to step k"
)

// Jump phrasings accepted at the start of a query (case-insensitive).
const (
	prefixJumpToStep = "jump to step"
	prefixGoToStep   = "go to step"
)

// InvalidStepError reports a jump target outside the defined stage range.
type InvalidStepError struct {
	Target   int
	MaxSteps int
}

func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("invalid step %d: must be between 1 and %d", e.Target, e.MaxSteps)
}

// Parsed holds the directive extracted from a query.
type Parsed struct {
	Directive Directive
	Target    int // only set for DirectiveJump
}

// Parse extracts a navigation directive from the query text.
// Supports:
//   - "next" / "next ..." → advance one step
//   - "previous" / "back" → go back one step
//   - "jump to step k" / "go to step k" → explicit jump
//   - anything else → no movement
//
// A jump phrase with an unparseable step number is treated as a plain query
// rather than an error; validation of the numeric range happens in Apply.
func Parse(query string) *Parsed {
	lower := strings.ToLower(strings.TrimSpace(query))

	for _, prefix := range []string{prefixJumpToStep, prefixGoToStep} {
		if strings.HasPrefix(lower, prefix) {
			rest := strings.TrimSpace(lower[len(prefix):])
			field := rest
			if idx := strings.IndexByte(rest, ' '); idx >= 0 {
				field = rest[:idx]
			}
			if target, err := strconv.Atoi(field); err == nil {
				return &Parsed{Directive: DirectiveJump, Target: target}
			}
			return &Parsed{Directive: DirectiveNone}
		}
	}

	switch firstWord(lower) {
	case "next":
		return &Parsed{Directive: DirectiveNext}
	case "previous", "back":
		return &Parsed{Directive: DirectivePrevious}
	}

	return &Parsed{Directive: DirectiveNone}
}

// Apply resolves the effective step from the current step and a directive.
// Next/previous clamp at the range edges; jump targets outside 1..maxSteps
// return an InvalidStepError.
func Apply(current int, parsed *Parsed, maxSteps int) (int, error) {
	switch parsed.Directive {
	case DirectiveNext:
		if current < maxSteps {
			return current + 1, nil
		}
		return maxSteps, nil
	case DirectivePrevious:
		if current > 1 {
			return current - 1, nil
		}
		return 1, nil
	case DirectiveJump:
		if parsed.Target < 1 || parsed.Target > maxSteps {
			return current, &InvalidStepError{Target: parsed.Target, MaxSteps: maxSteps}
		}
		return parsed.Target, nil
	default:
		return current, nil
	}
}

// ValidateOverride checks an explicit step override from the request body.
func ValidateOverride(target, maxSteps int) error {
	if target < 1 || target > maxSteps {
		return &InvalidStepError{Target: target, MaxSteps: maxSteps}
	}
	return nil
}

func firstWord(s string) string {
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		return s[:idx]
	}
	return s
}
