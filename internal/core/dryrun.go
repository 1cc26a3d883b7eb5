package core

import (
	"fmt"
	"strings"
)

// FormatPlan converts a Plan into a human-readable description of what will happen.
// This is used for --dry-run mode to show users what would be executed.
// Narration actions are left out; they describe the other actions.
// Deterministic: same plan always produces the same output.
func FormatPlan(plan Plan) string {
	if len(plan.Actions) == 0 {
		return "No actions to perform."
	}

	// Preallocate to avoid reallocations
	lines := make([]string, 0, len(plan.Actions)+1)
	lines = append(lines, "Planned actions:")

	n := 0
	for _, action := range plan.Actions {
		if _, ok := action.(PrintMessage); ok {
			continue
		}
		n++
		prefix := fmt.Sprintf("  %d. ", n)
		lines = append(lines, prefix+formatAction(action))
	}
	if n == 0 {
		return "No actions to perform."
	}

	return strings.Join(lines, "\n")
}

// formatAction converts a single action into a human-readable description.
func formatAction(action Action) string {
	switch a := action.(type) {
	case CloneRepository:
		if len(a.URLs) == 0 {
			return fmt.Sprintf("Clone into %s", a.Dir)
		}
		return fmt.Sprintf("Clone into %s from %s", a.Dir, strings.Join(a.URLs, ", then "))

	case DiscardChanges:
		return fmt.Sprintf("Discard local changes (reset --hard, clean -fd) [%s]", a.Policy)

	case CheckoutBranch:
		if a.Create {
			return fmt.Sprintf("Create branch %s tracking origin/%s [%s]", a.Branch, a.Branch, a.Policy)
		}
		return fmt.Sprintf("Check out %s [%s]", a.Branch, a.Policy)

	case PullBranch:
		return fmt.Sprintf("Pull origin %s [%s]", a.Branch, a.Policy)

	case SkipRepository:
		return fmt.Sprintf("Skip: %s", a.Reason)

	case Abort:
		if a.Err != nil {
			return fmt.Sprintf("Fail: %s: %v", a.Reason, a.Err)
		}
		return fmt.Sprintf("Fail: %s", a.Reason)

	default:
		return fmt.Sprintf("Unknown action: %T", action)
	}
}
