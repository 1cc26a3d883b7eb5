package effects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m44rten1/groundwork/internal/core"
)

// ExitError carries a process exit code up to the shell.
// The shell can check for this type and use the exit code.
type ExitError struct {
	Code int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// IsExit checks if an error is an ExitError and returns the code.
// This provides ergonomic error checking at call sites:
//
//	if code, ok := IsExit(err); ok {
//	    os.Exit(code)
//	}
func IsExit(err error) (code int, ok bool) {
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// ExecutePlan runs the actions of a plan for one repository and returns its outcome.
//
// A failed git action is handled by its FailurePolicy: FailRepository ends the
// plan with Failed, WarnAndContinue records a warning, WarnAndStop records a
// warning and ends the plan with Succeeded. SkipRepository and Abort end the
// plan with Skipped and Failed.
func ExecutePlan(ctx context.Context, repo string, plan core.Plan, fx Effects) core.Outcome {
	var warnings []string

	for _, action := range plan.Actions {
		switch a := action.(type) {
		case core.SkipRepository:
			return core.Skipped{Repo: repo, Branch: plan.Branch, Reason: a.Reason}

		case core.Abort:
			return core.Failed{Repo: repo, Reason: a.Reason, Err: a.Err}

		case core.CloneRepository:
			warning, err := cloneFirstReachable(ctx, a, fx)
			if err != nil {
				return core.Failed{Repo: repo, Reason: cloneFailureReason(len(a.URLs)), Err: err}
			}
			if warning != "" {
				warnings = append(warnings, warning)
			}
			continue
		}

		policy, err := executeAction(ctx, action, fx)
		if err == nil {
			continue
		}

		label := actionLabel(action)
		switch policy {
		case core.WarnAndContinue:
			warnings = append(warnings, fmt.Sprintf("%s failed: %v", label, err))
		case core.WarnAndStop:
			warnings = append(warnings, fmt.Sprintf("%s failed: %v", label, err))
			// The repository stays where it was; report that branch, not the target.
			return core.Succeeded{Repo: repo, Branch: branchAfterStop(ctx, repo, plan, fx), Warnings: warnings}
		default:
			return core.Failed{Repo: repo, Reason: label + " failed", Err: err}
		}
	}

	return core.Succeeded{Repo: repo, Branch: plan.Branch, Warnings: warnings}
}

// executeAction executes a single action using type switches.
// It returns the policy to apply when the returned error is non-nil.
func executeAction(ctx context.Context, action core.Action, fx Effects) (core.FailurePolicy, error) {
	switch a := action.(type) {
	case core.PrintMessage:
		// Print is best-effort (does not fail on broken pipe)
		fx.Print(a.Msg)
		return core.FailRepository, nil

	case core.DiscardChanges:
		return a.Policy, fx.DiscardChanges(ctx)

	case core.CheckoutBranch:
		if a.Create {
			return a.Policy, fx.CheckoutTracking(ctx, a.Branch)
		}
		return a.Policy, fx.CheckoutExisting(ctx, a.Branch)

	case core.PullBranch:
		return a.Policy, fx.Pull(ctx, a.Branch)

	default:
		return core.FailRepository, fmt.Errorf("unknown action type: %T", action)
	}
}

// branchAfterStop asks git which branch a stopped plan left checked out.
// When git cannot tell, the branch the plan started from is reported.
func branchAfterStop(ctx context.Context, repo string, plan core.Plan, fx Effects) string {
	current, err := fx.CurrentBranch(ctx)
	if err != nil {
		slog.Warn("cannot read current branch after a stopped plan", "repo", repo, "error", err)
		return plan.From
	}
	return current
}

// cloneFirstReachable tries each URL in order. A clone that needed a
// fallback URL returns a warning naming it.
func cloneFirstReachable(ctx context.Context, a core.CloneRepository, fx Effects) (string, error) {
	if len(a.URLs) == 0 {
		return "", core.ErrNoRemoteURL
	}

	var errs []error
	for i, url := range a.URLs {
		err := fx.Clone(ctx, url, a.Dir)
		if err == nil {
			if i > 0 {
				return fmt.Sprintf("cloned from fallback remote %s", url), nil
			}
			return "", nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", url, err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

func cloneFailureReason(urls int) string {
	if urls > 1 {
		return "clone failed on both remotes"
	}
	return "clone failed"
}

func actionLabel(action core.Action) string {
	switch a := action.(type) {
	case core.DiscardChanges:
		return "discard"
	case core.CheckoutBranch:
		return "checkout " + a.Branch
	case core.PullBranch:
		return "pull " + a.Branch
	default:
		return fmt.Sprintf("%T", action)
	}
}
