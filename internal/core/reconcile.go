package core

import "fmt"

// Narration and reason texts for the reconcile planner
const (
	msgUsingExisting   = "%s: using existing checkout"
	msgCloning         = "%s: cloning"
	msgPulling         = "%s: pulling %s"
	msgKeepingChanges  = "%s: keeping local changes on %s"
	msgDiscarding      = "%s: discarding local changes"
	msgSwitching       = "%s: switching %s -> %s"
	msgCreatingBranch  = "%s: creating %s tracking origin/%s"
	reasonNoBranch     = "no recognized branch found"
	reasonLocalChanges = "local changes on %s; commit or stash them, or rerun with --force to discard"
)

// AcquireContext contains the inputs to plan obtaining a working copy.
type AcquireContext struct {
	Name   string
	URLs   []string
	Exists bool
	Quiet  bool
}

// PlanAcquire plans obtaining a local working copy: nothing when the directory
// is already there, otherwise a clone trying each URL in order.
func PlanAcquire(ctx AcquireContext) Plan {
	if ctx.Name == "" {
		return abortPlan(ErrEmptyRepoName)
	}

	var actions []Action
	if ctx.Exists {
		actions = appendMessage(actions, ctx.Quiet, fmt.Sprintf(msgUsingExisting, ctx.Name))
		return Plan{Actions: actions}
	}

	if len(ctx.URLs) == 0 {
		return abortPlan(ErrNoRemoteURL)
	}

	actions = appendMessage(actions, ctx.Quiet, fmt.Sprintf(msgCloning, ctx.Name))
	actions = append(actions, CloneRepository{
		Dir:  ctx.Name,
		URLs: append([]string(nil), ctx.URLs...),
	})
	return Plan{Actions: actions}
}

// ReconcileContext contains all inputs needed to plan reconciling one repository.
type ReconcileContext struct {
	State   RepositoryState
	Options RunOptions
}

// PlanReconcile turns the observed repository state into the actions that bring it
// onto its resolved branch.
//
//	on branch | changes | force | actions
//	yes       | no      | any   | pull
//	yes       | yes     | no    | pull, changes kept
//	yes       | yes     | yes   | discard, pull
//	no        | no      | any   | checkout, pull
//	no        | yes     | no    | skip
//	no        | yes     | yes   | discard, checkout, pull (any failure fails the repository)
//
// Without Force no DiscardChanges is ever planned, and no checkout is planned over a dirty tree.
func PlanReconcile(ctx ReconcileContext) Plan {
	st := ctx.State
	opts := ctx.Options

	if st.Name == "" {
		return abortPlan(ErrEmptyRepoName)
	}
	if len(st.Candidates) == 0 {
		return abortPlan(ErrNoCandidates)
	}
	if st.ResolvedBranch == "" {
		return Plan{Actions: []Action{Abort{Reason: reasonNoBranch}}}
	}

	branch := st.ResolvedBranch
	var actions []Action

	if st.OnResolvedBranch() {
		if st.HasLocalChanges {
			if opts.Force {
				actions = appendMessage(actions, opts.Quiet, fmt.Sprintf(msgDiscarding, st.Name))
				actions = append(actions, DiscardChanges{Policy: FailRepository})
			} else {
				actions = appendMessage(actions, opts.Quiet, fmt.Sprintf(msgKeepingChanges, st.Name, branch))
			}
		}
		actions = appendMessage(actions, opts.Quiet, fmt.Sprintf(msgPulling, st.Name, branch))
		actions = append(actions, PullBranch{Branch: branch, Policy: WarnAndContinue})
		return Plan{Branch: branch, From: st.CurrentBranch, Actions: actions}
	}

	if st.HasLocalChanges && !opts.Force {
		return Plan{Branch: branch, From: st.CurrentBranch, Actions: []Action{
			SkipRepository{Reason: fmt.Sprintf(reasonLocalChanges, describeBranch(st.CurrentBranch))},
		}}
	}

	// A forced switch is all-or-nothing; a clean switch degrades to a warning.
	checkoutPolicy, pullPolicy := WarnAndStop, WarnAndContinue
	if st.HasLocalChanges {
		checkoutPolicy, pullPolicy = FailRepository, FailRepository
		actions = appendMessage(actions, opts.Quiet, fmt.Sprintf(msgDiscarding, st.Name))
		actions = append(actions, DiscardChanges{Policy: FailRepository})
	}

	if st.LocalBranchExists {
		actions = appendMessage(actions, opts.Quiet, fmt.Sprintf(msgSwitching, st.Name, describeBranch(st.CurrentBranch), branch))
	} else {
		actions = appendMessage(actions, opts.Quiet, fmt.Sprintf(msgCreatingBranch, st.Name, branch, branch))
	}
	actions = append(actions, CheckoutBranch{Branch: branch, Create: !st.LocalBranchExists, Policy: checkoutPolicy})

	actions = appendMessage(actions, opts.Quiet, fmt.Sprintf(msgPulling, st.Name, branch))
	actions = append(actions, PullBranch{Branch: branch, Policy: pullPolicy})

	return Plan{Branch: branch, From: st.CurrentBranch, Actions: actions}
}

func describeBranch(name string) string {
	if name == "" {
		return "detached HEAD"
	}
	return name
}

func appendMessage(actions []Action, quiet bool, msg string) []Action {
	if quiet {
		return actions
	}
	return append(actions, PrintMessage{Msg: msg})
}

// abortPlan creates a plan that fails the repository with the given error.
func abortPlan(err error) Plan {
	return Plan{Actions: []Action{Abort{Reason: "invalid plan input", Err: err}}}
}
