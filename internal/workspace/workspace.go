// Package workspace synchronizes the repositories of a workspace manifest:
// each one is cloned if missing, its branch is resolved from the candidate
// list, and the working copy is reconciled onto it without losing local work.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m44rten1/groundwork/internal/config"
	"github.com/m44rten1/groundwork/internal/core"
	"github.com/m44rten1/groundwork/internal/effects"
	"github.com/m44rten1/groundwork/internal/ui"
	"github.com/m44rten1/groundwork/internal/workdir"
)

// ErrNotRepository is returned when a repository directory exists but is not
// the root of a git working tree.
var ErrNotRepository = errors.New("not a git repository")

// Sync processes specs one at a time, in order, from the current working
// directory, and prints one outcome line per repository. A dry run prints
// each planned action list instead.
//
// A non-nil error means the run itself could not continue (cancellation or a
// working directory that could not be restored). The report then holds the
// outcomes reached so far.
func Sync(ctx context.Context, fx effects.Effects, specs []config.RepositorySpec, candidates []string, opts core.RunOptions) (core.Report, error) {
	var report core.Report

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("sync interrupted before %s: %w", spec.Name, err)
		}

		out, err := SyncRepository(ctx, fx, spec, candidates, opts)
		if out != nil {
			report.Add(out)
			if !opts.DryRun {
				fx.Print(ui.FormatOutcome(out))
			}
		}
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

// SyncRepository acquires, resolves and reconciles one repository. The working
// directory is the same on return as on entry, whatever path is taken.
//
// The outcome is always set. The error is set only when the working directory
// could not be restored.
func SyncRepository(ctx context.Context, fx effects.Effects, spec config.RepositorySpec, candidates []string, opts core.RunOptions) (out core.Outcome, err error) {
	exists := fx.DirExists(spec.Name)
	acquire := core.PlanAcquire(core.AcquireContext{
		Name:   spec.Name,
		URLs:   spec.URLs(),
		Exists: exists,
		Quiet:  opts.Quiet,
	})

	if opts.DryRun && !exists {
		printPlan(fx, spec.Name, acquire)
		return predictOutcome(spec.Name, acquire), nil
	}

	acquired := effects.ExecutePlan(ctx, spec.Name, acquire, fx)
	var acquireWarnings []string
	switch a := acquired.(type) {
	case core.Succeeded:
		acquireWarnings = a.Warnings
	default:
		return acquired, nil
	}

	restore, err := workdir.Enter(fx, spec.Name)
	if err != nil {
		return core.Failed{Repo: spec.Name, Reason: "cannot enter repository directory", Err: err}, nil
	}
	defer func() {
		if restoreErr := restore(); restoreErr != nil {
			err = restoreErr
		}
	}()

	state, err := readState(ctx, fx, spec.Name, candidates)
	if errors.Is(err, ErrNotRepository) {
		return core.Failed{Repo: spec.Name, Reason: ErrNotRepository.Error()}, nil
	}
	if err != nil {
		return core.Failed{Repo: spec.Name, Reason: "cannot read repository state", Err: err}, nil
	}
	slog.Debug("repository state",
		"repo", state.Name,
		"current", state.CurrentBranch,
		"resolved", state.ResolvedBranch,
		"dirty", state.HasLocalChanges,
		"localBranch", state.LocalBranchExists,
	)

	plan := core.PlanReconcile(core.ReconcileContext{State: state, Options: opts})

	if opts.DryRun {
		printPlan(fx, spec.Name, plan)
		return predictOutcome(spec.Name, plan), nil
	}

	out = effects.ExecutePlan(ctx, spec.Name, plan, fx)
	return core.AddWarnings(out, acquireWarnings...), nil
}

// Inspect derives the state of one repository without changing anything.
func Inspect(ctx context.Context, fx effects.Effects, spec config.RepositorySpec, candidates []string) (state core.RepositoryState, err error) {
	if !fx.DirExists(spec.Name) {
		return core.RepositoryState{Name: spec.Name, Candidates: candidates}, nil
	}

	restore, err := workdir.Enter(fx, spec.Name)
	if err != nil {
		return core.RepositoryState{}, err
	}
	defer func() {
		if restoreErr := restore(); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	return readState(ctx, fx, spec.Name, candidates)
}

// readState queries the repository in the working directory. Candidates are
// checked on the remote in order and the first one found wins.
//
// The working directory must be a working tree root. Otherwise git would act
// on whatever repository encloses it.
func readState(ctx context.Context, fx effects.Effects, name string, candidates []string) (core.RepositoryState, error) {
	state := core.RepositoryState{
		Name:       name,
		Exists:     true,
		Candidates: candidates,
	}

	root, err := fx.IsRepositoryRoot(ctx)
	if err != nil {
		return state, fmt.Errorf("failed to check for a working tree: %w", err)
	}
	if !root {
		return state, fmt.Errorf("%s: %w", name, ErrNotRepository)
	}

	onRemote := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		found, err := fx.RemoteBranchExists(ctx, c)
		if err != nil {
			return state, fmt.Errorf("failed to query origin for %s: %w", c, err)
		}
		if found {
			onRemote[c] = true
			break
		}
	}
	state.ResolvedBranch, _ = core.ResolveBranch(candidates, onRemote)

	current, err := fx.CurrentBranch(ctx)
	if err != nil {
		return state, fmt.Errorf("failed to read current branch: %w", err)
	}
	state.CurrentBranch = current

	dirty, err := fx.HasLocalChanges(ctx)
	if err != nil {
		return state, fmt.Errorf("failed to read working tree status: %w", err)
	}
	state.HasLocalChanges = dirty

	if state.ResolvedBranch != "" && !state.OnResolvedBranch() {
		exists, err := fx.LocalBranchExists(ctx, state.ResolvedBranch)
		if err != nil {
			return state, fmt.Errorf("failed to look up local branch %s: %w", state.ResolvedBranch, err)
		}
		state.LocalBranchExists = exists
	} else if state.OnResolvedBranch() {
		state.LocalBranchExists = true
	}

	return state, nil
}

func printPlan(fx effects.Effects, name string, plan core.Plan) {
	fx.Print(fmt.Sprintf("%s:\n%s", name, core.FormatPlan(plan)))
}

// predictOutcome is the outcome a plan reaches when every action succeeds.
func predictOutcome(repo string, plan core.Plan) core.Outcome {
	for _, action := range plan.Actions {
		switch a := action.(type) {
		case core.SkipRepository:
			return core.Skipped{Repo: repo, Branch: plan.Branch, Reason: a.Reason}
		case core.Abort:
			return core.Failed{Repo: repo, Reason: a.Reason, Err: a.Err}
		}
	}
	return core.Succeeded{Repo: repo, Branch: plan.Branch}
}
