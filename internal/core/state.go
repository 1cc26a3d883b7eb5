package core

// RepositoryState is everything the planner needs to know about one local repository.
// It is derived fresh on every run and never persisted.
type RepositoryState struct {
	Name   string
	Exists bool

	// Candidates is the branch preference list, highest priority first.
	Candidates []string
	// ResolvedBranch is the first candidate present on the remote, empty if none.
	ResolvedBranch string
	// CurrentBranch is empty when HEAD is detached.
	CurrentBranch string

	HasLocalChanges   bool
	LocalBranchExists bool
}

// OnResolvedBranch reports whether the repository is already on its resolved branch.
// A detached HEAD never is.
func (s RepositoryState) OnResolvedBranch() bool {
	return s.CurrentBranch != "" && s.CurrentBranch == s.ResolvedBranch
}

// RunOptions are fixed for one invocation.
type RunOptions struct {
	// Force allows discarding local changes.
	Force bool
	// Quiet suppresses narration. Outcome lines are still printed.
	Quiet bool
	// DryRun gathers state and prints the plan without running it.
	DryRun bool
}
