package core

import "errors"

// Common error variables used across the planners
var (
	ErrEmptyRepoName = errors.New("repository name cannot be empty")
	ErrNoRemoteURL   = errors.New("repository has no remote URL")
	ErrNoCandidates  = errors.New("no branch candidates configured")
)

// FailurePolicy decides what a failed git action does to the repository outcome.
type FailurePolicy int

const (
	// FailRepository ends the repository with a Failed outcome.
	FailRepository FailurePolicy = iota
	// WarnAndContinue records a warning and runs the remaining actions.
	WarnAndContinue
	// WarnAndStop records a warning and drops the remaining actions.
	// The outcome stays Succeeded.
	WarnAndStop
)

func (p FailurePolicy) String() string {
	switch p {
	case FailRepository:
		return "fail"
	case WarnAndContinue:
		return "warn"
	case WarnAndStop:
		return "warn+stop"
	default:
		return "unknown"
	}
}

// Action represents a single operation to perform.
// This is a sum type implemented via interface for type safety.
type Action interface {
	isAction()
}

// PrintMessage prints a progress message to stdout.
type PrintMessage struct {
	Msg string
}

func (PrintMessage) isAction() {}

// CloneRepository clones into Dir, trying each URL in order until one works.
// Failing on every URL fails the repository.
type CloneRepository struct {
	Dir  string
	URLs []string
}

func (CloneRepository) isAction() {}

// DiscardChanges resets tracked files to HEAD and removes untracked files and directories.
type DiscardChanges struct {
	Policy FailurePolicy
}

func (DiscardChanges) isAction() {}

// CheckoutBranch switches to Branch. With Create, a local branch tracking
// origin/Branch is created first.
type CheckoutBranch struct {
	Branch string
	Create bool
	Policy FailurePolicy
}

func (CheckoutBranch) isAction() {}

// PullBranch pulls Branch from origin into the current branch.
type PullBranch struct {
	Branch string
	Policy FailurePolicy
}

func (PullBranch) isAction() {}

// SkipRepository ends the plan with a Skipped outcome. Nothing after it runs.
type SkipRepository struct {
	Reason string
}

func (SkipRepository) isAction() {}

// Abort ends the plan with a Failed outcome carrying Reason and Err.
type Abort struct {
	Reason string
	Err    error
}

func (Abort) isAction() {}

// Plan represents a sequence of actions to execute for one repository.
type Plan struct {
	// Branch is the branch the plan converges to, empty before resolution.
	Branch  string
	// From is the branch checked out when the plan was made, empty when detached.
	From    string
	Actions []Action
}

// IsDestructive reports whether an action can throw away local work.
func IsDestructive(a Action) bool {
	_, ok := a.(DiscardChanges)
	return ok
}
