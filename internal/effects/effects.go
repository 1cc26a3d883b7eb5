package effects

import (
	"context"

	"github.com/m44rten1/groundwork/internal/config"
)

// Effects defines all side effects that a workspace sync can perform.
// This interface enables testing by allowing mock implementations.
type Effects interface {
	// Git operations act on the repository in the process working directory,
	// except Clone, which creates dir relative to it.
	Clone(ctx context.Context, url, dir string) error
	// IsRepositoryRoot reports whether the working directory is the top of a
	// git working tree, not a directory inside some enclosing repository.
	IsRepositoryRoot(ctx context.Context) (bool, error)
	RemoteBranchExists(ctx context.Context, branch string) (bool, error)
	// CurrentBranch returns "" when HEAD is detached.
	CurrentBranch(ctx context.Context) (string, error)
	HasLocalChanges(ctx context.Context) (bool, error)
	LocalBranchExists(ctx context.Context, branch string) (bool, error)
	DiscardChanges(ctx context.Context) error
	CheckoutTracking(ctx context.Context, branch string) error
	CheckoutExisting(ctx context.Context, branch string) error
	Pull(ctx context.Context, branch string) error

	// File system and process state
	DirExists(path string) bool
	Getwd() (string, error)
	Chdir(dir string) error

	// Output
	// Print and PrintErr are best-effort operations that write to stdout/stderr.
	// They do not return errors for broken pipes or other output failures.
	Print(msg string)
	PrintErr(msg string)

	// Interactive (kept at edge)
	// SelectRepositories lets the user pick specs and returns their indexes.
	SelectRepositories(specs []config.RepositorySpec) ([]int, error)
}
