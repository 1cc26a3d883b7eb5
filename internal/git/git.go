// Package git provides the version-control backends used to acquire and
// reconcile workspace repositories. Two backends implement Client: CLI shells
// out to the git executable, GoGit works in-process with go-git.
//
// Every method takes the repository directory explicitly. An empty directory
// means the process working directory.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/m44rten1/groundwork/internal/config"
)

// RemoteName is the only remote groundwork reads from.
const RemoteName = "origin"

var (
	// ErrGitNotFound is returned when the git executable is not on PATH.
	ErrGitNotFound = errors.New("git executable not found on PATH")
	// ErrRemoteBranchMissing is returned when a tracking checkout targets a branch origin does not have.
	ErrRemoteBranchMissing = errors.New("branch does not exist on origin")
)

// Client is the set of version-control operations a workspace sync needs.
type Client interface {
	// Clone clones url into dir, which must not exist yet.
	Clone(ctx context.Context, url, dir string) error
	// IsRepositoryRoot reports whether dir is the top of a git working tree.
	// A directory nested inside another repository's working tree is not.
	IsRepositoryRoot(ctx context.Context, dir string) (bool, error)
	// RemoteBranchExists asks origin whether it has the branch.
	RemoteBranchExists(ctx context.Context, dir, branch string) (bool, error)
	// CurrentBranch returns the checked-out branch, or "" when HEAD is detached.
	CurrentBranch(ctx context.Context, dir string) (string, error)
	// HasLocalChanges reports staged, unstaged or untracked changes.
	HasLocalChanges(ctx context.Context, dir string) (bool, error)
	LocalBranchExists(ctx context.Context, dir, branch string) (bool, error)
	// DiscardChanges resets tracked files to HEAD and deletes untracked files and directories.
	DiscardChanges(ctx context.Context, dir string) error
	// CheckoutTracking creates branch from origin/branch with upstream tracking and switches to it.
	CheckoutTracking(ctx context.Context, dir, branch string) error
	// CheckoutExisting switches to an existing local branch.
	CheckoutExisting(ctx context.Context, dir, branch string) error
	// Pull pulls branch from origin into the current branch.
	Pull(ctx context.Context, dir, branch string) error
}

// New returns the backend registered under name.
func New(name string, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch name {
	case config.BackendExec, "":
		return NewCLI(logger), nil
	case config.BackendGoGit:
		return NewGoGit(logger), nil
	default:
		return nil, config.ValidateBackend(name)
	}
}

// LookPath checks that the git executable is available.
func LookPath() (string, error) {
	path, err := exec.LookPath("git")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGitNotFound, err)
	}
	return path, nil
}
