package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// GoGit implements Client in-process with go-git. SSH remotes authenticate
// through the running SSH agent.
type GoGit struct {
	logger *slog.Logger
}

// NewGoGit returns a Client backed by go-git.
func NewGoGit(logger *slog.Logger) *GoGit {
	return &GoGit{logger: logger}
}

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// authFor picks the auth method for a remote URL: the SSH agent for ssh
// endpoints, nothing otherwise.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func authFor(url string) (transport.AuthMethod, error) {
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, WrapError(err, "invalid remote URL")
	}
	if ep.Protocol != "ssh" {
		return nil, nil
	}

	user := ep.User
	if user == "" {
		user = "git"
	}
	auth, err := ssh.NewSSHAgentAuth(user)
	if err != nil {
		return nil, WrapError(err, "failed to create SSH agent auth")
	}
	return auth, nil
}

// trace logs an operation once it returns. Use as defer g.trace(op, dir)(&err).
func (g *GoGit) trace(op, dir string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		g.logger.Debug("go-git", "op", op, "dir", dir, "duration", time.Since(start), "error", *errp)
	}
}

// open opens the repository whose working tree root is dir. Parent
// directories are not searched.
func (g *GoGit) open(dir string) (*gogit.Repository, error) {
	if dir == "" {
		dir = "."
	}
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, WrapError(err, "failed to open repository")
	}
	return repo, nil
}

func (g *GoGit) originAuth(repo *gogit.Repository) (transport.AuthMethod, error) {
	remote, err := repo.Remote(RemoteName)
	if err != nil {
		return nil, WrapError(err, "failed to get remote configuration")
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, fmt.Errorf("remote %s has no URL", RemoteName)
	}
	return authFor(urls[0])
}

func (g *GoGit) Clone(ctx context.Context, url, dir string) (err error) {
	defer g.trace("clone", dir)(&err)

	if _, statErr := os.Stat(dir); statErr == nil {
		return fmt.Errorf("destination %s already exists", dir)
	}

	auth, err := authFor(url)
	if err != nil {
		return err
	}

	_, err = gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:        url,
		RemoteName: RemoteName,
		Auth:       auth,
	})
	if err != nil {
		// Leave no half-written directory behind so the next URL can be tried.
		_ = os.RemoveAll(dir)
		return WrapError(err, "failed to clone repository")
	}
	return nil
}

func (g *GoGit) IsRepositoryRoot(ctx context.Context, dir string) (bool, error) {
	_, err := g.open(dir)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (g *GoGit) RemoteBranchExists(ctx context.Context, dir, branch string) (found bool, err error) {
	defer g.trace("ls-remote", dir)(&err)

	repo, err := g.open(dir)
	if err != nil {
		return false, err
	}
	remote, err := repo.Remote(RemoteName)
	if err != nil {
		return false, WrapError(err, "failed to get remote configuration")
	}
	auth, err := g.originAuth(repo)
	if err != nil {
		return false, err
	}

	refs, err := remote.ListContext(ctx, &gogit.ListOptions{Auth: auth})
	if err != nil {
		return false, WrapError(err, "failed to list remote references")
	}

	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return true, nil
		}
	}
	return false, nil
}

func (g *GoGit) CurrentBranch(ctx context.Context, dir string) (string, error) {
	repo, err := g.open(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", WrapError(err, "failed to get HEAD reference")
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

func (g *GoGit) HasLocalChanges(ctx context.Context, dir string) (bool, error) {
	repo, err := g.open(dir)
	if err != nil {
		return false, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, WrapError(err, "failed to get worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return false, WrapError(err, "failed to get status")
	}
	return !status.IsClean(), nil
}

func (g *GoGit) LocalBranchExists(ctx context.Context, dir, branch string) (bool, error) {
	repo, err := g.open(dir)
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, WrapError(err, "failed to resolve branch")
	}
	return true, nil
}

func (g *GoGit) DiscardChanges(ctx context.Context, dir string) (err error) {
	defer g.trace("discard", dir)(&err)

	repo, err := g.open(dir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return WrapError(err, "failed to get worktree")
	}
	head, err := repo.Head()
	if err != nil {
		return WrapError(err, "failed to get HEAD reference")
	}

	if err := wt.Reset(&gogit.ResetOptions{Commit: head.Hash(), Mode: gogit.HardReset}); err != nil {
		return WrapError(err, "failed to reset worktree")
	}
	if err := wt.Clean(&gogit.CleanOptions{Dir: true}); err != nil {
		return WrapError(err, "failed to remove untracked files")
	}
	return nil
}

func (g *GoGit) CheckoutTracking(ctx context.Context, dir, branch string) (err error) {
	defer g.trace("checkout-tracking", dir)(&err)

	repo, err := g.open(dir)
	if err != nil {
		return err
	}
	auth, err := g.originAuth(repo)
	if err != nil {
		return err
	}

	localRef := plumbing.NewBranchReferenceName(branch)
	remoteRef := plumbing.NewRemoteReferenceName(RemoteName, branch)
	refSpec := gitconfig.RefSpec(fmt.Sprintf("+%s:%s", localRef, remoteRef))

	err = repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: RemoteName,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return WrapError(err, "failed to fetch from remote")
	}

	ref, err := repo.Reference(remoteRef, true)
	if err != nil {
		return fmt.Errorf("%s: %w", remoteRef.Short(), ErrRemoteBranchMissing)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return WrapError(err, "failed to get worktree")
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Branch: localRef, Hash: ref.Hash(), Create: true}); err != nil {
		return WrapError(err, "failed to checkout branch")
	}

	err = repo.CreateBranch(&gitconfig.Branch{
		Name:   branch,
		Remote: RemoteName,
		Merge:  localRef,
	})
	if err != nil && !errors.Is(err, gogit.ErrBranchExists) {
		return WrapError(err, "failed to configure upstream")
	}
	return nil
}

func (g *GoGit) CheckoutExisting(ctx context.Context, dir, branch string) (err error) {
	defer g.trace("checkout", dir)(&err)

	repo, err := g.open(dir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return WrapError(err, "failed to get worktree")
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch)}); err != nil {
		return WrapError(err, "failed to checkout branch")
	}
	return nil
}

func (g *GoGit) Pull(ctx context.Context, dir, branch string) (err error) {
	defer g.trace("pull", dir)(&err)

	repo, err := g.open(dir)
	if err != nil {
		return err
	}
	auth, err := g.originAuth(repo)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return WrapError(err, "failed to get worktree")
	}

	err = wt.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    RemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return WrapError(err, "failed to pull from remote")
	}
	return nil
}
