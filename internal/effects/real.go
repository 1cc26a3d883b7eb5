package effects

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/m44rten1/groundwork/internal/config"
	"github.com/m44rten1/groundwork/internal/git"
	"github.com/m44rten1/groundwork/internal/tui"
)

// RealEffects implements Effects by delegating to a git backend and the OS.
// This is the production implementation used by CLI commands.
type RealEffects struct {
	git    git.Client
	stdout io.Writer
	stderr io.Writer
}

// NewRealEffects creates a new RealEffects instance.
func NewRealEffects(client git.Client, stdout, stderr io.Writer) *RealEffects {
	return &RealEffects{git: client, stdout: stdout, stderr: stderr}
}

func (r *RealEffects) Clone(ctx context.Context, url, dir string) error {
	return r.git.Clone(ctx, url, dir)
}

func (r *RealEffects) IsRepositoryRoot(ctx context.Context) (bool, error) {
	return r.git.IsRepositoryRoot(ctx, "")
}

func (r *RealEffects) RemoteBranchExists(ctx context.Context, branch string) (bool, error) {
	return r.git.RemoteBranchExists(ctx, "", branch)
}

func (r *RealEffects) CurrentBranch(ctx context.Context) (string, error) {
	return r.git.CurrentBranch(ctx, "")
}

func (r *RealEffects) HasLocalChanges(ctx context.Context) (bool, error) {
	return r.git.HasLocalChanges(ctx, "")
}

func (r *RealEffects) LocalBranchExists(ctx context.Context, branch string) (bool, error) {
	return r.git.LocalBranchExists(ctx, "", branch)
}

func (r *RealEffects) DiscardChanges(ctx context.Context) error {
	return r.git.DiscardChanges(ctx, "")
}

func (r *RealEffects) CheckoutTracking(ctx context.Context, branch string) error {
	return r.git.CheckoutTracking(ctx, "", branch)
}

func (r *RealEffects) CheckoutExisting(ctx context.Context, branch string) error {
	return r.git.CheckoutExisting(ctx, "", branch)
}

func (r *RealEffects) Pull(ctx context.Context, branch string) error {
	return r.git.Pull(ctx, "", branch)
}

// DirExists returns true only if path exists and is a directory.
func (r *RealEffects) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (r *RealEffects) Getwd() (string, error) {
	return os.Getwd()
}

func (r *RealEffects) Chdir(dir string) error {
	return os.Chdir(dir)
}

func (r *RealEffects) Print(msg string) {
	fmt.Fprintln(r.stdout, msg)
}

func (r *RealEffects) PrintErr(msg string) {
	fmt.Fprintln(r.stderr, msg)
}

func (r *RealEffects) SelectRepositories(specs []config.RepositorySpec) ([]int, error) {
	return tui.SelectMany(specs, specLabel)
}

func specLabel(s config.RepositorySpec) string {
	return fmt.Sprintf("%s  %s", s.Name, s.PrimaryURL)
}
