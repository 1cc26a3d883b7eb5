package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CLI runs the git executable. Commands target a directory via "git -C".
type CLI struct {
	logger *slog.Logger
}

// NewCLI returns a Client backed by the git executable.
func NewCLI(logger *slog.Logger) *CLI {
	return &CLI{logger: logger}
}

// run executes git and returns trimmed stdout. Stderr is captured separately
// and included in the error. The *exec.ExitError stays reachable through errors.As.
func (c *CLI) run(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := args
	if dir != "" {
		fullArgs = append([]string{"-C", dir}, args...)
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr
	// Never block on a credential prompt; a failing remote falls through to the next URL.
	command.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	start := time.Now()
	err := command.Run()
	c.logger.Debug("git",
		"args", args,
		"dir", dir,
		"duration", time.Since(start),
		"exit", exitCode(err),
	)
	if err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// exitCode returns the process exit status, 0 for nil and -1 when the process did not run.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (c *CLI) Clone(ctx context.Context, url, dir string) error {
	_, err := c.run(ctx, "", CloneArgs(url, dir)...)
	return err
}

func (c *CLI) IsRepositoryRoot(ctx context.Context, dir string) (bool, error) {
	out, err := c.run(ctx, dir, ShowToplevelArgs()...)
	if exitCode(err) == 128 {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	want := dir
	if want == "" {
		want = "."
	}
	want, err = filepath.Abs(want)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return samePath(filepath.FromSlash(out), want), nil
}

// samePath compares two absolute paths after resolving symlinks.
func samePath(a, b string) bool {
	if resolved, err := filepath.EvalSymlinks(a); err == nil {
		a = resolved
	}
	if resolved, err := filepath.EvalSymlinks(b); err == nil {
		b = resolved
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func (c *CLI) RemoteBranchExists(ctx context.Context, dir, branch string) (bool, error) {
	out, err := c.run(ctx, dir, LsRemoteArgs(branch)...)
	if err != nil {
		return false, err
	}
	return HasRef(out, BranchRef(branch)), nil
}

func (c *CLI) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := c.run(ctx, dir, CurrentBranchArgs()...)
	switch exitCode(err) {
	case 0:
		return out, nil
	case 1:
		return "", nil
	default:
		return "", err
	}
}

func (c *CLI) HasLocalChanges(ctx context.Context, dir string) (bool, error) {
	out, err := c.run(ctx, dir, StatusArgs()...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (c *CLI) LocalBranchExists(ctx context.Context, dir, branch string) (bool, error) {
	_, err := c.run(ctx, dir, VerifyLocalBranchArgs(branch)...)
	switch exitCode(err) {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, err
	}
}

func (c *CLI) DiscardChanges(ctx context.Context, dir string) error {
	return c.runAll(ctx, dir, DiscardArgs())
}

func (c *CLI) CheckoutTracking(ctx context.Context, dir, branch string) error {
	return c.runAll(ctx, dir, CheckoutTrackingArgs(branch))
}

func (c *CLI) CheckoutExisting(ctx context.Context, dir, branch string) error {
	_, err := c.run(ctx, dir, CheckoutArgs(branch)...)
	return err
}

func (c *CLI) Pull(ctx context.Context, dir, branch string) error {
	_, err := c.run(ctx, dir, PullArgs(branch)...)
	return err
}

func (c *CLI) runAll(ctx context.Context, dir string, commands [][]string) error {
	for _, args := range commands {
		if _, err := c.run(ctx, dir, args...); err != nil {
			return err
		}
	}
	return nil
}
