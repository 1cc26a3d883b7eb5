// Package cmd implements the groundwork command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/m44rten1/groundwork/internal/config"
	"github.com/m44rten1/groundwork/internal/effects"
	"github.com/m44rten1/groundwork/internal/git"
	"github.com/m44rten1/groundwork/internal/logging"

	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags and the streams every command writes to.
type globalOptions struct {
	workspace string
	manifest  string
	verbose   bool

	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// Run executes the command line in args and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	g := &globalOptions{stdout: stdout, stderr: stderr, logger: slog.Default()}

	rootCmd := &cobra.Command{
		Use:   "groundwork",
		Short: "Clone and update a workspace of related repositories",
		Long: `groundwork bootstraps a developer workspace.

It clones every repository listed in the workspace manifest next to each other,
then keeps each one on the first branch of the manifest's preference list that
exists on origin. Local changes are never discarded unless --force is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.logger = logging.NewLogger(stderr, g.verbose)
			slog.SetDefault(g.logger)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&g.workspace, "workspace", "C", "", "workspace directory (default is the current directory)")
	rootCmd.PersistentFlags().StringVar(&g.manifest, "manifest", "", "path to the workspace manifest")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log every git invocation")

	rootCmd.AddCommand(
		newSyncCmd(g),
		newStatusCmd(g),
		newListCmd(g),
		newVersionCmd(g),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if code, ok := effects.IsExit(err); ok {
			return code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// workspaceDir returns the absolute workspace directory and checks that it exists.
func (g *globalOptions) workspaceDir() (string, error) {
	dir := g.workspace
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workspace directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace directory %s is not a directory", abs)
	}
	return abs, nil
}

// loadManifest resolves the workspace and reads its manifest.
func (g *globalOptions) loadManifest() (string, *config.Manifest, error) {
	dir, err := g.workspaceDir()
	if err != nil {
		return "", nil, err
	}
	m, err := config.Load(g.manifest, dir)
	if err != nil {
		return "", nil, err
	}
	if m.IsSample() {
		g.logger.Warn("no workspace manifest found; using the built-in sample manifest with placeholder remotes",
			"workspace", dir, "file", config.FileName)
	}
	g.logger.Debug("manifest loaded", "source", m.Source, "repositories", len(m.Repositories), "branches", m.Branches)
	return dir, m, nil
}

// newClient returns the git backend named by override, or by the manifest
// when override is empty. The exec backend requires git on PATH.
func (g *globalOptions) newClient(m *config.Manifest, override string) (git.Client, error) {
	backend := m.Backend
	if override != "" {
		backend = override
	}
	if err := config.ValidateBackend(backend); err != nil {
		return nil, err
	}
	if backend == config.BackendExec {
		if _, err := git.LookPath(); err != nil {
			return nil, err
		}
	}
	return git.New(backend, g.logger)
}
