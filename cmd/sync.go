package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/m44rten1/groundwork/internal/config"
	"github.com/m44rten1/groundwork/internal/core"
	"github.com/m44rten1/groundwork/internal/effects"
	"github.com/m44rten1/groundwork/internal/tui"
	"github.com/m44rten1/groundwork/internal/ui"
	"github.com/m44rten1/groundwork/internal/workdir"
	"github.com/m44rten1/groundwork/internal/workspace"

	"github.com/spf13/cobra"
)

type syncOptions struct {
	force   bool
	quiet   bool
	dryRun  bool
	json    bool
	pick    bool
	backend string
}

func newSyncCmd(g *globalOptions) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync [name...]",
		Short: "Clone missing repositories and bring each one onto its branch",
		Long: `Clone every repository of the manifest that is missing from the workspace,
then switch each one to the first preferred branch that exists on origin and pull it.

A repository with local changes on another branch is skipped, unless --force is
given, in which case the changes are discarded first. Local changes on the
preferred branch are always kept.

Exit status is 0 when every repository succeeded and 1 otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, g, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "discard local changes when a branch switch is needed")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print the outcome of each repository")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the planned actions without running them")
	cmd.Flags().BoolVar(&opts.json, "json", false, "write the run report as JSON to stdout")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the repositories to sync interactively")
	cmd.Flags().StringVar(&opts.backend, "backend", "", fmt.Sprintf("git backend, %s or %s (default from the manifest)", config.BackendExec, config.BackendGoGit))

	return cmd
}

func runSync(cmd *cobra.Command, g *globalOptions, opts syncOptions, names []string) error {
	dir, m, err := g.loadManifest()
	if err != nil {
		return err
	}
	specs, err := m.Select(names)
	if err != nil {
		return err
	}
	client, err := g.newClient(m, opts.backend)
	if err != nil {
		return err
	}

	// With --json the report is the only thing on stdout.
	out := g.stdout
	if opts.json {
		out = g.stderr
	}
	fx := effects.NewRealEffects(client, out, g.stderr)

	if opts.pick {
		idxs, err := fx.SelectRepositories(specs)
		if err != nil && !errors.Is(err, tui.ErrCancelled) {
			return fmt.Errorf("failed to select repositories: %w", err)
		}
		if len(idxs) == 0 {
			fx.PrintErr("No repositories selected.")
			return nil
		}
		picked := make([]config.RepositorySpec, 0, len(idxs))
		for _, i := range idxs {
			picked = append(picked, specs[i])
		}
		specs = picked
	}

	restore, err := workdir.Enter(fx, dir)
	if err != nil {
		return fmt.Errorf("cannot enter workspace: %w", err)
	}

	report, runErr := workspace.Sync(cmd.Context(), fx, specs, m.Branches, core.RunOptions{
		Force:  opts.force,
		Quiet:  opts.quiet,
		DryRun: opts.dryRun,
	})
	if err := restore(); err != nil && runErr == nil {
		runErr = err
	}

	if opts.json {
		encoder := json.NewEncoder(g.stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		fx.Print(ui.FormatCounts(report.Counts()))
	}

	if runErr != nil {
		return runErr
	}
	if !report.AllSucceeded() {
		return effects.ExitError{Code: 1}
	}
	return nil
}
