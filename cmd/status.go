package cmd

import (
	"errors"
	"fmt"

	"github.com/m44rten1/groundwork/internal/core"
	"github.com/m44rten1/groundwork/internal/effects"
	"github.com/m44rten1/groundwork/internal/ui"
	"github.com/m44rten1/groundwork/internal/workdir"
	"github.com/m44rten1/groundwork/internal/workspace"

	"github.com/spf13/cobra"
)

func newStatusCmd(g *globalOptions) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "status [name...]",
		Short: "Show where each repository stands without changing anything",
		Long: `Show, for each repository of the manifest, whether it is cloned, which branch
is checked out, which branch sync would choose, and whether there are local changes.

Nothing is cloned, fetched into the working tree, or checked out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, m, err := g.loadManifest()
			if err != nil {
				return err
			}
			specs, err := m.Select(args)
			if err != nil {
				return err
			}
			client, err := g.newClient(m, backend)
			if err != nil {
				return err
			}
			fx := effects.NewRealEffects(client, g.stdout, g.stderr)

			restore, err := workdir.Enter(fx, dir)
			if err != nil {
				return fmt.Errorf("cannot enter workspace: %w", err)
			}
			defer func() {
				if err := restore(); err != nil {
					g.logger.Warn("failed to restore working directory", "error", err)
				}
			}()

			states := make([]core.RepositoryState, 0, len(specs))
			for _, spec := range specs {
				state, err := workspace.Inspect(cmd.Context(), fx, spec, m.Branches)
				if errors.Is(err, workspace.ErrNotRepository) {
					fx.PrintErr(err.Error())
					continue
				}
				if err != nil {
					return fmt.Errorf("%s: %w", spec.Name, err)
				}
				states = append(states, state)
			}

			ui.RenderStatusTable(g.stdout, states)
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "git backend (default from the manifest)")

	return cmd
}
