package cmd

import (
	"github.com/m44rten1/groundwork/internal/ui"

	"github.com/spf13/cobra"
)

func newListCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the repositories of the workspace manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, err := g.loadManifest()
			if err != nil {
				return err
			}
			ui.RenderManifestTable(g.stdout, m)
			return nil
		},
	}
}
