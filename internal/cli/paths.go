package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// pathsCommand creates the "paths" command.
func (c *CLI) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths <descriptor|identity>",
		Short: "List the paths an artifact declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, closeRepo, err := c.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			a, err := loadRoot(ctx, repo, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, StyleTitle.Render(a.ID.String()))
			if a.Description != "" {
				fmt.Fprintln(out, StyleDim.Render(a.Description))
			}
			if len(a.Paths) == 0 && len(a.Dependencies) == 0 {
				printInfo("No paths or dependencies declared")
				return nil
			}
			fmt.Fprintln(out, pathsTable(a))
			for _, o := range a.Overrides {
				printDetail("override %s", o)
			}
			return nil
		},
	}
}
