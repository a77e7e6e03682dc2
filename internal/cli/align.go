package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/paths"
)

type alignOpts struct {
	outputOpts
	path     string
	with     string
	withPath string
}

// alignCommand creates the "align" command.
func (c *CLI) alignCommand() *cobra.Command {
	opts := alignOpts{outputOpts: outputOpts{format: FormatTable}, path: model.DefaultFrom, withPath: model.DefaultFrom}

	cmd := &cobra.Command{
		Use:   "align <descriptor|identity> --with <descriptor|identity>",
		Short: "Align the versions of one path to another",
		Long: `Align resolves a path of the root and a path of the --with artifact, then
replaces every artifact of the first whose identity also occurs in the
second at another version. Replaced artifacts are marked overridden.`,
		Example: `  buildpath align plugin.toml --with core.toml --path runtime --with-path runtime`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAlign(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.path, "path", "p", opts.path, "path id of the root to align")
	cmd.Flags().StringVar(&opts.with, "with", "", "artifact whose versions win")
	cmd.Flags().StringVar(&opts.withPath, "with-path", opts.withPath, "path id of the --with artifact")
	_ = cmd.MarkFlagRequired("with")
	addOutputFlags(cmd, &opts.outputOpts)
	return cmd
}

func (c *CLI) runAlign(cmd *cobra.Command, arg string, opts alignOpts) error {
	if err := opts.validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	repo, closeRepo, err := c.newRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	root, err := loadRoot(ctx, repo, arg)
	if err != nil {
		return err
	}
	with, err := loadRoot(ctx, repo, opts.with)
	if err != nil {
		return err
	}

	r := c.newResolver(repo, nil)
	base, err := r.ResolvePath(ctx, opts.path, root)
	if err != nil {
		return err
	}
	target, err := r.ResolvePath(ctx, opts.withPath, with)
	if err != nil {
		return err
	}

	aligned, err := paths.Override(base, target)
	if err != nil {
		return fmt.Errorf("align %s with %s: %w", root.ID, with.ID, err)
	}
	if err := opts.write(ctx, cmd.OutOrStdout(), aligned); err != nil {
		return err
	}
	summarize(aligned)
	return nil
}
