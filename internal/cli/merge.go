package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/observability"
	"github.com/matzehuels/buildpath/pkg/paths"
)

type mergeOpts struct {
	outputOpts
	path      string
	overrides []string
	jobs      int
}

// mergeCommand creates the "merge" command.
func (c *CLI) mergeCommand() *cobra.Command {
	opts := mergeOpts{outputOpts: outputOpts{format: FormatList}, path: model.DefaultFrom, jobs: 4}

	cmd := &cobra.Command{
		Use:   "merge <descriptor|identity>...",
		Short: "Resolve several roots and merge their paths",
		Long: `Merge resolves the same path of every root concurrently and merges the
results into one flat path. When an artifact is resolved at more than one
version, the declaring chains leading to each version are printed and the
command fails.`,
		Example: `  buildpath merge core.toml plugin.toml --path runtime`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMerge(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.path, "path", "p", opts.path, "path id to resolve for every root")
	cmd.Flags().StringArrayVar(&opts.overrides, "override", nil, "version override group:name[:type]=version (repeatable)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "roots resolved concurrently")
	addOutputFlags(cmd, &opts.outputOpts)
	return cmd
}

func (c *CLI) runMerge(cmd *cobra.Command, args []string, opts mergeOpts) error {
	if err := opts.validate(); err != nil {
		return err
	}
	overrides, err := parseOverrides(opts.overrides)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	repo, closeRepo, err := c.newRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	roots := make([]*model.Artifact, len(args))
	for i, arg := range args {
		if roots[i], err = loadRoot(ctx, repo, arg); err != nil {
			return err
		}
	}

	r := c.newResolver(repo, overrides)
	prog := newProgress(logger)
	resolved := make([]*model.ResolvedPath, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.jobs, 1))
	for i, root := range roots {
		g.Go(func() error {
			p, err := r.ResolvePath(gctx, opts.path, root)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", root.ID, err)
			}
			resolved[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	merged, err := paths.Merge(resolved...)
	conflicts := 0
	if ce := conflictOf(err); ce != nil {
		conflicts = len(ce.Conflicts)
	}
	observability.Resolve().OnMerge(ctx, len(resolved), conflicts)
	if err != nil {
		return err
	}
	prog.done("merged", "paths", len(resolved), "artifacts", merged.Len())

	if err := opts.write(ctx, cmd.OutOrStdout(), merged); err != nil {
		return err
	}
	summarize(merged)
	return nil
}
