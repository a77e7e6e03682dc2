package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/pathspec"
)

type resolveOpts struct {
	outputOpts
	path        string
	specs       []string
	overrides   []string
	interactive bool
}

// resolveCommand creates the "resolve" command.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := resolveOpts{outputOpts: outputOpts{format: FormatTree}}

	cmd := &cobra.Command{
		Use:   "resolve <descriptor|identity>",
		Short: "Resolve one path of an artifact",
		Long: `Resolve flattens the dependency graph below a root artifact along one path.

The root is a TOML or YAML descriptor file, or an identity such as
org.example:app:1.0 looked up in the repository chain. With --spec, each
root-relative shorthand (e.g. "*<compile(junit)") is resolved and the
results are merged; version conflicts between them are reported.`,
		Example: `  buildpath resolve app.toml --path runtime
  buildpath resolve org.example:app:1.0 --format table
  buildpath resolve app.toml --spec '*<compile' --spec '*+test(junit)'
  buildpath resolve app.toml --override org.slf4j:slf4j-api=2.0.13 -o graph.svg --format svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.path, "path", "p", "", "path id to resolve (default: runtime)")
	cmd.Flags().StringArrayVar(&opts.specs, "spec", nil, "root-relative path spec shorthand (repeatable)")
	cmd.Flags().StringArrayVar(&opts.overrides, "override", nil, "version override group:name[:type]=version (repeatable)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the path interactively")
	addOutputFlags(cmd, &opts.outputOpts)
	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, arg string, opts resolveOpts) error {
	if err := opts.validate(); err != nil {
		return err
	}
	overrides, err := parseOverrides(opts.overrides)
	if err != nil {
		return err
	}
	specs, err := parseSpecs(opts.specs)
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

	root, err := loadRoot(ctx, repo, arg)
	if err != nil {
		return err
	}

	pathID := opts.path
	if pathID == "" && opts.interactive {
		if pathID, err = pickPath(root); err != nil {
			return err
		}
		if pathID == "" {
			printInfo("Cancelled")
			return nil
		}
	}
	if pathID == "" {
		pathID = model.DefaultFrom
	}

	r := c.newResolver(repo, overrides)
	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %s", root.ID))
	spinner.Start()

	var resolved *model.ResolvedPath
	if len(specs) > 0 {
		resolved, err = r.ResolveGroup(ctx, root, specs)
	} else {
		resolved, err = r.ResolvePath(ctx, pathID, root)
	}
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("resolved", "label", resolved.Label, "artifacts", resolved.Len())

	if err := opts.write(ctx, cmd.OutOrStdout(), resolved); err != nil {
		return err
	}
	summarize(resolved)
	return nil
}

func addOutputFlags(cmd *cobra.Command, o *outputOpts) {
	cmd.Flags().StringVarP(&o.format, "format", "f", o.format, "output format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "include metadata in dot/svg node labels")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formats, cobra.ShellCompDirectiveNoFileComp
	})
}

// parseOverrides parses "group:name[:type]=version" flags into overrides
// applying to every path.
func parseOverrides(flags []string) ([]*model.Override, error) {
	var out []*model.Override
	for _, f := range flags {
		pattern, version, ok := strings.Cut(f, "=")
		if !ok || version == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "override %q: expected group:name[:type]=version", f)
		}
		id, err := model.ParsePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", f, err)
		}
		if err := errors.ValidateVersion(version); err != nil {
			return nil, fmt.Errorf("override %q: %w", f, err)
		}
		out = append(out, &model.Override{
			Paths:       []string{model.AllPaths},
			Pattern:     id,
			WithVersion: version,
		})
	}
	return out, nil
}

func parseSpecs(flags []string) ([]*model.PathSpec, error) {
	specs := make([]*model.PathSpec, 0, len(flags))
	for _, f := range flags {
		s, err := pathspec.ParseRelative(f)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}
