package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/pathspec"
)

// shorthandCommand creates the "shorthand" command.
func (c *CLI) shorthandCommand() *cobra.Command {
	var relative bool

	cmd := &cobra.Command{
		Use:   "shorthand <text>...",
		Short: "Parse path spec shorthands",
		Long: `Shorthand parses path spec shorthands and prints their fields together
with the canonical form.

Grammar: to[?|!][<|+|=][from][(option,...)]
  ?  not mandatory        !  mandatory
  <  descend              +  do not descend     =  path default
  from defaults to runtime; options are [-][group:]name[@version] tokens,
  each optionally followed by a nested (option,...) group.

With --relative the "to" token is "*".`,
		Example: `  buildpath shorthand 'compile?+test(junit,-hamcrest)'
  buildpath shorthand --relative '*<compile(org.example:lib@2.0)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable("Input", "To", "From", "Descend", "Mandatory", "Options", "Canonical")
			for _, arg := range args {
				parse, format := pathspec.Parse, pathspec.Format
				if relative {
					parse, format = pathspec.ParseRelative, pathspec.FormatRelative
				}
				s, err := parse(arg)
				if err != nil {
					return err
				}
				if _, err := pathspec.ParseOptions(s.Options); err != nil {
					return err
				}
				from := s.From
				if from == "" {
					from = model.DefaultFrom
				}
				t.Row(arg, s.To, from, triState(s.Descend), triState(s.Mandatory), s.Options, format(s, nil))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}

	cmd.Flags().BoolVar(&relative, "relative", false, "parse root-relative shorthands")
	return cmd
}
