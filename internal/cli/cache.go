package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/buildpath/pkg/cache"
)

// cacheCommand creates the "cache" command group.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local caches",
		Long: `Fetched POMs and checksums are kept under <cache>/metadata, downloaded
artifact content under <cache>/content. <cache> is $XDG_CACHE_HOME/buildpath
or ~/.cache/buildpath. A Redis cache selected with --redis is not touched.`,
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var withContent bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("cache dir: %w", err)
			}
			if err := clearMetadata(filepath.Join(dir, "metadata")); err != nil {
				return err
			}
			if !withContent {
				return nil
			}
			if err := os.RemoveAll(downloadDir()); err != nil {
				return fmt.Errorf("remove content: %w", err)
			}
			printSuccess("Removed downloaded content")
			return nil
		},
	}
	cmd.Flags().BoolVar(&withContent, "content", false, "also remove downloaded artifact content")
	return cmd
}

func clearMetadata(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Metadata cache is empty")
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	printSuccess("Removed %d cached entries", n)
	printDetail("%s", dir)
	return nil
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("cache dir: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return err
		},
	}
}
