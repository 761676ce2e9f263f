package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pydiff/pydiff/internal/cache"
	"github.com/pydiff/pydiff/internal/config"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the module diff cache",
	Long: `Inspect or clear the module diff cache stored in the .pydiff
directory.

Module comparisons are cached by content hash, so unchanged file pairs
are not reparsed on repeated runs.`,
}

// cacheStatsCmd represents the cache stats command
var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

// cacheClearCmd represents the cache clear command
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached diffs",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCache() (*cache.Cache, error) {
	configDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("no .pydiff directory found: run 'pydiff init' first")
	}
	return cache.Open(configDir)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.GetStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cache: %s\n", c.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "Cached diffs: %d\n", stats.DiffCount)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
	return nil
}
