package cmd

import (
	"github.com/spf13/cobra"
)

// dirCmd represents the dir command
var dirCmd = &cobra.Command{
	Use:   "dir OLD NEW",
	Short: "Compare two directory trees of Python code",
	Long: `Compare two directory trees and report semantic differences in the
Python code they contain.

Directories containing __init__.py are treated as packages and compared
as units; remaining .py files are compared as standalone modules. Version
control and tooling directories (.git, __pycache__, .tox, and similar)
are skipped automatically.

Examples:
  pydiff dir v1/ v2/
  pydiff dir v1/ v2/ --exclude 'test_*.py' --exclude docs`,
	Args: cobra.ExactArgs(2),
	RunE: runDir,
}

var (
	dirExclude []string
	dirNoCache bool
)

func init() {
	rootCmd.AddCommand(dirCmd)

	dirCmd.Flags().StringArrayVar(&dirExclude, "exclude", nil, "Glob pattern for paths to skip (repeatable)")
	dirCmd.Flags().BoolVar(&dirNoCache, "no-cache", false, "Skip the diff cache")
}

func runDir(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}

	differ, cleanup := s.newDiffer(dirExclude, dirNoCache)
	defer cleanup()

	report, err := differ.Directory(args[0], args[1])
	if err != nil {
		return err
	}
	if report.Empty() {
		return s.emitReport(cmd.OutOrStdout(), "", false)
	}
	return s.emitReport(cmd.OutOrStdout(), report.Text(), true)
}
