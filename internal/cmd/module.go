package cmd

import (
	"github.com/spf13/cobra"
)

// moduleCmd represents the module command
var moduleCmd = &cobra.Command{
	Use:   "module OLD NEW",
	Short: "Compare two Python module files",
	Long: `Compare two versions of a Python module file and report semantic
differences in imports, classes, and top-level functions.

Reordering definitions, comments, and formatting changes produce no
output. Statement-level changes inside the module body are reported
only where they affect a function or method implementation.

Examples:
  pydiff module old/app.py new/app.py
  pydiff module old/app.py new/app.py --no-cache`,
	Args: cobra.ExactArgs(2),
	RunE: runModule,
}

var moduleNoCache bool

func init() {
	rootCmd.AddCommand(moduleCmd)

	moduleCmd.Flags().BoolVar(&moduleNoCache, "no-cache", false, "Skip the diff cache")
}

func runModule(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}

	differ, cleanup := s.newDiffer(nil, moduleNoCache)
	defer cleanup()

	text, changed, err := differ.Module(args[0], args[1])
	if err != nil {
		return err
	}
	return s.emitReport(cmd.OutOrStdout(), text, changed)
}
