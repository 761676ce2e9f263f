package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pydiff/pydiff/internal/semdiff"
)

// functionCmd represents the function command
var functionCmd = &cobra.Command{
	Use:   "function OLD NEW",
	Short: "Compare two single-function files",
	Long: `Compare two Python files, each containing exactly one top-level
function definition, and report how the function changed.

Reported changes:
  - the function was renamed
  - the implementation changed semantically
  - references to one imported name were replaced with another
  - the set of imported names the body uses changed

Examples:
  pydiff function old_process.py new_process.py`,
	Args: cobra.ExactArgs(2),
	RunE: runFunction,
}

func init() {
	rootCmd.AddCommand(functionCmd)
}

func runFunction(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}

	oldSource, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	newSource, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}

	diff, err := semdiff.DiffFunctionSources(oldSource, newSource)
	if err != nil {
		return err
	}
	if diff.Empty() {
		return s.emitReport(cmd.OutOrStdout(), "", false)
	}
	return s.emitReport(cmd.OutOrStdout(), diff.Text(), true)
}
