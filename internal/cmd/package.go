package cmd

import (
	"github.com/spf13/cobra"
)

// packageCmd represents the package command
var packageCmd = &cobra.Command{
	Use:   "package OLD NEW",
	Short: "Compare two Python package directories",
	Long: `Compare two versions of a Python package (a directory containing
__init__.py) and report which of its modules appeared, disappeared,
or changed.

Only the package's direct module files are compared; subpackages are
not descended into. Use 'pydiff dir' to compare whole trees.

Examples:
  pydiff package old/mypkg new/mypkg`,
	Args: cobra.ExactArgs(2),
	RunE: runPackage,
}

var packageNoCache bool

func init() {
	rootCmd.AddCommand(packageCmd)

	packageCmd.Flags().BoolVar(&packageNoCache, "no-cache", false, "Skip the diff cache")
}

func runPackage(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}

	differ, cleanup := s.newDiffer(nil, packageNoCache)
	defer cleanup()

	report, err := differ.Package(args[0], args[1])
	if err != nil {
		return err
	}
	if report.Empty() {
		return s.emitReport(cmd.OutOrStdout(), "", false)
	}
	return s.emitReport(cmd.OutOrStdout(), report.Text(), true)
}
