package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pydiff/pydiff/internal/gitrepo"
)

// repoCmd represents the repo command
var repoCmd = &cobra.Command{
	Use:   "repo REPOSITORY OLD_REV NEW_REV",
	Short: "Compare two revisions of a git repository",
	Long: `Clone a git repository, check out two revisions, and compare the
Python code between them as directory trees.

The repository may be a URL or a local path. Revisions are anything
git checkout accepts: commits, tags, or branches.

Examples:
  pydiff repo https://example.org/proj.git v1.0 v2.0
  pydiff repo . HEAD~5 HEAD --exclude 'test_*.py'`,
	Args: cobra.ExactArgs(3),
	RunE: runRepo,
}

var (
	repoExclude []string
	repoNoCache bool
)

func init() {
	rootCmd.AddCommand(repoCmd)

	repoCmd.Flags().StringArrayVar(&repoExclude, "exclude", nil, "Glob pattern for paths to skip (repeatable)")
	repoCmd.Flags().BoolVar(&repoNoCache, "no-cache", false, "Skip the diff cache")
}

func runRepo(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}

	differ, cleanup := s.newDiffer(repoExclude, repoNoCache)
	defer cleanup()

	report, err := gitrepo.Compare(differ, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	if report.Empty() {
		return s.emitReport(cmd.OutOrStdout(), "", false)
	}
	return s.emitReport(cmd.OutOrStdout(), report.Text(), true)
}
