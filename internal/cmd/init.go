package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pydiff/pydiff/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .pydiff directory with a default config",
	Long: `Create a .pydiff directory in the current directory and write a
default config.yaml into it.

The .pydiff directory also holds the module diff cache. Commands look
for it in the current directory and its parents, so running init at a
project root configures the whole tree.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := config.SaveDefault(".")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
