// Package cmd contains all CLI commands for pydiff.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is the current version of pydiff
	Version = "0.1.0"

	// Global flags
	configPath    string
	highlightFlag string
	formatFlag    string
	debug         bool
	forAgents     bool
)

// debugf logs to stderr when --debug is set.
func debugf(format string, args ...interface{}) {
	if debug {
		fmt.Fprintf(os.Stderr, "pydiff: "+format+"\n", args...)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pydiff",
	Short: "Semantic diff for Python source code",
	Long: `pydiff compares two versions of Python code and reports what changed
in terms a reviewer cares about: imports, classes, methods, and functions.

Unlike a textual diff, pydiff parses both versions and compares their
structure. Renaming an import alias, reordering definitions, or rewriting
"from os import path" as "import os.path" produces no noise; renaming a
function or changing its implementation is reported as exactly that.

Comparison levels:
  pydiff function OLD NEW     Compare two single-function files
  pydiff module OLD NEW       Compare two module files
  pydiff package OLD NEW      Compare two package directories
  pydiff dir OLD NEW          Compare two directory trees
  pydiff repo URL OLD NEW     Compare two revisions of a git repository

Output Format:
  Reports are plain text by default, with changed names highlighted in
  color on terminals. Use --highlight quotes for plain quoting and
  --format yaml|json for machine-readable output.

Examples:
  pydiff module old/app.py new/app.py
  pydiff dir v1/ v2/ --exclude 'test_*.py'
  pydiff repo https://example.org/proj.git v1.0 v2.0

See 'pydiff <command> --help' for command-specific options.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands. Empty defaults mean
	// "use the value from .pydiff/config.yaml".
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .pydiff/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&highlightFlag, "highlight", "", "Highlight mode (color|quotes)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "", "Output format (text|yaml|json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp outputs machine-readable JSON describing all commands
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	output := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		lines := strings.Split(cmd.Example, "\n")
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
