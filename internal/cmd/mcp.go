package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pydiff/pydiff/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This allows AI agents to request semantic Python diffs through MCP tools
instead of spawning CLI commands.

Available Tools:
  pydiff_module      Compare two module sources
  pydiff_function    Compare two single-function sources
  pydiff_directory   Compare two directory trees
  pydiff_repo        Compare two git revisions

Examples:
  pydiff mcp                             # Start with all tools
  pydiff mcp --tools module,function     # Start with specific tools only
  pydiff mcp --timeout 30m               # Auto-stop after 30 minutes idle`,
	RunE: runMCP,
}

var (
	mcpTools   string
	mcpTimeout string
)

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	mcpCmd.Flags().StringVar(&mcpTimeout, "timeout", "0", "Inactivity timeout (0 for no timeout)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}

	timeout, err := parseTimeout(mcpTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	var tools []string
	if mcpTools != "" {
		for _, t := range strings.Split(mcpTools, ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			// Allow shorthand (module -> pydiff_module)
			if !strings.HasPrefix(t, "pydiff_") {
				t = "pydiff_" + t
			}
			tools = append(tools, t)
		}
	}

	differ, cleanup := s.newDiffer(nil, false)
	defer cleanup()

	server, err := mcp.New(mcp.Config{
		Differ:  differ,
		Tools:   tools,
		Timeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Log startup info to stderr (stdout is for MCP protocol)
	fmt.Fprintf(os.Stderr, "pydiff mcp: starting server\n")
	fmt.Fprintf(os.Stderr, "pydiff mcp: tools: %v\n", server.ListTools())
	if timeout > 0 {
		fmt.Fprintf(os.Stderr, "pydiff mcp: timeout: %v\n", timeout)
	}

	return server.ServeStdio()
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
