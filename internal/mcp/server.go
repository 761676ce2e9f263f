// Package mcp provides an MCP (Model Context Protocol) server for pydiff.
// This allows AI agents to request semantic Python diffs through MCP tools
// instead of CLI commands.
package mcp

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pydiff/pydiff/internal/gitrepo"
	"github.com/pydiff/pydiff/internal/output"
	"github.com/pydiff/pydiff/internal/semdiff"
	"github.com/pydiff/pydiff/internal/walk"
)

const noDifferencesMessage = "No differences found."

// Server wraps the MCP server with pydiff-specific functionality.
type Server struct {
	mcpServer    *server.MCPServer
	differ       *walk.Differ
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration.
type Config struct {
	Differ  *walk.Differ  // Differ used for directory and repository comparison
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// AllTools lists all available tools.
var AllTools = []string{"pydiff_module", "pydiff_function", "pydiff_directory", "pydiff_repo"}

// New creates a new MCP server for pydiff.
func New(cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"pydiff",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	differ := cfg.Differ
	if differ == nil {
		differ = &walk.Differ{}
	}

	s := &Server{
		mcpServer:    mcpServer,
		differ:       differ,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server.
func (s *Server) registerTool(name string) error {
	switch name {
	case "pydiff_module":
		return s.registerModuleTool()
	case "pydiff_function":
		return s.registerFunctionTool()
	case "pydiff_directory":
		return s.registerDirectoryTool()
	case "pydiff_repo":
		return s.registerRepoTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded.
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "pydiff mcp: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp.
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the list of registered tools.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"pydiff_module": {
		Name:        "pydiff_module",
		Description: "Compare two versions of a Python module and report semantic differences in imports, classes, and functions.",
		Parameters: []ParameterSchema{
			{Name: "old_source", Type: "string", Description: "Old version of the module source", Required: true},
			{Name: "new_source", Type: "string", Description: "New version of the module source", Required: true},
		},
	},
	"pydiff_function": {
		Name:        "pydiff_function",
		Description: "Compare two versions of a single Python function and report renames, implementation changes, and changed usage of imported names.",
		Parameters: []ParameterSchema{
			{Name: "old_source", Type: "string", Description: "Old version, containing exactly one function definition", Required: true},
			{Name: "new_source", Type: "string", Description: "New version, containing exactly one function definition", Required: true},
		},
	},
	"pydiff_directory": {
		Name:        "pydiff_directory",
		Description: "Compare two directory trees of Python code and report package and module level semantic differences.",
		Parameters: []ParameterSchema{
			{Name: "old_path", Type: "string", Description: "Path to the old directory tree", Required: true},
			{Name: "new_path", Type: "string", Description: "Path to the new directory tree", Required: true},
		},
	},
	"pydiff_repo": {
		Name:        "pydiff_repo",
		Description: "Compare two revisions of a git repository's Python code and report semantic differences.",
		Parameters: []ParameterSchema{
			{Name: "repository", Type: "string", Description: "Repository URL or local path to clone from", Required: true},
			{Name: "old_rev", Type: "string", Description: "Old revision (commit, tag, or branch)", Required: true},
			{Name: "new_rev", Type: "string", Description: "New revision (commit, tag, or branch)", Required: true},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the rendered diff text or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	switch name {
	case "pydiff_module":
		oldSource, newSource, err := sourcePair(args)
		if err != nil {
			return "", err
		}
		return s.executeModule(oldSource, newSource)

	case "pydiff_function":
		oldSource, newSource, err := sourcePair(args)
		if err != nil {
			return "", err
		}
		return s.executeFunction(oldSource, newSource)

	case "pydiff_directory":
		oldPath, _ := args["old_path"].(string)
		newPath, _ := args["new_path"].(string)
		if oldPath == "" || newPath == "" {
			return "", fmt.Errorf("old_path and new_path parameters are required")
		}
		return s.executeDirectory(oldPath, newPath)

	case "pydiff_repo":
		repository, _ := args["repository"].(string)
		oldRev, _ := args["old_rev"].(string)
		newRev, _ := args["new_rev"].(string)
		if repository == "" || oldRev == "" || newRev == "" {
			return "", fmt.Errorf("repository, old_rev and new_rev parameters are required")
		}
		return s.executeRepo(repository, oldRev, newRev)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func sourcePair(args map[string]interface{}) (string, string, error) {
	oldSource, _ := args["old_source"].(string)
	newSource, _ := args["new_source"].(string)
	if oldSource == "" || newSource == "" {
		return "", "", fmt.Errorf("old_source and new_source parameters are required")
	}
	return oldSource, newSource, nil
}

// registerModuleTool registers the pydiff_module tool.
func (s *Server) registerModuleTool() error {
	tool := mcp.NewTool("pydiff_module",
		mcp.WithDescription("Compare two versions of a Python module and report semantic differences in imports, classes, and functions."),
		mcp.WithString("old_source",
			mcp.Required(),
			mcp.Description("Old version of the module source"),
		),
		mcp.WithString("new_source",
			mcp.Required(),
			mcp.Description("New version of the module source"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleModule)
	return nil
}

// registerFunctionTool registers the pydiff_function tool.
func (s *Server) registerFunctionTool() error {
	tool := mcp.NewTool("pydiff_function",
		mcp.WithDescription("Compare two versions of a single Python function and report renames, implementation changes, and changed usage of imported names."),
		mcp.WithString("old_source",
			mcp.Required(),
			mcp.Description("Old version, containing exactly one function definition"),
		),
		mcp.WithString("new_source",
			mcp.Required(),
			mcp.Description("New version, containing exactly one function definition"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleFunction)
	return nil
}

// registerDirectoryTool registers the pydiff_directory tool.
func (s *Server) registerDirectoryTool() error {
	tool := mcp.NewTool("pydiff_directory",
		mcp.WithDescription("Compare two directory trees of Python code and report package and module level semantic differences."),
		mcp.WithString("old_path",
			mcp.Required(),
			mcp.Description("Path to the old directory tree"),
		),
		mcp.WithString("new_path",
			mcp.Required(),
			mcp.Description("Path to the new directory tree"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleDirectory)
	return nil
}

// registerRepoTool registers the pydiff_repo tool.
func (s *Server) registerRepoTool() error {
	tool := mcp.NewTool("pydiff_repo",
		mcp.WithDescription("Compare two revisions of a git repository's Python code and report semantic differences."),
		mcp.WithString("repository",
			mcp.Required(),
			mcp.Description("Repository URL or local path to clone from"),
		),
		mcp.WithString("old_rev",
			mcp.Required(),
			mcp.Description("Old revision (commit, tag, or branch)"),
		),
		mcp.WithString("new_rev",
			mcp.Required(),
			mcp.Description("New revision (commit, tag, or branch)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleRepo)
	return nil
}

// Tool handlers

func (s *Server) handleModule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	oldSource, newSource, err := sourcePair(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.executeModule(oldSource, newSource)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleFunction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	oldSource, newSource, err := sourcePair(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.executeFunction(oldSource, newSource)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	oldPath, ok := args["old_path"].(string)
	if !ok || oldPath == "" {
		return mcp.NewToolResultError("old_path parameter is required"), nil
	}
	newPath, ok := args["new_path"].(string)
	if !ok || newPath == "" {
		return mcp.NewToolResultError("new_path parameter is required"), nil
	}

	result, err := s.executeDirectory(oldPath, newPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleRepo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	repository, ok := args["repository"].(string)
	if !ok || repository == "" {
		return mcp.NewToolResultError("repository parameter is required"), nil
	}
	oldRev, ok := args["old_rev"].(string)
	if !ok || oldRev == "" {
		return mcp.NewToolResultError("old_rev parameter is required"), nil
	}
	newRev, ok := args["new_rev"].(string)
	if !ok || newRev == "" {
		return mcp.NewToolResultError("new_rev parameter is required"), nil
	}

	result, err := s.executeRepo(repository, oldRev, newRev)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// Execution functions (implementations)

func (s *Server) executeModule(oldSource, newSource string) (string, error) {
	diff, err := semdiff.DiffSources([]byte(oldSource), []byte(newSource))
	if err != nil {
		return "", fmt.Errorf("comparing modules: %w", err)
	}
	if diff.Empty() {
		return noDifferencesMessage, nil
	}

	text, err := diff.Text()
	if err != nil {
		return "", fmt.Errorf("rendering diff: %w", err)
	}
	return renderMarkers(text)
}

func (s *Server) executeFunction(oldSource, newSource string) (string, error) {
	diff, err := semdiff.DiffFunctionSources([]byte(oldSource), []byte(newSource))
	if err != nil {
		return "", fmt.Errorf("comparing functions: %w", err)
	}
	if diff.Empty() {
		return noDifferencesMessage, nil
	}
	return renderMarkers(diff.Text())
}

func (s *Server) executeDirectory(oldPath, newPath string) (string, error) {
	report, err := s.differ.Directory(oldPath, newPath)
	if err != nil {
		return "", fmt.Errorf("comparing directories: %w", err)
	}
	if report.Empty() {
		return noDifferencesMessage, nil
	}
	return renderMarkers(report.Text())
}

func (s *Server) executeRepo(repository, oldRev, newRev string) (string, error) {
	report, err := gitrepo.Compare(s.differ, repository, oldRev, newRev)
	if err != nil {
		return "", fmt.Errorf("comparing revisions: %w", err)
	}
	if report.Empty() {
		return noDifferencesMessage, nil
	}
	return renderMarkers(report.Text())
}

// renderMarkers converts the internal highlight markers to plain quotes.
// MCP clients consume text results, so ANSI color is never used here.
func renderMarkers(text string) (string, error) {
	return output.HighlightQuotes.Render(text)
}
