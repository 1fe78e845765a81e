// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

// NewMCPServer initializes and configures the Trackline MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Trackline Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
	}

	// --- 1. Tool: metrics_series ---
	s.AddTool(mcp.NewTool("metrics_series",
		mcp.WithDescription("Replay issue status histories into weekly snapshots with severity and status-group counts per checkpoint."),
		mcp.WithString("project", mcp.Description("Project key to analyze (defaults to the configured project, or all projects when empty).")),
		mcp.WithString("issue_type", mcp.Description("Issue type to analyze (e.g. 'Defect', 'Change Request'). Defaults to the configured type.")),
		mcp.WithString("strategy", mcp.Description("Aggregation strategy. Defaults to 'baseline'."), mcp.Enum("baseline", "project", "classification")),
		mcp.WithString("as_of", mcp.Description("Snapshot instant as 2006-01-02 or RFC3339. Defaults to now.")),
	), h.handleMetricsSeries)

	// --- 2. Tool: metrics_aging ---
	s.AddTool(mcp.NewTool("metrics_aging",
		mcp.WithDescription("Average days issues spend in each status group, broken down by severity."),
		mcp.WithString("project", mcp.Description("Project key to analyze.")),
		mcp.WithString("issue_type", mcp.Description("Issue type to analyze. Defaults to the configured type.")),
		mcp.WithString("as_of", mcp.Description("Snapshot instant as 2006-01-02 or RFC3339. Defaults to now.")),
	), h.handleMetricsAging)

	// --- 3. Tool: describe_groups ---
	s.AddTool(mcp.NewTool("describe_groups",
		mcp.WithDescription("Describe how raw tracker statuses map onto status groups for a source and issue type."),
		mcp.WithString("source", mcp.Description("Issue source to describe. Defaults to the configured source."), mcp.Enum(string(schema.JiraSource), string(schema.ClearQuestSource))),
		mcp.WithString("issue_type", mcp.Description("Issue type to describe. Defaults to the configured type.")),
	), h.handleDescribeGroups)

	// --- 4. Tool: list_projects ---
	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List the project keys known to the configured issue source."),
	), h.handleListProjects)

	return s
}

// StartMCPServer starts the Trackline MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
