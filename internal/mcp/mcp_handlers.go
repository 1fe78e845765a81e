package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/trackline/trackline/core"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/internal/tracker"
	"github.com/trackline/trackline/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// populationConfig clones the base config and applies the common metric
// tool arguments. The issue type is re-resolved so its profile and any
// override come along.
func (h *toolHandler) populationConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	issueType := request.GetString("issue_type", h.baseCfg.IssueType)
	cfg, err := h.baseCfg.CloneForIssueType(issueType)
	if err != nil {
		return nil, err
	}
	if p := request.GetString("project", ""); p != "" {
		cfg.Project = p
	}
	if s := request.GetString("strategy", ""); s != "" {
		strategy := schema.AggStrategy(s)
		if _, ok := schema.ValidAggStrategies[strategy]; !ok {
			return nil, fmt.Errorf("invalid strategy: %s", s)
		}
		cfg.Strategy = strategy
	}
	cfg.AsOf = time.Now().UTC()
	if v := request.GetString("as_of", ""); v != "" {
		asOf, err := schema.ParseDate(v)
		if err != nil {
			return nil, err
		}
		cfg.AsOf = asOf
	}
	return cfg, nil
}

func (h *toolHandler) handleMetricsSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.populationConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series parameters: %v", err)), nil
	}
	// Series responses stay lean; the aging tool carries the age grid.
	cfg.SkipAges = true

	result, err := core.ComputeMetrics(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("series computation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleMetricsAging(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.populationConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid aging parameters: %v", err)), nil
	}
	cfg.SkipAges = false

	result, err := core.ComputeMetrics(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aging computation failed: %v", err)), nil
	}

	aging := map[string]any{
		"source":     result.Source,
		"project":    result.Project,
		"issue_type": result.IssueType,
		"as_of":      result.AsOf,
		"issues":     result.Issues,
		"age_rows":   result.AgeRows,
		"age_cols":   result.AgeCols,
		"ages":       result.Ages,
	}
	jsonData, _ := json.MarshalIndent(aging, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleDescribeGroups(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src := h.baseCfg.Source
	if v := request.GetString("source", ""); v != "" {
		src = schema.Source(v)
		if _, ok := schema.ValidSources[src]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown source: %s", v)), nil
		}
	}
	issueType := request.GetString("issue_type", h.baseCfg.IssueType)

	profile, err := schema.GetProfile(src, issueType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}
	if h.baseCfg.Override != nil {
		profile = h.baseCfg.Override.Apply(profile)
	}

	result := schema.GroupsResult{
		Source:    src,
		IssueType: issueType,
		Lines:     profile.Taxonomy.Describe(),
	}
	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := tracker.NewSource(h.baseCfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("source unavailable: %v", err)), nil
	}
	defer func() { _ = source.Close() }()

	projects, err := source.ActiveProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(map[string]any{
		"source":   h.baseCfg.Source,
		"projects": projects,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
