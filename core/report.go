package core

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/internal/tracker"
	"github.com/trackline/trackline/schema"
)

// ExecuteReport walks every reporting group and produces metrics for each
// project and issue type in it, with aging rolled up per group and across
// the whole portfolio. Each produced population persists as its own run
// when a store is configured.
func ExecuteReport(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	result, err := ComputeReport(ctx, cfg)
	if err != nil {
		return err
	}
	return writer.WriteReport(result, cfg, time.Since(start))
}

// ComputeReport builds the full report without printing it. The HTTP
// refresh endpoint and the cron job share this path with the CLI.
func ComputeReport(ctx context.Context, cfg *contract.Config) (*schema.ReportResult, error) {
	source, err := tracker.NewSource(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = source.Close() }()

	groups, err := reportGroups(ctx, cfg, source)
	if err != nil {
		return nil, err
	}
	return buildReport(ctx, cfg, source, groups)
}

// reportGroups resolves the groups to walk. Groups from the config file
// win; otherwise the issue source is asked what it knows.
func reportGroups(ctx context.Context, cfg *contract.Config, source contract.IssueSource) ([]schema.ProjectGroup, error) {
	if len(cfg.Groups) > 0 {
		return cfg.Groups, nil
	}
	return source.ProjectGroups(ctx)
}

// buildReport produces one entry per group, project and issue type.
// Populations with no issues are left out. A population whose data fails
// validation is skipped with a warning so the rest of the portfolio still
// reports; a fetch error aborts, because it means the source itself is
// broken.
func buildReport(ctx context.Context, cfg *contract.Config, source contract.IssueSource, groups []schema.ProjectGroup) (*schema.ReportResult, error) {
	result := &schema.ReportResult{
		Source: cfg.Source,
		AsOf:   cfg.AsOf,
		Groups: groups,
	}

	for _, group := range groups {
		for _, project := range group.Projects {
			for _, issueType := range schema.IssueTypes(cfg.Source) {
				popCfg, err := cfg.CloneForIssueType(issueType)
				if err != nil {
					return nil, err
				}
				popCfg.Project = project

				popStart := time.Now()
				issues, err := source.FetchIssues(ctx, project, issueType)
				if err != nil {
					return nil, fmt.Errorf("group %s project %s: %w", group.Name, project, err)
				}
				if len(issues) == 0 {
					continue
				}

				res, err := Calculate(popCfg.Profile, issues, calcOptions(popCfg))
				if err != nil {
					log.Warn().Err(err).
						Str("group", group.Name).
						Str("project", project).
						Str("issue_type", issueType).
						Msg("population skipped")
					continue
				}

				result.Entries = append(result.Entries, schema.ReportEntry{
					Group:       group.Name,
					Project:     project,
					IssueType:   issueType,
					Issues:      res.Issues,
					Checkpoints: len(res.Series),
					RunID:       persistRun(res, time.Since(popStart)),
					Result:      res,
				})
			}
		}
	}

	rollupAges(result)
	return result, nil
}

// rollupAges combines per-population aging grids by group and across the
// whole portfolio, keyed by issue type. Nothing happens on a skip-ages
// run since no entry carries a grid.
func rollupAges(result *schema.ReportResult) {
	overall := combineByIssueType(gridsByIssueType(result.Entries))
	if overall == nil {
		return
	}

	groupAges := map[string]map[string]schema.AgeGrid{}
	for _, group := range result.Groups {
		entries := lo.Filter(result.Entries, func(e schema.ReportEntry, _ int) bool {
			return e.Group == group.Name
		})
		if combined := combineByIssueType(gridsByIssueType(entries)); combined != nil {
			groupAges[group.Name] = combined
		}
	}
	if len(groupAges) > 0 {
		result.GroupAges = groupAges
	}
	result.OverallAges = overall
}

// gridsByIssueType collects the aging grids the given entries carry,
// keyed by issue type.
func gridsByIssueType(entries []schema.ReportEntry) map[string][]schema.AgeGrid {
	grids := map[string][]schema.AgeGrid{}
	for _, e := range entries {
		if e.Result == nil || e.Result.Ages == nil {
			continue
		}
		grids[e.IssueType] = append(grids[e.IssueType], e.Result.Ages)
	}
	return grids
}

func combineByIssueType(grids map[string][]schema.AgeGrid) map[string]schema.AgeGrid {
	if len(grids) == 0 {
		return nil
	}
	combined := make(map[string]schema.AgeGrid, len(grids))
	for issueType, list := range grids {
		combined[issueType] = CombineAgeGrids(list...)
	}
	return combined
}
