package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"

	"github.com/samber/lo"
)

// PrintReportSummary outputs a portfolio report, dispatching based on the
// output format configured. Text mode walks per-project lines, per-group
// aging rollups, and the organization-wide rollup in group order.
func PrintReportSummary(result *schema.ReportResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeReportJSONResult(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeReportCSVResult(result, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable text with aging tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(result, cfg, duration, w)
		}, "Wrote report")
	}
	return nil
}

// writeReportJSONResult handles opening the file and calling the JSON writer.
func writeReportJSONResult(result *schema.ReportResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON")
}

// writeReportCSVResult handles opening the file and calling the CSV writer.
func writeReportCSVResult(result *schema.ReportResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"group", "project", "issue_type", "issues", "checkpoints", "run_id"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, entry := range result.Entries {
				rec := []string{
					entry.Group,
					entry.Project,
					entry.IssueType,
					strconv.Itoa(entry.Issues),
					strconv.Itoa(entry.Checkpoints),
					entry.RunID,
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// reportIssueTypes returns the distinct issue types across the report's
// entries, in first-seen order.
func reportIssueTypes(result *schema.ReportResult) []string {
	return lo.Uniq(lo.Map(result.Entries, func(e schema.ReportEntry, _ int) string {
		return e.IssueType
	}))
}

// ageHeadersForIssueType finds the grid shape for an issue type from the
// first entry that produced one. Rollup grids share the shape of the
// per-project grids they combined.
func ageHeadersForIssueType(result *schema.ReportResult, issueType string) ([]string, []string) {
	for _, entry := range result.Entries {
		if entry.IssueType != issueType || entry.Result == nil {
			continue
		}
		if len(entry.Result.AgeRows) > 0 {
			return entry.Result.AgeRows, entry.Result.AgeCols
		}
	}
	return nil, nil
}

// shortRunID renders the persisted run reference for a report line.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeReportText renders the portfolio report as text sections.
func writeReportText(result *schema.ReportResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	if len(result.Entries) == 0 {
		if _, err := fmt.Fprintln(writer, "No issues found across the configured groups."); err != nil {
			return err
		}
		_, err := fmt.Fprintf(writer, "Report completed in %v\n", duration)
		return err
	}

	if _, err := fmt.Fprintf(writer, "Portfolio report for %s as of %s\n",
		result.Source, result.AsOf.Format(time.DateOnly)); err != nil {
		return err
	}

	fmtFloat := createFloatFormatter(cfg.Precision)
	issueTypes := reportIssueTypes(result)

	for _, group := range result.Groups {
		if err := writeReportGroup(result, group, issueTypes, fmtFloat, cfg, writer); err != nil {
			return err
		}
	}

	if len(result.OverallAges) > 0 {
		if _, err := fmt.Fprintf(writer, "\n== All groups ==\n"); err != nil {
			return err
		}
		for _, issueType := range issueTypes {
			ages, ok := result.OverallAges[issueType]
			if !ok {
				continue
			}
			rows, cols := ageHeadersForIssueType(result, issueType)
			if rows == nil {
				continue
			}
			if _, err := fmt.Fprintf(writer, "Average age in days, issue type %s:\n", issueType); err != nil {
				return err
			}
			if err := renderAgeTable(writer, cfg, rows, cols, ages, fmtFloat); err != nil {
				return err
			}
		}
	}

	totalIssues := lo.SumBy(result.Entries, func(e schema.ReportEntry) int { return e.Issues })
	if _, err := fmt.Fprintf(writer, "\nReport covered %d populations over %d issues\n",
		len(result.Entries), totalIssues); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Report completed in %v\n", duration)
	return err
}

// writeReportGroup renders one group's section: its per-project lines and
// its aging rollups per issue type.
func writeReportGroup(result *schema.ReportResult, group schema.ProjectGroup, issueTypes []string, fmtFloat func(float64) string, cfg *contract.Config, writer io.Writer) error {
	entries := lo.Filter(result.Entries, func(e schema.ReportEntry, _ int) bool {
		return e.Group == group.Name
	})
	if len(entries) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(writer, "\n== %s ==\n", group.Name); err != nil {
		return err
	}
	for _, entry := range entries {
		line := fmt.Sprintf("  %s %s: %d issues, %d checkpoints",
			entry.Project, entry.IssueType, entry.Issues, entry.Checkpoints)
		if entry.RunID != "" {
			line += fmt.Sprintf(" (run %s)", shortRunID(entry.RunID))
		}
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return err
		}
	}

	groupAges, ok := result.GroupAges[group.Name]
	if !ok {
		return nil
	}
	for _, issueType := range issueTypes {
		ages, ok := groupAges[issueType]
		if !ok {
			continue
		}
		rows, cols := ageHeadersForIssueType(result, issueType)
		if rows == nil {
			continue
		}
		if _, err := fmt.Fprintf(writer, "Average age in days, issue type %s:\n", issueType); err != nil {
			return err
		}
		if err := renderAgeTable(writer, cfg, rows, cols, ages, fmtFloat); err != nil {
			return err
		}
	}
	return nil
}
