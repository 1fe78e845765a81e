package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/samber/lo"
)

// PrintCheckResult outputs the data-quality audit findings, dispatching
// based on the output format configured.
func PrintCheckResult(result *schema.CheckResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"finding", "detail", "count"}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				return writeCheckCSV(csvWriter, result)
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckText(w, result)
		}, "Wrote text")
	}
}

// sortedUnmappedStatuses orders raw statuses by occurrence count, highest
// first, then alphabetically so equal counts stay deterministic.
func sortedUnmappedStatuses(unmapped map[string]int) []string {
	statuses := lo.Keys(unmapped)
	slices.SortFunc(statuses, func(a, b string) int {
		if diff := unmapped[b] - unmapped[a]; diff != 0 {
			return diff
		}
		return strings.Compare(a, b)
	})
	return statuses
}

// writeCheckText displays the audit findings in human-readable text format.
func writeCheckText(w io.Writer, result *schema.CheckResult) error {
	diag := result.Diag
	if diag.Issues == 0 {
		_, err := fmt.Fprintln(w, "No issues found to check.")
		return err
	}

	if _, err := fmt.Fprintf(w, "Checked %d %s %s issues for %s\n",
		diag.Issues, result.Source, result.IssueType, displayProject(result.Project)); err != nil {
		return err
	}
	if diag.Clean() {
		_, err := fmt.Fprintln(w, "No data-quality findings.")
		return err
	}

	if len(diag.UnmappedStatuses) > 0 {
		if _, err := fmt.Fprintf(w, "\nStatuses outside the taxonomy (%d distinct):\n", len(diag.UnmappedStatuses)); err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Status", "Occurrences"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, status := range sortedUnmappedStatuses(diag.UnmappedStatuses) {
			data = append(data, []string{status, strconv.Itoa(diag.UnmappedStatuses[status])})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(diag.RaggedHistories) > 0 {
		if _, err := fmt.Fprintf(w, "\nRagged status histories (%d):\n", len(diag.RaggedHistories)); err != nil {
			return err
		}
		for _, key := range diag.RaggedHistories {
			if _, err := fmt.Fprintf(w, "  %s\n", key); err != nil {
				return err
			}
		}
	}

	if len(diag.MissingPriorities) > 0 {
		if _, err := fmt.Fprintf(w, "\nIssues without a priority (%d):\n", len(diag.MissingPriorities)); err != nil {
			return err
		}
		for _, key := range diag.MissingPriorities {
			if _, err := fmt.Fprintf(w, "  %s\n", key); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeCheckCSV writes the audit findings in long form, one record per
// finding.
func writeCheckCSV(w *csv.Writer, result *schema.CheckResult) error {
	diag := result.Diag
	for _, status := range sortedUnmappedStatuses(diag.UnmappedStatuses) {
		rec := []string{"unmapped_status", status, strconv.Itoa(diag.UnmappedStatuses[status])}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	for _, key := range diag.RaggedHistories {
		if err := w.Write([]string{"ragged_history", key, "1"}); err != nil {
			return err
		}
	}
	for _, key := range diag.MissingPriorities {
		if err := w.Write([]string{"missing_priority", key, "1"}); err != nil {
			return err
		}
	}
	return nil
}
