package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

// writeAgesJSONResult handles opening the file and calling the JSON writer.
func writeAgesJSONResult(result *schema.MetricsResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForAges(w, result)
	}, "Wrote JSON")
}

// writeAgesCSVResult handles opening the file and calling the CSV writer.
func writeAgesCSVResult(result *schema.MetricsResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"priority", "status_group", "avg_days", "count"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			return writeCSVResultsForAges(csvWriter, result, fmtFloat)
		})
	}, "Wrote CSV")
}

// writeCSVResultsForAges writes every aging cell in long form, ordered by
// the result's header slices.
func writeCSVResultsForAges(w *csv.Writer, result *schema.MetricsResult, fmtFloat func(float64) string) error {
	for _, row := range result.AgeRows {
		for _, col := range result.AgeCols {
			avg, ok := result.Ages[row][col]
			if !ok {
				continue
			}
			rec := []string{
				row,                     // Priority
				col,                     // Status group
				fmtFloat(avg.AvgDays),   // Average age
				strconv.Itoa(avg.Count), // Durations folded in
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeJSONResultsForAges writes the aging grid in JSON format.
func writeJSONResultsForAges(w io.Writer, result *schema.MetricsResult) error {
	// 1. Prepare the data structure for JSON with the grid flattened into
	// ordered cells
	type JSONAgeCell struct {
		Priority    string  `json:"priority"`
		StatusGroup string  `json:"status_group"`
		AvgDays     float64 `json:"avg_days"`
		Count       int     `json:"count"`
	}
	type JSONAgeResult struct {
		Source    schema.Source `json:"source"`
		Project   string        `json:"project"`
		IssueType string        `json:"issue_type"`
		AsOf      time.Time     `json:"as_of"`
		Issues    int           `json:"issues"`
		Ages      []JSONAgeCell `json:"ages"`
	}

	output := JSONAgeResult{
		Source:    result.Source,
		Project:   result.Project,
		IssueType: result.IssueType,
		AsOf:      result.AsOf,
		Issues:    result.Issues,
	}
	for _, row := range result.AgeRows {
		for _, col := range result.AgeCols {
			avg, ok := result.Ages[row][col]
			if !ok {
				continue
			}
			output.Ages = append(output.Ages, JSONAgeCell{
				Priority:    row,
				StatusGroup: col,
				AvgDays:     avg.AvgDays,
				Count:       avg.Count,
			})
		}
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, output)
}
