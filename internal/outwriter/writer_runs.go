package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

// writeRunsJSONResult handles opening the file and calling the JSON writer.
func writeRunsJSONResult(records []schema.RunRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, records)
	}, "Wrote JSON")
}

// writeRunsCSVResult handles opening the file and calling the CSV writer.
func writeRunsCSVResult(records []schema.RunRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{
			"id",
			"created_at",
			"source",
			"project",
			"issue_type",
			"strategy",
			"as_of",
			"issues",
			"points",
			"duration_ms",
		}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			return writeCSVResultsForRuns(csvWriter, records)
		})
	}, "Wrote CSV")
}

// writeCSVResultsForRuns writes the run records in CSV format with full
// identifiers, so records can be joined against exported series data.
func writeCSVResultsForRuns(w *csv.Writer, records []schema.RunRecord) error {
	for _, r := range records {
		rec := []string{
			r.ID,
			r.CreatedAt.Format(contract.DateTimeFormat),
			string(r.Source),
			r.Project,
			r.IssueType,
			string(r.Strategy),
			r.AsOf.Format(contract.DateTimeFormat),
			strconv.Itoa(r.Issues),
			strconv.Itoa(r.Points),
			strconv.FormatInt(r.DurationMs, 10),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
