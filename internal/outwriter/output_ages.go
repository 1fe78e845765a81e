package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintAgeResult outputs the aging grid of a metrics run, dispatching based
// on the output format configured.
func PrintAgeResult(result *schema.MetricsResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatter using helper
	fmtFloat := createFloatFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeAgesJSONResult(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeAgesCSVResult(result, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAgesTable(result, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeAgesTable renders the priority by status group aging grid.
func writeAgesTable(result *schema.MetricsResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	if result.Ages == nil {
		if _, err := fmt.Fprintln(writer, "No aging grid was produced for this run."); err != nil {
			return err
		}
		return writeSeriesFooter(result, cfg, duration, writer)
	}

	if _, err := fmt.Fprintf(writer, "Average age in days for %s, issue type %s\n",
		displayProject(result.Project), result.IssueType); err != nil {
		return err
	}

	if err := renderAgeTable(writer, cfg, result.AgeRows, result.AgeCols, result.Ages, fmtFloat); err != nil {
		return err
	}

	return writeSeriesFooter(result, cfg, duration, writer)
}

// renderAgeTable renders one aging grid with priorities down the side and
// status groups across the top. Cells that never saw an issue render as a
// dash so an empty cell cannot be mistaken for a zero-day average.
func renderAgeTable(writer io.Writer, cfg *contract.Config, rows, cols []string, ages schema.AgeGrid, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := append([]string{"Priority"}, cols...)
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	for _, row := range rows {
		label := row
		if cfg.UseColors {
			label = contract.GetPriorityColorLabel(row)
		}
		rec := []string{label}
		for _, col := range cols {
			avg, ok := ages[row][col]
			if !ok || avg.Count == 0 {
				rec = append(rec, "-")
				continue
			}
			rec = append(rec, fmtFloat(avg.AvgDays))
		}
		data = append(data, rec)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
