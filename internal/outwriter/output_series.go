package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintSeriesResult outputs a metrics run, dispatching based on the output format configured.
func PrintSeriesResult(result *schema.MetricsResult, cfg *contract.Config, duration time.Duration) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeSeriesJSONResult(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeSeriesCSVResult(result, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesTable(result, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeSeriesJSONResult handles opening the file and calling the JSON writer.
func writeSeriesJSONResult(result *schema.MetricsResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON")
}

// writeSeriesCSVResult handles opening the file and calling the CSV writer.
func writeSeriesCSVResult(result *schema.MetricsResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeSeriesCSV(w, result)
	}, "Wrote CSV")
}

// writeSeriesTable renders the latest checkpoint's count grids, since a
// scrolling table per checkpoint would drown a terminal. The full series
// is available through the csv and json formats.
func writeSeriesTable(result *schema.MetricsResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	latest := result.Latest()
	if latest == nil {
		if _, err := fmt.Fprintln(writer, "No checkpoints fell inside the population's lifetime."); err != nil {
			return err
		}
		return writeSeriesFooter(result, cfg, duration, writer)
	}

	if _, err := fmt.Fprintf(writer, "Checkpoint %s (%d of %d) for %s, issue type %s\n",
		latest.Date.Format(time.DateOnly), len(result.Series), len(result.Series),
		displayProject(result.Project), result.IssueType); err != nil {
		return err
	}

	if latest.Severity != nil && len(result.SeverityRows) > 0 {
		if err := renderCountGrid(writer, cfg, "Severity", result.SeverityRows, result.SeverityCols, latest.Severity); err != nil {
			return err
		}
	}
	if err := renderCountGrid(writer, cfg, "Status", result.StatusRows, result.StatusCols, latest.Status); err != nil {
		return err
	}

	return writeSeriesFooter(result, cfg, duration, writer)
}

// writeSeriesFooter writes the summary stats below the grids.
func writeSeriesFooter(result *schema.MetricsResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "Showing %d checkpoints over %d issues (as of %s)\n",
		len(result.Series), result.Issues, result.AsOf.Format(time.DateOnly)); err != nil {
		return err
	}
	backend := cfg.StoreBackend
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, err := fmt.Fprintf(writer, "Calculation completed in %v. Store backend: %s\n", duration, backend); err != nil {
		return err
	}
	return nil
}

// renderCountGrid renders one count grid as a right-aligned table. The
// corner header names the column dimension. Cells absent from the grid,
// like priorities a class excludes, render as a dash instead of a zero.
func renderCountGrid(writer io.Writer, cfg *contract.Config, corner string, rows, cols []string, grid schema.CountGrid) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := append([]string{corner}, cols...)
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows, ordered by the result's header slices rather than
	// map iteration
	labelWidth := GetMaxTableLabelWidth(cfg, len(cols))
	var data [][]string
	for _, row := range rows {
		rec := []string{contract.TruncateLabel(row, labelWidth)}
		for _, col := range cols {
			n, ok := grid[row][col]
			if !ok {
				rec = append(rec, "-")
				continue
			}
			rec = append(rec, strconv.Itoa(n))
		}
		data = append(data, rec)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeSeriesCSV writes the whole series in long form, one record per
// checkpoint, grid kind, row label and column label.
func writeSeriesCSV(w io.Writer, result *schema.MetricsResult) error {
	header := []string{"date", "kind", "row", "col", "n"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		writeGrid := func(date time.Time, kind string, grid schema.CountGrid, rows, cols []string) error {
			for _, row := range rows {
				for _, col := range cols {
					n, ok := grid[row][col]
					if !ok {
						continue
					}
					rec := []string{
						date.Format(time.DateOnly), // Checkpoint
						kind,                       // Grid kind
						row,                        // Row label
						col,                        // Column label
						strconv.Itoa(n),            // Count
					}
					if err := csvWriter.Write(rec); err != nil {
						return err
					}
				}
			}
			return nil
		}

		for _, point := range result.Series {
			if point.Severity != nil {
				if err := writeGrid(point.Date, schema.SeverityKind, point.Severity, result.SeverityRows, result.SeverityCols); err != nil {
					return err
				}
			}
			if err := writeGrid(point.Date, schema.StatusKind, point.Status, result.StatusRows, result.StatusCols); err != nil {
				return err
			}
		}
		return nil
	})
}
