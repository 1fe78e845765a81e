package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRunRecords outputs persisted run records, dispatching based on the
// output format configured.
func PrintRunRecords(records []schema.RunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeRunsJSONResult(records, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeRunsCSVResult(records, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunsTable(records, cfg, w)
		}, "Wrote table")
	}
	return nil
}

// writeRunsTable generates and writes the human-readable run listing.
func writeRunsTable(records []schema.RunRecord, cfg *contract.Config, writer io.Writer) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(writer, "No runs stored yet.")
		return err
	}

	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Run", "Created", "Source", "Project", "Type", "Strategy", "Issues", "Points", "Duration (ms)"}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows, newest first as listed by the store
	var data [][]string
	for _, r := range records {
		row := []string{
			shortRunID(r.ID),                          // Run
			r.CreatedAt.Format("2006-01-02 15:04:05"), // Created
			string(r.Source),                          // Source
			displayProject(r.Project),                 // Project
			r.IssueType,                               // Type
			string(r.Strategy),                        // Strategy
			strconv.Itoa(r.Issues),                    // Issues
			strconv.Itoa(r.Points),                    // Points
			strconv.FormatInt(r.DurationMs, 10),       // Duration
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	backend := cfg.StoreBackend
	if backend == "" {
		backend = schema.NoneBackend
	}
	_, err := fmt.Fprintf(writer, "Showing %d runs. Store backend: %s\n", len(records), backend)
	return err
}
