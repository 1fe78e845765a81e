package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

// PrintGroupsResult outputs the status group taxonomy of a profile,
// dispatching based on the output format configured.
func PrintGroupsResult(result *schema.GroupsResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"position", "group"}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				for i, line := range result.Lines {
					if err := csvWriter.Write([]string{strconv.Itoa(i + 1), line}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGroupsText(w, result)
		}, "Wrote text")
	}
}

// writeGroupsText displays the taxonomy in human-readable text format,
// one group per line in workflow order.
func writeGroupsText(w io.Writer, result *schema.GroupsResult) error {
	if _, err := fmt.Fprintf(w, "Status groups for %s %s issues:\n", result.Source, result.IssueType); err != nil {
		return err
	}
	for _, line := range result.Lines {
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return err
		}
	}
	return nil
}
