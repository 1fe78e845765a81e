// Package parquet provides data structures and functions for exporting
// persisted metric runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/trackline/trackline/schema"
)

// Run represents a single persisted metrics run with metadata.
// This struct maps to the metric_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// CreatedAt is when the run was saved (stored as TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// Source is the issue tracking system the data came from
	Source string `parquet:"source,snappy"`

	// Project is the project key the run covers
	Project string `parquet:"project,snappy"`

	// IssueType is the issue type profile used for the run
	IssueType string `parquet:"issue_type,snappy"`

	// Strategy is the aggregation strategy used for the run
	Strategy string `parquet:"strategy,snappy"`

	// AsOf is the series cutoff the run was computed against
	AsOf time.Time `parquet:"as_of,snappy"`

	// IssueCount is the number of issues in the run population
	IssueCount int32 `parquet:"issue_count,snappy"`

	// PointCount is the number of checkpoints in the run series
	PointCount int32 `parquet:"point_count,snappy"`

	// DurationMs is how long the calculation took in milliseconds
	DurationMs int64 `parquet:"duration_ms,snappy"`
}

// SeriesCell represents one checkpoint count in long form.
// This struct maps to the metric_series database table.
type SeriesCell struct {
	// RunID references the parent run
	RunID string `parquet:"run_id,snappy"`

	// PointDate is the checkpoint date (stored as TIMESTAMP with nanosecond precision)
	PointDate time.Time `parquet:"point_date,snappy"`

	// Kind distinguishes severity cells from status cells
	Kind string `parquet:"kind,snappy"`

	// RowLabel is the grid row the count belongs to
	RowLabel string `parquet:"row_label,snappy"`

	// ColLabel is the grid column the count belongs to
	ColLabel string `parquet:"col_label,snappy"`

	// N is the issue count for the cell
	N int32 `parquet:"n,snappy"`
}

// AgeCell represents one duration-weighted aging average.
// This struct maps to the metric_ages database table.
type AgeCell struct {
	// RunID references the parent run
	RunID string `parquet:"run_id,snappy"`

	// RowLabel is the priority row the average belongs to
	RowLabel string `parquet:"row_label,snappy"`

	// ColLabel is the status group column the average belongs to
	ColLabel string `parquet:"col_label,snappy"`

	// AvgDays is the duration-weighted average age in days
	AvgDays float64 `parquet:"avg_days,snappy"`

	// CellCount is the number of issues behind the average
	CellCount int32 `parquet:"cell_count,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteSeriesParquet writes a slice of SeriesCell structs to a Parquet file.
func WriteSeriesParquet(data []SeriesCell, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the SeriesCell struct tags
	writer := parquet.NewGenericWriter[SeriesCell](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteAgesParquet writes a slice of AgeCell structs to a Parquet file.
func WriteAgesParquet(data []AgeCell, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the AgeCell struct tags
	writer := parquet.NewGenericWriter[AgeCell](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:      record.ID,
			CreatedAt:  record.CreatedAt,
			Source:     string(record.Source),
			Project:    record.Project,
			IssueType:  record.IssueType,
			Strategy:   string(record.Strategy),
			AsOf:       record.AsOf,
			IssueCount: int32(record.Issues),
			PointCount: int32(record.Points),
			DurationMs: record.DurationMs,
		}
	}
	return result
}

// ConvertSeriesRows converts schema.SeriesRow to SeriesCell for Parquet export.
func ConvertSeriesRows(rows []schema.SeriesRow) []SeriesCell {
	result := make([]SeriesCell, len(rows))
	for i, row := range rows {
		result[i] = SeriesCell{
			RunID:     row.RunID,
			PointDate: row.Date,
			Kind:      row.Kind,
			RowLabel:  row.Row,
			ColLabel:  row.Col,
			N:         int32(row.N),
		}
	}
	return result
}

// ConvertAgeRows converts schema.AgeRow to AgeCell for Parquet export.
func ConvertAgeRows(rows []schema.AgeRow) []AgeCell {
	result := make([]AgeCell, len(rows))
	for i, row := range rows {
		result[i] = AgeCell{
			RunID:     row.RunID,
			RowLabel:  row.Row,
			ColLabel:  row.Col,
			AvgDays:   row.AvgDays,
			CellCount: int32(row.Count),
		}
	}
	return result
}
