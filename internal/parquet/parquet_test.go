package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline/trackline/schema"
)

func sampleRuns() []Run {
	now := time.Now().UTC()
	return []Run{
		{
			RunID:      "5f1c0c9e-0b1a-4a5e-9c1d-111111111111",
			CreatedAt:  now.Add(-2 * time.Hour),
			Source:     "jira",
			Project:    "GRND-A",
			IssueType:  "Defect",
			Strategy:   "baseline",
			AsOf:       now.Add(-3 * time.Hour),
			IssueCount: 150,
			PointCount: 12,
			DurationMs: 840,
		},
		{
			RunID:      "5f1c0c9e-0b1a-4a5e-9c1d-222222222222",
			CreatedAt:  now.Add(-24 * time.Hour),
			Source:     "clearquest",
			Project:    "SEPTA",
			IssueType:  "Defect",
			Strategy:   "classification",
			AsOf:       now.Add(-25 * time.Hour),
			IssueCount: 75,
			PointCount: 8,
			DurationMs: 410,
		},
	}
}

func sampleSeries() []SeriesCell {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []SeriesCell{
		{RunID: "run-1", PointDate: date, Kind: schema.SeverityKind, RowLabel: "Total", ColLabel: "Critical", N: 4},
		{RunID: "run-1", PointDate: date, Kind: schema.StatusKind, RowLabel: "GRND-A", ColLabel: "Open", N: 9},
	}
}

func sampleAges() []AgeCell {
	return []AgeCell{
		{RunID: "run-1", RowLabel: "Critical", ColLabel: "Open", AvgDays: 12.5, CellCount: 4},
		{RunID: "run-1", RowLabel: "Minor", ColLabel: "Closed", AvgDays: 3.25, CellCount: 2},
	}
}

func TestRunStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	fileSchema := parquet.SchemaOf(new(Run))
	require.NotNil(t, fileSchema)

	// Check that all expected columns exist
	expectedColumns := []string{
		"run_id",
		"created_at",
		"source",
		"project",
		"issue_type",
		"strategy",
		"as_of",
		"issue_count",
		"point_count",
		"duration_ms",
	}

	for _, colName := range expectedColumns {
		col, ok := fileSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestSeriesCellStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	fileSchema := parquet.SchemaOf(new(SeriesCell))
	require.NotNil(t, fileSchema)

	// Check that all expected columns exist
	expectedColumns := []string{
		"run_id",
		"point_date",
		"kind",
		"row_label",
		"col_label",
		"n",
	}

	for _, colName := range expectedColumns {
		col, ok := fileSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestAgeCellStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	fileSchema := parquet.SchemaOf(new(AgeCell))
	require.NotNil(t, fileSchema)

	// Check that all expected columns exist
	expectedColumns := []string{
		"run_id",
		"row_label",
		"col_label",
		"avg_days",
		"cell_count",
	}

	for _, colName := range expectedColumns {
		col, ok := fileSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestWriteRunsParquet(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "runs.parquet")

	data := sampleRuns()
	require.NotEmpty(t, data, "Sample data should not be empty")

	// Write data to Parquet file
	err := WriteRunsParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[Run](file)
	defer reader.Close()

	// Read all rows
	readData := make([]Run, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	// Verify data integrity
	for i := 0; i < len(data); i++ {
		assert.Equal(t, data[i].RunID, readData[i].RunID, "RunID should match")
		assert.Equal(t, data[i].Source, readData[i].Source, "Source should match")
		assert.Equal(t, data[i].Project, readData[i].Project, "Project should match")
		assert.Equal(t, data[i].Strategy, readData[i].Strategy, "Strategy should match")
		assert.Equal(t, data[i].IssueCount, readData[i].IssueCount, "IssueCount should match")
		assert.Equal(t, data[i].DurationMs, readData[i].DurationMs, "DurationMs should match")
		assert.WithinDuration(t, data[i].CreatedAt, readData[i].CreatedAt, time.Nanosecond, "CreatedAt should match within nanosecond precision")
		assert.WithinDuration(t, data[i].AsOf, readData[i].AsOf, time.Nanosecond, "AsOf should match within nanosecond precision")
	}
}

func TestWriteSeriesParquet(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "series.parquet")

	data := sampleSeries()

	// Write data to Parquet file
	err := WriteSeriesParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[SeriesCell](file)
	defer reader.Close()

	readData := make([]SeriesCell, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	for i := 0; i < len(data); i++ {
		assert.Equal(t, data[i].RunID, readData[i].RunID, "RunID should match")
		assert.Equal(t, data[i].Kind, readData[i].Kind, "Kind should match")
		assert.Equal(t, data[i].RowLabel, readData[i].RowLabel, "RowLabel should match")
		assert.Equal(t, data[i].ColLabel, readData[i].ColLabel, "ColLabel should match")
		assert.Equal(t, data[i].N, readData[i].N, "N should match")
		assert.WithinDuration(t, data[i].PointDate, readData[i].PointDate, time.Nanosecond, "PointDate should match within nanosecond precision")
	}
}

func TestWriteAgesParquet(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "ages.parquet")

	data := sampleAges()

	// Write data to Parquet file
	err := WriteAgesParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[AgeCell](file)
	defer reader.Close()

	readData := make([]AgeCell, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	for i := 0; i < len(data); i++ {
		assert.Equal(t, data[i].RunID, readData[i].RunID, "RunID should match")
		assert.Equal(t, data[i].RowLabel, readData[i].RowLabel, "RowLabel should match")
		assert.Equal(t, data[i].ColLabel, readData[i].ColLabel, "ColLabel should match")
		assert.InDelta(t, data[i].AvgDays, readData[i].AvgDays, 0.0001, "AvgDays should match")
		assert.Equal(t, data[i].CellCount, readData[i].CellCount, "CellCount should match")
	}
}

func TestWriteRunsParquet_EmptyData(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "empty_runs.parquet")

	// Write empty data
	err := WriteRunsParquet([]Run{}, outputPath)
	require.NoError(t, err, "Writing empty data should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteRunsParquet_InvalidPath(t *testing.T) {
	// Try to write to invalid path
	err := WriteRunsParquet(sampleRuns(), "/nonexistent/directory/output.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}

func TestConvertRunRecords(t *testing.T) {
	now := time.Now().UTC()
	records := []schema.RunRecord{
		{
			ID:         "run-9",
			CreatedAt:  now,
			Source:     schema.JiraSource,
			Project:    "GRND-A",
			IssueType:  "Defect",
			Strategy:   schema.AggBaseline,
			AsOf:       now.Add(-time.Hour),
			Issues:     42,
			Points:     6,
			DurationMs: 120,
		},
	}

	converted := ConvertRunRecords(records)
	require.Len(t, converted, 1)
	assert.Equal(t, "run-9", converted[0].RunID)
	assert.Equal(t, "jira", converted[0].Source)
	assert.Equal(t, "baseline", converted[0].Strategy)
	assert.Equal(t, int32(42), converted[0].IssueCount)
	assert.Equal(t, int32(6), converted[0].PointCount)
	assert.Equal(t, int64(120), converted[0].DurationMs)
}

func TestConvertSeriesRows(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []schema.SeriesRow{
		{RunID: "run-9", Date: date, Kind: schema.SeverityKind, Row: "Total", Col: "Blocker", N: 3},
	}

	converted := ConvertSeriesRows(rows)
	require.Len(t, converted, 1)
	assert.Equal(t, "run-9", converted[0].RunID)
	assert.Equal(t, schema.SeverityKind, converted[0].Kind)
	assert.Equal(t, "Total", converted[0].RowLabel)
	assert.Equal(t, "Blocker", converted[0].ColLabel)
	assert.Equal(t, int32(3), converted[0].N)
}

func TestConvertAgeRows(t *testing.T) {
	rows := []schema.AgeRow{
		{RunID: "run-9", Row: "Major", Col: "Open", AvgDays: 7.75, Count: 8},
	}

	converted := ConvertAgeRows(rows)
	require.Len(t, converted, 1)
	assert.Equal(t, "run-9", converted[0].RunID)
	assert.Equal(t, "Major", converted[0].RowLabel)
	assert.Equal(t, "Open", converted[0].ColLabel)
	assert.InDelta(t, 7.75, converted[0].AvgDays, 0.0001)
	assert.Equal(t, int32(8), converted[0].CellCount)
}
