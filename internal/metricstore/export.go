package metricstore

import (
	"errors"
	"fmt"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/internal/parquet"
	"github.com/trackline/trackline/schema"
)

// ExecuteStoreExport performs the actual export of persisted run data to Parquet files.
func ExecuteStoreExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the run store
	store := Manager.GetRunStore()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}

	if status.Runs == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total saved runs: %d\n", status.Runs)

	// Retrieve all runs
	runs, err := store.ListRuns(contract.MaxRunLimit)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	// Gather the series and aging cells across runs
	var seriesRows []schema.SeriesRow
	var ageRows []schema.AgeRow
	for _, run := range runs {
		cells, err := store.GetSeries(run.ID)
		if err != nil {
			return fmt.Errorf("failed to retrieve series for run %s: %w", run.ID, err)
		}
		seriesRows = append(seriesRows, cells...)

		ages, err := store.GetAges(run.ID)
		if err != nil {
			return fmt.Errorf("failed to retrieve ages for run %s: %w", run.ID, err)
		}
		ageRows = append(ageRows, ages...)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetSeries := parquet.ConvertSeriesRows(seriesRows)
	parquetAges := parquet.ConvertAgeRows(ageRows)

	// Write runs to Parquet
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	// Write series cells to Parquet
	seriesFile := outputFile + ".series.parquet"
	if err := parquet.WriteSeriesParquet(parquetSeries, seriesFile); err != nil {
		return fmt.Errorf("failed to write series: %w", err)
	}
	fmt.Printf("Exported %d series cells to: %s\n", len(parquetSeries), seriesFile)

	// Write aging cells to Parquet
	agesFile := outputFile + ".ages.parquet"
	if err := parquet.WriteAgesParquet(parquetAges, agesFile); err != nil {
		return fmt.Errorf("failed to write ages: %w", err)
	}
	fmt.Printf("Exported %d aging cells to: %s\n", len(parquetAges), agesFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
