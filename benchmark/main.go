// Package main provides a performance benchmarking tool for the Trackline CLI.
// It measures replay times across synthetic snapshot sizes and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - trackline binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic snapshots and the scratch store live
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/trackline/trackline/schema"
)

// BenchmarkResult holds the result of a benchmark run (no-store average, cold run and average of warm runs).
type BenchmarkResult struct {
	Population  string
	Command     string
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoStoreRuns int
	StoreRuns   int
	Populations []int
	AsOf        string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		NoStoreRuns: 3,
		StoreRuns:   4,
		Populations: []int{1000, 10000, 100000},
		AsOf:        "2024-06-07",
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	snapshots, err := generateSnapshots(config)
	if err != nil {
		fmt.Printf("Snapshot generation failed: %v\n", err)
		os.Exit(1)
	}

	// Start each store phase from an empty scratch store
	scratchDB := filepath.Join(config.WorkDir, "bench_store.db")
	fmt.Printf("Clearing scratch store...\n")
	clearCmd := exec.Command("trackline", "store", "clear", "--store-backend", "sqlite", "--store-db-connect", scratchDB)
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear store: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Store cleared successfully\n")
	}

	results := runBenchmarks(config, snapshots, scratchDB)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the trackline binary exists and the work
// directory is usable.
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if trackline is available
	if _, err := exec.LookPath("trackline"); err != nil {
		return fmt.Errorf("trackline binary not found in PATH")
	}

	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work directory %s: %w", config.WorkDir, err)
	}

	return nil
}

// generateSnapshots writes one synthetic snapshot file per population size
// and returns population size -> snapshot path.
func generateSnapshots(config BenchmarkConfig) (map[int]string, error) {
	snapshots := make(map[int]string, len(config.Populations))
	for _, n := range config.Populations {
		path := filepath.Join(config.WorkDir, fmt.Sprintf("issues_%d.json", n))
		fmt.Printf("Generating snapshot of %d issues at %s\n", n, path)

		raw, err := json.Marshal(map[string]any{
			"issues": syntheticIssues(n),
			"groups": []schema.ProjectGroup{
				{Name: "Alpha", Projects: []string{"BEN-A", "BEN-B"}},
				{Name: "Gamma", Projects: []string{"BEN-C"}},
			},
		})
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return nil, err
		}
		snapshots[n] = path
	}
	return snapshots, nil
}

// syntheticIssues generates a reproducible population that walks the jira
// defect workflow at random speeds.
func syntheticIssues(n int) []schema.Issue {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	flow := []string{"New", "Open", "In Dev", "In Test", "Resolved", "Closed"}
	projects := []string{"BEN-A", "BEN-B", "BEN-C"}

	issues := make([]schema.Issue, 0, n)
	for i := 0; i < n; i++ {
		project := projects[rng.Intn(len(projects))]
		created := start.Add(time.Duration(rng.Intn(200*24)) * time.Hour)
		hops := rng.Intn(len(flow))

		status := flow[0]
		at := created
		var history schema.StatusHistory
		for h := 1; h <= hops; h++ {
			at = at.Add(time.Duration(1+rng.Intn(21*24)) * time.Hour)
			history.Old = append(history.Old, status)
			status = flow[h]
			history.New = append(history.New, status)
			history.When = append(history.When, at)
		}

		issues = append(issues, schema.Issue{
			Key:      fmt.Sprintf("%s-%d", project, i+1),
			Project:  project,
			Type:     "Defect",
			Status:   status,
			Priority: schema.DefaultPriorities[rng.Intn(len(schema.DefaultPriorities))],
			Created:  created,
			History:  history,
		})
	}
	return issues
}

// runBenchmarks executes all benchmark tests across configured populations
func runBenchmarks(config BenchmarkConfig, snapshots map[int]string, scratchDB string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d populations, %v timeout, no-store: %d runs, store: %d runs\n",
		len(config.Populations), config.Timeout, config.NoStoreRuns, config.StoreRuns)

	for _, n := range config.Populations {
		population := fmt.Sprintf("%d", n)
		fmt.Printf("Benchmarking %s issues\n", population)

		snapshot := snapshots[n]
		for _, command := range []string{"series", "aging", "check", "report"} {
			result := runBenchmarkSuite(config, population, snapshot, scratchDB, command)
			results = append(results, result)
		}
	}

	return results
}

// runBenchmarkSuite runs both no-store and store benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, population, snapshot, scratchDB, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s issues\n", command, population)

	// Helper to run a benchmark phase
	runPhase := func(storeBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, snapshot, scratchDB, command, storeBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-store runs
	_, noStoreAvg := runPhase("none", config.NoStoreRuns, "No-store")

	// Phase 2: Store runs
	coldTime, warmAvg := runPhase("sqlite", config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Population:  population,
		Command:     command,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a trackline command multiple times with the given store backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, snapshot, scratchDB, command, storeBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{
		command,
		"--tracker-file", snapshot,
		"--as-of", config.AsOf,
		"--store-backend", storeBackend,
	}
	if storeBackend == "sqlite" {
		args = append(args, "--store-db-connect", scratchDB)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("trackline", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	var completionPhrase string
	switch command {
	case "report":
		completionPhrase = "Report completed in"
	case "check":
		completionPhrase = "Checked"
	default:
		completionPhrase = "Calculation completed in"
	}

	return strings.Contains(outputStr, completionPhrase)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/trackline_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"population", "cmd", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Population, result.Command, result.NoStoreTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "series", "Series Replay:")
	printCommandSummary(results, "aging", "Aging Calculation:")
	printCommandSummary(results, "check", "Data Check:")
	printCommandSummary(results, "report", "Portfolio Report:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: No-store: %s, Cold: %s, Warm: %s\n", result.Population, result.NoStoreTime, result.ColdTime, result.WarmTime)
		}
	}
}
