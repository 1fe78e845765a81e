// Package core has core logic for replay, aggregation, aging and reporting.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/internal/metricstore"
	"github.com/trackline/trackline/internal/outwriter"
	"github.com/trackline/trackline/internal/tracker"
	"github.com/trackline/trackline/schema"
)

// ExecutorFunc defines the function signature for executing different metric modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

var writer = outwriter.NewOutWriter()

var log = zerolog.New(os.Stderr).With().Timestamp().Str("component", "core").Logger()

// calcOptions maps a validated config onto calculation options.
func calcOptions(cfg *contract.Config) CalcOptions {
	return CalcOptions{
		Project:        cfg.Project,
		AsOf:           cfg.AsOf,
		ExtractionDay:  cfg.ExtractionDay,
		Strategy:       cfg.Strategy,
		Classification: cfg.Classification,
		SkipAges:       cfg.SkipAges,
	}
}

// ComputeMetrics fetches one population and replays it into a result.
// It never persists anything; the HTTP metrics endpoint and the MCP
// tools rely on that.
func ComputeMetrics(ctx context.Context, cfg *contract.Config) (*schema.MetricsResult, error) {
	source, err := tracker.NewSource(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = source.Close() }()

	issues, err := source.FetchIssues(ctx, cfg.Project, cfg.IssueType)
	if err != nil {
		return nil, err
	}
	return Calculate(cfg.Profile, issues, calcOptions(cfg))
}

// persistRun saves a result to the run store when one is configured.
// Persistence trouble warns instead of failing the command; the result
// still reaches the user either way.
func persistRun(result *schema.MetricsResult, duration time.Duration) string {
	store := metricstore.Manager.GetRunStore()
	if store == nil {
		return ""
	}
	id, err := store.SaveRun(result, duration)
	if err != nil {
		contract.LogWarn("saving run", err)
		return ""
	}
	log.Debug().
		Str("run_id", id).
		Str("project", result.Project).
		Int("points", len(result.Series)).
		Msg("run persisted")
	return id
}

// ExecuteSeries replays one population into its weekly checkpoint series
// and prints the result. It serves as the main entry point for the
// 'series' mode.
func ExecuteSeries(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	result, err := ComputeMetrics(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	persistRun(result, duration)
	return writer.WriteSeries(result, cfg, duration)
}

// ExecuteAging replays one population and prints its aging grid. The
// skip-ages flag is overridden here: asking for aging yields aging.
func ExecuteAging(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	cfg = cfg.Clone()
	cfg.SkipAges = false
	result, err := ComputeMetrics(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	persistRun(result, duration)
	return writer.WriteAges(result, cfg, duration)
}

// ExecuteGroups prints the status taxonomy of the configured profile.
// This is a static display that does not touch the issue source.
func ExecuteGroups(_ context.Context, cfg *contract.Config) error {
	result := &schema.GroupsResult{
		Source:    cfg.Source,
		IssueType: cfg.IssueType,
		Lines:     cfg.Profile.Taxonomy.Describe(),
	}
	return writer.WriteGroups(result, cfg)
}

// ExecuteCheck audits one population for data problems that would skew
// metrics and prints the findings. A dirty audit still prints, then
// returns an error so pipelines can gate on the exit code.
func ExecuteCheck(ctx context.Context, cfg *contract.Config) error {
	source, err := tracker.NewSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	issues, err := source.FetchIssues(ctx, cfg.Project, cfg.IssueType)
	if err != nil {
		return err
	}

	result := &schema.CheckResult{
		Source:    cfg.Source,
		Project:   cfg.Project,
		IssueType: cfg.IssueType,
		Diag:      Audit(cfg.Profile, issues),
	}
	if err := writer.WriteCheck(result, cfg); err != nil {
		return err
	}
	if !result.Diag.Clean() {
		return fmt.Errorf("%d unmapped statuses, %d ragged histories, %d missing priorities",
			len(result.Diag.UnmappedStatuses), len(result.Diag.RaggedHistories), len(result.Diag.MissingPriorities))
	}
	return nil
}

// ExecuteRuns lists recent persisted runs, newest first.
func ExecuteRuns(_ context.Context, cfg *contract.Config) error {
	store := metricstore.Manager.GetRunStore()
	if store == nil {
		return errors.New("no run store configured, set --store-backend to enable persistence")
	}
	records, err := store.ListRuns(cfg.RunLimit)
	if err != nil {
		return err
	}
	return writer.WriteRuns(records, cfg)
}
