// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSeries prints a metrics series using the configured output format.
func (ow *OutWriter) WriteSeries(result *schema.MetricsResult, cfg *contract.Config, duration time.Duration) error {
	return PrintSeriesResult(result, cfg, duration)
}

// WriteAges prints an aging grid using the configured output format.
func (ow *OutWriter) WriteAges(result *schema.MetricsResult, cfg *contract.Config, duration time.Duration) error {
	return PrintAgeResult(result, cfg, duration)
}

// WriteGroups prints a taxonomy description using the configured output format.
func (ow *OutWriter) WriteGroups(result *schema.GroupsResult, cfg *contract.Config) error {
	return PrintGroupsResult(result, cfg)
}

// WriteCheck prints data-quality findings using the configured output format.
func (ow *OutWriter) WriteCheck(result *schema.CheckResult, cfg *contract.Config) error {
	return PrintCheckResult(result, cfg)
}

// WriteReport prints a portfolio report using the configured output format.
func (ow *OutWriter) WriteReport(result *schema.ReportResult, cfg *contract.Config, duration time.Duration) error {
	return PrintReportSummary(result, cfg, duration)
}

// WriteRuns prints persisted run records using the configured output format.
func (ow *OutWriter) WriteRuns(records []schema.RunRecord, cfg *contract.Config) error {
	return PrintRunRecords(records, cfg)
}
