// Package contract provides interfaces and shared utilities for the trackline CLI's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/trackline/trackline/schema"
)

// IssueSource defines the operations for fetching issue populations from
// a ticketing backend. This allows the metrics pipeline to be tested
// without a live issue database.
type IssueSource interface {
	// FetchIssues returns the full population for one project and issue
	// type, status histories included.
	FetchIssues(ctx context.Context, project, issueType string) ([]schema.Issue, error)

	// ActiveProjects returns every project key the backend has records
	// for, sorted.
	ActiveProjects(ctx context.Context) ([]string, error)

	// ProjectGroups returns the reporting groups the backend knows
	// about, each naming its member projects.
	ProjectGroups(ctx context.Context) ([]schema.ProjectGroup, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// RunStore defines the interface for persisting produced metric runs and
// reading them back. This allows the store layer to be mocked for
// testing.
type RunStore interface {
	// SaveRun persists one produced result and returns the new run id.
	// The duration records how long the calculation took.
	SaveRun(result *schema.MetricsResult, duration time.Duration) (string, error)

	// ListRuns returns recent run records, newest first.
	ListRuns(limit int) ([]schema.RunRecord, error)

	// GetSeries returns the persisted series cells of a run in long form.
	GetSeries(runID string) ([]schema.SeriesRow, error)

	// GetAges returns the persisted aging cells of a run.
	GetAges(runID string) ([]schema.AgeRow, error)

	// GetStatus returns status information about the run store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}
