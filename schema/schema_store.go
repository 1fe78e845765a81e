package schema

import "time"

// Grid kinds distinguishing persisted series rows.
const (
	SeverityKind = "severity"
	StatusKind   = "status"
)

// RunRecord represents a row from the metric_runs table.
type RunRecord struct {
	ID         string      `json:"id"` // uuid assigned at insert
	Source     Source      `json:"source"`
	Project    string      `json:"project"`
	IssueType  string      `json:"issue_type"`
	Strategy   AggStrategy `json:"strategy"`
	AsOf       time.Time   `json:"as_of"`
	CreatedAt  time.Time   `json:"created_at"`
	Issues     int         `json:"issues"`      // population size
	Points     int         `json:"points"`      // checkpoints in the series
	DurationMs int64       `json:"duration_ms"` // calculation wall time
}

// SeriesRow is one persisted grid cell in long form, one row per
// checkpoint, grid kind, row label and column label.
type SeriesRow struct {
	RunID string    `json:"run_id"`
	Date  time.Time `json:"date"`
	Kind  string    `json:"kind"` // SeverityKind or StatusKind
	Row   string    `json:"row"`
	Col   string    `json:"col"`
	N     int       `json:"n"`
}

// AgeRow is one persisted aging grid cell.
type AgeRow struct {
	RunID   string  `json:"run_id"`
	Row     string  `json:"row"`
	Col     string  `json:"col"`
	AvgDays float64 `json:"avg_days"`
	Count   int     `json:"count"`
}

// StoreStatus summarizes the run store for the status subcommand.
type StoreStatus struct {
	Backend DatabaseBackend `json:"backend"`
	Version uint            `json:"version"` // current migration version
	Dirty   bool            `json:"dirty"`   // true when a migration half-applied
	Runs    int             `json:"runs"`    // persisted run count
}
