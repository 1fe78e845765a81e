package schema

import "time"

// SeriesPoint is the aggregated view of one issue population at a single
// weekly checkpoint. Severity is nil for issue types without a severity
// scale and for strategies that only count statuses.
type SeriesPoint struct {
	Date     time.Time `json:"date"`
	Severity CountGrid `json:"severity,omitempty"`
	Status   CountGrid `json:"status"`
}

// MetricsResult holds everything one metrics run produced: the weekly
// series, the optional aging grid, and the ordered header labels the
// writers need to lay the grids out deterministically.
type MetricsResult struct {
	Source    Source      `json:"source"`
	Project   string      `json:"project"`
	IssueType string      `json:"issue_type"`
	Strategy  AggStrategy `json:"strategy"`
	AsOf      time.Time   `json:"as_of"`
	Issues    int         `json:"issues"` // population size after fetch

	SeverityRows []string `json:"severity_rows,omitempty"` // Total, Closed, Open, then class rows
	SeverityCols []string `json:"severity_cols,omitempty"` // priorities then Total
	StatusRows   []string `json:"status_rows"`             // Total, then projects or classes
	StatusCols   []string `json:"status_cols"`             // status groups then Total
	AgeRows      []string `json:"age_rows,omitempty"`      // priorities then Overall
	AgeCols      []string `json:"age_cols,omitempty"`      // status groups then Overall

	Series []SeriesPoint `json:"series"`
	Ages   AgeGrid       `json:"ages,omitempty"`
}

// Latest returns the most recent series point, or nil when no checkpoint
// fell inside the population's lifetime.
func (r *MetricsResult) Latest() *SeriesPoint {
	if len(r.Series) == 0 {
		return nil
	}
	return &r.Series[len(r.Series)-1]
}

// GroupsResult is the rendered taxonomy description for one profile.
type GroupsResult struct {
	Source    Source   `json:"source"`
	IssueType string   `json:"issue_type"`
	Lines     []string `json:"groups"` // one line per status group, workflow order
}
