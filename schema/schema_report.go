package schema

import "time"

// ReportEntry ties one produced metrics result to its reporting group.
type ReportEntry struct {
	Group       string         `json:"group"`
	Project     string         `json:"project"`
	IssueType   string         `json:"issue_type"`
	Issues      int            `json:"issues"`
	Checkpoints int            `json:"checkpoints"`
	RunID       string         `json:"run_id,omitempty"` // set when the run was persisted
	Result      *MetricsResult `json:"-"`
}

// ReportResult aggregates a portfolio run across reporting groups: one
// entry per group, project and issue type, with aging rollups per group
// and across the whole portfolio.
type ReportResult struct {
	Source  Source         `json:"source"`
	AsOf    time.Time      `json:"as_of"`
	Groups  []ProjectGroup `json:"groups"`
	Entries []ReportEntry  `json:"entries"`

	// GroupAges rolls ages up by group name then issue type.
	GroupAges map[string]map[string]AgeGrid `json:"group_ages,omitempty"`
	// OverallAges rolls ages up by issue type across every group.
	OverallAges map[string]AgeGrid `json:"overall_ages,omitempty"`
}
