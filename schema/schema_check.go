package schema

// Diag collects the data-quality findings of an audit pass over one
// fetched population. Maps and slices stay nil when nothing was found.
type Diag struct {
	Issues            int            `json:"issues"`                       // population size
	UnmappedStatuses  map[string]int `json:"unmapped_statuses,omitempty"`  // raw status to occurrence count
	RaggedHistories   []string       `json:"ragged_histories,omitempty"`   // issue keys with misaligned lists
	MissingPriorities []string       `json:"missing_priorities,omitempty"` // issue keys without a priority
}

// Clean reports whether the audit found nothing to flag.
func (d Diag) Clean() bool {
	return len(d.UnmappedStatuses) == 0 && len(d.RaggedHistories) == 0 && len(d.MissingPriorities) == 0
}

// CheckResult holds the results of a data-quality check for one project.
type CheckResult struct {
	Source    Source `json:"source"`
	Project   string `json:"project"`
	IssueType string `json:"issue_type"`
	Diag      Diag   `json:"diagnostics"`
}
