package core

import (
	"time"

	"github.com/trackline/trackline/schema"
)

// ageTransition pairs a status with the moment the issue entered it.
type ageTransition struct {
	status string
	when   time.Time
}

// buildTransitions flattens an issue into entry moments. The origin
// status, when the source recorded one, is pinned to creation time so
// the span before the first transition is attributed. An issue with no
// history at all has held its current status since creation.
func buildTransitions(iss *schema.Issue) []ageTransition {
	h := iss.History
	if h.Len() == 0 {
		return []ageTransition{{iss.Status, iss.Created}}
	}
	list := make([]ageTransition, 0, h.Len()+1)
	if h.Old[0] != "" {
		list = append(list, ageTransition{h.Old[0], iss.Created})
	}
	for i := range h.Len() {
		list = append(list, ageTransition{h.New[i], h.When[i]})
	}
	return list
}

// accumulateAges walks every issue's lifecycle and folds the time spent
// in each status group into the grid. Averages stay unrecalculated so
// grids can be combined before the final pass.
func accumulateAges(issues []schema.Issue, taxonomy schema.Taxonomy, now time.Time, grid schema.AgeGrid) {
	for i := range issues {
		accumulateIssueAges(&issues[i], taxonomy, now, grid)
	}
}

// accumulateIssueAges records one issue's group durations and overall
// age. Consecutive transitions inside the same group merge into a single
// run, so the recorded durations always sum to the issue's full
// lifetime. Issues without a priority feed only the Overall row, and
// statuses outside the taxonomy drop their spans on the floor.
func accumulateIssueAges(iss *schema.Issue, taxonomy schema.Taxonomy, now time.Time, grid schema.AgeGrid) {
	transitions := buildTransitions(iss)
	rows := []string{schema.OverallLabel}
	if iss.Priority != "" {
		rows = []string{iss.Priority, schema.OverallLabel}
	}
	record := func(col string, d time.Duration) {
		for _, row := range rows {
			grid.Record(row, col, d)
		}
	}

	curGroup, _ := taxonomy.Resolve(transitions[0].status)
	curStart := iss.Created
	for _, tr := range transitions[1:] {
		group, _ := taxonomy.Resolve(tr.status)
		if group == curGroup {
			continue
		}
		record(curGroup, tr.when.Sub(curStart))
		curGroup = group
		curStart = tr.when
	}
	// The final run extends from where the issue entered its current
	// group, not from its last recorded transition.
	record(curGroup, now.Sub(curStart))

	// Closed issues stop aging at their last transition; everything else
	// is still getting older.
	age := now.Sub(iss.Created)
	if curGroup == schema.ClosedLabel {
		age = transitions[len(transitions)-1].when.Sub(iss.Created)
	}
	record(schema.OverallLabel, age)
}

// CombineAgeGrids merges any number of age grids into one, unioning
// their rows and columns, and recalculates every average. Inputs are
// left untouched.
func CombineAgeGrids(grids ...schema.AgeGrid) schema.AgeGrid {
	combined := schema.AgeGrid{}
	for _, g := range grids {
		for row, cells := range g {
			dst, ok := combined[row]
			if !ok {
				dst = make(map[string]*schema.AgeAverage, len(cells))
				combined[row] = dst
			}
			for col, avg := range cells {
				acc, ok := dst[col]
				if !ok {
					acc = &schema.AgeAverage{}
					dst[col] = acc
				}
				acc.Combine(avg)
			}
		}
	}
	combined.Recalc()
	return combined
}
