// Package schema has configs, models and global variables for all parts of trackline.
package schema

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors surfaced across package boundaries.
var (
	ErrRaggedHistory        = errors.New("status history lists have unequal lengths")
	ErrUnsupportedIssueType = errors.New("unsupported issue type")
	ErrUnsupportedSource    = errors.New("unsupported issue source")
)

// StatusHistory captures every recorded status transition of one issue,
// as three parallel lists ordered by transition time. Old[i] holds the
// status the issue left, New[i] the status it entered, When[i] the moment
// of the change. Old[0] may be empty when the source never recorded the
// origin status.
type StatusHistory struct {
	Old  []string    `json:"old"`  // status before each transition
	New  []string    `json:"new"`  // status after each transition
	When []time.Time `json:"when"` // moment of each transition
}

// Len returns the number of recorded transitions.
func (h StatusHistory) Len() int {
	return len(h.When)
}

// Validate confirms the three lists line up. A mismatch means the row
// fetch dropped values and every downstream walk would misattribute time.
func (h StatusHistory) Validate() error {
	if len(h.Old) != len(h.New) || len(h.New) != len(h.When) {
		return fmt.Errorf("%w: old=%d new=%d when=%d",
			ErrRaggedHistory, len(h.Old), len(h.New), len(h.When))
	}
	return nil
}

// Issue is one tracked record with the fields the metrics pipeline reads.
// Key is unique within a project. Priority may be empty for record types
// that carry no severity scale.
type Issue struct {
	Key        string        `json:"key"`                // unique issue identifier
	Project    string        `json:"project"`            // owning project key
	Type       string        `json:"type"`               // issue type, e.g. Defect
	Status     string        `json:"status"`             // current raw status
	Priority   string        `json:"priority"`           // severity, may be empty
	Components []string      `json:"components"`         // component labels
	Links      []string      `json:"links"`              // linked issue keys
	Pack       string        `json:"pack"`               // release pack marker
	Created    time.Time     `json:"created"`            // creation timestamp
	Resolved   *time.Time    `json:"resolved,omitempty"` // resolution timestamp, nil while unresolved
	History    StatusHistory `json:"history"`            // recorded transitions
}

// IssueState is the replayed view of one issue at a checkpoint. Status is
// the raw status the issue held then; the remaining fields mirror the
// issue record they came from.
type IssueState struct {
	Project    string   // owning project key
	Status     string   // raw status at the checkpoint
	Priority   string   // severity, may be empty
	Components []string // component labels
	Links      []string // linked issue keys
	Pack       string   // release pack marker
}

// Snapshot maps issue key to replayed state at one checkpoint.
type Snapshot map[string]IssueState

// CountGrid is a two-level map of row label to column label to count.
type CountGrid map[string]map[string]int

// NewCountGrid builds a zeroed grid with the given rows and columns so
// every cell is present even when nothing increments it.
func NewCountGrid(rows, cols []string) CountGrid {
	grid := make(CountGrid, len(rows))
	for _, r := range rows {
		cells := make(map[string]int, len(cols))
		for _, c := range cols {
			cells[c] = 0
		}
		grid[r] = cells
	}
	return grid
}

// Inc adds one to a cell if both the row and the column exist.
func (g CountGrid) Inc(row, col string) {
	cells, ok := g[row]
	if !ok {
		return
	}
	if _, ok := cells[col]; !ok {
		return
	}
	cells[col]++
}

// ProjectGroup names a reporting group and the project keys inside it.
type ProjectGroup struct {
	Name     string   `json:"name" yaml:"name"`         // group display name
	Projects []string `json:"projects" yaml:"projects"` // member project keys
}
