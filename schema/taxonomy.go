package schema

import (
	"fmt"
	"strings"
)

// StatusGroup names one lifecycle stage and the raw statuses it covers.
type StatusGroup struct {
	Name     string   `json:"name" yaml:"name"`         // group display name
	Statuses []string `json:"statuses" yaml:"statuses"` // raw statuses, workflow order
}

// Taxonomy is an ordered mapping from raw workflow statuses to coarser
// status groups. Order matters twice: groups render in workflow order,
// and Resolve returns the first group containing a status when a raw
// status appears under more than one.
type Taxonomy struct {
	Groups []StatusGroup `json:"groups" yaml:"groups"`
}

// NormalizeStatus collapses runs of whitespace to single spaces and trims
// the ends, so statuses stored with stray padding still match.
func NormalizeStatus(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// Resolve maps a raw status to its group name. The boolean reports
// whether the status is known to the taxonomy at all.
func (t Taxonomy) Resolve(raw string) (string, bool) {
	status := NormalizeStatus(raw)
	for _, g := range t.Groups {
		for _, s := range g.Statuses {
			if s == status {
				return g.Name, true
			}
		}
	}
	return "", false
}

// GroupNames returns the group names in workflow order.
func (t Taxonomy) GroupNames() []string {
	names := make([]string, 0, len(t.Groups))
	for _, g := range t.Groups {
		names = append(names, g.Name)
	}
	return names
}

// ClosedStatuses returns the raw statuses of the Closed group, or nil
// when the taxonomy has none.
func (t Taxonomy) ClosedStatuses() []string {
	for _, g := range t.Groups {
		if g.Name == ClosedLabel {
			return g.Statuses
		}
	}
	return nil
}

// Contains reports whether the raw status appears in the given list
// after whitespace normalization.
func Contains(statuses []string, raw string) bool {
	status := NormalizeStatus(raw)
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Describe renders one human-readable line per group, in workflow order.
// A group with one status prints just its name, two statuses join with
// an ampersand, and longer lists read like a sentence:
//
//	Open includes Approved, Reopened, & Deferred
func (t Taxonomy) Describe() []string {
	lines := make([]string, 0, len(t.Groups))
	for _, g := range t.Groups {
		switch len(g.Statuses) {
		case 0:
			continue
		case 1:
			lines = append(lines, g.Name)
		case 2:
			lines = append(lines, fmt.Sprintf("%s includes %s & %s", g.Name, g.Statuses[0], g.Statuses[1]))
		default:
			head := strings.Join(g.Statuses[:len(g.Statuses)-1], ", ")
			lines = append(lines, fmt.Sprintf("%s includes %s, & %s", g.Name, head, g.Statuses[len(g.Statuses)-1]))
		}
	}
	return lines
}
