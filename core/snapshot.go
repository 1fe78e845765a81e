package core

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/trackline/trackline/schema"
)

// gridSpec fixes the shape of every grid in a series up front, so each
// checkpoint produces the same rows and columns and points stay
// comparable across the whole series.
type gridSpec struct {
	strategy       schema.AggStrategy
	taxonomy       schema.Taxonomy
	closed         []string
	classification *schema.Classification

	severityRows []string
	severityCols []string
	statusRows   []string
	statusCols   []string
}

// classRow renders a per-class row label like "Closed (Pilot)".
func classRow(label, class string) string {
	return fmt.Sprintf("%s (%s)", label, class)
}

// newGridSpec derives the grid shape from the profile, the aggregation
// strategy and the fetched population. Project rows are pinned from the
// whole population so they do not shift between checkpoints as projects
// appear.
func newGridSpec(profile schema.Profile, issues []schema.Issue, strategy schema.AggStrategy, classification *schema.Classification) *gridSpec {
	spec := &gridSpec{
		strategy:       strategy,
		taxonomy:       profile.Taxonomy,
		closed:         profile.Taxonomy.ClosedStatuses(),
		classification: classification,
	}

	spec.statusCols = append(profile.Taxonomy.GroupNames(), schema.TotalLabel)
	switch strategy {
	case schema.AggProject:
		spec.statusRows = append([]string{schema.TotalLabel}, distinctProjects(issues)...)
	case schema.AggClasses:
		spec.statusRows = append([]string{schema.TotalLabel}, classification.ClassNames()...)
	default:
		spec.statusRows = []string{schema.TotalLabel}
	}

	if profile.HasPriorities() {
		spec.severityCols = append(slices.Clone(profile.Priorities), schema.TotalLabel)
		spec.severityRows = []string{schema.TotalLabel, schema.ClosedLabel, schema.OpenLabel}
		if strategy == schema.AggClasses {
			for _, class := range classification.Classes {
				spec.severityRows = append(spec.severityRows,
					classRow(schema.TotalLabel, class.Name),
					classRow(schema.ClosedLabel, class.Name),
					classRow(schema.OpenLabel, class.Name))
			}
		}
	}
	return spec
}

// newSeverityGrid builds an empty severity grid. Priorities a class
// excludes lose their columns on that class's rows, so they render blank
// instead of a misleading zero.
func (s *gridSpec) newSeverityGrid() schema.CountGrid {
	grid := schema.NewCountGrid(s.severityRows, s.severityCols)
	if s.strategy == schema.AggClasses && s.classification != nil {
		for _, class := range s.classification.Classes {
			for _, p := range class.ExcludePriorities {
				delete(grid[classRow(schema.TotalLabel, class.Name)], p)
				delete(grid[classRow(schema.ClosedLabel, class.Name)], p)
				delete(grid[classRow(schema.OpenLabel, class.Name)], p)
			}
		}
	}
	return grid
}

// reduceSeverity counts one snapshot into a severity grid: how many
// issues sit open or closed per priority. Issues without a priority are
// left out entirely, and an issue counts as closed only while its raw
// status is one of the taxonomy's closed statuses.
func reduceSeverity(snap schema.Snapshot, spec *gridSpec) schema.CountGrid {
	grid := spec.newSeverityGrid()
	for _, st := range snap {
		if st.Priority == "" {
			continue
		}
		if spec.classification != nil && spec.classification.Excluded(st.Components) {
			continue
		}

		state := schema.OpenLabel
		if schema.Contains(spec.closed, st.Status) {
			state = schema.ClosedLabel
		}
		rows := []string{schema.TotalLabel, state}
		if spec.strategy == schema.AggClasses {
			for _, class := range spec.classification.Classes {
				if class.Matches(st) {
					rows = append(rows, classRow(schema.TotalLabel, class.Name), classRow(state, class.Name))
				}
			}
		}
		for _, row := range rows {
			grid.Inc(row, st.Priority)
			grid.Inc(row, schema.TotalLabel)
		}
	}
	return grid
}

// reduceStatus counts one snapshot into a status group grid. Raw
// statuses outside the taxonomy are dropped rather than invented into a
// catch-all group.
func reduceStatus(snap schema.Snapshot, spec *gridSpec) schema.CountGrid {
	grid := schema.NewCountGrid(spec.statusRows, spec.statusCols)
	for _, st := range snap {
		group, ok := spec.taxonomy.Resolve(st.Status)
		if !ok {
			continue
		}
		if spec.classification != nil && spec.classification.Excluded(st.Components) {
			continue
		}

		rows := []string{schema.TotalLabel}
		switch spec.strategy {
		case schema.AggProject:
			rows = append(rows, st.Project)
		case schema.AggClasses:
			for _, class := range spec.classification.Classes {
				if class.Matches(st) {
					rows = append(rows, class.Name)
				}
			}
		}
		for _, row := range rows {
			grid.Inc(row, group)
			grid.Inc(row, schema.TotalLabel)
		}
	}
	return grid
}

// distinctProjects returns the sorted distinct project keys across the
// population.
func distinctProjects(issues []schema.Issue) []string {
	projects := lo.Uniq(lo.Map(issues, func(iss schema.Issue, _ int) string { return iss.Project }))
	slices.Sort(projects)
	return projects
}
