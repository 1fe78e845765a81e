package core

import (
	"fmt"
	"slices"
	"time"

	"github.com/trackline/trackline/schema"
)

// CalcOptions tunes one metrics calculation.
type CalcOptions struct {
	Project        string                 // population label carried into the result
	AsOf           time.Time              // evaluation instant, defaults to now
	ExtractionDay  time.Weekday           // weekly checkpoint weekday
	Strategy       schema.AggStrategy     // defaults to baseline
	Classification *schema.Classification // required for the classification strategy
	SkipAges       bool                   // leave the aging grid out
}

// Calculate replays a fetched population into its weekly count series
// and aging grid. Histories are validated up front: one ragged issue
// fails the whole run, because a replay over misaligned lists would
// silently misattribute time everywhere.
func Calculate(profile schema.Profile, issues []schema.Issue, opts CalcOptions) (*schema.MetricsResult, error) {
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}
	if opts.Strategy == "" {
		opts.Strategy = schema.AggBaseline
	}
	if opts.Strategy == schema.AggClasses && (opts.Classification == nil || len(opts.Classification.Classes) == 0) {
		return nil, fmt.Errorf("classification strategy needs class rules, none configured")
	}

	for i := range issues {
		if err := issues[i].History.Validate(); err != nil {
			return nil, fmt.Errorf("issue %s: %w", issues[i].Key, err)
		}
	}

	classification := opts.Classification
	if opts.Strategy != schema.AggClasses {
		classification = nil
	}
	spec := newGridSpec(profile, issues, opts.Strategy, classification)

	result := &schema.MetricsResult{
		Source:       profile.Source,
		Project:      opts.Project,
		IssueType:    profile.IssueType,
		Strategy:     opts.Strategy,
		AsOf:         opts.AsOf,
		Issues:       len(issues),
		SeverityRows: spec.severityRows,
		SeverityCols: spec.severityCols,
		StatusRows:   spec.statusRows,
		StatusCols:   spec.statusCols,
	}

	engine := NewEngine(issues, profile.InitialStatus)
	if earliest, ok := engine.Earliest(); ok {
		for _, cp := range Checkpoints(earliest, opts.AsOf, opts.ExtractionDay) {
			snap := engine.AdvanceTo(cp)
			point := schema.SeriesPoint{Date: cp, Status: reduceStatus(snap, spec)}
			if profile.HasPriorities() {
				point.Severity = reduceSeverity(snap, spec)
			}
			result.Series = append(result.Series, point)
		}
	}

	if !opts.SkipAges {
		result.AgeRows = append(slices.Clone(profile.Priorities), schema.OverallLabel)
		result.AgeCols = append(profile.Taxonomy.GroupNames(), schema.OverallLabel)
		ages := schema.NewAgeGrid(result.AgeRows, result.AgeCols)
		accumulateAges(issues, profile.Taxonomy, opts.AsOf, ages)
		ages.Recalc()
		result.Ages = ages
	}

	return result, nil
}

// Audit inspects a fetched population for data problems that would skew
// metrics: misaligned history lists, raw statuses the taxonomy does not
// know, and missing priorities on types that expect one. Unlike
// Calculate it never fails; it reports.
func Audit(profile schema.Profile, issues []schema.Issue) schema.Diag {
	diag := schema.Diag{Issues: len(issues)}
	unmapped := map[string]int{}
	note := func(raw string) {
		if raw == "" {
			return
		}
		if _, ok := profile.Taxonomy.Resolve(raw); !ok {
			unmapped[schema.NormalizeStatus(raw)]++
		}
	}

	for i := range issues {
		iss := &issues[i]
		if profile.HasPriorities() && iss.Priority == "" {
			diag.MissingPriorities = append(diag.MissingPriorities, iss.Key)
		}
		if err := iss.History.Validate(); err != nil {
			diag.RaggedHistories = append(diag.RaggedHistories, iss.Key)
			continue
		}
		note(iss.Status)
		if iss.History.Len() > 0 {
			note(iss.History.Old[0])
		}
		for _, s := range iss.History.New {
			note(s)
		}
	}
	if len(unmapped) > 0 {
		diag.UnmappedStatuses = unmapped
	}
	return diag
}
