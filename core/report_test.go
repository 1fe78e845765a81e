package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trackline/trackline/internal/tracker"
	"github.com/trackline/trackline/schema"
)

func groundGroups() []schema.ProjectGroup {
	return []schema.ProjectGroup{{Name: "Ground", Projects: []string{"GRND-A", "GRND-B"}}}
}

func TestReportGroupsPrefersConfig(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Groups = groundGroups()

	source := &tracker.MockIssueSource{}
	groups, err := reportGroups(context.Background(), cfg, source)
	require.NoError(t, err)
	assert.Equal(t, cfg.Groups, groups)
	source.AssertExpectations(t) // the source was never asked
}

func TestReportGroupsAsksSource(t *testing.T) {
	cfg := testConfig(t, "")

	source := &tracker.MockIssueSource{}
	source.On("ProjectGroups", mock.Anything).Return(groundGroups(), nil)

	groups, err := reportGroups(context.Background(), cfg, source)
	require.NoError(t, err)
	assert.Equal(t, groundGroups(), groups)
	source.AssertExpectations(t)
}

func TestBuildReport(t *testing.T) {
	cfg := testConfig(t, "")
	all := sampleIssues()

	source := &tracker.MockIssueSource{}
	source.On("FetchIssues", mock.Anything, "GRND-A", schema.DefectType).Return(all[:2], nil)
	source.On("FetchIssues", mock.Anything, "GRND-B", schema.DefectType).Return(all[2:], nil)
	// Remaining issue types have no records.
	source.On("FetchIssues", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	result, err := buildReport(context.Background(), cfg, source, groundGroups())
	require.NoError(t, err)

	require.Len(t, result.Entries, 2, "empty populations produce no entries")

	first := result.Entries[0]
	assert.Equal(t, "Ground", first.Group)
	assert.Equal(t, "GRND-A", first.Project)
	assert.Equal(t, schema.DefectType, first.IssueType)
	assert.Equal(t, 2, first.Issues)
	assert.Equal(t, 10, first.Checkpoints)
	assert.Empty(t, first.RunID, "no store configured")

	second := result.Entries[1]
	assert.Equal(t, "GRND-B", second.Project)
	assert.Equal(t, 9, second.Checkpoints, "younger population spans one Friday less")

	require.Contains(t, result.GroupAges, "Ground")
	require.Contains(t, result.GroupAges["Ground"], schema.DefectType)
	overall := result.OverallAges[schema.DefectType]
	require.NotNil(t, overall)
	assert.Equal(t, 3, overall[schema.OverallLabel][schema.OverallLabel].Count,
		"rollup folds every issue across both projects")
}

func TestBuildReportSkipAges(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.SkipAges = true

	source := &tracker.MockIssueSource{}
	source.On("FetchIssues", mock.Anything, "GRND-A", schema.DefectType).Return(sampleIssues()[:2], nil)
	source.On("FetchIssues", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	result, err := buildReport(context.Background(), cfg, source,
		[]schema.ProjectGroup{{Name: "Ground", Projects: []string{"GRND-A"}}})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Nil(t, result.GroupAges)
	assert.Nil(t, result.OverallAges)
}

func TestBuildReportSkipsInvalidPopulation(t *testing.T) {
	cfg := testConfig(t, "")
	ragged := []schema.Issue{{
		Key:      "GRND-A-13",
		Project:  "GRND-A",
		Type:     "Defect",
		Status:   "New",
		Priority: "Major",
		Created:  time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
		History:  schema.StatusHistory{Old: []string{"New"}},
	}}

	source := &tracker.MockIssueSource{}
	source.On("FetchIssues", mock.Anything, "GRND-A", schema.DefectType).Return(ragged, nil)
	source.On("FetchIssues", mock.Anything, "GRND-B", schema.DefectType).Return(sampleIssues()[2:], nil)
	source.On("FetchIssues", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	result, err := buildReport(context.Background(), cfg, source, groundGroups())
	require.NoError(t, err, "one bad population does not fail the portfolio")
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "GRND-B", result.Entries[0].Project)
}

func TestBuildReportFetchFailureAborts(t *testing.T) {
	cfg := testConfig(t, "")

	source := &tracker.MockIssueSource{}
	source.On("FetchIssues", mock.Anything, "GRND-A", schema.DefectType).Return(nil, assert.AnError)

	_, err := buildReport(context.Background(), cfg, source, groundGroups())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group Ground project GRND-A")
}

func TestExecuteReport(t *testing.T) {
	snapshot := writeSnapshot(t, sampleIssues(), groundGroups())
	cfg := testConfig(t, snapshot)

	require.NoError(t, ExecuteReport(context.Background(), cfg))

	var result schema.ReportResult
	decodeOutput(t, cfg.OutputFile, &result)
	assert.Equal(t, schema.JiraSource, result.Source)
	require.Len(t, result.Groups, 1)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "GRND-A", result.Entries[0].Project)
	assert.Nil(t, result.Entries[0].Result, "full results do not travel through JSON")
	require.Contains(t, result.OverallAges, schema.DefectType)
}
