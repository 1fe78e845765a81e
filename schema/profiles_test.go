package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileJira(t *testing.T) {
	profile, err := GetProfile(JiraSource, DefectType)
	require.NoError(t, err)

	assert.Equal(t, JiraSource, profile.Source)
	assert.Equal(t, "New", profile.InitialStatus, "jira issues are born in New")
	assert.True(t, profile.HasPriorities())
	assert.Equal(t, DefaultPriorities, profile.Priorities)
	assert.Equal(t, []string{"Defect", "Defect Subtask"}, profile.QueryTypes, "subtasks count toward the parent type")

	group, found := profile.Taxonomy.Resolve("Test Lead Review")
	require.True(t, found)
	assert.Equal(t, "In Test", group)

	group, found = profile.Taxonomy.Resolve("Pending Approval")
	require.True(t, found)
	assert.Equal(t, "Open", group)

	assert.Equal(t,
		[]string{"New", "Open", "In Dev", "In Test", "In Prod", "Resolved", "Closed"},
		profile.Taxonomy.GroupNames())
}

func TestGetProfileJiraSharedTaxonomy(t *testing.T) {
	defect, err := GetProfile(JiraSource, DefectType)
	require.NoError(t, err)
	task, err := GetProfile(JiraSource, TaskType)
	require.NoError(t, err)

	assert.Equal(t, defect.Taxonomy, task.Taxonomy, "all jira types group statuses the same way")
	assert.Equal(t, []string{"Task", "Task Sub Task"}, task.QueryTypes)

	compliance, err := GetProfile(JiraSource, ComplianceType)
	require.NoError(t, err)
	assert.Equal(t, []string{"Compliance"}, compliance.QueryTypes, "compliance has no subtask type")
}

func TestGetProfileClearQuest(t *testing.T) {
	tests := []struct {
		issueType  string
		record     string
		priorities bool
		groups     []string
	}{
		{EngChangeType, RecordDCR, false,
			[]string{"Submitted", "In Review", "Ready For Release", "Void", "Closed"}},
		{EngNoticeType, RecordDCR, false,
			[]string{"Submitted", "ID Generated", "In Review", "Ready For Release", "Void", "Closed"}},
		{DevReleaseType, RecordRR, false,
			[]string{"Submitted", "Dev Release Approved", "In Build", "In Engineering", "In Release", "Closed"}},
		{ProdRelease, RecordRR, false,
			[]string{"Submitted", "Program Approved", "In Review", "In Build", "In Engineering", "In System Testing", "In Fielding", "SE Approved", "Cancelled", "Closed"}},
		{DefectType, RecordSCR, true,
			[]string{"New", "Open", "Document Impacted", "In Test", "SE Reviewed", "Closed"}},
		{EnhanceType, RecordSCR, true,
			[]string{"New", "Open", "Document Impacted", "In Test", "SE Reviewed", "Closed"}},
	}

	for _, tt := range tests {
		t.Run(tt.issueType, func(t *testing.T) {
			profile, err := GetProfile(ClearQuestSource, tt.issueType)
			require.NoError(t, err)
			assert.Equal(t, tt.record, profile.Record)
			assert.Equal(t, tt.priorities, profile.HasPriorities())
			assert.Empty(t, profile.InitialStatus, "clearquest histories carry their own first status")
			assert.Equal(t, tt.groups, profile.Taxonomy.GroupNames())
		})
	}
}

func TestGetProfileErrors(t *testing.T) {
	_, err := GetProfile(JiraSource, "Epic")
	assert.ErrorIs(t, err, ErrUnsupportedIssueType)

	_, err = GetProfile(ClearQuestSource, ComplianceType)
	assert.ErrorIs(t, err, ErrUnsupportedIssueType)

	_, err = GetProfile(Source("bugzilla"), DefectType)
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestIssueTypes(t *testing.T) {
	for _, source := range []Source{JiraSource, ClearQuestSource} {
		for _, issueType := range IssueTypes(source) {
			_, err := GetProfile(source, issueType)
			assert.NoError(t, err, "every listed type must resolve for %s", source)
		}
	}
	assert.Nil(t, IssueTypes(Source("bugzilla")))
}

func TestClearQuestResolveSpotChecks(t *testing.T) {
	prod, err := GetProfile(ClearQuestSource, ProdRelease)
	require.NoError(t, err)

	group, found := prod.Taxonomy.Resolve("CCB Rejected")
	require.True(t, found)
	assert.Equal(t, "In Review", group)

	group, found = prod.Taxonomy.Resolve("Field Test In Progress")
	require.True(t, found)
	assert.Equal(t, "In Fielding", group)

	// Ready For Release maps to different groups per record type.
	dev, err := GetProfile(ClearQuestSource, DevReleaseType)
	require.NoError(t, err)
	group, _ = dev.Taxonomy.Resolve("Ready For Release")
	assert.Equal(t, "In Release", group)
	group, _ = prod.Taxonomy.Resolve("Ready For Release")
	assert.Equal(t, "In Engineering", group)
}
