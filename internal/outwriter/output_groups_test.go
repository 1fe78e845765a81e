package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

func sampleGroupsResult() *schema.GroupsResult {
	return &schema.GroupsResult{
		Source:    schema.JiraSource,
		IssueType: "defect",
		Lines: []string{
			"New",
			"Open includes Approved & Reopened",
			"Closed includes Verified, Released, & Rejected",
		},
	}
}

func TestWriteGroupsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeGroupsText(&buf, sampleGroupsResult()))

	output := buf.String()
	assert.Contains(t, output, "Status groups for jira defect issues:")
	assert.Contains(t, output, "  New\n")
	assert.Contains(t, output, "  Open includes Approved & Reopened\n")
	assert.Contains(t, output, "  Closed includes Verified, Released, & Rejected\n")
}

func TestPrintGroupsResultJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "groups.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: tmpFile}

	require.NoError(t, PrintGroupsResult(sampleGroupsResult(), cfg))

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	var decoded schema.GroupsResult
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, schema.JiraSource, decoded.Source)
	assert.Len(t, decoded.Lines, 3)
}

func TestPrintGroupsResultCSV(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "groups.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: tmpFile}

	require.NoError(t, PrintGroupsResult(sampleGroupsResult(), cfg))

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "position,group", lines[0])
	assert.Equal(t, "1,New", lines[1])
	assert.Equal(t, `3,"Closed includes Verified, Released, & Rejected"`, lines[3])
}
