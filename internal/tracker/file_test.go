package tracker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

func testConfig() *contract.Config {
	return &contract.Config{
		Source:           schema.JiraSource,
		TrackerBackend:   schema.SQLiteBackend,
		TrackerDBConnect: ":memory:",
	}
}

// writeSnapshot marshals a snapshot into a temp file and returns its path.
func writeSnapshot(t *testing.T, snapshot fileSnapshot) string {
	t.Helper()
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "issues.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func testSnapshot() fileSnapshot {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return fileSnapshot{
		Issues: []schema.Issue{
			{Key: "GRND-A-1", Project: "GRND-A", Type: "Defect", Status: "New", Created: created},
			{Key: "GRND-B-1", Project: "GRND-B", Type: "Defect", Status: "Open", Created: created},
			{Key: "GRND-B-2", Project: "GRND-B", Type: "Task", Status: "New", Created: created},
			{Key: "AIR-X-1", Project: "AIR-X", Type: "Defect", Status: "Closed", Created: created},
		},
	}
}

func TestFileSourceFetchIssues(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())
	src, err := NewFileSource(path, schema.JiraSource)
	require.NoError(t, err)

	t.Run("filter by project and type", func(t *testing.T) {
		issues, err := src.FetchIssues(context.Background(), "GRND-B", "Defect")
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, "GRND-B-1", issues[0].Key)
	})

	t.Run("empty project matches all projects", func(t *testing.T) {
		issues, err := src.FetchIssues(context.Background(), "", "Defect")
		require.NoError(t, err)
		assert.Len(t, issues, 3)
	})

	t.Run("unknown issue type", func(t *testing.T) {
		_, err := src.FetchIssues(context.Background(), "GRND-B", "Nonsense")
		assert.ErrorIs(t, err, schema.ErrUnsupportedIssueType)
	})
}

func TestFileSourceRejectsRaggedHistory(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Issues[0].History = schema.StatusHistory{
		Old:  []string{"New"},
		New:  []string{"Open", "Closed"},
		When: []time.Time{time.Now()},
	}
	path := writeSnapshot(t, snapshot)

	_, err := NewFileSource(path, schema.JiraSource)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrRaggedHistory)
	assert.Contains(t, err.Error(), "GRND-A-1")
}

func TestFileSourceActiveProjects(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())
	src, err := NewFileSource(path, schema.JiraSource)
	require.NoError(t, err)

	projects, err := src.ActiveProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AIR-X", "GRND-A", "GRND-B"}, projects)
}

func TestFileSourceProjectGroups(t *testing.T) {
	t.Run("explicit groups win", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot.Groups = []schema.ProjectGroup{
			{Name: "Everything", Projects: []string{"GRND-A", "GRND-B", "AIR-X"}},
		}
		src, err := NewFileSource(writeSnapshot(t, snapshot), schema.JiraSource)
		require.NoError(t, err)

		groups, err := src.ProjectGroups(context.Background())
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Everything", groups[0].Name)
	})

	t.Run("derived from project prefixes", func(t *testing.T) {
		src, err := NewFileSource(writeSnapshot(t, testSnapshot()), schema.JiraSource)
		require.NoError(t, err)

		groups, err := src.ProjectGroups(context.Background())
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, schema.ProjectGroup{Name: "AIR", Projects: []string{"AIR-X"}}, groups[0])
		assert.Equal(t, schema.ProjectGroup{Name: "GRND", Projects: []string{"GRND-A", "GRND-B"}}, groups[1])
	})
}

func TestFileSourcePing(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())
	src, err := NewFileSource(path, schema.JiraSource)
	require.NoError(t, err)
	assert.NoError(t, src.Ping(context.Background()))

	require.NoError(t, os.Remove(path))
	assert.Error(t, src.Ping(context.Background()))
}

func TestNewFileSourceErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json"), schema.JiraSource)
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{issues:"), 0o644))
		_, err := NewFileSource(path, schema.JiraSource)
		assert.Error(t, err)
	})
}

// TestNewSourceFactory verifies the snapshot file takes precedence over
// the SQL backend.
func TestNewSourceFactory(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())

	fileCfg := testConfig()
	fileCfg.TrackerFile = path
	src, err := NewSource(fileCfg)
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	sqlCfg := testConfig()
	src, err = NewSource(sqlCfg)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()
	assert.IsType(t, &SQLSource{}, src)
}
