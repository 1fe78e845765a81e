package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline/trackline/schema"
)

const testOverrideYAML = `extraction-day: saturday
taxonomy:
  - name: New
    statuses: [New, Triage]
  - name: Open
    statuses: [Open, In Progress]
  - name: Closed
    statuses: [Closed]
classification:
  exclude-components: [hardware]
  classes:
    - name: Pilot
      link-marker: PACK-151
    - name: Fleet
`

// writeTestOverride writes a reusable override file into a temp dir.
func writeTestOverride(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testOverrideYAML), 0o644))
	return path
}

// validInput returns raw inputs that pass validation with defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Source:         string(schema.JiraSource),
		Project:        "PROJ",
		IssueType:      schema.DefectType,
		Strategy:       string(schema.AggBaseline),
		Output:         string(schema.TableOut),
		Precision:      DefaultPrecision,
		Color:          "true",
		Emoji:          "false",
		TrackerBackend: string(schema.SQLiteBackend),
		StoreBackend:   string(schema.NoneBackend),
		Limit:          DefaultRunLimit,
	}
}

func TestProcessAndValidate(t *testing.T) {
	overridePath := writeTestOverride(t)

	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError bool
		check       func(*testing.T, *Config)
	}{
		{
			name:   "valid minimal config",
			modify: func(in *ConfigRawInput) {},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.JiraSource, cfg.Source)
				assert.Equal(t, schema.DefectType, cfg.IssueType)
				assert.Equal(t, schema.AggBaseline, cfg.Strategy)
				assert.Equal(t, time.Friday, cfg.ExtractionDay) // default extraction weekday
				assert.False(t, cfg.AsOf.IsZero())
				assert.Equal(t, DefaultRunLimit, cfg.RunLimit)
				assert.Equal(t, DefaultServeAddr, cfg.ServeAddr)
			},
		},
		{
			name:   "blank issue type falls back to defect",
			modify: func(in *ConfigRawInput) { in.IssueType = "  " },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.DefectType, cfg.IssueType)
				assert.Equal(t, schema.DefectType, cfg.Profile.IssueType)
			},
		},
		{
			name:        "unknown issue type",
			modify:      func(in *ConfigRawInput) { in.IssueType = "Nonsense" },
			expectError: true,
		},
		{
			name:        "invalid output format",
			modify:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "invalid source",
			modify:      func(in *ConfigRawInput) { in.Source = "bugzilla" },
			expectError: true,
		},
		{
			name:        "invalid strategy",
			modify:      func(in *ConfigRawInput) { in.Strategy = "everything" },
			expectError: true,
		},
		{
			name:        "classification strategy requires class rules",
			modify:      func(in *ConfigRawInput) { in.Strategy = string(schema.AggClasses) },
			expectError: true,
		},
		{
			name: "classification strategy with override",
			modify: func(in *ConfigRawInput) {
				in.Strategy = string(schema.AggClasses)
				in.OverrideFile = overridePath
			},
			check: func(t *testing.T, cfg *Config) {
				require.NotNil(t, cfg.Classification)
				assert.Equal(t, []string{"Pilot", "Fleet"}, cfg.Classification.ClassNames())
				assert.Equal(t, []string{"New", "Open", "Closed"}, cfg.Profile.Taxonomy.GroupNames())
			},
		},
		{
			name: "override extraction day wins over flag",
			modify: func(in *ConfigRawInput) {
				in.ExtractionDay = "monday"
				in.OverrideFile = overridePath
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, time.Saturday, cfg.ExtractionDay)
			},
		},
		{
			name:   "as-of date parsing",
			modify: func(in *ConfigRawInput) { in.AsOf = "2024-03-01" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), cfg.AsOf)
			},
		},
		{
			name:        "invalid as-of date",
			modify:      func(in *ConfigRawInput) { in.AsOf = "March 1st" },
			expectError: true,
		},
		{
			name:        "invalid extraction day",
			modify:      func(in *ConfigRawInput) { in.ExtractionDay = "noday" },
			expectError: true,
		},
		{
			name:        "zero limit",
			modify:      func(in *ConfigRawInput) { in.Limit = 0 },
			expectError: true,
		},
		{
			name:        "limit exceeds maximum",
			modify:      func(in *ConfigRawInput) { in.Limit = MaxRunLimit + 1 },
			expectError: true,
		},
		{
			name:        "precision out of range",
			modify:      func(in *ConfigRawInput) { in.Precision = 3 },
			expectError: true,
		},
		{
			name:        "invalid color value",
			modify:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: true,
		},
		{
			name:        "invalid tracker backend",
			modify:      func(in *ConfigRawInput) { in.TrackerBackend = "oracle" },
			expectError: true,
		},
		{
			name: "tracker file bypasses backend validation",
			modify: func(in *ConfigRawInput) {
				in.TrackerBackend = "oracle"
				in.TrackerFile = "issues.json"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "issues.json", cfg.TrackerFile)
			},
		},
		{
			name: "mysql store missing tcp host",
			modify: func(in *ConfigRawInput) {
				in.StoreBackend = string(schema.MySQLBackend)
				in.StoreDBConnect = "user:pass/metrics"
			},
			expectError: true,
		},
		{
			name: "postgresql store with full connection string",
			modify: func(in *ConfigRawInput) {
				in.StoreBackend = string(schema.PostgreSQLBackend)
				in.StoreDBConnect = "host=localhost port=5432 user=app dbname=metrics"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.PostgreSQLBackend, cfg.StoreBackend)
			},
		},
		{
			name: "tracker and store share one sqlite file",
			modify: func(in *ConfigRawInput) {
				in.TrackerDBConnect = "shared.db"
				in.StoreBackend = string(schema.SQLiteBackend)
				in.StoreDBConnect = "shared.db"
			},
			expectError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite ignores connection string", schema.SQLiteBackend, "", false},
		{"none ignores connection string", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/metrics", false},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass/metrics", true},
		{"postgresql valid", schema.PostgreSQLBackend, "host=localhost dbname=metrics", false},
		{"postgresql empty", schema.PostgreSQLBackend, "", true},
		{"postgresql missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestConfigClone verifies that mutating a clone leaves the original intact.
func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Project: "PROJ",
		Groups: []schema.ProjectGroup{
			{Name: "Ground", Projects: []string{"PROJ"}},
		},
		Classification: &schema.Classification{
			ExcludeComponents: []string{"hardware"},
			Classes:           []schema.ClassRule{{Name: "Pilot"}},
		},
	}

	clone := cfg.Clone()
	clone.Project = "OTHER"
	clone.Groups[0].Name = "Air"
	clone.Classification.Classes[0].Name = "Fleet"

	assert.Equal(t, "PROJ", cfg.Project)
	assert.Equal(t, "Ground", cfg.Groups[0].Name)
	assert.Equal(t, "Pilot", cfg.Classification.Classes[0].Name)
}

// TestCloneForIssueType verifies profile re-resolution with the override intact.
func TestCloneForIssueType(t *testing.T) {
	overridePath := writeTestOverride(t)
	input := validInput()
	input.OverrideFile = overridePath
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	clone, err := cfg.CloneForIssueType(schema.TaskType)
	require.NoError(t, err)
	assert.Equal(t, schema.TaskType, clone.IssueType)
	assert.Equal(t, schema.TaskType, clone.Profile.IssueType)
	// Override taxonomy carries into the re-resolved profile.
	assert.Equal(t, []string{"New", "Open", "Closed"}, clone.Profile.Taxonomy.GroupNames())
	assert.Equal(t, schema.DefectType, cfg.IssueType)

	_, err = cfg.CloneForIssueType("Nonsense")
	assert.Error(t, err)
}
