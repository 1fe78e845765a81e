package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/trackline/trackline/schema"
)

// Default values for configuration.
const (
	DefaultExtractionDay = "friday"
	DefaultRunLimit      = 25
	MaxRunLimit          = 1000
	DefaultPrecision     = 1
	DefaultServeAddr     = ":8080"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a metrics run.
// This struct remains the "final, validated" config.
type Config struct {
	Source        schema.Source
	Project       string
	IssueType     string
	Strategy      schema.AggStrategy
	AsOf          time.Time
	ExtractionDay time.Weekday
	SkipAges      bool

	// Profile is the resolved issue type profile with any override
	// already applied.
	Profile        schema.Profile
	Override       *schema.Override
	Classification *schema.Classification

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	UseEmojis  bool

	TrackerBackend   schema.DatabaseBackend
	TrackerDBConnect string // Please use env var as this is plaintext
	TrackerFile      string // JSON snapshot path, takes precedence over the SQL backend

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	// Groups holds the reporting groups from the config file; when
	// empty the report falls back to groups from the issue source.
	Groups []schema.ProjectGroup

	RunLimit int

	ServeAddr   string
	RefreshCron string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Source        string `mapstructure:"source"`
	Project       string `mapstructure:"project"`
	IssueType     string `mapstructure:"issue-type"`
	Strategy      string `mapstructure:"strategy"`
	AsOf          string `mapstructure:"as-of"`
	ExtractionDay string `mapstructure:"extraction-day"`
	OverrideFile  string `mapstructure:"override-file"`
	SkipAges      bool   `mapstructure:"skip-ages"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	Emoji      string `mapstructure:"emoji"`

	TrackerBackend   string `mapstructure:"tracker-backend"`
	TrackerDBConnect string `mapstructure:"tracker-db-connect"`
	TrackerFile      string `mapstructure:"tracker-file"`

	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	// --- Fields from store/report subcommand flags ---
	Limit int `mapstructure:"limit"`

	// --- Fields from serveCmd.Flags() ---
	Addr        string `mapstructure:"addr"`
	RefreshCron string `mapstructure:"refresh-cron"`

	// --- Reporting groups from config file ---
	Groups []schema.ProjectGroup `mapstructure:"groups"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Groups != nil {
		clone.Groups = make([]schema.ProjectGroup, len(c.Groups))
		copy(clone.Groups, c.Groups)
	}
	if c.Classification != nil {
		cls := *c.Classification
		cls.ExcludeComponents = append([]string(nil), c.Classification.ExcludeComponents...)
		cls.Classes = append([]schema.ClassRule(nil), c.Classification.Classes...)
		clone.Classification = &cls
	}
	return &clone
}

// CloneForIssueType creates a copy of the Config retargeted at another
// issue type, re-resolving the profile with the same override.
func (c *Config) CloneForIssueType(issueType string) (*Config, error) {
	clone := c.Clone()
	profile, err := schema.GetProfile(c.Source, issueType)
	if err != nil {
		return nil, err
	}
	if c.Override != nil {
		profile = c.Override.Apply(profile)
	}
	clone.IssueType = issueType
	clone.Profile = profile
	return clone, nil
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSchedule(cfg, input); err != nil {
		return err
	}
	if err := processProfile(cfg, input); err != nil {
		return err
	}
	if err := processStrategy(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates tracker and store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Tracker Backend Validation ---
	cfg.TrackerFile = strings.TrimSpace(input.TrackerFile)
	cfg.TrackerBackend = schema.DatabaseBackend(strings.ToLower(input.TrackerBackend))
	if cfg.TrackerFile == "" {
		if _, ok := schema.ValidDatabaseBackends[cfg.TrackerBackend]; !ok {
			return fmt.Errorf("invalid tracker backend '%s'. must be sqlite, mysql, postgresql, none", input.TrackerBackend)
		}
		cfg.TrackerDBConnect = input.TrackerDBConnect
		if err := ValidateDatabaseConnectionString(cfg.TrackerBackend, cfg.TrackerDBConnect); err != nil {
			return err
		}
	}

	// --- Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend != "" {
		if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
			return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
		}
		cfg.StoreDBConnect = input.StoreDBConnect
		if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
			return err
		}

		// Validate that tracker and store use different databases.
		if cfg.TrackerFile == "" && cfg.StoreBackend == cfg.TrackerBackend && cfg.StoreBackend == schema.SQLiteBackend {
			trackerPath := cfg.TrackerDBConnect
			if trackerPath == "" {
				trackerPath = GetTrackerDBFilePath()
			}
			storePath := cfg.StoreDBConnect
			if storePath == "" {
				storePath = GetStoreDBFilePath()
			}
			if trackerPath == storePath {
				return fmt.Errorf("tracker and store must use different SQLite database files. Both resolve to %q", trackerPath)
			}
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-schedule fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Project = strings.TrimSpace(input.Project)
	cfg.OutputFile = input.OutputFile
	cfg.SkipAges = input.SkipAges
	cfg.Width = input.Width
	cfg.Groups = input.Groups
	cfg.ServeAddr = input.Addr
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}
	cfg.RefreshCron = strings.TrimSpace(input.RefreshCron)

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// --- 1. RunLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxRunLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxRunLimit, input.Limit)
	}
	cfg.RunLimit = input.Limit

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be table, csv, json", cfg.Output)
	}

	// --- 3. Source Validation ---
	cfg.Source = schema.Source(strings.ToLower(input.Source))
	if _, ok := schema.ValidSources[cfg.Source]; !ok {
		return fmt.Errorf("%w: '%s' must be jira or clearquest", schema.ErrUnsupportedSource, input.Source)
	}

	// --- 4. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processSchedule handles the asOf instant and the extraction weekday.
func processSchedule(cfg *Config, input *ConfigRawInput) error {
	cfg.AsOf = time.Now().UTC()
	if input.AsOf != "" {
		t, err := schema.ParseDate(input.AsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of value: %w", err)
		}
		cfg.AsOf = t
	}

	day := input.ExtractionDay
	if day == "" {
		day = DefaultExtractionDay
	}
	parsed, err := schema.ParseWeekday(day)
	if err != nil {
		return fmt.Errorf("invalid --extraction-day value: %w", err)
	}
	cfg.ExtractionDay = parsed
	return nil
}

// processProfile resolves the issue type profile and folds in the
// override file. An extraction day from the override file wins over the
// flag because it encodes when that deployment actually extracts.
func processProfile(cfg *Config, input *ConfigRawInput) error {
	cfg.IssueType = strings.TrimSpace(input.IssueType)
	if cfg.IssueType == "" {
		cfg.IssueType = schema.DefectType
	}

	profile, err := schema.GetProfile(cfg.Source, cfg.IssueType)
	if err != nil {
		return err
	}

	if input.OverrideFile != "" {
		override, err := schema.LoadOverride(input.OverrideFile)
		if err != nil {
			return err
		}
		cfg.Override = override
		cfg.Classification = override.Classification
		profile = override.Apply(profile)
		if day, set := override.Weekday(); set {
			cfg.ExtractionDay = day
		}
	}

	cfg.Profile = profile
	return nil
}

// processStrategy validates the aggregation strategy against what the
// rest of the config can support.
func processStrategy(cfg *Config, input *ConfigRawInput) error {
	strategy := strings.ToLower(strings.TrimSpace(input.Strategy))
	if strategy == "" {
		strategy = string(schema.AggBaseline)
	}
	cfg.Strategy = schema.AggStrategy(strategy)
	if _, ok := schema.ValidAggStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid strategy '%s'. must be baseline, project, classification", input.Strategy)
	}

	if cfg.Strategy == schema.AggClasses {
		if cfg.Classification == nil || len(cfg.Classification.Classes) == 0 {
			return fmt.Errorf("classification strategy requires an override file with class rules")
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
