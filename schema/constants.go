package schema

// Custom string types for type safety.
type (
	// Source identifies the ticketing backend style an issue came from.
	Source string

	// OutputMode represents the format of the output.
	OutputMode string

	// AggStrategy selects how snapshot counts are segmented.
	AggStrategy string

	// DatabaseBackend represents a SQL backend for the tracker or run store.
	DatabaseBackend string
)

// All issue sources supported.
const (
	JiraSource       Source = "jira" // default
	ClearQuestSource Source = "clearquest"
)

// All output modes supported.
const (
	TableOut OutputMode = "table" // default
	CSVOut   OutputMode = "csv"
	JSONOut  OutputMode = "json"
)

// All aggregation strategies supported.
const (
	AggBaseline AggStrategy = "baseline" // default
	AggProject  AggStrategy = "project"
	AggClasses  AggStrategy = "classification"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Reserved row and column labels in count grids and age grids.
const (
	TotalLabel   = "Total"
	OpenLabel    = "Open"
	ClosedLabel  = "Closed"
	OverallLabel = "Overall"
)

// Issue types with built-in profiles.
const (
	DefectType     = "Defect"
	ChangeReqType  = "Change Request"
	TaskType       = "Task"
	ComplianceType = "Compliance"
	EngChangeType  = "Engineering Change Notice"
	EngNoticeType  = "Engineering Notice"
	DevReleaseType = "Development"
	ProdRelease    = "Production"
	EnhanceType    = "Enhancement"
)

// Record families routing clearquest fetches to their backing tables.
const (
	RecordDCR = "DCR"
	RecordRR  = "RR"
	RecordSCR = "SCR"
)

// DefaultPriorities is the ordered severity scale for types that carry one.
var DefaultPriorities = []string{"Blocker", "Critical", "Major", "Minor", "Trivial"}

// ValidSources lists all valid issue sources.
var ValidSources = map[Source]struct{}{
	JiraSource:       {},
	ClearQuestSource: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TableOut: {},
	CSVOut:   {},
	JSONOut:  {},
}

// ValidAggStrategies lists all valid aggregation strategies.
var ValidAggStrategies = map[AggStrategy]struct{}{
	AggBaseline: {},
	AggProject:  {},
	AggClasses:  {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
