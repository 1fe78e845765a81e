package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names maintained by the upstream extraction collector.
const (
	issuesTable        = "issues"
	statusHistoryTable = "status_history"
	projectGroupsTable = "project_groups"
)

// SQLSource reads the extraction database that the upstream collector
// keeps in sync with Jira and ClearQuest.
type SQLSource struct {
	db      *sql.DB
	source  schema.Source
	backend schema.DatabaseBackend
	log     zerolog.Logger
}

var _ contract.IssueSource = &SQLSource{} // Compile-time check

// NewSQLSource opens the extraction database for the specified backend.
func NewSQLSource(source schema.Source, backend schema.DatabaseBackend, connStr string) (*SQLSource, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetTrackerDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported tracker backend: %s. Use --tracker-file for runs without a database", backend)
	}

	src := &SQLSource{
		db:      db,
		source:  source,
		backend: backend,
		log:     zerolog.New(os.Stderr).With().Timestamp().Str("component", "tracker").Logger(),
	}

	if err := src.Ping(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Create empty tables on first run so status and test tooling work
	// before the collector has populated anything.
	if err := createTrackerTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tracker tables: %w", err)
	}

	return src, nil
}

// createTrackerTables creates the extraction tables when absent.
func createTrackerTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{issuesTable, getCreateIssuesQuery(backend)},
		{statusHistoryTable, getCreateStatusHistoryQuery(backend)},
		{projectGroupsTable, getCreateProjectGroupsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateIssuesQuery returns the CREATE TABLE query for issues.
func getCreateIssuesQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS issues (
				issue_key VARCHAR(64) PRIMARY KEY,
				project VARCHAR(64) NOT NULL,
				source VARCHAR(32) NOT NULL,
				issue_type VARCHAR(64) NOT NULL,
				priority VARCHAR(64),
				status VARCHAR(128) NOT NULL,
				created_at DATETIME(6) NOT NULL,
				resolved_at DATETIME(6),
				components TEXT,
				links TEXT,
				pack VARCHAR(128)
			);
		`

	case schema.PostgreSQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS issues (
				issue_key TEXT PRIMARY KEY,
				project TEXT NOT NULL,
				source TEXT NOT NULL,
				issue_type TEXT NOT NULL,
				priority TEXT,
				status TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				resolved_at TIMESTAMPTZ,
				components TEXT,
				links TEXT,
				pack TEXT
			);
		`

	default: // SQLite
		return `
			CREATE TABLE IF NOT EXISTS issues (
				issue_key TEXT PRIMARY KEY,
				project TEXT NOT NULL,
				source TEXT NOT NULL,
				issue_type TEXT NOT NULL,
				priority TEXT,
				status TEXT NOT NULL,
				created_at TEXT NOT NULL,
				resolved_at TEXT,
				components TEXT,
				links TEXT,
				pack TEXT
			);
		`
	}
}

// getCreateStatusHistoryQuery returns the CREATE TABLE query for status_history.
func getCreateStatusHistoryQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS status_history (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				issue_key VARCHAR(64) NOT NULL,
				old_status VARCHAR(128),
				new_status VARCHAR(128) NOT NULL,
				changed_at DATETIME(6) NOT NULL,
				INDEX idx_history_issue (issue_key, changed_at)
			);
		`

	case schema.PostgreSQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS status_history (
				id BIGSERIAL PRIMARY KEY,
				issue_key TEXT NOT NULL,
				old_status TEXT,
				new_status TEXT NOT NULL,
				changed_at TIMESTAMPTZ NOT NULL
			);
		`

	default: // SQLite
		return `
			CREATE TABLE IF NOT EXISTS status_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				issue_key TEXT NOT NULL,
				old_status TEXT,
				new_status TEXT NOT NULL,
				changed_at TEXT NOT NULL
			);
		`
	}
}

// getCreateProjectGroupsQuery returns the CREATE TABLE query for project_groups.
func getCreateProjectGroupsQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS project_groups (
				group_name VARCHAR(128) NOT NULL,
				project VARCHAR(64) NOT NULL,
				PRIMARY KEY (group_name, project)
			);
		`

	case schema.PostgreSQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS project_groups (
				group_name TEXT NOT NULL,
				project TEXT NOT NULL,
				PRIMARY KEY (group_name, project)
			);
		`

	default: // SQLite
		return `
			CREATE TABLE IF NOT EXISTS project_groups (
				group_name TEXT NOT NULL,
				project TEXT NOT NULL,
				PRIMARY KEY (group_name, project)
			);
		`
	}
}

// placeholderList returns n comma-separated parameter placeholders
// starting at position start (PostgreSQL numbers its placeholders).
func placeholderList(backend schema.DatabaseBackend, start, n int) string {
	parts := make([]string, n)
	for i := range n {
		switch backend {
		case schema.PostgreSQLBackend:
			parts[i] = fmt.Sprintf("$%d", start+i)
		default: // SQLite and MySQL
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// parseDBTime parses a timestamp stored as text. The collector writes
// RFC 3339, but older snapshots used the space-separated form.
func parseDBTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// FetchIssues returns the issues of one project and issue type with
// their status history assembled in transition order.
func (s *SQLSource) FetchIssues(ctx context.Context, project, issueType string) ([]schema.Issue, error) {
	profile, err := schema.GetProfile(s.source, issueType)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	typeList := placeholderList(s.backend, 2, len(profile.QueryTypes))
	args := make([]any, 0, len(profile.QueryTypes)+1)
	args = append(args, project)
	for _, qt := range profile.QueryTypes {
		args = append(args, qt)
	}

	query := fmt.Sprintf(`SELECT issue_key, project, issue_type, priority, status, created_at, resolved_at, components, links, pack
		FROM %s WHERE project = %s AND issue_type IN (%s) ORDER BY issue_key`,
		issuesTable, placeholderList(s.backend, 1, 1), typeList)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var order []string
	byKey := make(map[string]*schema.Issue)

	for rows.Next() {
		var issue schema.Issue
		var priority, components, links, pack sql.NullString

		switch s.backend {
		case schema.SQLiteBackend:
			var createdStr string
			var resolvedStr sql.NullString
			if err := rows.Scan(&issue.Key, &issue.Project, &issue.Type, &priority, &issue.Status, &createdStr, &resolvedStr, &components, &links, &pack); err != nil {
				return nil, fmt.Errorf("failed to scan issue: %w", err)
			}
			created, err := parseDBTime(createdStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at: %w", err)
			}
			issue.Created = created
			if resolvedStr.Valid && resolvedStr.String != "" {
				resolved, err := parseDBTime(resolvedStr.String)
				if err != nil {
					return nil, fmt.Errorf("failed to parse resolved_at: %w", err)
				}
				issue.Resolved = &resolved
			}
		default: // MySQL and PostgreSQL store as native datetime
			var resolved sql.NullTime
			if err := rows.Scan(&issue.Key, &issue.Project, &issue.Type, &priority, &issue.Status, &issue.Created, &resolved, &components, &links, &pack); err != nil {
				return nil, fmt.Errorf("failed to scan issue: %w", err)
			}
			issue.Created = issue.Created.UTC()
			if resolved.Valid {
				t := resolved.Time.UTC()
				issue.Resolved = &t
			}
		}

		issue.Priority = priority.String
		issue.Components = splitList(components.String)
		issue.Links = splitList(links.String)
		issue.Pack = pack.String

		byKey[issue.Key] = &issue
		order = append(order, issue.Key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issues: %w", err)
	}

	if err := s.fetchHistory(ctx, project, profile.QueryTypes, byKey); err != nil {
		return nil, err
	}

	issues := make([]schema.Issue, 0, len(order))
	for _, key := range order {
		issues = append(issues, *byKey[key])
	}
	issues = applyConventions(s.source, issues)

	s.log.Debug().
		Str("project", project).
		Str("issue_type", issueType).
		Int("issues", len(issues)).
		Dur("took", time.Since(start)).
		Msg("fetched issues")
	return issues, nil
}

// fetchHistory loads status transitions for the fetched issues and
// appends them to the parallel history lists in transition order.
func (s *SQLSource) fetchHistory(ctx context.Context, project string, queryTypes []string, byKey map[string]*schema.Issue) error {
	typeList := placeholderList(s.backend, 2, len(queryTypes))
	args := make([]any, 0, len(queryTypes)+1)
	args = append(args, project)
	for _, qt := range queryTypes {
		args = append(args, qt)
	}

	query := fmt.Sprintf(`SELECT h.issue_key, h.old_status, h.new_status, h.changed_at
		FROM %s h
		JOIN %s i ON i.issue_key = h.issue_key
		WHERE i.project = %s AND i.issue_type IN (%s)
		ORDER BY h.issue_key, h.changed_at`,
		statusHistoryTable, issuesTable, placeholderList(s.backend, 1, 1), typeList)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query status history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, newStatus string
		var oldStatus sql.NullString
		var changed time.Time

		switch s.backend {
		case schema.SQLiteBackend:
			var changedStr string
			if err := rows.Scan(&key, &oldStatus, &newStatus, &changedStr); err != nil {
				return fmt.Errorf("failed to scan status history: %w", err)
			}
			changed, err = parseDBTime(changedStr)
			if err != nil {
				return fmt.Errorf("failed to parse changed_at: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&key, &oldStatus, &newStatus, &changed); err != nil {
				return fmt.Errorf("failed to scan status history: %w", err)
			}
			changed = changed.UTC()
		}

		issue, ok := byKey[key]
		if !ok {
			continue
		}
		issue.History.Old = append(issue.History.Old, oldStatus.String)
		issue.History.New = append(issue.History.New, newStatus)
		issue.History.When = append(issue.History.When, changed)
	}
	return rows.Err()
}

// ActiveProjects lists the distinct project keys present in the
// extraction database.
func (s *SQLSource) ActiveProjects(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT project FROM %s ORDER BY project", issuesTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []string
	for rows.Next() {
		var project string
		if err := rows.Scan(&project); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// ProjectGroups returns the reporting groups the collector maintains.
func (s *SQLSource) ProjectGroups(ctx context.Context) ([]schema.ProjectGroup, error) {
	query := fmt.Sprintf("SELECT group_name, project FROM %s ORDER BY group_name, project", projectGroupsTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query project groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []schema.ProjectGroup
	for rows.Next() {
		var name, project string
		if err := rows.Scan(&name, &project); err != nil {
			return nil, fmt.Errorf("failed to scan project group: %w", err)
		}
		if len(groups) == 0 || groups[len(groups)-1].Name != name {
			groups = append(groups, schema.ProjectGroup{Name: name})
		}
		last := &groups[len(groups)-1]
		last.Projects = append(last.Projects, project)
	}
	return groups, rows.Err()
}

// Ping verifies the database connection.
func (s *SQLSource) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		var connDetail string
		switch s.backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return fmt.Errorf("failed to connect to %s database: %w. %s", s.backend, err, connDetail)
	}
	return nil
}

// Close closes the underlying connection.
func (s *SQLSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
