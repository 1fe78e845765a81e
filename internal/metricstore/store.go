package metricstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names for run persistence.
const (
	metricRunsTable   = "metric_runs"
	metricSeriesTable = "metric_series"
	metricAgesTable   = "metric_ages"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetStoreDBFilePath()
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

	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &RunStoreImpl{
			db:      nil,
			backend: backend,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createStoreTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create store tables: %w", err)
	}

	return &RunStoreImpl{
		db:      db,
		backend: backend,
	}, nil
}

// createStoreTables creates the run persistence tables.
func createStoreTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{metricRunsTable, getCreateMetricRunsQuery(backend)},
		{metricSeriesTable, getCreateMetricSeriesQuery(backend)},
		{metricAgesTable, getCreateMetricAgesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateMetricRunsQuery returns the CREATE TABLE query for metric_runs.
func getCreateMetricRunsQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS metric_runs (
				id VARCHAR(36) PRIMARY KEY,
				created_at DATETIME(6) NOT NULL,
				source VARCHAR(32) NOT NULL,
				project VARCHAR(64) NOT NULL,
				issue_type VARCHAR(64) NOT NULL,
				strategy VARCHAR(32) NOT NULL,
				as_of DATETIME(6) NOT NULL,
				issue_count INT NOT NULL,
				point_count INT NOT NULL,
				duration_ms BIGINT NOT NULL
			);
		`

	case schema.PostgreSQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS metric_runs (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL,
				source TEXT NOT NULL,
				project TEXT NOT NULL,
				issue_type TEXT NOT NULL,
				strategy TEXT NOT NULL,
				as_of TIMESTAMPTZ NOT NULL,
				issue_count INT NOT NULL,
				point_count INT NOT NULL,
				duration_ms BIGINT NOT NULL
			);
		`

	default: // SQLite
		return `
			CREATE TABLE IF NOT EXISTS metric_runs (
				id TEXT PRIMARY KEY,
				created_at TEXT NOT NULL,
				source TEXT NOT NULL,
				project TEXT NOT NULL,
				issue_type TEXT NOT NULL,
				strategy TEXT NOT NULL,
				as_of TEXT NOT NULL,
				issue_count INTEGER NOT NULL,
				point_count INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL
			);
		`
	}
}

// getCreateMetricSeriesQuery returns the CREATE TABLE query for metric_series.
func getCreateMetricSeriesQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS metric_series (
				run_id VARCHAR(36) NOT NULL,
				point_date DATETIME(6) NOT NULL,
				kind VARCHAR(16) NOT NULL,
				row_label VARCHAR(128) NOT NULL,
				col_label VARCHAR(128) NOT NULL,
				n INT NOT NULL,
				INDEX idx_series_run (run_id)
			);
		`

	case schema.PostgreSQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS metric_series (
				run_id TEXT NOT NULL,
				point_date TIMESTAMPTZ NOT NULL,
				kind TEXT NOT NULL,
				row_label TEXT NOT NULL,
				col_label TEXT NOT NULL,
				n INT NOT NULL
			);
		`

	default: // SQLite
		return `
			CREATE TABLE IF NOT EXISTS metric_series (
				run_id TEXT NOT NULL,
				point_date TEXT NOT NULL,
				kind TEXT NOT NULL,
				row_label TEXT NOT NULL,
				col_label TEXT NOT NULL,
				n INTEGER NOT NULL
			);
		`
	}
}

// getCreateMetricAgesQuery returns the CREATE TABLE query for metric_ages.
func getCreateMetricAgesQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS metric_ages (
				run_id VARCHAR(36) NOT NULL,
				row_label VARCHAR(128) NOT NULL,
				col_label VARCHAR(128) NOT NULL,
				avg_days DOUBLE NOT NULL,
				cell_count INT NOT NULL,
				INDEX idx_ages_run (run_id)
			);
		`

	case schema.PostgreSQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS metric_ages (
				run_id TEXT NOT NULL,
				row_label TEXT NOT NULL,
				col_label TEXT NOT NULL,
				avg_days DOUBLE PRECISION NOT NULL,
				cell_count INT NOT NULL
			);
		`

	default: // SQLite
		return `
			CREATE TABLE IF NOT EXISTS metric_ages (
				run_id TEXT NOT NULL,
				row_label TEXT NOT NULL,
				col_label TEXT NOT NULL,
				avg_days REAL NOT NULL,
				cell_count INTEGER NOT NULL
			);
		`
	}
}

// placeholders returns n comma-separated parameter placeholders starting
// at position start (PostgreSQL numbers its placeholders).
func placeholders(backend schema.DatabaseBackend, start, n int) string {
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

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}

// SaveRun persists one produced result in a single transaction and
// returns the new run id. The NoneBackend reports an empty id.
func (rs *RunStoreImpl) SaveRun(result *schema.MetricsResult, duration time.Duration) (string, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return "", nil
	}

	runID := uuid.NewString()
	createdAt := time.Now().UTC()

	tx, err := rs.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runQuery := fmt.Sprintf(`INSERT INTO %s (id, created_at, source, project, issue_type, strategy, as_of, issue_count, point_count, duration_ms)
		VALUES (%s)`, metricRunsTable, placeholders(rs.backend, 1, 10))
	_, err = tx.Exec(runQuery,
		runID, formatTime(createdAt, rs.backend), string(result.Source), result.Project,
		result.IssueType, string(result.Strategy), formatTime(result.AsOf, rs.backend),
		result.Issues, len(result.Series), duration.Milliseconds())
	if err != nil {
		return "", fmt.Errorf("failed to insert run record: %w", err)
	}

	seriesQuery := fmt.Sprintf(`INSERT INTO %s (run_id, point_date, kind, row_label, col_label, n)
		VALUES (%s)`, metricSeriesTable, placeholders(rs.backend, 1, 6))
	seriesStmt, err := tx.Prepare(seriesQuery)
	if err != nil {
		return "", fmt.Errorf("failed to prepare series insert: %w", err)
	}
	defer func() { _ = seriesStmt.Close() }()

	insertGrid := func(date time.Time, kind string, grid schema.CountGrid, rows, cols []string) error {
		for _, row := range rows {
			for _, col := range cols {
				// Class rows omit their excluded priority columns.
				n, ok := grid[row][col]
				if !ok {
					continue
				}
				if _, err := seriesStmt.Exec(runID, formatTime(date, rs.backend), kind, row, col, n); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, point := range result.Series {
		if point.Severity != nil {
			if err := insertGrid(point.Date, schema.SeverityKind, point.Severity, result.SeverityRows, result.SeverityCols); err != nil {
				return "", fmt.Errorf("failed to insert severity cells: %w", err)
			}
		}
		if err := insertGrid(point.Date, schema.StatusKind, point.Status, result.StatusRows, result.StatusCols); err != nil {
			return "", fmt.Errorf("failed to insert status cells: %w", err)
		}
	}

	if result.Ages != nil {
		agesQuery := fmt.Sprintf(`INSERT INTO %s (run_id, row_label, col_label, avg_days, cell_count)
			VALUES (%s)`, metricAgesTable, placeholders(rs.backend, 1, 5))
		agesStmt, err := tx.Prepare(agesQuery)
		if err != nil {
			return "", fmt.Errorf("failed to prepare ages insert: %w", err)
		}
		defer func() { _ = agesStmt.Close() }()

		for _, row := range result.AgeRows {
			for _, col := range result.AgeCols {
				avg, ok := result.Ages[row][col]
				if !ok {
					continue
				}
				if _, err := agesStmt.Exec(runID, row, col, avg.AvgDays, avg.Count); err != nil {
					return "", fmt.Errorf("failed to insert age cell: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns recent run records, newest first.
func (rs *RunStoreImpl) ListRuns(limit int) ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, created_at, source, project, issue_type, strategy, as_of, issue_count, point_count, duration_ms
		FROM %s ORDER BY created_at DESC LIMIT %s`, metricRunsTable, placeholders(rs.backend, 1, 1))

	rows, err := rs.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var source, strategy string

		switch rs.backend {
		case schema.SQLiteBackend:
			var createdStr, asOfStr string
			if err := rows.Scan(&record.ID, &createdStr, &source, &record.Project, &record.IssueType,
				&strategy, &asOfStr, &record.Issues, &record.Points, &record.DurationMs); err != nil {
				return nil, fmt.Errorf("failed to scan run record: %w", err)
			}
			if record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr); err != nil {
				return nil, fmt.Errorf("failed to parse created_at: %w", err)
			}
			if record.AsOf, err = time.Parse(time.RFC3339Nano, asOfStr); err != nil {
				return nil, fmt.Errorf("failed to parse as_of: %w", err)
			}
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&record.ID, &record.CreatedAt, &source, &record.Project, &record.IssueType,
				&strategy, &record.AsOf, &record.Issues, &record.Points, &record.DurationMs); err != nil {
				return nil, fmt.Errorf("failed to scan run record: %w", err)
			}
		}

		record.Source = schema.Source(source)
		record.Strategy = schema.AggStrategy(strategy)
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetSeries returns the persisted series cells of a run in long form.
func (rs *RunStoreImpl) GetSeries(runID string) ([]schema.SeriesRow, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, point_date, kind, row_label, col_label, n
		FROM %s WHERE run_id = %s ORDER BY point_date, kind, row_label, col_label`,
		metricSeriesTable, placeholders(rs.backend, 1, 1))

	rows, err := rs.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SeriesRow
	for rows.Next() {
		var cell schema.SeriesRow

		switch rs.backend {
		case schema.SQLiteBackend:
			var dateStr string
			if err := rows.Scan(&cell.RunID, &dateStr, &cell.Kind, &cell.Row, &cell.Col, &cell.N); err != nil {
				return nil, fmt.Errorf("failed to scan series cell: %w", err)
			}
			if cell.Date, err = time.Parse(time.RFC3339Nano, dateStr); err != nil {
				return nil, fmt.Errorf("failed to parse point_date: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&cell.RunID, &cell.Date, &cell.Kind, &cell.Row, &cell.Col, &cell.N); err != nil {
				return nil, fmt.Errorf("failed to scan series cell: %w", err)
			}
		}

		results = append(results, cell)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series: %w", err)
	}
	return results, nil
}

// GetAges returns the persisted aging cells of a run.
func (rs *RunStoreImpl) GetAges(runID string) ([]schema.AgeRow, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, row_label, col_label, avg_days, cell_count
		FROM %s WHERE run_id = %s ORDER BY row_label, col_label`,
		metricAgesTable, placeholders(rs.backend, 1, 1))

	rows, err := rs.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AgeRow
	for rows.Next() {
		var cell schema.AgeRow
		if err := rows.Scan(&cell.RunID, &cell.Row, &cell.Col, &cell.AvgDays, &cell.Count); err != nil {
			return nil, fmt.Errorf("failed to scan age cell: %w", err)
		}
		results = append(results, cell)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ages: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend: rs.backend,
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", metricRunsTable)
	if err := rs.db.QueryRow(countQuery).Scan(&status.Runs); err != nil {
		return status, fmt.Errorf("failed to get run count: %w", err)
	}

	// Migration bookkeeping is optional; a store bootstrapped without
	// the migrate command reports version zero.
	var version uint
	var dirty bool
	row := rs.db.QueryRow("SELECT version, dirty FROM schema_migrations LIMIT 1")
	if err := row.Scan(&version, &dirty); err == nil {
		status.Version = version
		status.Dirty = dirty
	}

	return status, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
