package metricstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/trackline/trackline/schema"
)

// Manager is the global run store manager.
var Manager = RunStoreManager{}

var initOnce sync.Once
var closeOnce sync.Once

// InitStores initializes the global run store. An empty backend leaves
// persistence disabled and every store call becomes a no-op.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error
	initOnce.Do(func() {
		if backend == "" {
			return
		}
		store, err := NewRunStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize run store: %w", err)
			return
		}
		Manager.SetRunStore(store)
	})
	return initErr
}

// CloseStores closes the global run store. Call via defer in main.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.runs != nil {
			_ = Manager.runs.Close()
			Manager.runs = nil
		}
	})
}

// ClearStore removes all persisted runs. For SQLite this deletes the
// database file, for server backends it drops the store tables.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		path := connStr
		if path == "" {
			path = dbFilePath
		}
		if path == "" {
			return errors.New("no database file path provided")
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("failed to remove store database file: %w", err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTables("mysql", connStr)

	case schema.PostgreSQLBackend:
		return clearSQLTables("pgx", connStr)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend: %s", backend)
	}
}

// clearSQLTables drops the store tables from a server backend. The
// migration bookkeeping table goes too so a later migrate starts clean.
func clearSQLTables(driverName, connStr string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tables := []string{metricSeriesTable, metricAgesTable, metricRunsTable, "schema_migrations"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
