package metricstore

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trackline/trackline/schema"
)

func TestStores(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "stores.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		err := InitStores(schema.SQLiteBackend, dbPath)
		assert.NoError(t, err, "Failed to initialize run store")

		assert.NotNil(t, Manager.GetRunStore(), "Run store should not be nil")

		CloseStores()

		// Verify database file was created
		_, err = os.Stat(dbPath)
		assert.False(t, os.IsNotExist(err), "Database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "stores.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Multiple initializations should be safe (sync.Once)
		err1 := InitStores(schema.SQLiteBackend, dbPath)
		err2 := InitStores(schema.SQLiteBackend, dbPath)

		assert.NoError(t, err1, "First init should not fail")
		assert.NoError(t, err2, "Second init should not fail")

		// Multiple closes should be safe (sync.Once)
		CloseStores()
		CloseStores()
	})

	t.Run("none backend", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		err := InitStores(schema.NoneBackend, "")
		assert.NoError(t, err, "Failed to initialize with none backend")

		store := Manager.GetRunStore()
		assert.NotNil(t, store, "Run store should not be nil")

		// Cleanup is safe even with no DB
		CloseStores()
	})

	t.Run("empty backend skips init", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		err := InitStores("", "")
		assert.NoError(t, err, "Empty backend should not fail")
		assert.Nil(t, Manager.GetRunStore(), "No store should be configured")

		CloseStores()
	})

	t.Run("invalid connection errors", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test
		defer func() {
			initOnce = sync.Once{}
			closeOnce = sync.Once{}
		}()

		err := InitStores(schema.MySQLBackend, "invalid://connection")
		assert.Error(t, err, "Expected error for invalid MySQL connection string")
	})
}

func TestClearStore(t *testing.T) {
	t.Run("SQLite backend", func(t *testing.T) {
		// Create a temporary test database in a temp directory
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test_clear.db")

		// Create the database file directly with sql.Open
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			t.Fatalf("Failed to create database: %v", err)
		}

		// Create a simple table
		_, err = db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY)")
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
		_ = db.Close()

		// Verify file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Fatal("Database file should exist before ClearStore")
		}

		// Clear the store
		err = ClearStore(schema.SQLiteBackend, dbPath, "")
		if err != nil {
			t.Fatalf("ClearStore failed: %v", err)
		}

		// Verify file is removed
		if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
			t.Error("Database file should be removed after ClearStore")
		}
	})

	t.Run("SQLite backend - non-existent file", func(t *testing.T) {
		// Clearing non-existent file should not error
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "non_existent.db")
		err := ClearStore(schema.SQLiteBackend, dbPath, "")
		if err != nil {
			t.Errorf("ClearStore on non-existent file should not error: %v", err)
		}
	})

	t.Run("NoneBackend", func(t *testing.T) {
		// NoneBackend should be no-op
		err := ClearStore(schema.NoneBackend, "", "")
		if err != nil {
			t.Errorf("ClearStore with NoneBackend should not error: %v", err)
		}
	})

	t.Run("empty dbFilePath for SQLite", func(t *testing.T) {
		err := ClearStore(schema.SQLiteBackend, "", "")
		if err == nil {
			t.Error("Expected error for empty dbFilePath with SQLite backend")
		}
	})

	t.Run("unsupported backend", func(t *testing.T) {
		err := ClearStore(schema.DatabaseBackend("unsupported"), "", "")
		if err == nil {
			t.Error("Expected error for unsupported backend")
		}
	})
}

// TestRunStoreManagerConcurrency tests concurrent access to RunStoreManager.
func TestRunStoreManagerConcurrency(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "concurrent.db")

	initOnce = sync.Once{}
	closeOnce = sync.Once{}

	err := InitStores(schema.SQLiteBackend, dbPath)
	if err != nil {
		t.Fatalf("InitStores failed: %v", err)
	}
	defer CloseStores()

	// Concurrently access the manager
	const numGoroutines = 10
	done := make(chan bool, numGoroutines)

	for i := range numGoroutines {
		go func(id int) {
			defer func() { done <- true }()
			store := Manager.GetRunStore()
			if store == nil {
				t.Errorf("Goroutine %d: GetRunStore returned nil", id)
				return
			}
			if _, err := store.ListRuns(5); err != nil {
				t.Errorf("Goroutine %d: ListRuns failed: %v", id, err)
			}
		}(i)
	}

	// Wait for all goroutines to complete
	for range numGoroutines {
		<-done
	}
}
