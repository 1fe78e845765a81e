//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestTracklineWithMySQL round-trips the run store against a MySQL backend.
func TestTracklineWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "trackline",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/trackline?parseTime=true", host, port.Port())
	runStoreRoundTrip(t, "mysql", connStr)
}

// TestTracklineWithPostgres round-trips the run store against a PostgreSQL backend.
func TestTracklineWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	runStoreRoundTrip(t, "postgresql", connStr)
}

// runStoreRoundTrip drives the CLI through migrate, two persisted runs,
// listing, export, and clear against the given store backend.
func runStoreRoundTrip(t *testing.T, backend, connStr string) {
	t.Helper()

	// Set environment variables
	_ = os.Setenv("TRACKLINE_STORE_BACKEND", backend)
	_ = os.Setenv("TRACKLINE_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("TRACKLINE_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("TRACKLINE_STORE_DB_CONNECT") }()

	snapshot := writeIssueSnapshot(t)

	// Apply schema migrations against the fresh database
	err := runTrackline(t, "store", "migrate")
	require.NoError(t, err)

	// Start from an empty store
	err = runTrackline(t, "store", "clear")
	require.NoError(t, err)

	// Persist one series run and one aging run
	err = runTrackline(t, "series", "--tracker-file", snapshot, "--as-of", "2024-03-08", "-p", "GRND-A")
	require.NoError(t, err)

	err = runTrackline(t, "aging", "--tracker-file", snapshot, "--as-of", "2024-03-08")
	require.NoError(t, err)

	// Both runs should come back from the listing
	out, err := runTracklineOutput(t, "store", "runs", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "GRND-A")
	assert.Equal(t, 2, strings.Count(out, "jira"), "expected exactly two persisted runs")

	err = runTrackline(t, "store", "status")
	require.NoError(t, err)

	// Export the persisted runs to parquet
	exportPath := filepath.Join(t.TempDir(), "metrics")
	err = runTrackline(t, "store", "export", "--output-file", exportPath)
	require.NoError(t, err)
	info, err := os.Stat(exportPath + ".runs.parquet")
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// Clear and confirm the listing is empty
	err = runTrackline(t, "store", "clear")
	require.NoError(t, err)

	out, err = runTracklineOutput(t, "store", "runs", "--output", "csv")
	require.NoError(t, err)
	assert.NotContains(t, out, "GRND-A")
}

func runTrackline(t *testing.T, args ...string) error {
	_, err := runTracklineOutput(t, args...)
	return err
}

func runTracklineOutput(t *testing.T, args ...string) (string, error) {
	tracklinePath := getTracklineBinary()
	cmd := exec.Command(tracklinePath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return string(output), err
	}
	return string(output), nil
}
