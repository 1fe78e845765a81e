package metricstore

import (
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

// MockRunStore is a mock implementation of the RunStore interface.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// SaveRun implements the RunStore interface.
func (m *MockRunStore) SaveRun(result *schema.MetricsResult, duration time.Duration) (string, error) {
	args := m.Called(result, duration)
	return args.String(0), args.Error(1)
}

// ListRuns implements the RunStore interface.
func (m *MockRunStore) ListRuns(limit int) ([]schema.RunRecord, error) {
	args := m.Called(limit)
	records, _ := args.Get(0).([]schema.RunRecord)
	return records, args.Error(1)
}

// GetSeries implements the RunStore interface.
func (m *MockRunStore) GetSeries(runID string) ([]schema.SeriesRow, error) {
	args := m.Called(runID)
	cells, _ := args.Get(0).([]schema.SeriesRow)
	return cells, args.Error(1)
}

// GetAges implements the RunStore interface.
func (m *MockRunStore) GetAges(runID string) ([]schema.AgeRow, error) {
	args := m.Called(runID)
	cells, _ := args.Get(0).([]schema.AgeRow)
	return cells, args.Error(1)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
