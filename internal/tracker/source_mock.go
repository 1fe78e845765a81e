package tracker

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

// MockIssueSource is a mock implementation of IssueSource for testing.
type MockIssueSource struct {
	mock.Mock
}

var _ contract.IssueSource = &MockIssueSource{} // Compile-time check

// FetchIssues implements the IssueSource interface.
func (m *MockIssueSource) FetchIssues(ctx context.Context, project, issueType string) ([]schema.Issue, error) {
	args := m.Called(ctx, project, issueType)
	issues, _ := args.Get(0).([]schema.Issue)
	return issues, args.Error(1)
}

// ActiveProjects implements the IssueSource interface.
func (m *MockIssueSource) ActiveProjects(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]string)
	return projects, args.Error(1)
}

// ProjectGroups implements the IssueSource interface.
func (m *MockIssueSource) ProjectGroups(ctx context.Context) ([]schema.ProjectGroup, error) {
	args := m.Called(ctx)
	groups, _ := args.Get(0).([]schema.ProjectGroup)
	return groups, args.Error(1)
}

// Ping implements the IssueSource interface.
func (m *MockIssueSource) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close implements the IssueSource interface.
func (m *MockIssueSource) Close() error {
	args := m.Called()
	return args.Error(0)
}
