package contract

import (
	"context"

	"github.com/huangsam/githours/schema"
	"github.com/stretchr/testify/mock"
)

// MockCommitProvider is a mock implementation of CommitProvider for testing.
type MockCommitProvider struct {
	mock.Mock
}

var _ CommitProvider = &MockCommitProvider{} // Compile-time check

// ListCommits implements the CommitProvider interface.
func (m *MockCommitProvider) ListCommits(ctx context.Context, repo string, branches []string) ([]schema.RawCommit, error) {
	args := m.Called(ctx, repo, branches)
	commits, _ := args.Get(0).([]schema.RawCommit)
	return commits, args.Error(1)
}

// RepoState implements the CommitProvider interface.
func (m *MockCommitProvider) RepoState(ctx context.Context, repo string) (string, error) {
	args := m.Called(ctx, repo)
	return args.String(0), args.Error(1)
}

// Name implements the CommitProvider interface.
func (m *MockCommitProvider) Name() string {
	return "mock"
}

// MockRepoResolver is a mock implementation of RepoResolver for testing.
type MockRepoResolver struct {
	mock.Mock
}

var _ RepoResolver = &MockRepoResolver{} // Compile-time check

// GetRepoRoot implements the RepoResolver interface.
func (m *MockRepoResolver) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	args := m.Called(ctx, contextPath)
	return args.String(0), args.Error(1)
}
