package agg

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCombineConcatenatesInInputOrder(t *testing.T) {
	ctx := context.Background()
	provider := new(contract.MockCommitProvider)
	// repo-a answers last, but its commits must still come first
	provider.On("ListCommits", mock.Anything, "repo-a", []string(nil)).
		After(30*time.Millisecond).
		Return([]schema.RawCommit{raw("Alice", at(9, 0), "a1", "a1"), raw("Alice", at(9, 10), "Merge x", "m1")}, nil)
	provider.On("ListCommits", mock.Anything, "repo-b", []string(nil)).
		Return([]schema.RawCommit{raw("Bob", at(10, 0), "b1", "b1")}, nil)

	records, err := Combine(ctx, provider, []string{"repo-a", "repo-b"}, CombineOptions{Location: time.UTC, Workers: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b1"}, ids(records))
	assert.Equal(t, "repo-a", records[0].Repo)
	assert.Equal(t, "repo-b", records[1].Repo)
	provider.AssertExpectations(t)
}

func TestCombineKeepsDuplicatesAcrossRepos(t *testing.T) {
	ctx := context.Background()
	shared := raw("Alice", at(9, 0), "Initial commit", "same-sha")
	provider := new(contract.MockCommitProvider)
	provider.On("ListCommits", mock.Anything, "upstream", []string(nil)).Return([]schema.RawCommit{shared}, nil)
	provider.On("ListCommits", mock.Anything, "fork", []string(nil)).Return([]schema.RawCommit{shared}, nil)

	records, err := Combine(ctx, provider, []string{"upstream", "fork"}, CombineOptions{})
	require.NoError(t, err)

	timelines := BuildTimelines(records)
	require.Len(t, timelines, 1)
	assert.Len(t, timelines[0].Commits, 2)

	// A zero gap qualifies, so duplicates add nothing but still count
	res := Segment(timelines, DefaultThreshold)
	assert.Zero(t, res.Active["Alice"])
	assert.Len(t, res.Entries, 1)
}

func TestCombinePassesBranches(t *testing.T) {
	ctx := context.Background()
	branches := []string{"main", "release"}
	c := raw("Alice", at(9, 0), "work", "c1")
	c.Branches = []string{"release", "main"}

	provider := new(contract.MockCommitProvider)
	provider.On("ListCommits", mock.Anything, "repo", branches).Return([]schema.RawCommit{c}, nil)

	records, err := Combine(ctx, provider, []string{"repo"}, CombineOptions{Branches: branches})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "main", records[0].Branch)
	provider.AssertExpectations(t)
}

func TestCombineFailsFast(t *testing.T) {
	ctx := context.Background()
	provider := new(contract.MockCommitProvider)
	provider.On("ListCommits", mock.Anything, "good", []string(nil)).
		Return([]schema.RawCommit{raw("Alice", at(9, 0), "a", "a")}, nil)
	provider.On("ListCommits", mock.Anything, "broken", []string(nil)).
		Return(nil, fmt.Errorf("%w: broken", contract.ErrNotARepository))

	records, err := Combine(ctx, provider, []string{"broken", "good"}, CombineOptions{Workers: 1})

	require.Error(t, err)
	assert.Nil(t, records)
	assert.ErrorIs(t, err, contract.ErrNotARepository)
	assert.Contains(t, err.Error(), `"broken"`)
	provider.AssertNotCalled(t, "ListCommits", mock.Anything, "good", []string(nil))
}

func TestCombineConcurrentFailureReturnsNoPartialResult(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("network down")
	provider := new(contract.MockCommitProvider)
	provider.On("ListCommits", mock.Anything, "a", []string(nil)).Return([]schema.RawCommit{raw("Alice", at(9, 0), "a", "a")}, nil).Maybe()
	provider.On("ListCommits", mock.Anything, "b", []string(nil)).Return(nil, boom)
	provider.On("ListCommits", mock.Anything, "c", []string(nil)).Return([]schema.RawCommit{raw("Carol", at(9, 0), "c", "c")}, nil).Maybe()

	records, err := Combine(ctx, provider, []string{"a", "b", "c"}, CombineOptions{Workers: 3})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, records)
}

func TestCombineNoRepos(t *testing.T) {
	provider := new(contract.MockCommitProvider)
	records, err := Combine(context.Background(), provider, nil, CombineOptions{})
	require.NoError(t, err)
	assert.Empty(t, records)
}
