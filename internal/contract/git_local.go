package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/githours/schema"
)

// Separators for the machine-readable log format. Record and unit separators
// never appear in author names and are vanishingly rare in messages.
const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

// commitLogFormat yields hash, author name, author email, committer epoch,
// parent hashes and the raw body for every commit.
const commitLogFormat = "--format=%x1e%H%x1f%an%x1f%ae%x1f%ct%x1f%P%x1f%B"

// Window bounds the commits a provider returns. Zero values mean unbounded.
type Window struct {
	Since time.Time
	Until time.Time
}

// LocalGitClient implements the CommitProvider interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct {
	window Window
}

var _ CommitProvider = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient(window Window) *LocalGitClient {
	return &LocalGitClient{window: window}
}

// Name implements the CommitProvider interface.
func (c *LocalGitClient) Name() string {
	return string(schema.LocalProvider)
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		if isNotRepository(stderr) {
			return nil, fmt.Errorf("%w: %q: %s", ErrNotARepository, repoPath, stderr)
		}
		return nil, fmt.Errorf("git command failed in %q: %s", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// RepoState implements the CommitProvider interface.
// It lists every ref with its hash, so commits on any branch invalidate cached history.
func (c *LocalGitClient) RepoState(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "show-ref", "--head")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoRoot returns the absolute path to the root of the Git repository
// containing the given context path.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListCommits implements the CommitProvider interface.
// With no branches it reads every ref. Otherwise each branch is read on its
// own and commits reachable from several branches are merged into one entry
// whose Branches lists them in request order.
func (c *LocalGitClient) ListCommits(ctx context.Context, repoPath string, branches []string) ([]schema.RawCommit, error) {
	if len(branches) == 0 {
		// Stash entries are not commits anyone authored as work
		out, err := c.Run(ctx, repoPath, c.logArgs("--exclude=refs/stash", "--all")...)
		if err != nil {
			return nil, err
		}
		return ParseCommitLog(out)
	}

	var commits []schema.RawCommit
	seen := make(map[string]int)
	for _, branch := range branches {
		if _, err := c.Run(ctx, repoPath, "rev-parse", "--verify", "--quiet", branch+"^{commit}"); err != nil {
			if errors.Is(err, ErrNotARepository) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %q in %q", ErrUnknownBranch, branch, repoPath)
		}
		out, err := c.Run(ctx, repoPath, c.logArgs(branch)...)
		if err != nil {
			return nil, err
		}
		parsed, err := ParseCommitLog(out)
		if err != nil {
			return nil, err
		}
		for _, raw := range parsed {
			if idx, ok := seen[raw.ID]; ok {
				commits[idx].Branches = append(commits[idx].Branches, branch)
				continue
			}
			raw.Branches = []string{branch}
			seen[raw.ID] = len(commits)
			commits = append(commits, raw)
		}
	}
	return commits, nil
}

// logArgs builds the git log invocation for the given revision selectors.
func (c *LocalGitClient) logArgs(revs ...string) []string {
	args := []string{"log", commitLogFormat}
	if !c.window.Since.IsZero() {
		args = append(args, "--since="+c.window.Since.Format(DateTimeFormat))
	}
	if !c.window.Until.IsZero() {
		args = append(args, "--until="+c.window.Until.Format(DateTimeFormat))
	}
	args = append(args, revs...)
	return append(args, "--")
}

// ParseCommitLog parses output produced with commitLogFormat.
func ParseCommitLog(out []byte) ([]schema.RawCommit, error) {
	records := strings.Split(string(out), recordSep)
	commits := make([]schema.RawCommit, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		fields := strings.SplitN(rec, fieldSep, 6)
		if len(fields) != 6 {
			return nil, fmt.Errorf("malformed commit record: %q", rec)
		}
		epoch, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid commit time for %s: %w", fields[0], err)
		}
		commits = append(commits, schema.RawCommit{
			ID:          strings.TrimSpace(fields[0]),
			AuthorName:  fields[1],
			AuthorEmail: fields[2],
			CommittedAt: epoch,
			Parents:     strings.Fields(fields[4]),
			Message:     strings.TrimRight(fields[5], "\n"),
		})
	}
	return commits, nil
}

// isNotRepository reports whether git stderr says the path is not a repository.
func isNotRepository(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "not a git repository") || strings.Contains(lower, "cannot change to")
}
