//go:build integration || database

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a githours binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the githours binary, building it once if needed.
func getBinary() string {
	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "githours-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "githours")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build githours: %v\n%s", err, out))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// fixtureCommit is one commit of the fixture repository.
type fixtureCommit struct {
	author  string
	date    string
	message string
}

// fixtureCommits gives Alice 0.5h + 1h, Bob 2h, and one merge that is ignored.
var fixtureCommits = []fixtureCommit{
	{"Alice", "2024-03-04T09:00:00Z", "start parser"},
	{"Alice", "2024-03-04T09:30:00Z", "parser tests"},
	{"Bob", "2024-03-04T10:00:00Z", "docs"},
	{"Bob", "2024-03-04T12:00:00Z", "more docs"},
	{"Alice", "2024-03-04T18:00:00Z", "evening fix"},
	{"Alice", "2024-03-04T19:00:00Z", "Merge branch 'fix'"},
	{"Alice", "2024-03-04T19:00:00Z", "follow-up"},
	{"Bob", "2024-03-20T08:00:00Z", "release notes"},
}

// initFixtureRepo creates a git repository holding fixtureCommits.
func initFixtureRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(author, date string, args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		email := author + "@example.com"
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME="+author, "GIT_AUTHOR_EMAIL="+email,
			"GIT_COMMITTER_NAME="+author, "GIT_COMMITTER_EMAIL="+email,
			"GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date,
			"GIT_CONFIG_NOSYSTEM=1", "HOME="+dir)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	run("Alice", fixtureCommits[0].date, "init", "-q")
	for _, c := range fixtureCommits {
		run(c.author, c.date, "commit", "-q", "--allow-empty", "-m", c.message)
	}
	return dir
}

// runBinary runs githours in dir with extra environment and returns stdout.
func runBinary(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(append(os.Environ(), "HOME="+t.TempDir()), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
	}
	return stdout.String(), err
}
