// Package main provides a performance benchmarking tool for the githours CLI.
// It measures execution times across different repository sizes and commands,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - githours binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const binary = "githours"

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Repository  string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkCase is one command line measured on every repository.
type BenchmarkCase struct {
	Command     string
	Description string
	Args        []string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	TestRepos   []string
	Cases       []BenchmarkCase
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     14,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TestRepos:   []string{"csv-parser", "fd", "git", "kubernetes"},
		Cases: []BenchmarkCase{
			{Command: "hours", Description: "hours per contributor"},
			{Command: "commits", Description: "commit times (top 50)", Args: []string{"--limit", "50"}},
			{Command: "periods", Description: "monthly periods", Args: []string{"--granularity", "month"}},
			{Command: "report", Description: "full report (2 year window)", Args: []string{"--start", "2 years ago"}},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command(binary, "cache", "clear", "--cache-backend", "sqlite")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s binary not found in PATH", binary)
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// runBenchmarks executes every case across the configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, bc := range config.Cases {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, bc))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a case
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string, bc BenchmarkCase) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", bc.Description, repo)

	fmt.Printf("  No-cache phase (%d runs)\n", config.NoCacheRuns)
	noCache := runBenchmark(config, repoPath, bc, "none", config.NoCacheRuns)

	fmt.Printf("  Cache phase (%d runs)\n", config.CacheRuns)
	cached := runBenchmark(config, repoPath, bc, "sqlite", config.CacheRuns)

	result := BenchmarkResult{
		Repository:  repo,
		Command:     bc.Command,
		NoCacheTime: formatSeconds(noCache...),
		ColdTime:    "TIMEOUT",
		WarmTime:    "TIMEOUT",
	}
	if len(cached) > 0 {
		result.ColdTime = formatSeconds(cached[0])
		result.WarmTime = formatSeconds(cached[1:]...)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", result.NoCacheTime, result.ColdTime, result.WarmTime)
	return result
}

// formatSeconds renders the mean of the samples, or TIMEOUT when there are none.
func formatSeconds(samples ...float64) string {
	if len(samples) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(samples)))
}

// runBenchmark executes a command numRuns times with the given cache backend
// and returns the durations of the successful runs in order.
func runBenchmark(config BenchmarkConfig, repoPath string, bc BenchmarkCase, cacheBackend string, numRuns int) []float64 {
	args := []string{bc.Command, "--cache-backend", cacheBackend, "--workers", strconv.Itoa(config.Workers), "--color", "no"}
	args = append(args, bc.Args...)
	args = append(args, repoPath)

	var times []float64
	for range numRuns {
		if elapsed, ok := timeRun(config.Timeout, args); ok {
			times = append(times, elapsed)
		}
	}
	return times
}

// timeRun runs the binary once and reports how long a successful run took.
// Runs that fail or exceed the timeout are not counted.
func timeRun(timeout time.Duration, args []string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	output, err := exec.CommandContext(ctx, binary, args...).CombinedOutput()
	if err != nil || !isSuccess(output) {
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") &&
		strings.Contains(outputStr, "using") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("githours_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results per command
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, bc := range config.Cases {
		fmt.Printf("%s:\n", bc.Description)
		for _, result := range results {
			if result.Command == bc.Command {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
