// Package main provides a performance benchmarking tool for the storecheck CLI.
// It measures validation times over a directory of extension packages,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - storecheck binary installed and available in PATH
// - A corpus directory holding unpacked extensions, .zip archives or .crx packages
//
// Usage: go run benchmark/main.go [corpus-dir]
//
//	corpus-dir: Directory containing the extension packages to validate
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Scenario    string
	Packages    int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	CorpusDir   string
	Timeout     time.Duration
	Workers     []int
	NoCacheRuns int
	CacheRuns   int
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [corpus-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		CorpusDir:   os.Args[1],
		Timeout:     2 * time.Minute,
		Workers:     []int{1, 4, 14},
		NoCacheRuns: 3,
		CacheRuns:   4,
	}

	packages, err := findPackages(config.CorpusDir)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, packages)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// findPackages verifies that the storecheck binary exists and lists the packages of the corpus.
func findPackages(corpusDir string) ([]string, error) {
	if _, err := exec.LookPath("storecheck"); err != nil {
		return nil, fmt.Errorf("storecheck binary not found in PATH")
	}

	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read corpus %s: %w", corpusDir, err)
	}

	var packages []string
	for _, entry := range entries {
		path := filepath.Join(corpusDir, entry.Name())
		switch {
		case entry.IsDir():
			if _, err := os.Stat(filepath.Join(path, "manifest.json")); err == nil {
				packages = append(packages, path)
			}
		case strings.HasSuffix(entry.Name(), ".zip"), strings.HasSuffix(entry.Name(), ".crx"):
			packages = append(packages, path)
		}
	}
	if len(packages) == 0 {
		return nil, fmt.Errorf("no extension packages found in %s", corpusDir)
	}
	return packages, nil
}

// runBenchmarks validates the whole corpus once per worker count.
func runBenchmarks(config BenchmarkConfig, packages []string) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d packages, %v timeout, workers %v, no-cache: %d runs, cache: %d runs\n",
		len(packages), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	var results []BenchmarkResult
	for _, workers := range config.Workers {
		scenario := fmt.Sprintf("validate/%dw", workers)
		results = append(results, runBenchmarkSuite(config, scenario, packages, workers))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one scenario.
func runBenchmarkSuite(config BenchmarkConfig, scenario string, packages []string, workers int) BenchmarkResult {
	fmt.Printf("Running %s\n", scenario)

	// Every suite starts from an empty SQLite cache in a scratch home directory
	home, err := os.MkdirTemp("", "storecheck-bench-*")
	if err != nil {
		fmt.Printf("Warning: failed to create scratch home: %v\n", err)
		return BenchmarkResult{Scenario: scenario, Packages: len(packages), NoCacheTime: "ERROR", ColdTime: "ERROR", WarmTime: "ERROR"}
	}
	defer func() { _ = os.RemoveAll(home) }()

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, home, packages, workers, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Scenario:    scenario,
		Packages:    len(packages),
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes storecheck validate multiple times and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, home string, packages []string, workers int, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{"validate", "--cache-backend", cacheBackend, "--workers", strconv.Itoa(workers)}, packages...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("storecheck", args...)
		cmd.Env = append(os.Environ(), "HOME="+home)

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Validated") &&
		strings.Contains(outputStr, "package(s) in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("storecheck_benchmark_%s.csv", timestamp))

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

	// Write header
	if err := writer.Write([]string{"scenario", "packages", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		record := []string{result.Scenario, strconv.Itoa(result.Packages), result.NoCacheTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-14s: No-cache: %s, Cold: %s, Warm: %s\n", result.Scenario, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
