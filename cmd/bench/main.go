// bench - phpser benchmark runner
//
// Encodes every case of the JSON corpus and compares:
//   - Bytes of minified JSON vs serialize() output
//   - Encode time per call
//   - Output against the golden file
//
// Output: CSV and markdown summary
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"github.com/tidwall/pretty"
	"golang.org/x/sync/errgroup"

	"github.com/Neumenon/phpser/phpser"
)

type CaseResult struct {
	Name        string
	JSONBytes   int
	PHPBytes    int
	Overhead    int
	OverheadPct float64
	NsPerOp     float64
	GoldenMatch bool
}

type Manifest struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	Cases       []struct {
		Name   string `json:"name"`
		Input  string `json:"input"`
		Golden string `json:"golden"`
	} `json:"cases"`
}

func main() {
	var (
		iterations int
		workers    int
		outDir     string
	)
	flag.IntVarP(&iterations, "iterations", "n", 10000, "Encode calls per case")
	flag.IntVarP(&workers, "workers", "w", 4, "Cases measured in parallel")
	flag.StringVarP(&outDir, "out", "o", ".", "Directory for the CSV and markdown reports")
	flag.Parse()

	testdataDir := findTestdata()
	if testdataDir == "" {
		fmt.Fprintln(os.Stderr, "Cannot find testdata/json directory")
		os.Exit(1)
	}

	manifestData, err := os.ReadFile(filepath.Join(testdataDir, "manifest.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot read manifest: %v\n", err)
		os.Exit(1)
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot parse manifest: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "phpser Benchmark Runner\n")
	fmt.Fprintf(os.Stderr, "=======================\n")
	fmt.Fprintf(os.Stderr, "Corpus: %s (%d cases)\n\n", manifest.Version, len(manifest.Cases))

	results := make([]*CaseResult, len(manifest.Cases))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(1, workers))
	for i, c := range manifest.Cases {
		i, c := i, c
		g.Go(func() error {
			r, err := runCase(ctx, testdataDir, c.Name, c.Input, c.Golden, iterations)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Skip %s: %v\n", c.Name, err)
				return nil
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Benchmark aborted: %v\n", err)
		os.Exit(1)
	}

	var done []CaseResult
	var totalJSON, totalPHP, mismatches int
	for _, r := range results {
		if r == nil {
			continue
		}
		done = append(done, *r)
		totalJSON += r.JSONBytes
		totalPHP += r.PHPBytes
		if !r.GoldenMatch {
			mismatches++
		}
	}

	csvPath := filepath.Join(outDir, "bench_results.csv")
	if csvFile, err := os.Create(csvPath); err == nil {
		writeCSV(csvFile, done)
		csvFile.Close()
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", csvPath)
	}

	mdPath := filepath.Join(outDir, "BENCH.md")
	if mdFile, err := os.Create(mdPath); err == nil {
		writeMarkdown(mdFile, done, totalJSON, totalPHP, manifest.Version, iterations)
		mdFile.Close()
		fmt.Fprintf(os.Stderr, "Markdown written to: %s\n", mdPath)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Cases:            %d\n", len(done))
	fmt.Printf("JSON total:       %d bytes\n", totalJSON)
	fmt.Printf("serialize total:  %d bytes\n", totalPHP)
	if totalJSON > 0 {
		fmt.Printf("Overhead:         %d (%.1f%%)\n", totalPHP-totalJSON, float64(totalPHP-totalJSON)/float64(totalJSON)*100)
	}
	fmt.Printf("Golden mismatches: %d\n", mismatches)
	if mismatches > 0 {
		os.Exit(2)
	}
}

// runCase decodes one JSON case and times repeated encoding of it.
func runCase(ctx context.Context, dir, name, input, golden string, iterations int) (*CaseResult, error) {
	jsonData, err := os.ReadFile(filepath.Join(dir, input))
	if err != nil {
		return nil, err
	}
	v, err := phpser.FromJSON(jsonData)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}

	enc := phpser.NewEncoder(phpser.DefaultOptions())
	out, err := enc.Serialize(v)
	if err != nil {
		return nil, errors.Wrap(err, "serialize")
	}

	r := &CaseResult{
		Name:        name,
		JSONBytes:   len(pretty.Ugly(jsonData)),
		PHPBytes:    len(out),
		GoldenMatch: true,
	}
	r.Overhead = r.PHPBytes - r.JSONBytes
	if r.JSONBytes > 0 {
		r.OverheadPct = float64(r.Overhead) / float64(r.JSONBytes) * 100.0
	}

	if golden != "" {
		want, err := os.ReadFile(filepath.Join(dir, golden))
		if err != nil {
			return nil, err
		}
		r.GoldenMatch = strings.TrimSpace(string(want)) == out
	}

	buf := make([]byte, 0, len(out))
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		buf, _ = enc.Append(buf[:0], v)
	}
	if iterations > 0 {
		r.NsPerOp = float64(time.Since(start).Nanoseconds()) / float64(iterations)
	}
	return r, nil
}

func findTestdata() string {
	paths := []string{
		"phpser/testdata/json",
		"../phpser/testdata/json",
		"../../phpser/testdata/json",
		"testdata/json",
	}

	for _, p := range paths {
		if _, err := os.Stat(filepath.Join(p, "manifest.json")); err == nil {
			return p
		}
	}

	return ""
}

func writeCSV(w io.Writer, results []CaseResult) {
	fmt.Fprintln(w, "name,json_bytes,php_bytes,overhead,overhead_pct,ns_per_op,golden_match")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%d,%.1f,%.0f,%t\n",
			r.Name, r.JSONBytes, r.PHPBytes, r.Overhead, r.OverheadPct, r.NsPerOp, r.GoldenMatch)
	}
}

func writeMarkdown(w io.Writer, results []CaseResult, totalJSON, totalPHP int, version string, iterations int) {
	fmt.Fprintf(w, "# phpser Benchmark Results\n\n")
	fmt.Fprintf(w, "**Corpus:** %s (%d cases)  \n", version, len(results))
	fmt.Fprintf(w, "**Iterations per case:** %d  \n\n", iterations)

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Metric | JSON (minified) | serialize() | Overhead |\n")
	fmt.Fprintf(w, "|--------|-----------------|-------------|----------|\n")
	overhead := totalPHP - totalJSON
	pct := 0.0
	if totalJSON > 0 {
		pct = float64(overhead) / float64(totalJSON) * 100
	}
	fmt.Fprintf(w, "| **Bytes** | %d | %d | %d (%.1f%%) |\n\n", totalJSON, totalPHP, overhead, pct)

	sorted := make([]CaseResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].NsPerOp > sorted[j].NsPerOp
	})

	fmt.Fprintf(w, "### Slowest Cases\n\n")
	fmt.Fprintf(w, "| Case | Bytes | ns/op |\n")
	fmt.Fprintf(w, "|------|-------|-------|\n")
	for i := 0; i < min(5, len(sorted)); i++ {
		r := sorted[i]
		fmt.Fprintf(w, "| %s | %d | %.0f |\n", r.Name, r.PHPBytes, r.NsPerOp)
	}

	fmt.Fprintf(w, "\n### Golden Mismatches\n\n")
	var bad []CaseResult
	for _, r := range results {
		if !r.GoldenMatch {
			bad = append(bad, r)
		}
	}
	if len(bad) == 0 {
		fmt.Fprintf(w, "_None - every case matches its golden file._\n\n")
	} else {
		for _, r := range bad {
			fmt.Fprintf(w, "- %s\n", r.Name)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "## Methodology\n\n")
	fmt.Fprintf(w, "- **JSON:** Minified with `pretty.Ugly`\n")
	fmt.Fprintf(w, "- **serialize():** `phpser.FromJSON` then `Encoder.Append` into a reused buffer\n\n")

	fmt.Fprintf(w, "## Detailed Results\n\n")
	fmt.Fprintf(w, "| Case | JSON Bytes | PHP Bytes | Overhead %% | ns/op | Golden |\n")
	fmt.Fprintf(w, "|------|------------|-----------|------------|-------|--------|\n")
	for _, r := range results {
		sign := ""
		if r.OverheadPct > 0 {
			sign = "+"
		}
		fmt.Fprintf(w, "| %s | %d | %d | %s%.1f%% | %.0f | %t |\n",
			truncateName(r.Name, 25), r.JSONBytes, r.PHPBytes, sign, r.OverheadPct, r.NsPerOp, r.GoldenMatch)
	}
}

func truncateName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
