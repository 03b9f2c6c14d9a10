package main

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Neumenon/plist/plist"
)

// notEncodable marks a size for a format that cannot hold the document.
const notEncodable = -1

type CaseResult struct {
	Name          string
	Source        plist.Format
	SourceBytes   int
	BinaryBytes   int
	OpenStepBytes int
	GNUStepBytes  int
}

var plistExtensions = map[string]bool{
	".plist":   true,
	".strings": true,
	".bplist":  true,
}

// collectFiles expands directories into the property list files they hold.
// Explicit file arguments are kept whatever their extension.
func collectFiles(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if path == root || plistExtensions[strings.ToLower(filepath.Ext(path))] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", root)
		}
	}
	sort.Strings(files)
	return files, nil
}

func encodedSize(v *plist.Value, f plist.Format) int {
	out, err := plist.Encode(v, f)
	if err != nil {
		log.Debug("not encodable", "format", f.String(), "error", err.Error())
		return notEncodable
	}
	return len(out)
}

func measure(name string, data []byte) (CaseResult, error) {
	v, f, err := plist.Decode(data)
	if err != nil {
		return CaseResult{}, err
	}
	return CaseResult{
		Name:          name,
		Source:        f,
		SourceBytes:   len(data),
		BinaryBytes:   encodedSize(v, plist.BinaryFormat),
		OpenStepBytes: encodedSize(v, plist.OpenStepFormat),
		GNUStepBytes:  encodedSize(v, plist.GNUStepFormat),
	}, nil
}

// sumResults totals each column, skipping sizes that were not encodable.
func sumResults(results []CaseResult) CaseResult {
	total := CaseResult{Name: "total"}
	add := func(sum *int, n int) {
		if n > 0 {
			*sum += n
		}
	}
	for _, r := range results {
		add(&total.SourceBytes, r.SourceBytes)
		add(&total.BinaryBytes, r.BinaryBytes)
		add(&total.OpenStepBytes, r.OpenStepBytes)
		add(&total.GNUStepBytes, r.GNUStepBytes)
	}
	return total
}

func pct(n, base int) float64 {
	if n < 0 || base <= 0 {
		return 0
	}
	return float64(n) / float64(base) * 100.0
}

func cell(n int) string {
	if n == notEncodable {
		return "n/a"
	}
	return fmt.Sprint(n)
}

func writeCSV(w io.Writer, results []CaseResult) {
	fmt.Fprintln(w, "name,source,source_bytes,binary_bytes,openstep_bytes,gnustep_bytes,binary_pct")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%s,%d,%d,%d,%d,%.1f\n",
			r.Name, r.Source, r.SourceBytes, r.BinaryBytes, r.OpenStepBytes, r.GNUStepBytes,
			pct(r.BinaryBytes, r.OpenStepBytes))
	}
}

func writeMarkdown(w io.Writer, results []CaseResult, total CaseResult) {
	fmt.Fprintf(w, "# Property List Size Results\n\n")
	fmt.Fprintf(w, "**Date:** %s  \n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(w, "**Corpus:** %d files  \n\n", len(results))

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Format | Bytes | vs OpenStep |\n")
	fmt.Fprintf(w, "|--------|-------|-------------|\n")
	fmt.Fprintf(w, "| **Binary** | %d | %.1f%% |\n", total.BinaryBytes, pct(total.BinaryBytes, total.OpenStepBytes))
	fmt.Fprintf(w, "| **OpenStep** | %d | 100.0%% |\n", total.OpenStepBytes)
	fmt.Fprintf(w, "| **GNUstep** | %d | %.1f%% |\n\n", total.GNUStepBytes, pct(total.GNUStepBytes, total.OpenStepBytes))

	sorted := make([]CaseResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return pct(sorted[i].BinaryBytes, sorted[i].OpenStepBytes) < pct(sorted[j].BinaryBytes, sorted[j].OpenStepBytes)
	})

	fmt.Fprintf(w, "### Cases Where Binary is Larger\n\n")
	var worse []CaseResult
	for _, r := range sorted {
		if r.BinaryBytes > r.OpenStepBytes && r.OpenStepBytes != notEncodable {
			worse = append(worse, r)
		}
	}
	if len(worse) == 0 {
		fmt.Fprintf(w, "_None - binary is smaller or equal in all cases._\n\n")
	} else {
		fmt.Fprintf(w, "| Case | Binary | OpenStep | Overhead |\n")
		fmt.Fprintf(w, "|------|--------|----------|----------|\n")
		for _, r := range worse {
			fmt.Fprintf(w, "| %s | %d | %d | +%d bytes |\n", r.Name, r.BinaryBytes, r.OpenStepBytes, r.BinaryBytes-r.OpenStepBytes)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "## Detailed Results\n\n")
	fmt.Fprintf(w, "| Case | Source | Binary | OpenStep | GNUstep |\n")
	fmt.Fprintf(w, "|------|--------|--------|----------|---------|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			truncateName(r.Name, 32), r.Source, cell(r.BinaryBytes), cell(r.OpenStepBytes), cell(r.GNUStepBytes))
	}
}

func truncateName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen+3:]
}
