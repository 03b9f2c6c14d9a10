package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/plist/plist"
)

func TestCollectFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.plist", "a.strings", "notes.txt", "sub/c.bplist"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}

	files, err := collectFiles([]string{dir, filepath.Join(dir, "notes.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.strings"),
		filepath.Join(dir, "b.plist"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "sub", "c.bplist"),
	}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestMeasure(t *testing.T) {
	t.Parallel()

	r, err := measure("doc", []byte(`{n = <*I1>;}`))
	require.NoError(t, err)
	assert.Equal(t, plist.GNUStepFormat, r.Source)
	assert.Equal(t, 12, r.SourceBytes)
	assert.Equal(t, len("{\n\t\"n\" = 1;\n}\n"), r.OpenStepBytes)
	assert.Equal(t, len("{\n\t\"n\" = <*I1>;\n}\n"), r.GNUStepBytes)
	assert.Greater(t, r.BinaryBytes, 0)

	_, err = measure("bad", []byte("{"))
	assert.Error(t, err)
}

func TestMeasure_NotEncodable(t *testing.T) {
	t.Parallel()

	// A binary document whose only object is null.
	data := []byte("bplist00")
	data = append(data, 0x00, 8)
	data = append(data, 0, 0, 0, 0, 0, 0, 1, 1)
	data = append(data, 0, 0, 0, 0, 0, 0, 0, 1)
	data = append(data, 0, 0, 0, 0, 0, 0, 0, 0)
	data = append(data, 0, 0, 0, 0, 0, 0, 0, 9)

	r, err := measure("null", data)
	require.NoError(t, err)
	assert.Equal(t, plist.BinaryFormat, r.Source)
	assert.Equal(t, notEncodable, r.BinaryBytes)
	assert.Equal(t, notEncodable, r.OpenStepBytes)
	assert.Equal(t, notEncodable, r.GNUStepBytes)
}

func TestReports(t *testing.T) {
	t.Parallel()

	results := []CaseResult{
		{Name: "small", Source: plist.OpenStepFormat, SourceBytes: 10, BinaryBytes: 60, OpenStepBytes: 12, GNUStepBytes: 14},
		{Name: "large", Source: plist.BinaryFormat, SourceBytes: 100, BinaryBytes: 100, OpenStepBytes: 200, GNUStepBytes: notEncodable},
	}
	total := sumResults(results)
	assert.Equal(t, 110, total.SourceBytes)
	assert.Equal(t, 160, total.BinaryBytes)
	assert.Equal(t, 212, total.OpenStepBytes)
	assert.Equal(t, 14, total.GNUStepBytes)

	var csv bytes.Buffer
	writeCSV(&csv, results)
	assert.Equal(t, "name,source,source_bytes,binary_bytes,openstep_bytes,gnustep_bytes,binary_pct\n"+
		"small,openstep,10,60,12,14,500.0\n"+
		"large,binary,100,100,200,-1,50.0\n", csv.String())

	var md bytes.Buffer
	writeMarkdown(&md, results, total)
	s := md.String()
	assert.Contains(t, s, "| **Binary** | 160 | 75.5% |")
	assert.Contains(t, s, "| small | 60 | 12 | +48 bytes |")
	assert.Contains(t, s, "| large | binary | 100 | 200 | n/a |")
}

func TestTruncateName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateName("short", 10))
	assert.Equal(t, "...6789", truncateName("0123456789", 7))
}
