package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	testString := `
[Output]
    Format = "gnustep"
    JSONIndent = "    "
    ExtendedJSON = true
`
	cfg, err := parseConfig([]byte(testString))
	require.NoError(t, err)
	assert.Equal(t, "gnustep", cfg.Output.Format)
	assert.Equal(t, "    ", cfg.Output.JSONIndent)
	assert.True(t, cfg.Output.ExtendedJSON)
}

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig([]byte(`[Output]
    Format = ""
`))
	require.NoError(t, err)
	assert.Equal(t, "openstep", cfg.Output.Format)

	_, err = parseConfig([]byte("[Output\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plistutil.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Output]\nFormat = \"binary\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "binary", cfg.Output.Format)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
