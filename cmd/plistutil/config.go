package main

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config holds the plistutil defaults that flags override.
type Config struct {
	Output OutputConfig `toml:"Output"`
}

// OutputConfig controls how convert renders documents.
type OutputConfig struct {
	Format       string `toml:"Format"`
	JSONIndent   string `toml:"JSONIndent"`
	ExtendedJSON bool   `toml:"ExtendedJSON"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format:     "openstep",
			JSONIndent: "  ",
		},
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	err := toml.Unmarshal(data, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultConfig().Output.Format
	}
	return cfg, nil
}
