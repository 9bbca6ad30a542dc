// Package config loads carrion configuration from TOML, YAML, or JSON files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for carrion.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Baseline settings
	Baseline BaselineConfig `koanf:"baseline" toml:"baseline"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls the dead-code scan and the rule scanners.
type AnalysisConfig struct {
	// Confidence is the minimum confidence (0-100) a zero-reference
	// symbol needs to be reported.
	Confidence int  `koanf:"confidence" toml:"confidence"`
	Secrets    bool `koanf:"secrets" toml:"secrets"`
	Danger     bool `koanf:"danger" toml:"danger"`
	Quality    bool `koanf:"quality" toml:"quality"`
}

// ExcludeConfig defines file exclusion patterns (gitignore syntax).
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// BaselineConfig controls baseline suppression.
type BaselineConfig struct {
	File string `koanf:"file" toml:"file"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Confidence: 60,
			Secrets:    false,
			Danger:     false,
			Quality:    false,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{},
			Dirs: []string{
				".git",
				".venv",
				"venv",
				"__pycache__",
				".mypy_cache",
				".pytest_cache",
				"node_modules",
				"build",
				"dist",
			},
			Gitignore: true,
		},
		Baseline: BaselineConfig{
			File: "",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks value ranges after loading.
func (c *Config) Validate() error {
	if c.Analysis.Confidence < 0 || c.Analysis.Confidence > 100 {
		return fmt.Errorf("analysis.confidence must be between 0 and 100, got %d", c.Analysis.Confidence)
	}
	switch c.Output.Format {
	case "", "text", "json", "markdown", "md", "toon":
	default:
		return fmt.Errorf("output.format %q is not one of text, json, markdown, toon", c.Output.Format)
	}
	return nil
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"carrion.toml",
		"carrion.yaml",
		"carrion.yml",
		"carrion.json",
		".carrion.toml",
		".carrion.yaml",
		".carrion.yml",
		".carrion.json",
	}

	searchDirs := []string{".", ".carrion"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}
