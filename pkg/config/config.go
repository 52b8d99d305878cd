// Package config loads analysis configuration from TOML, YAML, or JSON
// files. Configuration is an explicit value threaded through the walker,
// analyzers, and engine at construction time; there is no process-wide
// mutable singleton.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for an analysis run.
type Config struct {
	Analysis AnalysisConfig  `koanf:"analysis"`
	Exclude  ExcludeConfig   `koanf:"exclude"`
	Security SecurityConfig  `koanf:"security"`
	Jobs     JobsConfig      `koanf:"jobs"`
	Limits   ThresholdConfig `koanf:"thresholds"`
}

// AnalysisConfig controls the analysis pipeline.
type AnalysisConfig struct {
	// Workers is the worker pool size; values < 1 fall back to 2x NumCPU.
	Workers int `koanf:"workers"`
	// MaxFileSizeFullLoad is the largest file, in bytes, loaded wholly into
	// memory for AST analysis. Larger files are streamed line by line.
	MaxFileSizeFullLoad int64 `koanf:"max_file_size_full_load"`
}

// ExcludeConfig defines the ignore policy applied during discovery.
// Patterns use gitignore syntax; Dirs are pruned before descent.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// SecurityConfig controls the vulnerability pattern scanner.
type SecurityConfig struct {
	// CatalogPath points to an external pattern catalog (YAML or JSON).
	// Empty means the built-in catalog.
	CatalogPath string `koanf:"catalog_path"`
}

// JobsConfig controls the asynchronous job registry.
type JobsConfig struct {
	// Retention is how many terminal jobs are kept before the oldest are
	// evicted. Running jobs are never evicted.
	Retention int `koanf:"retention"`
}

// ThresholdConfig defines metric thresholds used by the recommendation
// generator.
type ThresholdConfig struct {
	ComplexityWarn      float64 `koanf:"complexity_warn"`
	MaintainabilityWarn float64 `koanf:"maintainability_warn"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:             0, // 2x NumCPU
			MaxFileSizeFullLoad: 1 << 20,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Dirs: []string{
				".git",
				".hg",
				".svn",
				"node_modules",
				"vendor",
				"__pycache__",
				"venv",
				".venv",
				"dist",
				"build",
				"target",
			},
			Gitignore: true,
		},
		Security: SecurityConfig{
			CatalogPath: "",
		},
		Jobs: JobsConfig{
			Retention: 64,
		},
		Limits: ThresholdConfig{
			ComplexityWarn:      10,
			MaintainabilityWarn: 50,
		},
	}
}

// Load loads configuration from a file, picking the parser by extension.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
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
	return cfg, nil
}

// LoadOrDefault tries standard config locations and falls back to defaults.
func LoadOrDefault() *Config {
	names := []string{
		"omniforge.toml",
		"omniforge.yaml",
		"omniforge.yml",
		"omniforge.json",
		".omniforge.toml",
		".omniforge.yaml",
	}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}
