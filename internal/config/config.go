// Package config handles loading and validation of the .pydiff/config.yaml
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pydiff/pydiff/internal/output"
)

const (
	// ConfigDirName is the per-project configuration directory.
	ConfigDirName = ".pydiff"
	// ConfigFileName is the config file inside ConfigDirName.
	ConfigFileName = "config.yaml"
)

var (
	// ErrConfigNotFound indicates no .pydiff directory was found walking up
	// from the start directory.
	ErrConfigNotFound = errors.New("config directory not found")
	// ErrInvalidConfig indicates the config file failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the top-level pydiff configuration.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Compare CompareConfig `yaml:"compare"`
	Cache   CacheConfig   `yaml:"cache"`
}

// OutputConfig controls how diff reports are rendered.
type OutputConfig struct {
	// Highlight selects identifier rendering: "color" or "quotes".
	Highlight string `yaml:"highlight"`
	// Format selects the report format: "text", "yaml", or "json".
	Format string `yaml:"format"`
}

// CompareConfig controls which files are compared.
type CompareConfig struct {
	// Exclude lists glob patterns for paths to skip during directory walks.
	Exclude []string `yaml:"exclude"`
}

// CacheConfig controls the module diff cache.
type CacheConfig struct {
	// Disabled turns off the sqlite diff cache.
	Disabled bool `yaml:"disabled"`
}

// Load finds the config directory starting from startDir and loads the
// config file from it. Returns defaults if no config directory exists.
func Load(startDir string) (*Config, error) {
	configDir, err := FindConfigDir(startDir)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath loads configuration from an explicit file path.
// A missing file yields defaults; a present file is merged over defaults
// and validated.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := Merge(&loaded, DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigDir walks up from startDir looking for a .pydiff directory.
func FindConfigDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigDirName)
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}
		dir = parent
	}
}

// EnsureConfigDir creates the .pydiff directory under baseDir if needed
// and returns its path.
func EnsureConfigDir(baseDir string) (string, error) {
	configDir := filepath.Join(baseDir, ConfigDirName)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if _, err := output.ParseHighlight(c.Output.Highlight); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, pattern := range c.Compare.Exclude {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("%w: exclude pattern %q: %v", ErrInvalidConfig, pattern, err)
		}
	}
	return nil
}

// SaveDefault writes the default configuration under baseDir/.pydiff,
// creating the directory if needed. Refuses to overwrite an existing
// config file.
func SaveDefault(baseDir string) (string, error) {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling default config: %w", err)
	}

	content := append([]byte("# pydiff configuration\n"), data...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}
