// Package config provides configuration management for sitemetrics.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
)

// Config represents the sitemetrics configuration file.
type Config struct {
	Sitemetrics SitemetricsConfig `yaml:"sitemetrics"`
}

// SitemetricsConfig contains the main settings.
type SitemetricsConfig struct {
	// Source is the portfolio data source: a .json/.csv path,
	// "sqlite:<path>" or "sample:".
	Source string `yaml:"source"`

	// Health holds the scoring calibration and grade ladders.
	Health metrics.Config `yaml:"health"`

	// Stages maps stage keys to display descriptions.
	Stages map[string]string `yaml:"stages"`

	// Server configuration for the dashboard API.
	Server ServerConfig `yaml:"server"`

	// Log configuration.
	Log LogConfig `yaml:"log"`

	// Export configuration.
	Export ExportConfig `yaml:"export"`
}

// ServerConfig contains dashboard API settings.
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	DevMode bool   `yaml:"dev_mode"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ExportConfig contains export defaults.
type ExportConfig struct {
	Format    string `yaml:"format"`
	Directory string `yaml:"directory"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sitemetrics: SitemetricsConfig{
			Source: SampleSource,
			Health: metrics.DefaultConfig(),
			Stages: map[string]string{
				"Preconstruction": "Estimating, design assist and buyout",
				"Construction":    "Field work in progress",
				"Closeout":        "Punch list, commissioning and turnover",
			},
			Server: ServerConfig{
				Host: "localhost",
				Port: 8420,
			},
			Log: LogConfig{
				Level: "warn",
			},
			Export: ExportConfig{
				Format:    "csv",
				Directory: ".",
			},
		},
	}
}

// SampleSource selects the embedded demo dataset.
const SampleSource = "sample:"

// Load loads configuration from a file. Values not present in the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Sitemetrics.Health.Validate(); err != nil {
		return nil, fmt.Errorf("invalid health calibration in %s: %w", path, err)
	}

	return config, nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultPath is where init writes the configuration.
const DefaultPath = ".sitemetrics/config.yaml"

// FindConfig searches for a configuration file starting from the given
// path and walking up to the filesystem root.
func FindConfig(startPath string) (string, error) {
	candidates := []string{
		DefaultPath,
		"sitemetrics.yaml",
		"sitemetrics.yml",
	}

	dir := startPath
	for {
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no sitemetrics configuration found")
}

// LoadFromDir loads configuration from the given directory, falling back
// to defaults when no file is found. The returned base directory is the
// one relative source paths resolve against.
func LoadFromDir(dir string) (*Config, string, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return DefaultConfig(), dir, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, BaseDir(path), nil
}

// BaseDir returns the project directory owning a config file: the parent
// of .sitemetrics/ or the file's own directory.
func BaseDir(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) == ".sitemetrics" {
		return filepath.Dir(dir)
	}
	return dir
}

// SourcePath returns the data source with relative file paths resolved
// against base. Sample sources are returned unchanged.
func (c *Config) SourcePath(base string) string {
	return ResolveSource(c.Sitemetrics.Source, base)
}

// ResolveSource resolves a source string's file path against base.
func ResolveSource(source, base string) string {
	source = strings.TrimSpace(source)
	if source == "" || source == SampleSource || source == "sample" {
		return SampleSource
	}

	prefix := ""
	path := source
	if strings.HasPrefix(source, "sqlite:") {
		prefix = "sqlite:"
		path = strings.TrimPrefix(source, prefix)
	}
	if path == ":memory:" || filepath.IsAbs(path) {
		return source
	}
	return prefix + filepath.Join(base, path)
}

// MetricsConfig returns the health calibration for a metrics.Calculator.
func (c *Config) MetricsConfig() metrics.Config {
	return c.Sitemetrics.Health
}

// StageDescription returns the description for a stage.
func (c *Config) StageDescription(stage string) string {
	if desc, ok := c.Sitemetrics.Stages[stage]; ok {
		return desc
	}
	return stage
}
