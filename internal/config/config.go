// Package config loads testgen settings from a project config file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Write modes for generated spec files.
const (
	WriteFunction = "function" // one spec file per candidate
	WriteFile     = "file"     // one spec file per source file
)

// DefaultFileNames are probed, in order, when no explicit path is given.
var DefaultFileNames = []string{
	".testgen.yaml",
	".testgen.yml",
	".testgen.jsonc",
	".testgen.json",
}

// Config holds user settings. Zero values are filled from Default().
type Config struct {
	Include           []string `yaml:"include" json:"include"`
	Exclude           []string `yaml:"exclude" json:"exclude"`
	SkipComment       string   `yaml:"skip_comment" json:"skipComment"`
	Concurrency       int      `yaml:"concurrency" json:"concurrency"`
	ForceWriteFile    bool     `yaml:"force_write_file" json:"forceWriteFile"`
	WriteFileType     string   `yaml:"write_file_type" json:"writeFileType"`
	Model             string   `yaml:"model" json:"model"`
	MaxTokens         int      `yaml:"max_tokens" json:"maxTokens"`
	RequestsPerSecond float64  `yaml:"requests_per_second" json:"requestsPerSecond"`
	MaxFileSize       int      `yaml:"max_file_size" json:"maxFileSize"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SkipComment:   "testgen-skip",
		Concurrency:   4,
		WriteFileType: WriteFunction,
		Model:         "gpt-4o-mini",
		MaxTokens:     999,
		MaxFileSize:   1_000_000,
	}
}

// Load reads the config for root. An explicit path must exist; otherwise the
// default file names are probed and a missing file yields Default().
func Load(root, explicit string) (Config, string, error) {
	if explicit != "" {
		cfg, err := loadFile(explicit)
		return cfg, explicit, err
	}
	for _, name := range DefaultFileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := loadFile(path)
		return cfg, path, err
	}
	return Default(), "", nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%s: unsupported config format", path)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.SkipComment == "" {
		c.SkipComment = d.SkipComment
	}
	if c.Concurrency == 0 {
		c.Concurrency = d.Concurrency
	}
	if c.WriteFileType == "" {
		c.WriteFileType = d.WriteFileType
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = d.MaxFileSize
	}
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if c.WriteFileType != WriteFunction && c.WriteFileType != WriteFile {
		errs = append(errs, fmt.Errorf("write_file_type must be %q or %q, got %q", WriteFunction, WriteFile, c.WriteFileType))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("requests_per_second must not be negative, got %g", c.RequestsPerSecond))
	}
	return errors.Join(errs...)
}
