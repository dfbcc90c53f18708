package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration of one run.
type Config struct {
	// Concurrency is the worker pool width. 1 means strictly sequential.
	Concurrency int

	// Seed drives sibling shuffling when HasSeed is set; otherwise the
	// runner generates one and reports it.
	Seed    int64
	HasSeed bool

	// Timeout bounds each example's evaluation. Zero means no timeout.
	Timeout time.Duration

	// FastFail stops dispatching new examples after the first failure.
	FastFail bool

	// Rerun restricts the run to paths recorded in the failure report.
	Rerun bool

	// Filter is a glob pattern matched against full example paths.
	Filter string

	// Formatter selects the renderer: doc, progress, or failures.
	Formatter string

	// Color is auto, always, or never.
	Color string

	// ReportPath is where the failure report is written and read.
	// Empty disables persistence.
	ReportPath string

	// HistoryPath is the run history database. Empty disables history.
	HistoryPath string
}

// fileConfig is the YAML shape of the project file. Timeout is a
// duration string; pointer fields distinguish "absent" from zero values.
type fileConfig struct {
	Concurrency *int   `yaml:"concurrency"`
	Timeout     string `yaml:"timeout"`
	FastFail    *bool  `yaml:"fastFail"`
	Formatter   string `yaml:"formatter"`
	Color       string `yaml:"color"`
	ReportPath  string `yaml:"reportPath"`
	HistoryPath string `yaml:"historyPath"`
}

// ConfigFilenames are the project config files searched in order.
var ConfigFilenames = []string{
	".bspec.yaml",
	".bspec.yml",
	"bspec.yaml",
}

// Formatter names accepted by Validate.
const (
	FormatterDoc      = "doc"
	FormatterProgress = "progress"
	FormatterFailures = "failures"
)

// Color modes accepted by Validate.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Validate reports a fatal configuration error, if any.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	switch c.Formatter {
	case FormatterDoc, FormatterProgress, FormatterFailures:
	default:
		return fmt.Errorf("unknown formatter %q (want doc, progress, or failures)", c.Formatter)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always, or never)", c.Color)
	}
	if c.Rerun && c.ReportPath == "" {
		return fmt.Errorf("rerun requires a report path")
	}
	return nil
}

// Load resolves configuration from defaults, the project file (path, or a
// search of dir when path is empty), and BSPEC_* environment variables.
func Load(path, dir string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile(dir)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if err := fc.apply(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// FromEnv resolves configuration from defaults, a discovered project file
// in the current directory, and the environment.
func FromEnv() (*Config, error) {
	return Load(os.Getenv("BSPEC_CONFIG"), ".")
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.Concurrency != nil {
		cfg.Concurrency = *fc.Concurrency
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		cfg.Timeout = d
	}
	if fc.FastFail != nil {
		cfg.FastFail = *fc.FastFail
	}
	if fc.Formatter != "" {
		cfg.Formatter = fc.Formatter
	}
	if fc.Color != "" {
		cfg.Color = fc.Color
	}
	if fc.ReportPath != "" {
		cfg.ReportPath = fc.ReportPath
	}
	if fc.HistoryPath != "" {
		cfg.HistoryPath = fc.HistoryPath
	}
	return nil
}

func findConfigFile(dir string) string {
	for _, name := range ConfigFilenames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (c *Config) applyEnv() {
	c.Concurrency = EnvInt("BSPEC_CONCURRENCY", c.Concurrency)
	if val := os.Getenv("BSPEC_SEED"); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Seed = seed
			c.HasSeed = true
		}
	}
	if val := os.Getenv("BSPEC_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Timeout = d
		}
	}
	c.FastFail = EnvBool("BSPEC_FAST_FAIL", c.FastFail)
	c.Rerun = EnvBool("BSPEC_RERUN", c.Rerun)
	c.Filter = EnvString("BSPEC_FILTER", c.Filter)
	c.Formatter = EnvString("BSPEC_FORMATTER", c.Formatter)
	c.Color = EnvString("BSPEC_COLOR", c.Color)
	c.ReportPath = EnvString("BSPEC_REPORT", c.ReportPath)
	c.HistoryPath = EnvString("BSPEC_HISTORY", c.HistoryPath)
}

// EnvString returns the environment value for key, or defaultVal when
// unset or empty.
func EnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// EnvBool returns the boolean environment value for key.
func EnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// EnvInt returns the integer environment value for key.
func EnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
