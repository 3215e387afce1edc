// Package config provides configuration management for autochart runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/autochart/engine"
	"github.com/spektr-org/autochart/helpers"
	"github.com/spektr-org/autochart/schema"
	"github.com/spektr-org/autochart/storage"
)

// DefaultOutputDir is where charts go at verbosity 2 when no directory is set.
const DefaultOutputDir = "AutoViz_Plots"

// Config holds all configuration for one autochart run.
type Config struct {
	// Input describes the dataset to load.
	Input InputConfig `json:"input" yaml:"input"`

	// Target is the dependent variable. A comma list is accepted for
	// multi-label targets; only the first name is used.
	Target string `json:"target" yaml:"target"`

	// Verbosity is 0 (silent), 1 (progress) or 2 (progress and save).
	Verbosity int `json:"verbosity" yaml:"verbosity"`

	// Format is the chart file format (svg, png, jpg, jpeg, pdf, eps, tif).
	Format string `json:"format" yaml:"format"`

	// OutputDir is a local directory or s3://bucket/prefix. Empty means
	// charts are kept in memory unless Verbosity is 2.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Limits bounds the working dataset.
	Limits LimitsConfig `json:"limits" yaml:"limits"`

	// Quality enables the data-quality report.
	Quality bool `json:"quality" yaml:"quality"`

	// Report writes report.md, manifest.json and chart data next to the charts.
	Report bool `json:"report" yaml:"report"`

	// S3 configures S3 access for input and output locations.
	S3 storage.S3Config `json:"s3" yaml:"s3"`
}

// InputConfig holds dataset loading settings.
type InputConfig struct {
	// File is a local path or s3:// URI. SQLite files take a "#table" suffix.
	File string `json:"file" yaml:"file"`

	// Sep is the field separator for delimited text. "\t" and "tab" mean
	// tab. Empty picks by extension: tab for .tsv, ',' otherwise.
	Sep string `json:"sep" yaml:"sep"`

	// Header reports whether the first row holds column names.
	Header bool `json:"header" yaml:"header"`

	// SnakeCase normalizes column names to snake_case.
	SnakeCase bool `json:"snake_case" yaml:"snake_case"`
}

// LimitsConfig holds classifier limits.
type LimitsConfig struct {
	// MaxRows is the number of rows kept after sampling.
	MaxRows int `json:"max_rows" yaml:"max_rows"`

	// MaxCols is the number of continuous columns kept.
	MaxCols int `json:"max_cols" yaml:"max_cols"`

	// RegressionUnique is the distinct count above which a numeric target is
	// treated as regression.
	RegressionUnique int `json:"regression_unique" yaml:"regression_unique"`

	// Seed varies the row sample.
	Seed uint32 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	d := schema.DefaultOptions()
	return &Config{
		Input: InputConfig{
			Header: true,
		},
		Verbosity: 0,
		Format:    "svg",
		Limits: LimitsConfig{
			MaxRows:          d.MaxRows,
			MaxCols:          d.MaxCols,
			RegressionUnique: d.RegressionUnique,
		},
		Quality: true,
		Report:  true,
		S3:      storage.DefaultS3Config(),
	}
}

// Resolve fills derived defaults.
func (c *Config) Resolve() {
	c.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Format), "."))
	if c.Format == "" {
		c.Format = "svg"
	}
	if c.OutputDir == "" && c.Verbosity == 2 {
		c.OutputDir = DefaultOutputDir
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Verbosity < 0 || c.Verbosity > 2 {
		return schema.NewConfigError(schema.CodeInvalidOption,
			fmt.Sprintf("verbosity must be 0, 1 or 2, got %d", c.Verbosity))
	}
	if err := engine.ValidateFormat(c.Format); err != nil {
		return err
	}
	if _, err := c.SepRune(); err != nil {
		return err
	}
	if c.Limits.MaxRows < 1 || c.Limits.MaxCols < 1 {
		return schema.NewConfigError(schema.CodeInvalidLimits,
			fmt.Sprintf("limits.max_rows and limits.max_cols must be positive, got %d and %d",
				c.Limits.MaxRows, c.Limits.MaxCols))
	}
	if c.Limits.RegressionUnique < 0 {
		return schema.NewConfigError(schema.CodeInvalidLimits,
			fmt.Sprintf("limits.regression_unique must not be negative, got %d", c.Limits.RegressionUnique))
	}
	if strings.HasPrefix(c.OutputDir, "s3://") {
		if _, _, err := storage.ParseS3URI(c.OutputDir); err != nil {
			return schema.NewConfigError(schema.CodeInvalidOption, err.Error())
		}
	}
	return nil
}

// SepRune returns the separator as a single rune.
func (c *Config) SepRune() (rune, error) {
	switch c.Input.Sep {
	case "":
		return 0, nil
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(c.Input.Sep) != 1 {
		return 0, schema.NewConfigError(schema.CodeInvalidOption,
			fmt.Sprintf("separator must be a single character, got %q", c.Input.Sep))
	}
	r, _ := utf8.DecodeRuneInString(c.Input.Sep)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, schema.NewConfigError(schema.CodeInvalidOption,
			fmt.Sprintf("separator %q is not allowed", c.Input.Sep))
	}
	return r, nil
}

// TargetSpec returns the parsed target.
func (c *Config) TargetSpec() schema.Target {
	return schema.ParseTarget(c.Target)
}

// ClassifyOptions returns the classifier options. Zero fields take the
// classifier defaults.
func (c *Config) ClassifyOptions() schema.Options {
	return schema.Options{
		MaxRows:          c.Limits.MaxRows,
		MaxCols:          c.Limits.MaxCols,
		RegressionUnique: c.Limits.RegressionUnique,
		Seed:             c.Limits.Seed,
	}
}

// LoadOptions returns dataset loading options. Validate must have passed.
func (c *Config) LoadOptions() helpers.LoadOptions {
	sep, _ := c.SepRune()
	return helpers.LoadOptions{
		CSV: helpers.CSVOptions{
			Sep:       sep,
			Header:    c.Input.Header,
			SnakeCase: c.Input.SnakeCase,
		},
		S3: c.S3,
	}
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, schema.NewConfigError(schema.CodeUnsupportedFormat,
			fmt.Sprintf("unsupported config file format: %s", ext))
	}

	return cfg, nil
}

// LoadFromEnv overrides configuration from AUTOCHART_* environment variables.
// Unparseable numbers and booleans are ignored.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("AUTOCHART_FILE"); v != "" {
		cfg.Input.File = v
	}
	if v := os.Getenv("AUTOCHART_SEP"); v != "" {
		cfg.Input.Sep = v
	}
	if v := os.Getenv("AUTOCHART_HEADER"); v != "" {
		setBool(&cfg.Input.Header, v)
	}
	if v := os.Getenv("AUTOCHART_SNAKE_CASE"); v != "" {
		setBool(&cfg.Input.SnakeCase, v)
	}

	if v := os.Getenv("AUTOCHART_TARGET"); v != "" {
		cfg.Target = v
	}
	if v := os.Getenv("AUTOCHART_VERBOSE"); v != "" {
		setInt(&cfg.Verbosity, v)
	}
	if v := os.Getenv("AUTOCHART_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("AUTOCHART_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	if v := os.Getenv("AUTOCHART_MAX_ROWS"); v != "" {
		setInt(&cfg.Limits.MaxRows, v)
	}
	if v := os.Getenv("AUTOCHART_MAX_COLS"); v != "" {
		setInt(&cfg.Limits.MaxCols, v)
	}

	if v := os.Getenv("AUTOCHART_QUALITY"); v != "" {
		setBool(&cfg.Quality, v)
	}
	if v := os.Getenv("AUTOCHART_REPORT"); v != "" {
		setBool(&cfg.Report, v)
	}

	if v := os.Getenv("AUTOCHART_S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("AUTOCHART_S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("AUTOCHART_S3_PATH_STYLE"); v != "" {
		setBool(&cfg.S3.UsePathStyle, v)
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, v string) {
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		*dst = b
	}
}
