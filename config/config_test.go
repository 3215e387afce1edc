package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autochart/schema"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "svg", cfg.Format)
	assert.Empty(t, cfg.OutputDir, "charts stay in memory below verbosity 2")
	assert.Equal(t, "us-east-1", cfg.S3.Region)

	opts := cfg.LoadOptions()
	assert.Equal(t, rune(0), opts.CSV.Sep, "separator follows the file extension")
	assert.True(t, opts.CSV.Header)
}

func TestResolveDefaultsOutputDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Verbosity = 2
	cfg.Format = " .PNG"
	cfg.Resolve()
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, "png", cfg.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"verbosity", func(c *Config) { c.Verbosity = 3 }, schema.ErrInvalidOption},
		{"format", func(c *Config) { c.Format = "html" }, schema.ErrUnsupportedFormat},
		{"separator", func(c *Config) { c.Input.Sep = ";;" }, schema.ErrInvalidOption},
		{"quote separator", func(c *Config) { c.Input.Sep = `"` }, schema.ErrInvalidOption},
		{"rows", func(c *Config) { c.Limits.MaxRows = 0 }, schema.ErrInvalidLimits},
		{"cols", func(c *Config) { c.Limits.MaxCols = -1 }, schema.ErrInvalidLimits},
		{"threshold", func(c *Config) { c.Limits.RegressionUnique = -5 }, schema.ErrInvalidLimits},
		{"bucket", func(c *Config) { c.OutputDir = "s3:///charts" }, schema.ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, schema.IsConfigError(err))
		})
	}
}

func TestSepRune(t *testing.T) {
	for sep, want := range map[string]rune{"": 0, ",": ',', ";": ';', `\t`: '\t', "tab": '\t', "\t": '\t', "|": '|'} {
		cfg := DefaultConfig()
		cfg.Input.Sep = sep
		got, err := cfg.SepRune()
		require.NoError(t, err, sep)
		assert.Equal(t, want, got, sep)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "autochart.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
input:
  file: sales.csv
  sep: ";"
target: price
verbosity: 1
format: png
limits:
  max_rows: 500
s3:
  endpoint: http://localhost:9000
  use_path_style: true
`), 0o644))

	cfg, err := LoadFromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", cfg.Input.File)
	assert.True(t, cfg.Input.Header, "unset fields keep defaults")
	assert.Equal(t, "price", cfg.Target)
	assert.Equal(t, 500, cfg.Limits.MaxRows)
	assert.Equal(t, schema.DefaultOptions().MaxCols, cfg.Limits.MaxCols)
	assert.True(t, cfg.S3.UsePathStyle)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	require.NoError(t, cfg.Validate())

	jsonPath := filepath.Join(dir, "autochart.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"target": "a,b", "report": false}`), 0o644))
	cfg, err = LoadFromFile(jsonPath)
	require.NoError(t, err)
	assert.False(t, cfg.Report)
	assert.Equal(t, []string{"a", "b"}, cfg.TargetSpec().Names())

	_, err = LoadFromFile(filepath.Join(dir, "autochart.toml"))
	assert.Error(t, err)

	tomlPath := filepath.Join(dir, "real.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`target = "x"`), 0o644))
	_, err = LoadFromFile(tomlPath)
	assert.ErrorIs(t, err, schema.ErrUnsupportedFormat)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AUTOCHART_FILE", "s3://bucket/data.csv")
	t.Setenv("AUTOCHART_SEP", "tab")
	t.Setenv("AUTOCHART_HEADER", "false")
	t.Setenv("AUTOCHART_TARGET", "label")
	t.Setenv("AUTOCHART_VERBOSE", "2")
	t.Setenv("AUTOCHART_MAX_ROWS", "not-a-number")
	t.Setenv("AUTOCHART_MAX_COLS", "12")
	t.Setenv("AUTOCHART_QUALITY", "0")
	t.Setenv("AUTOCHART_S3_REGION", "eu-west-1")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	assert.Equal(t, "s3://bucket/data.csv", cfg.Input.File)
	assert.False(t, cfg.Input.Header)
	assert.Equal(t, "label", cfg.Target)
	assert.Equal(t, 2, cfg.Verbosity)
	assert.Equal(t, schema.DefaultOptions().MaxRows, cfg.Limits.MaxRows)
	assert.Equal(t, 12, cfg.Limits.MaxCols)
	assert.False(t, cfg.Quality)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)

	opts := cfg.LoadOptions()
	assert.Equal(t, '\t', opts.CSV.Sep)
	assert.Equal(t, "eu-west-1", opts.S3.Region)
	assert.Equal(t, 12, cfg.ClassifyOptions().MaxCols)
}
