package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/quality"
	"github.com/spektr-org/autochart/schema"
	"github.com/spektr-org/autochart/storage"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

// QualityFunc produces the data-quality report for the working dataset.
type QualityFunc func(v dataset.View, target string) (*quality.Report, error)

type config struct {
	Renderers map[Family]RenderFunc
	Verbosity int
	Format    string
	Store     storage.Store
	Quality   QualityFunc
	RunID     string
	Classify  schema.Options
}

// WithRenderers registers renderers by family. Later calls add to or replace
// earlier registrations.
func WithRenderers(r map[Family]RenderFunc) Option {
	return func(c *config) {
		for f, fn := range r {
			c.Renderers[f] = fn
		}
	}
}

// WithVerbosity sets 0 (silent), 1 (progress) or 2 (progress and save).
func WithVerbosity(v int) Option {
	return func(c *config) {
		c.Verbosity = v
	}
}

// WithChartFormat sets the image format, e.g. "svg" or "png".
func WithChartFormat(format string) Option {
	return func(c *config) {
		c.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	}
}

// WithStore persists every artifact to store.
func WithStore(store storage.Store) Option {
	return func(c *config) {
		c.Store = store
	}
}

// WithQualityReport replaces the data-quality collaborator. Nil disables it.
func WithQualityReport(fn QualityFunc) Option {
	return func(c *config) {
		c.Quality = fn
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(c *config) {
		c.RunID = id
	}
}

// WithClassifyOptions sets row/column limits and classifier thresholds.
func WithClassifyOptions(opts schema.Options) Option {
	return func(c *config) {
		c.Classify = opts
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Renderers: make(map[Family]RenderFunc),
		Verbosity: 0,
		Format:    "svg",
		Quality:   quality.Check,
		Classify:  schema.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return cfg
}
