// Package autochart visualizes any tabular dataset with one call.
//
// Usage:
//
//	import "github.com/spektr-org/autochart"
//
//	cfg := config.DefaultConfig()
//	cfg.Input.File = "sales.csv"
//	cfg.Target = "revenue"
//	cfg.Verbosity = 2
//
//	result, err := autochart.Run(ctx, cfg)
//
// The dataset is classified into IDs, booleans, categoricals, continuous,
// text and date columns; a rule table picks the chart families that fit; each
// chart is rendered, grouped into per-family buckets and, when an output
// directory is set, saved with a Markdown report and a JSON manifest.
//
// Finer control lives in the engine package (engine.Execute with functional
// options) and the render package (renderer functions per family).
package autochart

import (
	"context"
	"fmt"
	"log"

	"github.com/spektr-org/autochart/config"
	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/engine"
	"github.com/spektr-org/autochart/helpers"
	"github.com/spektr-org/autochart/quality"
	"github.com/spektr-org/autochart/render"
	"github.com/spektr-org/autochart/report"
	"github.com/spektr-org/autochart/schema"
	"github.com/spektr-org/autochart/storage"
)

// Run loads cfg.Input.File and visualizes it.
func Run(ctx context.Context, cfg *config.Config) (*engine.Result, error) {
	if err := prepare(cfg); err != nil {
		return nil, err
	}
	if cfg.Input.File == "" {
		return nil, schema.NewConfigError(schema.CodeEmptyDataset, "no input file given")
	}
	tbl, err := helpers.Load(ctx, cfg.Input.File, cfg.LoadOptions())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Input.File, err)
	}
	return visualize(ctx, tbl, cfg)
}

// RunView visualizes an in-memory dataset. cfg.Input is ignored.
func RunView(ctx context.Context, view dataset.View, cfg *config.Config) (*engine.Result, error) {
	if err := prepare(cfg); err != nil {
		return nil, err
	}
	return visualize(ctx, view, cfg)
}

// Discover loads cfg.Input.File and classifies it without drawing anything.
func Discover(ctx context.Context, cfg *config.Config) (*schema.Classification, error) {
	if err := prepare(cfg); err != nil {
		return nil, err
	}
	tbl, err := helpers.Load(ctx, cfg.Input.File, cfg.LoadOptions())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Input.File, err)
	}
	return schema.Classify(tbl, cfg.TargetSpec(), cfg.ClassifyOptions())
}

func prepare(cfg *config.Config) error {
	if cfg == nil {
		return schema.NewConfigError(schema.CodeInvalidOption, "no configuration given")
	}
	cfg.Resolve()
	return cfg.Validate()
}

func visualize(ctx context.Context, view dataset.View, cfg *config.Config) (*engine.Result, error) {
	opts := []engine.Option{
		engine.WithRenderers(render.Defaults()),
		engine.WithVerbosity(cfg.Verbosity),
		engine.WithChartFormat(cfg.Format),
		engine.WithClassifyOptions(cfg.ClassifyOptions()),
	}
	if cfg.Quality {
		opts = append(opts, engine.WithQualityReport(quality.Check))
	} else {
		opts = append(opts, engine.WithQualityReport(nil))
	}

	var store storage.Store
	if cfg.OutputDir != "" {
		s, err := storage.Open(ctx, cfg.OutputDir, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("open output %s: %w", cfg.OutputDir, err)
		}
		store = s
		opts = append(opts, engine.WithStore(store))
	}

	res, err := engine.ExecuteContext(ctx, view, cfg.TargetSpec(), opts...)
	if err != nil {
		return nil, err
	}

	if store != nil && cfg.Report {
		dir := res.Classification.Target
		if dir == "" {
			dir = engine.DefaultTargetDir
		}
		keys, err := report.Save(ctx, store, dir, res)
		if err != nil {
			msg := fmt.Sprintf("could not save report: %v", err)
			log.Printf("⚠️  autochart: %s", msg)
			res.Errors = append(res.Errors, msg)
		} else if cfg.Verbosity >= 1 {
			log.Printf("📝 autochart: report written (%d files)", len(keys))
		}
	}
	return res, nil
}
