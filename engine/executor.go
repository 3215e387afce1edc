package engine

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/quality"
	"github.com/spektr-org/autochart/schema"
	"github.com/spektr-org/autochart/storage"
)

// ============================================================================
// EXECUTOR — Classify, plan, dispatch, collect
// ============================================================================
// Entry point: Execute(view, target, opts...)
//
// Pipeline:
//   1. Validate chart format
//   2. Classify columns → working view + partitions + problem type
//   3. Overview text and tables → overall bucket
//   4. Data-quality report (failure is a warning)
//   5. Plan directives from the rule table
//   6. Dispatch each directive; failures and panics become Outcomes
//   7. Persist artifacts when a store is configured
//   8. Seal buckets and return Result
//
// Only configuration errors are returned. Nothing a renderer does can abort
// the pass.
// ============================================================================

// SupportedFormats lists accepted chart formats.
var SupportedFormats = []string{"svg", "png", "jpg", "jpeg", "pdf", "eps", "tif", "tiff"}

// DefaultTargetDir names the output subdirectory when no target is given.
const DefaultTargetDir = "AutoViz"

// Execute runs a full pass over view.
//
// Options:
//   - WithRenderers(map) — chart drawing functions by family
//   - WithVerbosity(n) — 0 silent, 1 progress, 2 progress and save
//   - WithChartFormat(f) — svg (default), png, jpg, pdf, eps, tif
//   - WithStore(store) — persist artifacts
//   - WithQualityReport(fn) — data-quality collaborator
//   - WithClassifyOptions(opts) — row/column limits and thresholds
func Execute(view dataset.View, target schema.Target, opts ...Option) (*Result, error) {
	return ExecuteContext(context.Background(), view, target, opts...)
}

// ExecuteContext is Execute with a context for storage operations.
func ExecuteContext(ctx context.Context, view dataset.View, target schema.Target, opts ...Option) (*Result, error) {
	start := time.Now()
	cfg := applyOptions(opts)

	if err := ValidateFormat(cfg.Format); err != nil {
		return nil, err
	}
	if view == nil {
		return nil, schema.NewConfigError(schema.CodeEmptyDataset, "no dataset given")
	}

	// 1. Classify
	cls, err := schema.Classify(view, target, cfg.Classify)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	cfg.logf(1, "📊 autochart: %s", cls.Summary())

	res := &Result{
		RunID:          cfg.RunID,
		Data:           cls.Data,
		Classification: cls,
		Buckets:        NewBuckets(),
	}

	// 2. Overview
	for _, line := range BuildOverview(cls) {
		res.Buckets.AddSubheading(FamilyOverall, line)
		cfg.logf(1, "📋 autochart: %s", line)
	}
	res.Buckets.AddTable(FamilyOverall, BuildColumnTable(cls))
	res.Buckets.AddTable(FamilyOverall, BuildPartitionTable(cls))
	res.Buckets.AddTable(FamilyOverall, BuildClassTable(cls))

	// 3. Data quality
	if cfg.Quality != nil {
		report, qerr := cfg.quality(cls)
		if qerr != nil {
			log.Printf("⚠️  autochart: data quality report failed: %v", qerr)
			res.QualityErr = qerr
		} else if report != nil {
			res.Quality = report
			for _, line := range report.Lines() {
				res.Buckets.AddDescription(FamilyOverall, line)
				cfg.logf(1, "🔎 autochart: %s", line)
			}
		}
	}

	// 4. Plan + dispatch
	directives := Plan(cls)
	names := artifactNames(directives)
	cfg.logf(1, "🧭 autochart: %d chart directives planned", len(directives))

	for i, d := range directives {
		out := cfg.dispatch(cls, d)
		if !out.OK() {
			out.Message = out.Err.Error()
			res.Errors = append(res.Errors, out.Message)
			cfg.logf(1, "⚠️  autochart: %s", out.Message)
			res.Outcomes = append(res.Outcomes, out)
			continue
		}

		art := out.Artifact
		art.Name = names[i]
		if cfg.Store != nil {
			if err := cfg.persist(ctx, cls, art); err != nil {
				msg := fmt.Sprintf("could not save %s: %v", art.Name, err)
				log.Printf("⚠️  autochart: %s", msg)
				res.Errors = append(res.Errors, msg)
			}
		}

		res.Buckets.AddArtifact(d.Family, art)
		res.Buckets.AddSubheading(d.Family, art.Title)
		if d.Family == FamilyTimeSeries {
			for _, date := range d.Dates {
				for _, col := range d.Columns {
					res.Buckets.AddDescription(d.Family, BuildTrend(cls.Data, date, col).Describe())
				}
			}
		}
		cfg.logf(1, "🖼  autochart: %s (%s)", art.Name, art.Title)
		res.Outcomes = append(res.Outcomes, out)
	}

	// 5. Done
	res.Buckets.Seal()
	if cfg.Store != nil {
		res.Location = cfg.Store.Location()
		cfg.logf(1, "✅ autochart: All Plots are saved in %s", res.Location)
	} else {
		cfg.logf(1, "✅ autochart: All Plots done")
	}
	res.Elapsed = time.Since(start)
	log.Printf("⏱  autochart: Time to run autochart = %0.0f seconds", res.Elapsed.Seconds())

	return res, nil
}

// ============================================================================
// DISPATCH
// ============================================================================

// quality runs the data-quality collaborator. A panic becomes an error.
func (c *config) quality(cls *schema.Classification) (report *quality.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			report, err = nil, fmt.Errorf("data quality panic: %v", r)
		}
	}()
	return c.Quality(cls.Data, cls.Target)
}

func (c *config) dispatch(cls *schema.Classification, d Directive) (out Outcome) {
	out.Directive = d

	fn := c.Renderers[d.Family]
	if fn == nil {
		out.Err = &RenderError{Family: d.Family, Label: d.Label, Cause: ErrNoRenderer}
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			out.Artifact = nil
			out.Err = &RenderError{Family: d.Family, Label: d.Label, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	art, err := fn(Request{
		Family:    d.Family,
		Data:      cls.Data,
		Columns:   clone(d.Columns),
		Groups:    clone(d.Groups),
		Dates:     clone(d.Dates),
		Target:    cls.Target,
		Problem:   cls.ProblemType,
		Classes:   clone(cls.Classes),
		Verbosity: c.Verbosity,
		Format:    c.Format,
		Label:     d.Label,
	})
	if err != nil {
		out.Err = &RenderError{Family: d.Family, Label: d.Label, Cause: err}
		return out
	}
	if art.Empty() {
		out.Err = &RenderError{Family: d.Family, Label: d.Label, Cause: ErrNothingDrawn}
		return out
	}

	art.Family = d.Family
	if art.Format == "" {
		art.Format = c.Format
	}
	if art.Title == "" {
		art.Title = d.Family.Heading()
	}
	out.Artifact = art
	return out
}

func (c *config) persist(ctx context.Context, cls *schema.Classification, art *Artifact) error {
	dir := cls.Target
	if dir == "" {
		dir = DefaultTargetDir
	}
	key := path.Join(dir, art.Name+"."+art.Format)
	if err := c.Store.Put(ctx, key, art.Data, storage.ContentType(art.Format)); err != nil {
		return err
	}
	art.Path = key
	c.logf(2, "💾 autochart: saved %s", key)
	return nil
}

// artifactNames gives each directive a file stem: "<family>" when the family
// appears once in the plan, "<family>_<n>" otherwise.
func artifactNames(ds []Directive) []string {
	total := make(map[Family]int)
	for _, d := range ds {
		total[d.Family]++
	}
	seen := make(map[Family]int)
	names := make([]string, len(ds))
	for i, d := range ds {
		seen[d.Family]++
		if total[d.Family] == 1 {
			names[i] = d.Family.String()
		} else {
			names[i] = fmt.Sprintf("%s_%d", d.Family, seen[d.Family])
		}
	}
	return names
}

// ValidateFormat rejects chart formats no renderer can write.
func ValidateFormat(format string) error {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	for _, ok := range SupportedFormats {
		if f == ok {
			return nil
		}
	}
	msg := fmt.Sprintf("chart format %q is not supported", format)
	switch f {
	case "html", "bokeh", "server":
		msg = fmt.Sprintf("chart format %q needs an interactive backend, which is not supported", format)
	}
	return schema.NewConfigError(schema.CodeUnsupportedFormat, msg).
		WithDetails(map[string]interface{}{"format": format, "supported": SupportedFormats})
}

func (c *config) logf(level int, format string, args ...interface{}) {
	if c.Verbosity >= level {
		log.Printf(format, args...)
	}
}
