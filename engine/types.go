package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/quality"
	"github.com/spektr-org/autochart/schema"
)

// ============================================================================
// AUTOCHART ENGINE TYPES
// ============================================================================
// The engine plans chart directives from a Classification, hands each one to
// a RenderFunc and collects the artifacts into per-family buckets. It never
// draws anything itself; renderers are registered through WithRenderers.
// ============================================================================

// ============================================================================
// DIRECTIVES — unit of dispatch work
// ============================================================================

// Directive is one planned chart: a family plus the column subsets its
// renderer needs.
type Directive struct {
	Family  Family   `json:"family"`
	Columns []string `json:"columns,omitempty"` // continuous (or text) columns
	Groups  []string `json:"groups,omitempty"`  // categorical/boolean grouping columns
	Dates   []string `json:"dates,omitempty"`
	Label   string   `json:"label,omitempty"`
}

func (d Directive) String() string {
	if d.Label != "" {
		return d.Family.String() + ":" + d.Label
	}
	return d.Family.String()
}

// ============================================================================
// RENDERER CONTRACT
// ============================================================================

// Request is everything a renderer reads. Renderers must not mutate Data.
type Request struct {
	Family    Family
	Data      dataset.View
	Columns   []string
	Groups    []string
	Dates     []string
	Target    string
	Problem   schema.ProblemType
	Classes   []string
	Verbosity int
	Format    string // chart file format, lower case without dot
	Label     string
}

// RenderFunc draws one directive. A nil artifact with a nil error means the
// directive had nothing to draw.
type RenderFunc func(Request) (*Artifact, error)

// Artifact is one rendered chart.
type Artifact struct {
	Family Family       `json:"family"`
	Name   string       `json:"name"`
	Title  string       `json:"title"`
	Format string       `json:"format"`
	Data   []byte       `json:"-"`
	Path   string       `json:"path,omitempty"`
	Chart  *ChartConfig `json:"chart,omitempty"`
}

// Empty reports whether the artifact carries no image data.
func (a *Artifact) Empty() bool { return a == nil || len(a.Data) == 0 }

// Outcome is the result of evaluating one directive: an artifact or an error.
type Outcome struct {
	Directive Directive `json:"directive"`
	Artifact  *Artifact `json:"artifact,omitempty"`
	Err       error     `json:"-"`
	Message   string    `json:"error,omitempty"`
}

// OK reports whether the directive produced an artifact.
func (o Outcome) OK() bool { return o.Err == nil && !o.Artifact.Empty() }

// ErrNoRenderer is returned for a directive whose family has no renderer.
var ErrNoRenderer = errors.New("no renderer registered")

// ErrNothingDrawn is returned when a renderer succeeds without an artifact.
var ErrNothingDrawn = errors.New("renderer produced no artifact")

// RenderError records a failed directive.
type RenderError struct {
	Family Family
	Label  string
	Cause  error
}

func (e *RenderError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s for %s: %v", e.Family.FailureMessage(), e.Label, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Family.FailureMessage(), e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// ============================================================================
// RESULT
// ============================================================================

// Result is everything a pass produced.
type Result struct {
	RunID          string                 `json:"runId"`
	Data           dataset.View           `json:"-"`
	Classification *schema.Classification `json:"classification"`
	Buckets        *Buckets               `json:"buckets"`
	Outcomes       []Outcome              `json:"outcomes"`
	Quality        *quality.Report        `json:"quality,omitempty"`
	QualityErr     error                  `json:"-"`
	Errors         []string               `json:"errors,omitempty"`
	Elapsed        time.Duration          `json:"elapsed"`
	Location       string                 `json:"location,omitempty"`
}

// Failed returns the outcomes that did not produce an artifact.
func (r *Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// ============================================================================
// CHART DATA — series model behind bar and pivot charts
// ============================================================================

// ChartConfig is the data behind a grouped chart, independent of drawing.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// GROUP — intermediate aggregation result
// ============================================================================

// Group is one group of rows with its aggregated value.
type Group struct {
	Key       string       `json:"key"`
	Label     string       `json:"label"`
	Value     float64      `json:"value"`
	Count     int          `json:"count"`
	SubGroups []Group      `json:"subGroups,omitempty"`
	View      dataset.View `json:"-"` // zero-copy subset of the grouped rows
}

// ============================================================================
// TABLE TYPES — overview tables in the overall bucket
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TrendData describes how a continuous column moved across a date range.
type TrendData struct {
	Column         string  `json:"column"`
	Date           string  `json:"date"`
	EarliestValue  float64 `json:"earliestValue"`
	LatestValue    float64 `json:"latestValue"`
	EarliestPeriod string  `json:"earliestPeriod"`
	LatestPeriod   string  `json:"latestPeriod"`
	ChangeAmount   float64 `json:"changeAmount"`
	ChangePercent  float64 `json:"changePercent"`
	Direction      string  `json:"direction"` // "increased", "decreased", "unchanged", "insufficient data"
}
