// Package render holds the chart-drawing collaborators of the engine. Every
// renderer is a stateless engine.RenderFunc: it reads the working view and the
// column subsets of one directive and returns an encoded image.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/engine"
)

// ============================================================================
// RENDERERS — Registry, sentinels, canvas helpers
// ============================================================================
// gonum/plot draws scatter, pair-scatter, distribution, violin, heatmap, bar,
// pivot and catscatter charts in every supported format. go-chart draws time
// series (svg/png). The word cloud is rasterised with x/image (png).
// ============================================================================

var (
	// ErrEmptySubset means the directive's columns hold no usable values.
	ErrEmptySubset = errors.New("no usable values in the selected columns")
	// ErrDegenerate means the values exist but cannot form the chart
	// (a single numeric column for a correlation matrix, all-NaN results).
	ErrDegenerate = errors.New("data is degenerate for this chart")
)

const (
	tileWidth  = 4 * vg.Inch
	tileHeight = 3 * vg.Inch

	// maxTiles caps the number of sub-plots in one image.
	maxTiles = 24
	// maxCategories caps the bars drawn per grouping column.
	maxCategories = 20
	// maxPairColumns caps the pair-scatter grid at n×n.
	maxPairColumns = 6
)

// Defaults returns the renderer for every chart family the planner emits.
func Defaults() map[engine.Family]engine.RenderFunc {
	return map[engine.Family]engine.RenderFunc{
		engine.FamilyScatter:      Scatter,
		engine.FamilyPairScatter:  PairScatter,
		engine.FamilyDistribution: Distribution,
		engine.FamilyViolin:       Violin,
		engine.FamilyHeatmap:      Heatmap,
		engine.FamilyBar:          Bar,
		engine.FamilyPivot:        Pivot,
		engine.FamilyCatScatter:   CatScatter,
		engine.FamilyTimeSeries:   TimeSeries,
		engine.FamilyWordCloud:    WordCloud,
	}
}

// ============================================================================
// CANVAS
// ============================================================================

// encodeGrid lays the plots out cols per row and encodes the whole grid.
func encodeGrid(plots []*plot.Plot, cols int, format string) ([]byte, error) {
	if len(plots) == 0 {
		return nil, ErrEmptySubset
	}
	if cols < 1 || cols > len(plots) {
		cols = len(plots)
	}
	rows := (len(plots) + cols - 1) / cols

	grid := make([][]*plot.Plot, rows)
	for j := range grid {
		grid[j] = make([]*plot.Plot, cols)
		for i := range grid[j] {
			if k := j*cols + i; k < len(plots) {
				grid[j][i] = plots[k]
			}
		}
	}

	c, err := draw.NewFormattedCanvas(tileWidth*vg.Length(cols), tileHeight*vg.Length(rows), format)
	if err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter * 6, PadY: vg.Millimeter * 6,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, draw.New(c))
	for j := range grid {
		for i, p := range grid[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// encodePlot encodes a single plot at the given size.
func encodePlot(p *plot.Plot, w, h vg.Length, format string) ([]byte, error) {
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// gridCols picks a near-square column count for n tiles.
func gridCols(n int) int {
	switch {
	case n <= 1:
		return 1
	case n <= 4:
		return 2
	default:
		return 3
	}
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	return p
}

func finish(family engine.Family, title, format string, data []byte) *engine.Artifact {
	return &engine.Artifact{Family: family, Title: title, Format: format, Data: data}
}

// ============================================================================
// COLUMN HELPERS
// ============================================================================

// finite returns the parseable values of a column, skipping missing cells.
func finite(v dataset.View, col string) []float64 {
	out := make([]float64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if f, ok := v.Float(i, col); ok {
			out = append(out, f)
		}
	}
	return out
}

// usable keeps the columns that exist in v and hold at least `least` values.
func usable(v dataset.View, cols []string, least int) []string {
	var out []string
	for _, c := range cols {
		if v.Has(c) && len(finite(v, c)) >= least {
			out = append(out, c)
		}
	}
	return out
}

// capped truncates names to n.
func capped(names []string, n int) []string {
	if len(names) > n {
		return names[:n]
	}
	return names
}

// spread reports whether xs holds at least two distinct values.
func spread(xs []float64) bool {
	if len(xs) < 2 {
		return false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return hi > lo
}

func joinCols(cols []string) string {
	if len(cols) > 3 {
		return strings.Join(cols[:3], ", ") + fmt.Sprintf(" and %d more", len(cols)-3)
	}
	return strings.Join(cols, ", ")
}
