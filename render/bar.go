package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spektr-org/autochart/engine"
)

// ============================================================================
// BAR — average of each continuous column per category
// ============================================================================
// Bars are not drawn from the raw view. The view is aggregated with
// engine.GroupAndAggregate, shaped into a ChartConfig with engine.BuildChart
// and the config is drawn. The first config travels with the artifact.
// ============================================================================

// Bar draws the average of every continuous column per category of every
// grouping column, one tile per (group, column) pair.
func Bar(r engine.Request) (*engine.Artifact, error) {
	cols := usable(r.Data, r.Columns, 1)
	groups := present(r, r.Groups)
	if len(cols) == 0 || len(groups) == 0 {
		return nil, ErrEmptySubset
	}

	var (
		plots []*plot.Plot
		first *engine.ChartConfig
	)
	for _, g := range groups {
		for _, c := range cols {
			if len(plots) == maxTiles {
				break
			}
			agg := engine.GroupAndAggregate(r.Data, []string{g}, c, "avg", "value_desc", maxCategories)
			cfg := engine.BuildChart(engine.ChartSpec{
				Title: fmt.Sprintf("%s of %s by %s", engine.LabelForAggregation("avg"), c, g),
				XAxis: g,
				YAxis: c,
			}, agg)
			p, err := chartPlot(cfg)
			if err != nil {
				return nil, fmt.Errorf("bar %s by %s: %w", c, g, err)
			}
			if p == nil {
				continue
			}
			if first == nil {
				first = cfg
			}
			plots = append(plots, p)
		}
	}
	if len(plots) == 0 {
		return nil, ErrEmptySubset
	}

	data, err := encodeGrid(plots, gridCols(len(plots)), r.Format)
	if err != nil {
		return nil, err
	}
	art := finish(r.Family, fmt.Sprintf("Bar plots of %s by %s", joinCols(cols), joinCols(groups)), r.Format, data)
	art.Chart = first
	return art, nil
}

// present keeps the grouping columns that exist in the view.
func present(r engine.Request, cols []string) []string {
	var out []string
	for _, c := range cols {
		if r.Data.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// chartPlot draws a ChartConfig as side-by-side bars, one bar chart per
// series. It returns nil when the config has nothing to draw.
func chartPlot(cfg *engine.ChartConfig) (*plot.Plot, error) {
	if cfg == nil || len(cfg.Series) == 0 || len(cfg.Series[0].Data) == 0 {
		return nil, nil
	}

	n := len(cfg.Series[0].Data)
	k := len(cfg.Series)
	width := vg.Points(math.Min(20, 220/float64(n*k)))

	p := newPlot(cfg.Title, cfg.XAxis, cfg.YAxis)
	names := make([]string, n)
	for i, pt := range cfg.Series[0].Data {
		names[i] = pt.Label
	}

	for s, series := range cfg.Series {
		values := make(plotter.Values, n)
		for i, pt := range series.Data {
			if !math.IsNaN(pt.Value) && !math.IsInf(pt.Value, 0) {
				values[i] = pt.Value
			}
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, err
		}
		bars.Color = colorAt(s)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(s)-float64(k-1)/2) * width
		p.Add(bars)
		if cfg.ShowLegend {
			p.Legend.Add(series.Name, bars)
		}
	}
	p.NominalX(names...)
	p.Legend.Top = true
	return p, nil
}
