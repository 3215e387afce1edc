package render

import (
	"fmt"

	"gonum.org/v1/plot"

	"github.com/spektr-org/autochart/engine"
	"github.com/spektr-org/autochart/schema"
)

// Pivot summarises categorical columns when there is nothing continuous to
// plot. Without a target it counts each category. A classification target
// splits each count by class; a regression target is averaged per category.
func Pivot(r engine.Request) (*engine.Artifact, error) {
	groups := present(r, r.Groups)
	if len(groups) == 0 {
		return nil, ErrEmptySubset
	}

	var (
		plots []*plot.Plot
		first *engine.ChartConfig
	)
	for _, g := range capped(groups, maxTiles) {
		if g == r.Target {
			continue
		}
		spec := engine.ChartSpec{XAxis: g, YAxis: "Count", Title: "Counts of " + g}
		var agg []engine.Group
		switch {
		case classify(r):
			spec.ChartType = "grouped_bar"
			spec.Title = fmt.Sprintf("Counts of %s by %s", g, r.Target)
			agg = engine.GroupAndAggregate(r.Data, []string{g, r.Target}, "", "count", "count_desc", maxCategories)
		case r.Problem == schema.ProblemRegression && r.Target != "":
			spec.YAxis = r.Target
			spec.Title = fmt.Sprintf("Average %s by %s", r.Target, g)
			agg = engine.GroupAndAggregate(r.Data, []string{g}, r.Target, "avg", "value_desc", maxCategories)
		default:
			agg = engine.GroupAndAggregate(r.Data, []string{g}, "", "count", "value_desc", maxCategories)
		}

		cfg := engine.BuildChart(spec, agg)
		p, err := chartPlot(cfg)
		if err != nil {
			return nil, fmt.Errorf("pivot %s: %w", g, err)
		}
		if p == nil {
			continue
		}
		if first == nil {
			first = cfg
		}
		plots = append(plots, p)
	}
	if len(plots) == 0 {
		return nil, ErrEmptySubset
	}

	data, err := encodeGrid(plots, gridCols(len(plots)), r.Format)
	if err != nil {
		return nil, err
	}
	art := finish(r.Family, "Pivot charts of "+joinCols(groups), r.Format, data)
	art.Chart = first
	return art, nil
}
