package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"github.com/spektr-org/autochart/engine"
)

// maxHistBins caps the square-root rule for large columns.
const maxHistBins = 50

// histBins returns ceil(sqrt(n)) clamped to [1, maxHistBins]. gonum/plot
// rejects a non-positive bin count.
func histBins(n int) int {
	bins := int(math.Ceil(math.Sqrt(float64(n))))
	if bins < 1 {
		return 1
	}
	if bins > maxHistBins {
		return maxHistBins
	}
	return bins
}

func histogram(xs []float64) (*plotter.Histogram, error) {
	if len(xs) == 0 {
		return nil, ErrEmptySubset
	}
	h, err := plotter.NewHist(plotter.Values(xs), histBins(len(xs)))
	if err != nil {
		return nil, err
	}
	h.FillColor = colorAt(0)
	h.LineStyle.Width = 0
	return h, nil
}

// Distribution draws a histogram per continuous column and a count chart per
// categorical or boolean column. With a classification target the
// histograms are split by class and each category count is split by class.
func Distribution(r engine.Request) (*engine.Artifact, error) {
	cols := usable(r.Data, r.Columns, 1)
	groups := present(r, r.Groups)
	if len(cols) == 0 && len(groups) == 0 {
		return nil, ErrEmptySubset
	}

	var plots []*plot.Plot
	for _, c := range capped(cols, maxTiles) {
		p := newPlot("Distribution of "+c, c, "Count")
		if classify(r) {
			views := engine.SplitBy(r.Data, r.Target, r.Classes)
			for i, v := range views {
				xs := finite(v, c)
				if len(xs) == 0 {
					continue
				}
				h, err := histogram(xs)
				if err != nil {
					return nil, fmt.Errorf("histogram %s: %w", c, err)
				}
				h.FillColor = translucent(colorAt(i))
				p.Add(h)
				p.Legend.Add(r.Classes[i], h)
			}
		} else {
			h, err := histogram(finite(r.Data, c))
			if err != nil {
				return nil, fmt.Errorf("histogram %s: %w", c, err)
			}
			p.Add(h)
		}
		plots = append(plots, p)
	}

	for _, g := range groups {
		if len(plots) == maxTiles {
			break
		}
		by := []string{g}
		if classify(r) && g != r.Target {
			by = append(by, r.Target)
		}
		agg := engine.GroupAndAggregate(r.Data, by, "", "count", "value_desc", maxCategories)
		p, err := chartPlot(engine.BuildChart(engine.ChartSpec{
			Title: "Counts of " + g,
			XAxis: g,
			YAxis: "Count",
		}, agg))
		if err != nil {
			return nil, fmt.Errorf("counts %s: %w", g, err)
		}
		if p != nil {
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
	title := fmt.Sprintf("Distributions of %d continuous and %d categorical variables", len(cols), len(groups))
	return finish(r.Family, title, r.Format, data), nil
}
