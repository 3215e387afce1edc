package render

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/engine"
	"github.com/spektr-org/autochart/schema"
)

// maxSeries caps the lines drawn on one time-series chart.
const maxSeries = 10

// timeSeries averages measure per distinct timestamp of dateCol, oldest
// first.
func timeSeries(v dataset.View, dateCol, measure string) ([]time.Time, []float64) {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for i := 0; i < v.Len(); i++ {
		t, ok := schema.ParseTime(v.Value(i, dateCol))
		if !ok {
			continue
		}
		y, ok := v.Float(i, measure)
		if !ok {
			continue
		}
		sums[t] += y
		counts[t]++
	}

	xs := make([]time.Time, 0, len(sums))
	for t := range sums {
		xs = append(xs, t)
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].Before(xs[j]) })
	ys := make([]float64, len(xs))
	for i, t := range xs {
		ys[i] = sums[t] / float64(counts[t])
	}
	return xs, ys
}

// TimeSeries draws every continuous column against every date column as a
// line on one go-chart canvas. go-chart writes svg and png only; any other
// format is written as png and the artifact says so.
func TimeSeries(r engine.Request) (*engine.Artifact, error) {
	cols := usable(r.Data, r.Columns, 2)
	dates := present(r, r.Dates)
	if len(cols) == 0 || len(dates) == 0 {
		return nil, ErrEmptySubset
	}

	var series []chart.Series
	for _, d := range dates {
		for _, c := range cols {
			if len(series) == maxSeries {
				break
			}
			xs, ys := timeSeries(r.Data, d, c)
			if len(xs) < 2 {
				continue
			}
			col := colorAt(len(series))
			series = append(series, chart.TimeSeries{
				Name:    fmt.Sprintf("%s by %s", c, d),
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 2},
			})
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no date column has two distinct timestamps: %w", ErrEmptySubset)
	}

	title := fmt.Sprintf("Time series of %s over %s", joinCols(cols), joinCols(dates))
	graph := chart.Chart{
		Title:      title,
		Width:      1024,
		Height:     512,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           dates[0],
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	format := "png"
	var provider chart.RendererProvider = chart.PNG
	if r.Format == "svg" {
		format, provider = "svg", chart.SVG
	}
	var buf bytes.Buffer
	if err := graph.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("time series: %w", err)
	}
	return finish(r.Family, title, format, buf.Bytes()), nil
}
