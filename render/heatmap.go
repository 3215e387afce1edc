package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/engine"
)

// corrGrid is a square correlation matrix laid out for plotter.HeatMap.
// Row 0 is drawn at the bottom.
type corrGrid struct {
	m [][]float64
}

func (g corrGrid) Dims() (c, r int)   { return len(g.m), len(g.m) }
func (g corrGrid) Z(c, r int) float64 { return g.m[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
func (g corrGrid) Min() float64       { return -1 }
func (g corrGrid) Max() float64       { return 1 }

// correlation is Pearson's r over the rows where both columns parse. It is
// NaN with fewer than three such rows or when either side is constant.
func correlation(v dataset.View, a, b string) float64 {
	var xs, ys []float64
	for i := 0; i < v.Len(); i++ {
		x, ok := v.Float(i, a)
		if !ok {
			continue
		}
		y, ok := v.Float(i, b)
		if !ok {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) < 3 || !spread(xs) || !spread(ys) {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// CorrelationMatrix returns the pairwise correlation of cols. Diagonal cells
// are 1 for columns with spread and NaN otherwise.
func CorrelationMatrix(v dataset.View, cols []string) [][]float64 {
	m := make([][]float64, len(cols))
	for i := range m {
		m[i] = make([]float64, len(cols))
	}
	for i := range cols {
		if spread(finite(v, cols[i])) {
			m[i][i] = 1
		} else {
			m[i][i] = math.NaN()
		}
		for j := i + 1; j < len(cols); j++ {
			r := correlation(v, cols[i], cols[j])
			m[i][j], m[j][i] = r, r
		}
	}
	return m
}

// Heatmap draws the correlation matrix of the numeric columns.
func Heatmap(r engine.Request) (*engine.Artifact, error) {
	cols := capped(usable(r.Data, r.Columns, 1), 30)
	if len(cols) < 2 {
		return nil, fmt.Errorf("need at least two numeric columns, have %d: %w", len(cols), ErrDegenerate)
	}

	m := CorrelationMatrix(r.Data, cols)
	defined := false
	for i := range m {
		for j := range m[i] {
			if i != j && !math.IsNaN(m[i][j]) {
				defined = true
			}
		}
	}
	if !defined {
		return nil, fmt.Errorf("every correlation is NaN: %w", ErrDegenerate)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	heat := plotter.NewHeatMap(corrGrid{m: m}, cmap.Palette(21))
	heat.NaN = color.Gray{Y: 220}

	var cells plotter.XYLabels
	for i := range m {
		for j := range m[i] {
			if math.IsNaN(m[i][j]) {
				continue
			}
			cells.XYs = append(cells.XYs, plotter.XY{X: float64(j), Y: float64(i)})
			cells.Labels = append(cells.Labels, fmt.Sprintf("%.2f", m[i][j]))
		}
	}

	p := newPlot(fmt.Sprintf("Correlation heatmap of %d numeric variables", len(cols)), "", "")
	p.Add(heat)
	if len(cols) <= 12 {
		labels, err := plotter.NewLabels(cells)
		if err != nil {
			return nil, fmt.Errorf("heatmap labels: %w", err)
		}
		p.Add(labels)
	}
	p.NominalX(cols...)
	p.NominalY(cols...)

	side := tileWidth * vg.Length(1+len(cols)/6)
	data, err := encodePlot(p, side, side, r.Format)
	if err != nil {
		return nil, err
	}
	return finish(r.Family, p.Title.Text, r.Format, data), nil
}
