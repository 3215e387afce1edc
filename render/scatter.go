package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/engine"
	"github.com/spektr-org/autochart/schema"
)

// maxPoints caps the points drawn per scatter tile. Larger views are thinned
// by a fixed stride so the output is deterministic.
const maxPoints = 2000

// points pairs two columns row by row. y may be replaced by a class index.
type points struct {
	xys    plotter.XYs
	labels []string // class label per point, nil without a classification
}

func pairUp(v dataset.View, x string, y func(i int) (float64, bool), label func(i int) string) points {
	var p points
	step := 1
	if n := v.Len(); n > maxPoints {
		step = (n + maxPoints - 1) / maxPoints
	}
	for i := 0; i < v.Len(); i += step {
		xv, ok := v.Float(i, x)
		if !ok {
			continue
		}
		yv, ok := y(i)
		if !ok {
			continue
		}
		p.xys = append(p.xys, plotter.XY{X: xv, Y: yv})
		if label != nil {
			p.labels = append(p.labels, label(i))
		}
	}
	return p
}

func (p points) scatter(colors map[string]color.Color) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(p.xys)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle = draw.GlyphStyle{Color: colorAt(0), Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
	if p.labels != nil && colors != nil {
		s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			g := s.GlyphStyle
			if c, ok := colors[p.labels[i]]; ok {
				g.Color = c
			}
			return g
		}
	}
	return s, nil
}

// classify reports whether points are coloured by target class.
func classify(r engine.Request) bool {
	return r.Problem == schema.ProblemClassification && r.Target != "" && len(r.Classes) > 0
}

// ============================================================================
// SCATTER — each continuous column against the target
// ============================================================================

// Scatter draws one tile per continuous column with the target on the Y
// axis. Classification targets are drawn as class rows coloured by class.
func Scatter(r engine.Request) (*engine.Artifact, error) {
	if r.Target == "" {
		return nil, fmt.Errorf("scatter needs a target: %w", ErrEmptySubset)
	}
	cols := capped(usable(r.Data, r.Columns, 2), maxTiles)
	if len(cols) == 0 {
		return nil, ErrEmptySubset
	}

	var (
		y      func(i int) (float64, bool)
		label  func(i int) string
		colors map[string]color.Color
	)
	if classify(r) {
		index := make(map[string]int, len(r.Classes))
		for i, c := range r.Classes {
			index[c] = i
		}
		y = func(i int) (float64, bool) {
			k, ok := index[r.Data.Value(i, r.Target)]
			return float64(k), ok
		}
		label = func(i int) string { return r.Data.Value(i, r.Target) }
		colors = classColors(r.Classes)
	} else {
		y = func(i int) (float64, bool) { return r.Data.Float(i, r.Target) }
	}

	var plots []*plot.Plot
	for _, col := range cols {
		pts := pairUp(r.Data, col, y, label)
		if len(pts.xys) == 0 {
			continue
		}
		p := newPlot(fmt.Sprintf("%s vs %s", r.Target, col), col, r.Target)
		s, err := pts.scatter(colors)
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", col, err)
		}
		p.Add(s)
		if colors != nil {
			p.NominalY(r.Classes...)
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
	title := fmt.Sprintf("Scatter plots of %s against target %s", joinCols(cols), r.Target)
	return finish(r.Family, title, r.Format, data), nil
}

// ============================================================================
// PAIR SCATTER — n×n grid, histograms on the diagonal
// ============================================================================

// PairScatter draws every pair of continuous columns. With a classification
// target the points are coloured by class.
func PairScatter(r engine.Request) (*engine.Artifact, error) {
	cols := capped(usable(r.Data, r.Columns, 2), maxPairColumns)
	if len(cols) < 2 {
		return nil, fmt.Errorf("pair-scatter needs two continuous columns: %w", ErrEmptySubset)
	}

	var (
		label  func(i int) string
		colors map[string]color.Color
	)
	if classify(r) {
		label = func(i int) string { return r.Data.Value(i, r.Target) }
		colors = classColors(r.Classes)
	}

	plots := make([]*plot.Plot, 0, len(cols)*len(cols))
	for _, yc := range cols {
		for _, xc := range cols {
			p := newPlot("", xc, yc)
			if xc == yc {
				h, err := histogram(finite(r.Data, xc))
				if err != nil {
					return nil, fmt.Errorf("pair-scatter %s: %w", xc, err)
				}
				p.Add(h)
			} else {
				yc := yc
				pts := pairUp(r.Data, xc, func(i int) (float64, bool) { return r.Data.Float(i, yc) }, label)
				if len(pts.xys) > 0 {
					s, err := pts.scatter(colors)
					if err != nil {
						return nil, fmt.Errorf("pair-scatter %s/%s: %w", xc, yc, err)
					}
					p.Add(s)
				}
			}
			plots = append(plots, p)
		}
	}

	data, err := encodeGrid(plots, len(cols), r.Format)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Pair-wise scatter plots of %d continuous variables", len(cols))
	return finish(r.Family, title, r.Format, data), nil
}
