package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/engine"
)

// topKeys returns up to maxCategories keys of col, most frequent first.
func topKeys(r engine.Request, col string) []string {
	agg := engine.GroupAndAggregate(r.Data, []string{col}, "", "count", "count_desc", maxCategories)
	keys := make([]string, len(agg))
	for i, g := range agg {
		keys[i] = g.Key
	}
	return keys
}

// coOccurrence draws one bubble per (a, b) category pair sized by count.
func coOccurrence(r engine.Request, a, b string) (*plot.Plot, error) {
	ak, bk := topKeys(r, a), topKeys(r, b)
	if len(ak) == 0 || len(bk) == 0 {
		return nil, nil
	}
	ai := make(map[string]int, len(ak))
	for i, k := range ak {
		ai[k] = i
	}
	bi := make(map[string]int, len(bk))
	for i, k := range bk {
		bi[k] = i
	}

	counts := make(map[[2]int]int)
	for i := 0; i < r.Data.Len(); i++ {
		x, ok := ai[cellKey(r, i, a)]
		if !ok {
			continue
		}
		y, ok := bi[cellKey(r, i, b)]
		if !ok {
			continue
		}
		counts[[2]int{x, y}]++
	}
	if len(counts) == 0 {
		return nil, nil
	}

	var (
		xys   plotter.XYs
		sizes []float64
		peak  int
	)
	for x := range ak {
		for y := range bk {
			if n := counts[[2]int{x, y}]; n > 0 {
				xys = append(xys, plotter.XY{X: float64(x), Y: float64(y)})
				sizes = append(sizes, float64(n))
				if n > peak {
					peak = n
				}
			}
		}
	}

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  translucent(colorAt(int(xys[i].Y))),
			Radius: vg.Points(2 + 10*math.Sqrt(sizes[i]/float64(peak))),
			Shape:  draw.CircleGlyph{},
		}
	}

	p := newPlot(fmt.Sprintf("%s vs %s", a, b), a, b)
	p.Add(s)
	p.NominalX(ak...)
	p.NominalY(bk...)
	return p, nil
}

func cellKey(r engine.Request, i int, col string) string {
	v := r.Data.Value(i, col)
	if dataset.IsMissing(v) {
		return engine.MissingLabel
	}
	return v
}

// CatScatter draws co-occurrence bubbles for every pair of categorical
// columns. It is planned instead of Bar when there is no continuous column
// to average.
func CatScatter(r engine.Request) (*engine.Artifact, error) {
	groups := present(r, r.Groups)
	if len(groups) < 2 {
		return nil, fmt.Errorf("catscatter needs two categorical columns: %w", ErrEmptySubset)
	}

	var plots []*plot.Plot
	for i := 0; i < len(groups) && len(plots) < maxTiles; i++ {
		for j := i + 1; j < len(groups) && len(plots) < maxTiles; j++ {
			p, err := coOccurrence(r, groups[i], groups[j])
			if err != nil {
				return nil, fmt.Errorf("catscatter %s/%s: %w", groups[i], groups[j], err)
			}
			if p != nil {
				plots = append(plots, p)
			}
		}
	}
	if len(plots) == 0 {
		return nil, ErrEmptySubset
	}

	data, err := encodeGrid(plots, gridCols(len(plots)), r.Format)
	if err != nil {
		return nil, err
	}
	return finish(r.Family, "Co-occurrence of "+joinCols(groups), r.Format, data), nil
}
