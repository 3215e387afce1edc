package render

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/engine"
)

const (
	// kdePoints is the number of density evaluations per violin side.
	kdePoints = 64
	// violinHalfWidth is the widest half of a violin in axis units.
	violinHalfWidth = 0.4
)

// kdeOutline returns the closed outline of a violin centred on x, or false
// when the sample has no spread.
func kdeOutline(xs []float64, x float64) (plotter.XYs, bool) {
	if !spread(xs) {
		return nil, false
	}
	sample := stats.Sample{Xs: xs}
	bw := stats.BandwidthScott(sample)
	if !(bw > 0) {
		bw = stats.BandwidthSilverman(sample)
	}
	if !(bw > 0) || math.IsInf(bw, 0) {
		return nil, false
	}
	kde := stats.KDE{Sample: sample, Kernel: stats.GaussianKernel, Bandwidth: bw}

	lo, hi := sample.Bounds()
	step := (hi - lo) / float64(kdePoints-1)
	ys := make([]float64, kdePoints)
	dens := make([]float64, kdePoints)
	peak := 0.0
	for i := range ys {
		ys[i] = lo + float64(i)*step
		dens[i] = kde.PDF(ys[i])
		peak = math.Max(peak, dens[i])
	}
	if !(peak > 0) {
		return nil, false
	}

	outline := make(plotter.XYs, 0, 2*kdePoints)
	for i := range ys {
		outline = append(outline, plotter.XY{X: x + violinHalfWidth*dens[i]/peak, Y: ys[i]})
	}
	for i := len(ys) - 1; i >= 0; i-- {
		outline = append(outline, plotter.XY{X: x - violinHalfWidth*dens[i]/peak, Y: ys[i]})
	}
	return outline, true
}

// violinPlot draws one violin per view at x = 0, 1, ... with a box plot
// inside each.
func violinPlot(title, col string, views []dataset.View, names []string) (*plot.Plot, error) {
	p := newPlot(title, "", col)
	drawn := 0
	for i, v := range views {
		xs := finite(v, col)
		outline, ok := kdeOutline(xs, float64(i))
		if !ok {
			continue
		}
		poly, err := plotter.NewPolygon(outline)
		if err != nil {
			return nil, err
		}
		poly.Color = translucent(colorAt(i))
		poly.LineStyle.Color = colorAt(i)
		p.Add(poly)

		box, err := plotter.NewBoxPlot(vg.Points(6), float64(i), plotter.Values(xs))
		if err != nil {
			return nil, err
		}
		p.Add(box)
		drawn++
	}
	if drawn == 0 {
		return nil, nil
	}
	p.NominalX(names...)
	return p, nil
}

// Violin draws the estimated density of every continuous column. With a
// classification target each tile holds one violin per class.
func Violin(r engine.Request) (*engine.Artifact, error) {
	cols := capped(usable(r.Data, r.Columns, 2), maxTiles)
	if len(cols) == 0 {
		return nil, ErrEmptySubset
	}

	views := []dataset.View{r.Data}
	names := []string{""}
	if classify(r) {
		views = engine.SplitBy(r.Data, r.Target, r.Classes)
		names = r.Classes
	}

	var plots []*plot.Plot
	for _, c := range cols {
		if !classify(r) {
			names = []string{c}
		}
		p, err := violinPlot("Violin plot of "+c, c, views, names)
		if err != nil {
			return nil, fmt.Errorf("violin %s: %w", c, err)
		}
		if p != nil {
			plots = append(plots, p)
		}
	}
	if len(plots) == 0 {
		return nil, fmt.Errorf("every continuous column is constant: %w", ErrDegenerate)
	}

	data, err := encodeGrid(plots, gridCols(len(plots)), r.Format)
	if err != nil {
		return nil, err
	}
	return finish(r.Family, "Violin plots of "+joinCols(cols), r.Format, data), nil
}
