package render

import (
	"image/color"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/autochart/engine"
)

// palette is engine.DefaultColors decoded once. drawing.Color satisfies
// color.Color, so gonum/plot, go-chart and the word cloud share it.
var palette = func() []drawing.Color {
	out := make([]drawing.Color, len(engine.DefaultColors))
	for i, hex := range engine.DefaultColors {
		out[i] = drawing.ColorFromHex(hex)
	}
	return out
}()

// colorAt cycles through the palette.
func colorAt(i int) drawing.Color {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// classColors maps each class label to a palette entry in class order.
func classColors(classes []string) map[string]color.Color {
	out := make(map[string]color.Color, len(classes))
	for i, c := range classes {
		out[c] = colorAt(i)
	}
	return out
}

// translucent lets overlaid histograms and violins show through.
func translucent(c drawing.Color) color.Color {
	return c.WithAlpha(140)
}
