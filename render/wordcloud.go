package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"unicode"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/engine"
)

const (
	cloudWidth  = 800
	cloudHeight = 400
	cloudWords  = 60
	// maxScale is the magnification of the most frequent word.
	maxScale = 5
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "can": true, "had": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true, "his": true,
	"how": true, "its": true, "may": true, "new": true, "now": true, "own": true,
	"she": true, "too": true, "use": true, "via": true, "who": true, "with": true,
	"this": true, "that": true, "from": true, "they": true, "have": true,
	"were": true, "been": true, "into": true, "than": true, "then": true,
	"them": true, "there": true, "their": true, "what": true, "when": true,
	"which": true, "will": true, "would": true, "about": true,
}

// WordCount is one word of a cloud and its frequency.
type WordCount struct {
	Word  string
	Count int
}

// WordFrequencies counts the words of a text column, most frequent first.
// Words shorter than three letters, stop words and numbers are skipped.
func WordFrequencies(v dataset.View, col string, limit int) []WordCount {
	counts := make(map[string]int)
	for i := 0; i < v.Len(); i++ {
		cell := v.Value(i, col)
		if dataset.IsMissing(cell) {
			continue
		}
		words := strings.FieldsFunc(strings.ToLower(cell), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if len(w) < 3 || stopWords[w] || isNumber(w) {
				continue
			}
			counts[w]++
		}
	}

	out := make([]WordCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, WordCount{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func isNumber(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// glyphs rasterises a word at the basic font's native size.
func glyphs(word string, c color.Color) *image.RGBA {
	face := basicfont.Face7x13
	w := font.MeasureString(face, word).Ceil()
	img := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(word)
	return img
}

// WordCloud packs the most frequent words of a text column into rows, each
// word magnified by its frequency. Always written as png.
func WordCloud(r engine.Request) (*engine.Artifact, error) {
	col := r.Label
	if col == "" && len(r.Columns) > 0 {
		col = r.Columns[0]
	}
	if col == "" || !r.Data.Has(col) {
		return nil, ErrEmptySubset
	}
	words := WordFrequencies(r.Data, col, cloudWords)
	if len(words) == 0 {
		return nil, fmt.Errorf("no words in %s: %w", col, ErrEmptySubset)
	}

	dst := image.NewRGBA(image.Rect(0, 0, cloudWidth, cloudHeight))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)

	peak := words[0].Count
	x, y, rowHeight := 8, 8, 0
	for i, wc := range words {
		scale := 1 + (maxScale-1)*wc.Count/peak
		src := glyphs(wc.Word, colorAt(i))
		w, h := src.Bounds().Dx()*scale, src.Bounds().Dy()*scale
		if x+w > cloudWidth-8 {
			x, y, rowHeight = 8, y+rowHeight+4, 0
		}
		if y+h > cloudHeight-8 {
			break
		}
		xdraw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+w, y+h), src, src.Bounds(), xdraw.Over, nil)
		x += w + 10
		if h > rowHeight {
			rowHeight = h
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("wordcloud: %w", err)
	}
	return finish(r.Family, "Word cloud of "+col, "png", buf.Bytes()), nil
}
