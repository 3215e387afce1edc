// Package report turns an engine.Result into files a person can read: a
// Markdown report of every bucket, a JSON manifest and CSV exports of the
// data behind grouped charts.
package report

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spektr-org/autochart/engine"
)

// ============================================================================
// MARKDOWN — one section per bucket, overall summary first
// ============================================================================

// Markdown writes the report for res. Buckets with nothing to show are
// skipped; the overall bucket always leads.
func Markdown(w io.Writer, res *engine.Result) error {
	var b bytes.Buffer

	b.WriteString("# AutoChart Report\n\n")
	if res.RunID != "" {
		fmt.Fprintf(&b, "Run `%s`", res.RunID)
		if cls := res.Classification; cls != nil {
			fmt.Fprintf(&b, " · %d rows", cls.Rows)
			if cls.HasTarget() {
				fmt.Fprintf(&b, " · target `%s` (%s)", cls.Target, cls.ProblemType)
			}
		}
		b.WriteString("\n\n")
	}

	if res.Buckets != nil {
		for _, bucket := range ordered(res.Buckets) {
			if bucket.Family != engine.FamilyOverall && bucket.Empty() {
				continue
			}
			writeBucket(&b, bucket)
		}
	}

	if len(res.Errors) > 0 {
		b.WriteString("## Skipped Charts\n\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		b.WriteString("\n")
	}

	_, err := w.Write(b.Bytes())
	return err
}

// ordered puts the overall bucket first, then the chart families in order.
func ordered(bs *engine.Buckets) []*engine.Bucket {
	out := []*engine.Bucket{bs.Get(engine.FamilyOverall)}
	for _, b := range bs.All() {
		if b.Family != engine.FamilyOverall {
			out = append(out, b)
		}
	}
	return out
}

func writeBucket(b *bytes.Buffer, bucket *engine.Bucket) {
	if bucket == nil {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", bucket.Heading)

	if bucket.Family == engine.FamilyOverall {
		for _, s := range bucket.Subheadings {
			fmt.Fprintf(b, "- %s\n", s)
		}
		if len(bucket.Subheadings) > 0 {
			b.WriteString("\n")
		}
	}

	for i, art := range bucket.Artifacts {
		fmt.Fprintf(b, "### %s\n\n", art.Title)
		fmt.Fprintf(b, "![%s](%s)\n\n", art.Title, link(art))
		if bucket.Family == engine.FamilyTimeSeries && i == 0 {
			writeLines(b, bucket.Descriptions)
		}
	}

	if bucket.Family != engine.FamilyTimeSeries {
		writeLines(b, bucket.Descriptions)
	}
	for _, t := range bucket.Tables {
		writeTable(b, t)
	}
}

func writeLines(b *bytes.Buffer, lines []string) {
	if len(lines) == 0 {
		return
	}
	for _, l := range lines {
		fmt.Fprintf(b, "- %s\n", l)
	}
	b.WriteString("\n")
}

// link is the artifact's file name. The report sits next to the artifacts.
func link(a *engine.Artifact) string {
	if a.Path != "" {
		return path.Base(a.Path)
	}
	return a.Name + "." + a.Format
}

func writeTable(b *bytes.Buffer, t *engine.TableData) {
	if t == nil || len(t.Columns) == 0 {
		return
	}
	if t.Title != "" {
		fmt.Fprintf(b, "**%s**\n\n", t.Title)
	}

	head := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		head[i] = cell(c.Label)
		switch c.Align {
		case "right":
			rule[i] = "---:"
		case "center":
			rule[i] = ":---:"
		default:
			rule[i] = "---"
		}
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(head, " | "))
	fmt.Fprintf(b, "| %s |\n", strings.Join(rule, " | "))

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i := range cells {
			if i < len(row) {
				cells[i] = cell(row[i])
			}
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}

	if t.Summary != nil {
		cells := make([]string, len(t.Columns))
		cells[0] = "**" + cell(t.Summary.Label) + "**"
		for i, c := range t.Columns {
			if v, ok := t.Summary.Values[c.Key]; ok && i > 0 {
				cells[i] = cell(v)
			}
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}
	b.WriteString("\n")
}

// cell escapes pipes and flattens newlines.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
