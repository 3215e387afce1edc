package engine

import (
	"fmt"
	"strings"

	"github.com/spektr-org/autochart/schema"
)

// ============================================================================
// TABLE BUILDER — overview tables for the overall bucket
// ============================================================================

// BuildColumnTable lists every classified column with its role and counts.
func BuildColumnTable(c *schema.Classification) *TableData {
	columns := []Column{
		{Key: "column", Label: "Column", Type: "text", Align: "left"},
		{Key: "role", Label: "Role", Type: "text", Align: "left"},
		{Key: "kind", Label: "Kind", Type: "text", Align: "left"},
		{Key: "unique", Label: "Unique", Type: "number", Align: "right"},
		{Key: "missing", Label: "Missing", Type: "number", Align: "right"},
	}

	metas := c.Columns
	if c.TargetMeta != nil {
		metas = append([]schema.ColumnMeta{*c.TargetMeta}, metas...)
	}

	rows := make([][]string, 0, len(metas)+len(c.Skipped))
	for _, m := range metas {
		role := string(m.Role)
		if m.Name == c.Target {
			role = "target"
		}
		rows = append(rows, []string{
			m.Name,
			role,
			string(m.Kind),
			FormatInt(m.Unique),
			FormatInt(m.Missing),
		})
	}
	for _, s := range c.Skipped {
		rows = append(rows, []string{s.Column, "skipped", "", "", ""})
	}

	return &TableData{
		Title:   "Column Classification",
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("Total (%d columns)", len(rows)),
			Values: map[string]string{
				"missing": FormatInt(sumMissing(metas)),
			},
		},
	}
}

// BuildPartitionTable counts columns per role.
func BuildPartitionTable(c *schema.Classification) *TableData {
	p := c.Partitions
	parts := []struct {
		label string
		cols  []string
	}{
		{"Identifier", p.IDs},
		{"Boolean", p.Booleans},
		{"Categorical", p.Categoricals},
		{"Continuous", p.Continuous},
		{"Discrete string", p.Text},
		{"Date/time", p.Dates},
		{"Numeric", p.Numeric},
	}

	rows := make([][]string, 0, len(parts))
	for _, part := range parts {
		rows = append(rows, []string{
			part.label,
			fmt.Sprintf("%d", len(part.cols)),
			strings.Join(part.cols, ", "),
		})
	}

	return &TableData{
		Title: "Variable Partitions",
		Columns: []Column{
			{Key: "partition", Label: "Partition", Type: "text", Align: "left"},
			{Key: "count", Label: "Count", Type: "number", Align: "center"},
			{Key: "columns", Label: "Columns", Type: "text", Align: "left"},
		},
		Rows: rows,
	}
}

// BuildClassTable shows class counts for a classification target. Nil for
// other problem types.
func BuildClassTable(c *schema.Classification) *TableData {
	if c.ProblemType != schema.ProblemClassification || c.Data == nil {
		return nil
	}

	groups := GroupAndAggregate(c.Data, []string{c.Target}, "", "count", "label_asc", 0)
	rows := make([][]string, 0, len(groups))
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	for _, g := range groups {
		share := 0.0
		if total > 0 {
			share = float64(g.Count) / float64(total) * 100
		}
		rows = append(rows, []string{g.Label, FormatInt(g.Count), fmt.Sprintf("%.1f%%", share)})
	}

	return &TableData{
		Title: fmt.Sprintf("Classes of %s", c.Target),
		Columns: []Column{
			{Key: "class", Label: "Class", Type: "text", Align: "left"},
			{Key: "count", Label: "Count", Type: "number", Align: "right"},
			{Key: "share", Label: "Share", Type: "number", Align: "right"},
		},
		Rows: rows,
		Summary: &Summary{
			Label:  "Total",
			Values: map[string]string{"count": FormatInt(total)},
		},
	}
}

func sumMissing(metas []schema.ColumnMeta) int {
	n := 0
	for _, m := range metas {
		n += m.Missing
	}
	return n
}
