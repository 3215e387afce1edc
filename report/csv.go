package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/spektr-org/autochart/engine"
)

// ============================================================================
// CSV EXPORT — the data behind bar and pivot charts, ready for a spreadsheet
// ============================================================================

// ChartCSV writes a chart's series as CSV. One series gives two columns;
// several give the label plus one column per series.
func ChartCSV(w io.Writer, cfg *engine.ChartConfig) error {
	if cfg == nil || len(cfg.Series) == 0 {
		return fmt.Errorf("chart has no series")
	}
	cw := csv.NewWriter(w)

	xLabel := cfg.XAxis
	yLabel := cfg.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Single series → two columns
	if len(cfg.Series) == 1 {
		cw.Write([]string{xLabel, yLabel})
		for _, d := range cfg.Series[0].Data {
			cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
		cw.Flush()
		return cw.Error()
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	for _, s := range cfg.Series {
		headers = append(headers, s.Name)
	}
	cw.Write(headers)

	for i, d := range cfg.Series[0].Data {
		row := []string{d.Label}
		for _, s := range cfg.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

// TableCSV writes a summary table with its labels as the header row.
func TableCSV(w io.Writer, t *engine.TableData) error {
	if t == nil || len(t.Columns) == 0 {
		return fmt.Errorf("table has no columns")
	}
	cw := csv.NewWriter(w)

	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Label
	}
	cw.Write(headers)
	for _, row := range t.Rows {
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
