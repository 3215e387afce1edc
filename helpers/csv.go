package helpers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spektr-org/autochart/dataset"
)

// ============================================================================
// CSV HELPER — Parses delimited text into a dataset.Table
// ============================================================================
// Consumer reads the bytes from wherever they live (file, S3, HTTP).
// This helper turns them into an immutable table; classification happens
// later, in schema.Classify.
// ============================================================================

// CSVOptions controls delimited-text parsing.
type CSVOptions struct {
	// Sep is the field separator. Zero means ',' for ParseCSV and "by
	// extension" for Load.
	Sep rune
	// Header reports whether the first row holds column names. Without a
	// header columns are named Col_1, Col_2, ...
	Header bool
	// SnakeCase rewrites "Column Name" as "column_name".
	SnakeCase bool
}

// DefaultCSVOptions reads data with a header row. The separator is left
// unset so Load can pick one from the extension.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Header: true}
}

// ParseCSV parses delimited bytes into a Table. Malformed rows are skipped;
// short rows are padded with missing cells and long rows truncated to the
// header width.
func ParseCSV(data []byte, opts CSVOptions) (*dataset.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	if opts.Sep != 0 {
		reader.Comma = opts.Sep
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	// Read header
	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var (
		names []string
		rows  [][]string
	)
	if opts.Header {
		names = columnNames(first, opts.SnakeCase)
	} else {
		names = make([]string, len(first))
		for i := range names {
			names[i] = "Col_" + strconv.Itoa(i+1)
		}
		rows = append(rows, fit(first, len(names)))
	}

	// Read rows
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rows = append(rows, fit(row, len(names)))
	}

	return dataset.New(names, rows)
}

// fit trims cells and pads or truncates the row to n cells.
func fit(row []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}

// columnNames trims header cells, names blank ones Col_<n> and suffixes
// repeated names with _2, _3, ...
func columnNames(header []string, snake bool) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if snake {
			name = toSnakeCase(name)
		}
		if name == "" {
			name = "Col_" + strconv.Itoa(i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + "_" + strconv.Itoa(n)
		}
		names[i] = name
	}
	return names
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
