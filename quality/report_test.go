package quality

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autochart/dataset"
)

func columns(t *testing.T, names []string, cols ...[]string) dataset.View {
	t.Helper()
	tbl, err := dataset.FromColumns(names, cols)
	require.NoError(t, err)
	return tbl
}

func findingColumns(r *Report, check string) [][]string {
	var out [][]string
	for _, f := range r.ByCheck(check) {
		out = append(out, f.Columns)
	}
	return out
}

func TestCheckRejectsBadInput(t *testing.T) {
	_, err := Check(nil, "")
	assert.ErrorIs(t, err, ErrNoData)

	v := columns(t, []string{"a"}, []string{"1", "2"})
	_, err = Check(v, "missing")
	assert.Error(t, err)
}

func TestPerColumnChecks(t *testing.T) {
	n := 40
	id := make([]string, n)
	constant := make([]string, n)
	sparse := make([]string, n)
	mixed := make([]string, n)
	inf := make([]string, n)
	outlier := make([]string, n)
	for i := 0; i < n; i++ {
		id[i] = "ID-" + strconv.Itoa(i)
		constant[i] = "same"
		if i%3 == 0 {
			sparse[i] = strconv.Itoa(i % 2)
		}
		mixed[i] = strconv.Itoa(i % 7)
		inf[i] = strconv.Itoa(i % 5)
		outlier[i] = strconv.Itoa(10 + i%3)
	}
	mixed[5] = "unknown"
	inf[9] = "Inf"
	outlier[0] = "1000"

	v := columns(t,
		[]string{"id", "constant", "sparse", "mixed", "inf", "outlier"},
		id, constant, sparse, mixed, inf, outlier)
	r, err := Check(v, "")
	require.NoError(t, err)

	assert.Equal(t, 40, r.Rows)
	require.Len(t, r.Columns, 6)
	assert.Equal(t, 26, r.Columns[2].Missing)
	assert.InDelta(t, 65.0, r.Columns[2].MissingPct, 1e-9)
	assert.True(t, r.Columns[4].Numeric)
	assert.False(t, r.Columns[3].Numeric)

	missing := r.ByCheck("missing_values")
	require.Len(t, missing, 1)
	assert.Equal(t, SeverityHigh, missing[0].Severity)

	assert.Equal(t, [][]string{{"id"}}, findingColumns(r, "id_column"))
	assert.Equal(t, [][]string{{"constant"}}, findingColumns(r, "zero_variance"))
	assert.Equal(t, [][]string{{"mixed"}}, findingColumns(r, "mixed_types"))
	assert.Equal(t, [][]string{{"inf"}}, findingColumns(r, "infinite_values"))
	assert.Contains(t, findingColumns(r, "outliers"), []string{"outlier"})
	assert.Contains(t, findingColumns(r, "skewed"), []string{"outlier"})
}

func TestCardinalityChecks(t *testing.T) {
	n := 400
	wide := make([]string, n)
	rare := make([]string, n)
	for i := 0; i < n; i++ {
		wide[i] = "w" + strconv.Itoa(i%100)
		rare[i] = "common"
	}
	rare[7] = "unusual"

	r, err := Check(columns(t, []string{"wide", "rare"}, wide, rare), "")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"wide"}}, findingColumns(r, "high_cardinality"))
	rc := r.ByCheck("rare_categories")
	require.Len(t, rc, 1)
	assert.Equal(t, []string{"rare"}, rc[0].Columns)
	assert.Contains(t, rc[0].Detail, "unusual")
}

func TestDuplicates(t *testing.T) {
	a := []string{"1", "2", "3", "1", "2"}
	b := []string{"x", "y", "z", "x", "q"}
	c := []string{"1", "2", "3", "1", "2"}

	r, err := Check(columns(t, []string{"a", "b", "c"}, a, b, c), "")
	require.NoError(t, err)

	rows := r.ByCheck("duplicate_rows")
	require.Len(t, rows, 1)
	assert.Equal(t, "1 duplicate rows", rows[0].Detail)
	assert.Equal(t, [][]string{{"a", "c"}}, findingColumns(r, "duplicate_columns"))
}

func TestCorrelationLeakageAndImbalance(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 200
	x, twin, noise, y, label := make([]string, n), make([]string, n), make([]string, n), make([]string, n), make([]string, n)
	for i := 0; i < n; i++ {
		xv := rng.Float64() * 100
		x[i] = fmt.Sprintf("%.4f", xv)
		twin[i] = fmt.Sprintf("%.4f", 2*xv+rng.Float64())
		noise[i] = fmt.Sprintf("%.4f", rng.Float64())
		y[i] = fmt.Sprintf("%.4f", 3*xv+rng.Float64())
		label[i] = "no"
		if i%50 == 0 {
			label[i] = "yes"
		}
	}
	names := []string{"x", "twin", "noise", "y", "label"}
	v := columns(t, names, x, twin, noise, y, label)

	r, err := Check(v, "y")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "twin"}}, findingColumns(r, "correlated"))
	assert.Equal(t, [][]string{{"x"}, {"twin"}}, findingColumns(r, "target_leakage"))
	assert.Empty(t, r.ByCheck("class_imbalance"))

	r, err = Check(v, "label")
	require.NoError(t, err)
	imb := r.ByCheck("class_imbalance")
	require.Len(t, imb, 1)
	assert.Contains(t, imb[0].Detail, `"yes"`)
	assert.Empty(t, r.ByCheck("target_leakage"))
}

func TestLinesOrderBySeverity(t *testing.T) {
	r := &Report{Findings: []Finding{
		{Check: "skewed", Severity: SeverityInfo, Columns: []string{"a"}},
		{Check: "infinite_values", Severity: SeverityHigh, Columns: []string{"b"}},
		{Check: "zero_variance", Severity: SeverityWarning, Columns: []string{"c"}},
	}}
	lines := r.Lines()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[HIGH] infinite_values")
	assert.Contains(t, lines[1], "[WARNING] zero_variance")
	assert.Contains(t, lines[2], "[INFO] skewed")
	assert.Equal(t, 1, r.Count(SeverityHigh))
}
