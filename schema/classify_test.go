package schema

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autochart/dataset"
)

// randomTable builds a mixed-type table from a seed.
func randomTable(seed int64, rows int) *dataset.Table {
	r := rand.New(rand.NewSource(seed))
	cities := []string{"Paris", "Tokyo", "Lima", "Oslo", "Cairo"}
	words := []string{"red", "green", "blue", "fast", "slow", "tiny", "huge", "calm"}
	data := make([][]string, rows)
	for i := range data {
		phrase := ""
		for w := 0; w < 2+r.Intn(5); w++ {
			phrase += words[r.Intn(len(words))] + " "
		}
		data[i] = []string{
			strconv.Itoa(i),
			fmt.Sprintf("%.2f", r.NormFloat64()*10),
			strconv.Itoa(r.Intn(1000)),
			cities[r.Intn(len(cities))],
			[]string{"yes", "no"}[r.Intn(2)],
			fmt.Sprintf("2026-01-%02d", 1+r.Intn(28)),
			phrase,
			strconv.Itoa(r.Intn(3)),
		}
		if r.Intn(10) == 0 {
			data[i][1] = "NaN"
		}
	}
	return dataset.MustNew([]string{"id", "x", "y", "city", "churn", "day", "notes", "label"}, data)
}

func TestTargetNotFound(t *testing.T) {
	tbl := randomTable(1, 20)

	_, err := Classify(tbl, SingleTarget("nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTargetNotFound))
	assert.True(t, IsConfigError(err))
	assert.False(t, errors.Is(err, ErrInvalidLimits))

	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "nope", ce.Details["target"])

	wrapped := fmt.Errorf("classify: %w", err)
	assert.True(t, errors.Is(wrapped, ErrTargetNotFound))
}

func TestMultiLabelTargetUsesFirst(t *testing.T) {
	tbl := randomTable(2, 40)

	c, err := Classify(tbl, ListTarget("label", "city"))
	require.NoError(t, err)

	assert.Equal(t, "label", c.Target)
	require.Len(t, c.Warnings, 1)
	assert.Contains(t, c.Warnings[0], "choosing first item in targets: label")
	assert.Contains(t, c.Partitions.Categoricals, "city", "the discarded target is an ordinary column")

	single, err := Classify(tbl, SingleTarget("label"))
	require.NoError(t, err)
	assert.Equal(t, single.Partitions, c.Partitions)
	assert.Equal(t, single.ProblemType, c.ProblemType)
}

func TestParseTarget(t *testing.T) {
	assert.True(t, ParseTarget("").IsZero())
	assert.Equal(t, []string{"a"}, ParseTarget(" a ").Names())
	assert.Equal(t, []string{"a", "b"}, ParseTarget("a,b").Names())

	name, warn := ParseTarget("a,b").Resolve()
	assert.Equal(t, "a", name)
	assert.NotEmpty(t, warn)
}

func TestProblemTypeThreshold(t *testing.T) {
	tests := []struct {
		name     string
		distinct int
		want     ProblemType
	}{
		{"binary", 2, ProblemClassification},
		{"few classes", 5, ProblemClassification},
		{"at threshold", 30, ProblemClassification},
		{"above threshold", 31, ProblemRegression},
		{"continuous", 200, ProblemRegression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]string, 400)
			for i := range rows {
				rows[i] = []string{strconv.Itoa(i % tt.distinct), strconv.Itoa(i % 7)}
			}
			c, err := Classify(dataset.MustNew([]string{"y", "g"}, rows), SingleTarget("y"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.ProblemType)
			if tt.want == ProblemClassification {
				assert.Len(t, c.Classes, tt.distinct)
			} else {
				assert.Empty(t, c.Classes)
			}
		})
	}

	t.Run("string target is classification", func(t *testing.T) {
		rows := make([][]string, 100)
		for i := range rows {
			rows[i] = []string{fmt.Sprintf("class-%d", i), "1.5"}
		}
		c, err := Classify(dataset.MustNew([]string{"y", "x"}, rows), SingleTarget("y"))
		require.NoError(t, err)
		assert.Equal(t, ProblemClassification, c.ProblemType)
	})
}

func TestClassesSortNumerically(t *testing.T) {
	rows := [][]string{{"10", "a"}, {"2", "b"}, {"1", "c"}, {"2", "d"}}
	c, err := Classify(dataset.MustNew([]string{"y", "x"}, rows), SingleTarget("y"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "10"}, c.Classes)
}

func TestInvalidOptions(t *testing.T) {
	tbl := randomTable(3, 20)
	_, err := Classify(tbl, NoTarget(), Options{MaxRows: -1})
	assert.True(t, errors.Is(err, ErrInvalidLimits))

	_, err = Classify(tbl, NoTarget(), Options{TypeMatchRate: 1.5})
	assert.True(t, errors.Is(err, ErrInvalidLimits))
}

func TestEveryColumnIsPartitioned(t *testing.T) {
	c, err := Classify(randomTable(4, 200), SingleTarget("y"))
	require.NoError(t, err)

	seen := map[string]int{}
	p := c.Partitions
	for _, group := range [][]string{p.IDs, p.Booleans, p.Categoricals, p.Continuous, p.Text, p.Dates} {
		for _, name := range group {
			seen[name]++
		}
	}
	for _, name := range c.Data.Names() {
		if name == c.Target {
			assert.Zero(t, seen[name], "target is kept out of partitions")
			continue
		}
		assert.Equal(t, 1, seen[name], "column %q must be in exactly one role partition", name)
	}
	for _, id := range p.IDs {
		assert.NotContains(t, p.Numeric, id)
	}
	assert.Equal(t, []string{"id"}, p.IDs)
	assert.Equal(t, []string{"notes"}, p.Text)
	assert.Equal(t, []string{"day"}, p.Dates)
}

func TestColumnLimit(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	names := []string{"y", "noise1", "strong", "noise2", "medium"}
	rows := make([][]string, 500)
	for i := range rows {
		y := r.NormFloat64()
		rows[i] = []string{
			fmt.Sprintf("%.4f", y),
			fmt.Sprintf("%.4f", r.NormFloat64()),
			fmt.Sprintf("%.4f", y+0.1*r.NormFloat64()),
			fmt.Sprintf("%.4f", r.NormFloat64()),
			fmt.Sprintf("%.4f", y+r.NormFloat64()),
		}
	}
	tbl := dataset.MustNew(names, rows)

	t.Run("regression keeps most correlated", func(t *testing.T) {
		c, err := Classify(tbl, SingleTarget("y"), Options{MaxCols: 2})
		require.NoError(t, err)
		assert.Equal(t, ProblemRegression, c.ProblemType)
		assert.Equal(t, []string{"strong", "medium"}, c.Partitions.Continuous)
		assert.False(t, c.Data.Has("noise1"))
		assert.Len(t, c.Skipped, 2)
	})

	t.Run("no target keeps first columns", func(t *testing.T) {
		c, err := Classify(tbl, NoTarget(), Options{MaxCols: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"y", "noise1"}, c.Partitions.Continuous)
	})

	t.Run("classification ranks by correlation ratio", func(t *testing.T) {
		crows := make([][]string, 300)
		for i := range crows {
			class := i % 3
			crows[i] = []string{
				strconv.Itoa(class),
				fmt.Sprintf("%.4f", r.NormFloat64()),
				fmt.Sprintf("%.4f", float64(class)*5+r.NormFloat64()*0.1),
			}
		}
		c, err := Classify(dataset.MustNew([]string{"label", "noise", "signal"}, crows), SingleTarget("label"), Options{MaxCols: 1})
		require.NoError(t, err)
		assert.Equal(t, ProblemClassification, c.ProblemType)
		assert.Equal(t, []string{"signal"}, c.Partitions.Continuous)
	})
}

func TestColumnLimitTiesKeepColumnOrder(t *testing.T) {
	// Every class is a singleton, so each column scores η = 1.
	tbl := dataset.MustNew([]string{"k", "p", "q", "r"}, [][]string{
		{"a", "0.1", "7.3", "1.9"},
		{"b", "2.7", "0.4", "3.3"},
		{"c", "9.2", "5.5", "0.2"},
		{"d", "4.4", "2.1", "8.6"},
	})
	for i := 0; i < 50; i++ {
		kept, dropped := limitColumns(tbl, []string{"p", "q", "r"}, "k", ProblemClassification, 2)
		require.Equal(t, []string{"p", "q"}, kept)
		require.Equal(t, []string{"r"}, dropped)
	}

	tbl = randomTable(0, 7)
	first, err := Classify(tbl, SingleTarget("x"), Options{MaxRows: 6, MaxCols: 2})
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := Classify(tbl, SingleTarget("x"), Options{MaxRows: 6, MaxCols: 2})
		require.NoError(t, err)
		require.Equal(t, first.Partitions, again.Partitions)
	}
}

func TestProperty_ClassifyIsIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("same input and limits give identical classification", prop.ForAll(
		func(seed int64, rows int, maxRows int) bool {
			tbl := randomTable(seed, rows)
			opt := Options{MaxRows: maxRows, MaxCols: 2}
			for _, target := range []Target{NoTarget(), SingleTarget("label"), SingleTarget("x")} {
				a, err := Classify(tbl, target, opt)
				if err != nil {
					return false
				}
				b, err := Classify(tbl, target, opt)
				if err != nil {
					return false
				}
				if !reflect.DeepEqual(a.Partitions, b.Partitions) || a.ProblemType != b.ProblemType {
					return false
				}
				if a.Rows != b.Rows || a.Rows > maxRows {
					return false
				}
				for i := 0; i < a.Rows; i++ {
					if a.Data.Value(i, "id") != b.Data.Value(i, "id") {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 300),
		gen.IntRange(1, 400),
	))

	properties.TestingRun(t)
}

func TestProperty_ProblemTypeFollowsDistinctCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("numeric targets above the threshold are regression", prop.ForAll(
		func(distinct int, threshold int) bool {
			rows := make([][]string, distinct*2)
			for i := range rows {
				rows[i] = []string{strconv.Itoa(i % distinct)}
			}
			c, err := Classify(dataset.MustNew([]string{"y"}, rows), SingleTarget("y"), Options{RegressionUnique: threshold})
			if err != nil {
				return false
			}
			if distinct > threshold {
				return c.ProblemType == ProblemRegression
			}
			return c.ProblemType == ProblemClassification
		},
		gen.IntRange(1, 120),
		gen.IntRange(1, 80),
	))

	properties.TestingRun(t)
}
