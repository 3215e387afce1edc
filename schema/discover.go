package schema

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spektr-org/autochart/dataset"
)

// ============================================================================
// COLUMN ANALYSIS — Heuristic Role Classification
// ============================================================================
// Per column:
//   1. Collect non-missing values → unique set, token counts
//   2. Detect kind (bool, numeric, date, string) by parse rate
//   3. Kind + cardinality → role (identifier, boolean, categorical,
//      continuous, text, date)
// ============================================================================

type columnAnalysis struct {
	meta       ColumnMeta
	nonMissing int
	rows       int
	skipReason string
}

// analyzeColumn inspects every value of a column in the working view.
func analyzeColumn(v dataset.View, name string, opt Options, isTarget bool) columnAnalysis {
	col := columnAnalysis{
		meta: ColumnMeta{
			Name:        name,
			DisplayName: toDisplayName(name),
		},
		rows: v.Len(),
	}

	values := make([]string, 0, v.Len())
	uniqueSet := make(map[string]bool)
	tokens := 0

	for i := 0; i < v.Len(); i++ {
		val := v.Value(i, name)
		if dataset.IsMissing(val) {
			col.meta.Missing++
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
		tokens += len(strings.Fields(val))
	}

	col.nonMissing = len(values)
	col.meta.Unique = len(uniqueSet)

	if len(values) == 0 {
		col.meta.Kind = KindString
		col.skipReason = "All values are empty/null"
		return col
	}

	col.meta.SampleValues = collectSamples(uniqueSet, 10)
	col.meta.AvgTokens = float64(tokens) / float64(len(values))
	col.meta.Kind = detectType(values, opt.TypeMatchRate)

	if col.meta.Kind == KindNumeric {
		col.meta.Integer = allIntegers(values)
	}

	col.meta.Role = col.classifyRole(opt, isTarget)

	switch {
	case col.meta.Unique <= 10:
		col.meta.CardinalityHint = "low"
	case col.meta.Unique <= 100:
		col.meta.CardinalityHint = "medium"
	default:
		col.meta.CardinalityHint = "high"
	}

	return col
}

// classifyRole maps kind and cardinality to a charting role.
func (col *columnAnalysis) classifyRole(opt Options, isTarget bool) Role {
	m := &col.meta

	if m.Unique == 2 {
		return RoleBoolean
	}

	switch m.Kind {
	case KindBool:
		// Single-valued yes/no columns carry nothing to split on.
		return RoleCategorical

	case KindNumeric:
		if !m.Integer {
			return RoleContinuous
		}
		if !isTarget && col.looksLikeID(opt) {
			return RoleID
		}
		ratio := float64(m.Unique) / float64(col.rows)
		if m.Unique <= opt.CategoricalLimit && ratio < opt.CategoricalRatio {
			return RoleCategorical
		}
		return RoleContinuous

	case KindDate:
		return RoleDate

	default:
		if !isTarget && col.highCardinality(opt) && m.AvgTokens > opt.TextTokens {
			return RoleText
		}
		if !isTarget && col.looksLikeID(opt) {
			return RoleID
		}
		return RoleCategorical
	}
}

// looksLikeID reports near-unique values across more than 10 rows.
func (col *columnAnalysis) looksLikeID(opt Options) bool {
	if col.rows <= 10 || col.nonMissing == 0 {
		return false
	}
	return float64(col.meta.Unique) >= opt.IDRatio*float64(col.nonMissing)
}

// highCardinality is true when a string column has more distinct values than
// the categorical limit, or when more than half its rows are distinct.
func (col *columnAnalysis) highCardinality(opt Options) bool {
	if col.meta.Unique > opt.CategoricalLimit {
		return true
	}
	return col.rows > 10 && float64(col.meta.Unique)/float64(col.rows) > 0.5
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType inspects values to determine column kind.
// Requires rate (0.8 by default) of non-null values to match for
// numeric/date/bool.
func detectType(values []string, rate float64) Kind {
	if len(values) == 0 {
		return KindString
	}

	numCount := 0
	dateCount := 0
	boolCount := 0

	for _, v := range values {
		if isNumeric(v) {
			numCount++
		} else if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(math.Ceil(float64(len(values))*rate - 1e-9))

	if boolCount >= threshold && numCount < threshold {
		return KindBool
	}
	if numCount >= threshold {
		return KindNumeric
	}
	if dateCount >= threshold {
		return KindDate
	}
	return KindString
}

func isNumeric(s string) bool {
	_, ok := dataset.ParseFloat(s)
	return ok
}

func allIntegers(values []string) bool {
	for _, v := range values {
		f, ok := dataset.ParseFloat(v)
		if !ok {
			continue
		}
		if f != math.Trunc(f) {
			return false
		}
	}
	return true
}

// dateFormats are the layouts tried, in order, by ParseTime. Bare years are
// not dates: they are indistinguishable from integer columns.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"01/02/2006 15:04",
	"02-Jan-2006",
	"Jan-2006",
	"2006-01",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseTime parses a date/time cell with the first layout that accepts it.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if dataset.IsMissing(s) {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDate(s string) bool {
	_, ok := ParseTime(s)
	return ok
}

func isBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "false" || s == "yes" || s == "no"
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toDisplayName cleans a header for human display.
// "story_points" → "Story Points", "assignee" → "Assignee"
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
