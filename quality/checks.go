package quality

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/spaolacci/murmur3"
	"gonum.org/v1/gonum/stat"

	"github.com/spektr-org/autochart/dataset"
)

// ============================================================================
// COLUMN PROFILES
// ============================================================================

type profile struct {
	stats      ColumnStats
	values     []string
	floats     []float64 // NaN where missing or non-numeric
	nonMissing int
	numeric    int
	infinite   int
	counts     map[string]int
}

func profileColumns(v dataset.View) []*profile {
	names := v.Names()
	out := make([]*profile, 0, len(names))
	n := v.Len()

	for _, name := range names {
		p := &profile{
			values: dataset.Strings(v, name),
			floats: make([]float64, n),
			counts: make(map[string]int),
		}
		for i, s := range p.values {
			p.floats[i] = math.NaN()
			if dataset.IsMissing(s) {
				continue
			}
			p.nonMissing++
			p.counts[s]++
			if f, ok := dataset.ParseFloat(s); ok {
				p.floats[i] = f
				p.numeric++
			} else if isInfinite(s) {
				p.infinite++
			}
		}

		p.stats = ColumnStats{
			Name:    name,
			Missing: n - p.nonMissing,
			Unique:  len(p.counts),
			Numeric: p.nonMissing > 0 && p.numeric+p.infinite == p.nonMissing,
		}
		if n > 0 {
			p.stats.MissingPct = float64(p.stats.Missing) / float64(n) * 100
		}
		out = append(out, p)
	}
	return out
}

func isInfinite(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && math.IsInf(f, 0)
}

// finite returns the parsed values of a numeric column.
func (p *profile) finite() []float64 {
	xs := make([]float64, 0, p.numeric)
	for _, f := range p.floats {
		if !math.IsNaN(f) {
			xs = append(xs, f)
		}
	}
	return xs
}

// ============================================================================
// PER-COLUMN CHECKS
// ============================================================================

func checkMissing(profiles []*profile) []Finding {
	var out []Finding
	for _, p := range profiles {
		pct := p.stats.MissingPct
		if p.stats.Missing == 0 {
			continue
		}
		f := Finding{
			Check:      "missing_values",
			Columns:    []string{p.stats.Name},
			Detail:     fmt.Sprintf("%d missing values (%.1f%%)", p.stats.Missing, pct),
			Severity:   SeverityInfo,
			Suggestion: "Impute with median (numeric) or mode (categorical)",
		}
		switch {
		case pct > 50:
			f.Severity = SeverityHigh
			f.Suggestion = "Drop the column or collect more data"
		case pct >= 5:
			f.Severity = SeverityWarning
		}
		out = append(out, f)
	}
	return out
}

func checkZeroVariance(profiles []*profile) []Finding {
	var out []Finding
	for _, p := range profiles {
		if p.nonMissing == 0 || p.stats.Unique > 1 {
			continue
		}
		out = append(out, Finding{
			Check:      "zero_variance",
			Severity:   SeverityWarning,
			Columns:    []string{p.stats.Name},
			Detail:     "Column has a single distinct value",
			Suggestion: "Drop the column",
		})
	}
	return out
}

func checkIDColumns(profiles []*profile, target string) []Finding {
	var out []Finding
	for _, p := range profiles {
		if p.stats.Name == target || p.nonMissing <= 10 || p.stats.Unique != p.nonMissing {
			continue
		}
		if p.stats.Numeric && !integral(p.finite()) {
			continue
		}
		out = append(out, Finding{
			Check:      "id_column",
			Severity:   SeverityInfo,
			Columns:    []string{p.stats.Name},
			Detail:     "Every value is unique",
			Suggestion: "Exclude identifier columns from modelling",
		})
	}
	return out
}

func integral(xs []float64) bool {
	for _, x := range xs {
		if x != math.Trunc(x) {
			return false
		}
	}
	return true
}

func checkMixedTypes(profiles []*profile) []Finding {
	var out []Finding
	for _, p := range profiles {
		text := p.nonMissing - p.numeric - p.infinite
		if p.numeric == 0 || text == 0 || p.numeric < text {
			continue
		}
		out = append(out, Finding{
			Check:      "mixed_types",
			Severity:   SeverityWarning,
			Columns:    []string{p.stats.Name},
			Detail:     fmt.Sprintf("%d numeric and %d non-numeric values", p.numeric, text),
			Suggestion: "Coerce to numeric and treat stray strings as missing",
		})
	}
	return out
}

func checkInfinite(profiles []*profile) []Finding {
	var out []Finding
	for _, p := range profiles {
		if p.infinite == 0 {
			continue
		}
		out = append(out, Finding{
			Check:      "infinite_values",
			Severity:   SeverityHigh,
			Columns:    []string{p.stats.Name},
			Detail:     fmt.Sprintf("%d infinite values", p.infinite),
			Suggestion: "Replace infinities with missing values",
		})
	}
	return out
}

func checkCardinality(profiles []*profile, opt Options) []Finding {
	var out []Finding
	for _, p := range profiles {
		if p.stats.Numeric || p.nonMissing == 0 {
			continue
		}
		if p.stats.Unique > opt.HighCardinality {
			if p.stats.Unique == p.nonMissing {
				continue // reported as an identifier
			}
			out = append(out, Finding{
				Check:      "high_cardinality",
				Severity:   SeverityWarning,
				Columns:    []string{p.stats.Name},
				Detail:     fmt.Sprintf("%d distinct values", p.stats.Unique),
				Suggestion: "Group infrequent values or use a hashing encoder",
			})
			continue
		}

		var rare []string
		for val, c := range p.counts {
			if float64(c)/float64(p.nonMissing) < opt.RareThreshold {
				rare = append(rare, val)
			}
		}
		if len(rare) == 0 {
			continue
		}
		sort.Strings(rare)
		out = append(out, Finding{
			Check:      "rare_categories",
			Severity:   SeverityInfo,
			Columns:    []string{p.stats.Name},
			Detail:     fmt.Sprintf("%d rare values: %s", len(rare), strings.Join(rare, ", ")),
			Suggestion: "Combine rare values into an \"Other\" category",
		})
	}
	return out
}

func checkOutliers(profiles []*profile) []Finding {
	var out []Finding
	for _, p := range profiles {
		if !p.stats.Numeric || p.numeric < 4 {
			continue
		}
		s := stats.Sample{Xs: p.finite()}
		s.Sort()
		q1, q3 := s.Quantile(0.25), s.Quantile(0.75)
		iqr := q3 - q1
		if iqr == 0 {
			continue
		}
		lo, hi := q1-1.5*iqr, q3+1.5*iqr
		n := 0
		for _, x := range s.Xs {
			if x < lo || x > hi {
				n++
			}
		}
		if n == 0 {
			continue
		}
		out = append(out, Finding{
			Check:      "outliers",
			Severity:   SeverityInfo,
			Columns:    []string{p.stats.Name},
			Detail:     fmt.Sprintf("%d values outside [%.4g, %.4g]", n, lo, hi),
			Suggestion: "Cap values at the IQR fences or inspect them",
		})
	}
	return out
}

func checkSkew(profiles []*profile, opt Options) []Finding {
	var out []Finding
	for _, p := range profiles {
		if !p.stats.Numeric || p.numeric < 3 {
			continue
		}
		sk := stat.Skew(p.finite(), nil)
		if math.IsNaN(sk) || math.Abs(sk) <= opt.SkewThreshold {
			continue
		}
		out = append(out, Finding{
			Check:      "skewed",
			Severity:   SeverityInfo,
			Columns:    []string{p.stats.Name},
			Detail:     fmt.Sprintf("skewness %.2f", sk),
			Suggestion: "Apply a log or Box-Cox transform",
		})
	}
	return out
}

// ============================================================================
// CROSS-COLUMN CHECKS
// ============================================================================

func checkDuplicateRows(v dataset.View) []Finding {
	names := v.Names()
	seen := make(map[uint64][]int)
	dups := 0

	row := func(i int) []string {
		out := make([]string, len(names))
		for c, n := range names {
			out[c] = v.Value(i, n)
		}
		return out
	}

	for i := 0; i < v.Len(); i++ {
		key := strings.Join(row(i), "\x1f")
		h := murmur3.Sum64([]byte(key))
		dup := false
		for _, j := range seen[h] {
			if strings.Join(row(j), "\x1f") == key {
				dup = true
				break
			}
		}
		if dup {
			dups++
			continue
		}
		seen[h] = append(seen[h], i)
	}

	if dups == 0 {
		return nil
	}
	return []Finding{{
		Check:      "duplicate_rows",
		Severity:   SeverityWarning,
		Columns:    names,
		Detail:     fmt.Sprintf("%d duplicate rows", dups),
		Suggestion: "Drop duplicate rows",
	}}
}

func checkDuplicateColumns(profiles []*profile) []Finding {
	hashes := make([]uint64, len(profiles))
	for i, p := range profiles {
		h := murmur3.New64()
		for _, s := range p.values {
			h.Write([]byte(s))
			h.Write([]byte{0x1f})
		}
		hashes[i] = h.Sum64()
	}

	var out []Finding
	dropped := make(map[int]bool)
	for i := range profiles {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(profiles); j++ {
			if dropped[j] || hashes[i] != hashes[j] || !equalStrings(profiles[i].values, profiles[j].values) {
				continue
			}
			dropped[j] = true
			out = append(out, Finding{
				Check:      "duplicate_columns",
				Severity:   SeverityWarning,
				Columns:    []string{profiles[i].stats.Name, profiles[j].stats.Name},
				Detail:     "Columns hold identical values",
				Suggestion: fmt.Sprintf("Drop %q", profiles[j].stats.Name),
			})
		}
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func checkCorrelated(profiles []*profile, target string, opt Options) []Finding {
	var numeric []*profile
	for _, p := range profiles {
		if p.stats.Numeric && p.stats.Name != target && p.stats.Unique > 1 {
			numeric = append(numeric, p)
		}
	}

	var out []Finding
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			r := pearson(numeric[i].floats, numeric[j].floats)
			if math.IsNaN(r) || math.Abs(r) < opt.CorrelationThreshold {
				continue
			}
			out = append(out, Finding{
				Check:      "correlated",
				Severity:   SeverityWarning,
				Columns:    []string{numeric[i].stats.Name, numeric[j].stats.Name},
				Detail:     fmt.Sprintf("Pearson r = %.3f", r),
				Suggestion: "Keep one of the pair",
			})
		}
	}
	return out
}

func checkLeakage(profiles []*profile, target string, opt Options) []Finding {
	var tp *profile
	for _, p := range profiles {
		if p.stats.Name == target {
			tp = p
		}
	}
	if tp == nil || !tp.stats.Numeric || tp.stats.Unique < 2 {
		return nil
	}

	var out []Finding
	for _, p := range profiles {
		if p == tp || !p.stats.Numeric || p.stats.Unique < 2 {
			continue
		}
		r := pearson(p.floats, tp.floats)
		if math.IsNaN(r) || math.Abs(r) < opt.LeakageThreshold {
			continue
		}
		out = append(out, Finding{
			Check:      "target_leakage",
			Severity:   SeverityHigh,
			Columns:    []string{p.stats.Name},
			Detail:     fmt.Sprintf("Pearson r = %.3f with target %q", r, target),
			Suggestion: "Confirm the column is known before the target; drop it otherwise",
		})
	}
	return out
}

func checkImbalance(v dataset.View, target string, opt Options) []Finding {
	counts := make(map[string]int)
	total := 0
	for i := 0; i < v.Len(); i++ {
		s := v.Value(i, target)
		if dataset.IsMissing(s) {
			continue
		}
		counts[s]++
		total++
	}
	// Only class-like targets.
	if len(counts) < 2 || len(counts) > 30 {
		return nil
	}

	minClass, minCount := "", total+1
	for c, n := range counts {
		if n < minCount || (n == minCount && c < minClass) {
			minClass, minCount = c, n
		}
	}
	share := float64(minCount) / float64(total)
	if share >= opt.ImbalanceRatio {
		return nil
	}
	return []Finding{{
		Check:      "class_imbalance",
		Severity:   SeverityWarning,
		Columns:    []string{target},
		Detail:     fmt.Sprintf("class %q is %.1f%% of rows", minClass, share*100),
		Suggestion: "Use stratified sampling or class weights",
	}}
}

// pearson correlates two columns over rows where both are present.
func pearson(a, b []float64) float64 {
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(a))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 3 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
