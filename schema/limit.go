package schema

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/spektr-org/autochart/dataset"
)

// ============================================================================
// COLUMN LIMITING — Keep the most target-relevant continuous columns
// ============================================================================
// Regression:     |Pearson r| between column and target
// Classification: correlation ratio η between column and target classes
// No target:      first N in original order
// Kept columns stay in original order.
// ============================================================================

// scoreTolerance is the resolution scores are compared at. Ties within it
// keep original column order.
const scoreTolerance = 1e-9

// limitColumns returns the columns kept and dropped when cols exceeds limit.
func limitColumns(v dataset.View, cols []string, target string, problem ProblemType, limit int) (kept, dropped []string) {
	if len(cols) <= limit {
		return cols, nil
	}
	if problem == ProblemNone {
		return cols[:limit], cols[limit:]
	}

	scores := make([]float64, len(cols))
	for i, c := range cols {
		switch problem {
		case ProblemRegression:
			scores[i] = math.Abs(pearson(v, c, target))
		case ProblemClassification:
			scores[i] = correlationRatio(v, c, target)
		}
		if math.IsNaN(scores[i]) {
			scores[i] = 0
		}
		scores[i] = math.Round(scores[i]/scoreTolerance) * scoreTolerance
	}

	order := make([]int, len(cols))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	keep := make(map[int]bool, limit)
	for _, i := range order[:limit] {
		keep[i] = true
	}
	for i, c := range cols {
		if keep[i] {
			kept = append(kept, c)
		} else {
			dropped = append(dropped, c)
		}
	}
	return kept, dropped
}

// pearson correlates two numeric columns over rows where both are present.
func pearson(v dataset.View, a, b string) float64 {
	var xs, ys []float64
	for i := 0; i < v.Len(); i++ {
		x, okx := v.Float(i, a)
		y, oky := v.Float(i, b)
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0
	}
	return stat.Correlation(xs, ys, nil)
}

// correlationRatio is η = sqrt(between-class SS / total SS) of a numeric
// column grouped by a categorical target.
func correlationRatio(v dataset.View, col, target string) float64 {
	groups := make(map[string][]float64)
	var labels []string
	var all []float64
	for i := 0; i < v.Len(); i++ {
		x, ok := v.Float(i, col)
		if !ok {
			continue
		}
		label := v.Value(i, target)
		if dataset.IsMissing(label) {
			continue
		}
		if _, seen := groups[label]; !seen {
			labels = append(labels, label)
		}
		groups[label] = append(groups[label], x)
		all = append(all, x)
	}
	if len(all) < 2 {
		return 0
	}

	mean := stats.Mean(all)
	var total float64
	for _, x := range all {
		total += (x - mean) * (x - mean)
	}
	if total == 0 {
		return 0
	}

	var between float64
	for _, label := range labels {
		g := groups[label]
		d := stats.Mean(g) - mean
		between += float64(len(g)) * d * d
	}
	return math.Sqrt(between / total)
}
