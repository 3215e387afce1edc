package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/schema"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via dataset.View
// ============================================================================
// Grouping produces SubViews (index lists into the parent view), so bar,
// pivot and trend summaries never copy the dataset.
// ============================================================================

// MissingLabel is the group key for missing cells.
const MissingLabel = "(missing)"

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → sort → limit.
func GroupAndAggregate(
	view dataset.View,
	groupBy []string,
	measure string,
	aggregation string,
	sortBy string,
	limit int,
) []Group {
	if view.Len() == 0 {
		return nil
	}

	// 1. Group
	var groups []Group
	if len(groupBy) == 0 {
		groups = []Group{{
			Key:   "all",
			Label: "Total",
			View:  view,
		}}
	} else if len(groupBy) == 1 {
		groups = groupBySingle(view, groupBy[0])
	} else {
		groups = groupByMulti(view, groupBy)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i], measure, aggregation)
		for j := range groups[i].SubGroups {
			aggregateGroup(&groups[i].SubGroups[j], measure, aggregation)
		}
		SortGroups(groups[i].SubGroups, "label_asc")
	}

	// 3. Sort
	SortGroups(groups, sortBy)

	// 4. Limit
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view dataset.View, column string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := groupKey(view, i, column)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  dataset.Subset(view, grouped[key]),
		})
	}
	return groups
}

func groupByMulti(view dataset.View, columns []string) []Group {
	primaryGroups := groupBySingle(view, columns[0])
	for i := range primaryGroups {
		primaryGroups[i].SubGroups = groupBySingle(primaryGroups[i].View, columns[1])
	}
	return primaryGroups
}

func groupKey(view dataset.View, i int, column string) string {
	v := view.Value(i, column)
	if dataset.IsMissing(v) {
		return MissingLabel
	}
	return v
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, aggregation string) {
	group.Count = group.View.Len()
	if group.Count == 0 {
		return
	}

	switch aggregation {
	case "count":
		group.Value = float64(group.Count)
	case "avg":
		group.Value = AvgMeasure(group.View, measure)
	case "max":
		group.Value = MaxMeasure(group.View, measure)
	case "min":
		group.Value = MinMeasure(group.View, measure)
	case "none":
		// pass through
	default:
		group.Value = SumMeasure(group.View, measure)
	}
}

// SumMeasure sums a numeric column across a view, skipping missing cells.
func SumMeasure(view dataset.View, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		if f, ok := view.Float(i, measure); ok {
			total += f
		}
	}
	return total
}

// AvgMeasure averages the present values of a numeric column. NaN when none
// are present.
func AvgMeasure(view dataset.View, measure string) float64 {
	var total float64
	n := 0
	for i := 0; i < view.Len(); i++ {
		if f, ok := view.Float(i, measure); ok {
			total += f
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return total / float64(n)
}

// MaxMeasure returns the largest present value, or NaN.
func MaxMeasure(view dataset.View, measure string) float64 {
	m := math.NaN()
	for i := 0; i < view.Len(); i++ {
		if f, ok := view.Float(i, measure); ok && (math.IsNaN(m) || f > m) {
			m = f
		}
	}
	return m
}

// MinMeasure returns the smallest present value, or NaN.
func MinMeasure(view dataset.View, measure string) float64 {
	m := math.NaN()
	for i := 0; i < view.Len(); i++ {
		if f, ok := view.Float(i, measure); ok && (math.IsNaN(m) || f < m) {
			m = f
		}
	}
	return m
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts aggregate groups by the specified sort mode. Label sorts
// compare numerically when both keys are numbers.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "value_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case "count_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	case "chronological", "date_asc":
		sort.SliceStable(groups, func(i, j int) bool { return ParseMonthOrder(groups[i].Key) < ParseMonthOrder(groups[j].Key) })
	case "label_asc":
		sort.SliceStable(groups, func(i, j int) bool { return labelLess(groups[i].Key, groups[j].Key) })
	case "label_desc":
		sort.SliceStable(groups, func(i, j int) bool { return labelLess(groups[j].Key, groups[i].Key) })
	default:
		// preserve grouping order
	}
}

func labelLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

// ============================================================================
// PERIODS
// ============================================================================

// MonthKey formats a date cell as "Jan-2006". Unparseable cells return "".
func MonthKey(s string) string {
	t, ok := schema.ParseTime(s)
	if !ok {
		return ""
	}
	return t.Format("Jan-2006")
}

// ParseMonthOrder converts "Jan-2026" to sortable int (202601).
func ParseMonthOrder(monthStr string) int {
	t, err := time.Parse("Jan-2006", monthStr)
	if err != nil {
		return 0
	}
	return t.Year()*100 + int(t.Month())
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatNumber formats a value with comma separators and two decimals.
func FormatNumber(amount float64) string {
	if math.IsNaN(amount) {
		return "NaN"
	}
	negative := amount < 0
	if negative {
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	intPart, decPart := cents/100, cents%100

	result := fmt.Sprintf("%s.%02d", FormatInt(int(intPart)), decPart)
	if negative {
		result = "-" + result
	}
	return result
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// UniqueValues returns distinct non-missing values of a column, in first-seen
// order.
func UniqueValues(view dataset.View, column string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Value(i, column)
		if !dataset.IsMissing(val) && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// LabelForAggregation returns a human-readable label for an aggregation type.
func LabelForAggregation(aggregation string) string {
	switch aggregation {
	case "sum":
		return "Total"
	case "count":
		return "Count"
	case "avg":
		return "Average"
	case "max":
		return "Maximum"
	case "min":
		return "Minimum"
	default:
		return "Value"
	}
}
