package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/schema"
)

// ============================================================================
// TEXT BUILDER — overview lines and time-series trends
// ============================================================================

// BuildOverview returns the subheadings of the overall bucket.
func BuildOverview(c *schema.Classification) []string {
	p := c.Partitions
	lines := []string{
		fmt.Sprintf("Shape of your Data Set loaded: (%d, %d)", c.Rows, len(c.Columns)+boolToInt(c.TargetMeta != nil)),
	}
	if c.Sampled() {
		lines = append(lines, fmt.Sprintf("Data Set sampled from %s to %s rows", FormatInt(c.SourceRows), FormatInt(c.Rows)))
	}
	lines = append(lines, fmt.Sprintf(
		"Classifying variables in data set: %d Numeric, %d Integer-Categorical, %d Categorical, %d Boolean, %d Date-Time, %d NLP/String, %d ID",
		len(p.Continuous), countIntegerCategoricals(c), len(p.Categoricals), len(p.Booleans), len(p.Dates), len(p.Text), len(p.IDs)))
	if len(c.Skipped) > 0 {
		lines = append(lines, fmt.Sprintf("%d variables removed since they were ID or low-information variables", len(c.Skipped)))
	}

	switch {
	case !c.HasTarget():
		lines = append(lines, "No target variable given: plotting all variables")
	case c.ProblemType == schema.ProblemClassification:
		lines = append(lines, fmt.Sprintf("Classification problem with target %q and %d classes", c.Target, len(c.Classes)))
	default:
		lines = append(lines, fmt.Sprintf("Regression problem with target %q", c.Target))
	}
	return append(lines, c.Warnings...)
}

func countIntegerCategoricals(c *schema.Classification) int {
	n := 0
	for _, m := range c.Columns {
		if m.Role == schema.RoleCategorical && m.Kind == schema.KindNumeric {
			n++
		}
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// TREND BUILDER
// ============================================================================

// BuildTrend compares the monthly average of measure between the earliest and
// latest month of the date column.
func BuildTrend(view dataset.View, dateCol, measure string) *TrendData {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := 0; i < view.Len(); i++ {
		month := MonthKey(view.Value(i, dateCol))
		if month == "" {
			continue
		}
		f, ok := view.Float(i, measure)
		if !ok {
			continue
		}
		sums[month] += f
		counts[month]++
	}

	trend := &TrendData{Column: measure, Date: dateCol}

	// Need at least 2 distinct months
	if len(sums) < 2 {
		period := DerivePeriod(view, dateCol)
		avg := math.NaN()
		for m := range sums {
			avg = sums[m] / float64(counts[m])
		}
		trend.EarliestValue, trend.LatestValue = avg, avg
		trend.EarliestPeriod, trend.LatestPeriod = period, period
		trend.Direction = "insufficient data"
		return trend
	}

	type entry struct {
		Month string
		Order int
		Avg   float64
	}
	entries := make([]entry, 0, len(sums))
	for m, total := range sums {
		entries = append(entries, entry{
			Month: m,
			Order: ParseMonthOrder(m),
			Avg:   total / float64(counts[m]),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Order < entries[j].Order
	})

	earliest := entries[0]
	latest := entries[len(entries)-1]

	changeAmount := latest.Avg - earliest.Avg
	var changePercent float64
	if earliest.Avg != 0 {
		changePercent = (changeAmount / math.Abs(earliest.Avg)) * 100
	}

	direction := "unchanged"
	if changePercent > 0.5 {
		direction = "increased"
	} else if changePercent < -0.5 {
		direction = "decreased"
	}

	trend.EarliestValue = earliest.Avg
	trend.LatestValue = latest.Avg
	trend.EarliestPeriod = earliest.Month
	trend.LatestPeriod = latest.Month
	trend.ChangeAmount = changeAmount
	trend.ChangePercent = changePercent
	trend.Direction = direction
	return trend
}

// Describe renders a trend as one line.
func (t *TrendData) Describe() string {
	switch t.Direction {
	case "increased":
		return fmt.Sprintf("%s by %s: ↑ %.1f%%, average %s to %s (%s – %s)", t.Column, t.Date, t.ChangePercent,
			FormatNumber(t.EarliestValue), FormatNumber(t.LatestValue), t.EarliestPeriod, t.LatestPeriod)
	case "decreased":
		return fmt.Sprintf("%s by %s: ↓ %.1f%%, average %s to %s (%s – %s)", t.Column, t.Date, -t.ChangePercent,
			FormatNumber(t.EarliestValue), FormatNumber(t.LatestValue), t.EarliestPeriod, t.LatestPeriod)
	case "unchanged":
		return fmt.Sprintf("%s by %s: → No change (%s – %s)", t.Column, t.Date, t.EarliestPeriod, t.LatestPeriod)
	default:
		return fmt.Sprintf("%s by %s: need at least 2 months of data to show trends (%s)", t.Column, t.Date, t.EarliestPeriod)
	}
}

// ============================================================================
// PERIOD HELPER
// ============================================================================

// DerivePeriod builds a human-readable month range for a date column.
func DerivePeriod(view dataset.View, dateCol string) string {
	if view.Len() == 0 {
		return "No data"
	}

	months := make(map[string]bool)
	for i := 0; i < view.Len(); i++ {
		if m := MonthKey(view.Value(i, dateCol)); m != "" {
			months[m] = true
		}
	}

	if len(months) == 0 {
		return "All time"
	}
	if len(months) == 1 {
		for m := range months {
			return m
		}
	}

	var earliest, latest string
	var earliestOrder, latestOrder int
	first := true

	for m := range months {
		order := ParseMonthOrder(m)
		if first || order < earliestOrder {
			earliest = m
			earliestOrder = order
		}
		if first || order > latestOrder {
			latest = m
			latestOrder = order
		}
		first = false
	}

	return fmt.Sprintf("%s – %s", earliest, latest)
}
