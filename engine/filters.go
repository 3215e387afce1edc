package engine

import (
	"strings"

	"github.com/spektr-org/autochart/dataset"
)

// ============================================================================
// FILTERS — Column-value filtering via dataset.View
// ============================================================================
// Single-pass filter: checks ALL column constraints per row in one loop.
// Returns a SubView (index list into parent) with no data copy. Renderers
// split the working dataset by target class with SplitBy.
// ============================================================================

// Filters select rows by column value. OR within a column, AND across
// columns. Empty = all rows.
type Filters struct {
	Columns map[string][]string `json:"columns"`
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Columns {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Where is a single-column filter.
func Where(column string, values ...string) Filters {
	return Filters{Columns: map[string][]string{column: values}}
}

// ApplyFilters returns a view of rows matching all column filters.
// Matching is case-insensitive on trimmed values.
func ApplyFilters(view dataset.View, filters Filters) dataset.View {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for col, allowed := range filters.Columns {
		if len(allowed) > 0 {
			sets[col] = toLowerSet(allowed)
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for col, set := range sets {
			val := strings.ToLower(strings.TrimSpace(view.Value(i, col)))
			if !set[val] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return dataset.Subset(view, indices)
}

// SplitBy returns one view per value, in the given order. Nil values splits
// on every distinct value in first-seen order. Unlike ApplyFilters, matching
// is exact: "Yes" and "yes" are different classes, and each row lands in at
// most one view.
func SplitBy(view dataset.View, column string, values []string) []dataset.View {
	if values == nil {
		values = UniqueValues(view, column)
	}
	slot := make(map[string]int, len(values))
	for i, v := range values {
		if _, dup := slot[v]; !dup {
			slot[v] = i
		}
	}

	indices := make([][]int, len(values))
	for i := 0; i < view.Len(); i++ {
		if k, ok := slot[view.Value(i, column)]; ok {
			indices[k] = append(indices[k], i)
		}
	}

	out := make([]dataset.View, len(values))
	for i := range values {
		out[i] = dataset.Subset(view, indices[i])
	}
	return out
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = true
	}
	return set
}
