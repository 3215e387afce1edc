package dataset

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// VIEWS — Zero-Copy Data Access
// ============================================================================
// Nothing downstream of the loader owns or mutates data. Classification and
// rendering read through View.
//
// Implementations:
//   Table         — the loaded, immutable dataset
//   SubView       — row subset (indices into parent, zero-copy)
//   ProjectView   — column subset (names into parent, zero-copy)
// ============================================================================

// View provides indexed, read-only access to a dataset.
// Renderers call Value/Float in tight loops; keep implementations fast.
type View interface {
	Len() int
	Names() []string
	Has(name string) bool
	Value(row int, name string) string
	Float(row int, name string) (float64, bool)
}

// missingTokens are cell values treated as absent.
var missingTokens = map[string]bool{
	"": true, "null": true, "NULL": true, "Null": true,
	"N/A": true, "n/a": true, "NA": true,
	"NaN": true, "nan": true, "None": true,
}

// IsMissing reports whether a raw cell value represents a missing value.
func IsMissing(s string) bool {
	return missingTokens[strings.TrimSpace(s)]
}

// ParseFloat parses a numeric cell, tolerating thousands separators and a
// leading currency symbol. Missing values and non-finite results return false.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if IsMissing(s) {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	for _, sym := range []string{"$", "€", "£"} {
		s = strings.TrimPrefix(s, sym)
	}
	s = strings.ReplaceAll(s, ",", "")
	if neg && (strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+")) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// Floats returns a column as floats with NaN in place of missing or
// non-numeric cells. The returned slice is owned by the caller.
func Floats(v View, name string) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		if f, ok := v.Float(i, name); ok {
			out[i] = f
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Strings returns a column's raw values. The returned slice is owned by the
// caller.
func Strings(v View, name string) []string {
	out := make([]string, v.Len())
	for i := range out {
		out[i] = v.Value(i, name)
	}
	return out
}

// ============================================================================
// SUB VIEW — row subset (zero-copy)
// ============================================================================

// SubView is a row subset of a parent View.
// Holds indices into the parent, no data copy.
type SubView struct {
	parent  View
	indices []int
}

// Subset returns a view of the given parent rows, in the given order.
// The index slice is copied so later changes by the caller are not observed.
func Subset(parent View, indices []int) View {
	idx := make([]int, len(indices))
	copy(idx, indices)
	return &SubView{parent: parent, indices: idx}
}

func (v *SubView) Len() int             { return len(v.indices) }
func (v *SubView) Names() []string      { return v.parent.Names() }
func (v *SubView) Has(name string) bool { return v.parent.Has(name) }

func (v *SubView) Value(i int, name string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Value(v.indices[i], name)
}

func (v *SubView) Float(i int, name string) (float64, bool) {
	if i < 0 || i >= len(v.indices) {
		return 0, false
	}
	return v.parent.Float(v.indices[i], name)
}

// ============================================================================
// PROJECT VIEW — column subset (zero-copy)
// ============================================================================

// ProjectView exposes only the named columns of a parent View.
type ProjectView struct {
	parent View
	names  []string
	keep   map[string]bool
}

// Project returns a view restricted to the given columns, in the given order.
// Names not present in the parent are ignored.
func Project(parent View, names []string) View {
	v := &ProjectView{parent: parent, keep: make(map[string]bool, len(names))}
	for _, n := range names {
		if parent.Has(n) && !v.keep[n] {
			v.keep[n] = true
			v.names = append(v.names, n)
		}
	}
	return v
}

func (v *ProjectView) Len() int { return v.parent.Len() }

func (v *ProjectView) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

func (v *ProjectView) Has(name string) bool { return v.keep[name] }

func (v *ProjectView) Value(i int, name string) string {
	if !v.keep[name] {
		return ""
	}
	return v.parent.Value(i, name)
}

func (v *ProjectView) Float(i int, name string) (float64, bool) {
	if !v.keep[name] {
		return 0, false
	}
	return v.parent.Float(i, name)
}
