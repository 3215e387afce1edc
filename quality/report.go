// Package quality inspects a dataset for data-quality issues and suggests
// cleaning steps. It only reports; nothing is modified.
package quality

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spektr-org/autochart/dataset"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityHigh    Severity = "high"
)

// Finding is one detected issue.
type Finding struct {
	Check      string   `json:"check"`
	Severity   Severity `json:"severity"`
	Columns    []string `json:"columns"`
	Detail     string   `json:"detail"`
	Suggestion string   `json:"suggestion"`
}

// ColumnStats is the per-column summary behind the checks.
type ColumnStats struct {
	Name       string  `json:"name"`
	Missing    int     `json:"missing"`
	MissingPct float64 `json:"missingPct"`
	Unique     int     `json:"unique"`
	Numeric    bool    `json:"numeric"`
}

// Report is the result of Check.
type Report struct {
	Rows     int           `json:"rows"`
	Target   string        `json:"target,omitempty"`
	Columns  []ColumnStats `json:"columns"`
	Findings []Finding     `json:"findings"`
}

// Options tunes thresholds.
type Options struct {
	RareThreshold        float64 // Category share below which a value is rare. Default: 0.01
	CorrelationThreshold float64 // |r| above which two columns are redundant. Default: 0.9
	LeakageThreshold     float64 // |r| with the target above which a column leaks. Default: 0.9
	ImbalanceRatio       float64 // Minority share below which classes are imbalanced. Default: 0.05
	HighCardinality      int     // Distinct string values above which a column is high cardinality. Default: 50
	SkewThreshold        float64 // |skewness| above which a column is skewed. Default: 1
}

// DefaultOptions returns the thresholds used by Check.
func DefaultOptions() Options {
	return Options{
		RareThreshold:        0.01,
		CorrelationThreshold: 0.9,
		LeakageThreshold:     0.9,
		ImbalanceRatio:       0.05,
		HighCardinality:      50,
		SkewThreshold:        1,
	}
}

// ErrNoData is returned for views without columns.
var ErrNoData = errors.New("quality: dataset has no columns")

// Check runs every data-quality check with default options.
func Check(v dataset.View, target string) (*Report, error) {
	return CheckWithOptions(v, target, DefaultOptions())
}

// CheckWithOptions runs every data-quality check.
func CheckWithOptions(v dataset.View, target string, opt Options) (*Report, error) {
	if v == nil || len(v.Names()) == 0 {
		return nil, ErrNoData
	}
	if target != "" && !v.Has(target) {
		return nil, fmt.Errorf("quality: target %q not in dataset", target)
	}

	r := &Report{Rows: v.Len(), Target: target}
	profiles := profileColumns(v)
	for _, p := range profiles {
		r.Columns = append(r.Columns, p.stats)
	}

	r.add(checkMissing(profiles)...)
	r.add(checkZeroVariance(profiles)...)
	r.add(checkIDColumns(profiles, target)...)
	r.add(checkMixedTypes(profiles)...)
	r.add(checkInfinite(profiles)...)
	r.add(checkCardinality(profiles, opt)...)
	r.add(checkOutliers(profiles)...)
	r.add(checkSkew(profiles, opt)...)
	r.add(checkDuplicateRows(v)...)
	r.add(checkDuplicateColumns(profiles)...)
	r.add(checkCorrelated(profiles, target, opt)...)
	if target != "" {
		r.add(checkLeakage(profiles, target, opt)...)
		r.add(checkImbalance(v, target, opt)...)
	}

	return r, nil
}

func (r *Report) add(fs ...Finding) { r.Findings = append(r.Findings, fs...) }

// Count returns the number of findings at severity s.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// ByCheck returns findings produced by one check.
func (r *Report) ByCheck(check string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Check == check {
			out = append(out, f)
		}
	}
	return out
}

// Lines renders findings as one line each, most severe first.
func (r *Report) Lines() []string {
	rank := map[Severity]int{SeverityHigh: 0, SeverityWarning: 1, SeverityInfo: 2}
	fs := make([]Finding, len(r.Findings))
	copy(fs, r.Findings)
	sort.SliceStable(fs, func(i, j int) bool { return rank[fs[i].Severity] < rank[fs[j].Severity] })

	lines := make([]string, 0, len(fs))
	for _, f := range fs {
		lines = append(lines, fmt.Sprintf("[%s] %s (%s): %s. %s",
			strings.ToUpper(string(f.Severity)), f.Check, strings.Join(f.Columns, ", "), f.Detail, f.Suggestion))
	}
	return lines
}
