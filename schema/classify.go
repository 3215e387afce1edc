package schema

import (
	"fmt"
	"log"
	"sort"

	"github.com/spektr-org/autochart/dataset"
)

// ============================================================================
// CLASSIFY — Column Classifier entry point
// ============================================================================
// Pipeline:
//   1. Resolve target (list → first, with warning), verify it exists
//   2. Infer problem type and classes from the full target column
//   3. Sample rows down to MaxRows, stratified by target
//   4. Analyze every other column on the sample → role partitions
//   5. Limit continuous columns to MaxCols by relevance to the target
//   6. Project the working view to classified columns + target
// Deterministic: identical inputs give identical output.
// ============================================================================

// Classify inspects v and returns its column partitions, problem type and
// working view. A missing target returns a *ConfigError matching
// ErrTargetNotFound.
func Classify(v dataset.View, target Target, opts ...Options) (*Classification, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0].withDefaults()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	names := v.Names()
	if len(names) == 0 {
		return nil, NewConfigError(CodeEmptyDataset, "dataset has no columns")
	}

	result := &Classification{SourceRows: v.Len()}

	// 1. Target
	targetName, warning := target.Resolve()
	if warning != "" {
		log.Printf("⚠️  autochart: %s", warning)
		result.Warnings = append(result.Warnings, warning)
	}
	if targetName != "" && !v.Has(targetName) {
		return nil, NewConfigError(CodeTargetNotFound,
			fmt.Sprintf("target column %q not found in dataset", targetName)).
			WithDetails(map[string]interface{}{"target": targetName, "columns": names})
	}
	result.Target = targetName

	// 2. Problem type on the full target
	if targetName != "" {
		meta := analyzeColumn(v, targetName, opt, true).meta
		result.ProblemType = inferProblemType(meta, opt)
		if result.ProblemType == ProblemClassification {
			result.Classes = distinctValues(v, targetName, meta.Kind == KindNumeric)
		}
	}

	// 3. Rows
	working := v
	if v.Len() > opt.MaxRows {
		strata := stratify(v, targetName, result.ProblemType)
		working = dataset.Subset(v, sampleRows(strata, opt.MaxRows, opt.Seed))
	}
	result.Rows = working.Len()

	// 4. Columns
	var continuous []string
	metas := make(map[string]ColumnMeta, len(names))
	for _, name := range names {
		if name == targetName {
			continue
		}
		col := analyzeColumn(working, name, opt, false)
		if col.skipReason != "" {
			result.Skipped = append(result.Skipped, SkippedColumn{Column: name, Reason: col.skipReason})
			continue
		}
		metas[name] = col.meta
		if col.meta.Role == RoleContinuous {
			continuous = append(continuous, name)
		}
	}
	if targetName != "" {
		tm := analyzeColumn(working, targetName, opt, true).meta
		result.TargetMeta = &tm
	}

	// 5. Column limit
	_, dropped := limitColumns(working, continuous, targetName, result.ProblemType, opt.MaxCols)
	for _, name := range dropped {
		delete(metas, name)
		result.Skipped = append(result.Skipped, SkippedColumn{
			Column: name,
			Reason: fmt.Sprintf("Column limit: not among the %d most relevant continuous columns", opt.MaxCols),
		})
	}

	// 6. Partitions in original column order
	var keep []string
	for _, name := range names {
		if name == targetName {
			keep = append(keep, name)
			continue
		}
		m, ok := metas[name]
		if !ok {
			continue
		}
		keep = append(keep, name)
		result.Columns = append(result.Columns, m)
		result.Partitions.add(m)
	}

	result.Data = dataset.Project(working, keep)
	return result, nil
}

func (p *Partitions) add(m ColumnMeta) {
	switch m.Role {
	case RoleID:
		p.IDs = append(p.IDs, m.Name)
		return
	case RoleBoolean:
		p.Booleans = append(p.Booleans, m.Name)
	case RoleCategorical:
		p.Categoricals = append(p.Categoricals, m.Name)
	case RoleContinuous:
		p.Continuous = append(p.Continuous, m.Name)
	case RoleText:
		p.Text = append(p.Text, m.Name)
	case RoleDate:
		p.Dates = append(p.Dates, m.Name)
	}
	if m.Kind == KindNumeric {
		p.Numeric = append(p.Numeric, m.Name)
	}
}

// inferProblemType: numeric targets with more than RegressionUnique distinct
// values are regression, everything else is classification.
func inferProblemType(target ColumnMeta, opt Options) ProblemType {
	if target.Kind == KindNumeric && target.Unique > opt.RegressionUnique {
		return ProblemRegression
	}
	return ProblemClassification
}

// distinctValues returns the sorted non-missing values of a column. Numeric
// columns sort by value.
func distinctValues(v dataset.View, name string, numeric bool) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < v.Len(); i++ {
		val := v.Value(i, name)
		if dataset.IsMissing(val) || seen[val] {
			continue
		}
		seen[val] = true
		out = append(out, val)
	}
	if numeric {
		sort.SliceStable(out, func(a, b int) bool {
			fa, oka := dataset.ParseFloat(out[a])
			fb, okb := dataset.ParseFloat(out[b])
			if oka && okb && fa != fb {
				return fa < fb
			}
			if oka != okb {
				return oka
			}
			return out[a] < out[b]
		})
	} else {
		sort.Strings(out)
	}
	return out
}

// Summary is a one-line description of the partitions.
func (c *Classification) Summary() string {
	p := c.Partitions
	return fmt.Sprintf("rows=%d ids=%d bools=%d cats=%d cont=%d text=%d dates=%d numeric=%d problem=%s",
		c.Rows, len(p.IDs), len(p.Booleans), len(p.Categoricals), len(p.Continuous),
		len(p.Text), len(p.Dates), len(p.Numeric), c.ProblemType)
}
