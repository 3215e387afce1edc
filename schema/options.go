package schema

import "fmt"

// Options controls classification. Zero fields are replaced by defaults.
type Options struct {
	MaxRows          int     // Rows kept after sampling. Default: 150000
	MaxCols          int     // Continuous columns kept after limiting. Default: 30
	TypeMatchRate    float64 // Share of values that must parse as a kind. Default: 0.8
	CategoricalLimit int     // Max distinct values for an integer column to be categorical. Default: 20
	CategoricalRatio float64 // Max distinct/rows for an integer column to be categorical. Default: 0.3
	TextTokens       float64 // Average tokens above which a high-cardinality string is text. Default: 3
	IDRatio          float64 // distinct/non-missing at or above which a column is an identifier. Default: 0.98
	RegressionUnique int     // Target distinct count above which a numeric target is regression. Default: 30
	Seed             uint32  // Sampling hash seed.
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxRows:          150000,
		MaxCols:          30,
		TypeMatchRate:    0.8,
		CategoricalLimit: 20,
		CategoricalRatio: 0.3,
		TextTokens:       3,
		IDRatio:          0.98,
		RegressionUnique: 30,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxRows == 0 {
		o.MaxRows = d.MaxRows
	}
	if o.MaxCols == 0 {
		o.MaxCols = d.MaxCols
	}
	if o.TypeMatchRate == 0 {
		o.TypeMatchRate = d.TypeMatchRate
	}
	if o.CategoricalLimit == 0 {
		o.CategoricalLimit = d.CategoricalLimit
	}
	if o.CategoricalRatio == 0 {
		o.CategoricalRatio = d.CategoricalRatio
	}
	if o.TextTokens == 0 {
		o.TextTokens = d.TextTokens
	}
	if o.IDRatio == 0 {
		o.IDRatio = d.IDRatio
	}
	if o.RegressionUnique == 0 {
		o.RegressionUnique = d.RegressionUnique
	}
	return o
}

// Validate checks limits and thresholds.
func (o Options) Validate() error {
	switch {
	case o.MaxRows < 1:
		return NewConfigError(CodeInvalidLimits, fmt.Sprintf("max rows must be positive, got %d", o.MaxRows))
	case o.MaxCols < 1:
		return NewConfigError(CodeInvalidLimits, fmt.Sprintf("max cols must be positive, got %d", o.MaxCols))
	case o.TypeMatchRate <= 0 || o.TypeMatchRate > 1:
		return NewConfigError(CodeInvalidLimits, fmt.Sprintf("type match rate must be in (0,1], got %g", o.TypeMatchRate))
	case o.CategoricalRatio <= 0 || o.CategoricalRatio > 1:
		return NewConfigError(CodeInvalidLimits, fmt.Sprintf("categorical ratio must be in (0,1], got %g", o.CategoricalRatio))
	case o.IDRatio <= 0 || o.IDRatio > 1:
		return NewConfigError(CodeInvalidLimits, fmt.Sprintf("id ratio must be in (0,1], got %g", o.IDRatio))
	case o.CategoricalLimit < 1 || o.RegressionUnique < 1:
		return NewConfigError(CodeInvalidLimits, "cardinality thresholds must be positive")
	}
	return nil
}
