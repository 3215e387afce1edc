package schema

import (
	"fmt"

	"github.com/spektr-org/autochart/dataset"
)

// ============================================================================
// SCHEMA — Classified shape of a dataset for the chart planner
// ============================================================================
// Produced by Classify. The planner reads Partitions and ProblemType; the
// renderers read Data (the working view) plus the column subsets the planner
// hands them.
// ============================================================================

// Kind is the storage type detected for a column's values.
type Kind string

const (
	KindString  Kind = "string"
	KindNumeric Kind = "numeric"
	KindDate    Kind = "date"
	KindBool    Kind = "bool"
)

// Role is the semantic role a column plays in charting.
type Role string

const (
	RoleID          Role = "identifier"
	RoleBoolean     Role = "boolean"
	RoleCategorical Role = "categorical"
	RoleContinuous  Role = "continuous"
	RoleText        Role = "discrete_string"
	RoleDate        Role = "date_time"
)

// ProblemType is inferred from the target column.
type ProblemType int

const (
	ProblemNone ProblemType = iota
	ProblemRegression
	ProblemClassification
)

func (p ProblemType) String() string {
	switch p {
	case ProblemRegression:
		return "Regression"
	case ProblemClassification:
		return "Classification"
	default:
		return "None"
	}
}

// MarshalText encodes the problem type by name.
func (p ProblemType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a problem type name.
func (p *ProblemType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Regression":
		*p = ProblemRegression
	case "Classification":
		*p = ProblemClassification
	case "None", "":
		*p = ProblemNone
	default:
		return fmt.Errorf("unknown problem type %q", b)
	}
	return nil
}

// ColumnMeta describes one analyzed column.
type ColumnMeta struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"displayName"`
	Kind            Kind     `json:"kind"`
	Role            Role     `json:"role"`
	Unique          int      `json:"unique"`
	Missing         int      `json:"missing"`
	Integer         bool     `json:"integer,omitempty"`
	AvgTokens       float64  `json:"avgTokens,omitempty"`
	SampleValues    []string `json:"sampleValues"`
	CardinalityHint string   `json:"cardinalityHint"` // "low", "medium", "high"
}

// SkippedColumn records why a column was left out of the working dataset.
type SkippedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// Partitions groups column names by role. Identifier columns appear in IDs
// only. Numeric lists every numeric-kind, non-identifier column regardless of
// role and is what correlation heatmaps consume.
type Partitions struct {
	IDs          []string `json:"ids"`
	Booleans     []string `json:"booleans"`
	Categoricals []string `json:"categoricals"`
	Continuous   []string `json:"continuous"`
	Text         []string `json:"text"`
	Dates        []string `json:"dates"`
	Numeric      []string `json:"numeric"`
}

// Classification is the output of Classify.
type Classification struct {
	Target      string          `json:"target,omitempty"`
	ProblemType ProblemType     `json:"problemType"`
	Classes     []string        `json:"classes,omitempty"`
	Partitions  Partitions      `json:"partitions"`
	Columns     []ColumnMeta    `json:"columns"`
	TargetMeta  *ColumnMeta     `json:"targetMeta,omitempty"`
	Skipped     []SkippedColumn `json:"skippedColumns,omitempty"`
	Rows        int             `json:"rows"`
	SourceRows  int             `json:"sourceRows"`
	Warnings    []string        `json:"warnings,omitempty"`

	// Data is the working dataset: sampled rows, projected to the columns
	// that were classified plus the target.
	Data dataset.View `json:"-"`
}

// HasTarget reports whether a target column drives the pass.
func (c *Classification) HasTarget() bool { return c.Target != "" }

// Sampled reports whether rows were dropped by row sampling.
func (c *Classification) Sampled() bool { return c.Rows < c.SourceRows }

// Column returns the metadata for a classified column.
func (c *Classification) Column(name string) (ColumnMeta, bool) {
	if c.TargetMeta != nil && c.TargetMeta.Name == name {
		return *c.TargetMeta, true
	}
	for _, m := range c.Columns {
		if m.Name == name {
			return m, true
		}
	}
	return ColumnMeta{}, false
}
