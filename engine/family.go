package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// CHART FAMILIES — fixed enumeration, one output bucket each
// ============================================================================

// Family identifies a chart family and its output bucket.
type Family int

const (
	FamilyScatter Family = iota
	FamilyPairScatter
	FamilyDistribution
	FamilyPivot
	FamilyViolin
	FamilyHeatmap
	FamilyBar
	FamilyTimeSeries
	FamilyWordCloud
	FamilyCatScatter
	FamilyOverall

	numFamilies
)

type familyInfo struct {
	name    string
	heading string
	failure string
}

var familyTable = [numFamilies]familyInfo{
	FamilyScatter: {
		name:    "scatter",
		heading: "Scatter Plot of each Continuous Variable against Target Variable",
		failure: "Could not draw Scatter Plots",
	},
	FamilyPairScatter: {
		name:    "pair-scatter",
		heading: "Pairwise Scatter Plot of each Continuous Variable against other Continuous Variables",
		failure: "Could not draw Pair Scatter Plots",
	},
	FamilyDistribution: {
		name:    "distribution",
		heading: "Distribution Plot of Target Variable",
		failure: "Could not draw Distribution Plots",
	},
	FamilyPivot: {
		name:    "pivot",
		heading: "Pivot Plots of all Continuous Variable",
		failure: "Could not draw Pivot Charts",
	},
	FamilyViolin: {
		name:    "violin",
		heading: "Violin Plots of all Continuous Variable",
		failure: "Could not draw Violin Plots",
	},
	FamilyHeatmap: {
		name:    "heatmap",
		heading: "Heatmap of all Continuous Variables for target Variable",
		failure: "Could not draw Heat Map",
	},
	FamilyBar: {
		name:    "bar",
		heading: "Bar Plots of Average of each Continuous Variable by Target Variable",
		failure: "Could not draw Bar Plots",
	},
	FamilyTimeSeries: {
		name:    "time-series",
		heading: "Time Series Plots of Two Continuous Variables against a Date/Time Variable",
		failure: "Could not draw Time Series plots",
	},
	FamilyWordCloud: {
		name:    "wordcloud",
		heading: "Word Cloud Plots of NLP or String vars",
		failure: "Could not draw wordcloud plot",
	},
	FamilyCatScatter: {
		name:    "catscatter",
		heading: "Cat-Scatter Plots of categorical vars",
		failure: "Could not draw catscatter plots",
	},
	FamilyOverall: {
		name:    "overall",
		heading: "Overall Summary of the Dataset",
		failure: "Could not summarize dataset",
	},
}

func init() {
	if err := ValidateFamilies(); err != nil {
		panic(err)
	}
}

// ValidateFamilies checks that every family has a unique name, a heading and
// a failure message, and that names parse back to the same family.
func ValidateFamilies() error {
	seen := make(map[string]Family, numFamilies)
	for _, f := range Families() {
		info := familyTable[f]
		if info.name == "" || info.heading == "" || info.failure == "" {
			return fmt.Errorf("engine: family %d is incomplete", int(f))
		}
		if prev, dup := seen[info.name]; dup {
			return fmt.Errorf("engine: families %d and %d share name %q", int(prev), int(f), info.name)
		}
		seen[info.name] = f
		if got, err := ParseFamily(info.name); err != nil || got != f {
			return fmt.Errorf("engine: family %q does not round-trip", info.name)
		}
	}
	return nil
}

// Families returns every family in output order.
func Families() []Family {
	out := make([]Family, numFamilies)
	for i := range out {
		out[i] = Family(i)
	}
	return out
}

// ParseFamily resolves a family by exact name.
func ParseFamily(name string) (Family, error) {
	for i, info := range familyTable {
		if info.name == name {
			return Family(i), nil
		}
	}
	return 0, fmt.Errorf("engine: unknown chart family %q", name)
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool { return f >= 0 && f < numFamilies }

func (f Family) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyTable[f].name
}

// Heading is the bucket title shown above the family's artifacts.
func (f Family) Heading() string {
	if !f.Valid() {
		return ""
	}
	return familyTable[f].heading
}

// FailureMessage is logged when a directive of this family fails.
func (f Family) FailureMessage() string {
	if !f.Valid() {
		return "Could not draw chart"
	}
	return familyTable[f].failure
}

func (f Family) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("engine: invalid family %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *Family) UnmarshalText(b []byte) error {
	got, err := ParseFamily(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*f = got
	return nil
}
