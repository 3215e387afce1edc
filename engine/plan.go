package engine

import (
	"github.com/spektr-org/autochart/schema"
)

// ============================================================================
// PLAN — single rule table from partitions to chart directives
// ============================================================================
// Rules are evaluated top to bottom; each may emit zero or more directives.
// Regression and classification share every rule. Renderers read the problem
// type and class list to colour by class.
// ============================================================================

type targetMode int

const (
	anyTarget targetMode = iota
	noTarget
	withTarget
)

// shape is what rule predicates see.
type shape struct {
	target  string
	cont    []string
	cats    []string
	bools   []string
	text    []string
	dates   []string
	numeric []string
}

type rule struct {
	family Family
	mode   targetMode
	when   func(s shape) bool
	emit   func(s shape) []Directive
}

var planRules = []rule{
	{
		family: FamilyScatter, mode: withTarget,
		when: func(s shape) bool { return len(s.cont) >= 1 },
		emit: func(s shape) []Directive { return one(FamilyScatter, s.cont, nil) },
	},
	{
		family: FamilyPairScatter, mode: anyTarget,
		when: func(s shape) bool { return len(s.cont) >= 2 },
		emit: func(s shape) []Directive { return one(FamilyPairScatter, s.cont, nil) },
	},
	{
		family: FamilyDistribution, mode: noTarget,
		when: func(shape) bool { return true },
		emit: func(s shape) []Directive {
			return one(FamilyDistribution, s.cont, concat(s.bools, s.cats))
		},
	},
	{
		family: FamilyDistribution, mode: withTarget,
		when: func(s shape) bool { return len(s.cont) >= 1 },
		emit: func(s shape) []Directive {
			return one(FamilyDistribution, s.cont, concat(s.bools, s.cats))
		},
	},
	{
		family: FamilyViolin, mode: anyTarget,
		when: func(s shape) bool { return len(s.cont) >= 1 },
		emit: func(s shape) []Directive { return one(FamilyViolin, s.cont, nil) },
	},
	{
		family: FamilyPivot, mode: noTarget,
		when: func(s shape) bool { return len(s.cont) == 0 && len(s.cats)+len(s.bools) >= 1 },
		emit: func(s shape) []Directive { return one(FamilyPivot, nil, concat(s.cats, s.bools)) },
	},
	{
		family: FamilyHeatmap, mode: anyTarget,
		when: func(shape) bool { return true },
		emit: func(s shape) []Directive {
			return one(FamilyHeatmap, without(without(s.numeric, []string{s.target}), s.dates), nil)
		},
	},
	{
		family: FamilyTimeSeries, mode: anyTarget,
		when: func(s shape) bool { return len(s.dates) >= 1 && len(s.cont) >= 1 },
		emit: func(s shape) []Directive {
			return []Directive{{Family: FamilyTimeSeries, Columns: clone(s.cont), Dates: clone(s.dates)}}
		},
	},
	{
		family: FamilyPivot, mode: withTarget,
		when: func(s shape) bool { return len(s.cont) == 0 && len(s.cats) >= 1 },
		emit: func(s shape) []Directive { return one(FamilyPivot, nil, s.cats) },
	},
	{
		family: FamilyBar, mode: noTarget,
		when: func(s shape) bool { return len(s.cont) >= 1 && len(s.cats) >= 1 },
		emit: func(s shape) []Directive { return one(FamilyBar, s.cont, s.cats) },
	},
	{
		family: FamilyBar, mode: withTarget,
		when: func(s shape) bool { return len(s.cont) >= 1 && len(s.cats) >= 1 },
		emit: func(s shape) []Directive { return one(FamilyBar, s.cont, concat(s.cats, s.bools)) },
	},
	{
		family: FamilyCatScatter, mode: anyTarget,
		when: func(s shape) bool { return !(len(s.cont) >= 1 && len(s.cats) >= 1) && len(s.cats) >= 2 },
		emit: func(s shape) []Directive { return one(FamilyCatScatter, nil, s.cats) },
	},
	{
		family: FamilyWordCloud, mode: anyTarget,
		when: func(s shape) bool { return len(s.text) >= 1 },
		emit: func(s shape) []Directive {
			out := make([]Directive, 0, len(s.text))
			for _, col := range s.text {
				out = append(out, Directive{Family: FamilyWordCloud, Columns: []string{col}, Label: col})
			}
			return out
		},
	},
}

// Plan returns the ordered chart directives for a classification.
func Plan(c *schema.Classification) []Directive {
	p := c.Partitions
	s := shape{
		target:  c.Target,
		cont:    p.Continuous,
		cats:    p.Categoricals,
		bools:   p.Booleans,
		text:    p.Text,
		dates:   p.Dates,
		numeric: p.Numeric,
	}

	var out []Directive
	for _, r := range planRules {
		switch r.mode {
		case noTarget:
			if c.HasTarget() {
				continue
			}
		case withTarget:
			if !c.HasTarget() {
				continue
			}
		}
		if r.when(s) {
			out = append(out, r.emit(s)...)
		}
	}
	return out
}

// ============================================================================
// HELPERS
// ============================================================================

func one(f Family, cols, groups []string) []Directive {
	return []Directive{{Family: f, Columns: clone(cols), Groups: clone(groups)}}
}

func clone(xs []string) []string {
	if len(xs) == 0 {
		return nil
	}
	out := make([]string, len(xs))
	copy(out, xs)
	return out
}

// concat joins lists, dropping repeats.
func concat(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, x := range l {
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		}
	}
	return out
}

func without(xs, drop []string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var out []string
	for _, x := range xs {
		if !skip[x] {
			out = append(out, x)
		}
	}
	return out
}
