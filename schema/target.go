package schema

import (
	"fmt"
	"strings"
)

// Target names the dependent variable of a pass. The zero value means no
// target. A list is accepted for compatibility, but only its first element is
// used since multi-label targets cannot be visualized.
type Target struct {
	names []string
}

// NoTarget returns the empty target.
func NoTarget() Target { return Target{} }

// SingleTarget returns a target naming one column. An empty name is no target.
func SingleTarget(name string) Target {
	name = strings.TrimSpace(name)
	if name == "" {
		return Target{}
	}
	return Target{names: []string{name}}
}

// ListTarget returns a legacy multi-label target.
func ListTarget(names ...string) Target {
	var t Target
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			t.names = append(t.names, n)
		}
	}
	return t
}

// ParseTarget splits a comma-separated flag value into a target.
func ParseTarget(s string) Target {
	if !strings.Contains(s, ",") {
		return SingleTarget(s)
	}
	return ListTarget(strings.Split(s, ",")...)
}

// IsZero reports whether no target was given.
func (t Target) IsZero() bool { return len(t.names) == 0 }

// Names returns all names as given.
func (t Target) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Resolve returns the column that drives the pass and, when a list of more
// than one name was given, the warning to surface.
func (t Target) Resolve() (name string, warning string) {
	switch len(t.names) {
	case 0:
		return "", ""
	case 1:
		return t.names[0], ""
	default:
		return t.names[0], fmt.Sprintf(
			"Since multi-label targets cannot be visualized, choosing first item in targets: %s", t.names[0])
	}
}

func (t Target) String() string { return strings.Join(t.names, ",") }
