package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================================
// BUCKETS — one accumulator per chart family
// ============================================================================
// Built once per pass with every family present. Append-only while the pass
// runs; Seal freezes it before the result is returned.
// ============================================================================

// Bucket holds the output of one chart family.
type Bucket struct {
	Family       Family       `json:"family"`
	Name         string       `json:"name"`
	Heading      string       `json:"heading"`
	Artifacts    []*Artifact  `json:"artifacts"`
	Subheadings  []string     `json:"subheadings"`
	Descriptions []string     `json:"descriptions,omitempty"`
	Tables       []*TableData `json:"tables,omitempty"`
}

// Empty reports whether the bucket has no artifacts.
func (b *Bucket) Empty() bool { return len(b.Artifacts) == 0 }

// Buckets maps every family to its bucket.
type Buckets struct {
	byFamily map[Family]*Bucket
	sealed   bool
}

// NewBuckets returns an empty bucket for every family.
func NewBuckets() *Buckets {
	bs := &Buckets{byFamily: make(map[Family]*Bucket, numFamilies)}
	for _, f := range Families() {
		bs.byFamily[f] = &Bucket{Family: f, Name: f.String(), Heading: f.Heading()}
	}
	return bs
}

func (bs *Buckets) mutable(f Family) *Bucket {
	if bs.sealed {
		panic(fmt.Sprintf("engine: bucket %s modified after seal", f))
	}
	b, ok := bs.byFamily[f]
	if !ok {
		panic(fmt.Sprintf("engine: unknown chart family %d", int(f)))
	}
	return b
}

// AddArtifact appends a rendered artifact. Nil or empty artifacts are ignored.
func (bs *Buckets) AddArtifact(f Family, a *Artifact) {
	b := bs.mutable(f)
	if a.Empty() {
		return
	}
	b.Artifacts = append(b.Artifacts, a)
}

// AddSubheading appends a subheading. Blank text is ignored.
func (bs *Buckets) AddSubheading(f Family, text string) {
	b := bs.mutable(f)
	if strings.TrimSpace(text) == "" {
		return
	}
	b.Subheadings = append(b.Subheadings, text)
}

// AddDescription appends descriptive text. Blank text is ignored.
func (bs *Buckets) AddDescription(f Family, text string) {
	b := bs.mutable(f)
	if strings.TrimSpace(text) == "" {
		return
	}
	b.Descriptions = append(b.Descriptions, text)
}

// AddTable appends a summary table. Nil tables are ignored.
func (bs *Buckets) AddTable(f Family, t *TableData) {
	b := bs.mutable(f)
	if t == nil {
		return
	}
	b.Tables = append(b.Tables, t)
}

// Seal freezes the buckets. Later mutation panics.
func (bs *Buckets) Seal() { bs.sealed = true }

// Sealed reports whether Seal was called.
func (bs *Buckets) Sealed() bool { return bs.sealed }

// Get returns the bucket for a family, or nil for an unknown family.
func (bs *Buckets) Get(f Family) *Bucket { return bs.byFamily[f] }

// ByName looks a bucket up by exact family name.
func (bs *Buckets) ByName(name string) (*Bucket, bool) {
	f, err := ParseFamily(name)
	if err != nil {
		return nil, false
	}
	return bs.byFamily[f], true
}

// MustByName is ByName that panics on an unknown name.
func (bs *Buckets) MustByName(name string) *Bucket {
	b, ok := bs.ByName(name)
	if !ok {
		panic(fmt.Sprintf("engine: unknown bucket %q", name))
	}
	return b
}

// All returns every bucket in family order.
func (bs *Buckets) All() []*Bucket {
	out := make([]*Bucket, 0, len(bs.byFamily))
	for _, f := range Families() {
		out = append(out, bs.byFamily[f])
	}
	return out
}

// NonEmpty returns the buckets holding at least one artifact.
func (bs *Buckets) NonEmpty() []*Bucket {
	var out []*Bucket
	for _, b := range bs.All() {
		if !b.Empty() {
			out = append(out, b)
		}
	}
	return out
}

// MarshalJSON encodes the buckets as an ordered list.
func (bs *Buckets) MarshalJSON() ([]byte, error) {
	return json.Marshal(bs.All())
}
