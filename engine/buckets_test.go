package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamiliesAreValid(t *testing.T) {
	require.NoError(t, ValidateFamilies())
	assert.Len(t, Families(), 11)

	for _, f := range Families() {
		got, err := ParseFamily(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
		assert.NotEmpty(t, f.Heading())
	}

	_, err := ParseFamily("Heatmap")
	assert.Error(t, err, "names are exact")
	assert.Equal(t, "Family(99)", Family(99).String())
	assert.Equal(t, "Could not draw Heat Map", FamilyHeatmap.FailureMessage())
}

func TestFamilyText(t *testing.T) {
	b, err := json.Marshal(Directive{Family: FamilyTimeSeries})
	require.NoError(t, err)
	assert.JSONEq(t, `{"family":"time-series"}`, string(b))

	var d Directive
	require.NoError(t, json.Unmarshal([]byte(`{"family":"catscatter","label":"x"}`), &d))
	assert.Equal(t, FamilyCatScatter, d.Family)
	assert.Error(t, json.Unmarshal([]byte(`{"family":"pie"}`), &d))
}

func TestBucketsIgnoreEmptyInput(t *testing.T) {
	bs := NewBuckets()
	bs.AddArtifact(FamilyBar, nil)
	bs.AddArtifact(FamilyBar, &Artifact{Name: "bar"})
	bs.AddSubheading(FamilyBar, "   ")
	bs.AddDescription(FamilyBar, "")
	bs.AddTable(FamilyBar, nil)

	b := bs.Get(FamilyBar)
	assert.True(t, b.Empty())
	assert.Empty(t, b.Subheadings)
	assert.Empty(t, b.Descriptions)
	assert.Empty(t, b.Tables)
	assert.Empty(t, bs.NonEmpty())
}

func TestBucketsAppendAndLookup(t *testing.T) {
	bs := NewBuckets()
	bs.AddArtifact(FamilyHeatmap, &Artifact{Name: "heatmap", Data: []byte("<svg/>")})
	bs.AddSubheading(FamilyHeatmap, "Correlation of 3 numeric variables")

	b, ok := bs.ByName("heatmap")
	require.True(t, ok)
	assert.Equal(t, FamilyHeatmap.Heading(), b.Heading)
	assert.Len(t, b.Artifacts, 1)
	assert.Equal(t, []string{"Correlation of 3 numeric variables"}, b.Subheadings)
	assert.Same(t, b, bs.MustByName("heatmap"))

	_, ok = bs.ByName("pie")
	assert.False(t, ok)
	assert.Panics(t, func() { bs.MustByName("pie") })

	all := bs.All()
	require.Len(t, all, len(Families()))
	assert.Equal(t, "scatter", all[0].Name)
	assert.Equal(t, "overall", all[len(all)-1].Name)
	assert.Equal(t, []*Bucket{b}, bs.NonEmpty())
}

func TestBucketsPanicOnUnknownFamily(t *testing.T) {
	bs := NewBuckets()
	assert.Panics(t, func() { bs.AddSubheading(Family(42), "x") })
	assert.Panics(t, func() { bs.AddArtifact(Family(-1), nil) })
}

func TestBucketsPanicAfterSeal(t *testing.T) {
	bs := NewBuckets()
	bs.Seal()
	assert.True(t, bs.Sealed())
	assert.Panics(t, func() { bs.AddArtifact(FamilyBar, &Artifact{Data: []byte{1}}) })
	assert.Panics(t, func() { bs.AddSubheading(FamilyBar, "late") })
	assert.NotNil(t, bs.Get(FamilyBar), "reads still work")
}

func TestBucketsMarshalInFamilyOrder(t *testing.T) {
	bs := NewBuckets()
	b, err := json.Marshal(bs)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded, len(Families()))
	assert.Equal(t, "pair-scatter", decoded[1]["name"])
}
