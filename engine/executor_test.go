package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/quality"
	"github.com/spektr-org/autochart/schema"
	"github.com/spektr-org/autochart/storage"
)

// mixedTable has an identifier, two continuous columns, a categorical, a
// date and a free-text column.
func mixedTable(rows int) *dataset.Table {
	names := []string{"id", "price", "qty", "city", "day", "notes"}
	cities := []string{"Paris", "Lima", "Oslo"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	data := make([][]string, rows)
	for i := range data {
		data[i] = []string{
			strconv.Itoa(1000 + i),
			fmt.Sprintf("%.2f", float64(i)*1.5+0.25),
			fmt.Sprintf("%.2f", float64(i%17)*2.5+0.1),
			cities[i%3],
			start.AddDate(0, 0, i).Format("2006-01-02"),
			fmt.Sprintf("order %d shipped via ground freight", i),
		}
	}
	return dataset.MustNew(names, data)
}

// stubRenderers succeed for every family.
func stubRenderers() map[Family]RenderFunc {
	out := make(map[Family]RenderFunc)
	for _, f := range Families() {
		out[f] = func(r Request) (*Artifact, error) {
			return &Artifact{Title: fmt.Sprintf("%s of %d columns", r.Family, len(r.Columns)+len(r.Groups)), Data: []byte("<svg/>")}, nil
		}
	}
	return out
}

func TestExecutePartialHeatmapFailure(t *testing.T) {
	renderers := stubRenderers()
	renderers[FamilyHeatmap] = func(Request) (*Artifact, error) {
		return nil, errors.New("all numeric columns are NaN")
	}

	res, err := Execute(mixedTable(60), schema.NoTarget(), WithRenderers(renderers), WithQualityReport(nil))
	require.NoError(t, err)

	p := res.Classification.Partitions
	assert.Equal(t, []string{"id"}, p.IDs)
	assert.Equal(t, []string{"price", "qty"}, p.Continuous)
	assert.Equal(t, []string{"city"}, p.Categoricals)
	assert.Equal(t, []string{"day"}, p.Dates)
	assert.Equal(t, []string{"notes"}, p.Text)

	for _, name := range []string{"pair-scatter", "distribution", "violin", "time-series", "bar", "wordcloud"} {
		assert.False(t, res.Buckets.MustByName(name).Empty(), name)
	}
	assert.True(t, res.Buckets.Get(FamilyHeatmap).Empty())
	assert.True(t, res.Buckets.Get(FamilyCatScatter).Empty())
	assert.True(t, res.Buckets.Sealed())

	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, FamilyHeatmap, failed[0].Directive.Family)
	var re *RenderError
	require.True(t, errors.As(failed[0].Err, &re))
	assert.Equal(t, "Could not draw Heat Map: all numeric columns are NaN", failed[0].Message)
	assert.Equal(t, []string{failed[0].Message}, res.Errors)
}

func TestExecuteRecoversRendererPanic(t *testing.T) {
	renderers := stubRenderers()
	renderers[FamilyViolin] = func(Request) (*Artifact, error) {
		var m map[string]int
		m["boom"]++
		return nil, nil
	}

	res, err := Execute(mixedTable(40), schema.NoTarget(), WithRenderers(renderers), WithQualityReport(nil))
	require.NoError(t, err)
	assert.True(t, res.Buckets.Get(FamilyViolin).Empty())
	assert.False(t, res.Buckets.Get(FamilyBar).Empty())

	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Message, "Could not draw Violin Plots: panic:")
}

func TestExecuteMissingRendererAndEmptyArtifact(t *testing.T) {
	renderers := stubRenderers()
	delete(renderers, FamilyBar)
	renderers[FamilyViolin] = func(Request) (*Artifact, error) { return nil, nil }

	res, err := Execute(mixedTable(40), schema.NoTarget(), WithRenderers(renderers), WithQualityReport(nil))
	require.NoError(t, err)

	var causes []error
	for _, o := range res.Failed() {
		causes = append(causes, errors.Unwrap(o.Err))
	}
	assert.ElementsMatch(t, []error{ErrNothingDrawn, ErrNoRenderer}, causes)
}

func TestExecuteCatScatterInsteadOfBar(t *testing.T) {
	rows := make([][]string, 30)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("a%d", i%3), fmt.Sprintf("b%d", i%4)}
	}
	res, err := Execute(dataset.MustNew([]string{"a", "b"}, rows), schema.NoTarget(),
		WithRenderers(stubRenderers()), WithQualityReport(nil))
	require.NoError(t, err)

	assert.Empty(t, res.Classification.Partitions.Continuous)
	assert.True(t, res.Buckets.Get(FamilyBar).Empty())
	assert.False(t, res.Buckets.Get(FamilyCatScatter).Empty())
}

func TestExecuteRequestCarriesTarget(t *testing.T) {
	var got Request
	renderers := stubRenderers()
	renderers[FamilyScatter] = func(r Request) (*Artifact, error) {
		got = r
		return &Artifact{Data: []byte("x")}, nil
	}

	_, err := Execute(mixedTable(60), schema.SingleTarget("price"), WithRenderers(renderers),
		WithQualityReport(nil), WithChartFormat(".PNG"), WithVerbosity(1))
	require.NoError(t, err)

	assert.Equal(t, FamilyScatter, got.Family)
	assert.Equal(t, "price", got.Target)
	assert.Equal(t, schema.ProblemRegression, got.Problem)
	assert.Equal(t, []string{"qty"}, got.Columns)
	assert.Equal(t, "png", got.Format)
	assert.Equal(t, 1, got.Verbosity)
	assert.True(t, got.Data.Has("price"))
}

func TestExecuteMultiLabelTarget(t *testing.T) {
	res, err := Execute(mixedTable(60), schema.ListTarget("qty", "price"),
		WithRenderers(stubRenderers()), WithQualityReport(nil))
	require.NoError(t, err)
	assert.Equal(t, "qty", res.Classification.Target)
	require.NotEmpty(t, res.Classification.Warnings)
	assert.Contains(t, res.Classification.Warnings[0], "qty")
	assert.Contains(t, res.Buckets.Get(FamilyOverall).Subheadings, res.Classification.Warnings[0])
}

func TestExecuteConfigErrors(t *testing.T) {
	_, err := Execute(mixedTable(20), schema.SingleTarget("nope"), WithRenderers(stubRenderers()))
	assert.ErrorIs(t, err, schema.ErrTargetNotFound)

	_, err = Execute(mixedTable(20), schema.NoTarget(), WithChartFormat("html"))
	assert.ErrorIs(t, err, schema.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "interactive")

	_, err = Execute(nil, schema.NoTarget())
	assert.ErrorIs(t, err, schema.ErrEmptyDataset)

	_, err = Execute(mixedTable(20), schema.NoTarget(), WithClassifyOptions(schema.Options{MaxRows: -1}))
	assert.ErrorIs(t, err, schema.ErrInvalidLimits)
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"svg", "PNG", ".jpg", "jpeg", "pdf", "eps", "tif", "tiff"} {
		assert.NoError(t, ValidateFormat(f), f)
	}
	for _, f := range []string{"", "gif", "bokeh", "server"} {
		assert.ErrorIs(t, ValidateFormat(f), schema.ErrUnsupportedFormat, f)
	}
}

func TestExecutePersistsArtifacts(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewLocalStore(dir)

	res, err := Execute(mixedTable(60), schema.NoTarget(),
		WithRenderers(stubRenderers()), WithStore(store), WithQualityReport(nil), WithRunID("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, dir, res.Location)

	keys, err := store.List(context.Background(), DefaultTargetDir)
	require.NoError(t, err)
	assert.Contains(t, keys, "AutoViz/heatmap.svg")
	assert.Contains(t, keys, "AutoViz/wordcloud.svg")

	heat := res.Buckets.Get(FamilyHeatmap).Artifacts[0]
	assert.Equal(t, "heatmap", heat.Name)
	assert.Equal(t, "AutoViz/heatmap.svg", heat.Path)
	assert.Empty(t, res.Errors)
}

func TestExecuteTargetDirectory(t *testing.T) {
	store := storage.NewLocalStore(t.TempDir())
	_, err := Execute(mixedTable(60), schema.SingleTarget("qty"),
		WithRenderers(stubRenderers()), WithStore(store), WithQualityReport(nil))
	require.NoError(t, err)

	ok, err := store.Exists(context.Background(), "qty/scatter.svg")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArtifactNames(t *testing.T) {
	ds := []Directive{
		{Family: FamilyHeatmap},
		{Family: FamilyWordCloud, Label: "a"},
		{Family: FamilyWordCloud, Label: "b"},
	}
	assert.Equal(t, []string{"heatmap", "wordcloud_1", "wordcloud_2"}, artifactNames(ds))
}

func TestExecuteQualityReport(t *testing.T) {
	res, err := Execute(mixedTable(60), schema.NoTarget(), WithRenderers(stubRenderers()))
	require.NoError(t, err)
	require.NotNil(t, res.Quality)
	assert.NoError(t, res.QualityErr)
	assert.Len(t, res.Buckets.Get(FamilyOverall).Descriptions, len(res.Quality.Findings))

	failing := func(dataset.View, string) (*quality.Report, error) { return nil, errors.New("broken") }
	res, err = Execute(mixedTable(60), schema.NoTarget(), WithRenderers(stubRenderers()), WithQualityReport(failing))
	require.NoError(t, err, "quality failures never abort the pass")
	assert.EqualError(t, res.QualityErr, "broken")
	assert.False(t, res.Buckets.Get(FamilyPairScatter).Empty())

	panicking := func(dataset.View, string) (*quality.Report, error) { panic("index out of range") }
	res, err = Execute(mixedTable(60), schema.NoTarget(), WithRenderers(stubRenderers()), WithQualityReport(panicking))
	require.NoError(t, err, "a panicking quality check still lets charts dispatch")
	assert.Nil(t, res.Quality)
	assert.EqualError(t, res.QualityErr, "data quality panic: index out of range")
	assert.False(t, res.Buckets.Get(FamilyPairScatter).Empty())
}

func TestExecuteOverallBucket(t *testing.T) {
	res, err := Execute(mixedTable(60), schema.NoTarget(), WithRenderers(stubRenderers()), WithQualityReport(nil))
	require.NoError(t, err)

	overall := res.Buckets.Get(FamilyOverall)
	require.NotEmpty(t, overall.Subheadings)
	assert.Equal(t, "Shape of your Data Set loaded: (60, 6)", overall.Subheadings[0])
	require.Len(t, overall.Tables, 2, "no class table without a classification target")
	assert.Equal(t, "Column Classification", overall.Tables[0].Title)

	ts := res.Buckets.Get(FamilyTimeSeries)
	require.Len(t, ts.Descriptions, 2)
	assert.Contains(t, ts.Descriptions[0], "price by day")
}
