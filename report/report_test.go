package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autochart/engine"
	"github.com/spektr-org/autochart/schema"
	"github.com/spektr-org/autochart/storage"
)

func sampleResult() *engine.Result {
	bs := engine.NewBuckets()
	bs.AddSubheading(engine.FamilyOverall, "Data set has 3 rows and 2 columns")
	bs.AddTable(engine.FamilyOverall, &engine.TableData{
		Title: "Roles",
		Columns: []engine.Column{
			{Key: "role", Label: "Role", Align: "left"},
			{Key: "count", Label: "Count", Align: "right"},
		},
		Rows:    [][]string{{"continuous", "1"}, {"a|b", "2"}},
		Summary: &engine.Summary{Label: "Total", Values: map[string]string{"count": "3"}},
	})

	bar := &engine.Artifact{
		Name: "bar", Title: "Average of qty by city", Format: "svg", Data: []byte("<svg/>"),
		Path: "price/bar.svg",
		Chart: &engine.ChartConfig{
			XAxis: "city", YAxis: "qty",
			Series: []engine.ChartSeries{{Name: "qty", Data: []engine.ChartPoint{
				{Label: "Paris", Value: 4}, {Label: "Lima", Value: 2.5},
			}}},
		},
	}
	bs.AddArtifact(engine.FamilyBar, bar)
	bs.AddSubheading(engine.FamilyBar, bar.Title)
	bs.AddArtifact(engine.FamilyHeatmap, &engine.Artifact{
		Name: "heatmap", Title: "Correlation heatmap", Format: "svg", Data: []byte("<svg/>"),
	})
	bs.Seal()

	return &engine.Result{
		RunID: "run-1",
		Classification: &schema.Classification{
			Target: "price", ProblemType: schema.ProblemRegression, Rows: 3, SourceRows: 3,
		},
		Buckets: bs,
		Errors:  []string{"Could not draw Violin Plots: nothing to draw"},
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, sampleResult()))
	md := buf.String()

	assert.Contains(t, md, "# AutoChart Report")
	assert.Contains(t, md, "target `price`")
	assert.Contains(t, md, "## "+engine.FamilyOverall.Heading())
	assert.Contains(t, md, "- Data set has 3 rows and 2 columns")
	assert.Contains(t, md, "| Role | Count |")
	assert.Contains(t, md, "| --- | ---: |")
	assert.Contains(t, md, `| a\|b | 2 |`)
	assert.Contains(t, md, "| **Total** | 3 |")
	assert.Contains(t, md, "![Average of qty by city](bar.svg)")
	assert.Contains(t, md, "![Correlation heatmap](heatmap.svg)")
	assert.Contains(t, md, "## Skipped Charts")
	assert.NotContains(t, md, engine.FamilyViolin.Heading(), "empty buckets are left out")

	overall := bytes.Index(buf.Bytes(), []byte(engine.FamilyOverall.Heading()))
	heat := bytes.Index(buf.Bytes(), []byte(engine.FamilyHeatmap.Heading()))
	assert.Less(t, overall, heat)
}

func TestChartCSV(t *testing.T) {
	tests := []struct {
		name string
		cfg  *engine.ChartConfig
		want string
	}{
		{
			name: "single series",
			cfg: &engine.ChartConfig{Series: []engine.ChartSeries{{Name: "n", Data: []engine.ChartPoint{
				{Label: "a", Value: 1}, {Label: "b", Value: 0.333},
			}}}},
			want: "Label,Value\na,1\nb,0.33\n",
		},
		{
			name: "grouped",
			cfg: &engine.ChartConfig{XAxis: "city", Series: []engine.ChartSeries{
				{Name: "yes", Data: []engine.ChartPoint{{Label: "Paris", Value: 2}, {Label: "Lima", Value: 1}}},
				{Name: "no", Data: []engine.ChartPoint{{Label: "Paris", Value: 3}}},
			}},
			want: "city,yes,no\nParis,2,3\nLima,1,\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, ChartCSV(&buf, tt.cfg))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	assert.Error(t, ChartCSV(&bytes.Buffer{}, nil))
}

func TestTableCSV(t *testing.T) {
	var buf bytes.Buffer
	tbl := sampleResult().Buckets.Get(engine.FamilyOverall).Tables[0]
	require.NoError(t, TableCSV(&buf, tbl))
	assert.Equal(t, "Role,Count\ncontinuous,1\na|b,2\n", buf.String())
}

func TestBuildManifest(t *testing.T) {
	m := BuildManifest(sampleResult())
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, "price", m.Target)
	assert.Equal(t, "1.5s", m.Elapsed)
	require.Len(t, m.Buckets, 3, "overall, heatmap and bar")
	assert.Equal(t, engine.FamilyOverall, m.Buckets[0].Family)
	assert.Equal(t, engine.FamilyHeatmap, m.Buckets[1].Family)

	bar := m.Buckets[2]
	assert.Equal(t, engine.FamilyBar, bar.Family)
	require.Len(t, bar.Artifacts, 1)
	assert.Equal(t, "bar.csv", bar.Artifacts[0].DataPath)
	assert.Empty(t, m.Buckets[1].Artifacts[0].DataPath)
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	store := storage.NewLocalStore(t.TempDir())

	keys, err := Save(ctx, store, "price", sampleResult())
	require.NoError(t, err)
	assert.Equal(t, []string{"price/bar.csv", "price/report.md", "price/manifest.json"}, keys)

	data, err := store.Get(ctx, "price/bar.csv")
	require.NoError(t, err)
	assert.Equal(t, "city,qty\nParis,4\nLima,2.50\n", string(data))

	data, err = store.Get(ctx, "price/manifest.json")
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, "Regression", m.ProblemType)
	assert.Len(t, m.Errors, 1)
}
