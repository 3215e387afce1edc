package engine

import "sort"

// ============================================================================
// CHART BUILDER — Produces ChartConfig from aggregated groups
// ============================================================================
// Bar and pivot renderers aggregate with GroupAndAggregate, shape the groups
// into series here and only then draw. The config also lands in the manifest.
// ============================================================================

// DefaultColors is the series palette shared by every renderer.
var DefaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartSpec names the axes of a grouped chart.
type ChartSpec struct {
	ChartType string // "bar", "stacked_bar", "grouped_bar"
	Title     string
	XAxis     string
	YAxis     string
}

// BuildChart produces a ChartConfig from aggregated groups. Groups with
// sub-groups become one series per sub-group key.
func BuildChart(spec ChartSpec, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	chartType := spec.ChartType
	if chartType == "" {
		chartType = "bar"
	}

	config := &ChartConfig{
		ChartType: chartType,
		Title:     spec.Title,
		XAxis:     spec.XAxis,
		YAxis:     spec.YAxis,
	}

	if hasSubGroups(groups) {
		config.Series = buildMultiSeries(groups)
		config.ShowLegend = true
	} else {
		config.Series = buildSingleSeries(groups, spec.YAxis)
	}

	config.Colors = assignColors(len(config.Series))
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, seriesName string) []ChartSeries {
	if seriesName == "" {
		seriesName = "Value"
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label: g.Label,
			Value: RoundTo2(g.Value),
		})
	}

	return []ChartSeries{{
		Name:  seriesName,
		Data:  points,
		Color: DefaultColors[0],
	}}
}

func buildMultiSeries(groups []Group) []ChartSeries {
	subKeySet := make(map[string]bool)
	for _, g := range groups {
		for _, sg := range g.SubGroups {
			subKeySet[sg.Key] = true
		}
	}

	subKeys := make([]string, 0, len(subKeySet))
	for k := range subKeySet {
		subKeys = append(subKeys, k)
	}
	sort.Slice(subKeys, func(i, j int) bool { return labelLess(subKeys[i], subKeys[j]) })

	seriesMap := make(map[string][]ChartPoint)
	for _, key := range subKeys {
		seriesMap[key] = make([]ChartPoint, 0, len(groups))
	}

	for _, g := range groups {
		sgLookup := make(map[string]float64)
		for _, sg := range g.SubGroups {
			sgLookup[sg.Key] = sg.Value
		}

		for _, key := range subKeys {
			seriesMap[key] = append(seriesMap[key], ChartPoint{
				Label: g.Label,
				Value: RoundTo2(sgLookup[key]),
			})
		}
	}

	series := make([]ChartSeries, 0, len(subKeys))
	for i, key := range subKeys {
		series = append(series, ChartSeries{
			Name:  key,
			Data:  seriesMap[key],
			Color: DefaultColors[i%len(DefaultColors)],
		})
	}

	return series
}

func hasSubGroups(groups []Group) bool {
	for _, g := range groups {
		if len(g.SubGroups) > 0 {
			return true
		}
	}
	return false
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = DefaultColors[i%len(DefaultColors)]
	}
	return colors
}
