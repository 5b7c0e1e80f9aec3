package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-report/internal/domain"
)

func TestLegendText(t *testing.T) {
	assert.Equal(t, "A: 3 (75.0%)", LegendText("A", 3, 0.75))
	assert.Equal(t, "Low: 1 (33.3%)", LegendText("Low", 1, 1.0/3))
	assert.Equal(t, "Met: 0 (0.0%)", LegendText("Met", 0, 0))
}

func TestWedges_SharesAndAngles(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	wedges := enc.Wedges(domain.DistributionOf(
		domain.Bucket{Label: "A", Count: 3},
		domain.Bucket{Label: "B", Count: 1},
	))
	require.Len(t, wedges, 2)

	assert.Equal(t, "A", wedges[0].Label)
	assert.InDelta(t, 0.75, wedges[0].Share, 1e-9)
	assert.InDelta(t, -90.0, wedges[0].StartAngle, 1e-9)
	assert.InDelta(t, 180.0, wedges[0].EndAngle, 1e-9)
	assert.InDelta(t, 180.0, wedges[1].StartAngle, 1e-9)
	assert.InDelta(t, 270.0, wedges[1].EndAngle, 1e-9)
	assert.InDelta(t, 100.0, (wedges[0].Share+wedges[1].Share)*100, 0.05)
	assert.False(t, wedges[0].Full())
	assert.Equal(t, DefaultPalette[0], wedges[0].Color)
	assert.Equal(t, DefaultPalette[1], wedges[1].Color)
}

func TestWedges_KeepInsertionOrderAndSkipZero(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	wedges := enc.Wedges(domain.DistributionOf(
		domain.Bucket{Label: "small", Count: 1},
		domain.Bucket{Label: "zero", Count: 0},
		domain.Bucket{Label: "big", Count: 9},
	))
	require.Len(t, wedges, 2)
	assert.Equal(t, "small", wedges[0].Label)
	assert.Equal(t, "big", wedges[1].Label)
}

func TestPie_SingleEntryIsCircle(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	out := string(enc.Pie("By Type", domain.DistributionOf(domain.Bucket{Label: "Incident", Count: 4}), 120))

	assert.Contains(t, out, `<circle cx="60.00" cy="60.00" r="60.00" fill="#007bff">`)
	assert.NotContains(t, out, "<path")
	assert.Contains(t, out, "Incident: 4 (100.0%)")
}

func TestPie_TwoEntries(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	out := string(enc.Pie("By Priority", domain.DistributionOf(
		domain.Bucket{Label: "A", Count: 3},
		domain.Bucket{Label: "B", Count: 1},
	), 120))

	assert.Equal(t, 2, strings.Count(out, "<path "))
	// 270 degree wedge needs the large arc flag.
	assert.Contains(t, out, `d="M 60.00,60.00 L 60.00,0.00 A 60.00,60.00 0 1,1 0.00,60.00 Z"`)
	assert.Contains(t, out, `d="M 60.00,60.00 L 0.00,60.00 A 60.00,60.00 0 0,1 60.00,0.00 Z"`)
	assert.Contains(t, out, "A: 3 (75.0%)")
	assert.Contains(t, out, "B: 1 (25.0%)")
	assert.Contains(t, out, `<svg width="120" height="120" viewBox="0 0 120 120">`)
}

func TestPie_NoData(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	tests := []struct {
		name string
		dist *domain.Distribution
	}{
		{"nil", nil},
		{"empty", domain.NewDistribution()},
		{"all zero", domain.DistributionOf(domain.Bucket{Label: "A", Count: 0})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, domain.Markup("<p>By Type: No data available.</p>"), enc.Pie("By Type", tt.dist, 0))
			assert.Equal(t, domain.Markup("<p>By Type: No data available.</p>"), enc.Bar("By Type", tt.dist))
		})
	}
}

func TestPie_EscapesLabels(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	out := string(enc.Pie("<Types>", domain.DistributionOf(domain.Bucket{Label: "<script>", Count: 1}), 0))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;: 1 (100.0%)")
	assert.Contains(t, out, "&lt;Types&gt;")
}

func TestSegments_SortedStableAndSumTo100(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	segments := enc.Segments(domain.DistributionOf(
		domain.Bucket{Label: "a", Count: 1},
		domain.Bucket{Label: "b", Count: 1},
		domain.Bucket{Label: "c", Count: 1},
		domain.Bucket{Label: "d", Count: 5},
		domain.Bucket{Label: "e", Count: 0},
	))
	require.Len(t, segments, 4)

	labels := []string{}
	sum := 0
	for _, s := range segments {
		labels = append(labels, s.Label)
		sum += s.Tenths
	}
	assert.Equal(t, []string{"d", "a", "b", "c"}, labels)
	assert.Equal(t, 1000, sum)
	assert.Equal(t, "62.5%", segments[0].WidthPercent())
	assert.Equal(t, "12.5%", segments[1].WidthPercent())

	t.Run("many small entries keep a width", func(t *testing.T) {
		d := domain.DistributionOf(domain.Bucket{Label: "Big", Count: 392})
		for _, label := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			d.Add(label)
		}
		segments := enc.Segments(d)
		require.Len(t, segments, 9)

		sum := 0
		for _, s := range segments {
			assert.Positive(t, s.Tenths, s.Label)
			sum += s.Tenths
		}
		assert.Equal(t, 1000, sum)
		assert.Equal(t, "98.0%", segments[0].WidthPercent())
		assert.Equal(t, "0.3%", segments[1].WidthPercent())
		assert.Equal(t, "0.2%", segments[8].WidthPercent())

		out := string(enc.Bar("By Category", d))
		assert.Equal(t, 9, strings.Count(out, "<td "))
	})

	t.Run("more entries than rounding can show", func(t *testing.T) {
		d := domain.DistributionOf(domain.Bucket{Label: "Big", Count: 10000})
		d.Add("tiny")
		segments := enc.Segments(d)
		require.Len(t, segments, 2)
		assert.Equal(t, 999, segments[0].Tenths)
		assert.Equal(t, 1, segments[1].Tenths)
	})
}

func TestBar_PaletteCycles(t *testing.T) {
	enc := NewEncoder(Config{Palette: []string{"#111111", "#222222"}})
	segments := enc.Segments(domain.DistributionOf(
		domain.Bucket{Label: "x", Count: 3},
		domain.Bucket{Label: "y", Count: 2},
		domain.Bucket{Label: "z", Count: 1},
	))
	require.Len(t, segments, 3)
	assert.Equal(t, "#111111", segments[0].Color)
	assert.Equal(t, "#222222", segments[1].Color)
	assert.Equal(t, "#111111", segments[2].Color)

	out := string(enc.Bar("By Category", domain.DistributionOf(
		domain.Bucket{Label: "x", Count: 3},
		domain.Bucket{Label: "y", Count: 1},
	)))
	assert.Contains(t, out, "width:75.0%")
	assert.Contains(t, out, "width:25.0%")
	assert.Contains(t, out, "x: 3 (75.0%)")
}

func TestMetMissed(t *testing.T) {
	enc := NewEncoder(Config{BarWidth: 200, MinSegmentWidth: 10})

	t.Run("not applicable", func(t *testing.T) {
		out := enc.MetMissed("Resolution SLA", domain.SLATally{})
		assert.Equal(t, domain.Markup("<p>Resolution SLA: N/A (no applicable tickets)</p>"), out)
	})

	t.Run("proportional", func(t *testing.T) {
		out := string(enc.MetMissed("First Reply SLA", domain.SLATally{Met: 3, Applicable: 4}))
		assert.Contains(t, out, "width:150px")
		assert.Contains(t, out, "width:50px")
		assert.Contains(t, out, "Met: 3 (75.0%)")
		assert.Contains(t, out, "Missed: 1 (25.0%)")
	})

	t.Run("all met draws one segment", func(t *testing.T) {
		out := string(enc.MetMissed("First Reply SLA", domain.SLATally{Met: 2, Applicable: 2}))
		assert.Equal(t, 1, strings.Count(out, "<td "))
		assert.Contains(t, out, "width:200px")
		assert.Contains(t, out, "Missed: 0 (0.0%)")
	})
}

func TestSplitWidth_FloorKeepsTotal(t *testing.T) {
	enc := NewEncoder(Config{BarWidth: 200, MinSegmentWidth: 10})
	tests := []struct {
		met, missed         int
		wantMet, wantMissed int
	}{
		{1, 999, 10, 190},
		{999, 1, 190, 10},
		{1, 1, 100, 100},
		{0, 5, 0, 200},
		{5, 0, 200, 0},
	}
	for _, tt := range tests {
		gotMet, gotMissed := enc.splitWidth(tt.met, tt.missed)
		assert.Equal(t, tt.wantMet, gotMet)
		assert.Equal(t, tt.wantMissed, gotMissed)
		assert.Equal(t, 200, gotMet+gotMissed)
	}
}

func TestCharts_FillsEveryFragment(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	s := &domain.TicketStats{
		TicketsByType:     domain.DistributionOf(domain.Bucket{Label: "Incident", Count: 2}),
		TicketsByPriority: domain.NewDistribution(),
		TicketsByCategory: domain.DistributionOf(domain.Bucket{Label: "Network", Count: 1}),
		FirstReplySLA:     domain.SLATally{Met: 1, Applicable: 2},
	}
	set := enc.Charts(s)
	assert.Contains(t, string(set.FirstReplySLA), "First Reply SLA")
	assert.Contains(t, string(set.ResolutionSLA), "N/A (no applicable tickets)")
	assert.Contains(t, string(set.ByType), "<svg")
	assert.Contains(t, string(set.ByPriority), "No data available")
	assert.Contains(t, string(set.ByCategory), `<svg width="150" height="150"`)
	assert.Contains(t, string(set.CategoryShare), "Network: 1 (100.0%)")
	assert.Contains(t, string(set.CategoryShare), "width:100.0%")
}
