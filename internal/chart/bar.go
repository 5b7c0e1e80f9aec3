package chart

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/spec-kit/ticket-report/internal/domain"
)

// Segment is one cell of a segmented bar. Tenths is the width in tenths of
// a percent; the segments of one bar always add up to 1000.
type Segment struct {
	Label  string
	Value  int
	Share  float64
	Color  string
	Tenths int
}

// WidthPercent is the rendered width, e.g. "37.5%".
func (s Segment) WidthPercent() string {
	return fmt.Sprintf("%d.%d%%", s.Tenths/10, s.Tenths%10)
}

// Segments sorts the non-zero entries of d by value, largest first, and
// computes their widths. Widths are allotted by largest remainder so they
// add up to exactly 1000 tenths, and every entry gets at least one tenth,
// taken from the widest segment.
func (e *Encoder) Segments(d *domain.Distribution) []Segment {
	buckets, total := nonZero(d.Buckets())
	if total == 0 {
		return nil
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})

	segments := make([]Segment, len(buckets))
	remainders := make([]int, len(buckets))
	used := 0
	for i, b := range buckets {
		scaled := b.Count * 1000
		segments[i] = Segment{
			Label:  b.Label,
			Value:  b.Count,
			Share:  float64(b.Count) / float64(total),
			Color:  e.color(i),
			Tenths: scaled / total,
		}
		remainders[i] = scaled % total
		used += segments[i].Tenths
	}

	order := make([]int, len(buckets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for k := 0; used < 1000; k++ {
		segments[order[k%len(order)]].Tenths++
		used++
	}

	for i := range segments {
		if segments[i].Tenths == 0 && segments[0].Tenths > 1 {
			segments[i].Tenths++
			segments[0].Tenths--
		}
	}
	return segments
}

// Bar renders d as a full-width segmented bar with a legend.
func (e *Encoder) Bar(title string, d *domain.Distribution) domain.Markup {
	segments := e.Segments(d)
	if len(segments) == 0 {
		return NoData(title)
	}

	cells := make([]string, 0, len(segments))
	legend := make([]string, 0, len(segments))
	for _, s := range segments {
		text := LegendText(s.Label, s.Value, s.Share)
		if s.Tenths > 0 {
			cells = append(cells, fmt.Sprintf(`<td style="width:%s;height:18px;background-color:%s;" title="%s"></td>`,
				s.WidthPercent(), s.Color, html.EscapeString(text)))
		}
		legend = append(legend, legendItem(s.Color, text))
	}
	return domain.Markup(barBlock(title, "100%", cells, legend))
}

// MetMissed renders an SLA tally as a fixed-width two-segment bar. Non-zero
// segments are at least MinSegmentWidth pixels wide; the other segment
// gives up the difference so the bar keeps its width.
func (e *Encoder) MetMissed(title string, tally domain.SLATally) domain.Markup {
	if tally.Applicable <= 0 {
		return domain.Markup(fmt.Sprintf("<p>%s: N/A (no applicable tickets)</p>", html.EscapeString(title)))
	}
	met, missed := tally.Met, tally.Missed()
	metPx, missedPx := e.splitWidth(met, missed)

	parts := []struct {
		label string
		value int
		px    int
		color string
	}{
		{"Met", met, metPx, e.color(0)},
		{"Missed", missed, missedPx, e.color(1)},
	}

	cells := make([]string, 0, 2)
	legend := make([]string, 0, 2)
	for _, p := range parts {
		share := float64(p.value) / float64(tally.Applicable)
		text := LegendText(p.label, p.value, share)
		if p.px > 0 {
			cells = append(cells, fmt.Sprintf(`<td width="%d" style="width:%dpx;height:18px;background-color:%s;" title="%s"></td>`,
				p.px, p.px, p.color, html.EscapeString(text)))
		}
		legend = append(legend, legendItem(p.color, text))
	}
	return domain.Markup(barBlock(title, fmt.Sprintf("%d", e.cfg.BarWidth), cells, legend))
}

// splitWidth divides BarWidth between met and missed proportionally.
func (e *Encoder) splitWidth(met, missed int) (int, int) {
	width := e.cfg.BarWidth
	floor := e.cfg.MinSegmentWidth
	total := met + missed
	switch {
	case total <= 0:
		return 0, 0
	case missed == 0:
		return width, 0
	case met == 0:
		return 0, width
	}
	metPx := int(math.Round(float64(met) / float64(total) * float64(width)))
	if metPx < floor {
		metPx = floor
	}
	if width-metPx < floor {
		metPx = width - floor
	}
	return metPx, width - metPx
}

func barBlock(title, width string, cells, legend []string) string {
	var b strings.Builder
	b.WriteString(`<div style="text-align: center; margin-bottom: 25px;">`)
	b.WriteString(heading(title))
	fmt.Fprintf(&b, `<table role="presentation" border="0" cellpadding="0" cellspacing="0" width="%s" style="margin: 0 auto 10px auto; border-radius: 4px; overflow: hidden;"><tr>`, width)
	b.WriteString(strings.Join(cells, ""))
	b.WriteString(`</tr></table>`)
	b.WriteString(legendList(legend))
	b.WriteString(`</div>`)
	return b.String()
}
