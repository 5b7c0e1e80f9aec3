package chart

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/spec-kit/ticket-report/internal/domain"
)

// pieStartAngle puts the first wedge edge at 12 o'clock.
const pieStartAngle = -90.0

// Wedge is the geometry of one pie slice. Angles are in degrees, measured
// clockwise in SVG coordinates.
type Wedge struct {
	Label      string
	Value      int
	Share      float64
	Color      string
	StartAngle float64
	EndAngle   float64
}

// Full reports whether the wedge covers the whole circle.
func (w Wedge) Full() bool {
	return math.Abs(w.EndAngle-w.StartAngle-360) < 0.01
}

// Wedges lays out the non-zero entries of d in first-seen order.
func (e *Encoder) Wedges(d *domain.Distribution) []Wedge {
	buckets, total := nonZero(d.Buckets())
	if total == 0 {
		return nil
	}
	wedges := make([]Wedge, 0, len(buckets))
	current := pieStartAngle
	for i, b := range buckets {
		share := float64(b.Count) / float64(total)
		end := current + share*360
		if i == len(buckets)-1 {
			end = pieStartAngle + 360
		}
		wedges = append(wedges, Wedge{
			Label:      b.Label,
			Value:      b.Count,
			Share:      share,
			Color:      e.color(i),
			StartAngle: current,
			EndAngle:   end,
		})
		current = end
	}
	return wedges
}

// Pie renders d as an inline SVG pie of the given pixel size with a legend.
// A size of zero uses the configured default.
func (e *Encoder) Pie(title string, d *domain.Distribution, size int) domain.Markup {
	wedges := e.Wedges(d)
	if len(wedges) == 0 {
		return NoData(title)
	}
	if size <= 0 {
		size = e.cfg.PieSize
	}
	radius := float64(size) / 2

	shapes := make([]string, 0, len(wedges))
	legend := make([]string, 0, len(wedges))
	for _, w := range wedges {
		text := LegendText(w.Label, w.Value, w.Share)
		shapes = append(shapes, wedgeShape(w, radius, text))
		legend = append(legend, legendItem(w.Color, text))
	}

	var b strings.Builder
	b.WriteString(`<div style="text-align: center; margin-bottom: 25px;">`)
	b.WriteString(heading(title))
	b.WriteString(`<table role="presentation" border="0" cellpadding="0" cellspacing="0" width="100%"><tr>`)
	fmt.Fprintf(&b, `<td style="width: %dpx; vertical-align: middle;"><svg width="%d" height="%d" viewBox="0 0 %d %d">`, size, size, size, size, size)
	b.WriteString(strings.Join(shapes, ""))
	b.WriteString(`</svg></td><td style="vertical-align: middle; padding-left: 20px;">`)
	b.WriteString(legendList(legend))
	b.WriteString(`</td></tr></table></div>`)
	return domain.Markup(b.String())
}

// wedgeShape emits a filled circle for a full wedge, since an arc whose
// start and end points coincide draws nothing, and an arc path otherwise.
func wedgeShape(w Wedge, radius float64, tooltip string) string {
	cx, cy := radius, radius
	title := "<title>" + html.EscapeString(tooltip) + "</title>"
	if w.Full() {
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="%s">%s</circle>`,
			num(cx), num(cy), num(radius), w.Color, title)
	}
	sx, sy := polar(cx, cy, radius, w.StartAngle)
	ex, ey := polar(cx, cy, radius, w.EndAngle)
	largeArc := 0
	if w.EndAngle-w.StartAngle >= 180 {
		largeArc = 1
	}
	path := fmt.Sprintf("M %s,%s L %s,%s A %s,%s 0 %d,1 %s,%s Z",
		num(cx), num(cy), num(sx), num(sy), num(radius), num(radius), largeArc, num(ex), num(ey))
	return fmt.Sprintf(`<path d="%s" fill="%s">%s</path>`, path, w.Color, title)
}

func polar(cx, cy, radius, degrees float64) (float64, float64) {
	rad := degrees * math.Pi / 180
	return cx + radius*math.Cos(rad), cy + radius*math.Sin(rad)
}

// num prints SVG coordinates with two decimals.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
