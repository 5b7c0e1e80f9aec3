// Package chart turns distributions and SLA tallies into self-contained
// HTML fragments (inline SVG pies and table-cell bars) that survive e-mail
// clients without scripts or external images.
//
// Pie wedges keep the distribution's first-seen order. Bar segments are
// sorted by value, largest first, keeping first-seen order among ties.
// Colors are taken from the palette by position in the rendered order and
// wrap around when there are more entries than colors.
package chart

import (
	"fmt"
	"html"
	"strings"

	"github.com/spec-kit/ticket-report/internal/domain"
)

// DefaultPalette is the stock color cycle.
var DefaultPalette = []string{
	"#007bff", "#28a745", "#ffc107", "#dc3545", "#6c757d",
	"#17a2b8", "#343a40", "#fd7e14", "#6610f2",
}

// Config controls sizes and colors of the rendered fragments.
type Config struct {
	Palette         []string
	PieSize         int
	CategoryPieSize int
	BarWidth        int
	MinSegmentWidth int
}

// DefaultConfig returns the stock chart settings.
func DefaultConfig() Config {
	return Config{
		Palette:         DefaultPalette,
		PieSize:         120,
		CategoryPieSize: 150,
		BarWidth:        300,
		MinSegmentWidth: 6,
	}
}

// Encoder renders chart fragments. It is stateless after construction.
type Encoder struct {
	cfg Config
}

// NewEncoder builds an encoder, filling unset fields from DefaultConfig.
func NewEncoder(cfg Config) *Encoder {
	def := DefaultConfig()
	if len(cfg.Palette) == 0 {
		cfg.Palette = def.Palette
	}
	if cfg.PieSize <= 0 {
		cfg.PieSize = def.PieSize
	}
	if cfg.CategoryPieSize <= 0 {
		cfg.CategoryPieSize = def.CategoryPieSize
	}
	if cfg.BarWidth <= 0 {
		cfg.BarWidth = def.BarWidth
	}
	if cfg.MinSegmentWidth < 0 {
		cfg.MinSegmentWidth = 0
	}
	if cfg.MinSegmentWidth*2 > cfg.BarWidth {
		cfg.MinSegmentWidth = cfg.BarWidth / 2
	}
	palette := make([]string, len(cfg.Palette))
	copy(palette, cfg.Palette)
	cfg.Palette = palette
	return &Encoder{cfg: cfg}
}

// Charts renders the standard chart set for a report.
func (e *Encoder) Charts(s *domain.TicketStats) domain.ChartSet {
	return domain.ChartSet{
		FirstReplySLA: e.MetMissed("First Reply SLA", s.FirstReplySLA),
		ResolutionSLA: e.MetMissed("Resolution SLA", s.ResolutionSLA),
		ByType:        e.Pie("By Type", s.TicketsByType, e.cfg.PieSize),
		ByPriority:    e.Pie("By Priority", s.TicketsByPriority, e.cfg.PieSize),
		ByCategory:    e.Pie("By Category", s.TicketsByCategory, e.cfg.CategoryPieSize),
		CategoryShare: e.Bar("Category Share", s.TicketsByCategory),
	}
}

func (e *Encoder) color(i int) string {
	return e.cfg.Palette[i%len(e.cfg.Palette)]
}

// LegendText formats one legend line as "label: value (pct%)".
func LegendText(label string, value int, share float64) string {
	return fmt.Sprintf("%s: %d (%.1f%%)", label, value, share*100)
}

// NoData is the fragment rendered for an empty or all-zero chart.
func NoData(title string) domain.Markup {
	return domain.Markup(fmt.Sprintf("<p>%s: No data available.</p>", html.EscapeString(title)))
}

func legendItem(color, text string) string {
	return fmt.Sprintf(`<li style="margin-bottom: 5px;"><span style="display:inline-block;width:12px;height:12px;border-radius:3px;background-color:%s;margin-right:8px;vertical-align:middle;"></span>%s</li>`,
		color, html.EscapeString(text))
}

func legendList(items []string) string {
	return `<ul style="list-style: none; padding: 0; margin: 0; text-align: left; font-size: 13px; line-height: 1.6;">` +
		strings.Join(items, "") + `</ul>`
}

func heading(title string) string {
	return fmt.Sprintf(`<h4 style="margin-bottom: 15px; font-size: 16px; font-weight: 600; color: #444;">%s</h4>`,
		html.EscapeString(title))
}

// nonZero drops entries whose count is zero or negative.
func nonZero(buckets []domain.Bucket) ([]domain.Bucket, int) {
	out := make([]domain.Bucket, 0, len(buckets))
	total := 0
	for _, b := range buckets {
		if b.Count > 0 {
			out = append(out, b)
			total += b.Count
		}
	}
	return out, total
}
