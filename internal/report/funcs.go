package report

import (
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/ticket-report/internal/domain"
	"github.com/spec-kit/ticket-report/internal/stats"
)

var satisfactionEmoji = map[int]string{
	5: "😊",
	4: "🙂",
	3: "😐",
	2: "🙁",
	1: "😠",
}

// SatisfactionEmoji maps a 1..5 rating to its face, empty otherwise.
func SatisfactionEmoji(rating int) string {
	return satisfactionEmoji[rating]
}

// Truncate shortens s to at most max runes, cutting at the last word
// boundary and appending "...".
func Truncate(max int, s string) string {
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max-3])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ") + "..."
}

// SLAClass is the CSS class for a reply SLA cell.
func SLAClass(status domain.ReplySLAStatus) string {
	switch status {
	case domain.ReplySLAMet:
		return "sla-met"
	case domain.ReplySLAMissed:
		return "sla-missed"
	default:
		return ""
	}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatDateTime": func(v *string) string {
			if v == nil {
				return stats.NotAvailable
			}
			return stats.FormatDateTime(*v)
		},
		"formatDate": func(v *string) string {
			if v == nil {
				return stats.NotAvailable
			}
			return stats.FormatDate(*v)
		},
		"formatText":        formatText,
		"formatDuration":    stats.FormatSeconds,
		"satisfactionEmoji": SatisfactionEmoji,
		"truncate":          Truncate,
		"slaClass":          SLAClass,
		"orNA": func(v *string) string {
			if v == nil || *v == "" {
				return stats.NotAvailable
			}
			return *v
		},
		"join": strings.Join,
		"markup": func(m domain.Markup) template.HTML {
			return template.HTML(m) //nolint:gosec // produced by the chart encoder, which escapes labels
		},
	}
}

func formatText(v string) string {
	if v == "" {
		return stats.NotAvailable
	}
	return v
}
