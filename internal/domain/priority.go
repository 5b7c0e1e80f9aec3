package domain

import "strings"

// PriorityTier enumerates the SLA urgency tiers.
type PriorityTier int

const (
	PriorityUnknown PriorityTier = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var priorityNames = map[PriorityTier]string{
	PriorityUnknown: "Unknown",
	PriorityLow:     "Low",
	PriorityMedium:  "Medium",
	PriorityHigh:    "High",
	PriorityUrgent:  "Urgent",
}

func (p PriorityTier) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return priorityNames[PriorityUnknown]
}

// Priority is a classified priority. Raw keeps the original text so an
// unrecognized value is never lost.
type Priority struct {
	Tier PriorityTier
	Raw  string
}

// ParsePriority maps helpdesk priority text onto a tier. Matching trims
// whitespace and ignores case; anything else is PriorityUnknown.
func ParsePriority(text *string) Priority {
	if text == nil {
		return Priority{Tier: PriorityUnknown}
	}
	p := Priority{Tier: PriorityUnknown, Raw: *text}
	normalized := strings.TrimSpace(*text)
	for tier, name := range priorityNames {
		if tier != PriorityUnknown && strings.EqualFold(normalized, name) {
			p.Tier = tier
			break
		}
	}
	return p
}

// Recognized reports whether the text matched a known tier.
func (p Priority) Recognized() bool {
	return p.Tier != PriorityUnknown
}

// Label is the distribution label: the canonical tier name, or "Unknown".
func (p Priority) Label() string {
	return p.Tier.String()
}
