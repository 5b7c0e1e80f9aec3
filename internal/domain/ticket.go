package domain

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// TicketID is a ticket identifier as exported by the helpdesk, either a
// JSON number or a JSON string.
type TicketID string

// UnmarshalJSON accepts numeric and string identifiers.
func (id *TicketID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*id = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TicketID(s)
		return nil
	}
	*id = TicketID(raw)
	return nil
}

// MarshalJSON writes numeric identifiers back as numbers.
func (id TicketID) MarshalJSON() ([]byte, error) {
	if _, ok := id.Int(); ok {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Int returns the identifier as an integer when it is numeric.
func (id TicketID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Rating is an optional integer satisfaction score. Values that are not
// JSON integers decode as absent rather than failing the document.
type Rating struct {
	value int
	valid bool
}

// NewRating builds a present rating.
func NewRating(v int) Rating {
	return Rating{value: v, valid: true}
}

// UnmarshalJSON implements lenient integer decoding.
func (r *Rating) UnmarshalJSON(data []byte) error {
	*r = Rating{}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return nil
	}
	*r = Rating{value: n, valid: true}
	return nil
}

// MarshalJSON writes null for absent ratings.
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(r.value)), nil
}

// Value returns the rating and whether it is present.
func (r Rating) Value() (int, bool) {
	return r.value, r.valid
}

// SatisfactionRating is one survey response attached to a ticket.
type SatisfactionRating struct {
	ID       TicketID `json:"id,omitempty"`
	Ratings  Rating   `json:"ratings"`
	Feedback string   `json:"feedback,omitempty"`
}

// TicketTimings is the nested stats record the helpdesk attaches to a ticket.
type TicketTimings struct {
	ResolvedAt       *string `json:"resolved_at,omitempty"`
	ClosedAt         *string `json:"closed_at,omitempty"`
	FirstRespondedAt *string `json:"first_responded_at,omitempty"`
}

// Ticket is a helpdesk ticket as captured in a snapshot. Optional fields
// stay raw so malformed values can degrade per computation.
type Ticket struct {
	ID                  TicketID              `json:"id"`
	Subject             string                `json:"subject,omitempty"`
	StatusText          *string               `json:"status_text,omitempty"`
	PriorityText        *string               `json:"priority_text,omitempty"`
	Type                *string               `json:"type,omitempty"`
	Category            *string               `json:"category,omitempty"`
	CreatedAt           *string               `json:"created_at,omitempty"`
	ResolvedAt          *string               `json:"resolved_at,omitempty"`
	ClosedAt            *string               `json:"closed_at,omitempty"`
	Stats               *TicketTimings        `json:"stats,omitempty"`
	CustomFields        map[string]any        `json:"custom_fields,omitempty"`
	SatisfactionRatings []*SatisfactionRating `json:"all_satisfaction_ratings,omitempty"`
}

// UnmarshalJSON decodes a ticket field by field. Scalars of the wrong JSON
// type are kept as their literal text (a numeric category becomes "7"),
// and nested records that do not have the expected shape are dropped, so
// one odd ticket does not reject the whole snapshot.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	var doc struct {
		ID                  TicketID        `json:"id"`
		Subject             lenientText     `json:"subject"`
		StatusText          lenientText     `json:"status_text"`
		PriorityText        lenientText     `json:"priority_text"`
		Type                lenientText     `json:"type"`
		Category            lenientText     `json:"category"`
		CreatedAt           lenientText     `json:"created_at"`
		ResolvedAt          lenientText     `json:"resolved_at"`
		ClosedAt            lenientText     `json:"closed_at"`
		Stats               json.RawMessage `json:"stats"`
		CustomFields        any             `json:"custom_fields"`
		SatisfactionRatings json.RawMessage `json:"all_satisfaction_ratings"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*t = Ticket{
		ID:           doc.ID,
		StatusText:   doc.StatusText.value,
		PriorityText: doc.PriorityText.value,
		Type:         doc.Type.value,
		Category:     doc.Category.value,
		CreatedAt:    doc.CreatedAt.value,
		ResolvedAt:   doc.ResolvedAt.value,
		ClosedAt:     doc.ClosedAt.value,
	}
	if doc.Subject.value != nil {
		t.Subject = *doc.Subject.value
	}
	if fields, ok := doc.CustomFields.(map[string]any); ok {
		t.CustomFields = fields
	}
	if isObject(doc.Stats) {
		var timings TicketTimings
		if err := json.Unmarshal(doc.Stats, &timings); err == nil {
			t.Stats = &timings
		}
	}
	t.SatisfactionRatings = decodeRatings(doc.SatisfactionRatings)
	return nil
}

// UnmarshalJSON decodes the timing record with the same leniency as Ticket.
func (tt *TicketTimings) UnmarshalJSON(data []byte) error {
	var doc struct {
		ResolvedAt       lenientText `json:"resolved_at"`
		ClosedAt         lenientText `json:"closed_at"`
		FirstRespondedAt lenientText `json:"first_responded_at"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*tt = TicketTimings{
		ResolvedAt:       doc.ResolvedAt.value,
		ClosedAt:         doc.ClosedAt.value,
		FirstRespondedAt: doc.FirstRespondedAt.value,
	}
	return nil
}

// lenientText is an optional text value that accepts any JSON scalar.
type lenientText struct {
	value *string
}

func (l *lenientText) UnmarshalJSON(data []byte) error {
	l.value = nil
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			l.value = &s
		}
	case '{', '[':
	default:
		s := string(raw)
		l.value = &s
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// decodeRatings keeps the survey entries that decode as objects.
func decodeRatings(raw json.RawMessage) []*SatisfactionRating {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []*SatisfactionRating
	for _, item := range items {
		if !isObject(item) {
			continue
		}
		var r SatisfactionRating
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		out = append(out, &r)
	}
	return out
}

// LabelNotAvailable is the label used for missing classification values.
const LabelNotAvailable = "N/A"

// TypeLabel returns the ticket type or "N/A".
func (t *Ticket) TypeLabel() string {
	return labelOrDefault(t.Type)
}

// CategoryLabel returns the ticket category or "N/A".
func (t *Ticket) CategoryLabel() string {
	return labelOrDefault(t.Category)
}

// Status returns the status text, empty when absent.
func (t *Ticket) Status() string {
	if t.StatusText == nil {
		return ""
	}
	return *t.StatusText
}

// Priority classifies the ticket priority text.
func (t *Ticket) Priority() Priority {
	return ParsePriority(t.PriorityText)
}

// IsClosed reports whether the status text marks the ticket as done.
func (t *Ticket) IsClosed() bool {
	return IsClosedStatus(t.Status())
}

// IsClosedStatus reports whether text contains "closed" or "resolved",
// ignoring case.
func IsClosedStatus(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "closed") || strings.Contains(lower, "resolved")
}

// CreatedAtRaw returns the creation timestamp text, empty when absent.
func (t *Ticket) CreatedAtRaw() string {
	return firstNonEmpty(t.CreatedAt)
}

// ResolvedAtRaw returns the authoritative completion timestamp text. The
// first non-empty of resolved_at, stats.resolved_at, closed_at and
// stats.closed_at wins.
func (t *Ticket) ResolvedAtRaw() string {
	var statsResolved, statsClosed *string
	if t.Stats != nil {
		statsResolved = t.Stats.ResolvedAt
		statsClosed = t.Stats.ClosedAt
	}
	return firstNonEmpty(t.ResolvedAt, statsResolved, t.ClosedAt, statsClosed)
}

// FirstRespondedAtRaw returns stats.first_responded_at, empty when absent.
func (t *Ticket) FirstRespondedAtRaw() string {
	if t.Stats == nil {
		return ""
	}
	return firstNonEmpty(t.Stats.FirstRespondedAt)
}

// IsProactive reports whether custom_fields.proactive_case is truthy.
func (t *Ticket) IsProactive() bool {
	if t.CustomFields == nil {
		return false
	}
	return truthy(t.CustomFields["proactive_case"])
}

// Ratings returns every present rating value in the 1..5 range, in order.
func (t *Ticket) Ratings() []int {
	var out []int
	for _, r := range t.SatisfactionRatings {
		if r == nil {
			continue
		}
		if v, ok := r.Ratings.Value(); ok && v >= 1 && v <= 5 {
			out = append(out, v)
		}
	}
	return out
}

func labelOrDefault(v *string) string {
	if v == nil || *v == "" {
		return LabelNotAvailable
	}
	return *v
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
