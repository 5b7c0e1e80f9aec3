package domain

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketID_Unmarshal(t *testing.T) {
	var payload struct {
		A TicketID `json:"a"`
		B TicketID `json:"b"`
		C TicketID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":1042,"b":"INC-7","c":null}`), &payload))
	assert.Equal(t, TicketID("1042"), payload.A)
	assert.Equal(t, TicketID("INC-7"), payload.B)
	assert.Equal(t, TicketID(""), payload.C)

	n, ok := payload.A.Int()
	assert.True(t, ok)
	assert.EqualValues(t, 1042, n)
	_, ok = payload.B.Int()
	assert.False(t, ok)
}

func TestTicketID_Marshal(t *testing.T) {
	out, err := json.Marshal([]TicketID{"12", "INC-7"})
	require.NoError(t, err)
	assert.JSONEq(t, `[12,"INC-7"]`, string(out))
}

func TestRating_Lenient(t *testing.T) {
	var rs []SatisfactionRating
	require.NoError(t, json.Unmarshal([]byte(`[{"ratings":4},{"ratings":"great"},{"ratings":null},{"ratings":{"x":1}},{}]`), &rs))
	require.Len(t, rs, 5)

	v, ok := rs[0].Ratings.Value()
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	for _, r := range rs[1:] {
		_, ok := r.Ratings.Value()
		assert.False(t, ok)
	}
}

func TestTicket_Decode(t *testing.T) {
	raw := `{
		"id": 77,
		"subject": "Printer offline",
		"status_text": "Closed",
		"priority_text": "High",
		"type": "Incident",
		"created_at": "2024-01-01T00:00:00Z",
		"stats": {"resolved_at": "2024-01-02T00:00:00Z", "first_responded_at": "2024-01-01T00:30:00Z"},
		"custom_fields": {"proactive_case": "yes"},
		"all_satisfaction_ratings": [{"id": 1, "ratings": 5}, {"id": 2, "ratings": 0}]
	}`
	var tk Ticket
	require.NoError(t, json.Unmarshal([]byte(raw), &tk))

	assert.Equal(t, TicketID("77"), tk.ID)
	assert.True(t, tk.IsClosed())
	assert.Equal(t, PriorityHigh, tk.Priority().Tier)
	assert.Equal(t, "Incident", tk.TypeLabel())
	assert.Equal(t, LabelNotAvailable, tk.CategoryLabel())
	assert.Equal(t, "2024-01-02T00:00:00Z", tk.ResolvedAtRaw())
	assert.Equal(t, "2024-01-01T00:30:00Z", tk.FirstRespondedAtRaw())
	assert.True(t, tk.IsProactive())
	assert.Equal(t, []int{5}, tk.Ratings())
}

func TestTicket_DecodeOddFieldTypes(t *testing.T) {
	raw := `{
		"id": 9,
		"subject": null,
		"status_text": true,
		"priority_text": 3,
		"type": {"name": "Incident"},
		"category": 7,
		"created_at": 1704067200,
		"stats": "pending",
		"custom_fields": [],
		"all_satisfaction_ratings": [{"ratings": 4}, "skipped", 12]
	}`
	var tk Ticket
	require.NoError(t, json.Unmarshal([]byte(raw), &tk))

	assert.Equal(t, TicketID("9"), tk.ID)
	assert.Empty(t, tk.Subject)
	assert.Equal(t, "7", tk.CategoryLabel())
	assert.Equal(t, LabelNotAvailable, tk.TypeLabel())
	require.NotNil(t, tk.StatusText)
	assert.Equal(t, "true", *tk.StatusText)
	assert.False(t, tk.IsClosed())
	require.NotNil(t, tk.CreatedAt)
	assert.Equal(t, "1704067200", *tk.CreatedAt)
	assert.Nil(t, tk.Stats)
	assert.Nil(t, tk.CustomFields)
	assert.False(t, tk.IsProactive())
	assert.Equal(t, []int{4}, tk.Ratings())
}

func TestTicketTimings_DecodeOddFieldTypes(t *testing.T) {
	var tt TicketTimings
	require.NoError(t, json.Unmarshal([]byte(`{"resolved_at": 5, "closed_at": ["x"], "first_responded_at": "2024-01-01"}`), &tt))
	require.NotNil(t, tt.ResolvedAt)
	assert.Equal(t, "5", *tt.ResolvedAt)
	assert.Nil(t, tt.ClosedAt)
	require.NotNil(t, tt.FirstRespondedAt)
	assert.Equal(t, "2024-01-01", *tt.FirstRespondedAt)
}

func TestIsClosedStatus(t *testing.T) {
	for _, s := range []string{"Closed", "RESOLVED", "Resolved - pending survey", "auto-closed"} {
		assert.True(t, IsClosedStatus(s), s)
	}
	for _, s := range []string{"", "Open", "Pending", "Waiting on Customer"} {
		assert.False(t, IsClosedStatus(s), s)
	}
}

func TestTicket_EmptyLabelIsNotAvailable(t *testing.T) {
	empty := ""
	tk := Ticket{Type: &empty}
	assert.Equal(t, LabelNotAvailable, tk.TypeLabel())
	assert.Equal(t, "", tk.ResolvedAtRaw())
	assert.Equal(t, "", tk.FirstRespondedAtRaw())
	assert.False(t, tk.IsProactive())
	assert.Empty(t, tk.Ratings())
}

func TestClientInfo_DisplayName(t *testing.T) {
	assert.Equal(t, "Acme", ClientInfo{ID: "5", Name: "Acme"}.DisplayName())
	assert.Equal(t, "Client_5", ClientInfo{ID: "5"}.DisplayName())
	assert.Equal(t, "Unknown client", ClientInfo{}.DisplayName())
}
