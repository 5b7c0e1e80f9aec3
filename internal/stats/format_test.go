package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"zero", 0, "0m"},
		{"under a minute", 45 * time.Second, "< 1m"},
		{"hour and minute", 3661 * time.Second, "1h 1m"},
		{"exact days", 48 * time.Hour, "2d"},
		{"all units", 26*time.Hour + 5*time.Minute + 59*time.Second, "1d 2h 5m"},
		{"day and minutes", 24*time.Hour + 30*time.Minute, "1d 30m"},
		{"sub second", 500 * time.Millisecond, "0m"},
		{"negative", -5 * time.Second, NotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestFormatOptionalDuration(t *testing.T) {
	assert.Equal(t, NotAvailable, FormatOptionalDuration(nil))
	d := 90 * time.Minute
	assert.Equal(t, "1h 30m", FormatOptionalDuration(&d))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "2d", FormatSeconds(172800))
	assert.Equal(t, "< 1m", FormatSeconds(59.9))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "75.0%", Percent(3, 4))
	assert.Equal(t, "33.3%", Percent(1, 3))
	assert.Equal(t, "0.0%", Percent(0, 2))
	assert.Equal(t, NotAvailable, Percent(0, 0))
}

func TestSatisfactionSummary(t *testing.T) {
	assert.Equal(t, NotAvailable, SatisfactionSummary(nil))
	assert.Equal(t, "66.7% Positive", SatisfactionSummary([]int{5, 4, 2}))
	assert.Equal(t, "0.0% Positive", SatisfactionSummary([]int{1, 3}))
}
