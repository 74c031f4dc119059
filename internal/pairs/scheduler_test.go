package pairs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"otc-trader/internal/models"
)

func pairConfig(enabled bool, windows ...models.ScheduleWindow) models.PairConfig {
	return models.PairConfig{
		Pair:            "EURUSD_otc",
		Enabled:         enabled,
		AllowedExpiries: []models.Expiry{models.ExpiryS5, models.ExpiryM1},
		ScheduleWindows: windows,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func TestCanTradeDisabledPair(t *testing.T) {
	s := NewScheduler(time.UTC)
	assert.False(t, s.CanTrade(pairConfig(false), models.ExpiryS5, at(12, 0)))
}

func TestCanTradeExpiryNotAllowed(t *testing.T) {
	s := NewScheduler(time.UTC)
	assert.False(t, s.CanTrade(pairConfig(true), models.ExpiryM5, at(12, 0)))
}

func TestCanTradeNoWindowsMeansAlways(t *testing.T) {
	s := NewScheduler(time.UTC)
	assert.True(t, s.CanTrade(pairConfig(true), models.ExpiryS5, at(3, 30)))
}

func TestCanTradeWindowBounds(t *testing.T) {
	s := NewScheduler(time.UTC)
	window := models.ScheduleWindow{Start: 9 * 60, End: 17*60 + 59} // 09:00-17:59

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before open", at(8, 59), false},
		{"at open", at(9, 0), true},
		{"midday", at(13, 30), true},
		{"last minute", at(17, 59), true},
		{"after close", at(18, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.CanTrade(pairConfig(true, window), models.ExpiryS5, tc.now))
		})
	}
}

// Overnight windows wrap past midnight.
func TestCanTradeWrappingWindow(t *testing.T) {
	s := NewScheduler(time.UTC)
	window := models.ScheduleWindow{Start: 22 * 60, End: 2*60 + 59} // 22:00-02:59

	assert.True(t, s.CanTrade(pairConfig(true, window), models.ExpiryS5, at(23, 15)))
	assert.True(t, s.CanTrade(pairConfig(true, window), models.ExpiryS5, at(1, 0)))
	assert.False(t, s.CanTrade(pairConfig(true, window), models.ExpiryS5, at(12, 0)))
}

func TestCanTradeRespectsLocation(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	s := NewScheduler(kolkata)
	window := models.ScheduleWindow{Start: 9 * 60, End: 17*60 + 59}

	// 05:00 UTC is 10:30 in Kolkata: inside the window there, outside in UTC.
	now := time.Date(2025, 6, 2, 5, 0, 0, 0, time.UTC)
	assert.True(t, s.CanTrade(pairConfig(true, window), models.ExpiryS5, now))
	assert.False(t, NewScheduler(time.UTC).CanTrade(pairConfig(true, window), models.ExpiryS5, now))
}

func TestEligibleSortsAndFilters(t *testing.T) {
	s := NewScheduler(time.UTC)
	configs := []models.PairConfig{
		{Pair: "GBPUSD_otc", Enabled: true, AllowedExpiries: []models.Expiry{models.ExpiryS5}},
		{Pair: "EURUSD_otc", Enabled: true, AllowedExpiries: []models.Expiry{models.ExpiryS5}},
		{Pair: "USDJPY_otc", Enabled: false, AllowedExpiries: []models.Expiry{models.ExpiryS5}},
		{Pair: "AUDUSD_otc", Enabled: true, AllowedExpiries: []models.Expiry{models.ExpiryM1}},
	}

	got := s.Eligible(configs, models.ExpiryS5, at(12, 0))
	assert.Equal(t, []string{"EURUSD_otc", "GBPUSD_otc"}, got)
}
