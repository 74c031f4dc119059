package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otc-trader/internal/models"
)

func newTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func sampleSignal(pair string, tick uint64) models.Signal {
	return models.Signal{
		Pair:        pair,
		Expiry:      models.ExpiryS5,
		Direction:   models.DirectionBuy,
		GeneratedAt: tick,
		Confidence:  0.67,
		Reason:      "oscillate: RSI oversold (22.1), trend non-bearish",
		Snapshot:    models.IndicatorSnapshot{RSI: 22.1, FastMA: 1.31, SlowMA: 1.3},
		Timestamp:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAppendAndQueryTrades(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	opened := time.Date(2025, 6, 1, 10, 0, 5, 0, time.UTC)
	trade := &models.TradeRecord{
		ID:           "01TRADE",
		SessionID:    "01SESSION",
		Signal:       sampleSignal("EURUSD_otc", 5),
		Stake:        models.StakeDecision{Amount: 1.8, Basis: models.StakeMartingaleEscalated, StepAfter: 2},
		Adapter:      "simulated",
		OpenedAt:     opened,
		ResolvedAt:   opened.Add(5 * time.Second),
		Result:       models.OutcomeWin,
		PayoutAmount: 1.48,
	}
	require.NoError(t, j.AppendTrade(ctx, trade))

	trades, err := j.Trades(ctx, "01SESSION")
	require.NoError(t, err)
	require.Len(t, trades, 1)

	got := trades[0]
	assert.Equal(t, "01TRADE", got.ID)
	assert.Equal(t, "EURUSD_otc", got.Signal.Pair)
	assert.Equal(t, models.DirectionBuy, got.Signal.Direction)
	assert.Equal(t, models.ExpiryS5, got.Signal.Expiry)
	assert.Equal(t, 1.8, got.Stake.Amount)
	assert.Equal(t, models.StakeMartingaleEscalated, got.Stake.Basis)
	assert.Equal(t, models.OutcomeWin, got.Result)
	assert.Equal(t, 1.48, got.PayoutAmount)

	other, err := j.Trades(ctx, "UNKNOWN")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTradesOrderedByOpenTime(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"01C", "01A", "01B"} {
		offsets := []time.Duration{20 * time.Second, 0, 10 * time.Second}
		trade := &models.TradeRecord{
			ID:        id,
			SessionID: "S",
			Signal:    sampleSignal("EURUSD_otc", uint64(i)),
			Stake:     models.StakeDecision{Amount: 1, Basis: models.StakeBase},
			OpenedAt:  base.Add(offsets[i]),
			Result:    models.OutcomeLoss,
		}
		require.NoError(t, j.AppendTrade(ctx, trade))
	}

	trades, err := j.Trades(ctx, "S")
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "01A", trades[0].ID)
	assert.Equal(t, "01B", trades[1].ID)
	assert.Equal(t, "01C", trades[2].ID)
}

func TestAppendAndQuerySessions(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		summary := models.SessionSummary{
			ID:            string(rune('A' + i)),
			StartedAt:     base.Add(time.Duration(i) * time.Hour),
			StoppedAt:     base.Add(time.Duration(i)*time.Hour + 30*time.Minute),
			TradeCapital:  100,
			SessionProfit: float64(i),
			TradeCount:    i,
			StopReason:    models.StopTargetReached,
		}
		require.NoError(t, j.AppendSession(ctx, summary))
	}

	sessions, err := j.Sessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// Newest first.
	assert.Equal(t, "C", sessions[0].ID)
	assert.Equal(t, "B", sessions[1].ID)
	assert.Equal(t, models.StopTargetReached, sessions[0].StopReason)
}

func TestRecentSignalsNewestFirst(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	for tick := uint64(1); tick <= 5; tick++ {
		require.NoError(t, j.AppendSignal(ctx, "S", sampleSignal("EURUSD_otc", tick)))
	}

	signals, err := j.RecentSignals(ctx, 3)
	require.NoError(t, err)
	require.Len(t, signals, 3)
	assert.Equal(t, uint64(5), signals[0].GeneratedAt)
	assert.Equal(t, uint64(3), signals[2].GeneratedAt)
	assert.Equal(t, 22.1, signals[0].Snapshot.RSI)
}

func TestDuplicateTradeIDRejected(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	trade := &models.TradeRecord{
		ID:        "01DUP",
		SessionID: "S",
		Signal:    sampleSignal("EURUSD_otc", 1),
		Stake:     models.StakeDecision{Amount: 1, Basis: models.StakeBase},
		OpenedAt:  time.Now().UTC(),
		Result:    models.OutcomeWin,
	}
	require.NoError(t, j.AppendTrade(ctx, trade))
	assert.Error(t, j.AppendTrade(ctx, trade))
}
