package broker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otc-trader/internal/models"
)

// collectOutcomes submits one trade per confidence value and drains all
// results before closing, so no resolution goroutine is dropped mid-flight.
func collectOutcomes(t *testing.T, seed int64, confidences []float64) []models.Outcome {
	t.Helper()
	s := NewSimulatedAdapter(SimulatedConfig{Seed: seed}, zerolog.Nop())

	for i, c := range confidences {
		signal := testSignal("EURUSD_otc")
		signal.Confidence = c
		require.NoError(t, s.Submit(context.Background(), fmt.Sprintf("T%03d", i), signal, models.StakeDecision{Amount: 1}))
	}

	byID := map[string]models.Outcome{}
	timeout := time.After(5 * time.Second)
	for len(byID) < len(confidences) {
		select {
		case res := <-s.Results():
			byID[res.TradeID] = res.Outcome
		case <-timeout:
			t.Fatalf("timed out after %d of %d results", len(byID), len(confidences))
		}
	}
	require.NoError(t, s.Close())

	outcomes := make([]models.Outcome, len(confidences))
	for i := range confidences {
		outcomes[i] = byID[fmt.Sprintf("T%03d", i)]
	}
	return outcomes
}

func TestSimulatedOutcomesAreSeedDeterministic(t *testing.T) {
	confidences := []float64{0.2, 0.9, 0.5, 0.7, 0.1, 0.6, 0.3, 0.8}

	first := collectOutcomes(t, 42, confidences)
	second := collectOutcomes(t, 42, confidences)
	assert.Equal(t, first, second)
}

// Confidence 1.0 clamps to a 0.95 win probability and 0.0 to 0.05, so over
// enough trades both outcomes must appear at either extreme.
func TestSimulatedConfidenceIsClamped(t *testing.T) {
	high := collectOutcomes(t, 7, repeat(1.0, 200))
	low := collectOutcomes(t, 7, repeat(0.0, 200))

	assert.Contains(t, high, models.OutcomeLoss)
	assert.Contains(t, low, models.OutcomeWin)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestSimulatedSubmitAfterCloseRejected(t *testing.T) {
	s := NewSimulatedAdapter(SimulatedConfig{Seed: 1}, zerolog.Nop())
	require.NoError(t, s.Close())

	err := s.Submit(context.Background(), "T1", testSignal("EURUSD_otc"), models.StakeDecision{Amount: 1})
	require.Error(t, err)
}

func TestSimulatedResolveDelayHonorsContext(t *testing.T) {
	s := NewSimulatedAdapter(SimulatedConfig{Seed: 1, ResolveDelay: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Submit(ctx, "T1", testSignal("EURUSD_otc"), models.StakeDecision{Amount: 1}))
	cancel()

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("close blocked on cancelled resolution")
	}

	_, open := <-s.Results()
	assert.False(t, open)
}
