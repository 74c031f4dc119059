package broker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"otc-trader/internal/errors"
	"otc-trader/internal/models"
)

// ManualAdapter asks the operator to place each trade by hand and to report
// the outcome afterwards. Submit only announces the instruction; Resolve
// feeds the operator's answer back into the result stream.
type ManualAdapter struct {
	log     zerolog.Logger
	results chan models.TradeResult

	mu     sync.Mutex
	open   map[string]string // tradeID -> pair
	closed bool
}

// NewManualAdapter creates a manual-confirmation adapter.
func NewManualAdapter(log zerolog.Logger) *ManualAdapter {
	return &ManualAdapter{
		log:     log.With().Str("adapter", "manual").Logger(),
		results: make(chan models.TradeResult, 16),
		open:    map[string]string{},
	}
}

func (m *ManualAdapter) Name() string { return "manual" }

// Submit records the trade as awaiting operator confirmation.
func (m *ManualAdapter) Submit(ctx context.Context, tradeID string, signal models.Signal, stake models.StakeDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.NewAdapterError(m.Name(), "submit", errors.ErrAdapterClosed)
	}
	m.open[tradeID] = signal.Pair

	m.log.Info().
		Str("trade_id", tradeID).
		Str("pair", signal.Pair).
		Str("direction", string(signal.Direction)).
		Str("expiry", string(signal.Expiry)).
		Float64("stake", stake.Amount).
		Msg("manual mode: place this trade, then record win or loss")
	return nil
}

// Resolve reports the operator-observed outcome for an open trade.
func (m *ManualAdapter) Resolve(tradeID string, outcome models.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pair, ok := m.open[tradeID]
	if !ok {
		return errors.ErrUnknownTrade
	}
	if m.closed {
		return errors.NewAdapterError(m.Name(), "resolve", errors.ErrAdapterClosed)
	}
	delete(m.open, tradeID)

	// The send stays under the lock so a concurrent Close cannot close the
	// channel between the state check and the send.
	m.results <- models.TradeResult{TradeID: tradeID, Pair: pair, Outcome: outcome}
	return nil
}

// OpenTrades returns the ids of trades awaiting operator confirmation.
func (m *ManualAdapter) OpenTrades() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.open))
	for id := range m.open {
		ids = append(ids, id)
	}
	return ids
}

func (m *ManualAdapter) Results() <-chan models.TradeResult { return m.results }

func (m *ManualAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.results)
	}
	return nil
}
