package notify

import (
	"context"

	"github.com/rs/zerolog"

	"otc-trader/internal/models"
	"otc-trader/pkg/utils"
)

// TerminalNotifier writes session events to the structured log.
type TerminalNotifier struct {
	log zerolog.Logger
}

// NewTerminalNotifier creates a terminal notifier.
func NewTerminalNotifier(log zerolog.Logger) *TerminalNotifier {
	return &TerminalNotifier{log: log.With().Str("component", "notify").Logger()}
}

func (t *TerminalNotifier) SignalEmitted(ctx context.Context, signal models.Signal, stake models.StakeDecision) {
	t.log.Info().
		Str("pair", signal.Pair).
		Str("direction", string(signal.Direction)).
		Str("expiry", string(signal.Expiry)).
		Float64("confidence", signal.Confidence).
		Str("stake", utils.FormatMoney(stake.Amount)).
		Str("basis", string(stake.Basis)).
		Msg("signal")
}

func (t *TerminalNotifier) TradeResolved(ctx context.Context, trade *models.TradeRecord, state models.SessionState) {
	t.log.Info().
		Str("pair", trade.Signal.Pair).
		Str("result", string(trade.Result)).
		Str("pnl", utils.FormatMoney(trade.PayoutAmount)).
		Str("session_profit", utils.FormatMoney(state.SessionProfit)).
		Int("trades", state.TradeCount).
		Msg("trade resolved")
}

func (t *TerminalNotifier) AdapterFailure(ctx context.Context, pair string, err error) {
	t.log.Error().
		Str("pair", pair).
		Err(err).
		Msg("execution adapter failure; trade not counted")
}

func (t *TerminalNotifier) SessionStopped(ctx context.Context, summary models.SessionSummary) {
	t.log.Info().
		Str("session_id", summary.ID).
		Str("reason", string(summary.StopReason)).
		Str("session_profit", utils.FormatMoney(summary.SessionProfit)).
		Int("trades", summary.TradeCount).
		Int("wins", summary.WinCount).
		Int("losses", summary.LossCount).
		Msg("session stopped")
}
