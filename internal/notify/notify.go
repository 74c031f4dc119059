// Package notify provides operator-visible notifications for session events.
package notify

import (
	"context"

	"otc-trader/internal/models"
)

// Notifier delivers operator-visible session events. Only the session
// controller produces notifications; the decision components never do.
type Notifier interface {
	SignalEmitted(ctx context.Context, signal models.Signal, stake models.StakeDecision)
	TradeResolved(ctx context.Context, trade *models.TradeRecord, state models.SessionState)
	AdapterFailure(ctx context.Context, pair string, err error)
	SessionStopped(ctx context.Context, summary models.SessionSummary)
}
