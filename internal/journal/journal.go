// Package journal provides append-only persistence for sessions, trades and
// signals.
package journal

import (
	"context"

	"otc-trader/internal/models"
)

// Journal is the persistence boundary. The core only appends during a
// session and never reads back its own writes mid-session; the query side
// exists for the operator.
type Journal interface {
	AppendSignal(ctx context.Context, sessionID string, signal models.Signal) error
	AppendTrade(ctx context.Context, trade *models.TradeRecord) error
	AppendSession(ctx context.Context, summary models.SessionSummary) error

	Trades(ctx context.Context, sessionID string) ([]models.TradeRecord, error)
	Sessions(ctx context.Context, limit int) ([]models.SessionSummary, error)
	RecentSignals(ctx context.Context, limit int) ([]models.Signal, error)

	Close() error
}
