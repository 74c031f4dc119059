// Package broker provides execution adapter interfaces and implementations.
package broker

import (
	"context"

	"otc-trader/internal/models"
)

// Adapter is the execution boundary. The session controller is the only
// component that calls it, and adapters are interchangeable: the core never
// branches on which variant is active.
//
// Submit dispatches a trade; the resolution arrives later on Results. A
// Submit error means the trade was never placed; the caller must not count
// it as a loss and must not retry with the same stake decision.
type Adapter interface {
	Name() string
	Submit(ctx context.Context, tradeID string, signal models.Signal, stake models.StakeDecision) error
	Results() <-chan models.TradeResult
	Close() error
}
