// Package indicators implements the technical indicators consumed by the
// signal engine. All indicators share the same contract: Calculate returns
// one value per input candle, with leading entries zero until the period is
// warm.
package indicators

import "otc-trader/internal/models"

// Indicator is the shared contract of all technical indicators.
type Indicator interface {
	Name() string
	Calculate(candles []models.Candle) ([]float64, error)
	Period() int
}

var (
	_ Indicator = (*RSI)(nil)
	_ Indicator = (*SMA)(nil)
)
