// Package risk provides stake sizing for the session engine.
package risk

import (
	"math"

	"otc-trader/internal/config"
	"otc-trader/internal/models"
)

// MartingaleEngine computes the next stake from the running streak. It only
// proposes an amount; the accountant is the sole authority that may veto a
// trade before dispatch, so no guardrail check happens here.
type MartingaleEngine struct {
	settings config.Settings
}

// NewMartingaleEngine creates a stake engine bound to locked settings.
func NewMartingaleEngine(settings config.Settings) *MartingaleEngine {
	return &MartingaleEngine{settings: settings}
}

// NextStake returns the stake for the next trade attempt.
//
// After a win, or with no prior trade, or with martingale disabled, the
// stake resets to the base trade amount. After a loss the previous stake is
// escalated by martingale_percent; a percent of zero degenerates into a
// flat repeat of the losing stake, which is valid.
func (m *MartingaleEngine) NextStake(state models.SessionState) models.StakeDecision {
	if m.settings.DisableMartingale || state.CurrentStreak >= 0 || state.LastStake == 0 {
		return models.StakeDecision{
			Amount:    m.settings.TradeAmount,
			Basis:     models.StakeBase,
			StepAfter: 0,
		}
	}

	amount := roundCents(state.LastStake * (1 + m.settings.MartingalePercent/100))
	return models.StakeDecision{
		Amount:    amount,
		Basis:     models.StakeMartingaleEscalated,
		StepAfter: state.MartingaleStep + 1,
	}
}

// roundCents rounds a money amount to two decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
