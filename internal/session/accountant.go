// Package session owns the session lifecycle: the accountant is the money
// truth layer, the controller sequences evaluation ticks and dispatches.
package session

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"otc-trader/internal/config"
	"otc-trader/internal/errors"
	"otc-trader/internal/models"
)

// Accountant is the single writer of SessionState. It applies trade results,
// maintains the streak and martingale step, and evaluates the stop
// conditions in their fixed order.
type Accountant struct {
	settings config.Settings
	state    models.SessionState
	log      zerolog.Logger
}

// NewAccountant creates an accountant in the Idle state from a validated
// settings snapshot.
func NewAccountant(settings config.Settings, log zerolog.Logger) *Accountant {
	return &Accountant{
		settings: settings,
		state: models.SessionState{
			Status:       models.StateIdle,
			TradeCapital: settings.TradeCapital,
		},
		log: log.With().Str("component", "accountant").Logger(),
	}
}

// State returns a copy of the current session state.
func (a *Accountant) State() models.SessionState {
	return a.state
}

// Start transitions Idle -> Running.
func (a *Accountant) Start(now time.Time) error {
	if a.state.Status != models.StateIdle {
		if a.state.Status == models.StateStopped {
			return errors.ErrSessionStopped
		}
		return errors.Wrapf(errors.ErrSessionNotRunning, "cannot start from %s", a.state.Status)
	}
	a.state.Status = models.StateRunning
	a.state.StartedAt = now
	a.log.Info().Float64("capital", a.state.TradeCapital).Msg("session started")
	return nil
}

// Pause transitions Running -> Paused.
func (a *Accountant) Pause() error {
	if a.state.Status != models.StateRunning {
		return errors.ErrSessionNotRunning
	}
	a.state.Status = models.StatePaused
	a.log.Info().Msg("session paused")
	return nil
}

// Resume transitions Paused -> Running.
func (a *Accountant) Resume() error {
	if a.state.Status != models.StatePaused {
		return errors.Wrapf(errors.ErrSessionNotRunning, "cannot resume from %s", a.state.Status)
	}
	a.state.Status = models.StateRunning
	a.log.Info().Msg("session resumed")
	return nil
}

// Stop transitions Running or Paused -> Stopped. Stopped is terminal; a new
// session requires a fresh accountant.
func (a *Accountant) Stop(reason models.StopReason, now time.Time) error {
	if a.state.Status == models.StateStopped {
		return errors.ErrSessionStopped
	}
	a.state.Status = models.StateStopped
	a.state.StopReason = reason
	a.state.StoppedAt = now
	a.log.Info().Str("reason", string(reason)).Float64("profit", a.state.SessionProfit).Msg("session stopped")
	return nil
}

// ApplyResult applies a resolved trade to the session truth and returns the
// realized P/L. A win pays stake * payout_rate; a loss costs the stake. The
// result of an in-flight trade is applied even after Stop, but never while
// Idle. Voided trades must not reach this method.
func (a *Accountant) ApplyResult(stake models.StakeDecision, outcome models.Outcome) float64 {
	var pnl float64
	switch outcome {
	case models.OutcomeWin:
		pnl = roundCents(stake.Amount * a.settings.PayoutRate)
		a.state.WinCount++
		if a.state.CurrentStreak > 0 {
			a.state.CurrentStreak++
		} else {
			a.state.CurrentStreak = 1
		}
		a.state.MartingaleStep = 0
	case models.OutcomeLoss:
		pnl = -stake.Amount
		a.state.LossCount++
		if a.state.CurrentStreak < 0 {
			a.state.CurrentStreak--
		} else {
			a.state.CurrentStreak = -1
		}
		a.state.MartingaleStep++
	default:
		return 0
	}

	a.state.TradeCount++
	a.state.SessionProfit = roundCents(a.state.SessionProfit + pnl)
	a.state.LastStake = stake.Amount

	a.log.Debug().
		Str("outcome", string(outcome)).
		Float64("stake", stake.Amount).
		Float64("pnl", pnl).
		Float64("session_profit", a.state.SessionProfit).
		Int("streak", a.state.CurrentStreak).
		Int("martingale_step", a.state.MartingaleStep).
		Msg("trade result applied")

	return pnl
}

// EvaluateStops checks the stop conditions in fixed order against the next
// proposed stake: target reached, martingale limit reached, capital
// guardrail. The first satisfied condition is the reported reason. A
// martingale limit of zero disables the limit check.
func (a *Accountant) EvaluateStops(next models.StakeDecision) (models.StopReason, bool) {
	if a.state.SessionProfit >= a.settings.TargetProfit {
		return models.StopTargetReached, true
	}
	if !a.settings.DisableMartingale && a.settings.MartingaleLimit > 0 &&
		a.state.MartingaleStep >= a.settings.MartingaleLimit {
		return models.StopMartingaleLimit, true
	}
	if next.Amount > a.state.RemainingCapital() {
		return models.StopGuardrailBreach, true
	}
	return "", false
}

// Summary archives the current state for the journal.
func (a *Accountant) Summary(sessionID string) models.SessionSummary {
	return models.SessionSummary{
		ID:            sessionID,
		StartedAt:     a.state.StartedAt,
		StoppedAt:     a.state.StoppedAt,
		TradeCapital:  a.state.TradeCapital,
		SessionProfit: a.state.SessionProfit,
		TradeCount:    a.state.TradeCount,
		WinCount:      a.state.WinCount,
		LossCount:     a.state.LossCount,
		StopReason:    a.state.StopReason,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
