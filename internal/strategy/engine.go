// Package strategy provides the indicator-driven signal engine.
package strategy

import (
	"fmt"
	"math"
	"time"

	"otc-trader/internal/analysis/indicators"
	"otc-trader/internal/config"
	"otc-trader/internal/models"
)

const (
	rsiPeriod       = 14
	fastMAPeriod    = 5
	slowMAPeriod    = 20
	oversoldLevel   = 30
	overboughtLevel = 70
)

// pairLock tracks anti-spam state for one pair. A pair is locked while a
// trade is pending on it, and for the configured number of ticks after a
// signal was emitted.
type pairLock struct {
	cooldownUntil uint64
	pending       bool
}

// Engine evaluates candle history into directional signals. It emits at most
// one signal per pair per tick and suppresses repeats for a pair while its
// lock is active. All methods are invoked from the controller's tick loop
// only, so the engine needs no internal synchronization.
type Engine struct {
	settings config.Settings
	rsi      *indicators.RSI
	fastMA   *indicators.SMA
	slowMA   *indicators.SMA
	locks    map[string]*pairLock
}

// NewEngine creates a signal engine bound to locked settings.
func NewEngine(settings config.Settings) *Engine {
	return &Engine{
		settings: settings,
		rsi:      indicators.NewRSI(rsiPeriod),
		fastMA:   indicators.NewSMA(fastMAPeriod),
		slowMA:   indicators.NewSMA(slowMAPeriod),
		locks:    map[string]*pairLock{},
	}
}

// MinHistory is the number of candles required before the engine can
// evaluate a pair. Shorter histories yield no signal, never an error.
func (e *Engine) MinHistory() int {
	return slowMAPeriod + 1
}

// Locked reports whether the pair is suppressed at the given tick, either by
// a pending trade or by the post-emission cooldown.
func (e *Engine) Locked(pair string, tick uint64) bool {
	l, ok := e.locks[pair]
	if !ok {
		return false
	}
	return l.pending || tick < l.cooldownUntil
}

// MarkPending flags a pair as having an in-flight trade. No further signal
// is emitted for the pair until ResolvePending is called.
func (e *Engine) MarkPending(pair string) {
	e.lock(pair).pending = true
}

// ResolvePending clears the pending flag after the pair's trade resolved or
// was voided. The tick cooldown set at emission remains in force.
func (e *Engine) ResolvePending(pair string) {
	if l, ok := e.locks[pair]; ok {
		l.pending = false
	}
}

// Evaluate computes the indicator decision for one pair at the given logical
// tick. Candles are ordered oldest first. It returns nil when the pair is
// locked, history is too short, or no decision-table row matches.
func (e *Engine) Evaluate(pair string, candles []models.Candle, tick uint64, now time.Time) *models.Signal {
	if e.Locked(pair, tick) {
		return nil
	}
	if len(candles) < e.MinHistory() {
		return nil
	}

	rsiValues, err := e.rsi.Calculate(candles)
	if err != nil {
		return nil
	}
	fastValues, err := e.fastMA.Calculate(candles)
	if err != nil {
		return nil
	}
	slowValues, err := e.slowMA.Calculate(candles)
	if err != nil {
		return nil
	}

	last := len(candles) - 1
	snapshot := models.IndicatorSnapshot{
		RSI:    rsiValues[last],
		FastMA: fastValues[last],
		SlowMA: slowValues[last],
	}

	direction, reason, ok := e.decide(snapshot)
	if !ok {
		return nil
	}

	signal := &models.Signal{
		Pair:        pair,
		Expiry:      e.settings.TimePeriod,
		Direction:   direction,
		GeneratedAt: tick,
		Confidence:  confidence(snapshot),
		Reason:      reason,
		Snapshot:    snapshot,
		Timestamp:   now,
	}

	l := e.lock(pair)
	l.cooldownUntil = tick + uint64(e.settings.CooldownTicks) + 1
	return signal
}

// decide applies the mode decision table to an indicator snapshot.
func (e *Engine) decide(s models.IndicatorSnapshot) (models.Direction, string, bool) {
	switch e.settings.Mode {
	case models.ModeSlide:
		// Trend must match the configured bias; the oscillator is ignored.
		if e.settings.SlideDirection == models.DirectionBuy && s.FastMA > s.SlowMA {
			return models.DirectionBuy, "slide: uptrend", true
		}
		if e.settings.SlideDirection == models.DirectionSell && s.FastMA < s.SlowMA {
			return models.DirectionSell, "slide: downtrend", true
		}
	default: // oscillate
		if s.RSI <= oversoldLevel && s.FastMA >= s.SlowMA {
			return models.DirectionBuy, fmt.Sprintf("oscillate: RSI oversold (%.1f), trend non-bearish", s.RSI), true
		}
		if s.RSI >= overboughtLevel && s.FastMA <= s.SlowMA {
			return models.DirectionSell, fmt.Sprintf("oscillate: RSI overbought (%.1f), trend non-bullish", s.RSI), true
		}
	}
	return "", "", false
}

// confidence blends oscillator extremity with trend separation into [0, 0.99].
func confidence(s models.IndicatorSnapshot) float64 {
	extremity := math.Abs(s.RSI-50) / 50
	var separation float64
	if s.SlowMA != 0 {
		separation = math.Abs(s.FastMA-s.SlowMA) / s.SlowMA
	}
	trendStrength := math.Min(separation*100, 1)
	c := 0.6*extremity + 0.4*trendStrength
	return math.Round(math.Min(c, 0.99)*100) / 100
}

func (e *Engine) lock(pair string) *pairLock {
	l, ok := e.locks[pair]
	if !ok {
		l = &pairLock{}
		e.locks[pair] = l
	}
	return l
}
