// Package models contains the core domain types shared across the application.
package models

import (
	"strings"
	"time"
)

// Direction represents the side of a binary-option trade.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Outcome represents the resolution of a trade.
type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomePending Outcome = "pending"
	// OutcomeVoid marks an indeterminate trade the operator voided; it is
	// excluded from streak and profit math.
	OutcomeVoid Outcome = "void"
)

// Mode represents the strategy mode.
type Mode string

const (
	// ModeOscillate trades both directions off oscillator extremes.
	ModeOscillate Mode = "oscillate"
	// ModeSlide trades a single direction whenever the trend agrees.
	ModeSlide Mode = "slide"
)

// ExecutionMode selects which execution adapter handles dispatched trades.
type ExecutionMode string

const (
	ExecutionManual    ExecutionMode = "manual"
	ExecutionSimulated ExecutionMode = "simulated"
)

// Expiry is a binary-option expiry bucket.
type Expiry string

const (
	ExpiryS5  Expiry = "S5"
	ExpiryS10 Expiry = "S10"
	ExpiryS15 Expiry = "S15"
	ExpiryS30 Expiry = "S30"
	ExpiryM1  Expiry = "M1"
	ExpiryM2  Expiry = "M2"
	ExpiryM5  Expiry = "M5"
)

// ValidExpiries lists every supported expiry bucket.
var ValidExpiries = []Expiry{ExpiryS5, ExpiryS10, ExpiryS15, ExpiryS30, ExpiryM1, ExpiryM2, ExpiryM5}

// IsValid reports whether the expiry is one of the supported buckets.
func (e Expiry) IsValid() bool {
	for _, v := range ValidExpiries {
		if e == v {
			return true
		}
	}
	return false
}

// Duration returns the wall-clock length of the expiry bucket.
func (e Expiry) Duration() time.Duration {
	switch e {
	case ExpiryS5:
		return 5 * time.Second
	case ExpiryS10:
		return 10 * time.Second
	case ExpiryS15:
		return 15 * time.Second
	case ExpiryS30:
		return 30 * time.Second
	case ExpiryM1:
		return time.Minute
	case ExpiryM2:
		return 2 * time.Minute
	case ExpiryM5:
		return 5 * time.Minute
	default:
		return 0
	}
}

// Candle represents a single OHLCV candle.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// ScheduleWindow is a trading window expressed as minutes from midnight in
// the scheduler's timezone. A window with Start > End wraps past midnight.
type ScheduleWindow struct {
	Start int
	End   int
}

// Contains reports whether the given minute-of-day falls inside the window.
func (w ScheduleWindow) Contains(minute int) bool {
	if w.Start <= w.End {
		return minute >= w.Start && minute <= w.End
	}
	return minute >= w.Start || minute <= w.End
}

// PairConfig describes a tradable OTC pair and its eligibility constraints.
type PairConfig struct {
	Pair            string           `mapstructure:"pair"`
	Enabled         bool             `mapstructure:"enabled"`
	AllowedExpiries []Expiry         `mapstructure:"allowed_expiries"`
	ScheduleWindows []ScheduleWindow `mapstructure:"-"`
}

// AllowsExpiry reports whether the expiry is in the pair's allowed set.
func (p PairConfig) AllowsExpiry(expiry Expiry) bool {
	for _, e := range p.AllowedExpiries {
		if e == expiry {
			return true
		}
	}
	return false
}

// CanonicalPair normalizes a pair name to its journal form: an upper-case
// symbol with a lower-case "_otc" suffix. Profiles round-trip through viper,
// which lower-cases TOML map keys.
func CanonicalPair(name string) string {
	up := strings.ToUpper(strings.TrimSpace(name))
	if strings.HasSuffix(up, "_OTC") {
		return up[:len(up)-4] + "_otc"
	}
	return up
}
