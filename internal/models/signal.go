package models

import "time"

// IndicatorSnapshot captures the indicator values that produced a signal,
// kept on the signal for audit.
type IndicatorSnapshot struct {
	RSI    float64
	FastMA float64
	SlowMA float64
}

// Signal is a directional trade proposal for one pair and expiry.
// GeneratedAt is a logical tick id, not wall time, so that emission is
// deterministic under replay.
type Signal struct {
	Pair        string
	Expiry      Expiry
	Direction   Direction
	GeneratedAt uint64
	Confidence  float64
	Reason      string
	Snapshot    IndicatorSnapshot
	Timestamp   time.Time
}

// StakeBasis records how a stake amount was derived.
type StakeBasis string

const (
	StakeBase                StakeBasis = "base"
	StakeMartingaleEscalated StakeBasis = "martingale_escalated"
)

// StakeDecision is the amount proposed for the next trade. It is produced
// fresh per attempt and never persisted apart from the trade it funds.
type StakeDecision struct {
	Amount    float64
	Basis     StakeBasis
	StepAfter int
}
