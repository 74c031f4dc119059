package models

import "time"

// LifecycleState is the session status.
type LifecycleState string

const (
	StateIdle    LifecycleState = "idle"
	StateRunning LifecycleState = "running"
	StatePaused  LifecycleState = "paused"
	StateStopped LifecycleState = "stopped"
)

// StopReason records why a session stopped. The first three are successful
// terminations, not failures.
type StopReason string

const (
	StopTargetReached   StopReason = "target_profit_reached"
	StopMartingaleLimit StopReason = "martingale_limit_reached"
	StopGuardrailBreach StopReason = "capital_guardrail"
	StopUserRequested   StopReason = "user_stop"
)

// SessionState is the session-level money truth. It is mutated only by the
// accountant; RemainingCapital is always derived, never stored.
type SessionState struct {
	Status         LifecycleState
	TradeCapital   float64
	SessionProfit  float64
	TradeCount     int
	WinCount       int
	LossCount      int
	CurrentStreak  int // positive: consecutive wins, negative: consecutive losses
	MartingaleStep int
	LastStake      float64
	StartedAt      time.Time
	StoppedAt      time.Time
	StopReason     StopReason
}

// RemainingCapital is recomputed from capital and realized profit.
func (s SessionState) RemainingCapital() float64 {
	return s.TradeCapital + s.SessionProfit
}

// SessionSummary is the archived form of a finished session, handed to the
// journal on stop.
type SessionSummary struct {
	ID            string
	StartedAt     time.Time
	StoppedAt     time.Time
	TradeCapital  float64
	SessionProfit float64
	TradeCount    int
	WinCount      int
	LossCount     int
	StopReason    StopReason
}
