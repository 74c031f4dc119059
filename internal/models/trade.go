package models

import "time"

// TradeRecord is created by the controller at dispatch time, finalized by
// the accountant on the result callback, then handed to the journal. The
// core does not retain it after handoff.
type TradeRecord struct {
	ID           string
	SessionID    string
	Signal       Signal
	Stake        StakeDecision
	Adapter      string
	OpenedAt     time.Time
	ResolvedAt   time.Time
	Result       Outcome
	PayoutAmount float64 // signed realized P/L: +stake*payout_rate on win, -stake on loss
}

// TradeResult is the adapter's resolution of a dispatched trade.
type TradeResult struct {
	TradeID string
	Pair    string
	Outcome Outcome
}
