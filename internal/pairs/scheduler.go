// Package pairs provides pair and schedule eligibility filtering.
package pairs

import (
	"sort"
	"time"

	"otc-trader/internal/models"
)

// Scheduler decides which OTC pairs are currently tradable. It holds no
// mutable state and is safe to call on every tick.
type Scheduler struct {
	location *time.Location
}

// NewScheduler creates a scheduler evaluating windows in the given timezone.
// A nil location defaults to UTC.
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{location: loc}
}

// CanTrade reports whether a single pair/expiry combination is eligible at
// the given time: the pair is enabled, the expiry is allowed, and either no
// schedule windows are configured or the time falls inside one.
func (s *Scheduler) CanTrade(p models.PairConfig, expiry models.Expiry, now time.Time) bool {
	if !p.Enabled {
		return false
	}
	if !p.AllowsExpiry(expiry) {
		return false
	}
	if len(p.ScheduleWindows) == 0 {
		return true
	}

	t := now.In(s.location)
	minute := t.Hour()*60 + t.Minute()
	for _, w := range p.ScheduleWindows {
		if w.Contains(minute) {
			return true
		}
	}
	return false
}

// Eligible returns the sorted pair names eligible for the expiry at the
// given time.
func (s *Scheduler) Eligible(configs []models.PairConfig, expiry models.Expiry, now time.Time) []string {
	var eligible []string
	for _, p := range configs {
		if s.CanTrade(p, expiry, now) {
			eligible = append(eligible, p.Pair)
		}
	}
	sort.Strings(eligible)
	return eligible
}
