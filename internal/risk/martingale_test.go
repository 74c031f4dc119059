package risk

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"otc-trader/internal/config"
	"otc-trader/internal/models"
)

func settingsWith(amount, percent float64, disabled bool) config.Settings {
	s := config.DefaultSettings()
	s.TradeAmount = amount
	s.MartingalePercent = percent
	s.DisableMartingale = disabled
	return s
}

func TestNextStakeResetsToBase(t *testing.T) {
	engine := NewMartingaleEngine(settingsWith(1, 80, false))

	cases := []struct {
		name  string
		state models.SessionState
	}{
		{"no prior trade", models.SessionState{}},
		{"after win", models.SessionState{CurrentStreak: 2, LastStake: 3.24}},
		{"loss but zero last stake", models.SessionState{CurrentStreak: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := engine.NextStake(tc.state)
			assert.Equal(t, 1.0, d.Amount)
			assert.Equal(t, models.StakeBase, d.Basis)
			assert.Equal(t, 0, d.StepAfter)
		})
	}
}

func TestNextStakeEscalatesAfterLoss(t *testing.T) {
	engine := NewMartingaleEngine(settingsWith(1, 80, false))

	d := engine.NextStake(models.SessionState{
		CurrentStreak:  -1,
		LastStake:      1,
		MartingaleStep: 1,
	})
	assert.Equal(t, 1.80, d.Amount)
	assert.Equal(t, models.StakeMartingaleEscalated, d.Basis)
	assert.Equal(t, 2, d.StepAfter)

	d = engine.NextStake(models.SessionState{
		CurrentStreak:  -2,
		LastStake:      d.Amount,
		MartingaleStep: 2,
	})
	assert.Equal(t, 3.24, d.Amount)
	assert.Equal(t, 3, d.StepAfter)
}

func TestNextStakeZeroPercentRepeatsStake(t *testing.T) {
	engine := NewMartingaleEngine(settingsWith(1, 0, false))

	d := engine.NextStake(models.SessionState{CurrentStreak: -3, LastStake: 1, MartingaleStep: 3})
	assert.Equal(t, 1.0, d.Amount)
	assert.Equal(t, models.StakeMartingaleEscalated, d.Basis)
}

func TestNextStakeDisabledAlwaysBase(t *testing.T) {
	engine := NewMartingaleEngine(settingsWith(2.5, 80, true))

	d := engine.NextStake(models.SessionState{CurrentStreak: -4, LastStake: 9.99, MartingaleStep: 4})
	assert.Equal(t, 2.5, d.Amount)
	assert.Equal(t, models.StakeBase, d.Basis)
	assert.Equal(t, 0, d.StepAfter)
}

// Property: with a non-negative escalation percent the proposed stake never
// drops below the losing stake it escalates from, and a winning or fresh
// state always proposes exactly the base amount.
func TestProperty_StakeNeverBelowPrevious(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("escalated stake >= losing stake", prop.ForAll(
		func(percent, lastStake float64, step int) bool {
			engine := NewMartingaleEngine(settingsWith(1, percent, false))
			d := engine.NextStake(models.SessionState{
				CurrentStreak:  -1,
				LastStake:      lastStake,
				MartingaleStep: step,
			})
			return d.Amount >= lastStake-0.005 && d.StepAfter == step+1
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0.01, 1000),
		gen.IntRange(0, 20),
	))

	properties.Property("non-loss state proposes base amount", prop.ForAll(
		func(streak int, lastStake float64) bool {
			engine := NewMartingaleEngine(settingsWith(1, 80, false))
			d := engine.NextStake(models.SessionState{
				CurrentStreak: streak,
				LastStake:     lastStake,
			})
			return d.Amount == 1 && d.Basis == models.StakeBase
		},
		gen.IntRange(0, 10),
		gen.Float64Range(0, 1000),
	))

	properties.TestingRun(t)
}
