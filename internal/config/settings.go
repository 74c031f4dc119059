package config

import (
	"fmt"

	"otc-trader/internal/errors"
	"otc-trader/internal/models"
)

// Settings is the locked session configuration. It is validated once at load
// and immutable after a session starts; use sites never re-check bounds.
type Settings struct {
	TradeCapital      float64                    `mapstructure:"trade_capital"`
	TargetProfit      float64                    `mapstructure:"target_profit"`
	TradeAmount       float64                    `mapstructure:"trade_amount"`
	StackMethod       string                     `mapstructure:"stack_method"`
	TimePeriod        models.Expiry              `mapstructure:"time_period"`
	MartingalePercent float64                    `mapstructure:"martingale_percent"`
	MartingaleLimit   int                        `mapstructure:"martingale_limit"`
	DisableMartingale bool                       `mapstructure:"disable_martingale"`
	Mode              models.Mode                `mapstructure:"mode"`
	SlideDirection    models.Direction           `mapstructure:"slide_direction"`
	PayoutRate        float64                    `mapstructure:"payout_rate"`
	CooldownTicks     int                        `mapstructure:"cooldown_ticks"`
	EnabledPairs      []string                   `mapstructure:"enabled_pairs"`
	PairExpiries      map[string][]models.Expiry `mapstructure:"pair_expiries"`
	ScheduleEnabled   bool                       `mapstructure:"schedule_enabled"`
	ScheduleStartHour int                        `mapstructure:"schedule_start_hour"`
	ScheduleEndHour   int                        `mapstructure:"schedule_end_hour"`
}

// DefaultSettings returns the shipped default session settings.
func DefaultSettings() Settings {
	return Settings{
		TradeCapital:      100,
		TargetProfit:      20,
		TradeAmount:       1,
		StackMethod:       "martingale",
		TimePeriod:        models.ExpiryS5,
		MartingalePercent: 80,
		MartingaleLimit:   5,
		DisableMartingale: false,
		Mode:              models.ModeOscillate,
		SlideDirection:    models.DirectionBuy,
		PayoutRate:        0.82,
		CooldownTicks:     3,
		EnabledPairs:      []string{"EURUSD_otc", "GBPUSD_otc"},
		PairExpiries: map[string][]models.Expiry{
			"EURUSD_otc": {models.ExpiryS5, models.ExpiryS10, models.ExpiryS15, models.ExpiryS30, models.ExpiryM1, models.ExpiryM2, models.ExpiryM5},
			"GBPUSD_otc": {models.ExpiryS5, models.ExpiryS10, models.ExpiryS15, models.ExpiryS30, models.ExpiryM1, models.ExpiryM2},
			"USDJPY_otc": {models.ExpiryS5, models.ExpiryS10, models.ExpiryS15, models.ExpiryS30, models.ExpiryM1},
			"AUDUSD_otc": {models.ExpiryS5, models.ExpiryS10, models.ExpiryS15, models.ExpiryM1},
		},
		ScheduleEnabled:   false,
		ScheduleStartHour: 0,
		ScheduleEndHour:   23,
	}
}

// Validate checks every bound. The first violated bound fails the whole
// load; out-of-range values are never clamped silently.
func (s Settings) Validate() error {
	if s.TradeCapital <= 0 {
		return errors.NewValidationError("trade_capital", s.TradeCapital, "must be > 0")
	}
	if s.TargetProfit <= 0 {
		return errors.NewValidationError("target_profit", s.TargetProfit, "must be > 0")
	}
	if s.TradeAmount <= 0 {
		return errors.NewValidationError("trade_amount", s.TradeAmount, "must be > 0")
	}
	if s.TradeAmount > s.TradeCapital {
		return errors.NewValidationError("trade_amount", s.TradeAmount, "cannot exceed trade_capital")
	}
	if s.StackMethod != "martingale" {
		return errors.NewValidationError("stack_method", s.StackMethod, "must be 'martingale'")
	}
	if !s.TimePeriod.IsValid() {
		return errors.NewValidationError("time_period", s.TimePeriod, "must be one of S5,S10,S15,S30,M1,M2,M5")
	}
	if s.MartingalePercent < 0 || s.MartingalePercent > 500 {
		return errors.NewValidationError("martingale_percent", s.MartingalePercent, "must be between 0 and 500")
	}
	if s.MartingaleLimit < 0 || s.MartingaleLimit > 20 {
		return errors.NewValidationError("martingale_limit", s.MartingaleLimit, "must be between 0 and 20")
	}
	if s.Mode != models.ModeOscillate && s.Mode != models.ModeSlide {
		return errors.NewValidationError("mode", s.Mode, "must be 'oscillate' or 'slide'")
	}
	if s.SlideDirection != models.DirectionBuy && s.SlideDirection != models.DirectionSell {
		return errors.NewValidationError("slide_direction", s.SlideDirection, "must be 'buy' or 'sell'")
	}
	if s.PayoutRate <= 0 || s.PayoutRate > 1 {
		return errors.NewValidationError("payout_rate", s.PayoutRate, "must be in (0, 1]")
	}
	if s.CooldownTicks < 0 {
		return errors.NewValidationError("cooldown_ticks", s.CooldownTicks, "must be >= 0")
	}
	if len(s.EnabledPairs) == 0 {
		return errors.NewValidationError("enabled_pairs", s.EnabledPairs, "at least one pair must be enabled")
	}
	for _, pair := range s.EnabledPairs {
		if _, ok := s.PairExpiries[pair]; !ok {
			return errors.NewValidationError("enabled_pairs", pair, "enabled pair has no expiry rules")
		}
	}
	for pair, expiries := range s.PairExpiries {
		if len(expiries) == 0 {
			return errors.NewValidationError("pair_expiries", pair, "pair must define at least one allowed expiry")
		}
		for _, e := range expiries {
			if !e.IsValid() {
				return errors.NewValidationError("pair_expiries", fmt.Sprintf("%s:%s", pair, e), "invalid expiry")
			}
		}
	}
	if s.ScheduleStartHour < 0 || s.ScheduleStartHour > 23 {
		return errors.NewValidationError("schedule_start_hour", s.ScheduleStartHour, "must be between 0 and 23")
	}
	if s.ScheduleEndHour < 0 || s.ScheduleEndHour > 23 {
		return errors.NewValidationError("schedule_end_hour", s.ScheduleEndHour, "must be between 0 and 23")
	}
	return nil
}

// PairConfigs expands the settings into per-pair eligibility configs for the
// scheduler. The session-wide schedule hours become one window per pair.
func (s Settings) PairConfigs() []models.PairConfig {
	var windows []models.ScheduleWindow
	if s.ScheduleEnabled {
		windows = []models.ScheduleWindow{{
			Start: s.ScheduleStartHour * 60,
			End:   s.ScheduleEndHour*60 + 59,
		}}
	}

	configs := make([]models.PairConfig, 0, len(s.PairExpiries))
	for pair, expiries := range s.PairExpiries {
		configs = append(configs, models.PairConfig{
			Pair:            pair,
			Enabled:         s.pairEnabled(pair),
			AllowedExpiries: expiries,
			ScheduleWindows: windows,
		})
	}
	return configs
}

func (s Settings) pairEnabled(pair string) bool {
	for _, p := range s.EnabledPairs {
		if p == pair {
			return true
		}
	}
	return false
}

// canonicalizePairs restores the canonical pair-name casing after a profile
// file round-trip. Viper lower-cases TOML map keys, so pair_expiries would
// otherwise stop matching enabled_pairs.
func (s *Settings) canonicalizePairs() {
	for i, pair := range s.EnabledPairs {
		s.EnabledPairs[i] = models.CanonicalPair(pair)
	}
	expiries := make(map[string][]models.Expiry, len(s.PairExpiries))
	for pair, e := range s.PairExpiries {
		expiries[models.CanonicalPair(pair)] = e
	}
	s.PairExpiries = expiries
}
