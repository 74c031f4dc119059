package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"otc-trader/internal/errors"
)

// ProfilesDir returns the directory holding named settings profiles.
func ProfilesDir(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "profiles")
}

// LoadProfile loads and validates a named settings profile. A missing
// "default" profile is created from DefaultSettings; any other missing name
// is an error.
func LoadProfile(configDir, name string) (Settings, error) {
	dir := ProfilesDir(configDir)
	path := filepath.Join(dir, name+".toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if name != "default" {
			return Settings{}, errors.Wrapf(errors.ErrProfileNotFound, "profile %q", name)
		}
		s := DefaultSettings()
		if err := SaveProfile(configDir, name, s); err != nil {
			return Settings{}, err
		}
		return s, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("reading profile %q: %w", name, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing profile %q: %w", name, err)
	}
	fillUnset(v, &s)
	s.canonicalizePairs()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// fillUnset backfills keys the profile file does not set. Decoding straight
// over a populated Settings is not an option: mapstructure merges slices and
// maps element-wise, so a profile enabling fewer pairs than the defaults
// would get default pairs appended back.
func fillUnset(v *viper.Viper, s *Settings) {
	d := DefaultSettings()
	if !v.IsSet("trade_capital") {
		s.TradeCapital = d.TradeCapital
	}
	if !v.IsSet("target_profit") {
		s.TargetProfit = d.TargetProfit
	}
	if !v.IsSet("trade_amount") {
		s.TradeAmount = d.TradeAmount
	}
	if !v.IsSet("stack_method") {
		s.StackMethod = d.StackMethod
	}
	if !v.IsSet("time_period") {
		s.TimePeriod = d.TimePeriod
	}
	if !v.IsSet("martingale_percent") {
		s.MartingalePercent = d.MartingalePercent
	}
	if !v.IsSet("martingale_limit") {
		s.MartingaleLimit = d.MartingaleLimit
	}
	if !v.IsSet("disable_martingale") {
		s.DisableMartingale = d.DisableMartingale
	}
	if !v.IsSet("mode") {
		s.Mode = d.Mode
	}
	if !v.IsSet("slide_direction") {
		s.SlideDirection = d.SlideDirection
	}
	if !v.IsSet("payout_rate") {
		s.PayoutRate = d.PayoutRate
	}
	if !v.IsSet("cooldown_ticks") {
		s.CooldownTicks = d.CooldownTicks
	}
	if !v.IsSet("enabled_pairs") {
		s.EnabledPairs = d.EnabledPairs
	}
	if !v.IsSet("pair_expiries") {
		s.PairExpiries = d.PairExpiries
	}
	if !v.IsSet("schedule_enabled") {
		s.ScheduleEnabled = d.ScheduleEnabled
	}
	if !v.IsSet("schedule_start_hour") {
		s.ScheduleStartHour = d.ScheduleStartHour
	}
	if !v.IsSet("schedule_end_hour") {
		s.ScheduleEndHour = d.ScheduleEndHour
	}
}

// SaveProfile validates and persists a settings profile, and records it as
// the last used profile.
func SaveProfile(configDir, name string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dir := ProfilesDir(configDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating profiles directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("trade_capital", s.TradeCapital)
	v.Set("target_profit", s.TargetProfit)
	v.Set("trade_amount", s.TradeAmount)
	v.Set("stack_method", s.StackMethod)
	v.Set("time_period", string(s.TimePeriod))
	v.Set("martingale_percent", s.MartingalePercent)
	v.Set("martingale_limit", s.MartingaleLimit)
	v.Set("disable_martingale", s.DisableMartingale)
	v.Set("mode", string(s.Mode))
	v.Set("slide_direction", string(s.SlideDirection))
	v.Set("payout_rate", s.PayoutRate)
	v.Set("cooldown_ticks", s.CooldownTicks)
	v.Set("enabled_pairs", s.EnabledPairs)
	pairExpiries := make(map[string][]string, len(s.PairExpiries))
	for pair, expiries := range s.PairExpiries {
		strs := make([]string, len(expiries))
		for i, e := range expiries {
			strs[i] = string(e)
		}
		pairExpiries[pair] = strs
	}
	v.Set("pair_expiries", pairExpiries)
	v.Set("schedule_enabled", s.ScheduleEnabled)
	v.Set("schedule_start_hour", s.ScheduleStartHour)
	v.Set("schedule_end_hour", s.ScheduleEndHour)

	path := filepath.Join(dir, name+".toml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing profile %q: %w", name, err)
	}

	return setLastUsed(configDir, name)
}

// LoadLastUsed loads the most recently saved profile, falling back to
// "default" when none is recorded.
func LoadLastUsed(configDir string) (Settings, error) {
	name := lastUsed(configDir)
	return LoadProfile(configDir, name)
}

func lastUsedPath(configDir string) string {
	return filepath.Join(ProfilesDir(configDir), "last_used")
}

func lastUsed(configDir string) string {
	data, err := os.ReadFile(lastUsedPath(configDir))
	if err != nil || len(data) == 0 {
		return "default"
	}
	return string(data)
}

func setLastUsed(configDir, name string) error {
	return os.WriteFile(lastUsedPath(configDir), []byte(name), 0644)
}
