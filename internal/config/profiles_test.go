package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otc-trader/internal/errors"
	"otc-trader/internal/models"
)

func TestLoadProfileCreatesDefault(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadProfile(dir, "default")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().TradeCapital, s.TradeCapital)

	// The created file loads again without re-seeding.
	again, err := LoadProfile(dir, "default")
	require.NoError(t, err)
	assert.Equal(t, s.EnabledPairs, again.EnabledPairs)
}

func TestLoadProfileUnknownName(t *testing.T) {
	_, err := LoadProfile(t.TempDir(), "aggressive")
	require.ErrorIs(t, err, errors.ErrProfileNotFound)
}

func TestSaveProfileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := DefaultSettings()
	s.TradeCapital = 250
	s.TargetProfit = 50
	s.MartingalePercent = 100
	s.Mode = models.ModeSlide
	s.SlideDirection = models.DirectionSell
	s.EnabledPairs = []string{"USDJPY_otc"}
	require.NoError(t, SaveProfile(dir, "aggressive", s))

	loaded, err := LoadProfile(dir, "aggressive")
	require.NoError(t, err)
	assert.Equal(t, 250.0, loaded.TradeCapital)
	assert.Equal(t, 50.0, loaded.TargetProfit)
	assert.Equal(t, models.ModeSlide, loaded.Mode)
	assert.Equal(t, models.DirectionSell, loaded.SlideDirection)
	assert.Equal(t, []string{"USDJPY_otc"}, loaded.EnabledPairs)
	assert.Contains(t, loaded.PairExpiries, "USDJPY_otc")
}

func TestLoadProfileDoesNotResurrectDefaultPairs(t *testing.T) {
	dir := t.TempDir()

	// Narrowing the pair list must survive the round trip; a profile that
	// enables fewer pairs than the defaults must not get default pairs
	// merged back in on load.
	s := DefaultSettings()
	s.EnabledPairs = []string{"USDJPY_otc"}
	require.NoError(t, SaveProfile(dir, "narrow", s))

	loaded, err := LoadProfile(dir, "narrow")
	require.NoError(t, err)
	assert.Equal(t, []string{"USDJPY_otc"}, loaded.EnabledPairs)
	assert.NotContains(t, loaded.EnabledPairs, "EURUSD_otc")
	assert.NotContains(t, loaded.EnabledPairs, "GBPUSD_otc")
}

func TestLoadProfileBackfillsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	profiles := ProfilesDir(dir)
	require.NoError(t, os.MkdirAll(profiles, 0755))

	// A hand-edited profile that sets only a couple of keys keeps its own
	// values and falls back to defaults for the rest.
	partial := "trade_capital = 500.0\nenabled_pairs = [\"AUDUSD_otc\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(profiles, "partial.toml"), []byte(partial), 0644))

	loaded, err := LoadProfile(dir, "partial")
	require.NoError(t, err)
	assert.Equal(t, 500.0, loaded.TradeCapital)
	assert.Equal(t, []string{"AUDUSD_otc"}, loaded.EnabledPairs)
	assert.Equal(t, DefaultSettings().TargetProfit, loaded.TargetProfit)
	assert.Equal(t, DefaultSettings().PayoutRate, loaded.PayoutRate)
	assert.Equal(t, DefaultSettings().Mode, loaded.Mode)
}

func TestSaveProfileRejectsInvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.TradeCapital = -1
	require.Error(t, SaveProfile(t.TempDir(), "broken", s))
}

func TestLastUsedFollowsSave(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, SaveProfile(dir, "evening", DefaultSettings()))

	s, err := LoadLastUsed(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().TradeCapital, s.TradeCapital)
	assert.Equal(t, "evening", lastUsed(dir))
}
