package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"otc-trader/internal/config"
	"otc-trader/internal/errors"
	"otc-trader/internal/models"
	"otc-trader/pkg/utils"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage session settings profiles",
		Long:  "View, edit and validate the settings profiles used by 'run'.",
	}

	var profile string
	cmd.PersistentFlags().StringVar(&profile, "profile", "", "settings profile (default: last used)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the active settings profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			settings, err := loadSettings(app, profile)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(settings)
			}
			showSettings(output, settings)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the active settings profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			settings, err := loadSettings(app, profile)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				output.Error("Settings validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Settings are valid")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one settings field and save the profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			name := profile
			if name == "" {
				name = "default"
			}
			settings, err := config.LoadProfile(app.ConfigDir, name)
			if err != nil {
				return err
			}
			if err := applySetting(&settings, args[0], args[1]); err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				output.Error("Rejected: %v", err)
				return err
			}
			if err := config.SaveProfile(app.ConfigDir, name, settings); err != nil {
				return err
			}
			output.Success("✓ %s = %s saved to profile %q", args[0], args[1], name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "profiles",
		Short: "List saved settings profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			names, err := listProfiles(app.ConfigDir)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(names)
			}
			if len(names) == 0 {
				output.Dim("no profiles saved yet, 'run' will create \"default\"")
				return nil
			}
			for _, n := range names {
				output.Println(n)
			}
			return nil
		},
	})

	return cmd
}

func listProfiles(configDir string) ([]string, error) {
	entries, err := os.ReadDir(config.ProfilesDir(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	return names, nil
}

func showSettings(output *Output, s config.Settings) {
	output.Printf("Capital:        %s (target %s)\n", utils.FormatMoney(s.TradeCapital), utils.FormatMoney(s.TargetProfit))
	output.Printf("Base stake:     %s\n", utils.FormatMoney(s.TradeAmount))
	output.Printf("Expiry:         %s\n", s.TimePeriod)
	if s.DisableMartingale {
		output.Printf("Martingale:     disabled\n")
	} else {
		limit := "no limit"
		if s.MartingaleLimit > 0 {
			limit = fmt.Sprintf("limit %d", s.MartingaleLimit)
		}
		output.Printf("Martingale:     +%.0f%% per loss, %s\n", s.MartingalePercent, limit)
	}
	mode := string(s.Mode)
	if s.Mode == models.ModeSlide {
		mode += " (" + string(s.SlideDirection) + ")"
	}
	output.Printf("Signal mode:    %s\n", mode)
	output.Printf("Payout rate:    %.2f\n", s.PayoutRate)
	output.Printf("Cooldown:       %d ticks\n", s.CooldownTicks)
	output.Printf("Pairs:          %s\n", strings.Join(s.EnabledPairs, ", "))
	if s.ScheduleEnabled {
		output.Printf("Schedule:       %02d:00-%02d:59\n", s.ScheduleStartHour, s.ScheduleEndHour)
	} else {
		output.Printf("Schedule:       always on\n")
	}
}

// applySetting mutates one field by its config key. Unknown keys and
// unparseable values are rejected before validation runs.
func applySetting(s *config.Settings, key, value string) error {
	parseFloat := func() (float64, error) { return strconv.ParseFloat(value, 64) }
	parseInt := func() (int, error) { return strconv.Atoi(value) }
	parseBool := func() (bool, error) { return strconv.ParseBool(value) }

	var err error
	switch key {
	case "trade_capital":
		s.TradeCapital, err = parseFloat()
	case "target_profit":
		s.TargetProfit, err = parseFloat()
	case "trade_amount":
		s.TradeAmount, err = parseFloat()
	case "time_period":
		s.TimePeriod = models.Expiry(strings.ToUpper(value))
	case "martingale_percent":
		s.MartingalePercent, err = parseFloat()
	case "martingale_limit":
		s.MartingaleLimit, err = parseInt()
	case "disable_martingale":
		s.DisableMartingale, err = parseBool()
	case "mode":
		s.Mode = models.Mode(value)
	case "slide_direction":
		s.SlideDirection = models.Direction(value)
	case "payout_rate":
		s.PayoutRate, err = parseFloat()
	case "cooldown_ticks":
		s.CooldownTicks, err = parseInt()
	case "enabled_pairs":
		s.EnabledPairs = strings.Split(value, ",")
	case "schedule_enabled":
		s.ScheduleEnabled, err = parseBool()
	case "schedule_start_hour":
		s.ScheduleStartHour, err = parseInt()
	case "schedule_end_hour":
		s.ScheduleEndHour, err = parseInt()
	default:
		return errors.NewValidationError(key, value, "unknown settings key")
	}
	if err != nil {
		return errors.NewValidationError(key, value, "unparseable value: "+err.Error())
	}
	return nil
}
