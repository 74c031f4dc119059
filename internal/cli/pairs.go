package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"otc-trader/internal/pairs"
)

func newPairsCmd(app *App) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Show pair eligibility for the active profile",
		Long: `List the configured pairs and whether each is tradable right now,
given its enabled flag, its allowed expiries and the schedule windows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			settings, err := loadSettings(app, profile)
			if err != nil {
				return err
			}

			now := time.Now()
			scheduler := pairs.NewScheduler(time.Local)
			configs := settings.PairConfigs()

			if output.IsJSON() {
				eligible := scheduler.Eligible(configs, settings.TimePeriod, now)
				return output.JSON(map[string]interface{}{
					"expiry":   settings.TimePeriod,
					"eligible": eligible,
				})
			}

			output.Printf("Eligibility at %s for %s expiry:\n\n", now.Format("15:04"), settings.TimePeriod)
			for _, p := range configs {
				status := output.Green("tradable")
				switch {
				case !p.Enabled:
					status = output.DimText("disabled")
				case !scheduler.CanTrade(p, settings.TimePeriod, now):
					status = output.Red("blocked")
				}
				expiries := make([]string, len(p.AllowedExpiries))
				for i, e := range p.AllowedExpiries {
					expiries[i] = string(e)
				}
				output.Printf("  %-12s %-10s expiries: %s\n", p.Pair, status, strings.Join(expiries, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "settings profile (default: last used)")
	return cmd
}
