package cli

import (
	"bufio"
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"otc-trader/internal/broker"
	"otc-trader/internal/config"
	"otc-trader/internal/errors"
	"otc-trader/internal/feed"
	"otc-trader/internal/models"
	"otc-trader/internal/notify"
	"otc-trader/internal/session"
	"otc-trader/pkg/utils"
)

const feedDepth = 64

func newRunCmd(app *App) *cobra.Command {
	var (
		profile  string
		mode     string
		interval time.Duration
		maxTicks int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a trading session",
		Long: `Run a bounded trading session with the active settings profile.

The session evaluates every enabled pair once per tick and stops on its own
when the profit target, the martingale limit, or the capital guardrail is
reached. Ctrl-C requests a user stop; in-flight trades still resolve.

In manual mode each signal is printed as a trade instruction and you record
the outcome yourself:

  w <trade-id>   record a win
  l <trade-id>   record a loss
  v <trade-id>   void an indeterminate trade
  open           list unresolved trade ids
  pause / resume / stop / state`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, app, profile, mode, interval, maxTicks, seed)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "settings profile (default: last used)")
	cmd.Flags().StringVar(&mode, "mode", "", "execution mode override: manual or simulated")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "tick interval")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "stop after this many ticks (0 = until a stop condition)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed override for simulated mode and the candle feed")

	return cmd
}

func runSession(cmd *cobra.Command, app *App, profile, modeFlag string, interval time.Duration, maxTicks int, seed int64) error {
	output := NewOutput(cmd)

	settings, err := loadSettings(app, profile)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		output.Error("Settings validation failed: %v", err)
		return err
	}
	if app.Journal == nil {
		return errors.ErrJournalClosed
	}

	execMode := app.Config.Execution.Mode
	if modeFlag != "" {
		execMode = models.ExecutionMode(modeFlag)
	}
	if seed == 0 {
		seed = app.Config.Execution.Seed
	}

	var adapter broker.Adapter
	var manual *broker.ManualAdapter
	switch execMode {
	case models.ExecutionManual:
		manual = broker.NewManualAdapter(app.Logger)
		adapter = manual
	case models.ExecutionSimulated:
		adapter = broker.NewSimulatedAdapter(broker.SimulatedConfig{
			Seed:         seed,
			ResolveDelay: settings.TimePeriod.Duration(),
		}, app.Logger)
	default:
		return errors.NewValidationError("mode", execMode, "must be manual or simulated")
	}
	defer adapter.Close()

	ctrl := session.NewController(session.Deps{
		Settings: settings,
		Adapter:  adapter,
		Journal:  app.Journal,
		Notifier: notify.NewTerminalNotifier(app.Logger),
		Location: time.Local,
		Logger:   app.Logger,
	})

	market := feed.NewRandomWalk(settings.EnabledPairs, seed, feedDepth)
	market.Warmup(feedDepth/2, time.Now())

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	output.Info("Session %s starting: mode=%s pairs=%s capital=%s target=%s",
		ctrl.SessionID(), execMode, strings.Join(settings.EnabledPairs, ","),
		utils.FormatMoney(settings.TradeCapital), utils.FormatMoney(settings.TargetProfit))

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	if manual != nil {
		go readOperatorInput(cmd, ctrl, manual, output)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fed := 0
	var runErr error
loop:
	for {
		select {
		case runErr = <-done:
			break loop
		case now := <-ticker.C:
			if maxTicks > 0 && fed >= maxTicks {
				ctrl.Stop()
				continue
			}
			fed++
			feedCtx, feedCancel := context.WithTimeout(context.Background(), interval)
			_ = ctrl.Feed(feedCtx, session.Tick{Time: now, Candles: market.Next(now)})
			feedCancel()
		}
	}

	printSummary(output, ctrl.State(), ctrl.SessionID())
	if runErr == context.Canceled {
		return nil
	}
	return runErr
}

// loadSettings resolves the profile to run with: the named one, or the last
// used, or the shipped defaults when nothing has been saved yet.
func loadSettings(app *App, profile string) (config.Settings, error) {
	if profile != "" {
		return config.LoadProfile(app.ConfigDir, profile)
	}
	return config.LoadLastUsed(app.ConfigDir)
}

// readOperatorInput drives the manual adapter from stdin. It exits when
// stdin closes.
func readOperatorInput(cmd *cobra.Command, ctrl *session.Controller, manual *broker.ManualAdapter, output *Output) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		fields := strings.Fields(strings.ToLower(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "w", "win":
			resolveFromInput(manual, fields, models.OutcomeWin, output)
		case "l", "loss":
			resolveFromInput(manual, fields, models.OutcomeLoss, output)
		case "v", "void":
			if len(fields) < 2 {
				output.Warning("usage: v <trade-id>")
				continue
			}
			ctrl.Void(strings.ToUpper(fields[1]))
		case "open":
			open := manual.OpenTrades()
			if len(open) == 0 {
				output.Dim("no open trades")
				continue
			}
			for _, id := range open {
				output.Println(id)
			}
		case "pause":
			ctrl.Pause()
		case "resume":
			ctrl.Resume()
		case "stop":
			ctrl.Stop()
		case "state":
			printState(output, ctrl.State())
		default:
			output.Warning("unknown command %q (w/l/v <id>, open, pause, resume, stop, state)", fields[0])
		}
	}
}

func resolveFromInput(manual *broker.ManualAdapter, fields []string, outcome models.Outcome, output *Output) {
	if len(fields) < 2 {
		output.Warning("usage: %s <trade-id>", fields[0])
		return
	}
	if err := manual.Resolve(strings.ToUpper(fields[1]), outcome); err != nil {
		output.Error("resolve failed: %v", err)
	}
}

func printState(output *Output, state models.SessionState) {
	output.Printf("status=%s trades=%d (%dW/%dL) profit=%s remaining=%s step=%d streak=%d\n",
		state.Status, state.TradeCount, state.WinCount, state.LossCount,
		output.PnL(state.SessionProfit), utils.FormatMoney(state.RemainingCapital()),
		state.MartingaleStep, state.CurrentStreak)
}

func printSummary(output *Output, state models.SessionState, sessionID string) {
	output.Println()
	output.Info("Session %s finished", sessionID)
	output.Printf("  Trades:     %d (%s)\n", state.TradeCount, utils.FormatWinRate(state.WinCount, state.TradeCount))
	output.Printf("  Profit:     %s\n", output.PnL(state.SessionProfit))
	output.Printf("  Remaining:  %s\n", utils.FormatMoney(state.RemainingCapital()))
	if state.StopReason != "" {
		output.Printf("  Stopped by: %s\n", state.StopReason)
	}
}
