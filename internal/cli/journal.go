package cli

import (
	"github.com/spf13/cobra"

	"otc-trader/internal/errors"
	"otc-trader/pkg/utils"
)

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the trade journal",
		Long:  "Query archived sessions, their trades and recent signals.",
	}

	var limit int
	cmd.PersistentFlags().IntVar(&limit, "limit", 10, "maximum rows to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "sessions",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Journal == nil {
				return errors.ErrJournalClosed
			}
			sessions, err := app.Journal.Sessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(sessions)
			}
			if len(sessions) == 0 {
				output.Dim("no sessions recorded")
				return nil
			}
			output.Printf("%-26s  %-16s  %6s  %8s  %10s  %s\n",
				"SESSION", "STARTED", "TRADES", "WINRATE", "PROFIT", "STOP REASON")
			for _, s := range sessions {
				output.Printf("%-26s  %-16s  %6d  %8s  %10s  %s\n",
					s.ID, s.StartedAt.Format("2006-01-02 15:04"), s.TradeCount,
					utils.FormatWinRate(s.WinCount, s.TradeCount),
					output.PnL(s.SessionProfit), s.StopReason)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "trades <session-id>",
		Short: "List the trades of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Journal == nil {
				return errors.ErrJournalClosed
			}
			trades, err := app.Journal.Trades(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Dim("no trades for session %s", args[0])
				return nil
			}
			output.Printf("%-26s  %-12s  %-4s  %-4s  %8s  %-7s  %8s\n",
				"TRADE", "PAIR", "DIR", "EXP", "STAKE", "RESULT", "PNL")
			for _, t := range trades {
				output.Printf("%-26s  %-12s  %-4s  %-4s  %8s  %-7s  %8s\n",
					t.ID, t.Signal.Pair, t.Signal.Direction, t.Signal.Expiry,
					utils.FormatMoney(t.Stake.Amount), t.Result, output.PnL(t.PayoutAmount))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "signals",
		Short: "List recent signals across sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Journal == nil {
				return errors.ErrJournalClosed
			}
			signals, err := app.Journal.RecentSignals(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(signals)
			}
			if len(signals) == 0 {
				output.Dim("no signals recorded")
				return nil
			}
			for _, s := range signals {
				output.Printf("%s  %-12s %-4s conf=%.2f  rsi=%.1f  %s\n",
					s.Timestamp.Format("15:04:05"), s.Pair, s.Direction,
					s.Confidence, s.Snapshot.RSI, output.DimText(utils.Truncate(s.Reason, 48)))
			}
			return nil
		},
	})

	return cmd
}
