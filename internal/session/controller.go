package session

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"otc-trader/internal/broker"
	"otc-trader/internal/config"
	"otc-trader/internal/journal"
	"otc-trader/internal/models"
	"otc-trader/internal/notify"
	"otc-trader/internal/pairs"
	"otc-trader/internal/risk"
	"otc-trader/internal/strategy"
)

// Tick is one logical evaluation input: the current candle history for each
// pair at one point in time. Market-data retrieval lives outside the core;
// whoever feeds ticks owns the transport.
type Tick struct {
	Time    time.Time
	Candles map[string][]models.Candle
}

type commandKind int

const (
	cmdPause commandKind = iota
	cmdResume
	cmdStop
	cmdVoid
)

type command struct {
	kind    commandKind
	tradeID string
}

// Controller is the top-level session state machine. It serializes ticks,
// trade results and operator commands into a single goroutine so that
// SessionState has exactly one writer, and it is the only component that
// crosses into the execution adapter.
type Controller struct {
	settings    config.Settings
	pairConfigs []models.PairConfig

	accountant *Accountant
	strategy   *strategy.Engine
	scheduler  *pairs.Scheduler
	risk       *risk.MartingaleEngine
	adapter    broker.Adapter
	journal    journal.Journal
	notifier   notify.Notifier
	log        zerolog.Logger

	sessionID string
	tick      uint64

	ticks    chan Tick
	commands chan command

	pending     map[string]*models.TradeRecord // trade id -> in-flight record
	pendingPair map[string]string              // pair -> trade id
	archived    bool
}

// Deps bundles the controller's collaborators.
type Deps struct {
	Settings config.Settings
	Adapter  broker.Adapter
	Journal  journal.Journal
	Notifier notify.Notifier
	Location *time.Location
	Logger   zerolog.Logger
}

// NewController wires a controller and its decision components from locked
// settings.
func NewController(d Deps) *Controller {
	return &Controller{
		settings:    d.Settings,
		pairConfigs: d.Settings.PairConfigs(),
		accountant:  NewAccountant(d.Settings, d.Logger),
		strategy:    strategy.NewEngine(d.Settings),
		scheduler:   pairs.NewScheduler(d.Location),
		risk:        risk.NewMartingaleEngine(d.Settings),
		adapter:     d.Adapter,
		journal:     d.Journal,
		notifier:    d.Notifier,
		log:         d.Logger.With().Str("component", "controller").Logger(),
		sessionID:   ulid.Make().String(),
		ticks:       make(chan Tick, 1),
		commands:    make(chan command, 8),
		pending:     map[string]*models.TradeRecord{},
		pendingPair: map[string]string{},
	}
}

// SessionID returns the id under which this session is journaled.
func (c *Controller) SessionID() string { return c.sessionID }

// State returns a copy of the session state. Safe for display; the copy may
// lag the loop by one event.
func (c *Controller) State() models.SessionState { return c.accountant.State() }

// Feed submits one evaluation tick to the loop.
func (c *Controller) Feed(ctx context.Context, t Tick) error {
	select {
	case c.ticks <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause requests a pause; it is observed before the next dispatch.
func (c *Controller) Pause() { c.commands <- command{kind: cmdPause} }

// Resume requests a resume.
func (c *Controller) Resume() { c.commands <- command{kind: cmdResume} }

// Stop requests a user stop. In-flight trades are still allowed to resolve
// and their results are applied; no further trade is dispatched.
func (c *Controller) Stop() { c.commands <- command{kind: cmdStop} }

// Void marks a pending trade indeterminate after an adapter failure. The
// trade is excluded from streak and profit math and its pair is unlocked.
func (c *Controller) Void(tradeID string) { c.commands <- command{kind: cmdVoid, tradeID: tradeID} }

// resolveDrainGrace bounds how long a cancelled session waits for in-flight
// trades to resolve before giving up on them.
const resolveDrainGrace = 5 * time.Second

// Run starts the session and processes events until the session is stopped
// and no trade is in flight, or the context is cancelled. Cancellation is
// treated as a user stop: results for trades already in flight are still
// applied, up to a grace period.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.accountant.Start(time.Now()); err != nil {
		return err
	}

	results := c.adapter.Results()
	for {
		if c.done() {
			return nil
		}

		select {
		case <-ctx.Done():
			// Journal writes must outlive the cancelled context.
			stopCtx := context.WithoutCancel(ctx)
			c.stopSession(stopCtx, models.StopUserRequested)
			c.drainInFlight(stopCtx, results)
			return ctx.Err()
		case cmd := <-c.commands:
			c.handleCommand(ctx, cmd)
		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			c.handleResult(ctx, res)
		case t := <-c.ticks:
			c.drainCommands(ctx)
			c.handleTick(ctx, t)
		}
	}
}

// done reports whether the loop can exit: session stopped and nothing
// in flight.
func (c *Controller) done() bool {
	return c.accountant.State().Status == models.StateStopped && len(c.pending) == 0
}

// drainInFlight waits for results of trades still pending after cancellation
// and applies them, so a Ctrl-C does not drop an open trade's outcome. Trades
// left unresolved past the grace period stay pending in the books.
func (c *Controller) drainInFlight(ctx context.Context, results <-chan models.TradeResult) {
	if results == nil || len(c.pending) == 0 {
		return
	}
	deadline := time.NewTimer(resolveDrainGrace)
	defer deadline.Stop()
	for len(c.pending) > 0 {
		select {
		case res, ok := <-results:
			if !ok {
				return
			}
			c.handleResult(ctx, res)
		case <-deadline.C:
			c.log.Warn().Int("pending", len(c.pending)).Msg("cancelled with unresolved trades")
			return
		}
	}
}

// drainCommands applies queued operator commands so that a Pause or Stop
// issued before this tick is observed before any dispatch.
func (c *Controller) drainCommands(ctx context.Context) {
	for {
		select {
		case cmd := <-c.commands:
			c.handleCommand(ctx, cmd)
		default:
			return
		}
	}
}

func (c *Controller) handleCommand(ctx context.Context, cmd command) {
	switch cmd.kind {
	case cmdPause:
		if err := c.accountant.Pause(); err != nil {
			c.log.Warn().Err(err).Msg("pause ignored")
		}
	case cmdResume:
		if err := c.accountant.Resume(); err != nil {
			c.log.Warn().Err(err).Msg("resume ignored")
		}
	case cmdStop:
		c.stopSession(ctx, models.StopUserRequested)
	case cmdVoid:
		c.voidTrade(ctx, cmd.tradeID)
	}
}

// handleTick runs one evaluation pass: eligibility, signal, stake, stop
// pre-check, dispatch. Each pair yields at most one signal per tick.
func (c *Controller) handleTick(ctx context.Context, t Tick) {
	c.tick++
	if c.accountant.State().Status != models.StateRunning {
		return
	}

	eligible := c.scheduler.Eligible(c.pairConfigs, c.settings.TimePeriod, t.Time)
	for _, pair := range eligible {
		candles := t.Candles[pair]
		if len(candles) == 0 {
			continue
		}

		signal := c.strategy.Evaluate(pair, candles, c.tick, t.Time)
		if signal == nil {
			continue
		}

		stake := c.risk.NextStake(c.accountant.State())
		if reason, stop := c.accountant.EvaluateStops(stake); stop {
			// The trade that would breach is never dispatched.
			c.stopSession(ctx, reason)
			return
		}

		c.dispatch(ctx, *signal, stake, t.Time)
	}
}

// dispatch crosses the execution-adapter boundary. A failed submit is
// surfaced distinctly, never counted as a loss, and never retried with the
// same stake decision.
func (c *Controller) dispatch(ctx context.Context, signal models.Signal, stake models.StakeDecision, now time.Time) {
	if err := c.journal.AppendSignal(ctx, c.sessionID, signal); err != nil {
		c.log.Warn().Err(err).Msg("journal append signal failed")
	}

	tradeID := ulid.Make().String()
	record := &models.TradeRecord{
		ID:        tradeID,
		SessionID: c.sessionID,
		Signal:    signal,
		Stake:     stake,
		Adapter:   c.adapter.Name(),
		OpenedAt:  now,
		Result:    models.OutcomePending,
	}

	if err := c.adapter.Submit(ctx, tradeID, signal, stake); err != nil {
		c.notifier.AdapterFailure(ctx, signal.Pair, err)
		c.log.Error().Err(err).Str("pair", signal.Pair).Msg("dispatch failed")
		return
	}

	c.strategy.MarkPending(signal.Pair)
	c.pending[tradeID] = record
	c.pendingPair[signal.Pair] = tradeID
	c.notifier.SignalEmitted(ctx, signal, stake)

	c.log.Info().
		Str("trade_id", tradeID).
		Str("pair", signal.Pair).
		Str("direction", string(signal.Direction)).
		Float64("stake", stake.Amount).
		Uint64("tick", signal.GeneratedAt).
		Msg("trade dispatched")
}

// handleResult finalizes an in-flight trade, updates the truth layer, and
// re-evaluates stop conditions. Results for unknown or voided trades are
// dropped with a warning.
func (c *Controller) handleResult(ctx context.Context, res models.TradeResult) {
	record, ok := c.pending[res.TradeID]
	if !ok {
		c.log.Warn().Str("trade_id", res.TradeID).Msg("result for unknown trade dropped")
		return
	}
	c.clearPending(record)

	pnl := c.accountant.ApplyResult(record.Stake, res.Outcome)
	record.Result = res.Outcome
	record.PayoutAmount = pnl
	record.ResolvedAt = time.Now()

	if err := c.journal.AppendTrade(ctx, record); err != nil {
		c.log.Warn().Err(err).Msg("journal append trade failed")
	}
	state := c.accountant.State()
	c.notifier.TradeResolved(ctx, record, state)

	// A result arriving after Stop is applied but triggers nothing further.
	if state.Status == models.StateStopped {
		return
	}

	next := c.risk.NextStake(state)
	if reason, stop := c.accountant.EvaluateStops(next); stop {
		c.stopSession(ctx, reason)
	}
}

// voidTrade removes an indeterminate trade without touching streak or
// profit math.
func (c *Controller) voidTrade(ctx context.Context, tradeID string) {
	record, ok := c.pending[tradeID]
	if !ok {
		c.log.Warn().Str("trade_id", tradeID).Msg("void for unknown trade ignored")
		return
	}
	c.clearPending(record)

	record.Result = models.OutcomeVoid
	record.ResolvedAt = time.Now()
	if err := c.journal.AppendTrade(ctx, record); err != nil {
		c.log.Warn().Err(err).Msg("journal append voided trade failed")
	}
	c.log.Info().Str("trade_id", tradeID).Str("pair", record.Signal.Pair).Msg("trade voided by operator")
}

func (c *Controller) clearPending(record *models.TradeRecord) {
	delete(c.pending, record.ID)
	delete(c.pendingPair, record.Signal.Pair)
	c.strategy.ResolvePending(record.Signal.Pair)
}

// stopSession archives the session exactly once.
func (c *Controller) stopSession(ctx context.Context, reason models.StopReason) {
	if err := c.accountant.Stop(reason, time.Now()); err != nil {
		return
	}
	if !c.archived {
		c.archived = true
		summary := c.accountant.Summary(c.sessionID)
		if err := c.journal.AppendSession(ctx, summary); err != nil {
			c.log.Warn().Err(err).Msg("journal append session failed")
		}
		c.notifier.SessionStopped(ctx, summary)
	}
}
