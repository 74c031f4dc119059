package broker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"otc-trader/internal/errors"
	"otc-trader/internal/models"
)

// SimulatedConfig holds configuration for the simulated adapter.
type SimulatedConfig struct {
	// Seed makes outcome rolls reproducible.
	Seed int64
	// ResolveDelay is how long a submitted trade stays pending before its
	// simulated resolution. Zero resolves on the next scheduler pass.
	ResolveDelay time.Duration
}

// SimulatedAdapter resolves trades with a seeded RNG. The win probability is
// the signal's confidence clamped to [0.05, 0.95], so a confident signal is
// still allowed to lose.
type SimulatedAdapter struct {
	cfg     SimulatedConfig
	log     zerolog.Logger
	results chan models.TradeResult

	mu     sync.Mutex
	rng    *rand.Rand
	wg     sync.WaitGroup
	closed bool
}

// NewSimulatedAdapter creates a simulated execution adapter.
func NewSimulatedAdapter(cfg SimulatedConfig, log zerolog.Logger) *SimulatedAdapter {
	return &SimulatedAdapter{
		cfg:     cfg,
		log:     log.With().Str("adapter", "simulated").Logger(),
		results: make(chan models.TradeResult, 16),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (s *SimulatedAdapter) Name() string { return "simulated" }

// Submit accepts the trade and schedules its simulated resolution.
func (s *SimulatedAdapter) Submit(ctx context.Context, tradeID string, signal models.Signal, stake models.StakeDecision) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.NewAdapterError(s.Name(), "submit", errors.ErrAdapterClosed)
	}
	winProb := clamp(signal.Confidence, 0.05, 0.95)
	roll := s.rng.Float64()
	s.wg.Add(1)
	s.mu.Unlock()

	outcome := models.OutcomeLoss
	if roll <= winProb {
		outcome = models.OutcomeWin
	}

	s.log.Debug().
		Str("trade_id", tradeID).
		Str("pair", signal.Pair).
		Float64("stake", stake.Amount).
		Float64("win_prob", winProb).
		Msg("simulated trade submitted")

	go func() {
		defer s.wg.Done()
		if s.cfg.ResolveDelay > 0 {
			select {
			case <-time.After(s.cfg.ResolveDelay):
			case <-ctx.Done():
				return
			}
		}
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		s.results <- models.TradeResult{TradeID: tradeID, Pair: signal.Pair, Outcome: outcome}
	}()

	return nil
}

func (s *SimulatedAdapter) Results() <-chan models.TradeResult { return s.results }

// Close waits for in-flight resolutions and closes the result stream.
func (s *SimulatedAdapter) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
	close(s.results)
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
