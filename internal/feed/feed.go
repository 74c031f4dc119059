// Package feed produces candle histories for the session loop. The only
// implementation is a seeded random walk; live quote transport is out of
// scope and plugs in behind the same shape.
package feed

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"otc-trader/internal/models"
)

const (
	defaultStartPrice = 1.1000
	defaultVolatility = 0.0008
)

// RandomWalk generates per-pair OHLC candles from a seeded Gaussian random
// walk and keeps a rolling history deep enough for indicator warm-up.
type RandomWalk struct {
	mu      sync.Mutex
	rng     *rand.Rand
	depth   int
	pairs   []string // sorted; fixes the order in which pairs draw from the RNG
	prices  map[string]float64
	history map[string][]models.Candle
}

// NewRandomWalk creates a feed for the given pairs. depth is the number of
// candles retained per pair; seed 0 falls back to the wall clock.
func NewRandomWalk(pairs []string, seed int64, depth int) *RandomWalk {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if depth < 2 {
		depth = 2
	}
	sorted := append([]string(nil), pairs...)
	sort.Strings(sorted)
	f := &RandomWalk{
		rng:     rand.New(rand.NewSource(seed)),
		depth:   depth,
		pairs:   sorted,
		prices:  make(map[string]float64, len(pairs)),
		history: make(map[string][]models.Candle, len(pairs)),
	}
	for _, p := range f.pairs {
		// Spread starting prices so pairs do not move in lockstep.
		f.prices[p] = defaultStartPrice * (1 + f.rng.Float64()*0.2)
	}
	return f
}

// Warmup pre-fills n candles per pair so the first tick already carries
// enough history for the indicators.
func (f *RandomWalk) Warmup(n int, now time.Time) {
	start := now.Add(-time.Duration(n) * time.Second)
	for i := 0; i < n; i++ {
		f.step(start.Add(time.Duration(i) * time.Second))
	}
}

// Next advances every pair by one candle and returns the current histories.
// The slices are copies; callers may retain them.
func (f *RandomWalk) Next(now time.Time) map[string][]models.Candle {
	f.step(now)

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]models.Candle, len(f.history))
	for pair, candles := range f.history {
		cp := make([]models.Candle, len(candles))
		copy(cp, candles)
		out[pair] = cp
	}
	return out
}

func (f *RandomWalk) step(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Iterate in the fixed sorted order: ranging over the price map would
	// let pairs consume RNG draws in a run-dependent order, breaking
	// seed determinism.
	for _, pair := range f.pairs {
		open := f.prices[pair]
		close := open * (1 + f.rng.NormFloat64()*defaultVolatility)
		if close <= 0 {
			close = open
		}
		high := maxPrice(open, close) * (1 + f.rng.Float64()*defaultVolatility/2)
		low := minPrice(open, close) * (1 - f.rng.Float64()*defaultVolatility/2)

		f.prices[pair] = close
		candles := append(f.history[pair], models.Candle{
			Timestamp: now,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    100 + f.rng.Int63n(900),
		})
		if len(candles) > f.depth {
			candles = candles[len(candles)-f.depth:]
		}
		f.history[pair] = candles
	}
}

func maxPrice(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minPrice(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
