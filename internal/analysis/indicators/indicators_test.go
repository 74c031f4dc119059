package indicators

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otc-trader/internal/models"
)

func candles(closes ...float64) []models.Candle {
	cs := make([]models.Candle, len(closes))
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, c := range closes {
		cs[i] = models.Candle{Timestamp: ts.Add(time.Duration(i) * time.Second), Close: c}
	}
	return cs
}

func TestSMAKnownValues(t *testing.T) {
	sma := NewSMA(3)
	values, err := sma.Calculate(candles(1, 2, 3, 4, 5))
	require.NoError(t, err)

	assert.InDelta(t, 2, values[2], 1e-9)
	assert.InDelta(t, 3, values[3], 1e-9)
	assert.InDelta(t, 4, values[4], 1e-9)
}

func TestSMAInsufficientData(t *testing.T) {
	_, err := NewSMA(5).Calculate(candles(1, 2, 3))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSMAInvalidPeriod(t *testing.T) {
	_, err := NewSMA(0).Calculate(candles(1, 2, 3))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	rsi := NewRSI(14)
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 1 + float64(i)*0.01
	}
	values, err := rsi.Calculate(candles(closes...))
	require.NoError(t, err)
	assert.Equal(t, 100.0, values[len(values)-1])
}

func TestRSIAllLossesNearZero(t *testing.T) {
	rsi := NewRSI(14)
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 2 - float64(i)*0.01
	}
	values, err := rsi.Calculate(candles(closes...))
	require.NoError(t, err)
	assert.InDelta(t, 0, values[len(values)-1], 1e-9)
}

func TestRSIBalancedMovesNearFifty(t *testing.T) {
	rsi := NewRSI(14)
	closes := []float64{1}
	price := 1.0
	for i := 0; i < 28; i++ {
		if i%2 == 0 {
			price += 0.01
		} else {
			price -= 0.01
		}
		closes = append(closes, price)
	}
	values, err := rsi.Calculate(candles(closes...))
	require.NoError(t, err)
	assert.InDelta(t, 50, values[len(values)-1], 5)
}

func TestRSIInsufficientData(t *testing.T) {
	_, err := NewRSI(14).Calculate(candles(1, 2, 3))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

// Property: RSI stays within [0, 100] for any price path.
func TestProperty_RSIBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("0 <= RSI <= 100", prop.ForAll(
		func(closes []float64) bool {
			values, err := NewRSI(14).Calculate(candles(closes...))
			if err != nil {
				return true // short series carry no values to check
			}
			for _, v := range values[14:] {
				if v < 0 || v > 100 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(40, gen.Float64Range(0.5, 2.0)),
	))

	properties.TestingRun(t)
}
