package calculator

import (
	"errors"
	"fmt"

	"DipSentinel/internal/model"
)

var (
	// ErrInsufficientData is returned when a series is shorter than an indicator requires.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidPeriod is returned for non-positive periods or lookbacks.
	ErrInvalidPeriod = errors.New("period must be positive")
)

// CalculateSMA computes the simple moving average of the first period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(prices) < period {
		return 0, fmt.Errorf("sma(%d) over %d prices: %w", period, len(prices), ErrInsufficientData)
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEMA returns the latest exponential moving average of the series closes.
// The average is seeded with the SMA of the first period closes and then updated
// with smoothing factor 2/(period+1) over the remaining closes.
func CalculateEMA(series model.CandleSeries, period int) (float64, error) {
	values, err := EMASeries(series.Closes(), period)
	if err != nil {
		return 0, err
	}
	return values[len(values)-1], nil
}

// EMASeries returns the EMA aligned with prices. Entries before index period-1 are
// unseeded and left at zero.
func EMASeries(prices []float64, period int) ([]float64, error) {
	seed, err := CalculateSMA(prices, period)
	if err != nil {
		return nil, fmt.Errorf("ema(%d): %w", period, err)
	}
	out := make([]float64, len(prices))
	out[period-1] = seed
	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(prices); i++ {
		out[i] = prices[i]*k + out[i-1]*(1-k)
	}
	return out, nil
}
