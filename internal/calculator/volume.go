package calculator

import (
	"fmt"
	"math"

	"DipSentinel/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RecentVolumeSpike compares the latest candle's volume with the mean volume of the
// lookback candles before it. The ratio is 0 when the average is 0.
func RecentVolumeSpike(series model.CandleSeries, lookback int) (current, average, ratio float64, err error) {
	if lookback <= 0 {
		return 0, 0, 0, ErrInvalidPeriod
	}
	n := series.Len()
	if n < lookback+1 {
		return 0, 0, 0, fmt.Errorf("volume lookback %d over %d candles: %w", lookback, n, ErrInsufficientData)
	}
	current = series.Candles[n-1].Volume
	for i := n - 1 - lookback; i < n-1; i++ {
		average += series.Candles[i].Volume
	}
	average /= float64(lookback)
	if average > 0 {
		ratio = current / average
	}
	return current, average, ratio, nil
}

// VolumeSpikeFlags marks every candle whose volume is at least ratio times the mean of
// the lookback candles before it. Candles without a full lookback are never flagged.
func VolumeSpikeFlags(volumes []float64, lookback int, ratio float64) []bool {
	flags := make([]bool, len(volumes))
	if lookback <= 0 {
		return flags
	}
	sum := 0.0
	for i, v := range volumes {
		if i >= lookback {
			avg := sum / float64(lookback)
			flags[i] = avg > 0 && v >= avg*ratio
			sum -= volumes[i-lookback]
		}
		sum += v
	}
	return flags
}

// PercentChange returns the change from prev to latest in percent, 0 when prev is 0.
// Prices are taken at their shortest decimal form so a drop of exactly 2% reads
// as -2 at every price level.
func PercentChange(prev, latest float64) float64 {
	if prev == 0 {
		return 0
	}
	p := decimal.NewFromFloat(prev)
	l := decimal.NewFromFloat(latest)
	return l.Sub(p).Div(p).Mul(hundred).InexactFloat64()
}

// CloseRange returns the lowest and highest close in the series.
func CloseRange(series model.CandleSeries) (low, high float64, err error) {
	if series.Len() == 0 {
		return 0, 0, fmt.Errorf("close range: %w", ErrInsufficientData)
	}
	low, high = math.Inf(1), math.Inf(-1)
	for _, c := range series.Candles {
		low = math.Min(low, c.Close)
		high = math.Max(high, c.Close)
	}
	return low, high, nil
}
