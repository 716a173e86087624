package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"DipSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	// Series is keyed by symbol; a symbol without an entry gets generated bars
	// around Price, or ErrDataUnavailable when Price is zero.
	Series map[string]model.CandleSeries
	Errors map[string]error
	Price  float64
	Delay  time.Duration

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(ctx context.Context, symbol string, interval model.Interval, limit int) (model.CandleSeries, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return model.CandleSeries{}, fmt.Errorf("%w: %s %s: %v", ErrDataUnavailable, symbol, interval, ctx.Err())
		}
	}
	if err, ok := m.Errors[symbol]; ok {
		return model.CandleSeries{}, err
	}

	series, ok := m.Series[symbol]
	if !ok {
		if m.Price == 0 {
			return model.CandleSeries{}, fmt.Errorf("%w: %s: unknown symbol", ErrDataUnavailable, symbol)
		}
		series = model.CandleSeries{Candles: generateMockBars(m.Price, interval, limit)}
	}
	series.Symbol = symbol
	series.Interval = interval
	if limit > 0 && len(series.Candles) > limit {
		series.Candles = series.Candles[len(series.Candles)-limit:]
	}
	return series, nil
}

// Calls returns how many times symbol was requested.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func generateMockBars(basePrice float64, interval model.Interval, count int) []model.Candle {
	step := interval.Duration()
	if step == 0 {
		step = 15 * time.Minute
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Candle{
			OpenTime: start.Add(time.Duration(i) * step),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			Volume:   1000000,
		}
	}
	return bars
}
