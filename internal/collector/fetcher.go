package collector

import (
	"context"
	"errors"

	"DipSentinel/internal/model"
)

// ErrDataUnavailable is returned when candles cannot be fetched: unknown or delisted
// symbol, unreachable endpoint, timeout, or a short response.
var ErrDataUnavailable = errors.New("data unavailable")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchCandles returns the latest limit candles, oldest first.
	FetchCandles(ctx context.Context, symbol string, interval model.Interval, limit int) (model.CandleSeries, error)
	Name() string
}
