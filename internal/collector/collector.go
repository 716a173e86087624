package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DipSentinel/internal/calculator"
	"DipSentinel/internal/model"
)

const (
	DefaultTrendSymbol  = "BTCUSDT"
	DefaultTrendLimit   = 30
	DefaultPairLimit    = 100
	DefaultFetchTimeout = 10 * time.Second
)

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher       Fetcher
	Thresholds    model.Thresholds
	TrendSymbol   string
	TrendInterval model.Interval
	TrendLimit    int
	PairInterval  model.Interval
	PairLimit     int
	FetchTimeout  time.Duration
}

// NewCollector creates a Collector with the default BTC trend and 15m pair settings.
func NewCollector(fetcher Fetcher, th model.Thresholds) *Collector {
	return &Collector{
		Fetcher:       fetcher,
		Thresholds:    th,
		TrendSymbol:   DefaultTrendSymbol,
		TrendInterval: model.Interval4h,
		TrendLimit:    DefaultTrendLimit,
		PairInterval:  model.Interval15m,
		PairLimit:     DefaultPairLimit,
		FetchTimeout:  DefaultFetchTimeout,
	}
}

// CollectTrend fetches the trend symbol and compares its latest close with its EMA.
func (c *Collector) CollectTrend(ctx context.Context) (model.MarketTrend, error) {
	trend := model.MarketTrend{
		Symbol:    c.TrendSymbol,
		Interval:  c.TrendInterval,
		EMAPeriod: c.Thresholds.EMAPeriod,
	}
	series, err := c.fetch(ctx, c.TrendSymbol, c.TrendInterval, c.TrendLimit)
	if err != nil {
		return trend, err
	}
	ema, err := calculator.CalculateEMA(series, c.Thresholds.EMAPeriod)
	if err != nil {
		return trend, fmt.Errorf("%s %s ema: %w", c.TrendSymbol, c.TrendInterval, err)
	}
	trend.Close = series.Last().Close
	trend.EMA = ema
	trend.Below = trend.Close < trend.EMA
	return trend, nil
}

// Collect fetches one symbol's pair series and computes its indicator snapshot.
func (c *Collector) Collect(ctx context.Context, symbol string) (model.IndicatorSnapshot, error) {
	var ind model.IndicatorSnapshot

	series, err := c.fetch(ctx, symbol, c.PairInterval, c.PairLimit)
	if err != nil {
		return ind, err
	}
	if n, need := series.Len(), c.Thresholds.MinCandles(); n < need || n < 2 {
		return ind, fmt.Errorf("%s: have %d candles, need %d: %w", symbol, n, need, calculator.ErrInsufficientData)
	}

	if ind.EMA, err = calculator.CalculateEMA(series, c.Thresholds.EMAPeriod); err != nil {
		return ind, fmt.Errorf("%s ema: %w", symbol, err)
	}
	if ind.RSI, err = calculator.CalculateRSI(series, c.Thresholds.RSIPeriod); err != nil {
		return ind, fmt.Errorf("%s rsi: %w", symbol, err)
	}
	if ind.Volume, ind.AvgVolume, ind.VolumeRatio, err = calculator.RecentVolumeSpike(series, c.Thresholds.VolumeLookback); err != nil {
		return ind, fmt.Errorf("%s volume: %w", symbol, err)
	}

	ind.Close = series.Last().Close
	ind.PrevClose = series.Candles[series.Len()-2].Close
	ind.ChangePct = calculator.PercentChange(ind.PrevClose, ind.Close)
	return ind, nil
}

// Chart returns the latest limit pair candles with EMA overlay and volume-spike markers.
func (c *Collector) Chart(ctx context.Context, symbol string, limit int) (*model.Chart, error) {
	series, err := c.fetch(ctx, symbol, c.PairInterval, limit)
	if err != nil {
		return nil, err
	}

	chart := &model.Chart{
		Symbol:    symbol,
		Interval:  c.PairInterval,
		EMAPeriod: c.Thresholds.EMAPeriod,
		Points:    make([]model.ChartPoint, series.Len()),
	}
	ema, emaErr := calculator.EMASeries(series.Closes(), c.Thresholds.EMAPeriod)
	spikes := calculator.VolumeSpikeFlags(series.Volumes(), c.Thresholds.VolumeLookback, c.Thresholds.VolumeSpikeRatio)

	for i, candle := range series.Candles {
		p := model.ChartPoint{Candle: candle, VolumeSpike: spikes[i]}
		if emaErr == nil && i >= c.Thresholds.EMAPeriod-1 {
			v := ema[i]
			p.EMA = &v
		}
		chart.Points[i] = p
	}
	return chart, nil
}

// fetch applies the per-fetch timeout and classifies every failure as data unavailable.
func (c *Collector) fetch(ctx context.Context, symbol string, interval model.Interval, limit int) (model.CandleSeries, error) {
	if c.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.FetchTimeout)
		defer cancel()
	}
	series, err := c.Fetcher.FetchCandles(ctx, symbol, interval, limit)
	if err != nil {
		if errors.Is(err, ErrDataUnavailable) {
			return series, err
		}
		return series, fmt.Errorf("%w: %s %s: %w", ErrDataUnavailable, symbol, interval, err)
	}
	return series, nil
}
