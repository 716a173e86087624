package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"DipSentinel/internal/model"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// BinanceFetcher implements Fetcher using Binance public spot market-data endpoints.
type BinanceFetcher struct {
	client  *binance.Client
	limiter *rate.Limiter
}

// NewBinanceFetcher creates a fetcher with optional proxy support. Requests are
// throttled to requestsPerSecond (unlimited when <= 0).
func NewBinanceFetcher(baseURL, proxyURL string, requestsPerSecond float64, burst int) *BinanceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}
	client.HTTPClient = &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &BinanceFetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

func (f *BinanceFetcher) FetchCandles(ctx context.Context, symbol string, interval model.Interval, limit int) (model.CandleSeries, error) {
	series := model.CandleSeries{Symbol: symbol, Interval: interval}
	if limit <= 0 {
		return series, fmt.Errorf("fetch %s %s: limit must be positive, got %d", symbol, interval, limit)
	}
	if !interval.Valid() {
		return series, fmt.Errorf("fetch %s: unsupported interval %q", symbol, interval)
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return series, fmt.Errorf("%w: %s %s: rate limit wait: %v", ErrDataUnavailable, symbol, interval, err)
	}

	klines, err := f.client.NewKlinesService().
		Symbol(symbol).
		Interval(string(interval)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return series, fmt.Errorf("%w: %s %s: binance error %d: %s", ErrDataUnavailable, symbol, interval, apiErr.Code, apiErr.Message)
		}
		return series, fmt.Errorf("%w: %s %s: %v", ErrDataUnavailable, symbol, interval, err)
	}

	candles, err := normalizeKlines(klines)
	if err != nil {
		return series, fmt.Errorf("%w: %s %s: %v", ErrDataUnavailable, symbol, interval, err)
	}
	if len(candles) < limit {
		return series, fmt.Errorf("%w: %s %s: got %d of %d candles", ErrDataUnavailable, symbol, interval, len(candles), limit)
	}
	series.Candles = candles[len(candles)-limit:]
	return series, nil
}

// ListSymbols returns spot symbols that are trading and quoted in quoteAsset, sorted.
func (f *BinanceFetcher) ListSymbols(ctx context.Context, quoteAsset string) ([]string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("exchange info: rate limit wait: %w", err)
	}
	info, err := f.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}

	var symbols []string
	for _, s := range info.Symbols {
		if s.Status != "TRADING" || !s.IsSpotTradingAllowed {
			continue
		}
		if !strings.EqualFold(s.QuoteAsset, quoteAsset) {
			continue
		}
		symbols = append(symbols, s.Symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// normalizeKlines converts exchange klines to candles ordered by open time with
// duplicate open times collapsed to the last occurrence.
func normalizeKlines(klines []*binance.Kline) ([]model.Candle, error) {
	candles := make([]model.Candle, 0, len(klines))
	for _, k := range klines {
		if k == nil {
			continue
		}
		c, err := toCandle(k)
		if err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})

	out := candles[:0]
	for _, c := range candles {
		if n := len(out); n > 0 && out[n-1].OpenTime.Equal(c.OpenTime) {
			out[n-1] = c
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func toCandle(k *binance.Kline) (model.Candle, error) {
	fields := [5]string{k.Open, k.High, k.Low, k.Close, k.Volume}
	var values [5]float64
	for i, s := range fields {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return model.Candle{}, fmt.Errorf("kline %d: parse %q: %w", k.OpenTime, s, err)
		}
		values[i] = d.InexactFloat64()
	}
	return model.Candle{
		OpenTime: time.UnixMilli(k.OpenTime).UTC(),
		Open:     values[0],
		High:     values[1],
		Low:      values[2],
		Close:    values[3],
		Volume:   values[4],
	}, nil
}
