package model

import "time"

// Interval is a kline interval recognised by the exchange.
type Interval string

const (
	Interval15m Interval = "15m"
	Interval4h  Interval = "4h"
)

// Valid reports whether the interval is one the screener knows how to fetch.
func (i Interval) Valid() bool {
	return i == Interval15m || i == Interval4h
}

// Duration returns the wall-clock width of one candle.
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval15m:
		return 15 * time.Minute
	case Interval4h:
		return 4 * time.Hour
	}
	return 0
}

// Candle represents a single OHLCV bar keyed by its open time.
type Candle struct {
	OpenTime time.Time `json:"openTime"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// CandleSeries holds the most recent candles of one symbol and interval, oldest first.
type CandleSeries struct {
	Symbol   string   `json:"symbol"`
	Interval Interval `json:"interval"`
	Candles  []Candle `json:"candles"`
}

func (s CandleSeries) Len() int { return len(s.Candles) }

// Last returns the newest candle. Callers must check Len first.
func (s CandleSeries) Last() Candle { return s.Candles[len(s.Candles)-1] }

// Closes returns the closing prices in series order.
func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Volumes returns the base-asset volumes in series order.
func (s CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// MarketTrend is the market-wide trend check computed once per screening pass.
type MarketTrend struct {
	Symbol    string   `json:"symbol"`
	Interval  Interval `json:"interval"`
	Close     float64  `json:"close"`
	EMA       float64  `json:"ema"`
	EMAPeriod int      `json:"emaPeriod"`
	Below     bool     `json:"below"`
}

// ChartPoint is one candle with its overlays for dashboard rendering.
type ChartPoint struct {
	Candle
	EMA         *float64 `json:"ema,omitempty"` // nil until the EMA is seeded
	VolumeSpike bool     `json:"volumeSpike"`
}

// Chart is a candle series with EMA overlay and volume-spike markers.
type Chart struct {
	Symbol    string       `json:"symbol"`
	Interval  Interval     `json:"interval"`
	EMAPeriod int          `json:"emaPeriod"`
	Points    []ChartPoint `json:"points"`
}
