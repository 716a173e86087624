package model

// IndicatorSnapshot holds the indicators derived from one symbol's candle series.
type IndicatorSnapshot struct {
	EMA         float64 `json:"ema"`
	RSI         float64 `json:"rsi"`
	Close       float64 `json:"close"`
	PrevClose   float64 `json:"prevClose"`
	ChangePct   float64 `json:"changePct"` // latest close vs previous close, percent
	Volume      float64 `json:"volume"`
	AvgVolume   float64 `json:"avgVolume"` // mean of the lookback candles before the latest
	VolumeRatio float64 `json:"volumeRatio"`
}

// Thresholds configures indicator periods and trigger cut-offs.
type Thresholds struct {
	EMAPeriod        int
	RSIPeriod        int
	RSIOversold      float64
	PriceDropPct     float64 // negative, e.g. -2 means a drop of at least 2%
	VolumeSpikeRatio float64
	VolumeLookback   int
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EMAPeriod:        21,
		RSIPeriod:        14,
		RSIOversold:      30,
		PriceDropPct:     -2,
		VolumeSpikeRatio: 2,
		VolumeLookback:   20,
	}
}

// MinCandles is the shortest series for which every per-symbol indicator can be computed.
func (t Thresholds) MinCandles() int {
	n := t.EMAPeriod
	if t.RSIPeriod+1 > n {
		n = t.RSIPeriod + 1
	}
	if t.VolumeLookback+1 > n {
		n = t.VolumeLookback + 1
	}
	return n
}
