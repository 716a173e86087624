package model

import "time"

// TriggerKind names one of the three screening signals.
type TriggerKind string

const (
	TriggerTrendDown        TriggerKind = "TREND_DOWN"
	TriggerShockDrop        TriggerKind = "SHOCK_DROP"
	TriggerMomentumOversold TriggerKind = "MOMENTUM_OVERSOLD"
)

// Trigger is a boolean signal plus the values that produced it.
type Trigger struct {
	Kind       TriggerKind        `json:"kind"`
	Active     bool               `json:"active"`
	Inputs     map[string]float64 `json:"inputs"`
	Commentary string             `json:"commentary"`
}

// Tier buckets a score into a severity level.
type Tier string

const (
	TierFullPreDip Tier = "FULL_PRE_DIP"
	TierNearDip    Tier = "NEAR_DIP"
	TierWarmDip    Tier = "WARM_DIP"
	TierNone       Tier = "NONE"
)

// Label returns the human-readable tier name.
func (t Tier) Label() string {
	switch t {
	case TierFullPreDip:
		return "FULL PRE-DIP"
	case TierNearDip:
		return "NEAR-DIP"
	case TierWarmDip:
		return "WARM-DIP"
	}
	return "NONE"
}

// ScoreResult is the scored outcome for one symbol.
type ScoreResult struct {
	Symbol     string            `json:"symbol"`
	Triggers   []Trigger         `json:"triggers"`
	Score      int               `json:"score"`
	Tier       Tier              `json:"tier"`
	Indicators IndicatorSnapshot `json:"indicators"`
}

// Highlighted reports whether the result belongs in highlighted output.
func (r ScoreResult) Highlighted() bool { return r.Score > 0 }

// Trigger returns the trigger of the given kind.
func (r ScoreResult) Trigger(kind TriggerKind) (Trigger, bool) {
	for _, t := range r.Triggers {
		if t.Kind == kind {
			return t, true
		}
	}
	return Trigger{}, false
}

// UnavailableCause classifies why a symbol could not be scored.
type UnavailableCause string

const (
	CauseDataUnavailable  UnavailableCause = "DATA_UNAVAILABLE"
	CauseInsufficientData UnavailableCause = "INSUFFICIENT_DATA"
)

// UnavailableSymbol records a symbol skipped during a pass.
type UnavailableSymbol struct {
	Symbol string           `json:"symbol"`
	Cause  UnavailableCause `json:"cause"`
	Reason string           `json:"reason"`
}

// ScreenReport is the output of one screening pass.
type ScreenReport struct {
	Trend       MarketTrend         `json:"trend"`
	Results     []ScoreResult       `json:"results"`
	Unavailable []UnavailableSymbol `json:"unavailable"`
}

// Highlighted returns the results with at least one active trigger, in report order.
func (r *ScreenReport) Highlighted() []ScoreResult {
	var out []ScoreResult
	for _, res := range r.Results {
		if res.Highlighted() {
			out = append(out, res)
		}
	}
	return out
}

// TopTier returns the most severe tier present in the report.
func (r *ScreenReport) TopTier() Tier {
	best := TierNone
	top := 0
	for _, res := range r.Results {
		if res.Score > top {
			top = res.Score
			best = res.Tier
		}
	}
	return best
}

// Snapshot is a published screening pass, successful or not.
type Snapshot struct {
	RunID      string        `json:"runId"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Universe   int           `json:"universe"`
	Report     *ScreenReport `json:"report,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Failed reports whether the pass could not be completed.
func (s *Snapshot) Failed() bool { return s.Error != "" || s.Report == nil }
