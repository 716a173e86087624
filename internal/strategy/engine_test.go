package strategy

import (
	"testing"

	"DipSentinel/internal/model"
)

var btcBelowEMA = model.MarketTrend{
	Symbol:    "BTCUSDT",
	Interval:  model.Interval4h,
	Close:     60000,
	EMA:       61000,
	EMAPeriod: 21,
}

func TestEvaluate_FullPreDip(t *testing.T) {
	ind := model.IndicatorSnapshot{
		Close:       97,
		PrevClose:   100,
		ChangePct:   -3,
		Volume:      300,
		AvgVolume:   100,
		VolumeRatio: 3.0,
		RSI:         22,
	}
	trend := EvaluateTrendDown(btcBelowEMA)
	if !trend.Active {
		t.Fatal("expected TrendDown when close 60000 < EMA 61000")
	}

	res := Evaluate("XUSDT", ind, trend, model.DefaultThresholds())
	if res.Score != 3 {
		t.Fatalf("expected score 3, got %d", res.Score)
	}
	if res.Tier != model.TierFullPreDip {
		t.Errorf("expected %s, got %s", model.TierFullPreDip, res.Tier)
	}
	for _, kind := range []model.TriggerKind{model.TriggerTrendDown, model.TriggerShockDrop, model.TriggerMomentumOversold} {
		tr, ok := res.Trigger(kind)
		if !ok || !tr.Active {
			t.Errorf("expected %s active", kind)
		}
	}
}

func TestEvaluate_WarmDip(t *testing.T) {
	ind := model.IndicatorSnapshot{
		Close:       99,
		PrevClose:   100,
		ChangePct:   -1,
		Volume:      300,
		AvgVolume:   100,
		VolumeRatio: 3.0,
		RSI:         45,
	}
	res := Evaluate("YUSDT", ind, EvaluateTrendDown(btcBelowEMA), model.DefaultThresholds())
	if res.Score != 1 {
		t.Fatalf("expected score 1, got %d", res.Score)
	}
	if res.Tier != model.TierWarmDip {
		t.Errorf("expected %s, got %s", model.TierWarmDip, res.Tier)
	}
	if tr, _ := res.Trigger(model.TriggerShockDrop); tr.Active {
		t.Error("a -1% move must not satisfy a -2% drop threshold")
	}
}

func TestEvaluateShockDrop_RequiresBothConditions(t *testing.T) {
	th := model.DefaultThresholds()
	tests := []struct {
		name      string
		changePct float64
		ratio     float64
		want      bool
	}{
		{"drop and spike", -3, 3, true},
		{"exact thresholds", -2, 2, true},
		{"drop without spike", -5, 1.5, false},
		{"spike without drop", -0.5, 4, false},
		{"rally with spike", 3, 4, false},
		{"nothing", 0, 0, false},
	}
	for _, tt := range tests {
		tr := EvaluateShockDrop(model.IndicatorSnapshot{ChangePct: tt.changePct, VolumeRatio: tt.ratio}, th)
		if tr.Active != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tr.Active)
		}
	}
}

func TestEvaluateMomentumOversold(t *testing.T) {
	th := model.DefaultThresholds()
	tests := []struct {
		rsi  float64
		want bool
	}{
		{22, true},
		{29.99, true},
		{30, false},
		{45, false},
	}
	for _, tt := range tests {
		tr := EvaluateMomentumOversold(model.IndicatorSnapshot{RSI: tt.rsi}, th)
		if tr.Active != tt.want {
			t.Errorf("RSI %.2f: expected %v, got %v", tt.rsi, tt.want, tr.Active)
		}
	}
}

func TestEvaluateTrendDown_AboveEMA(t *testing.T) {
	tr := EvaluateTrendDown(model.MarketTrend{Symbol: "BTCUSDT", Close: 62000, EMA: 61000, EMAPeriod: 21})
	if tr.Active {
		t.Error("close above EMA must not trigger TrendDown")
	}
	if tr.Inputs["close"] != 62000 || tr.Inputs["ema"] != 61000 {
		t.Errorf("unexpected inputs: %v", tr.Inputs)
	}
}

func TestMapTier_AllScores(t *testing.T) {
	tests := []struct {
		score int
		tier  model.Tier
	}{
		{3, model.TierFullPreDip},
		{2, model.TierNearDip},
		{1, model.TierWarmDip},
		{0, model.TierNone},
	}
	for _, tt := range tests {
		if got := mapTier(tt.score); got != tt.tier {
			t.Errorf("score %d: expected %s, got %s", tt.score, tt.tier, got)
		}
	}
}

func TestScore_CountsActiveTriggers(t *testing.T) {
	kinds := []model.TriggerKind{model.TriggerTrendDown, model.TriggerShockDrop, model.TriggerMomentumOversold}
	for mask := 0; mask < 8; mask++ {
		triggers := make([]model.Trigger, len(kinds))
		want := 0
		for i, k := range kinds {
			active := mask&(1<<i) != 0
			if active {
				want++
			}
			triggers[i] = model.Trigger{Kind: k, Active: active}
		}
		res := Score("ZUSDT", model.IndicatorSnapshot{}, triggers)
		if res.Score != want {
			t.Errorf("mask %03b: expected score %d, got %d", mask, want, res.Score)
		}
		if res.Tier != mapTier(want) {
			t.Errorf("mask %03b: tier %s does not match score %d", mask, res.Tier, want)
		}
		if res.Highlighted() != (want > 0) {
			t.Errorf("mask %03b: highlighted mismatch", mask)
		}
	}
}
