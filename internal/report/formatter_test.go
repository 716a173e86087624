package report

import (
	"strings"
	"testing"
	"time"

	"DipSentinel/internal/model"
)

func TestBanner(t *testing.T) {
	tests := []struct {
		scores []int
		want   string
	}{
		{nil, "No dip conditions"},
		{[]int{0, 0}, "No dip conditions"},
		{[]int{1, 0}, "Only warm dips"},
		{[]int{1, 2}, "NEAR-DIP"},
		{[]int{3, 2, 1}, "FULL PRE-DIP DETECTED"},
	}
	for _, tt := range tests {
		r := &model.ScreenReport{}
		for _, s := range tt.scores {
			r.Results = append(r.Results, model.ScoreResult{Score: s, Tier: tierFor(s)})
		}
		if got := Banner(r); !strings.Contains(got, tt.want) {
			t.Errorf("Banner(%v) = %q, want %q", tt.scores, got, tt.want)
		}
	}
}

func tierFor(score int) model.Tier {
	return []model.Tier{model.TierNone, model.TierWarmDip, model.TierNearDip, model.TierFullPreDip}[score]
}

func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		RunID:      "run-1",
		FinishedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		Universe:   5,
		Report: &model.ScreenReport{
			Trend: model.MarketTrend{Symbol: "BTCUSDT", Interval: model.Interval4h, Close: 60000, EMA: 61000, EMAPeriod: 21, Below: true},
			Results: []model.ScoreResult{
				{Symbol: "XUSDT", Score: 3, Tier: model.TierFullPreDip, Triggers: []model.Trigger{
					{Kind: model.TriggerTrendDown, Active: true},
					{Kind: model.TriggerShockDrop, Active: true},
					{Kind: model.TriggerMomentumOversold, Active: true},
				}},
				{Symbol: "YUSDT", Score: 1, Tier: model.TierWarmDip},
				{Symbol: "ZUSDT", Score: 1, Tier: model.TierWarmDip},
				{Symbol: "QUSDT", Score: 0, Tier: model.TierNone},
			},
			Unavailable: []model.UnavailableSymbol{{Symbol: "DEADUSDT", Cause: model.CauseDataUnavailable}},
		},
	}
}

func TestSummarize(t *testing.T) {
	h := Summarize(sampleSnapshot())
	if len(h.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(h.Groups))
	}
	if h.Groups[0].Tier != model.TierFullPreDip || len(h.Groups[0].Results) != 1 {
		t.Errorf("first group = %+v", h.Groups[0])
	}
	if h.Groups[1].Tier != model.TierWarmDip || len(h.Groups[1].Results) != 2 {
		t.Errorf("second group = %+v", h.Groups[1])
	}
	if !strings.Contains(h.Trend, "below EMA") || !strings.Contains(h.Trend, "EMA-21 61000.00") {
		t.Errorf("trend = %q", h.Trend)
	}
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(sampleSnapshot())
	for _, want := range []string{"FULL PRE-DIP DETECTED", "XUSDT", "WARM-DIP (2)", "Scored 4 of 5 symbols, 1 unavailable"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "QUSDT") {
		t.Error("score-0 symbol should not be listed")
	}
}

func TestFormatReport_Failed(t *testing.T) {
	out := FormatReport(&model.Snapshot{RunID: "r", Error: "could not complete screen: market data unavailable"})
	if !strings.Contains(out, "could not complete screen") {
		t.Errorf("report = %q", out)
	}
}
