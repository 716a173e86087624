package report

import (
	"fmt"
	"strings"

	"DipSentinel/internal/model"
)

// Banner returns the headline for the most severe tier in the report.
func Banner(r *model.ScreenReport) string {
	switch r.TopTier() {
	case model.TierFullPreDip:
		return "🚨 FULL PRE-DIP DETECTED"
	case model.TierNearDip:
		return "⚠️ NEAR-DIP conditions detected"
	case model.TierWarmDip:
		return "🔥 Only warm dips at the moment"
	}
	return "✅ No dip conditions met right now"
}

// TrendLine describes the market-wide trend check.
func TrendLine(t model.MarketTrend) string {
	status := "above EMA"
	if t.Below {
		status = "below EMA"
	}
	return fmt.Sprintf("%s (%s) close %.2f | EMA-%d %.2f | %s",
		t.Symbol, t.Interval, t.Close, t.EMAPeriod, t.EMA, status)
}

// TierGroup is the highlighted results of one tier.
type TierGroup struct {
	Tier    model.Tier          `json:"tier"`
	Label   string              `json:"label"`
	Results []model.ScoreResult `json:"results"`
}

// Highlights is the summary view of a pass: banner, trend and non-zero tiers.
type Highlights struct {
	RunID  string      `json:"runId"`
	Banner string      `json:"banner"`
	Trend  string      `json:"trend"`
	Groups []TierGroup `json:"groups"`
}

var highlightOrder = []model.Tier{model.TierFullPreDip, model.TierNearDip, model.TierWarmDip}

// Summarize groups the highlighted results by tier, most severe first. Empty
// tiers are omitted.
func Summarize(snap *model.Snapshot) Highlights {
	r := snap.Report
	h := Highlights{
		RunID:  snap.RunID,
		Banner: Banner(r),
		Trend:  TrendLine(r.Trend),
		Groups: []TierGroup{},
	}
	byTier := make(map[model.Tier][]model.ScoreResult)
	for _, res := range r.Highlighted() {
		byTier[res.Tier] = append(byTier[res.Tier], res)
	}
	for _, tier := range highlightOrder {
		if len(byTier[tier]) == 0 {
			continue
		}
		h.Groups = append(h.Groups, TierGroup{Tier: tier, Label: tier.Label(), Results: byTier[tier]})
	}
	return h
}

func mark(active bool) string {
	if active {
		return "🟢"
	}
	return "🔴"
}

// FormatReport renders a snapshot as plain text for terminals and logs.
func FormatReport(snap *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 DipSentinel screen | %s | run %s\n\n",
		snap.FinishedAt.Format("2006-01-02 15:04:05"), snap.RunID))

	if snap.Failed() {
		b.WriteString(fmt.Sprintf("❌ %s\n", snap.Error))
		return b.String()
	}

	r := snap.Report
	h := Summarize(snap)
	b.WriteString(h.Trend + "\n")
	b.WriteString(h.Banner + "\n")

	for _, g := range h.Groups {
		b.WriteString(fmt.Sprintf("\n%s (%d)\n", g.Label, len(g.Results)))
		for _, res := range g.Results {
			b.WriteString(fmt.Sprintf("  %-12s RSI %6.2f | chg %+6.2f%% | vol x%5.2f | ", res.Symbol,
				res.Indicators.RSI, res.Indicators.ChangePct, res.Indicators.VolumeRatio))
			parts := make([]string, 0, len(res.Triggers))
			for _, t := range res.Triggers {
				parts = append(parts, fmt.Sprintf("%s %s", mark(t.Active), t.Kind))
			}
			b.WriteString(strings.Join(parts, " ") + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("\nScored %d of %d symbols", len(r.Results), snap.Universe))
	if n := len(r.Unavailable); n > 0 {
		b.WriteString(fmt.Sprintf(", %d unavailable", n))
	}
	b.WriteString("\n")
	return b.String()
}
