package strategy

import "DipSentinel/internal/model"

// Tiers maps trigger counts to severity tiers.
var Tiers = []struct {
	MinScore int
	Tier     model.Tier
}{
	{3, model.TierFullPreDip},
	{2, model.TierNearDip},
	{1, model.TierWarmDip},
}

// mapTier maps a trigger count to a Tier.
func mapTier(score int) model.Tier {
	for _, t := range Tiers {
		if score >= t.MinScore {
			return t.Tier
		}
	}
	return model.TierNone
}

// Score counts the active triggers and assigns the tier.
func Score(symbol string, ind model.IndicatorSnapshot, triggers []model.Trigger) model.ScoreResult {
	score := 0
	for _, t := range triggers {
		if t.Active {
			score++
		}
	}
	return model.ScoreResult{
		Symbol:     symbol,
		Triggers:   triggers,
		Score:      score,
		Tier:       mapTier(score),
		Indicators: ind,
	}
}

// Evaluate derives the per-symbol triggers and combines them with the shared trend trigger.
func Evaluate(symbol string, ind model.IndicatorSnapshot, trendDown model.Trigger, th model.Thresholds) model.ScoreResult {
	triggers := []model.Trigger{
		trendDown,
		EvaluateShockDrop(ind, th),
		EvaluateMomentumOversold(ind, th),
	}
	return Score(symbol, ind, triggers)
}
