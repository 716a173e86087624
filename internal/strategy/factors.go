package strategy

import (
	"fmt"

	"DipSentinel/internal/model"
)

// EvaluateTrendDown is active when the trend symbol closes below its EMA.
// It is computed once per pass and shared by every symbol.
func EvaluateTrendDown(trend model.MarketTrend) model.Trigger {
	active := trend.Close < trend.EMA
	return model.Trigger{
		Kind:   model.TriggerTrendDown,
		Active: active,
		Inputs: map[string]float64{
			"close": trend.Close,
			"ema":   trend.EMA,
		},
		Commentary: fmt.Sprintf("%s %s close %.2f vs EMA-%d %.2f", trend.Symbol, trend.Interval, trend.Close, trend.EMAPeriod, trend.EMA),
	}
}

// EvaluateShockDrop is active when the latest close fell by at least PriceDropPct
// AND the latest volume is at least VolumeSpikeRatio times the lookback average.
func EvaluateShockDrop(ind model.IndicatorSnapshot, th model.Thresholds) model.Trigger {
	dropped := ind.ChangePct <= th.PriceDropPct
	spiked := ind.VolumeRatio >= th.VolumeSpikeRatio
	return model.Trigger{
		Kind:   model.TriggerShockDrop,
		Active: dropped && spiked,
		Inputs: map[string]float64{
			"changePct":   ind.ChangePct,
			"volumeRatio": ind.VolumeRatio,
		},
		Commentary: fmt.Sprintf("change %+.2f%% (<= %.2f%%), volume x%.2f (>= x%.2f)", ind.ChangePct, th.PriceDropPct, ind.VolumeRatio, th.VolumeSpikeRatio),
	}
}

// EvaluateMomentumOversold is active when RSI is below the oversold threshold.
func EvaluateMomentumOversold(ind model.IndicatorSnapshot, th model.Thresholds) model.Trigger {
	return model.Trigger{
		Kind:   model.TriggerMomentumOversold,
		Active: ind.RSI < th.RSIOversold,
		Inputs: map[string]float64{
			"rsi": ind.RSI,
		},
		Commentary: fmt.Sprintf("RSI=%.1f (< %.0f)", ind.RSI, th.RSIOversold),
	}
}
