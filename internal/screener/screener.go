// Package screener runs one screening pass over a symbol universe.
package screener

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"DipSentinel/internal/calculator"
	"DipSentinel/internal/logger"
	"DipSentinel/internal/model"
	"DipSentinel/internal/strategy"
)

// ErrMarketDataUnavailable means the market-wide trend could not be computed and
// the pass has no result.
var ErrMarketDataUnavailable = errors.New("market data unavailable")

const DefaultWorkers = 8

// Source produces the indicator inputs of a pass.
type Source interface {
	CollectTrend(ctx context.Context) (model.MarketTrend, error)
	Collect(ctx context.Context, symbol string) (model.IndicatorSnapshot, error)
}

// Screener scores a universe against fixed thresholds.
type Screener struct {
	source     Source
	thresholds model.Thresholds
	workers    int
	log        *logger.Logger
}

type Option func(*Screener)

// WithWorkers bounds the number of symbols processed concurrently.
func WithWorkers(n int) Option {
	return func(s *Screener) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Screener) {
		if l != nil {
			s.log = l
		}
	}
}

func New(source Source, th model.Thresholds, opts ...Option) *Screener {
	s := &Screener{
		source:     source,
		thresholds: th,
		workers:    DefaultWorkers,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type outcome struct {
	result      model.ScoreResult
	unavailable *model.UnavailableSymbol
}

type indexed struct {
	idx int
	out outcome
}

// Run executes one pass. Per-symbol failures are reported in the result's
// Unavailable list; only a failed trend check aborts the pass.
func (s *Screener) Run(ctx context.Context, universe []string) (*model.ScreenReport, error) {
	symbols := DedupeUniverse(universe)
	report := &model.ScreenReport{
		Results:     []model.ScoreResult{},
		Unavailable: []model.UnavailableSymbol{},
	}
	if len(symbols) == 0 {
		return report, nil
	}

	trend, err := s.source.CollectTrend(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMarketDataUnavailable, trend.Symbol, err)
	}
	report.Trend = trend
	trendDown := strategy.EvaluateTrendDown(trend)

	slots := s.collect(ctx, symbols, trendDown)
	for _, o := range slots {
		if o.unavailable != nil {
			report.Unavailable = append(report.Unavailable, *o.unavailable)
			continue
		}
		report.Results = append(report.Results, o.result)
	}

	sort.SliceStable(report.Results, func(i, j int) bool {
		a, b := report.Results[i], report.Results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Symbol < b.Symbol
	})
	sort.SliceStable(report.Unavailable, func(i, j int) bool {
		return report.Unavailable[i].Symbol < report.Unavailable[j].Symbol
	})

	if n := len(report.Unavailable); n > 0 {
		names := make([]string, n)
		for i, u := range report.Unavailable {
			names[i] = u.Symbol
		}
		s.log.Info("symbols unavailable this pass", logger.Strings("symbols", names))
	}
	s.log.Debug("screen pass finished",
		logger.Int("symbols", len(symbols)),
		logger.Int("scored", len(report.Results)),
		logger.Int("unavailable", len(report.Unavailable)),
		logger.Bool("trend_down", trendDown.Active),
	)
	return report, nil
}

// collect fans the symbols out to a fixed worker pool. Each outcome is written to
// the slot of its symbol index.
func (s *Screener) collect(ctx context.Context, symbols []string, trendDown model.Trigger) []outcome {
	workers := s.workers
	if workers > len(symbols) {
		workers = len(symbols)
	}

	jobs := make(chan int)
	results := make(chan indexed, workers)
	slots := make([]outcome, len(symbols))

	for w := 0; w < workers; w++ {
		go func() {
			for idx := range jobs {
				results <- indexed{idx: idx, out: s.screenSymbol(ctx, symbols[idx], trendDown)}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := range symbols {
			jobs <- i
		}
	}()

	for range symbols {
		r := <-results
		slots[r.idx] = r.out
	}
	return slots
}

func (s *Screener) screenSymbol(ctx context.Context, symbol string, trendDown model.Trigger) outcome {
	ind, err := s.source.Collect(ctx, symbol)
	if err != nil {
		cause := model.CauseDataUnavailable
		if errors.Is(err, calculator.ErrInsufficientData) {
			cause = model.CauseInsufficientData
		}
		s.log.Debug("symbol unavailable",
			logger.String("symbol", symbol),
			logger.String("cause", string(cause)),
			logger.Error(err),
		)
		return outcome{unavailable: &model.UnavailableSymbol{
			Symbol: symbol,
			Cause:  cause,
			Reason: err.Error(),
		}}
	}
	return outcome{result: strategy.Evaluate(symbol, ind, trendDown, s.thresholds)}
}

// DedupeUniverse trims and upper-cases symbols, dropping blanks and repeats while
// keeping first-occurrence order.
func DedupeUniverse(universe []string) []string {
	seen := make(map[string]struct{}, len(universe))
	out := make([]string, 0, len(universe))
	for _, raw := range universe {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
