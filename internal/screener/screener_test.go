package screener

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"DipSentinel/internal/calculator"
	"DipSentinel/internal/collector"
	"DipSentinel/internal/model"
)

type fakeSource struct {
	trend      model.MarketTrend
	trendErr   error
	indicators map[string]model.IndicatorSnapshot
	errs       map[string]error

	trendCalls atomic.Int32
	mu         sync.Mutex
	collected  []string
}

func (f *fakeSource) CollectTrend(context.Context) (model.MarketTrend, error) {
	f.trendCalls.Add(1)
	return f.trend, f.trendErr
}

func (f *fakeSource) Collect(_ context.Context, symbol string) (model.IndicatorSnapshot, error) {
	f.mu.Lock()
	f.collected = append(f.collected, symbol)
	f.mu.Unlock()
	if err, ok := f.errs[symbol]; ok {
		return model.IndicatorSnapshot{}, err
	}
	ind, ok := f.indicators[symbol]
	if !ok {
		return ind, fmt.Errorf("%w: %s", collector.ErrDataUnavailable, symbol)
	}
	return ind, nil
}

var btcBelow = model.MarketTrend{Symbol: "BTCUSDT", Interval: model.Interval4h, Close: 60000, EMA: 61000, EMAPeriod: 21, Below: true}

func TestRun_Scenarios(t *testing.T) {
	src := &fakeSource{
		trend: btcBelow,
		indicators: map[string]model.IndicatorSnapshot{
			"XUSDT": {ChangePct: -3, VolumeRatio: 3, RSI: 22},
			"YUSDT": {ChangePct: -1, VolumeRatio: 3, RSI: 45},
		},
	}
	report, err := New(src, model.DefaultThresholds()).Run(context.Background(), []string{"YUSDT", "XUSDT"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(report.Results))
	}
	x, y := report.Results[0], report.Results[1]
	if x.Symbol != "XUSDT" || x.Score != 3 || x.Tier != model.TierFullPreDip {
		t.Errorf("X = %s score %d tier %s, want XUSDT 3 FULL_PRE_DIP", x.Symbol, x.Score, x.Tier)
	}
	if y.Symbol != "YUSDT" || y.Score != 1 || y.Tier != model.TierWarmDip {
		t.Errorf("Y = %s score %d tier %s, want YUSDT 1 WARM_DIP", y.Symbol, y.Score, y.Tier)
	}
	if !report.Trend.Below {
		t.Error("report should carry the trend")
	}
}

func TestRun_IsolatesFailures(t *testing.T) {
	src := &fakeSource{
		trend: btcBelow,
		indicators: map[string]model.IndicatorSnapshot{
			"AUSDT": {RSI: 50},
			"CUSDT": {RSI: 20},
		},
		errs: map[string]error{
			"NEWUSDT": fmt.Errorf("NEWUSDT: %w", calculator.ErrInsufficientData),
		},
	}
	report, err := New(src, model.DefaultThresholds(), WithWorkers(3)).
		Run(context.Background(), []string{"AUSDT", "DEADUSDT", "CUSDT", "NEWUSDT"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(report.Results))
	}
	if report.Results[0].Symbol != "CUSDT" || report.Results[0].Score != 2 {
		t.Errorf("first = %+v", report.Results[0])
	}
	want := []model.UnavailableSymbol{
		{Symbol: "DEADUSDT", Cause: model.CauseDataUnavailable},
		{Symbol: "NEWUSDT", Cause: model.CauseInsufficientData},
	}
	if len(report.Unavailable) != len(want) {
		t.Fatalf("unavailable = %+v", report.Unavailable)
	}
	for i, w := range want {
		got := report.Unavailable[i]
		if got.Symbol != w.Symbol || got.Cause != w.Cause || got.Reason == "" {
			t.Errorf("unavailable[%d] = %+v, want %s %s", i, got, w.Symbol, w.Cause)
		}
	}
}

func TestRun_TrendFailureIsFatal(t *testing.T) {
	src := &fakeSource{trendErr: collector.ErrDataUnavailable}
	report, err := New(src, model.DefaultThresholds()).Run(context.Background(), []string{"ETHUSDT"})
	if !errors.Is(err, ErrMarketDataUnavailable) {
		t.Fatalf("err = %v, want ErrMarketDataUnavailable", err)
	}
	if report != nil {
		t.Error("report should be nil on a failed pass")
	}
	if len(src.collected) != 0 {
		t.Errorf("symbols fetched after trend failure: %v", src.collected)
	}
}

func TestRun_EmptyUniverse(t *testing.T) {
	src := &fakeSource{trendErr: errors.New("must not be called")}
	report, err := New(src, model.DefaultThresholds()).Run(context.Background(), []string{" ", ""})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Results) != 0 || len(report.Unavailable) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
	if src.trendCalls.Load() != 0 {
		t.Error("trend fetched for an empty universe")
	}
}

func TestRun_TrendFetchedOnce(t *testing.T) {
	src := &fakeSource{trend: btcBelow, indicators: map[string]model.IndicatorSnapshot{}}
	universe := make([]string, 50)
	for i := range universe {
		universe[i] = fmt.Sprintf("S%02dUSDT", i)
		src.indicators[universe[i]] = model.IndicatorSnapshot{RSI: float64(i)}
	}
	if _, err := New(src, model.DefaultThresholds(), WithWorkers(4)).Run(context.Background(), universe); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := src.trendCalls.Load(); n != 1 {
		t.Errorf("trend calls = %d, want 1", n)
	}
	if len(src.collected) != 50 {
		t.Errorf("collected = %d, want 50", len(src.collected))
	}
}

func TestRun_Deterministic(t *testing.T) {
	mf := &collector.MockFetcher{Price: 100, Errors: map[string]error{
		"BADUSDT": fmt.Errorf("%w: delisted", collector.ErrDataUnavailable),
	}}
	col := collector.NewCollector(mf, model.DefaultThresholds())
	universe := []string{"ETHUSDT", "SOLUSDT", "BADUSDT", "ADAUSDT", "ETHUSDT", "XRPUSDT"}

	var first *model.ScreenReport
	for i := 0; i < 5; i++ {
		report, err := New(col, model.DefaultThresholds(), WithWorkers(i+1)).Run(context.Background(), universe)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if first == nil {
			first = report
			continue
		}
		if !reflect.DeepEqual(first, report) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
	if len(first.Results) != 4 || len(first.Unavailable) != 1 {
		t.Errorf("results=%d unavailable=%d, want 4 and 1", len(first.Results), len(first.Unavailable))
	}
	if mf.Calls("BTCUSDT") != 5 {
		t.Errorf("BTC fetched %d times over 5 passes", mf.Calls("BTCUSDT"))
	}
}

func TestRun_SlowSymbolTimesOut(t *testing.T) {
	slow := &slowFetcher{MockFetcher: &collector.MockFetcher{Price: 100}, slow: "SLOWUSDT", delay: time.Second}
	col := collector.NewCollector(slow, model.DefaultThresholds())
	col.FetchTimeout = 30 * time.Millisecond

	report, err := New(col, model.DefaultThresholds()).Run(context.Background(), []string{"ETHUSDT", "SLOWUSDT"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Unavailable) != 1 || report.Unavailable[0].Symbol != "SLOWUSDT" {
		t.Errorf("unavailable = %+v, want SLOWUSDT", report.Unavailable)
	}
	if len(report.Results) != 1 {
		t.Errorf("results = %d, want 1", len(report.Results))
	}
}

type slowFetcher struct {
	*collector.MockFetcher
	slow  string
	delay time.Duration
}

func (f *slowFetcher) FetchCandles(ctx context.Context, symbol string, interval model.Interval, limit int) (model.CandleSeries, error) {
	if symbol == f.slow {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.CandleSeries{}, ctx.Err()
		}
	}
	return f.MockFetcher.FetchCandles(ctx, symbol, interval, limit)
}

func TestDedupeUniverse(t *testing.T) {
	got := DedupeUniverse([]string{" ethusdt", "ETHUSDT", "", "SOLUSDT", "solusdt ", "BNBUSDT"})
	want := []string{"ETHUSDT", "SOLUSDT", "BNBUSDT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
