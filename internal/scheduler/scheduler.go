package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"DipSentinel/internal/collector"
	"DipSentinel/internal/logger"
	"DipSentinel/internal/metrics"
	"DipSentinel/internal/model"
	"DipSentinel/internal/recorder"
	"DipSentinel/internal/screener"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Runner executes one screening pass.
type Runner interface {
	Run(ctx context.Context, universe []string) (*model.ScreenReport, error)
}

// Publisher receives every snapshot once it is recorded.
type Publisher interface {
	Publish(snap *model.Snapshot)
}

// Scheduler runs screening passes on a cron schedule and on demand.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    Runner
	Universe  collector.Universe
	Recorder  recorder.Recorder
	Metrics   *metrics.Recorder
	Publisher Publisher
	Log       *logger.Logger
	Ctx       context.Context

	running sync.Mutex
	now     func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, universe collector.Universe, rec recorder.Recorder, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Universe: universe,
		Recorder: rec,
		Log:      log,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// Register adds the screening pass under the given cron spec (seconds field enabled).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.screenTask); err != nil {
		return fmt.Errorf("register screen task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running pass to finish,
// including one started by RunNow or Trigger.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.running.Lock()
	s.running.Unlock()
	s.Log.Info("scheduler stopped")
}

// RunNow executes a pass immediately. It returns false without running when
// another pass is still in progress.
func (s *Scheduler) RunNow() (*model.Snapshot, bool) {
	if !s.running.TryLock() {
		s.Log.Warn("screen pass already running, skipping")
		return nil, false
	}
	defer s.running.Unlock()
	return s.runPass(), true
}

// Trigger starts a pass in the background. It returns false when a pass is
// already running.
func (s *Scheduler) Trigger() bool {
	if !s.running.TryLock() {
		return false
	}
	go func() {
		defer s.running.Unlock()
		s.runPass()
	}()
	return true
}

func (s *Scheduler) screenTask() {
	s.RunNow()
}

func (s *Scheduler) runPass() *model.Snapshot {
	snap := &model.Snapshot{
		RunID:     uuid.NewString(),
		StartedAt: s.now().UTC(),
	}
	log := s.Log.With(logger.String("run_id", snap.RunID))
	log.Info("running screen pass")

	report, universe, err := s.screen()
	snap.FinishedAt = s.now().UTC()
	snap.Universe = universe
	if err != nil {
		snap.Error = "could not complete screen: " + err.Error()
		log.Error("screen pass failed", logger.Error(err), logger.Duration("took", snap.FinishedAt.Sub(snap.StartedAt)))
	} else {
		snap.Report = report
		log.Info("screen pass complete",
			logger.Int("universe", universe),
			logger.Int("scored", len(report.Results)),
			logger.Int("highlighted", len(report.Highlighted())),
			logger.Int("unavailable", len(report.Unavailable)),
			logger.String("top_tier", string(report.TopTier())),
			logger.Float64("trend_close", report.Trend.Close),
			logger.Float64("trend_ema", report.Trend.EMA),
			logger.Duration("took", snap.FinishedAt.Sub(snap.StartedAt)),
		)
	}

	if err := s.Recorder.Record(snap); err != nil {
		log.Error("record snapshot", logger.Error(err))
	}
	if s.Metrics != nil {
		s.Metrics.RecordPass(snap)
	}
	if s.Publisher != nil {
		s.Publisher.Publish(snap)
	}
	return snap
}

func (s *Scheduler) screen() (*model.ScreenReport, int, error) {
	symbols, err := s.Universe.Symbols(s.Ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load universe: %w", err)
	}
	universe := len(screener.DedupeUniverse(symbols))
	report, err := s.Runner.Run(s.Ctx, symbols)
	if err != nil {
		return nil, universe, err
	}
	return report, universe, nil
}
