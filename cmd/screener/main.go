package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"DipSentinel/internal/collector"
	"DipSentinel/internal/config"
	"DipSentinel/internal/logger"
	"DipSentinel/internal/metrics"
	"DipSentinel/internal/model"
	"DipSentinel/internal/recorder"
	"DipSentinel/internal/report"
	"DipSentinel/internal/scheduler"
	"DipSentinel/internal/screener"
	"DipSentinel/internal/server"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	once := flag.Bool("once", false, "run a single screening pass, print the report and exit")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	log.Info("DipSentinel starting", logger.String("config", cfgPath))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	th := cfg.ModelThresholds()
	fetcher := collector.NewBinanceFetcher(cfg.Exchange.BaseURL, cfg.Exchange.Proxy,
		cfg.Exchange.RequestsPerSecond, cfg.Exchange.Burst)
	col := collector.NewCollector(fetcher, th)
	col.TrendSymbol = cfg.Screen.TrendSymbol
	col.TrendInterval = model.Interval(cfg.Screen.TrendInterval)
	col.TrendLimit = cfg.Screen.TrendLimit
	col.PairInterval = model.Interval(cfg.Screen.PairInterval)
	col.PairLimit = cfg.Screen.PairLimit
	col.FetchTimeout = cfg.Exchange.FetchTimeout
	log.Info("data source configured",
		logger.String("fetcher", fetcher.Name()),
		logger.String("universe", cfg.Universe.Source),
		logger.Int("workers", cfg.Screen.Workers),
	)

	sc := screener.New(col, th, screener.WithWorkers(cfg.Screen.Workers), screener.WithLogger(log))
	universe := newUniverse(cfg, fetcher)

	if *once {
		sched := scheduler.NewScheduler(ctx, sc, universe, recorder.NewMemoryRecorder(), log)
		snap, _ := sched.RunNow()
		fmt.Print(report.FormatReport(snap))
		if snap.Failed() {
			os.Exit(1)
		}
		return
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, keeping snapshots in memory", logger.Error(err))
			rec = recorder.NewMemoryRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewMemoryRecorder()
	}
	defer rec.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := server.NewHub(log)
	go hub.Run(ctx)

	sched := scheduler.NewScheduler(ctx, sc, universe, rec, log)
	sched.Metrics = metrics.New(reg)
	sched.Publisher = hub
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatal("register cron task", logger.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Server.Enabled {
		srv := server.NewServer(
			server.NewHandler(rec, col, sched, hub, log),
			log,
			server.WithHost(cfg.Server.Host),
			server.WithPort(cfg.Server.Port),
			server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
			server.WithGatherer(reg),
		)
		srv.Start()
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				log.Error("stop http server", logger.Error(err))
			}
		}()
	}

	if cfg.Schedule.RunOnStart {
		log.Info("run_on_start enabled, starting a pass now")
		sched.Trigger()
	}

	log.Info("DipSentinel is running, press Ctrl+C to stop", logger.String("cron", cfg.Schedule.Cron))
	<-ctx.Done()
	log.Info("shutdown signal received, stopping")
}

func newUniverse(cfg *config.Config, fetcher *collector.BinanceFetcher) collector.Universe {
	if cfg.Universe.Source == "exchange" {
		return collector.ExchangeUniverse{Fetcher: fetcher, QuoteAsset: cfg.Universe.QuoteAsset}
	}
	return collector.CSVUniverse{Path: cfg.Universe.CSVPath}
}
