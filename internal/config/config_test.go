package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"DipSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.ModelThresholds() != model.DefaultThresholds() {
		t.Errorf("thresholds = %+v, want %+v", cfg.ModelThresholds(), model.DefaultThresholds())
	}
	if cfg.Schedule.Cron != "0 */15 * * * *" {
		t.Errorf("cron = %q", cfg.Schedule.Cron)
	}
	if cfg.Exchange.FetchTimeout != 10*time.Second {
		t.Errorf("fetch timeout = %v", cfg.Exchange.FetchTimeout)
	}
	if cfg.Screen.Workers != 8 || cfg.Screen.TrendLimit != 30 || cfg.Screen.PairLimit != 100 {
		t.Errorf("screen = %+v", cfg.Screen)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %q", cfg.Addr())
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
exchange:
  fetch_timeout: 3s
universe:
  source: exchange
thresholds:
  volume_lookback: 96
  volume_spike_ratio: 2.5
screen:
  pair_limit: 120
schedule:
  run_on_start: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Exchange.FetchTimeout != 3*time.Second {
		t.Errorf("fetch timeout = %v", cfg.Exchange.FetchTimeout)
	}
	if cfg.Thresholds.VolumeLookback != 96 || cfg.Thresholds.VolumeSpikeRatio != 2.5 {
		t.Errorf("thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Thresholds.EMAPeriod != 21 {
		t.Errorf("unset field lost its default: ema_period = %d", cfg.Thresholds.EMAPeriod)
	}
	if cfg.Schedule.RunOnStart {
		t.Error("run_on_start should be false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCREEN_WORKERS", "3")
	t.Setenv("UNIVERSE_SOURCE", "exchange")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RUN_ON_START", "false")

	cfg, err := Load(writeConfig(t, "screen:\n  workers: 12\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Screen.Workers != 3 {
		t.Errorf("workers = %d, want env value 3", cfg.Screen.Workers)
	}
	if cfg.Universe.Source != "exchange" || cfg.Log.Level != "debug" || cfg.Schedule.RunOnStart {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Universe, cfg.Log)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("SCREEN_WORKERS", "many")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for non-numeric SCREEN_WORKERS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad source", "universe:\n  source: ftp\n", "Source"},
		{"positive drop", "thresholds:\n  price_drop_pct: 2\n", "PriceDropPct"},
		{"zero workers", "screen:\n  workers: 0\n", "Workers"},
		{"pair limit below lookback", "thresholds:\n  volume_lookback: 150\n", "pair_limit"},
		{"trend limit below ema", "screen:\n  trend_limit: 10\n", "trend_limit"},
		{"bad log level", "log:\n  level: loud\n", "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
