package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"DipSentinel/internal/model"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		BaseURL           string        `yaml:"base_url" default:"https://api.binance.com" validate:"required,url"`
		Proxy             string        `yaml:"proxy" validate:"omitempty,url"`
		FetchTimeout      time.Duration `yaml:"fetch_timeout" default:"10s" validate:"gt=0"`
		RequestsPerSecond float64       `yaml:"requests_per_second" default:"10" validate:"gte=0"`
		Burst             int           `yaml:"burst" default:"5" validate:"gte=1"`
	} `yaml:"exchange"`
	Universe struct {
		Source     string `yaml:"source" default:"csv" validate:"oneof=csv exchange"`
		CSVPath    string `yaml:"csv_path" default:"Tickers.csv" validate:"required_if=Source csv"`
		QuoteAsset string `yaml:"quote_asset" default:"USDT" validate:"required"`
	} `yaml:"universe"`
	Screen struct {
		Workers       int    `yaml:"workers" default:"8" validate:"gte=1,lte=64"`
		TrendSymbol   string `yaml:"trend_symbol" default:"BTCUSDT" validate:"required"`
		TrendInterval string `yaml:"trend_interval" default:"4h" validate:"oneof=15m 4h"`
		TrendLimit    int    `yaml:"trend_limit" default:"30" validate:"gte=1,lte=1000"`
		PairInterval  string `yaml:"pair_interval" default:"15m" validate:"oneof=15m 4h"`
		PairLimit     int    `yaml:"pair_limit" default:"100" validate:"gte=1,lte=1000"`
	} `yaml:"screen"`
	Thresholds struct {
		EMAPeriod        int     `yaml:"ema_period" default:"21" validate:"gte=1"`
		RSIPeriod        int     `yaml:"rsi_period" default:"14" validate:"gte=1"`
		RSIOversold      float64 `yaml:"rsi_oversold" default:"30" validate:"gt=0,lt=100"`
		PriceDropPct     float64 `yaml:"price_drop_pct" default:"-2" validate:"lt=0"`
		VolumeSpikeRatio float64 `yaml:"volume_spike_ratio" default:"2" validate:"gt=0"`
		VolumeLookback   int     `yaml:"volume_lookback" default:"20" validate:"gte=1"`
	} `yaml:"thresholds"`
	Schedule struct {
		Cron       string `yaml:"cron" default:"0 */15 * * * *" validate:"required"`
		RunOnStart bool   `yaml:"run_on_start" default:"true"`
	} `yaml:"schedule"`
	Server struct {
		Enabled         bool          `yaml:"enabled" default:"true"`
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/dip_sentinel.db"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
}

var validate = validator.New()

// Load reads config from a YAML file over the tag defaults, then applies
// environment variable overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Exchange.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Exchange.Proxy = v
	}
	if v := os.Getenv("UNIVERSE_SOURCE"); v != "" {
		c.Universe.Source = v
	}
	if v := os.Getenv("SYMBOLS_CSV"); v != "" {
		c.Universe.CSVPath = v
	}
	if v := os.Getenv("SCREEN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCREEN_WORKERS: %w", err)
		}
		c.Screen.Workers = n
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ON_START: %w", err)
		}
		c.Schedule.RunOnStart = b
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate checks field constraints and the relations between candle limits
// and indicator periods.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("config: %w", err)
	}

	th := c.ModelThresholds()
	if need := th.MinCandles(); c.Screen.PairLimit < need {
		return fmt.Errorf("screen.pair_limit %d is below the %d candles the indicators need", c.Screen.PairLimit, need)
	}
	if c.Screen.TrendLimit < th.EMAPeriod {
		return fmt.Errorf("screen.trend_limit %d is below thresholds.ema_period %d", c.Screen.TrendLimit, th.EMAPeriod)
	}
	return nil
}

// ModelThresholds converts the thresholds section to the screening type.
func (c *Config) ModelThresholds() model.Thresholds {
	t := c.Thresholds
	return model.Thresholds{
		EMAPeriod:        t.EMAPeriod,
		RSIPeriod:        t.RSIPeriod,
		RSIOversold:      t.RSIOversold,
		PriceDropPct:     t.PriceDropPct,
		VolumeSpikeRatio: t.VolumeSpikeRatio,
		VolumeLookback:   t.VolumeLookback,
	}
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}
