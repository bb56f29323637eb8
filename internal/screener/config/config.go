package config

import (
	"time"

	"golang-stock-screener/pkg/config"
)

// Screener holds screening-run configuration.
type Screener struct {
	PriorityWorkers    int           `mapstructure:"priority_workers"`
	ExtendedWorkers    int           `mapstructure:"extended_workers"`
	ExtendedScanLimit  int           `mapstructure:"extended_scan_limit"`
	RunWarnDuration    time.Duration `mapstructure:"run_warn_duration"`
	ScanLockTTL        time.Duration `mapstructure:"scan_lock_ttl"`
	RunStatsRetention  int           `mapstructure:"run_stats_retention"`
	RedisStreamTimeout time.Duration `mapstructure:"redis_stream_timeout"`
}

// Tracker holds outcome-tracking configuration.
type Tracker struct {
	LookbackDays     int           `mapstructure:"lookback_days"`
	RefreshStaleness time.Duration `mapstructure:"refresh_staleness"`
	SuccessDay7Pct   float64       `mapstructure:"success_day7_pct"`
	SuccessMaxGain   float64       `mapstructure:"success_max_gain_pct"`
}

// Optimizer holds weekly-analysis configuration.
type Optimizer struct {
	MinSignals          int     `mapstructure:"min_signals"`
	MinTypeSamples      int     `mapstructure:"min_type_samples"`
	MaxAdjustment       int     `mapstructure:"max_adjustment"`
	MinWeight           int     `mapstructure:"min_weight"`
	MaxWeight           int     `mapstructure:"max_weight"`
	AutoApply           bool    `mapstructure:"auto_apply"`
	LowAccuracyPct      float64 `mapstructure:"low_accuracy_pct"`
	HighAccuracyPct     float64 `mapstructure:"high_accuracy_pct"`
	IncreaseAccuracyPct float64 `mapstructure:"increase_accuracy_pct"`
	IncreaseReturnPct   float64 `mapstructure:"increase_return_pct"`
	OverfitSampleSize   int     `mapstructure:"overfit_sample_size"`
	StatsWindowDays     int     `mapstructure:"stats_window_days"`
}

// Scheduler holds cron schedules for the screener jobs.
type Scheduler struct {
	Enabled          bool   `mapstructure:"enabled"`
	PriorityScanCron string `mapstructure:"priority_scan_cron"`
	ExtendedScanCron string `mapstructure:"extended_scan_cron"`
	TrackingCron     string `mapstructure:"tracking_cron"`
	DailyReportCron  string `mapstructure:"daily_report_cron"`
	WeeklyCron       string `mapstructure:"weekly_cron"`
}

// YahooFinance holds the configuration for the Yahoo Finance API.
type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
}

// Config holds the full configuration for the screener service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Telegram     config.Telegram `mapstructure:"telegram"`
	Screener     Screener        `mapstructure:"screener"`
	Tracker      Tracker         `mapstructure:"tracker"`
	Optimizer    Optimizer       `mapstructure:"optimizer"`
	Scheduler    Scheduler       `mapstructure:"scheduler"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
}

// Load loads the screener configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Screener.PriorityWorkers <= 0 {
		c.Screener.PriorityWorkers = 10
	}
	if c.Screener.ExtendedWorkers <= 0 {
		c.Screener.ExtendedWorkers = 15
	}
	if c.Screener.ExtendedScanLimit <= 0 {
		c.Screener.ExtendedScanLimit = 500
	}
	if c.Screener.RunWarnDuration <= 0 {
		c.Screener.RunWarnDuration = 5 * time.Minute
	}
	if c.Screener.ScanLockTTL <= 0 {
		c.Screener.ScanLockTTL = 30 * time.Minute
	}
	if c.Screener.RunStatsRetention <= 0 {
		c.Screener.RunStatsRetention = 100
	}
	if c.Screener.RedisStreamTimeout <= 0 {
		c.Screener.RedisStreamTimeout = 30 * time.Minute
	}
	if c.Tracker.LookbackDays <= 0 {
		c.Tracker.LookbackDays = 14
	}
	if c.Tracker.RefreshStaleness <= 0 {
		c.Tracker.RefreshStaleness = 24 * time.Hour
	}
	if c.Tracker.SuccessDay7Pct == 0 {
		c.Tracker.SuccessDay7Pct = 3.0
	}
	if c.Tracker.SuccessMaxGain == 0 {
		c.Tracker.SuccessMaxGain = 5.0
	}
	if c.Optimizer.MinSignals <= 0 {
		c.Optimizer.MinSignals = 10
	}
	if c.Optimizer.MinTypeSamples <= 0 {
		c.Optimizer.MinTypeSamples = 5
	}
	if c.Optimizer.MaxAdjustment <= 0 {
		c.Optimizer.MaxAdjustment = 5
	}
	if c.Optimizer.MinWeight <= 0 {
		c.Optimizer.MinWeight = 5
	}
	if c.Optimizer.MaxWeight <= 0 {
		c.Optimizer.MaxWeight = 35
	}
	if c.Optimizer.LowAccuracyPct == 0 {
		c.Optimizer.LowAccuracyPct = 30.0
	}
	if c.Optimizer.HighAccuracyPct == 0 {
		c.Optimizer.HighAccuracyPct = 80.0
	}
	if c.Optimizer.IncreaseAccuracyPct == 0 {
		c.Optimizer.IncreaseAccuracyPct = 70.0
	}
	if c.Optimizer.IncreaseReturnPct == 0 {
		c.Optimizer.IncreaseReturnPct = 5.0
	}
	if c.Optimizer.OverfitSampleSize <= 0 {
		c.Optimizer.OverfitSampleSize = 20
	}
	if c.Optimizer.StatsWindowDays <= 0 {
		c.Optimizer.StatsWindowDays = 14
	}
	if c.YahooFinance.BaseURL == "" {
		c.YahooFinance.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.YahooFinance.MaxRequestPerMinute <= 0 {
		c.YahooFinance.MaxRequestPerMinute = 60
	}
	if c.YahooFinance.CacheTTL <= 0 {
		c.YahooFinance.CacheTTL = 10 * time.Minute
	}
	if c.YahooFinance.RequestTimeout <= 0 {
		c.YahooFinance.RequestTimeout = 15 * time.Second
	}
}
