// Package config loads backtest run configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete run configuration.
type Config struct {
	Run     RunConfig     `json:"run" yaml:"run"`
	Report  ReportConfig  `json:"report" yaml:"report"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// RunConfig identifies a strategy run and where its results land.
type RunConfig struct {
	Dev        string `json:"dev" yaml:"dev"`
	Strategy   string `json:"strategy" yaml:"strategy"`
	Version    string `json:"version" yaml:"version"`
	ResultsDir string `json:"results_dir" yaml:"results_dir"`
}

// Name returns the run's directory-friendly identifier.
func (r RunConfig) Name() string {
	return fmt.Sprintf("%s_%s_%s", r.Dev, r.Strategy, r.Version)
}

// ReportConfig controls the MTM aggregation pass.
type ReportConfig struct {
	TimeFrame     string  `json:"time_frame" yaml:"time_frame"` // e.g. "5m", "1h", "24h"
	MarkToMarket  bool    `json:"mark_to_market" yaml:"mark_to_market"`
	OptionsMarket bool    `json:"options_market" yaml:"options_market"`
	MaxCapital    float64 `json:"max_capital,omitempty" yaml:"max_capital,omitempty"` // 0 disables the limiter
}

// ParseTimeFrame converts the time_frame string to a duration, defaulting
// to one day.
func (r ReportConfig) ParseTimeFrame() (time.Duration, error) {
	if r.TimeFrame == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(r.TimeFrame)
	if err != nil {
		return 0, fmt.Errorf("report.time_frame: %w", err)
	}
	return d, nil
}

// JournalConfig selects the persistence backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	ReportFile string `json:"report_file,omitempty" yaml:"report_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, YAML for .yaml/.yml paths, JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Run.Strategy == "" {
		return fmt.Errorf("run.strategy is required")
	}
	if c.Run.ResultsDir == "" {
		return fmt.Errorf("run.results_dir is required")
	}
	if _, err := c.Report.ParseTimeFrame(); err != nil {
		return err
	}
	if c.Report.MaxCapital < 0 {
		return fmt.Errorf("report.max_capital must not be negative")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.ReportFile == "" {
			return fmt.Errorf("journal trades_file and report_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Dev:        "dev",
			Strategy:   "strategy",
			Version:    "v1",
			ResultsDir: "./BacktestResults",
		},
		Report: ReportConfig{
			TimeFrame:     "24h",
			MarkToMarket:  false,
			OptionsMarket: true,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./closePnl.csv",
			ReportFile: "./mtmReport.csv",
		},
	}
}
