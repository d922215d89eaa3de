// Package config loads the YAML configuration shared by the three feed
// binaries. Every key has a default, so the binaries run without a
// config file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Job is the part common to all three feeds.
type Job struct {
	// URL of the CSV/page fetched each run.
	URL string `mapstructure:"url"`
	// Output is the JSON document this job owns.
	Output string `mapstructure:"output"`
	// TimeoutSeconds bounds the single fetch attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// Timezone pins every wall-clock read of the job, regardless of the
	// environment's local timezone.
	Timezone string `mapstructure:"timezone"`
}

// Timeout returns the fetch deadline as a duration.
func (j Job) Timeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// Location resolves the pinned timezone.
func (j Job) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(j.Timezone)
	if err != nil {
		return nil, fmt.Errorf("resolving timezone %q: %w", j.Timezone, err)
	}
	return loc, nil
}

// HistoryJob configures the tesourotransparente CSV feed.
type HistoryJob struct {
	Job `mapstructure:",squash"`
	// WindowDays bounds the snapshot to the most recent N distinct
	// pricing dates.
	WindowDays int `mapstructure:"window_days"`
}

// RedeemJob configures the browser-driven redeem CSV feed.
type RedeemJob struct {
	Job `mapstructure:",squash"`
	// PageURL is the product page visited before the export URL; it
	// establishes the session and carries the pricing timestamp.
	PageURL string `mapstructure:"page_url"`
}

// Config is the full file.
type Config struct {
	LogLevel string     `mapstructure:"log_level"`
	History  HistoryJob `mapstructure:"history"`
	Ranking  Job        `mapstructure:"ranking"`
	Redeem   RedeemJob  `mapstructure:"redeem"`
}

// Load reads path (optional: an empty path or a missing file yields the
// defaults), applies defaults and validates.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const (
	defaultHistoryURL = "https://www.tesourotransparente.gov.br/ckan/dataset/" +
		"df56aa42-484a-4a59-8184-7676580c81e3/resource/" +
		"796d2059-14e9-44e3-80c9-2d9e30b405c1/download/precotaxatesourodireto.csv"
	defaultRankingURL    = "https://investidor10.com.br/tesouro-direto/resgatar/"
	defaultRedeemPageURL = "https://www.tesourodireto.com.br/produtos/dados-sobre-titulos/rendimento-dos-titulos"
	defaultRedeemCSVURL  = "https://www.tesourodireto.com.br/documents/d/guest/rendimento-resgatar-csv?download=true"

	saoPauloTZ = "America/Sao_Paulo"
)

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	h := &c.History
	setIfEmpty(&h.URL, defaultHistoryURL)
	setIfEmpty(&h.Output, "output/td_hist.json")
	setIfEmpty(&h.Timezone, saoPauloTZ)
	if h.TimeoutSeconds <= 0 {
		h.TimeoutSeconds = 60
	}
	if h.WindowDays == 0 {
		h.WindowDays = 180
	}

	r := &c.Ranking
	setIfEmpty(&r.URL, defaultRankingURL)
	setIfEmpty(&r.Output, "output/td_realtime_resgatar.json")
	setIfEmpty(&r.Timezone, saoPauloTZ)
	if r.TimeoutSeconds <= 0 {
		r.TimeoutSeconds = 30
	}

	d := &c.Redeem
	setIfEmpty(&d.URL, defaultRedeemCSVURL)
	setIfEmpty(&d.PageURL, defaultRedeemPageURL)
	setIfEmpty(&d.Output, "output/td_resgatar_atual.json")
	setIfEmpty(&d.Timezone, "UTC")
	if d.TimeoutSeconds <= 0 {
		d.TimeoutSeconds = 90
	}
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func (c *Config) validate() error {
	jobs := map[string]Job{
		"history": c.History.Job,
		"ranking": c.Ranking,
		"redeem":  c.Redeem.Job,
	}
	for name, j := range jobs {
		if j.URL == "" {
			return fmt.Errorf("%s.url cannot be empty", name)
		}
		if j.Output == "" {
			return fmt.Errorf("%s.output cannot be empty", name)
		}
		if _, err := j.Location(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.History.WindowDays < 0 {
		return fmt.Errorf("history.window_days cannot be negative")
	}
	if c.Redeem.PageURL == "" {
		return fmt.Errorf("redeem.page_url cannot be empty")
	}
	return nil
}
