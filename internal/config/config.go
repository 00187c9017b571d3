// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address of cmd/server, e.g. ":9080".
	Addr string `koanf:"addr"`

	// FixerAccessKey is the credential sent to the rate service. Required for
	// conversions; there is no usable default.
	FixerAccessKey string `koanf:"fixer_access_key"`

	// RatesURL is the snapshot endpoint of the rate service.
	RatesURL string `koanf:"rates_url"`

	// RegionsURL is the by-currency endpoint of the region service; the
	// currency code is appended as a path segment.
	RegionsURL string `koanf:"regions_url"`

	// BaseCurrency is the implicit base of the rate snapshot. Snapshots with a
	// different base are rejected.
	BaseCurrency string `koanf:"base_currency"`

	// HTTPTimeout bounds each upstream request.
	HTTPTimeout time.Duration `koanf:"http_timeout"`

	// DatasetPath optionally points at a YAML file replacing the built-in roster.
	DatasetPath string `koanf:"dataset_path"`

	// StatusUserID, ConvertFrom, ConvertTo and ConvertAmount are the arguments
	// used by the one-shot CLI.
	StatusUserID  int     `koanf:"status_user_id"`
	ConvertFrom   string  `koanf:"convert_from"`
	ConvertTo     string  `koanf:"convert_to"`
	ConvertAmount float64 `koanf:"convert_amount"`
}

// New creates a Config with defaults. Context is accepted first to follow the
// project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		RatesURL:      "http://data.fixer.io/api/latest",
		RegionsURL:    "https://restcountries.com/v2/currency",
		BaseCurrency:  "EUR",
		HTTPTimeout:   10 * time.Second,
		StatusUserID:  1,
		ConvertFrom:   "USD",
		ConvertTo:     "SAR",
		ConvertAmount: 1,
	}
}
