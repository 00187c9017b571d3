// Package service wires the roster store, upstream clients and both pipeline
// services behind the dependencies required by the CLI and the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/twostep/internal/adapters/http/upstream"
	"github.com/okian/twostep/internal/adapters/repository"
	"github.com/okian/twostep/internal/config"
	"github.com/okian/twostep/internal/domain/fx"
	"github.com/okian/twostep/internal/domain/grades"
	"github.com/okian/twostep/pkg/logger"
)

// ErrNotStarted is returned by lookups issued before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for both pipelines.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	rates   fx.RateSource
	regions fx.RegionSource
	status  *grades.Service
	convert *fx.Service

	// Configuration
	datasetPath  string
	ratesURL     string
	regionsURL   string
	accessKey    string
	baseCurrency string
	httpTimeout  time.Duration

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDatasetPath loads the roster from a YAML file instead of the defaults.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}

// WithStore injects a roster store; it takes precedence over WithDatasetPath.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithRatesEndpoint sets the snapshot URL and its access key.
func WithRatesEndpoint(url, accessKey string) Option {
	return func(s *Service) {
		if url != "" {
			s.ratesURL = url
		}
		s.accessKey = accessKey
	}
}

// WithRegionsEndpoint sets the /currency collection URL.
func WithRegionsEndpoint(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.regionsURL = url
		}
	}
}

// WithRateSource injects a rate source in place of the HTTP client.
func WithRateSource(src fx.RateSource) Option {
	return func(s *Service) {
		s.rates = src
	}
}

// WithRegionSource injects a region source in place of the HTTP client.
func WithRegionSource(src fx.RegionSource) Option {
	return func(s *Service) {
		s.regions = src
	}
}

// WithBaseCurrency sets the currency every snapshot must be based on.
func WithBaseCurrency(code string) Option {
	return func(s *Service) {
		s.baseCurrency = code
	}
}

// WithHTTPTimeout bounds each upstream request.
func WithHTTPTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.httpTimeout = d
		}
	}
}

// FromConfig maps a loaded Config onto options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithDatasetPath(cfg.DatasetPath),
		WithRatesEndpoint(cfg.RatesURL, cfg.FixerAccessKey),
		WithRegionsEndpoint(cfg.RegionsURL),
		WithBaseCurrency(cfg.BaseCurrency),
		WithHTTPTimeout(cfg.HTTPTimeout),
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	cfg := config.New(context.Background())
	s := &Service{
		ratesURL:     cfg.RatesURL,
		regionsURL:   cfg.RegionsURL,
		baseCurrency: cfg.BaseCurrency,
		httpTimeout:  cfg.HTTPTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the store, the upstream clients and both pipelines.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		store, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		s.store = store
	}

	client := upstream.NewHTTPClient(s.httpTimeout)
	if s.rates == nil {
		if s.accessKey == "" {
			s.logger.Warn(ctx, "no rate service access key configured; conversions will fail")
		}
		s.rates = upstream.NewRatesClient(client, s.ratesURL, s.accessKey)
	}
	if s.regions == nil {
		s.regions = upstream.NewRegionsClient(client, s.regionsURL)
	}

	s.status = grades.NewService(s.store,
		grades.WithLogger(s.logger.Named("status")),
	)
	s.convert = fx.NewService(s.rates, s.regions,
		fx.WithBaseCurrency(s.baseCurrency),
		fx.WithLogger(s.logger.Named("convert")),
	)

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.String("rates_url", s.ratesURL),
		logger.String("regions_url", s.regionsURL),
		logger.String("base_currency", s.baseCurrency),
		logger.Duration("http_timeout", s.httpTimeout),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	if s.datasetPath == "" {
		s.logger.Info(ctx, "using default roster")
		return repository.NewMemoryStore(ctx)
	}
	store, err := repository.LoadFile(ctx, s.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	s.logger.Info(ctx, "loaded roster", logger.String("path", s.datasetPath))
	return store, nil
}

// Stop marks the service stopped. Lookups fail with ErrNotStarted afterwards.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "service stopped")
}

func (s *Service) pipelines() (*grades.Service, *fx.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.status, s.convert, nil
}

// Status resolves the status message for user id.
func (s *Service) Status(ctx context.Context, id int) (string, error) {
	status, _, err := s.pipelines()
	if err != nil {
		return "", err
	}
	return status.Status(ctx, id)
}

// Convert resolves the conversion sentence.
func (s *Service) Convert(ctx context.Context, from, to string, amount float64) (string, error) {
	_, convert, err := s.pipelines()
	if err != nil {
		return "", err
	}
	return convert.Convert(ctx, from, to, amount)
}

// Resolve returns the structured conversion.
func (s *Service) Resolve(ctx context.Context, req fx.Request) (fx.Conversion, error) {
	_, convert, err := s.pipelines()
	if err != nil {
		return fx.Conversion{}, err
	}
	return convert.Resolve(ctx, req)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"baseCurrency": s.baseCurrency,
		"httpTimeout":  s.httpTimeout.String(),
		"dataset":      "default",
	}
	if s.datasetPath != "" {
		stats["dataset"] = s.datasetPath
	}

	if s.started {
		ctx := context.Background()
		if people, err := s.store.People(ctx); err == nil {
			stats["people"] = len(people)
		}
		if scores, err := s.store.Scores(ctx); err == nil {
			stats["scores"] = len(scores)
		}
	}
	return stats
}
