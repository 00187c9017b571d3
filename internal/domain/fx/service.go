package fx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/perses/common/async"
	"github.com/shopspring/decimal"

	"github.com/okian/twostep/internal/domain/model"
	"github.com/okian/twostep/internal/domain/pipeline"
	"github.com/okian/twostep/pkg/logger"
	"github.com/okian/twostep/pkg/metrics"
)

// PipelineName labels conversion runs in logs and metrics.
const PipelineName = "convert"

// Request is one conversion query.
type Request struct {
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
	Amount float64 `json:"amount" validate:"finite,gte=0"`
}

// Conversion is a resolved conversion.
type Conversion struct {
	Request
	Rate      float64          `json:"rate"`
	Converted decimal.Decimal  `json:"converted"`
	Regions   model.RegionList `json:"regions"`
}

// Message renders the conversion sentence.
func (c Conversion) Message() string {
	return FormatConversion(c.Amount, c.From, c.Converted, c.To, c.Regions)
}

type quoted struct {
	req  Request
	rate float64
}

// Service runs the conversion pipeline against injected rate and region sources.
type Service struct {
	rates    RateSource
	regions  RegionSource
	base     string
	validate *validator.Validate
	logger   logger.Logger
	pipeline *pipeline.Pipeline[Request, quoted, model.RegionList, Conversion]
}

// Option applies a configuration option to the Service.
type Option func(*options)

type options struct {
	base     string
	logger   logger.Logger
	recorder pipeline.Recorder
}

// WithBaseCurrency sets the base every snapshot must be expressed in.
// Without it, or with an empty code, the base is not checked.
func WithBaseCurrency(code string) Option {
	return func(o *options) {
		o.base = code
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the metrics sink for pipeline runs.
func WithRecorder(r pipeline.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// NewService builds a conversion Service.
func NewService(rates RateSource, regions RegionSource, opts ...Option) *Service {
	o := options{logger: logger.Discard(), recorder: metrics.Global()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{
		rates:    rates,
		regions:  regions,
		base:     o.base,
		validate: newValidator(),
		logger:   o.logger,
	}
	s.pipeline = pipeline.New(PipelineName,
		func(ctx context.Context, req Request) (quoted, error) {
			rate, err := s.fetchRate(ctx, req.From, req.To)
			return quoted{req: req, rate: rate}, err
		},
		func(ctx context.Context, q quoted) (model.RegionList, error) {
			return s.fetchRegions(ctx, q.req.To)
		},
		func(q quoted, regions model.RegionList) (Conversion, error) {
			return Conversion{
				Request:   q.req,
				Rate:      q.rate,
				Converted: ComputeConversion(q.req.Amount, q.rate),
				Regions:   regions,
			}, nil
		},
		pipeline.WithLogger(o.logger),
		pipeline.WithRecorder(o.recorder),
	)
	return s
}

// Convert resolves the conversion sentence for amount of from in to.
func (s *Service) Convert(ctx context.Context, from, to string, amount float64) (string, error) {
	c, err := s.Resolve(ctx, Request{From: from, To: to, Amount: amount})
	if err != nil {
		return "", err
	}
	return c.Message(), nil
}

// ConvertAsync starts the conversion as a chain of futures. Awaiting the
// result is equivalent to calling Convert.
func (s *Service) ConvertAsync(ctx context.Context, from, to string, amount float64) async.Future[string] {
	req := Request{From: from, To: to, Amount: amount}
	if err := s.check(req); err != nil {
		err = s.observe(err)
		return async.Async(func() (string, error) { return "", err })
	}
	chain := s.pipeline.Start(ctx, req)
	return async.Async(func() (string, error) {
		c, err := chain.Await()
		if err = s.observe(err); err != nil {
			return "", err
		}
		return c.Message(), nil
	})
}

// Resolve validates req and runs the pipeline. Invalid input fails before any
// request is issued.
func (s *Service) Resolve(ctx context.Context, req Request) (Conversion, error) {
	if err := s.check(req); err != nil {
		return Conversion{}, s.observe(err)
	}
	c, err := s.pipeline.Run(ctx, req)
	return c, s.observe(err)
}

func (s *Service) fetchRate(ctx context.Context, from, to string) (float64, error) {
	return FetchRate(ctx, s.rates, s.base, from, to, func(ctx context.Context, cause error) {
		s.logger.Debug(ctx, "rate lookup failed", logger.String("from", from), logger.String("to", to), logger.Error(cause))
	})
}

func (s *Service) fetchRegions(ctx context.Context, code string) (model.RegionList, error) {
	return FetchRegions(ctx, s.regions, code, func(ctx context.Context, cause error) {
		s.logger.Debug(ctx, "region lookup failed", logger.String("currency", code), logger.Error(cause))
	})
}

// check maps validation failures onto the conversion error kinds.
func (s *Service) check(req Request) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	for _, fe := range verrs {
		if fe.StructField() == "From" || fe.StructField() == "To" {
			return &RateUnavailableError{From: req.From, To: req.To}
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidAmount, req.Amount)
}

func (s *Service) observe(err error) error {
	switch {
	case errors.Is(err, ErrRateUnavailable):
		metrics.RecordLookupError("rate_unavailable")
	case errors.Is(err, ErrRegionLookup):
		metrics.RecordLookupError("region_lookup")
	case errors.Is(err, ErrInvalidAmount):
		metrics.RecordLookupError("invalid_amount")
	}
	return err
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		default:
			return true
		}
	})
	return v
}
