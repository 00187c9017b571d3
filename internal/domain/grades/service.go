package grades

import (
	"context"
	"errors"

	"github.com/perses/common/async"

	"github.com/okian/twostep/internal/adapters/repository"
	"github.com/okian/twostep/internal/domain/model"
	"github.com/okian/twostep/internal/domain/pipeline"
	"github.com/okian/twostep/pkg/logger"
	"github.com/okian/twostep/pkg/metrics"
)

// PipelineName labels status runs in logs and metrics.
const PipelineName = "status"

// Service runs the status pipeline against an injected roster store.
type Service struct {
	store    repository.Store
	pipeline *pipeline.Pipeline[int, model.Person, []model.Score, string]
	logger   logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*options)

type options struct {
	logger   logger.Logger
	recorder pipeline.Recorder
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

// NewService builds a status Service reading from store.
func NewService(store repository.Store, opts ...Option) *Service {
	o := options{logger: logger.Discard(), recorder: metrics.Global()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{store: store, logger: o.logger}
	s.pipeline = pipeline.New(PipelineName,
		func(ctx context.Context, id int) (model.Person, error) {
			return FetchEntity(ctx, s.store, id)
		},
		func(ctx context.Context, p model.Person) ([]model.Score, error) {
			return FetchDependents(ctx, s.store, p.GroupKey)
		},
		func(p model.Person, scores []model.Score) (string, error) {
			return FormatStatus(p, Average(Values(scores))), nil
		},
		pipeline.WithLogger(o.logger),
		pipeline.WithRecorder(o.recorder),
	)
	return s
}

// Status resolves the status message for user id.
func (s *Service) Status(ctx context.Context, id int) (string, error) {
	msg, err := s.pipeline.Run(ctx, id)
	return msg, s.observe(err)
}

// StatusAsync starts the lookup as a chain of futures. Awaiting the result is
// equivalent to calling Status.
func (s *Service) StatusAsync(ctx context.Context, id int) async.Future[string] {
	chain := s.pipeline.Start(ctx, id)
	return async.Async(func() (string, error) {
		msg, err := chain.Await()
		return msg, s.observe(err)
	})
}

func (s *Service) observe(err error) error {
	if errors.Is(err, ErrNotFound) {
		metrics.RecordLookupError("not_found")
	}
	return err
}
