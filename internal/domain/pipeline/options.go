package pipeline

import "github.com/okian/twostep/pkg/logger"

type settings struct {
	logger   logger.Logger
	recorder Recorder
}

// Option applies a configuration option to a Pipeline.
type Option func(*settings)

// WithLogger sets the logger used for run logs.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics sink. Defaults to the global metrics manager.
func WithRecorder(r Recorder) Option {
	return func(s *settings) {
		if r != nil {
			s.recorder = r
		}
	}
}
