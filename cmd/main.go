// Command twostep runs the status and conversion pipelines once with the
// configured arguments and prints each result line to stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/twostep/internal/app"
	"github.com/okian/twostep/internal/config"
	"github.com/okian/twostep/pkg/logger"
)

// lookups is the part of the service the CLI drives.
type lookups interface {
	Status(ctx context.Context, id int) (string, error)
	Convert(ctx context.Context, from, to string, amount float64) (string, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := execute(ctx, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute loads config, starts the service and prints both results to
// stdout. Logs go to stderr.
func execute(ctx context.Context, stdout, stderr io.Writer) error {
	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithWriter(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(append(app.FromConfig(cfg), app.WithLogger(log))...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	run(ctx, stdout, svc, cfg)
	return nil
}

// run resolves both pipelines and writes one line per result: the message on
// success, the error text otherwise.
func run(ctx context.Context, w io.Writer, l lookups, cfg *config.Config) {
	_, _ = fmt.Fprintln(w, line(l.Status(ctx, cfg.StatusUserID)))
	_, _ = fmt.Fprintln(w, line(l.Convert(ctx, cfg.ConvertFrom, cfg.ConvertTo, cfg.ConvertAmount)))
}

func line(msg string, err error) string {
	if err != nil {
		return err.Error()
	}
	return msg
}
