package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/twostep/internal/app"
	"github.com/okian/twostep/internal/config"
	"github.com/okian/twostep/internal/domain/fx"
	"github.com/okian/twostep/internal/domain/grades"
	"github.com/okian/twostep/internal/domain/model"
	"github.com/okian/twostep/pkg/logger"
)

type fixedRates struct{}

func (fixedRates) Snapshot(context.Context) (model.ExchangeQuote, error) {
	return model.ExchangeQuote{Base: "EUR", Rates: map[string]float64{"USD": 1.25, "SAR": 4.6875}}, nil
}

type fixedRegions struct{}

func (fixedRegions) Countries(context.Context, string) (model.RegionList, error) {
	return model.RegionList{"Saudi Arabia"}, nil
}

type failingLookups struct{}

func (failingLookups) Status(_ context.Context, id int) (string, error) {
	return "", &grades.NotFoundError{ID: id}
}

func (failingLookups) Convert(_ context.Context, from, to string, _ float64) (string, error) {
	return "", &fx.RateUnavailableError{From: from, To: to}
}

func TestRun(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("When both pipelines succeed", func() {
			svc := app.New(
				app.WithLogger(logger.Discard()),
				app.WithRateSource(fixedRates{}),
				app.WithRegionSource(fixedRegions{}),
			)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			var out bytes.Buffer
			run(ctx, &out, svc, cfg)

			convey.Convey("Then one line per pipeline is printed", func() {
				convey.So(out.String(), convey.ShouldEqual,
					"John has a 83% in the class.\n"+
						"1 USD is worth 3.75 SAR. You can spend these in the following countries: Saudi Arabia\n")
			})
		})

		convey.Convey("When both pipelines fail", func() {
			var out bytes.Buffer
			cfg.StatusUserID = 9
			run(ctx, &out, failingLookups{}, cfg)

			convey.Convey("Then the error texts are printed", func() {
				convey.So(out.String(), convey.ShouldEqual,
					"Unable to find user with id of 9\n"+
						"Unable to get exchange rate for USD and SAR.\n")
			})
		})
	})
}

func TestRunArgumentsFromEnv(t *testing.T) {
	convey.Convey("Given CLI arguments in the environment", t, func() {
		_ = os.Setenv("TWOSTEP_STATUS_USER_ID", "2")
		_ = os.Setenv("TWOSTEP_CONVERT_AMOUNT", "2")
		defer func() {
			_ = os.Unsetenv("TWOSTEP_STATUS_USER_ID")
			_ = os.Unsetenv("TWOSTEP_CONVERT_AMOUNT")
		}()

		ctx := context.Background()
		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		svc := app.New(
			app.WithLogger(logger.Discard()),
			app.WithRateSource(fixedRates{}),
			app.WithRegionSource(fixedRegions{}),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then the pipelines run with them", func() {
			var out bytes.Buffer
			run(ctx, &out, svc, cfg)
			convey.So(out.String(), convey.ShouldEqual,
				"Jane has a 100% in the class.\n"+
					"2 USD is worth 7.50 SAR. You can spend these in the following countries: Saudi Arabia\n")
		})
	})
}

func TestExecuteConfigError(t *testing.T) {
	convey.Convey("Given an unknown log format in the environment", t, func() {
		_ = os.Setenv("TWOSTEP_LOG_FORMAT", "xml")
		defer func() { _ = os.Unsetenv("TWOSTEP_LOG_FORMAT") }()

		var out bytes.Buffer
		err := execute(context.Background(), &out, io.Discard)

		convey.Convey("Then the error is returned and nothing is printed", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(out.String(), convey.ShouldBeEmpty)
		})
	})
}
