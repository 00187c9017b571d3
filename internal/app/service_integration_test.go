package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/twostep/internal/app"
	"github.com/okian/twostep/internal/domain/fx"
	"github.com/okian/twostep/pkg/logger"
)

// upstreams fakes the rate and region services on one test server.
func upstreams(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/latest", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_key") != "secret" {
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":101,"type":"invalid_access_key"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"timestamp":1700000000,"base":"EUR","date":"2023-11-14","rates":{"EUR":1,"USD":1.25,"SAR":4.6875}}`))
	})
	mux.HandleFunc("/v2/currency/", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/v2/currency/") {
		case "SAR":
			_, _ = w.Write([]byte(`[{"name":"Saudi Arabia"}]`))
		case "USD":
			_, _ = w.Write([]byte(`[{"name":"United States of America"},{"name":"Ecuador"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":404,"message":"Not Found"}`))
		}
	})
	return httptest.NewServer(mux)
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service wired to fake upstreams", t, func() {
		srv := upstreams(t)
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc := service.New(
			service.WithLogger(logger.Discard()),
			service.WithRatesEndpoint(srv.URL+"/api/latest", "secret"),
			service.WithRegionsEndpoint(srv.URL+"/v2/currency"),
			service.WithHTTPTimeout(5*time.Second),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When converting USD to SAR", func() {
			msg, err := svc.Convert(ctx, "USD", "SAR", 1)

			Convey("Then the full sentence is produced", func() {
				So(err, ShouldBeNil)
				So(msg, ShouldEqual, "1 USD is worth 3.75 SAR. You can spend these in the following countries: Saudi Arabia")
			})
		})

		Convey("When converting SAR to USD", func() {
			msg, err := svc.Convert(ctx, "SAR", "USD", 10)

			Convey("Then every country is listed in order", func() {
				So(err, ShouldBeNil)
				So(msg, ShouldEqual, "10 SAR is worth 2.67 USD. You can spend these in the following countries: United States of America, Ecuador")
			})
		})

		Convey("When the target currency is unknown to the rate service", func() {
			_, err := svc.Convert(ctx, "USD", "XXX", 1)

			Convey("Then the rate is unavailable", func() {
				So(err.Error(), ShouldEqual, "Unable to get exchange rate for USD and XXX.")
			})
		})

		Convey("When the region service does not know the currency", func() {
			_, err := svc.Convert(ctx, "USD", "EUR", 1)

			Convey("Then the region lookup fails", func() {
				So(errors.Is(err, fx.ErrRegionLookup), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "Unable to get countries that use EUR.")
			})
		})

		Convey("When many conversions run concurrently", func() {
			var wg sync.WaitGroup
			errs := make([]error, 8)
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = svc.Convert(ctx, "USD", "SAR", float64(i))
				}(i)
			}
			wg.Wait()

			Convey("Then all of them succeed", func() {
				for _, err := range errs {
					So(err, ShouldBeNil)
				}
			})
		})
	})

	Convey("Given a service with a wrong access key", t, func() {
		srv := upstreams(t)
		defer srv.Close()

		svc := service.New(
			service.WithLogger(logger.Discard()),
			service.WithRatesEndpoint(srv.URL+"/api/latest", "wrong"),
			service.WithRegionsEndpoint(srv.URL+"/v2/currency"),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then conversions report the rate unavailable", func() {
			_, err := svc.Convert(context.Background(), "USD", "SAR", 1)
			So(errors.Is(err, fx.ErrRateUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given a roster file", t, func() {
		path := filepath.Join(t.TempDir(), "roster.yaml")
		So(os.WriteFile(path, []byte(`people:
  - {id: 5, name: Grace, group_key: 7}
scores:
  - {id: 1, group_key: 7, value: 70}
  - {id: 2, group_key: 7, value: 75}
`), 0o600), ShouldBeNil)

		svc := service.New(service.WithLogger(logger.Discard()), service.WithDatasetPath(path))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then status lookups read from it", func() {
			msg, err := svc.Status(context.Background(), 5)
			So(err, ShouldBeNil)
			So(msg, ShouldEqual, "Grace has a 72.5% in the class.")

			_, err = svc.Status(context.Background(), 1)
			So(err.Error(), ShouldEqual, "Unable to find user with id of 1")
		})
	})
}
