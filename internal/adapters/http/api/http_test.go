package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/twostep/internal/adapters/http/api"
	"github.com/okian/twostep/internal/domain/fx"
	"github.com/okian/twostep/internal/domain/grades"
	"github.com/okian/twostep/internal/domain/model"
)

// mockDependencies answers lookups from fixed values and records requests.
type mockDependencies struct {
	statusMsg  string
	statusErr  error
	conversion fx.Conversion
	convertErr error
	stats      map[string]interface{}

	lastID  int
	lastReq fx.Request
}

func (m *mockDependencies) Status(_ context.Context, id int) (string, error) {
	m.lastID = id
	return m.statusMsg, m.statusErr
}

func (m *mockDependencies) Resolve(_ context.Context, req fx.Request) (fx.Conversion, error) {
	m.lastReq = req
	if m.convertErr != nil {
		return fx.Conversion{}, m.convertErr
	}
	c := m.conversion
	c.Request = req
	return c, nil
}

func (m *mockDependencies) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{stats: map[string]interface{}{"started": true}}
		mux := newMux(deps)

		Convey("Then the health endpoint answers", func() {
			w := do(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "ok")
		})

		Convey("Then the stats endpoint serves the provider's stats", func() {
			w := do(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["started"], ShouldEqual, true)
		})

		Convey("Then the metrics endpoint exposes request counters", func() {
			do(mux, http.MethodGet, "/healthz")
			w := do(mux, http.MethodGet, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `twostep_http_requests_total{endpoint="healthz",method="GET",status_code="200"}`)
		})

		Convey("Then unknown paths are not found", func() {
			So(do(mux, http.MethodGet, "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then non-GET methods are not found", func() {
			So(do(mux, http.MethodPost, "/healthz").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/status/1").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodDelete, "/convert?from=USD&to=SAR").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatusHandler(t *testing.T) {
	Convey("Given a status endpoint", t, func() {
		deps := &mockDependencies{statusMsg: "John has a 83% in the class."}
		mux := newMux(deps)

		Convey("When the user exists", func() {
			w := do(mux, http.MethodGet, "/status/1")

			Convey("Then the message is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["id"], ShouldEqual, float64(1))
				So(body["message"], ShouldEqual, "John has a 83% in the class.")
				So(deps.lastID, ShouldEqual, 1)
			})
		})

		Convey("When the user does not exist", func() {
			deps.statusErr = &grades.NotFoundError{ID: 3}
			w := do(mux, http.MethodGet, "/status/3")

			Convey("Then 404 carries the error text", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decode(w)
				So(body["code"], ShouldEqual, "not_found")
				So(body["message"], ShouldEqual, "Unable to find user with id of 3")
			})
		})

		Convey("When the id is not a number", func() {
			w := do(mux, http.MethodGet, "/status/abc")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["message"], ShouldEqual, api.ErrInvalidUserID.Error())
		})

		Convey("When the id is missing or nested", func() {
			So(do(mux, http.MethodGet, "/status/").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/status/1/2").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the lookup fails unexpectedly", func() {
			deps.statusErr = context.Canceled
			So(do(mux, http.MethodGet, "/status/1").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestConvertHandler(t *testing.T) {
	Convey("Given a convert endpoint", t, func() {
		deps := &mockDependencies{conversion: fx.Conversion{
			Rate:      3.75,
			Converted: decimal.RequireFromString("3.75"),
			Regions:   model.RegionList{"Saudi Arabia"},
		}}
		mux := newMux(deps)

		Convey("When converting with an explicit amount", func() {
			w := do(mux, http.MethodGet, "/convert?from=usd&to=SAR&amount=1")

			Convey("Then the conversion is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["from"], ShouldEqual, "USD")
				So(body["to"], ShouldEqual, "SAR")
				So(body["converted"], ShouldEqual, "3.75")
				So(body["regions"], ShouldResemble, []interface{}{"Saudi Arabia"})
				So(body["message"], ShouldEqual, "1 USD is worth 3.75 SAR. You can spend these in the following countries: Saudi Arabia")
			})
		})

		Convey("When the amount is omitted", func() {
			do(mux, http.MethodGet, "/convert?from=USD&to=SAR")

			Convey("Then one unit is converted", func() {
				So(deps.lastReq.Amount, ShouldEqual, 1.0)
			})
		})

		Convey("When a currency is missing", func() {
			w := do(mux, http.MethodGet, "/convert?to=SAR")

			Convey("Then 400 is returned without a lookup", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(deps.lastReq, ShouldResemble, fx.Request{})
			})
		})

		Convey("When the amount is not a number", func() {
			w := do(mux, http.MethodGet, "/convert?from=USD&to=SAR&amount=lots")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["code"], ShouldEqual, "invalid_amount")
		})

		Convey("When the service rejects the amount", func() {
			deps.convertErr = fx.ErrInvalidAmount
			So(do(mux, http.MethodGet, "/convert?from=USD&to=SAR&amount=-1").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the rate is unavailable", func() {
			deps.convertErr = &fx.RateUnavailableError{From: "USD", To: "XXX"}
			w := do(mux, http.MethodGet, "/convert?from=USD&to=XXX")

			Convey("Then 502 carries the error text", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				body := decode(w)
				So(body["code"], ShouldEqual, "rate_unavailable")
				So(body["message"], ShouldEqual, "Unable to get exchange rate for USD and XXX.")
			})
		})

		Convey("When the region lookup fails", func() {
			deps.convertErr = &fx.RegionLookupError{Currency: "SAR"}
			w := do(mux, http.MethodGet, "/convert?from=USD&to=SAR")

			Convey("Then 502 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(decode(w)["code"], ShouldEqual, "region_lookup")
			})
		})

		Convey("When errors are served", func() {
			deps.convertErr = &fx.RegionLookupError{Currency: "SAR"}
			do(mux, http.MethodGet, "/convert?from=USD&to=SAR")
			w := do(mux, http.MethodGet, "/metrics")

			Convey("Then they are counted by endpoint and type", func() {
				So(w.Body.String(), ShouldContainSubstring, `twostep_errors_by_endpoint_total{endpoint="convert",error_type="upstream_error",method="GET"}`)
			})
		})
	})
}
