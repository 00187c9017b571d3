package upstream

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/twostep/internal/domain/model"
)

// SourceRates labels rate service requests.
const SourceRates = "rates"

// RatesClient fetches rate snapshots from a Fixer-compatible /latest endpoint.
type RatesClient struct {
	http      *HTTPClient
	endpoint  string
	accessKey string
}

// NewRatesClient builds a client for endpoint authenticated with accessKey.
func NewRatesClient(c *HTTPClient, endpoint, accessKey string) *RatesClient {
	return &RatesClient{http: c, endpoint: endpoint, accessKey: accessKey}
}

// latestResponse is the /latest payload. Success is a pointer because some
// compatible services omit it.
type latestResponse struct {
	Success   *bool              `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Date      string             `json:"date"`
	Rates     map[string]float64 `json:"rates"`
	Error     *apiError          `json:"error"`
}

type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

// Snapshot fetches the current rates. Only the access key is sent; currency
// selection happens on the caller's side.
func (c *RatesClient) Snapshot(ctx context.Context) (model.ExchangeQuote, error) {
	if c.accessKey == "" {
		return model.ExchangeQuote{}, ErrMissingAccessKey
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return model.ExchangeQuote{}, fmt.Errorf("%w: %s: %w", ErrRequest, SourceRates, err)
	}
	q := u.Query()
	q.Set("access_key", c.accessKey)
	u.RawQuery = q.Encode()

	var body latestResponse
	if err := c.http.GetJSON(ctx, SourceRates, u.String(), &body); err != nil {
		return model.ExchangeQuote{}, err
	}

	if (body.Success != nil && !*body.Success) || body.Error != nil {
		if body.Error != nil {
			return model.ExchangeQuote{}, fmt.Errorf("%w: %s: %d %s %s", ErrRejected, SourceRates, body.Error.Code, body.Error.Type, body.Error.Info)
		}
		return model.ExchangeQuote{}, fmt.Errorf("%w: %s", ErrRejected, SourceRates)
	}

	quote := model.ExchangeQuote{
		Base:  body.Base,
		Date:  body.Date,
		Rates: body.Rates,
	}
	if body.Timestamp > 0 {
		quote.Timestamp = time.Unix(body.Timestamp, 0).UTC()
	}
	return quote, nil
}
