package upstream

import (
	"context"
	"net/url"
	"strings"

	"github.com/okian/twostep/internal/domain/model"
)

// SourceRegions labels region service requests.
const SourceRegions = "regions"

// RegionsClient looks up countries by currency code against a
// REST-Countries-style /currency/{code} endpoint.
type RegionsClient struct {
	http     *HTTPClient
	endpoint string
}

// NewRegionsClient builds a client; endpoint is the /currency collection URL.
func NewRegionsClient(c *HTTPClient, endpoint string) *RegionsClient {
	return &RegionsClient{http: c, endpoint: strings.TrimRight(endpoint, "/")}
}

type country struct {
	Name string `json:"name"`
}

// Countries returns the names of countries using currencyCode, in response order.
func (c *RegionsClient) Countries(ctx context.Context, currencyCode string) (model.RegionList, error) {
	var body []country
	if err := c.http.GetJSON(ctx, SourceRegions, c.endpoint+"/"+url.PathEscape(currencyCode), &body); err != nil {
		return nil, err
	}

	out := make(model.RegionList, 0, len(body))
	for _, ct := range body {
		out = append(out, ct.Name)
	}
	return out, nil
}
