// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/twostep/internal/domain/fx"
)

// ConvertDependencies defines the interface for conversions.
type ConvertDependencies interface {
	Resolve(ctx context.Context, req fx.Request) (fx.Conversion, error)
}

// ConvertHandler handles conversion requests.
type ConvertHandler struct {
	deps ConvertDependencies
}

// NewConvertHandler creates a new convert handler.
func NewConvertHandler(deps ConvertDependencies) *ConvertHandler {
	return &ConvertHandler{deps: deps}
}

type convertResponse struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Amount    float64  `json:"amount"`
	Rate      float64  `json:"rate"`
	Converted string   `json:"converted"`
	Regions   []string `json:"regions"`
	Message   string   `json:"message"`
}

// HandleGetConvert handles GET /convert?from=USD&to=SAR&amount=1 requests.
// amount defaults to 1.
func (h *ConvertHandler) HandleGetConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	req := fx.Request{
		From:   strings.ToUpper(strings.TrimSpace(q.Get("from"))),
		To:     strings.ToUpper(strings.TrimSpace(q.Get("to"))),
		Amount: 1,
	}
	switch {
	case req.From == "":
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: from", ErrMissingParam))
		return
	case req.To == "":
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: to", ErrMissingParam))
		return
	}
	if raw := q.Get("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_amount", fx.ErrInvalidAmount)
			return
		}
		req.Amount = amount
	}

	c, err := h.deps.Resolve(r.Context(), req)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{
		From:      c.From,
		To:        c.To,
		Amount:    c.Amount,
		Rate:      c.Rate,
		Converted: c.Converted.StringFixed(2),
		Regions:   c.Regions,
		Message:   c.Message(),
	})
}
