// Package fx implements the currency conversion pipeline: resolve a pairwise
// rate from one snapshot, look up the countries using the target currency,
// and describe the converted amount.
package fx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okian/twostep/internal/domain/model"
)

// convertedPlaces is the number of decimals a converted amount is rounded to.
const convertedPlaces = 2

// RateSource returns a full rate snapshot relative to one base currency.
type RateSource interface {
	Snapshot(ctx context.Context) (model.ExchangeQuote, error)
}

// RegionSource returns the countries using a currency.
type RegionSource interface {
	Countries(ctx context.Context, currencyCode string) (model.RegionList, error)
}

var errBaseMismatch = errors.New("snapshot base mismatch")

// ComputeRate derives the from->to rate from a snapshot as
// (1 / rates[from]) * rates[to]. An empty base skips the base check.
func ComputeRate(quote model.ExchangeQuote, base, from, to string) (float64, error) {
	if base != "" && !strings.EqualFold(quote.Base, base) {
		return 0, fmt.Errorf("%w: got %q, want %q", errBaseMismatch, quote.Base, base)
	}
	rFrom, ok := quote.Rate(from)
	if !ok {
		return 0, fmt.Errorf("no rate for %q", from)
	}
	rTo, ok := quote.Rate(to)
	if !ok {
		return 0, fmt.Errorf("no rate for %q", to)
	}
	rate := (1 / rFrom) * rTo
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("rate %s->%s is not finite", from, to)
	}
	return rate, nil
}

// CauseFunc receives the underlying failure before it is collapsed into a
// RateUnavailableError or RegionLookupError.
type CauseFunc func(ctx context.Context, cause error)

// FetchRate fetches one snapshot and resolves from->to. Every failure is
// reported as a RateUnavailableError without its cause; onCause still sees it.
func FetchRate(ctx context.Context, src RateSource, base, from, to string, onCause ...CauseFunc) (float64, error) {
	rate, cause := resolveRate(ctx, src, base, from, to)
	if cause != nil {
		report(ctx, cause, onCause)
		return 0, &RateUnavailableError{From: from, To: to}
	}
	return rate, nil
}

func resolveRate(ctx context.Context, src RateSource, base, from, to string) (float64, error) {
	if from == "" || to == "" {
		return 0, errors.New("currency codes are required")
	}
	quote, err := src.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return ComputeRate(quote, base, from, to)
}

// FetchRegions looks up the countries using currencyCode. Every failure is
// reported as a RegionLookupError without its cause; no countries is a
// successful empty result.
func FetchRegions(ctx context.Context, src RegionSource, currencyCode string, onCause ...CauseFunc) (model.RegionList, error) {
	regions, err := src.Countries(ctx, currencyCode)
	if err != nil {
		report(ctx, err, onCause)
		return nil, &RegionLookupError{Currency: currencyCode}
	}
	return nonNil(regions), nil
}

func report(ctx context.Context, cause error, hooks []CauseFunc) {
	for _, h := range hooks {
		if h != nil {
			h(ctx, cause)
		}
	}
}

func nonNil(r model.RegionList) model.RegionList {
	if r == nil {
		return model.RegionList{}
	}
	return r
}

// ComputeConversion returns amount*rate rounded to two decimal places. The
// product is taken in decimal so finite inputs never overflow.
func ComputeConversion(amount, rate float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Round(convertedPlaces)
}

// FormatConversion renders the user-facing conversion sentence.
func FormatConversion(amount float64, from string, converted decimal.Decimal, to string, regions []string) string {
	return fmt.Sprintf("%s %s is worth %s %s. You can spend these in the following countries: %s",
		strconv.FormatFloat(amount, 'f', -1, 64), from,
		converted.StringFixed(convertedPlaces), to,
		strings.Join(regions, ", "))
}
