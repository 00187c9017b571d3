package fx

import (
	"errors"
	"fmt"
)

// Sentinel kinds for conversion errors. Typed errors below match them via errors.Is.
var (
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	ErrRegionLookup    = errors.New("region lookup failed")
	ErrInvalidAmount   = errors.New("amount must be a non-negative number")
)

// RateUnavailableError reports that no usable rate exists for From->To. The
// underlying cause is intentionally not retained.
type RateUnavailableError struct {
	From string
	To   string
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("Unable to get exchange rate for %s and %s.", e.From, e.To)
}

// Is reports whether target is ErrRateUnavailable.
func (e *RateUnavailableError) Is(target error) bool {
	return target == ErrRateUnavailable
}

// RegionLookupError reports that the countries using Currency could not be
// fetched. The underlying cause is intentionally not retained.
type RegionLookupError struct {
	Currency string
}

func (e *RegionLookupError) Error() string {
	return fmt.Sprintf("Unable to get countries that use %s.", e.Currency)
}

// Is reports whether target is ErrRegionLookup.
func (e *RegionLookupError) Is(target error) bool {
	return target == ErrRegionLookup
}
