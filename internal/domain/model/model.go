// Package model contains domain models passed between layers.
package model

import "time"

// Person is a roster entry. GroupKey links the person to their scores.
type Person struct {
	ID       int    `koanf:"id" json:"id"`
	Name     string `koanf:"name" json:"name"`
	GroupKey int    `koanf:"group_key" json:"group_key"`
}

// Score is a single grade belonging to the group identified by GroupKey.
type Score struct {
	ID       int     `koanf:"id" json:"id"`
	GroupKey int     `koanf:"group_key" json:"group_key"`
	Value    float64 `koanf:"value" json:"value"`
}

// ExchangeQuote is one rate snapshot. All rates are relative to Base.
type ExchangeQuote struct {
	Base      string
	Date      string
	Timestamp time.Time
	Rates     map[string]float64
}

// Rate returns the snapshot rate for code and whether it is present.
func (q ExchangeQuote) Rate(code string) (float64, bool) {
	r, ok := q.Rates[code]
	return r, ok
}

// RegionList is the ordered list of country names using a currency.
type RegionList []string
