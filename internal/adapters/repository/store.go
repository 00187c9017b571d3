// Package repository provides read-only roster stores backing the status lookup.
package repository

import (
	"context"

	"github.com/okian/twostep/internal/domain/model"
)

// Store provides read access to the roster tables. Implementations must be
// safe for concurrent use and must not let callers mutate stored data.
type Store interface {
	// People returns all people in table order.
	People(ctx context.Context) ([]model.Person, error)

	// Scores returns all scores in table order.
	Scores(ctx context.Context) ([]model.Score, error)
}
