// Package grades implements the status lookup: find a person, collect the
// scores of their group, and report the average.
package grades

import (
	"context"
	"fmt"
	"strconv"

	"github.com/okian/twostep/internal/adapters/repository"
	"github.com/okian/twostep/internal/domain/model"
)

// FetchEntity returns the first person in the store with the given id.
func FetchEntity(ctx context.Context, store repository.Store, id int) (model.Person, error) {
	people, err := store.People(ctx)
	if err != nil {
		return model.Person{}, fmt.Errorf("load people: %w", err)
	}
	for _, p := range people {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Person{}, &NotFoundError{ID: id}
}

// FetchDependents returns every score in groupKey, in table order. No match
// yields an empty slice.
func FetchDependents(ctx context.Context, store repository.Store, groupKey int) ([]model.Score, error) {
	scores, err := store.Scores(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	out := make([]model.Score, 0, len(scores))
	for _, s := range scores {
		if s.GroupKey == groupKey {
			out = append(out, s)
		}
	}
	return out, nil
}

// Average is the arithmetic mean of values, or 0 for none.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Values extracts the numeric grades.
func Values(scores []model.Score) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s.Value
	}
	return out
}

// FormatStatus renders "<name> has a <average>% in the class.". The average is
// printed unrounded in its shortest form.
func FormatStatus(p model.Person, average float64) string {
	return p.Name + " has a " + strconv.FormatFloat(average, 'f', -1, 64) + "% in the class."
}
