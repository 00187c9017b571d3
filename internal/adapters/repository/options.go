package repository

import "github.com/okian/twostep/internal/domain/model"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithPeople replaces the default people table.
func WithPeople(people []model.Person) Option {
	return func(s *MemoryStore) {
		s.people = append([]model.Person(nil), people...)
	}
}

// WithScores replaces the default scores table.
func WithScores(scores []model.Score) Option {
	return func(s *MemoryStore) {
		s.scores = append([]model.Score(nil), scores...)
	}
}
