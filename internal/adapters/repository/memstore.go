package repository

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/twostep/internal/domain/model"
)

// DefaultPeople returns the built-in people table.
func DefaultPeople() []model.Person {
	return []model.Person{
		{ID: 1, Name: "John", GroupKey: 101},
		{ID: 2, Name: "Jane", GroupKey: 999},
	}
}

// DefaultScores returns the built-in scores table.
func DefaultScores() []model.Score {
	return []model.Score{
		{ID: 1, GroupKey: 101, Value: 86},
		{ID: 2, GroupKey: 999, Value: 100},
		{ID: 3, GroupKey: 101, Value: 80},
	}
}

// MemoryStore is an immutable in-memory Store. Tables are fixed at
// construction; every read hands out a copy.
type MemoryStore struct {
	people []model.Person
	scores []model.Score
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store seeded with the default tables unless
// overridden by options. Duplicate ids are rejected.
func NewMemoryStore(_ context.Context, opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		people: DefaultPeople(),
		scores: DefaultScores(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// dataset mirrors the YAML layout accepted by LoadFile.
type dataset struct {
	People []model.Person `koanf:"people"`
	Scores []model.Score  `koanf:"scores"`
}

// LoadFile builds a store from a YAML file:
//
//	people:
//	  - {id: 1, name: John, group_key: 101}
//	scores:
//	  - {id: 1, group_key: 101, value: 86}
func LoadFile(ctx context.Context, path string) (*MemoryStore, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadDataset, path, err)
	}

	var ds dataset
	if err := k.UnmarshalWithConf("", &ds, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadDataset, path, err)
	}
	if len(ds.People) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, path)
	}

	return NewMemoryStore(ctx, WithPeople(ds.People), WithScores(ds.Scores))
}

// People returns a copy of the people table.
func (s *MemoryStore) People(ctx context.Context) ([]model.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]model.Person(nil), s.people...), nil
}

// Scores returns a copy of the scores table.
func (s *MemoryStore) Scores(ctx context.Context) ([]model.Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]model.Score(nil), s.scores...), nil
}

func (s *MemoryStore) validate() error {
	seen := make(map[int]struct{}, len(s.people))
	for _, p := range s.people {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: person %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	seen = make(map[int]struct{}, len(s.scores))
	for _, sc := range s.scores {
		if _, dup := seen[sc.ID]; dup {
			return fmt.Errorf("%w: score %d", ErrDuplicateID, sc.ID)
		}
		seen[sc.ID] = struct{}{}
	}
	return nil
}
