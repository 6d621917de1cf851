package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/balancea/internal/jsonfile"
	"github.com/MrJamesThe3rd/balancea/internal/matching"
)

// JSONStore keeps mappings in a JSON array file.
type JSONStore struct {
	mu       sync.Mutex
	path     string
	log      zerolog.Logger
	now      func() time.Time
	mappings []matching.Mapping
}

func NewJSONStore(path string, log zerolog.Logger) (*JSONStore, error) {
	ms, err := jsonfile.LoadOrInit(path, func() []matching.Mapping { return []matching.Mapping{} })

	var corrupt *jsonfile.CorruptError
	if errors.As(err, &corrupt) {
		log.Warn().Err(err).Str("path", path).Msg("mappings file is corrupt, starting empty")
		ms, err = nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading mappings: %w", err)
	}

	return &JSONStore{path: path, log: log, now: time.Now, mappings: ms}, nil
}

func (s *JSONStore) commit(next []matching.Mapping) error {
	if next == nil {
		next = []matching.Mapping{}
	}

	if err := jsonfile.Save(s.path, next); err != nil {
		return err
	}

	s.mappings = next

	return nil
}

func (s *JSONStore) FindMatch(_ context.Context, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := matching.Best(s.mappings, description)
	if !ok {
		return "", nil
	}

	return m.Category, nil
}

func (s *JSONStore) SaveMapping(_ context.Context, pattern, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := matching.Mapping{Pattern: pattern, Category: category, Created: s.now().UTC()}

	next := slices.Clone(s.mappings)
	if i := s.index(pattern); i >= 0 {
		next[i] = m
	} else {
		next = append(next, m)
	}

	return s.commit(next)
}

func (s *JSONStore) DeleteMapping(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(pattern)
	if i < 0 {
		return matching.ErrNotFound
	}

	return s.commit(slices.Delete(slices.Clone(s.mappings), i, i+1))
}

func (s *JSONStore) ListMappings(_ context.Context) ([]matching.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := slices.Clone(s.mappings)
	slices.SortFunc(out, func(a, b matching.Mapping) int { return cmp.Compare(a.Pattern, b.Pattern) })

	return out, nil
}

func (s *JSONStore) index(pattern string) int {
	return slices.IndexFunc(s.mappings, func(m matching.Mapping) bool { return m.Pattern == pattern })
}
