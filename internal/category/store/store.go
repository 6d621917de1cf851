package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/balancea/internal/category"
	"github.com/MrJamesThe3rd/balancea/internal/jsonfile"
)

// JSONStore keeps the taxonomy in a single JSON document.
type JSONStore struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

func NewJSONStore(path string, log zerolog.Logger) *JSONStore {
	return &JSONStore{path: path, log: log}
}

// Load returns the stored taxonomy. A missing file is initialised with the
// defaults; a corrupt one is reported and the defaults are used in memory.
func (s *JSONStore) Load(_ context.Context) (category.Taxonomy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tax, err := jsonfile.LoadOrInit(s.path, category.Defaults)

	var corrupt *jsonfile.CorruptError
	if errors.As(err, &corrupt) {
		s.log.Warn().Err(err).Str("path", s.path).Msg("categories file is corrupt, using defaults")
		return tax, nil
	}

	return tax, err
}

func (s *JSONStore) Save(_ context.Context, t category.Taxonomy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return jsonfile.Save(s.path, t)
}
