package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/budget"
	"github.com/MrJamesThe3rd/balancea/internal/jsonfile"
)

// record is the on-disk shape of one budget, keyed by category in the file.
type record struct {
	Amount  decimal.Decimal `json:"amount"`
	Created string          `json:"created"`
	Period  string          `json:"period"`
}

// UnmarshalJSON also accepts the legacy "monto"/"fecha_creacion"/"mes_actual" keys.
func (r *record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount        *decimal.Decimal `json:"amount"`
		Created       string           `json:"created"`
		Period        string           `json:"period"`
		LegacyAmount  *decimal.Decimal `json:"monto"`
		LegacyCreated string           `json:"fecha_creacion"`
		LegacyPeriod  string           `json:"mes_actual"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.Amount != nil:
		r.Amount = *raw.Amount
	case raw.LegacyAmount != nil:
		r.Amount = *raw.LegacyAmount
	default:
		return errors.New("budget has no amount")
	}

	r.Created = cmp.Or(raw.Created, raw.LegacyCreated)
	r.Period = cmp.Or(raw.Period, raw.LegacyPeriod)

	return nil
}

type document map[string]record

// JSONStore keeps all budgets in one JSON document and rewrites it on every
// change.
type JSONStore struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
	docs document
}

// NewJSONStore loads the budgets file. A missing file is created empty; a
// corrupt one is reported and left untouched until the next change. Budgets
// that fail to decode are logged and skipped.
func NewJSONStore(path string, log zerolog.Logger) (*JSONStore, error) {
	raw, err := jsonfile.LoadOrInit(path, func() map[string]json.RawMessage { return map[string]json.RawMessage{} })

	var corrupt *jsonfile.CorruptError
	if errors.As(err, &corrupt) {
		log.Warn().Err(err).Str("path", path).Msg("budgets file is corrupt, starting empty")
		err = nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading budgets: %w", err)
	}

	return &JSONStore{path: path, log: log, docs: decodeRecords(raw, path, log)}, nil
}

func decodeRecords(raw map[string]json.RawMessage, path string, log zerolog.Logger) document {
	doc := make(document, len(raw))

	for cat, msg := range raw {
		var r record
		if err := json.Unmarshal(msg, &r); err != nil {
			log.Warn().Err(err).Str("path", path).Str("category", cat).Msg("skipping malformed budget")
			continue
		}

		doc[cat] = r
	}

	return doc
}

func toBudget(category string, r record) *budget.Budget {
	b := &budget.Budget{Category: category, Amount: r.Amount, Period: r.Period}
	if t, err := time.Parse(time.DateOnly, r.Created); err == nil {
		b.Created = t
	}

	return b
}

func toRecord(b *budget.Budget) record {
	r := record{Amount: b.Amount, Period: b.Period}
	if !b.Created.IsZero() {
		r.Created = b.Created.Format(time.DateOnly)
	}

	return r
}

func (s *JSONStore) commit(next document) error {
	if err := jsonfile.Save(s.path, next); err != nil {
		return err
	}

	s.docs = next

	return nil
}

func (s *JSONStore) ListBudgets(_ context.Context) ([]*budget.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*budget.Budget, 0, len(s.docs))
	for _, cat := range slices.Sorted(maps.Keys(s.docs)) {
		out = append(out, toBudget(cat, s.docs[cat]))
	}

	return out, nil
}

func (s *JSONStore) GetBudget(_ context.Context, category string) (*budget.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.docs[category]
	if !ok {
		return nil, budget.ErrNotFound
	}

	return toBudget(category, r), nil
}

func (s *JSONStore) SaveBudget(ctx context.Context, b *budget.Budget) error {
	return s.SaveBudgets(ctx, []*budget.Budget{b})
}

func (s *JSONStore) SaveBudgets(_ context.Context, bs []*budget.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.docs)
	for _, b := range bs {
		next[b.Category] = toRecord(b)
	}

	return s.commit(next)
}

func (s *JSONStore) DeleteBudget(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[category]; !ok {
		return budget.ErrNotFound
	}

	next := maps.Clone(s.docs)
	delete(next, category)

	return s.commit(next)
}
