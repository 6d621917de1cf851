package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/goal"
	"github.com/MrJamesThe3rd/balancea/internal/jsonfile"
)

// record is the on-disk shape of one goal.
type record struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Target        decimal.Decimal `json:"target"`
	Current       decimal.Decimal `json:"current"`
	Created       string          `json:"created"`
	Deadline      string          `json:"deadline,omitempty"`
	Description   string          `json:"description,omitempty"`
	Completed     bool            `json:"completed"`
	CompletedDate string          `json:"completed_date,omitempty"`
}

// UnmarshalJSON also accepts the legacy Spanish keys.
func (r *record) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            json.RawMessage  `json:"id"`
		Name          string           `json:"name"`
		Target        *decimal.Decimal `json:"target"`
		Current       *decimal.Decimal `json:"current"`
		Created       string           `json:"created"`
		Deadline      *string          `json:"deadline"`
		Description   *string          `json:"description"`
		Completed     *bool            `json:"completed"`
		CompletedDate *string          `json:"completed_date"`

		LegacyName          string           `json:"nombre"`
		LegacyTarget        *decimal.Decimal `json:"monto_objetivo"`
		LegacyCurrent       *decimal.Decimal `json:"monto_actual"`
		LegacyCreated       string           `json:"fecha_creacion"`
		LegacyDeadline      *string          `json:"fecha_limite"`
		LegacyDescription   *string          `json:"descripcion"`
		LegacyCompleted     *bool            `json:"completada"`
		LegacyCompletedDate *string          `json:"fecha_completada"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ID = rawID(raw.ID)
	r.Name = cmp.Or(raw.Name, raw.LegacyName)
	r.Created = cmp.Or(raw.Created, raw.LegacyCreated)
	r.Deadline = cmp.Or(deref(raw.Deadline), deref(raw.LegacyDeadline))
	r.Description = cmp.Or(deref(raw.Description), deref(raw.LegacyDescription))
	r.CompletedDate = cmp.Or(deref(raw.CompletedDate), deref(raw.LegacyCompletedDate))

	switch {
	case raw.Target != nil:
		r.Target = *raw.Target
	case raw.LegacyTarget != nil:
		r.Target = *raw.LegacyTarget
	default:
		return errors.New("goal has no target")
	}

	if c := cmp.Or(raw.Current, raw.LegacyCurrent); c != nil {
		r.Current = *c
	}

	if c := cmp.Or(raw.Completed, raw.LegacyCompleted); c != nil {
		r.Completed = *c
	}

	return nil
}

// rawID reads ids written either as strings or as bare numbers.
func rawID(msg json.RawMessage) string {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		return n.String()
	}

	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// JSONStore keeps the goals as a JSON array, in creation order.
type JSONStore struct {
	mu    sync.Mutex
	path  string
	log   zerolog.Logger
	goals []*goal.Goal
}

// NewJSONStore loads the goals file. Goals carrying a non-UUID id get a new one
// and the file is rewritten. Goals that fail to decode are logged and skipped.
func NewJSONStore(path string, log zerolog.Logger) (*JSONStore, error) {
	raw, err := jsonfile.LoadOrInit(path, func() []json.RawMessage { return []json.RawMessage{} })

	var corrupt *jsonfile.CorruptError
	if errors.As(err, &corrupt) {
		log.Warn().Err(err).Str("path", path).Msg("goals file is corrupt, starting empty")
		raw, err = nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading goals: %w", err)
	}

	s := &JSONStore{path: path, log: log}

	reassigned := 0

	for i, msg := range raw {
		var r record
		if err := json.Unmarshal(msg, &r); err != nil {
			log.Warn().Err(err).Str("path", path).Int("index", i).Msg("skipping malformed goal")
			continue
		}

		g, fresh, err := toGoal(r)
		if err != nil {
			return nil, err
		}

		if fresh {
			reassigned++
		}

		s.goals = append(s.goals, g)
	}

	if reassigned > 0 {
		log.Info().Int("count", reassigned).Msg("assigned new ids to legacy goals")

		if err := s.commit(s.goals); err != nil {
			return nil, fmt.Errorf("rewriting goals: %w", err)
		}
	}

	return s, nil
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}

	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.DateOnly)
}

func toGoal(r record) (*goal.Goal, bool, error) {
	g := &goal.Goal{
		Name:          r.Name,
		Target:        r.Target,
		Current:       r.Current,
		Deadline:      parseDate(r.Deadline),
		Description:   r.Description,
		Completed:     r.Completed,
		CompletedDate: parseDate(r.CompletedDate),
	}

	if c := parseDate(r.Created); c != nil {
		g.Created = *c
	}

	id, err := uuid.Parse(r.ID)
	if err == nil {
		g.ID = id
		return g, false, nil
	}

	g.ID, err = uuid.NewV7()
	if err != nil {
		return nil, false, err
	}

	return g, true, nil
}

func toRecord(g *goal.Goal) record {
	r := record{
		ID:            g.ID.String(),
		Name:          g.Name,
		Target:        g.Target,
		Current:       g.Current,
		Deadline:      formatDate(g.Deadline),
		Description:   g.Description,
		Completed:     g.Completed,
		CompletedDate: formatDate(g.CompletedDate),
	}

	if !g.Created.IsZero() {
		r.Created = g.Created.Format(time.DateOnly)
	}

	return r
}

func clone(g *goal.Goal) *goal.Goal {
	c := *g
	return &c
}

func (s *JSONStore) commit(next []*goal.Goal) error {
	recs := make([]record, 0, len(next))
	for _, g := range next {
		recs = append(recs, toRecord(g))
	}

	if err := jsonfile.Save(s.path, recs); err != nil {
		return err
	}

	s.goals = next

	return nil
}

func (s *JSONStore) index(id uuid.UUID) int {
	return slices.IndexFunc(s.goals, func(g *goal.Goal) bool { return g.ID == id })
}

func (s *JSONStore) CreateGoal(_ context.Context, g *goal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	stored := clone(g)
	stored.ID = id

	if err := s.commit(append(slices.Clone(s.goals), stored)); err != nil {
		return err
	}

	g.ID = id

	return nil
}

func (s *JSONStore) GetGoal(_ context.Context, id uuid.UUID) (*goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil, goal.ErrNotFound
	}

	return clone(s.goals[i]), nil
}

func (s *JSONStore) UpdateGoal(_ context.Context, g *goal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(g.ID)
	if i < 0 {
		return goal.ErrNotFound
	}

	next := slices.Clone(s.goals)
	next[i] = clone(g)

	return s.commit(next)
}

func (s *JSONStore) DeleteGoal(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return goal.ErrNotFound
	}

	return s.commit(slices.Delete(slices.Clone(s.goals), i, i+1))
}

func (s *JSONStore) ListGoals(_ context.Context) ([]*goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*goal.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, clone(g))
	}

	return out, nil
}
