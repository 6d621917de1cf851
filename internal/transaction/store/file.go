package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/balancea/internal/encoding"
	"github.com/MrJamesThe3rd/balancea/internal/jsonfile"
	"github.com/MrJamesThe3rd/balancea/internal/ledgercsv"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

const corruptSuffix = ".corrupt"

// FileStore keeps the ledger in memory and rewrites the whole CSV file after
// every mutation. In-memory state only changes once the write succeeded.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
	now  func() time.Time
	txs  []*transaction.Transaction
}

// NewFileStore loads the ledger at path. A missing file is created with just
// the header. A file that cannot be parsed is copied to path.corrupt and left
// untouched until the next mutation; malformed rows are dropped with a warning.
func NewFileStore(path string, log zerolog.Logger) (*FileStore, error) {
	s := &FileStore{path: path, log: log, now: time.Now}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}

		return s, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding ledger: %w", err)
	}

	txs, skipped, err := ledgercsv.Read(r)
	if err != nil {
		aside := path + corruptSuffix
		if err := jsonfile.WriteAtomic(aside, data); err != nil {
			return nil, fmt.Errorf("preserving unreadable ledger: %w", err)
		}

		log.Warn().Err(err).Str("path", path).Str("copy", aside).Msg("ledger file unreadable, starting empty")

		return s, nil
	}

	for _, rowErr := range skipped {
		log.Warn().Int("line", rowErr.Line).Err(rowErr.Err).Msg("dropping malformed ledger row")
	}

	reassigned := 0

	for _, t := range txs {
		if t.ID == uuid.Nil {
			t.ID = newID()
			reassigned++
		}

		t.CreatedAt = t.Date
	}

	s.txs = txs

	if reassigned > 0 {
		log.Info().Int("count", reassigned).Msg("assigned ids to legacy ledger rows")

		if err := s.write(txs); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}

func (s *FileStore) write(txs []*transaction.Transaction) error {
	var buf bytes.Buffer
	if err := ledgercsv.Write(&buf, txs); err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	if err := jsonfile.WriteAtomic(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}

	return nil
}

// commit persists next and swaps it in on success.
func (s *FileStore) commit(next []*transaction.Transaction) error {
	if err := s.write(next); err != nil {
		return err
	}

	s.txs = next

	return nil
}

func clone(t *transaction.Transaction) *transaction.Transaction {
	c := *t
	return &c
}

func (s *FileStore) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.txs, func(t *transaction.Transaction) bool { return t.ID == id })
}

func (s *FileStore) CreateTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(tx)
	stored.ID = newID()
	stored.CreatedAt = s.now()

	if err := s.commit(append(slices.Clone(s.txs), stored)); err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	tx.ID = stored.ID
	tx.CreatedAt = stored.CreatedAt

	return nil
}

func (s *FileStore) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, transaction.ErrNotFound
	}

	return clone(s.txs[i]), nil
}

func (s *FileStore) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*transaction.Transaction

	for _, t := range s.txs {
		if filter.Match(t) {
			out = append(out, clone(t))
		}
	}

	return out, nil
}

func (s *FileStore) UpdateTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(tx.ID)
	if i < 0 {
		return transaction.ErrNotFound
	}

	updated := clone(tx)
	updated.CreatedAt = s.txs[i].CreatedAt
	updated.UpdatedAt = new(s.now())

	next := slices.Clone(s.txs)
	next[i] = updated

	if err := s.commit(next); err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	tx.UpdatedAt = updated.UpdatedAt

	return nil
}

func (s *FileStore) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return transaction.ErrNotFound
	}

	if err := s.commit(slices.Delete(slices.Clone(s.txs), i, i+1)); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

func (s *FileStore) DeleteTransactions(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	next := slices.DeleteFunc(slices.Clone(s.txs), func(t *transaction.Transaction) bool {
		_, ok := drop[t.ID]
		return ok
	})

	if err := s.commit(next); err != nil {
		return fmt.Errorf("deleting transactions: %w", err)
	}

	return nil
}

// BeginImport holds the store lock until Commit or Rollback.
func (s *FileStore) BeginImport(_ context.Context, minDate, maxDate time.Time) (transaction.ImportTx, error) {
	s.mu.Lock()

	return &fileImportTx{store: s, minDate: minDate, maxDate: maxDate}, nil
}

type fileImportTx struct {
	store   *FileStore
	minDate time.Time
	maxDate time.Time
	staged  []*transaction.Transaction
	done    bool
}

func (itx *fileImportTx) FindDuplicates(_ context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	var duplicates []*transaction.Transaction

	for _, t := range itx.store.txs {
		if t.Date.Before(transaction.DayOf(itx.minDate)) || t.Date.After(transaction.DayOf(itx.maxDate)) {
			continue
		}

		for _, p := range params {
			if transaction.IsDuplicate(t, p) {
				duplicates = append(duplicates, clone(t))
				break
			}
		}
	}

	return duplicates, nil
}

func (itx *fileImportTx) CreateTransactions(_ context.Context, txs []*transaction.Transaction) error {
	now := itx.store.now()

	for _, tx := range txs {
		tx.ID = newID()
		tx.CreatedAt = now
		itx.staged = append(itx.staged, clone(tx))
	}

	return nil
}

func (itx *fileImportTx) Commit() error {
	if itx.done {
		return errors.New("import already finished")
	}

	itx.done = true
	defer itx.store.mu.Unlock()

	if err := itx.store.commit(append(slices.Clone(itx.store.txs), itx.staged...)); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}

	return nil
}

func (itx *fileImportTx) Rollback() error {
	if itx.done {
		return nil
	}

	itx.done = true
	itx.store.mu.Unlock()

	return nil
}
