package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	DeleteTransactions(ctx context.Context, ids []uuid.UUID) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo       Repository
	categories CategoryChecker
	now        func() time.Time
}

type Option func(*Service)

// WithCategoryChecker rejects categories unknown to the taxonomy.
func WithCategoryChecker(c CategoryChecker) Option {
	return func(s *Service) { s.categories = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Type        Type
	Category    string
}

type ListFilter struct {
	Type      *Type
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	// Query matches a case-insensitive substring of the description.
	Query string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(s.now(), s.categories); err != nil {
		return nil, err
	}

	tx := newTransaction(params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// Snapshot returns the full ledger in stored order.
func (s *Service) Snapshot(ctx context.Context) (Ledger, error) {
	txs, err := s.repo.ListTransactions(ctx, ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	return Ledger(txs), nil
}

func (s *Service) Search(ctx context.Context, term string) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ListFilter{Query: strings.TrimSpace(term)})
}

// Update replaces the editable fields of an existing transaction.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params CreateParams) (*Transaction, error) {
	if err := params.Validate(s.now(), s.categories); err != nil {
		return nil, err
	}

	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	tx.Date = params.Date
	tx.Description = params.Description
	tx.Amount = params.Amount
	tx.Type = params.Type
	tx.Category = params.Category

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

type ImportResult struct {
	Imported []*Transaction
	Skipped  []Conflict
	Invalid  []InvalidRow
}

// Conflict pairs an incoming row with the stored transaction it duplicates.
type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

type InvalidRow struct {
	Params CreateParams
	Err    error
}

// dupKey identifies transactions that are considered the same entry.
type dupKey struct {
	Date        string
	Amount      string
	Type        Type
	Description string
}

func keyOf(date time.Time, amount decimal.Decimal, typ Type, desc string) dupKey {
	return dupKey{
		Date:        date.Format(time.DateOnly),
		Amount:      amount.StringFixed(2),
		Type:        typ,
		Description: strings.ToLower(strings.TrimSpace(desc)),
	}
}

// ImportBatch validates params, skips rows that duplicate stored transactions
// and creates the rest in one import transaction.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	result := &ImportResult{}

	now := s.now()

	var valid []CreateParams

	for _, p := range params {
		if err := p.Validate(now, s.categories); err != nil {
			result.Invalid = append(result.Invalid, InvalidRow{Params: p, Err: err})
			continue
		}

		valid = append(valid, p)
	}

	if len(valid) == 0 {
		return result, nil
	}

	minDate, maxDate := dateRange(valid)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Date, d.Amount, d.Type, d.Description)] = d
	}

	var newParams []CreateParams

	for _, p := range valid {
		existing, found := lookup[keyOf(p.Date, p.Amount, p.Type, p.Description)]
		if found {
			result.Skipped = append(result.Skipped, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(newParams) == 0 {
		return result, nil
	}

	txs := paramsToTransactions(newParams)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	result.Imported = txs

	return result, nil
}

// RemoveDuplicates deletes every transaction that repeats an earlier one
// (same date, amount, type and description) and returns how many were removed.
func (s *Service) RemoveDuplicates(ctx context.Context) (int, error) {
	ledger, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	ids := DuplicateIDs(ledger)
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.repo.DeleteTransactions(ctx, ids); err != nil {
		return 0, fmt.Errorf("removing duplicates: %w", err)
	}

	return len(ids), nil
}

// DuplicateIDs lists the ids of every entry that repeats an earlier one.
func DuplicateIDs(l Ledger) []uuid.UUID {
	seen := make(map[dupKey]struct{}, len(l))

	var ids []uuid.UUID

	for _, t := range l {
		k := keyOf(t.Date, t.Amount, t.Type, t.Description)
		if _, ok := seen[k]; ok {
			ids = append(ids, t.ID)
			continue
		}

		seen[k] = struct{}{}
	}

	return ids
}

// IsDuplicate reports whether p describes the same entry as t.
func IsDuplicate(t *Transaction, p CreateParams) bool {
	return keyOf(t.Date, t.Amount, t.Type, t.Description) == keyOf(DayOf(p.Date), p.Amount, p.Type, p.Description)
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func newTransaction(p CreateParams) *Transaction {
	return &Transaction{
		Date:        p.Date,
		Description: p.Description,
		Amount:      p.Amount,
		Type:        p.Type,
		Category:    p.Category,
	}
}

func paramsToTransactions(params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(p)
	}

	return txs
}
