package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

// Store is the Postgres-backed repository.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a row in selectTransactionColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	if err := s.Scan(
		&tx.ID, &tx.Date, &tx.Description, &tx.Amount, &typeStr, &tx.Category,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.Date = transaction.DayOf(tx.Date)

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.date, t.description, t.amount, t.type, t.category, t.created_at, t.updated_at
`

const insertTransaction = `
	INSERT INTO transactions (id, date, description, amount, type, category, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING created_at, updated_at
`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insert(ctx context.Context, q queryRower, tx *transaction.Transaction) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating id: %w", err)
	}

	err = q.QueryRowContext(ctx, insertTransaction,
		id,
		tx.Date,
		tx.Description,
		tx.Amount,
		tx.Type,
		tx.Category,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return err
	}

	tx.ID = id

	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if err := insert(ctx, s.db, tx); err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1 AND t.deleted_at IS NULL`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

// buildListQuery translates the filter into a WHERE clause with positional args.
func buildListQuery(filter transaction.ListFilter) (string, []any) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND LOWER(t.category) = LOWER($%d)", argIdx)

		args = append(args, filter.Category)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, transaction.DayOf(*filter.StartDate))
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, transaction.DayOf(*filter.EndDate))
		argIdx++
	}

	if filter.Query != "" {
		query += fmt.Sprintf(" AND t.description ILIKE '%%' || $%d || '%%'", argIdx)

		args = append(args, filter.Query)
	}

	query += " ORDER BY t.created_at ASC, t.id ASC"

	return query, args
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query, args := buildListQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET date = $1, description = $2, amount = $3, type = $4, category = $5, updated_at = NOW()
		WHERE id = $6 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Date,
		tx.Description,
		tx.Amount,
		tx.Type,
		tx.Category,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return requireRow(res)
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return requireRow(res)
}

func (s *Store) DeleteTransactions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, id := range ids {
		if _, err := dbTx.ExecContext(ctx,
			`UPDATE transactions SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id); err != nil {
			return fmt.Errorf("deleting transaction %s: %w", id, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a database transaction and takes an advisory lock keyed
// on the date range, so overlapping imports run one after the other.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	lockKey := importLockKey(minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

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

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.deleted_at IS NULL AND t.date >= $1 AND t.date <= $2
		ORDER BY t.date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		for _, p := range params {
			if transaction.IsDuplicate(tx, p) {
				duplicates = append(duplicates, tx)
				break
			}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		if err := insert(ctx, itx.tx, tx); err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
	}

	return nil
}
