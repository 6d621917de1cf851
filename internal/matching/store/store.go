package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/balancea/internal/matching"
)

// Store keeps mappings in Postgres.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, description string) (string, error) {
	query := `
		SELECT category
		FROM category_mappings
		WHERE $1 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var category string

	err := s.db.QueryRowContext(ctx, query, description).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return category, nil
}

func (s *Store) SaveMapping(ctx context.Context, pattern, category string) error {
	query := `
		INSERT INTO category_mappings (pattern, category, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (pattern) DO UPDATE SET category = EXCLUDED.category, created_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, pattern, category); err != nil {
		return fmt.Errorf("saving mapping: %w", err)
	}

	return nil
}

func (s *Store) DeleteMapping(ctx context.Context, pattern string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM category_mappings WHERE pattern = $1`, pattern)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return matching.ErrNotFound
	}

	return nil
}

func (s *Store) ListMappings(ctx context.Context) ([]matching.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pattern, category, created_at FROM category_mappings ORDER BY pattern`)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var out []matching.Mapping

	for rows.Next() {
		var m matching.Mapping
		if err := rows.Scan(&m.Pattern, &m.Category, &m.Created); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		out = append(out, m)
	}

	return out, rows.Err()
}
