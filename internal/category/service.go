package category

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

var (
	ErrExists      = errors.New("category already exists")
	ErrNotFound    = errors.New("category not found")
	ErrEmptyName   = errors.New("category name cannot be empty")
	ErrInvalidType = errors.New("type must be income or expense")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	Load(ctx context.Context) (Taxonomy, error)
	Save(ctx context.Context, t Taxonomy) error
}

// Service caches the taxonomy in memory; every change is written through the
// repository before it becomes visible.
type Service struct {
	mu   sync.RWMutex
	repo Repository
	tax  Taxonomy
}

func NewService(ctx context.Context, repo Repository) (*Service, error) {
	tax, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}

	return &Service{repo: repo, tax: tax}, nil
}

// All returns a copy of the whole taxonomy.
func (s *Service) All() Taxonomy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tax.clone()
}

func (s *Service) List(typ transaction.Type) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tax.Names(typ)
}

// Valid reports whether name is a category of typ.
func (s *Service) Valid(typ transaction.Type, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tax.Contains(typ, name)
}

func (s *Service) Add(ctx context.Context, typ transaction.Type, name string) error {
	name, err := checkInput(typ, name)
	if err != nil {
		return err
	}

	return s.mutate(ctx, func(t *Taxonomy) error {
		if t.Contains(typ, name) {
			return fmt.Errorf("%w: %q", ErrExists, name)
		}

		t.set(typ, append(t.list(typ), name))

		return nil
	})
}

func (s *Service) Remove(ctx context.Context, typ transaction.Type, name string) error {
	name, err := checkInput(typ, name)
	if err != nil {
		return err
	}

	return s.mutate(ctx, func(t *Taxonomy) error {
		names := t.list(typ)

		i := slices.Index(names, name)
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}

		t.set(typ, slices.Delete(names, i, i+1))

		return nil
	})
}

// Rename keeps the category at its position in the list.
func (s *Service) Rename(ctx context.Context, typ transaction.Type, oldName, newName string) error {
	oldName, err := checkInput(typ, oldName)
	if err != nil {
		return err
	}

	newName, err = checkInput(typ, newName)
	if err != nil {
		return err
	}

	return s.mutate(ctx, func(t *Taxonomy) error {
		names := t.list(typ)

		i := slices.Index(names, oldName)
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrNotFound, oldName)
		}

		if slices.Contains(names, newName) {
			return fmt.Errorf("%w: %q", ErrExists, newName)
		}

		names[i] = newName

		return nil
	})
}

func (s *Service) RestoreDefaults(ctx context.Context) error {
	return s.mutate(ctx, func(t *Taxonomy) error {
		*t = Defaults()
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, fn func(t *Taxonomy) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.tax.clone()
	if err := fn(&next); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("saving categories: %w", err)
	}

	s.tax = next

	return nil
}

func checkInput(typ transaction.Type, name string) (string, error) {
	if typ != transaction.TypeIncome && typ != transaction.TypeExpense {
		return "", ErrInvalidType
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	return name, nil
}
