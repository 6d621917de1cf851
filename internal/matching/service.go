// Package matching learns which category a transaction description belongs to.
package matching

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyPattern  = errors.New("pattern cannot be empty")
	ErrEmptyCategory = errors.New("category cannot be empty")
	ErrNotFound      = errors.New("mapping not found")
)

// Mapping assigns Category to every description containing Pattern.
type Mapping struct {
	Pattern  string    `json:"pattern"`
	Category string    `json:"category"`
	Created  time.Time `json:"created"`
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the category of the longest pattern contained in
	// description, or "" when nothing matches.
	FindMatch(ctx context.Context, description string) (string, error)
	SaveMapping(ctx context.Context, pattern, category string) error
	DeleteMapping(ctx context.Context, pattern string) error
	ListMappings(ctx context.Context) ([]Mapping, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the learned category for description, or "" if none applies.
func (s *Service) Suggest(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, description)
}

// Learn remembers that descriptions containing pattern belong to category.
// Learning an existing pattern again replaces its category.
func (s *Service) Learn(ctx context.Context, pattern, category string) error {
	pattern = normalize(pattern)
	category = strings.TrimSpace(category)

	if pattern == "" {
		return ErrEmptyPattern
	}

	if category == "" {
		return ErrEmptyCategory
	}

	return s.repo.SaveMapping(ctx, pattern, category)
}

func (s *Service) Forget(ctx context.Context, pattern string) error {
	return s.repo.DeleteMapping(ctx, normalize(pattern))
}

func (s *Service) List(ctx context.Context) ([]Mapping, error) {
	return s.repo.ListMappings(ctx)
}

func normalize(pattern string) string {
	return strings.ToLower(strings.Join(strings.Fields(pattern), " "))
}

// Best picks the mapping whose pattern is the longest case-insensitive
// substring of description. Ties go to the most recently created mapping.
func Best(mappings []Mapping, description string) (Mapping, bool) {
	lower := strings.ToLower(description)

	var (
		best  Mapping
		found bool
	)

	for _, m := range mappings {
		if m.Pattern == "" || !strings.Contains(lower, strings.ToLower(m.Pattern)) {
			continue
		}

		if !found || len(m.Pattern) > len(best.Pattern) ||
			(len(m.Pattern) == len(best.Pattern) && m.Created.After(best.Created)) {
			best, found = m, true
		}
	}

	return best, found
}
