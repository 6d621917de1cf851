package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=goal
type Repository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	GetGoal(ctx context.Context, id uuid.UUID) (*Goal, error)
	UpdateGoal(ctx context.Context, g *Goal) error
	DeleteGoal(ctx context.Context, id uuid.UUID) error
	ListGoals(ctx context.Context) ([]*Goal, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

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

// Summary aggregates every goal.
type Summary struct {
	Total        int
	Active       int
	Completed    int
	TargetTotal  decimal.Decimal
	CurrentTotal decimal.Decimal
	Progress     decimal.Decimal
}

func (s *Service) Add(ctx context.Context, p Params) (*Goal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	today := transaction.DayOf(s.now())

	if p.Deadline != nil && p.Deadline.Before(today) {
		return nil, ErrDeadlineInvalid
	}

	g := &Goal{
		Name:        p.Name,
		Target:      p.Target,
		Current:     decimal.Zero,
		Created:     today,
		Deadline:    p.Deadline,
		Description: p.Description,
	}

	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("creating goal: %w", err)
	}

	return g, nil
}

// Edit replaces the editable fields. A new target can complete or reopen the goal.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, p Params) (*Goal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(g *Goal) error {
		if p.Deadline != nil && p.Deadline.Before(g.Created) {
			return ErrDeadlineInvalid
		}

		g.Name = p.Name
		g.Target = p.Target
		g.Deadline = p.Deadline
		g.Description = p.Description

		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteGoal(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Goal, error) {
	return s.repo.GetGoal(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Goal, error) {
	return s.repo.ListGoals(ctx)
}

// Active lists goals that are not completed.
func (s *Service) Active(ctx context.Context) ([]*Goal, error) {
	return s.filter(ctx, false)
}

func (s *Service) Completed(ctx context.Context) ([]*Goal, error) {
	return s.filter(ctx, true)
}

func (s *Service) filter(ctx context.Context, completed bool) ([]*Goal, error) {
	gs, err := s.repo.ListGoals(ctx)
	if err != nil {
		return nil, err
	}

	var out []*Goal

	for _, g := range gs {
		if g.Completed == completed {
			out = append(out, g)
		}
	}

	return out, nil
}

// SetAmount overwrites the saved amount.
func (s *Service) SetAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*Goal, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	return s.update(ctx, id, func(g *Goal) error {
		g.Current = money.Cents(amount)
		return nil
	})
}

// Contribute adds amount to the saved amount. Negative contributions are
// withdrawals and may not take the amount below zero.
func (s *Service) Contribute(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*Goal, error) {
	if amount.IsZero() {
		return nil, ErrZeroAmount
	}

	return s.update(ctx, id, func(g *Goal) error {
		next := g.Current.Add(money.Cents(amount))
		if next.IsNegative() {
			return ErrNegativeAmount
		}

		g.Current = next

		return nil
	})
}

// update applies fn, recomputes completion and persists the goal.
func (s *Service) update(ctx context.Context, id uuid.UUID, fn func(g *Goal) error) (*Goal, error) {
	g, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(g); err != nil {
		return nil, err
	}

	g.recompute(s.now())

	if err := s.repo.UpdateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("updating goal: %w", err)
	}

	return g, nil
}

// Alerts returns the alerts of one goal.
func (s *Service) Alerts(ctx context.Context, id uuid.UUID) ([]alert.Alert, error) {
	g, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	return Alerts(g, s.now()), nil
}

// AllAlerts returns the alerts of every goal, in goal order.
func (s *Service) AllAlerts(ctx context.Context) ([]alert.Alert, error) {
	gs, err := s.repo.ListGoals(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()

	var out []alert.Alert
	for _, g := range gs {
		out = append(out, Alerts(g, today)...)
	}

	return out, nil
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	gs, err := s.repo.ListGoals(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Total: len(gs)}

	for _, g := range gs {
		if g.Completed {
			sum.Completed++
		} else {
			sum.Active++
		}

		sum.TargetTotal = sum.TargetTotal.Add(g.Target)
		sum.CurrentTotal = sum.CurrentTotal.Add(g.Current)
	}

	sum.Progress = money.Percent(sum.CurrentTotal, sum.TargetTotal)

	return sum, nil
}
