// Package goal tracks savings goals and their progress.
package goal

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

var (
	ErrNotFound        = errors.New("goal not found")
	ErrEmptyName       = errors.New("goal name cannot be empty")
	ErrNameTooLong     = errors.New("goal name cannot exceed 100 characters")
	ErrNegativeAmount  = errors.New("goal amount cannot be negative")
	ErrZeroAmount      = errors.New("contribution cannot be zero")
	ErrDeadlineInvalid = errors.New("deadline cannot be before the creation date")
)

const maxNameLen = 100

type Goal struct {
	ID            uuid.UUID
	Name          string
	Target        decimal.Decimal
	Current       decimal.Decimal
	Created       time.Time
	Deadline      *time.Time
	Description   string
	Completed     bool
	CompletedDate *time.Time
}

// Params holds the user-editable fields of a goal.
type Params struct {
	Name        string
	Target      decimal.Decimal
	Deadline    *time.Time
	Description string
}

func (p *Params) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)

	if p.Name == "" {
		return ErrEmptyName
	}

	if utf8.RuneCountInString(p.Name) > maxNameLen {
		return ErrNameTooLong
	}

	if err := money.Validate(p.Target); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}

	p.Target = money.Cents(p.Target)

	if p.Deadline != nil {
		p.Deadline = new(transaction.DayOf(*p.Deadline))
	}

	return nil
}

// recompute sets Completed from the amounts, stamping or clearing the
// completion date when the flag flips.
func (g *Goal) recompute(today time.Time) {
	done := g.Current.GreaterThanOrEqual(g.Target)

	switch {
	case done && !g.Completed:
		g.Completed = true
		g.CompletedDate = new(transaction.DayOf(today))
	case !done && g.Completed:
		g.Completed = false
		g.CompletedDate = nil
	}
}

var (
	hundred       = decimal.NewFromInt(100)
	tierNearly    = decimal.NewFromInt(75)
	tierHalfway   = decimal.NewFromInt(50)
	tierQuarter   = decimal.NewFromInt(25)
	daysWarning   = 7
	daysReminding = 30
)

// Progress is the share of the target reached, capped at 100. A zero target
// yields zero.
func Progress(g *Goal) decimal.Decimal {
	if g.Target.IsZero() {
		return decimal.Zero
	}

	return decimal.Min(g.Current.Div(g.Target).Mul(hundred), hundred)
}

// DaysRemaining counts calendar days from today to the deadline; negative
// once the deadline has passed. Nil when the goal has no deadline.
func DaysRemaining(g *Goal, today time.Time) *int {
	if g.Deadline == nil {
		return nil
	}

	days := int(transaction.DayOf(*g.Deadline).Sub(transaction.DayOf(today)).Hours() / 24)

	return &days
}

// Alerts derives the progress alert and the deadline alert of a goal. The two
// axes are independent, so up to two alerts are returned.
func Alerts(g *Goal, today time.Time) []alert.Alert {
	var alerts []alert.Alert

	ref := g.ID.String()
	progress := Progress(g)
	pct := money.FormatPercent(progress)

	progressAlert := alert.Alert{Tag: alert.TagGoalProgress, Ref: ref, Severity: alert.SeverityLow}

	switch {
	case g.Completed:
		progressAlert.Kind = alert.KindSuccess
		progressAlert.Title = "Goal completed"
		progressAlert.Message = fmt.Sprintf("Goal '%s' completed!", g.Name)
	case progress.GreaterThanOrEqual(tierNearly):
		progressAlert.Kind = alert.KindSuccess
		progressAlert.Title = "Almost there"
		progressAlert.Message = fmt.Sprintf("Almost there! %s of '%s'.", pct, g.Name)
	case progress.GreaterThanOrEqual(tierHalfway):
		progressAlert.Kind = alert.KindInfo
		progressAlert.Title = "Halfway there"
		progressAlert.Message = fmt.Sprintf("Halfway there! %s of '%s'.", pct, g.Name)
	case progress.GreaterThanOrEqual(tierQuarter):
		progressAlert.Kind = alert.KindInfo
		progressAlert.Title = "Good progress"
		progressAlert.Message = fmt.Sprintf("Good progress: %s of '%s'.", pct, g.Name)
	}

	if progressAlert.Kind != "" {
		alerts = append(alerts, progressAlert)
	}

	days := DaysRemaining(g, today)
	if days == nil {
		return alerts
	}

	deadlineAlert := alert.Alert{Tag: alert.TagGoalDeadline, Ref: ref}

	switch d := *days; {
	case d < 0:
		deadlineAlert.Kind, deadlineAlert.Severity = alert.KindDanger, alert.SeverityHigh
		deadlineAlert.Title = "Goal overdue"
		deadlineAlert.Message = fmt.Sprintf("Goal '%s' was due %d days ago.", g.Name, -d)
	case d <= daysWarning:
		deadlineAlert.Kind, deadlineAlert.Severity = alert.KindWarning, alert.SeverityMedium
		deadlineAlert.Title = "Deadline approaching"
		deadlineAlert.Message = fmt.Sprintf("%d days left for '%s'.", d, g.Name)
	case d <= daysReminding:
		deadlineAlert.Kind, deadlineAlert.Severity = alert.KindInfo, alert.SeverityLow
		deadlineAlert.Title = "Deadline this month"
		deadlineAlert.Message = fmt.Sprintf("%d days remaining for '%s'.", d, g.Name)
	default:
		return alerts
	}

	return append(alerts, deadlineAlert)
}
