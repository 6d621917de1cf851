package transaction

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrJamesThe3rd/balancea/internal/money"
)

var (
	ErrNotFound = errors.New("transaction not found")

	ErrInvalidType         = errors.New("type must be income or expense")
	ErrDescriptionTooShort = errors.New("description must have at least 3 characters")
	ErrDescriptionTooLong  = errors.New("description cannot exceed 200 characters")
	ErrDescriptionChars    = errors.New("description contains invalid characters")
	ErrDateMissing         = errors.New("date is required")
	ErrDateTooOld          = errors.New("date cannot be before 1900")
	ErrDateTooFar          = errors.New("date cannot be more than a year in the future")
	ErrUnknownCategory     = errors.New("category does not exist for this type")
)

const (
	minDescriptionLen = 3
	maxDescriptionLen = 200
	maxDaysAhead      = 365
)

var (
	descriptionPattern = regexp.MustCompile(`^[\p{L}\p{N}_\s.,()\-]+$`)
	descriptionStrip   = regexp.MustCompile(`[^\p{L}\p{N}_\s.,()\-]+`)
	earliestDate       = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// ValidationError reports which field failed and why.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CategoryChecker reports whether a category belongs to the taxonomy of a type.
type CategoryChecker interface {
	Valid(t Type, name string) bool
}

// Validate normalises p in place (trimmed description, date at midnight UTC)
// and checks it against now. A nil checker skips the category check.
func (p *CreateParams) Validate(now time.Time, categories CategoryChecker) error {
	if p.Type != TypeIncome && p.Type != TypeExpense {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}

	if err := money.Validate(p.Amount); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}

	p.Amount = money.Cents(p.Amount)

	desc, err := validateDescription(p.Description)
	if err != nil {
		return &ValidationError{Field: "description", Err: err}
	}

	p.Description = desc

	date, err := validateDate(p.Date, now)
	if err != nil {
		return &ValidationError{Field: "date", Err: err}
	}

	p.Date = date

	p.Category = strings.TrimSpace(p.Category)
	if categories != nil && !categories.Valid(p.Type, p.Category) {
		return &ValidationError{Field: "category", Err: fmt.Errorf("%w: %q", ErrUnknownCategory, p.Category)}
	}

	return nil
}

func validateDescription(s string) (string, error) {
	s = strings.TrimSpace(s)

	n := utf8.RuneCountInString(s)
	if n < minDescriptionLen {
		return "", ErrDescriptionTooShort
	}

	if n > maxDescriptionLen {
		return "", ErrDescriptionTooLong
	}

	if !descriptionPattern.MatchString(s) {
		return "", ErrDescriptionChars
	}

	return s, nil
}

func validateDate(d, now time.Time) (time.Time, error) {
	if d.IsZero() {
		return time.Time{}, ErrDateMissing
	}

	d = DayOf(d)

	if d.Before(earliestDate) {
		return time.Time{}, ErrDateTooOld
	}

	if d.After(DayOf(now).AddDate(0, 0, maxDaysAhead)) {
		return time.Time{}, ErrDateTooFar
	}

	return d, nil
}

// CleanDescription drops the characters a description may not contain and
// collapses runs of whitespace. Bank exports are full of both.
func CleanDescription(s string) string {
	return strings.Join(strings.Fields(descriptionStrip.ReplaceAllString(s, " ")), " ")
}
