// Package cgd reads the CSV exports of Caixa Geral de Depósitos: semicolon
// separated, day-first dates and European amounts, preceded by a free-form
// preamble. Input must already be UTF-8.
package cgd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

const dateLayout = "02-01-2006"

var ErrUnknownLayout = errors.New("no matching CGD layout: expected the columns of a conta, extrato or cartão export")

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns one entry per movement row. Footer and summary rows, which
// carry no date or amount, are skipped.
func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	l, cols, header, ok := findHeader(rows)
	if !ok {
		return nil, ErrUnknownLayout
	}

	var out []transaction.CreateParams

	for i, row := range rows[header+1:] {
		date, ok := parseDate(cell(row, cols[l.date]))
		if !ok {
			continue
		}

		desc := cell(row, cols[l.desc])
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", header+i+2)
		}

		amount, typ, ok := l.amountOf(row, cols)
		if !ok {
			continue
		}

		out = append(out, transaction.CreateParams{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Type:        typ,
		})
	}

	return out, nil
}

// findHeader returns the first row whose cells cover every column of a layout.
func findHeader(rows [][]string) (layout, map[string]int, int, bool) {
	for i, row := range rows {
		cols := make(map[string]int, len(row))

		for j, c := range row {
			if name := strings.TrimSpace(c); name != "" {
				cols[name] = j
			}
		}

		for _, l := range layouts {
			if hasAll(cols, l.columns()) {
				return l, cols, i, true
			}
		}
	}

	return layout{}, nil, 0, false
}

func hasAll(cols map[string]int, names []string) bool {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return false
		}
	}

	return true
}

func (l layout) amountOf(row []string, cols map[string]int) (decimal.Decimal, transaction.Type, bool) {
	if l.amounts == signedColumn {
		d, ok := parseAmount(cell(row, cols[l.amount]))
		if !ok {
			return decimal.Zero, "", false
		}

		if d.IsNegative() {
			return d.Neg(), transaction.TypeExpense, true
		}

		return d, transaction.TypeIncome, true
	}

	if d, ok := parseAmount(cell(row, cols[l.debit])); ok {
		return d.Abs(), transaction.TypeExpense, true
	}

	if d, ok := parseAmount(cell(row, cols[l.credit])); ok {
		return d.Abs(), transaction.TypeIncome, true
	}

	return decimal.Zero, "", false
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(dateLayout, s)

	return t, err == nil
}

// parseAmount reads "1.234,56" style numbers. Zero counts as absent.
func parseAmount(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}
