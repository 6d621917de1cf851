// Package ledgercsv reads and writes the flat ledger file.
package ledgercsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

// Header is the fixed column set, in file order.
var Header = []string{"id", "date", "description", "amount", "kind", "category"}

// aliases maps legacy column names onto the canonical ones.
var aliases = map[string]string{
	"fecha":       "date",
	"descripcion": "description",
	"monto":       "amount",
	"tipo":        "kind",
	"categoria":   "category",
	"type":        "kind",
}

var (
	ErrMissingHeader = errors.New("ledger file has no header row")
	ErrMissingColumn = errors.New("ledger header is missing a required column")
)

// RowError describes a data row that was dropped while reading.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Write emits the header followed by one row per transaction.
func Write(w io.Writer, txs []*transaction.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, t := range txs {
		if err := cw.Write(Record(t)); err != nil {
			return fmt.Errorf("writing transaction %s: %w", t.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Record renders t as a row in Header order.
func Record(t *transaction.Transaction) []string {
	return []string{
		t.ID.String(),
		t.Date.Format(time.DateOnly),
		t.Description,
		t.Amount.StringFixed(2),
		string(t.Type),
		t.Category,
	}
}

// Read parses a ledger file. Malformed rows are skipped and reported in the
// returned RowErrors; only an unreadable or headerless file is an error.
// Rows whose id is not a UUID (older files used counters) keep uuid.Nil so the
// caller can assign a fresh id.
func Read(r io.Reader) ([]*transaction.Transaction, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrMissingHeader
	}

	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		txs     []*transaction.Transaction
		skipped []RowError
	)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped = append(skipped, RowError{Line: perr.Line, Err: err})
				continue
			}

			return nil, nil, fmt.Errorf("reading ledger: %w", err)
		}

		if isBlank(rec) {
			continue
		}

		line, _ := cr.FieldPos(0)

		t, err := parseRecord(rec, cols)
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err})
			continue
		}

		txs = append(txs, t)
	}

	return txs, skipped, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))

	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if alias, ok := aliases[name]; ok {
			name = alias
		}

		cols[name] = i
	}

	for _, required := range Header {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	return cols, nil
}

func parseRecord(rec []string, cols map[string]int) (*transaction.Transaction, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(rec) {
			return "", fmt.Errorf("missing %s", name)
		}

		return strings.TrimSpace(rec[i]), nil
	}

	values := make(map[string]string, len(Header))

	for _, name := range Header {
		v, err := field(name)
		if err != nil {
			return nil, err
		}

		values[name] = v
	}

	date, err := time.Parse(time.DateOnly, values["date"])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", values["date"])
	}

	amount, err := decimal.NewFromString(values["amount"])
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", values["amount"])
	}

	if !amount.IsPositive() {
		return nil, fmt.Errorf("non-positive amount %s", amount)
	}

	typ, ok := transaction.ParseType(values["kind"])
	if !ok {
		return nil, fmt.Errorf("invalid kind %q", values["kind"])
	}

	if values["description"] == "" {
		return nil, errors.New("empty description")
	}

	id, err := uuid.Parse(values["id"])
	if err != nil {
		id = uuid.Nil
	}

	return &transaction.Transaction{
		ID:          id,
		Date:        date,
		Description: values["description"],
		Amount:      amount,
		Type:        typ,
		Category:    values["category"],
	}, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}
