// Package importer turns external CSV files into ledger entries.
package importer

import (
	"errors"
	"io"

	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

var ErrUnknownFormat = errors.New("unknown import format")

type Format string

const (
	// FormatLedger is the application's own transactions file.
	FormatLedger Format = "ledger"
	// FormatCGD is a Caixa Geral de Depósitos bank export.
	FormatCGD Format = "cgd"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatLedger, FormatCGD}
}

// Parser reads UTF-8 input into entries that still need validation.
type Parser interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
