package importer

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/balancea/internal/ledgercsv"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

// ledgerParser reads files written by the ledger store or the exporter.
// Malformed rows are logged and dropped, like on a regular load.
type ledgerParser struct {
	log zerolog.Logger
}

func (p ledgerParser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	txs, rowErrs, err := ledgercsv.Read(r)
	if err != nil {
		return nil, err
	}

	for _, re := range rowErrs {
		p.log.Warn().Int("line", re.Line).Err(re.Err).Msg("skipping malformed import row")
	}

	out := make([]transaction.CreateParams, 0, len(txs))
	for _, t := range txs {
		out = append(out, transaction.CreateParams{
			Date:        t.Date,
			Description: t.Description,
			Amount:      t.Amount,
			Type:        t.Type,
			Category:    t.Category,
		})
	}

	return out, nil
}
