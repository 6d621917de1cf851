package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/balancea/internal/category"
	"github.com/MrJamesThe3rd/balancea/internal/encoding"
	"github.com/MrJamesThe3rd/balancea/internal/importer/cgd"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type Categorizer interface {
	Suggest(ctx context.Context, description string) (string, error)
}

type Ledger interface {
	ImportBatch(ctx context.Context, params []transaction.CreateParams) (*transaction.ImportResult, error)
}

type Service struct {
	parsers     map[Format]Parser
	ledger      Ledger
	categorizer Categorizer
	log         zerolog.Logger
}

// NewService wires the built-in parsers. categorizer may be nil, in which case
// uncategorised rows get the fallback category.
func NewService(ledger Ledger, categorizer Categorizer, log zerolog.Logger) *Service {
	return &Service{
		parsers: map[Format]Parser{
			FormatLedger: ledgerParser{log: log},
			FormatCGD:    cgd.NewParser(),
		},
		ledger:      ledger,
		categorizer: categorizer,
		log:         log,
	}
}

// Parse normalises the input to UTF-8, parses it and fills in categories
// without touching the ledger.
func (s *Service) Parse(ctx context.Context, format Format, r io.Reader) ([]transaction.CreateParams, error) {
	p, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	utf8r, charset, err := encoding.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	s.log.Debug().Str("format", string(format)).Str("charset", charset).Msg("parsing import")

	params, err := p.Parse(utf8r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s file: %w", format, err)
	}

	for i := range params {
		params[i].Description = transaction.CleanDescription(params[i].Description)

		if params[i].Category == "" {
			params[i].Category = s.categorize(ctx, params[i])
		}
	}

	return params, nil
}

// Import parses the input and hands it to the ledger, which skips duplicates
// and reports invalid rows.
func (s *Service) Import(ctx context.Context, format Format, r io.Reader) (*transaction.ImportResult, error) {
	params, err := s.Parse(ctx, format, r)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.ImportBatch(ctx, params)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("format", string(format)).
		Int("imported", len(res.Imported)).
		Int("skipped", len(res.Skipped)).
		Int("invalid", len(res.Invalid)).
		Msg("import finished")

	return res, nil
}

func (s *Service) categorize(ctx context.Context, p transaction.CreateParams) string {
	if s.categorizer != nil {
		cat, err := s.categorizer.Suggest(ctx, p.Description)
		if err != nil {
			s.log.Warn().Err(err).Str("description", p.Description).Msg("category suggestion failed")
		} else if cat != "" {
			return cat
		}
	}

	return category.Fallback(p.Type)
}
