// Package assistant wraps a local language model with the user's financial
// context and answers a few commands without calling the model at all.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

//go:generate mockgen -source=assistant.go -destination=generator_mock.go -package=assistant
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Health(ctx context.Context) error
	Model() string
}

type LedgerSource interface {
	Snapshot(ctx context.Context) (transaction.Ledger, error)
}

// Source tells where a reply came from.
type Source string

const (
	SourceCommand     Source = "command"
	SourceModel       Source = "model"
	SourceError       Source = "error"
	SourceTimeout     Source = "timeout"
	SourceUnavailable Source = "unavailable"
)

const (
	HintUnavailable = "start the server with `ollama serve`"
	HintTimeout     = "the request took too long, try again"
)

type Reply struct {
	OK     bool   `json:"ok"`
	Text   string `json:"text,omitempty"`
	Source Source `json:"source"`
	Err    string `json:"error,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

const historyWindow = 4

// Chat is one conversation. It is safe for concurrent use, though replies are
// appended to the history in completion order.
type Chat struct {
	gen      Generator
	ledger   LedgerSource
	analyzer *analyzer.Analyzer
	log      zerolog.Logger

	mu      sync.Mutex
	history []Message
}

func NewChat(gen Generator, ledger LedgerSource, a *analyzer.Analyzer, log zerolog.Logger) *Chat {
	return &Chat{gen: gen, ledger: ledger, analyzer: a, log: log}
}

// Reply answers msg. Commands are handled locally; anything else goes to the
// model with the financial context. Failures come back as a Reply, not an error.
func (c *Chat) Reply(ctx context.Context, msg string) Reply {
	l, err := c.ledger.Snapshot(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("loading ledger for chat")
		return Reply{Source: SourceError, Err: err.Error()}
	}

	if cmd, ok := detectCommand(msg); ok {
		return Reply{OK: true, Source: SourceCommand, Text: c.runCommand(cmd, l)}
	}

	prompt := c.prompt(l, msg)

	text, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.log.Warn().Err(err).Str("model", c.gen.Model()).Msg("chat generation failed")
		return failure(err)
	}

	c.mu.Lock()
	c.history = append(c.history, Message{Role: RoleUser, Text: msg}, Message{Role: RoleAssistant, Text: text})
	c.mu.Unlock()

	return Reply{OK: true, Source: SourceModel, Text: text}
}

// Health reports whether the model server is reachable, as a Reply so the
// caller can show the hint.
func (c *Chat) Health(ctx context.Context) Reply {
	if err := c.gen.Health(ctx); err != nil {
		r := failure(err)
		if r.Source == SourceError || r.Source == SourceTimeout {
			r.Source, r.Hint = SourceUnavailable, HintUnavailable
		}

		return r
	}

	return Reply{OK: true, Source: SourceModel, Text: "connected, model " + c.gen.Model()}
}

func (c *Chat) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Message(nil), c.history...)
}

func (c *Chat) ClearHistory() {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
}

func failure(err error) Reply {
	var statusErr *StatusError

	switch {
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return Reply{Source: SourceTimeout, Err: err.Error(), Hint: HintTimeout}
	case errors.Is(err, syscall.ECONNREFUSED):
		return Reply{Source: SourceUnavailable, Err: err.Error(), Hint: HintUnavailable}
	case errors.As(err, &statusErr):
		return Reply{Source: SourceError, Err: fmt.Sprintf("model server error (status %d)", statusErr.StatusCode)}
	default:
		return Reply{Source: SourceError, Err: err.Error()}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// prompt renders the financial context, the recent history and the question.
func (c *Chat) prompt(l transaction.Ledger, msg string) string {
	var b strings.Builder

	b.WriteString(c.context(l))
	b.WriteString("\nRECENT HISTORY:\n")

	c.mu.Lock()
	recent := c.history[max(0, len(c.history)-historyWindow):]

	if len(recent) == 0 {
		b.WriteString("(new conversation)\n")
	}

	for _, m := range recent {
		who := "User"
		if m.Role == RoleAssistant {
			who = "Assistant"
		}

		fmt.Fprintf(&b, "%s: %s\n", who, m.Text)
	}
	c.mu.Unlock()

	fmt.Fprintf(&b, "\nUser: %s\n\nAssistant (answer helpfully and specifically, based on the data):", msg)

	return b.String()
}

const instructions = `
INSTRUCTIONS:
- Answer in clear, concise and friendly English
- Use the data above to give specific answers, quoting exact figures
- Give practical, actionable advice
- If the data is not enough, say which data you need
- Keep answers short (3-4 paragraphs at most)
- If you spot problems in the finances, be empathetic but honest
`

func (c *Chat) context(l transaction.Ledger) string {
	var b strings.Builder

	health := c.analyzer.HealthSummary(l)
	alerts := c.analyzer.AnalyzeAll(l)

	b.WriteString("You are 'Balancea AI', a friendly personal finance assistant.\n\nUSER FINANCIAL DATA:\n")
	writeTotals(&b, l, health)
	fmt.Fprintf(&b, "Transactions: %d\n\nEXPENSES BY CATEGORY:\n", l.Len())
	writeDistribution(&b, l)

	if len(alerts) > 0 {
		fmt.Fprintf(&b, "\nACTIVE ALERTS (%d):\n", len(alerts))

		for _, a := range alerts[:min(3, len(alerts))] {
			fmt.Fprintf(&b, "- %s: %s\n", a.Title, a.Message)
		}
	}

	b.WriteString(instructions)

	return b.String()
}

func alertIcon(k alert.Kind) string {
	switch k {
	case alert.KindDanger:
		return "[!]"
	case alert.KindWarning:
		return "[~]"
	case alert.KindSuccess:
		return "[+]"
	case alert.KindTip:
		return "[*]"
	default:
		return "[i]"
	}
}
