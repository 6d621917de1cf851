package assistant_test

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/assistant"
	"github.com/MrJamesThe3rd/balancea/internal/logger"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

var now = time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

func sampleLedger() transaction.Ledger {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	return transaction.Ledger{
		{Date: day, Description: "June salary", Amount: decimal.NewFromInt(2000), Type: transaction.TypeIncome, Category: "Salary"},
		{Date: day, Description: "Groceries", Amount: decimal.NewFromInt(300), Type: transaction.TypeExpense, Category: "Food"},
		{Date: day, Description: "Rent", Amount: decimal.NewFromInt(900), Type: transaction.TypeExpense, Category: "Home"},
	}
}

type fixture struct {
	gen    *assistant.MockGenerator
	ledger *assistant.MockLedgerSource
	chat   *assistant.Chat
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		gen:    assistant.NewMockGenerator(ctrl),
		ledger: assistant.NewMockLedgerSource(ctrl),
	}

	a := analyzer.New(analyzer.WithClock(func() time.Time { return now }))
	f.chat = assistant.NewChat(f.gen, f.ledger, a, logger.Nop())

	return f
}

func TestChat_Commands(t *testing.T) {
	type testCase struct {
		name string
		msg  string
		want string
	}

	tests := []testCase{
		{name: "Analysis", msg: "/analysis", want: "FULL FINANCIAL ANALYSIS"},
		{name: "AnalysisPhrase", msg: "Can I get a Full Analysis please?", want: "FULL FINANCIAL ANALYSIS"},
		{name: "Alerts", msg: "  /ALERTS ", want: "ACTIVE ALERTS"},
		{name: "Tips", msg: "give me tips", want: "PERSONALISED TIPS"},
		{name: "Summary", msg: "/summary", want: "QUICK SUMMARY"},
		{name: "Help", msg: "/commands", want: "/tips - personalised tips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.ledger.EXPECT().Snapshot(gomock.Any()).Return(sampleLedger(), nil)

			got := f.chat.Reply(context.Background(), tt.msg)
			assert.True(t, got.OK)
			assert.Equal(t, assistant.SourceCommand, got.Source)
			assert.Contains(t, got.Text, tt.want)
			assert.Empty(t, f.chat.History())
		})
	}
}

func TestChat_Summary(t *testing.T) {
	f := newFixture(t)
	f.ledger.EXPECT().Snapshot(gomock.Any()).Return(sampleLedger(), nil)

	got := f.chat.Reply(context.Background(), "/summary")
	assert.Contains(t, got.Text, "Balance: $800.00")
	assert.Contains(t, got.Text, "Savings rate: 40.0%")
	assert.Contains(t, got.Text, "Trend: positive")
}

func TestChat_ModelReply(t *testing.T) {
	f := newFixture(t)
	f.ledger.EXPECT().Snapshot(gomock.Any()).Return(sampleLedger(), nil).Times(2)
	f.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
		assert.Contains(t, prompt, "Balance: $800.00")
		assert.Contains(t, prompt, "Transactions: 3")
		assert.Contains(t, prompt, "(new conversation)")
		assert.Contains(t, prompt, "User: How am I doing?")
		return "You are doing fine.", nil
	})
	f.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
		assert.Contains(t, prompt, "Assistant: You are doing fine.")
		assert.NotContains(t, prompt, "(new conversation)")
		return "Rent is your largest expense.", nil
	})

	got := f.chat.Reply(context.Background(), "How am I doing?")
	require.True(t, got.OK)
	assert.Equal(t, assistant.SourceModel, got.Source)
	assert.Equal(t, "You are doing fine.", got.Text)

	got = f.chat.Reply(context.Background(), "Where does my money go?")
	require.True(t, got.OK)
	assert.Len(t, f.chat.History(), 4)
}

func TestChat_PromptOrdersCategoriesBySpend(t *testing.T) {
	f := newFixture(t)
	f.ledger.EXPECT().Snapshot(gomock.Any()).Return(sampleLedger(), nil)
	f.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
		assert.Regexp(t, `(?s)Home: \$900\.00 \(75\.0%\).*Food: \$300\.00 \(25\.0%\)`, prompt)
		return "ok", nil
	})

	f.chat.Reply(context.Background(), "hi")
}

func TestChat_HistoryWindow(t *testing.T) {
	f := newFixture(t)
	f.ledger.EXPECT().Snapshot(gomock.Any()).Return(sampleLedger(), nil).AnyTimes()

	var last string

	f.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
		last = prompt
		return "answer", nil
	}).Times(4)

	for i := range 4 {
		f.chat.Reply(context.Background(), fmt.Sprintf("question %d", i))
	}

	assert.NotContains(t, last, "User: question 0")
	assert.Contains(t, last, "User: question 1")
	assert.Contains(t, last, "User: question 2")
	assert.Contains(t, last, "User: question 3")

	f.chat.ClearHistory()
	assert.Empty(t, f.chat.History())
}

func TestChat_Failures(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantSource assistant.Source
		wantHint   string
		wantErr    string
	}

	tests := []testCase{
		{
			name:       "Unavailable",
			err:        fmt.Errorf("sending request: %w", syscall.ECONNREFUSED),
			wantSource: assistant.SourceUnavailable,
			wantHint:   assistant.HintUnavailable,
		},
		{
			name:       "Timeout",
			err:        fmt.Errorf("sending request: %w", context.DeadlineExceeded),
			wantSource: assistant.SourceTimeout,
			wantHint:   assistant.HintTimeout,
		},
		{
			name:       "Status",
			err:        &assistant.StatusError{StatusCode: 500, Body: "boom"},
			wantSource: assistant.SourceError,
			wantErr:    "model server error (status 500)",
		},
		{
			name:       "Other",
			err:        errors.New("weird"),
			wantSource: assistant.SourceError,
			wantErr:    "weird",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.ledger.EXPECT().Snapshot(gomock.Any()).Return(sampleLedger(), nil)
			f.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", tt.err)
			f.gen.EXPECT().Model().Return("llama3.2").AnyTimes()

			got := f.chat.Reply(context.Background(), "hello")
			assert.False(t, got.OK)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantHint, got.Hint)

			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, got.Err)
			}

			assert.Empty(t, f.chat.History())
		})
	}
}

func TestChat_LedgerError(t *testing.T) {
	f := newFixture(t)
	f.ledger.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.New("disk gone"))

	got := f.chat.Reply(context.Background(), "/summary")
	assert.False(t, got.OK)
	assert.Equal(t, assistant.SourceError, got.Source)
}

func TestChat_Health(t *testing.T) {
	f := newFixture(t)
	f.gen.EXPECT().Model().Return("llama3.2").AnyTimes()

	f.gen.EXPECT().Health(gomock.Any()).Return(nil)
	got := f.chat.Health(context.Background())
	assert.True(t, got.OK)
	assert.Contains(t, got.Text, "llama3.2")

	f.gen.EXPECT().Health(gomock.Any()).Return(errors.New("dial tcp: refused"))
	got = f.chat.Health(context.Background())
	assert.False(t, got.OK)
	assert.Equal(t, assistant.SourceUnavailable, got.Source)
	assert.Equal(t, assistant.HintUnavailable, got.Hint)
}
