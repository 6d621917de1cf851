package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

var fixedNow = time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type staticCategories map[transaction.Type][]string

func (c staticCategories) Valid(t transaction.Type, name string) bool {
	for _, n := range c[t] {
		if n == name {
			return true
		}
	}

	return false
}

func TestService_Create(t *testing.T) {
	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: transaction.CreateParams{
					Amount:      decimal.RequireFromString("10.50"),
					Type:        transaction.TypeExpense,
					Description: "  Test Transaction ",
					Category:    "Food",
					Date:        time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC),
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "RepoError",
			args: args{
				params: transaction.CreateParams{
					Amount:      decimal.NewFromInt(5),
					Type:        transaction.TypeIncome,
					Description: "Salary",
					Category:    "Salary",
					Date:        fixedNow,
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
		{
			name: "UnknownCategory",
			args: args{
				params: transaction.CreateParams{
					Amount:      decimal.NewFromInt(5),
					Type:        transaction.TypeIncome,
					Description: "Salary",
					Category:    "Food",
					Date:        fixedNow,
				},
			},
			wantErr: transaction.ErrUnknownCategory,
		},
		{
			name: "ZeroAmount",
			args: args{
				params: transaction.CreateParams{
					Amount:      decimal.Zero,
					Type:        transaction.TypeExpense,
					Description: "Nothing",
					Category:    "Food",
					Date:        fixedNow,
				},
			},
			wantErr: errors.New("amount"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo,
				transaction.WithClock(clock),
				transaction.WithCategoryChecker(staticCategories{
					transaction.TypeIncome:  {"Salary"},
					transaction.TypeExpense: {"Food"},
				}),
			)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, transaction.ErrUnknownCategory) {
					assert.ErrorIs(t, err, transaction.ErrUnknownCategory)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, "Test Transaction", got.Description)
			assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got.Date)
			assert.Equal(t, "10.5", got.Amount.String())
		})
	}
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo, transaction.WithClock(clock))

	id := uuid.New()
	stored := &transaction.Transaction{
		ID:          id,
		Amount:      decimal.NewFromInt(20),
		Type:        transaction.TypeExpense,
		Description: "Groceries",
		Category:    "Food",
		Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	repo.EXPECT().GetTransaction(gomock.Any(), id).Return(stored, nil)
	repo.EXPECT().UpdateTransaction(gomock.Any(), stored).Return(nil)

	got, err := svc.Update(context.Background(), id, transaction.CreateParams{
		Amount:      decimal.NewFromInt(25),
		Type:        transaction.TypeExpense,
		Description: "Groceries and bread",
		Category:    "Food",
		Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Groceries and bread", got.Description)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(25)))
}

func TestService_Update_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo, transaction.WithClock(clock))

	id := uuid.New()
	repo.EXPECT().GetTransaction(gomock.Any(), id).Return(nil, transaction.ErrNotFound)

	_, err := svc.Update(context.Background(), id, transaction.CreateParams{
		Amount:      decimal.NewFromInt(25),
		Type:        transaction.TypeExpense,
		Description: "Groceries",
		Date:        fixedNow,
	})
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestService_List(t *testing.T) {
	type args struct {
		filter transaction.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return([]*transaction.Transaction{
						{ID: uuid.New()},
						{ID: uuid.New()},
					}, nil)
			},
			wantLen: 2,
		},
		{
			name: "RepoError",
			args: args{filter: transaction.ListFilter{Category: "Food"}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{Category: "Food"}).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := transaction.NewService(repo)
			got, err := svc.List(context.Background(), tt.args.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{Query: "coffee"}).
		Return([]*transaction.Transaction{{ID: uuid.New()}}, nil)

	got, err := svc.Search(context.Background(), "  coffee ")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo, transaction.WithClock(clock))

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		{
			Amount:      decimal.NewFromInt(10),
			Type:        transaction.TypeExpense,
			Description: "Coffee",
			Category:    "Food",
			Date:        date,
		},
	}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Len(1)).Return(nil, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Invalid)
}

func TestService_ImportBatch_SkipsDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo, transaction.WithClock(clock))

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		{
			Amount:      decimal.NewFromInt(10),
			Type:        transaction.TypeExpense,
			Description: "Coffee",
			Date:        date,
		},
		{
			Amount:      decimal.NewFromInt(20),
			Type:        transaction.TypeExpense,
			Description: "Lunch",
			Date:        date,
		},
		{
			Amount:      decimal.NewFromInt(20),
			Type:        transaction.TypeExpense,
			Description: "x",
			Date:        date,
		},
	}

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		Amount:      decimal.RequireFromString("10.00"),
		Type:        transaction.TypeExpense,
		Description: "COFFEE",
		Date:        date,
	}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Len(2)).Return([]*transaction.Transaction{existing}, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)
	assert.Equal(t, "Lunch", result.Imported[0].Description)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, existing, result.Skipped[0].Existing)
	require.Len(t, result.Invalid, 1)
	assert.ErrorIs(t, result.Invalid[0].Err, transaction.ErrDescriptionTooShort)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	result, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{})
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Skipped)
}

func TestService_ImportBatch_BeginError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo, transaction.WithClock(clock))

	repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("locked"))

	_, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{{
		Amount:      decimal.NewFromInt(1),
		Type:        transaction.TypeIncome,
		Description: "Refund",
		Date:        fixedNow,
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin import")
}

func TestService_RemoveDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	first := &transaction.Transaction{ID: uuid.New(), Date: date, Amount: decimal.NewFromInt(5), Type: transaction.TypeExpense, Description: "Bus"}
	second := &transaction.Transaction{ID: uuid.New(), Date: date, Amount: decimal.NewFromInt(5), Type: transaction.TypeExpense, Description: "bus"}
	other := &transaction.Transaction{ID: uuid.New(), Date: date, Amount: decimal.NewFromInt(5), Type: transaction.TypeIncome, Description: "Bus"}

	repo.EXPECT().ListTransactions(gomock.Any(), transaction.ListFilter{}).
		Return([]*transaction.Transaction{first, second, other}, nil)
	repo.EXPECT().DeleteTransactions(gomock.Any(), []uuid.UUID{second.ID}).Return(nil)

	n, err := svc.RemoveDuplicates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_RemoveDuplicates_None(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().ListTransactions(gomock.Any(), transaction.ListFilter{}).Return(nil, nil)

	n, err := svc.RemoveDuplicates(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
