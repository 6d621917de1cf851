package goal_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/balancea/internal/goal"
	goalhttp "github.com/MrJamesThe3rd/balancea/internal/http/goal"
)

var fixedNow = time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

func newRouter(t *testing.T, setupMock func(m *goal.MockRepository)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := goal.NewMockRepository(ctrl)

	if setupMock != nil {
		setupMock(repo)
	}

	svc := goal.NewService(repo, goal.WithClock(func() time.Time { return fixedNow }))

	r := chi.NewRouter()
	goalhttp.NewHandler(svc).Routes(r)

	return r
}

func laptop(id uuid.UUID, current int64) *goal.Goal {
	return &goal.Goal{
		ID:      id,
		Name:    "Laptop",
		Target:  decimal.NewFromInt(1000),
		Current: decimal.NewFromInt(current),
		Created: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(m *goal.MockRepository)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name: "Created",
			body: `{"name":"Laptop","target":"1000","deadline":"2024-12-31"}`,
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().CreateGoal(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"target":"1000.00"`,
		},
		{
			name:       "DeadlineInPast",
			body:       `{"name":"Laptop","target":"1000","deadline":"2024-01-01"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "deadline",
		},
		{
			name:       "UnparsableDeadline",
			body:       `{"name":"Laptop","target":"1000","deadline":"soon"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid deadline",
		},
		{
			name:       "MissingName",
			body:       `{"target":"1000"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, tt.setupMock)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_Contribute(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	type testCase struct {
		name          string
		body          string
		setupMock     func(m *goal.MockRepository)
		wantStatus    int
		wantCurrent   string
		wantCompleted bool
	}

	tests := []testCase{
		{
			name: "CompletesGoal",
			body: `{"amount":"250"}`,
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().GetGoal(gomock.Any(), id).Return(laptop(id, 800), nil)
				m.EXPECT().UpdateGoal(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus:    http.StatusOK,
			wantCurrent:   "1050.00",
			wantCompleted: true,
		},
		{
			name: "Withdrawal",
			body: `{"amount":"-100"}`,
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().GetGoal(gomock.Any(), id).Return(laptop(id, 300), nil)
				m.EXPECT().UpdateGoal(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus:  http.StatusOK,
			wantCurrent: "200.00",
		},
		{
			name: "OverdrawnWithdrawal",
			body: `{"amount":"-500"}`,
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().GetGoal(gomock.Any(), id).Return(laptop(id, 300), nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ZeroAmount",
			body:       `{"amount":"0"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "UnknownGoal",
			body: `{"amount":"10"}`,
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().GetGoal(gomock.Any(), id).Return(nil, goal.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, tt.setupMock)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/"+id.String()+"/contributions", strings.NewReader(tt.body))
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var body struct {
				Current   string `json:"current"`
				Completed bool   `json:"completed"`
				Progress  string `json:"progress"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCurrent, body.Current)
			assert.Equal(t, tt.wantCompleted, body.Completed)
		})
	}
}

func TestHandler_ListByStatus(t *testing.T) {
	done := laptop(uuid.Must(uuid.NewV7()), 1000)
	done.Completed = true

	open := laptop(uuid.Must(uuid.NewV7()), 100)

	type testCase struct {
		name       string
		query      string
		setupMock  func(m *goal.MockRepository)
		wantStatus int
		wantLen    int
	}

	tests := []testCase{
		{
			name:  "All",
			query: "",
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().ListGoals(gomock.Any()).Return([]*goal.Goal{done, open}, nil)
			},
			wantStatus: http.StatusOK,
			wantLen:    2,
		},
		{
			name:  "Completed",
			query: "?status=completed",
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().ListGoals(gomock.Any()).Return([]*goal.Goal{done, open}, nil)
			},
			wantStatus: http.StatusOK,
			wantLen:    1,
		},
		{
			name:       "UnknownStatus",
			query:      "?status=paused",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, tt.setupMock)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var body []map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body, tt.wantLen)
		})
	}
}
