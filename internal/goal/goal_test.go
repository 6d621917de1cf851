package goal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/goal"
)

var today = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func dayOffset(days int) *time.Time {
	return new(time.Date(2024, 6, 15+days, 0, 0, 0, 0, time.UTC))
}

func TestProgress(t *testing.T) {
	type testCase struct {
		name    string
		target  string
		current string
		want    string
	}

	tests := []testCase{
		{name: "Partial", target: "1000", current: "250", want: "25"},
		{name: "CappedAt100", target: "100", current: "150", want: "100"},
		{name: "ZeroTarget", target: "0", current: "50", want: "0"},
		{name: "Nothing", target: "500", current: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &goal.Goal{
				Target:  decimal.RequireFromString(tt.target),
				Current: decimal.RequireFromString(tt.current),
			}

			assert.Equal(t, tt.want, goal.Progress(g).String())
		})
	}
}

func TestDaysRemaining(t *testing.T) {
	assert.Nil(t, goal.DaysRemaining(&goal.Goal{}, today))

	days := goal.DaysRemaining(&goal.Goal{Deadline: dayOffset(0)}, today)
	require.NotNil(t, days)
	assert.Equal(t, 0, *days)

	days = goal.DaysRemaining(&goal.Goal{Deadline: dayOffset(-3)}, today)
	require.NotNil(t, days)
	assert.Equal(t, -3, *days)
}

func TestAlerts(t *testing.T) {
	type want struct {
		kind alert.Kind
		tag  string
	}

	type testCase struct {
		name string
		goal goal.Goal
		want []want
	}

	tests := []testCase{
		{
			name: "CompletedNoDeadline",
			goal: goal.Goal{Name: "Laptop", Target: decimal.NewFromInt(100), Current: decimal.NewFromInt(100), Completed: true},
			want: []want{{alert.KindSuccess, alert.TagGoalProgress}},
		},
		{
			name: "AlmostThereDueSoon",
			goal: goal.Goal{Name: "Trip", Target: decimal.NewFromInt(100), Current: decimal.NewFromInt(80), Deadline: dayOffset(5)},
			want: []want{{alert.KindSuccess, alert.TagGoalProgress}, {alert.KindWarning, alert.TagGoalDeadline}},
		},
		{
			name: "HalfwayThisMonth",
			goal: goal.Goal{Name: "Bike", Target: decimal.NewFromInt(100), Current: decimal.NewFromInt(50), Deadline: dayOffset(20)},
			want: []want{{alert.KindInfo, alert.TagGoalProgress}, {alert.KindInfo, alert.TagGoalDeadline}},
		},
		{
			name: "LowProgressOverdue",
			goal: goal.Goal{Name: "Car", Target: decimal.NewFromInt(100), Current: decimal.NewFromInt(10), Deadline: dayOffset(-2)},
			want: []want{{alert.KindDanger, alert.TagGoalDeadline}},
		},
		{
			name: "DueTodayWarns",
			goal: goal.Goal{Name: "Rent", Target: decimal.NewFromInt(100), Current: decimal.NewFromInt(30), Deadline: dayOffset(0)},
			want: []want{{alert.KindInfo, alert.TagGoalProgress}, {alert.KindWarning, alert.TagGoalDeadline}},
		},
		{
			name: "FarDeadlineQuiet",
			goal: goal.Goal{Name: "House", Target: decimal.NewFromInt(100), Current: decimal.NewFromInt(5), Deadline: dayOffset(90)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := goal.Alerts(&tt.goal, today)
			require.Len(t, got, len(tt.want))

			for i, w := range tt.want {
				assert.Equal(t, w.kind, got[i].Kind)
				assert.Equal(t, w.tag, got[i].Tag)
				assert.Equal(t, tt.goal.ID.String(), got[i].Ref)
				assert.Contains(t, got[i].Message, tt.goal.Name)
			}
		})
	}
}

func TestAlerts_OverdueMessage(t *testing.T) {
	g := &goal.Goal{Name: "Car", Target: decimal.NewFromInt(100), Deadline: dayOffset(-4)}

	got := goal.Alerts(g, today)
	require.Len(t, got, 1)
	assert.Equal(t, "Goal 'Car' was due 4 days ago.", got[0].Message)
	assert.Equal(t, alert.SeverityHigh, got[0].Severity)
}
