// Package alert defines the transient notices produced by the analyzer and
// the budget and goal trackers.
package alert

type Kind string

const (
	KindDanger  Kind = "danger"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindTip     Kind = "tip"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Tags group alerts by the condition that raised them.
const (
	TagBalance        = "balance"
	TagUnusualExpense = "unusual_expense"
	TagConcentration  = "concentration"
	TagTrend          = "trend"
	TagImprovement    = "improvement"
	TagRecommendation = "recommendation"
	TagCongratulation = "congratulation"
	TagOpportunity    = "opportunity"
	TagBudget         = "budget"
	TagGoalProgress   = "goal_progress"
	TagGoalDeadline   = "goal_deadline"
)

// Alert is regenerated on every analysis pass and never persisted.
type Alert struct {
	Kind     Kind     `json:"kind"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Tag      string   `json:"tag"`
	// Ref names the entity the alert is about, if any.
	Ref string `json:"ref,omitempty"`
}

// Count returns how many alerts have the given kind.
func Count(alerts []Alert, kind Kind) int {
	n := 0

	for _, a := range alerts {
		if a.Kind == kind {
			n++
		}
	}

	return n
}

// WithTag returns the alerts carrying tag, preserving order.
func WithTag(alerts []Alert, tag string) []Alert {
	var out []Alert

	for _, a := range alerts {
		if a.Tag == tag {
			out = append(out, a)
		}
	}

	return out
}
