package applications

import (
	"time"
)

// Severity enum untuk findings
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityAdvisory Severity = "advisory"
)

// Finding is one named rule evaluation.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Passed   bool     `json:"passed"`
	Detail   string   `json:"detail,omitempty"`
}

// ValidationResult keeps findings in rule declaration order.
type ValidationResult struct {
	Findings []Finding `json:"findings"`
}

// Failures returns every failed finding, declaration order preserved.
func (v ValidationResult) Failures() []Finding {
	var out []Finding
	for _, f := range v.Findings {
		if !f.Passed {
			out = append(out, f)
		}
	}
	return out
}

// BlockingFailures returns failed blocking findings only.
func (v ValidationResult) BlockingFailures() []Finding {
	var out []Finding
	for _, f := range v.Findings {
		if !f.Passed && f.Severity == SeverityBlocking {
			out = append(out, f)
		}
	}
	return out
}

func (v ValidationResult) HasBlockingFailure() bool {
	return len(v.BlockingFailures()) > 0
}

// Label enum
type Label string

const (
	LabelApprove Label = "approve"
	LabelReview  Label = "review"
	LabelReject  Label = "reject"
)

// ScoreResult holds the eligibility probability and its discrete label.
// Probability is nil when the scorer could not produce one; the label is then
// always LabelReview.
type ScoreResult struct {
	Probability *float64 `json:"probability"`
	Label       Label    `json:"label"`
}

// Recommendation is an ordered list of next steps, most urgent first.
type Recommendation []string

// Status enum untuk Decision
type Status string

const (
	StatusApproved   Status = "Approved"
	StatusInReview   Status = "In-Review"
	StatusRejected   Status = "Rejected"
	StatusIncomplete Status = "Rejected/Incomplete"
	StatusError      Status = "Error"
)

// Decision is one recorded pipeline run. Decisions are append-only: repeated
// runs add rows, they never overwrite earlier ones.
type Decision struct {
	ID              string           `json:"id"`
	ApplicationID   ApplicationID    `json:"application_id"`
	Status          Status           `json:"status"`
	Validation      ValidationResult `json:"validation"`
	Score           *ScoreResult     `json:"score,omitempty"`
	Recommendations Recommendation   `json:"recommendations"`
	Rationale       string           `json:"rationale"`
	CreatedAt       time.Time        `json:"created_at"`
}
