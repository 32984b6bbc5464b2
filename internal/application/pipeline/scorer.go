package pipeline

import (
	"math"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

// Thresholds map a probability onto a discrete label.
// p >= Approve -> approve, p <= Reject -> reject, otherwise review.
type Thresholds struct {
	Approve float64
	Reject  float64
}

// DefaultThresholds mirrors config.yaml defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Approve: 0.65, Reject: 0.35}
}

// Logistic baseline weights, ported from the offline-trained model. Fixed in
// code so scoring stays deterministic across runs.
const (
	weightBias        = -2.0
	weightIncome      = 0.00045 // per unit of net monthly income
	weightObligations = -1.6
	weightDependents  = -0.12
	weightDocCount    = 0.35
	weightAvgTextLen  = 0.0004 // per char of average extracted text
	weightAge         = 0.01   // per year above the admissible minimum

	maxAvgTextLen = 2000 // cap so one large document cannot dominate
)

// Score computes the eligibility probability for an application. Pure and
// deterministic: identical input always yields identical output. A missing or
// unusable feature set is a scoring failure, downgraded to LabelReview with a
// nil probability rather than an error.
func Score(app *domain.Application, docs []*domain.Document, th Thresholds) domain.ScoreResult {
	if app == nil || app.NetMonthlyIncome == nil || *app.NetMonthlyIncome < 0 || app.Age <= 0 {
		return domain.ScoreResult{Probability: nil, Label: domain.LabelReview}
	}

	income := *app.NetMonthlyIncome
	ratio := 0.0
	if app.CreditObligationsRatio != nil {
		ratio = *app.CreditObligationsRatio
	}
	dependents := 0.0
	if app.DependentsUnder12 != nil {
		dependents = float64(*app.DependentsUnder12)
	}
	docCount := float64(len(docs))
	avgLen := 0.0
	if len(docs) > 0 {
		total := 0
		for _, d := range docs {
			total += len(d.ContentText)
		}
		avgLen = math.Min(float64(total)/docCount, maxAvgTextLen)
	}

	z := weightBias +
		weightIncome*income +
		weightObligations*ratio +
		weightDependents*dependents +
		weightDocCount*docCount +
		weightAvgTextLen*avgLen +
		weightAge*float64(app.Age-18)

	p := 1.0 / (1.0 + math.Exp(-z))
	return domain.ScoreResult{Probability: &p, Label: LabelFor(p, th)}
}

// LabelFor maps a probability to its label. Monotonic step function: a higher
// probability never yields a lower label.
func LabelFor(p float64, th Thresholds) domain.Label {
	switch {
	case p >= th.Approve:
		return domain.LabelApprove
	case p <= th.Reject:
		return domain.LabelReject
	default:
		return domain.LabelReview
	}
}
