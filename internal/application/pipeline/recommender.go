package pipeline

import (
	"fmt"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

// remediation per blocking rule, referenced when that rule fails.
var remediation = map[string]string{
	RuleAgeInRange:        "Applicant age is outside the admissible range; reapply when the policy criteria are met.",
	RuleIncomeNonNegative: "Declared net monthly income is invalid; correct the income figure and resubmit.",
	RuleEmploymentKnown:   "Provide a valid employment status before resubmitting.",
	RuleDocumentsPresent:  "Upload at least one supporting document (bank statement or income proof).",
}

// Recommend derives the ordered next-step list from validation findings and
// the score. Blocking failures dominate; ties follow rule declaration order.
// The result is never empty. score is nil when the pipeline was blocked
// before scoring.
func Recommend(validation domain.ValidationResult, score *domain.ScoreResult) domain.Recommendation {
	var recs domain.Recommendation

	if blockers := validation.BlockingFailures(); len(blockers) > 0 {
		for _, f := range blockers {
			if step, ok := remediation[f.Rule]; ok {
				recs = append(recs, step)
			} else {
				recs = append(recs, fmt.Sprintf("Resolve the failed %s check and resubmit.", f.Rule))
			}
		}
		recs = append(recs,
			"Ensure documents are clear, full-page scans (avoid photos or crops).",
			"Re-submit after fixing the issues above.",
		)
		return recs
	}

	// Advisory nudges, declaration order.
	for _, f := range validation.Failures() {
		switch f.Rule {
		case RuleBankStatement:
			recs = append(recs, "Attach a recent bank statement (last 3 months) to speed up review.")
		case RuleIncomeProof:
			recs = append(recs, "Attach a payslip or employment letter to strengthen the application.")
		case RuleIncomeMeetsMinimum:
			recs = append(recs, "Consider adding a co-applicant or updating the declared income.")
		case RuleObligationsInRange:
			recs = append(recs, "Re-check the declared obligations ratio; it must be between 0 and 1.")
		case RuleIncomeProvided:
			recs = append(recs, "Declare net monthly income so eligibility can be scored.")
		}
	}

	if score != nil {
		switch score.Label {
		case domain.LabelApprove:
			if score.Probability != nil && *score.Probability >= 0.75 {
				recs = append(recs, "Fast-track onboarding; all signals look strong.")
			} else {
				recs = append(recs, "Proceed to onboarding; underwriting may request one more document.")
			}
		case domain.LabelReview:
			recs = append(recs, "Manual review recommended; add any missing documents to accelerate.")
		case domain.LabelReject:
			recs = append(recs,
				"The application is unlikely to qualify under current criteria.",
				"You may appeal the outcome or reapply with updated financials.",
			)
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Proceed to the next onboarding step.")
	}
	return recs
}
