package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

func TestRecommendBlockersDominate(t *testing.T) {
	app := completeApp()
	app.Age = 15
	v := Validate(app, nil, DefaultRules())

	recs := Recommend(v, nil)
	require.Len(t, recs, 4)
	assert.Equal(t, remediation[RuleAgeInRange], recs[0])
	assert.Equal(t, remediation[RuleDocumentsPresent], recs[1])
	assert.Contains(t, recs[2], "full-page scans")
	assert.Contains(t, recs[3], "Re-submit")
}

func TestRecommendAdvisoryNudges(t *testing.T) {
	app := completeApp()
	app.NetMonthlyIncome = fptr(1000)
	docs := []*domain.Document{{ID: "d1", ContentText: "bank statement"}}
	v := Validate(app, docs, DefaultRules())
	score := Score(app, docs, DefaultThresholds())

	recs := Recommend(v, &score)
	require.GreaterOrEqual(t, len(recs), 2)
	assert.Contains(t, recs[0], "co-applicant")
	assert.Contains(t, recs[1], "payslip")
}

func TestRecommendByLabel(t *testing.T) {
	clean := domain.ValidationResult{}

	t.Run("strong approve fast-tracks", func(t *testing.T) {
		p := 0.9
		recs := Recommend(clean, &domain.ScoreResult{Probability: &p, Label: domain.LabelApprove})
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "Fast-track")
	})

	t.Run("marginal approve proceeds", func(t *testing.T) {
		p := 0.68
		recs := Recommend(clean, &domain.ScoreResult{Probability: &p, Label: domain.LabelApprove})
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "onboarding")
	})

	t.Run("review asks for manual review", func(t *testing.T) {
		p := 0.5
		recs := Recommend(clean, &domain.ScoreResult{Probability: &p, Label: domain.LabelReview})
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "Manual review")
	})

	t.Run("reject offers appeal", func(t *testing.T) {
		p := 0.1
		recs := Recommend(clean, &domain.ScoreResult{Probability: &p, Label: domain.LabelReject})
		require.Len(t, recs, 2)
		assert.Contains(t, recs[0], "unlikely to qualify")
		assert.Contains(t, recs[1], "appeal")
	})
}

func TestRecommendScoringFailureStillRecommends(t *testing.T) {
	recs := Recommend(domain.ValidationResult{}, &domain.ScoreResult{Probability: nil, Label: domain.LabelReview})
	require.NotEmpty(t, recs)
	assert.Contains(t, recs[0], "Manual review")
}

func TestRecommendNeverEmpty(t *testing.T) {
	recs := Recommend(domain.ValidationResult{}, nil)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "next onboarding step")
}
