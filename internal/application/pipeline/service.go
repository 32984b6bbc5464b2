package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service runs the decision pipeline: validate -> score -> recommend, one
// appended Decision per call. Safe for concurrent use; runs for different
// applications never interfere, and concurrent runs for the same application
// simply append multiple rows.
type Service struct {
	Repo       domain.Repository
	Rules      Rules
	Thresholds Thresholds
	Clock      Clock
	Log        *zap.Logger
}

// Run executes one full pipeline pass and appends the resulting Decision.
// Only an unknown application id (domain.ErrNotFound) or a store append
// failure propagate as errors; every internal step failure, panics included,
// is recorded as a Decision with StatusError instead.
func (s *Service) Run(ctx context.Context, id domain.ApplicationID) (*domain.Decision, error) {
	app, err := s.Repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	d := s.evaluate(ctx, app)
	d.ID = uuid.New().String()
	d.ApplicationID = id
	d.CreatedAt = s.Clock.Now()

	if err := s.Repo.AppendDecision(ctx, d); err != nil {
		return nil, fmt.Errorf("append decision: %w", err)
	}

	if s.Log != nil {
		s.Log.Info("pipeline run complete",
			zap.String("application_id", string(id)),
			zap.String("decision_id", d.ID),
			zap.String("status", string(d.Status)),
		)
	}
	return d, nil
}

// evaluate produces the Decision body. Recovers from any step panic and
// converts it into a StatusError outcome.
func (s *Service) evaluate(ctx context.Context, app *domain.Application) (d *domain.Decision) {
	defer func() {
		if r := recover(); r != nil {
			if s.Log != nil {
				s.Log.Error("pipeline step panicked",
					zap.String("application_id", string(app.ID)),
					zap.Any("panic", r),
				)
			}
			d = errorDecision(fmt.Sprintf("internal pipeline failure: %v", r))
		}
	}()

	docs, err := s.Repo.ListDocuments(ctx, app.ID)
	if err != nil {
		return errorDecision(fmt.Sprintf("could not load documents: %v", err))
	}

	validation := Validate(app, docs, s.Rules)

	var score *domain.ScoreResult
	var status domain.Status
	if validation.HasBlockingFailure() {
		// Blocking failure: scoring is skipped entirely.
		status = domain.StatusIncomplete
	} else {
		sc := Score(app, docs, s.Thresholds)
		score = &sc
		status = statusFromLabel(sc.Label)
	}

	return &domain.Decision{
		Status:          status,
		Validation:      validation,
		Score:           score,
		Recommendations: Recommend(validation, score),
		Rationale:       buildRationale(validation, score),
	}
}

func errorDecision(rationale string) *domain.Decision {
	return &domain.Decision{
		Status:    domain.StatusError,
		Rationale: rationale,
		Recommendations: domain.Recommendation{
			"Contact support and retry the decision run.",
		},
	}
}

func statusFromLabel(l domain.Label) domain.Status {
	switch l {
	case domain.LabelApprove:
		return domain.StatusApproved
	case domain.LabelReject:
		return domain.StatusRejected
	default:
		return domain.StatusInReview
	}
}

// buildRationale renders the human-readable explanation attached to the
// Decision. Never includes raw structured payloads.
func buildRationale(validation domain.ValidationResult, score *domain.ScoreResult) string {
	if blockers := validation.BlockingFailures(); len(blockers) > 0 {
		parts := make([]string, 0, len(blockers))
		for _, f := range blockers {
			parts = append(parts, fmt.Sprintf("%s (%s)", f.Rule, f.Detail))
		}
		return "Blocked by validation: " + strings.Join(parts, "; ") + ". Scoring was skipped."
	}

	advisories := 0
	for _, f := range validation.Failures() {
		if f.Severity == domain.SeverityAdvisory {
			advisories++
		}
	}

	head := fmt.Sprintf("All blocking checks passed (%d advisory notes).", advisories)
	if score == nil || score.Probability == nil {
		return head + " Eligibility could not be scored (insufficient data); routed to manual review."
	}
	return fmt.Sprintf("%s Eligibility probability %.3f maps to label %q.", head, *score.Probability, score.Label)
}
