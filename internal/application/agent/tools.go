package agent

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

// Fixed sentinel messages. Tools are total: they return explanatory text on
// missing data, never an empty string and never an error the caller must
// handle.
const (
	NoDocumentsMessage = "No documents have been uploaded for this application yet."
	NoDecisionMessage  = "No decision has been run for this application yet. Run the decision pipeline first."

	docSummaryLimit = 3
)

// Bundle is the read-only state snapshot every tool operates on.
type Bundle struct {
	App      *domain.Application
	Docs     []*domain.Document
	Decision *domain.Decision // latest, nil when history is empty
}

// ToolFunc is the common contract every tool implements: deterministic,
// side-effect-free, rendering a text section from already-persisted state.
type ToolFunc func(ctx context.Context, b *Bundle) (string, error)

type Tool struct {
	Name        string
	Title       string
	Description string
	Aliases     []string
	Run         ToolFunc
}

// Registry maps stable tool names (and aliases) to tools, keeping declaration
// order for help/prompt rendering. Lookups are case-insensitive.
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool
}

func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Tool)}
	r.Register(&Tool{
		Name:        "documents_summary",
		Title:       "Documents Summary",
		Description: "Summarize the uploaded documents.",
		Aliases:     []string{"docs_summary", "summarize_documents"},
		Run:         documentsSummary,
	})
	r.Register(&Tool{
		Name:        "decision_explain",
		Title:       "Decision Explanation",
		Description: "Explain the latest decision and why it was made.",
		Aliases:     []string{"explain_decision", "decision_overview"},
		Run:         decisionExplain,
	})
	r.Register(&Tool{
		Name:        "policy_validation",
		Title:       "Policy Validation",
		Description: "Show which policy checks passed or failed in the latest decision.",
		Aliases:     []string{"validation_checks"},
		Run:         policyValidation,
	})
	r.Register(&Tool{
		Name:        "ml_score",
		Title:       "Eligibility Score",
		Description: "Show the eligibility score of the latest decision.",
		Aliases:     []string{"eligibility_score"},
		Run:         mlScore,
	})
	r.Register(&Tool{
		Name:        "recommendations",
		Title:       "Recommended Next Steps",
		Description: "List the recommended next steps from the latest decision.",
		Aliases:     []string{"next_steps"},
		Run:         recommendations,
	})
	return r
}

func (r *Registry) Register(t *Tool) {
	r.tools = append(r.tools, t)
	r.byName[strings.ToLower(t.Name)] = t
	for _, a := range t.Aliases {
		r.byName[strings.ToLower(a)] = t
	}
}

func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Tools returns registered tools in declaration order.
func (r *Registry) Tools() []*Tool { return r.tools }

// Execute runs one tool and is total: tool errors and panics are rendered as
// an inline apology instead of aborting the response.
func (r *Registry) Execute(ctx context.Context, t *Tool, b *Bundle) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = toolApology(t.Name)
		}
	}()
	s, err := t.Run(ctx, b)
	if err != nil {
		return toolApology(t.Name)
	}
	return s
}

func toolApology(name string) string {
	return fmt.Sprintf("Sorry, the %s lookup failed; the rest of this answer is unaffected.", name)
}

//
// ==== BUILTIN TOOLS ====
//

func documentsSummary(_ context.Context, b *Bundle) (string, error) {
	if len(b.Docs) == 0 {
		return NoDocumentsMessage, nil
	}
	var lines []string
	for i, d := range b.Docs {
		if i == docSummaryLimit {
			break
		}
		preview := domain.PreviewText(d.ContentText)
		if preview == "" {
			preview = "no readable text"
		}
		lines = append(lines, fmt.Sprintf("- %s (%s, %d bytes) :: %s",
			d.Filename, contentTypeOrUnknown(d.ContentType), d.SizeBytes, preview))
	}
	out := strings.Join(lines, "\n")
	if extra := len(b.Docs) - docSummaryLimit; extra > 0 {
		out += fmt.Sprintf("\n(+%d more)", extra)
	}
	return out, nil
}

func decisionExplain(_ context.Context, b *Bundle) (string, error) {
	d := b.Decision
	if d == nil {
		return NoDecisionMessage, nil
	}
	head := fmt.Sprintf("Latest decision: **%s**", d.Status)
	if d.Score != nil {
		head += fmt.Sprintf(" (label %s, probability %s)", d.Score.Label, formatProbability(d.Score.Probability))
	}
	return head + ".\nRationale: " + d.Rationale, nil
}

func policyValidation(_ context.Context, b *Bundle) (string, error) {
	d := b.Decision
	if d == nil {
		return NoDecisionMessage, nil
	}
	if len(d.Validation.Findings) == 0 {
		return "The latest decision recorded no validation findings.", nil
	}
	var lines []string
	for _, f := range d.Validation.Findings {
		mark := "pass"
		if !f.Passed {
			mark = "FAIL"
		}
		line := fmt.Sprintf("- [%s] %s (%s)", mark, f.Rule, f.Severity)
		if f.Detail != "" {
			line += ": " + f.Detail
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func mlScore(_ context.Context, b *Bundle) (string, error) {
	d := b.Decision
	if d == nil {
		return NoDecisionMessage, nil
	}
	if d.Score == nil {
		return "The latest decision was blocked before scoring, so no eligibility score exists.", nil
	}
	if d.Score.Probability == nil {
		return "Eligibility could not be scored from the declared data; the application is routed to manual review.", nil
	}
	return fmt.Sprintf("Eligibility probability is %.3f, which maps to label %q.",
		*d.Score.Probability, d.Score.Label), nil
}

func recommendations(_ context.Context, b *Bundle) (string, error) {
	d := b.Decision
	if d == nil {
		return NoDecisionMessage, nil
	}
	var lines []string
	for i, r := range d.Recommendations {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, r))
	}
	if len(lines) == 0 {
		return "The latest decision carries no recommended steps.", nil
	}
	return strings.Join(lines, "\n"), nil
}

//
// ==== helpers ====
//

func contentTypeOrUnknown(ct string) string {
	if ct == "" {
		return "unknown"
	}
	return ct
}

func formatProbability(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *p)
}
