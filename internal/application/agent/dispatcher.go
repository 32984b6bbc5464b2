package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/social-intake/internal/domain/ai"
	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

// Message is one conversation turn passed in by the caller. The dispatcher
// holds no state across turns.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FallbackHelp is returned when no direct intent matches and the LLM is off.
const FallbackHelp = `I can help with:
- "summarize documents": what was uploaded
- "explain decision": the latest decision and why
- "validation": which policy checks passed or failed
- "score": the eligibility probability
- "next steps": recommended actions

Try asking: "summarize my documents" or "explain the latest decision".`

// assistantUnavailable is the deterministic fallback on LLM failure/timeout.
const assistantUnavailable = `I was unable to reach the assistant just now. ` +
	`Ask for "explain decision" or "summarize documents" and I will answer directly.`

// directIntents maps fixed keyword sets 1:1 onto registry tools, checked in
// order against the last user message. No LLM involved.
var directIntents = []struct {
	tool     string
	keywords []string
}{
	{"documents_summary", []string{"document", "upload", "summarize", "summary", "pdf"}},
	{"policy_validation", []string{"validat", "check", "pass", "fail"}},
	{"ml_score", []string{"score", "probab", "eligib"}},
	{"recommendations", []string{"recommend", "next step", "what next"}},
	{"decision_explain", []string{"decision", "explain", "why", "approve", "reject"}},
}

var overviewKeywords = []string{"status", "overview", "what happened"}

// Dispatcher turns a chat request into one rendered text response. It is a
// small state machine: direct intent match -> tool; otherwise LLM-assisted
// tool calling when enabled; otherwise fixed help text.
type Dispatcher struct {
	Repo     domain.Repository
	Registry *Registry
	LLM      ai.Client
	Timeout  time.Duration
	Log      *zap.Logger
}

// Dispatch renders the reply for one chat turn. Only domain.ErrNotFound
// propagates; every other failure is converted into rendered text.
func (d *Dispatcher) Dispatch(ctx context.Context, id domain.ApplicationID, msgs []Message, useLLM bool) (string, error) {
	app, err := d.Repo.GetApplication(ctx, id)
	if err != nil {
		return "", err
	}
	b := d.loadBundle(ctx, app)

	user := lastUserMessage(msgs)

	if tool, ok := d.matchDirect(user); ok {
		return renderSection(tool, d.Registry.Execute(ctx, tool, b)), nil
	}
	if containsAny(strings.ToLower(user), overviewKeywords) {
		return d.renderOverview(ctx, b), nil
	}

	if !useLLM || d.LLM == nil {
		return FallbackHelp, nil
	}
	return d.dispatchLLM(ctx, b, user), nil
}

// loadBundle reads the snapshot tools operate on. Read failures degrade to
// empty data so chat stays total.
func (d *Dispatcher) loadBundle(ctx context.Context, app *domain.Application) *Bundle {
	b := &Bundle{App: app}
	docs, err := d.Repo.ListDocuments(ctx, app.ID)
	if err != nil {
		d.warn("list documents failed", app.ID, err)
	} else {
		b.Docs = docs
	}
	dec, err := d.Repo.LatestDecision(ctx, app.ID)
	if err != nil {
		d.warn("latest decision lookup failed", app.ID, err)
	} else {
		b.Decision = dec
	}
	return b
}

func (d *Dispatcher) matchDirect(user string) (*Tool, bool) {
	msg := strings.ToLower(user)
	if strings.TrimSpace(msg) == "" {
		return nil, false
	}
	for _, intent := range directIntents {
		if containsAny(msg, intent.keywords) {
			if t, ok := d.Registry.Lookup(intent.tool); ok {
				return t, true
			}
		}
	}
	return nil, false
}

// dispatchLLM performs the single bounded LLM call, extracts tool calls from
// the output, executes them in order and splices rendered results back into
// the narrative. Raw markers never reach the user.
func (d *Dispatcher) dispatchLLM(ctx context.Context, b *Bundle, user string) string {
	cctx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	raw, err := d.LLM.Generate(cctx, systemPrompt(d.Registry), userPrompt(contextFor(b), user))
	if err != nil {
		d.warn("llm generate failed", b.App.ID, err)
		return assistantUnavailable
	}

	segs := parseSegments(raw)
	hasCall := false
	for _, s := range segs {
		if s.kind == segCall {
			hasCall = true
			break
		}
	}
	if !hasCall {
		// Direct model answer, no tool usage. Scrub any malformed marker
		// attempt so partial JSON never reaches the user.
		if txt := stripMarkerDebris(strings.TrimSpace(raw)); txt != "" {
			return txt
		}
		return FallbackHelp
	}

	// Identical repeated calls execute once; each occurrence renders the
	// cached result. Unknown tool names are dropped silently.
	rendered := make(map[string]string)
	var parts []string
	for _, s := range segs {
		switch s.kind {
		case segText:
			if txt := stripMarkerDebris(s.text); txt != "" {
				parts = append(parts, txt)
			}
		case segCall:
			tool, ok := d.Registry.Lookup(s.call.Name)
			if !ok {
				continue
			}
			sig := s.call.Signature()
			out, done := rendered[sig]
			if !done {
				out = renderSection(tool, d.Registry.Execute(ctx, tool, b))
				rendered[sig] = out
			}
			parts = append(parts, out)
		}
	}
	if len(parts) == 0 {
		return FallbackHelp
	}
	return strings.Join(parts, "\n\n")
}

func (d *Dispatcher) renderOverview(ctx context.Context, b *Bundle) string {
	decision := d.mustRun(ctx, "decision_explain", b)
	return strings.Join([]string{
		fmt.Sprintf("Applicant: **%s** (age %d)", b.App.FullName, b.App.Age),
		fmt.Sprintf("Documents uploaded: %d", len(b.Docs)),
		decision,
	}, "\n")
}

func (d *Dispatcher) mustRun(ctx context.Context, name string, b *Bundle) string {
	t, ok := d.Registry.Lookup(name)
	if !ok {
		return ""
	}
	return d.Registry.Execute(ctx, t, b)
}

func (d *Dispatcher) warn(msg string, id domain.ApplicationID, err error) {
	if d.Log != nil {
		d.Log.Warn(msg, zap.String("application_id", string(id)), zap.Error(err))
	}
}

func renderSection(t *Tool, body string) string {
	return "**" + t.Title + "**\n" + body
}

func lastUserMessage(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if strings.EqualFold(msgs[i].Role, "user") {
			return msgs[i].Content
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
