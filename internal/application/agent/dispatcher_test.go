package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
	"github.com/bryanwahyu/social-intake/internal/infra/db/memory"
)

type stubLLM struct {
	reply     string
	err       error
	gotSystem string
	gotUser   string
}

func (s *stubLLM) Generate(_ context.Context, system, user string) (string, error) {
	s.gotSystem = system
	s.gotUser = user
	return s.reply, s.err
}

func seededDispatcher(t *testing.T, llm *stubLLM) (*Dispatcher, domain.ApplicationID) {
	t.Helper()
	repo := memory.NewRepo()
	ctx := context.Background()

	b := decidedBundle()
	require.NoError(t, repo.SaveApplication(ctx, b.App))
	for _, doc := range b.Docs {
		doc.ApplicationID = b.App.ID
		require.NoError(t, repo.SaveDocument(ctx, doc))
	}
	require.NoError(t, repo.AppendDecision(ctx, b.Decision))

	d := &Dispatcher{
		Repo:     repo,
		Registry: NewRegistry(),
		Log:      zap.NewNop(),
	}
	if llm != nil {
		d.LLM = llm
	}
	return d, b.App.ID
}

func ask(q string) []Message {
	return []Message{{Role: "user", Content: q}}
}

func TestDispatchUnknownApplication(t *testing.T) {
	d, _ := seededDispatcher(t, nil)

	_, err := d.Dispatch(context.Background(), "missing", ask("hello"), false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDispatchDirectIntents(t *testing.T) {
	d, id := seededDispatcher(t, nil)
	ctx := context.Background()

	t.Run("documents", func(t *testing.T) {
		out, err := d.Dispatch(ctx, id, ask("please summarize my documents"), false)
		require.NoError(t, err)
		assert.Contains(t, out, "**Documents Summary**")
		assert.Contains(t, out, "statement.pdf")
	})

	t.Run("decision", func(t *testing.T) {
		out, err := d.Dispatch(ctx, id, ask("explain the latest decision"), false)
		require.NoError(t, err)
		assert.Contains(t, out, "**Decision Explanation**")
		assert.Contains(t, out, "All blocking checks passed.")
	})

	t.Run("validation", func(t *testing.T) {
		out, err := d.Dispatch(ctx, id, ask("which checks failed?"), false)
		require.NoError(t, err)
		assert.Contains(t, out, "**Policy Validation**")
	})

	t.Run("score", func(t *testing.T) {
		out, err := d.Dispatch(ctx, id, ask("what is my eligibility?"), false)
		require.NoError(t, err)
		assert.Contains(t, out, "**Eligibility Score**")
		assert.Contains(t, out, "0.710")
	})

	t.Run("next steps", func(t *testing.T) {
		out, err := d.Dispatch(ctx, id, ask("what next steps should I take"), false)
		require.NoError(t, err)
		assert.Contains(t, out, "**Recommended Next Steps**")
	})
}

func TestDispatchOverview(t *testing.T) {
	d, id := seededDispatcher(t, nil)

	out, err := d.Dispatch(context.Background(), id, ask("what is the current situation, any overview?"), false)
	require.NoError(t, err)
	assert.Contains(t, out, "Applicant: **Siti Rahma** (age 30)")
	assert.Contains(t, out, "Documents uploaded: 1")
	assert.Contains(t, out, "Latest decision: **Approved**")
}

func TestDispatchNoIntentWithoutLLM(t *testing.T) {
	d, id := seededDispatcher(t, nil)

	out, err := d.Dispatch(context.Background(), id, ask("tell me a story"), true)
	require.NoError(t, err)
	assert.Equal(t, FallbackHelp, out)

	out, err = d.Dispatch(context.Background(), id, nil, false)
	require.NoError(t, err)
	assert.Equal(t, FallbackHelp, out)
}

func TestDispatchLLMFailureIsDeterministicText(t *testing.T) {
	d, id := seededDispatcher(t, &stubLLM{err: errors.New("connection refused")})

	out, err := d.Dispatch(context.Background(), id, ask("tell me a story"), true)
	require.NoError(t, err)
	assert.Equal(t, assistantUnavailable, out)
}

func TestDispatchLLMNarrativeAnswerPassesThrough(t *testing.T) {
	d, id := seededDispatcher(t, &stubLLM{reply: "  You qualify for the standard track.  "})

	out, err := d.Dispatch(context.Background(), id, ask("tell me a story"), true)
	require.NoError(t, err)
	assert.Equal(t, "You qualify for the standard track.", out)
}

func TestDispatchLLMSplicesToolResults(t *testing.T) {
	llm := &stubLLM{reply: `Here is what I found.
{"tool": "ml_score", "args": {}}
And the paperwork:
{"tool": "documents_summary", "args": {}}`}
	d, id := seededDispatcher(t, llm)

	out, err := d.Dispatch(context.Background(), id, ask("give me a full rundown please"), true)
	require.NoError(t, err)

	assert.Contains(t, out, "Here is what I found.")
	assert.Contains(t, out, "**Eligibility Score**")
	assert.Contains(t, out, "**Documents Summary**")
	assert.NotContains(t, out, `"tool"`)
	assert.Contains(t, llm.gotSystem, "documents_summary")
	assert.Contains(t, llm.gotUser, "give me a full rundown please")
}

func TestDispatchLLMDropsMalformedMarkers(t *testing.T) {
	llm := &stubLLM{reply: `Here is the data. {"tool": "documents_summary", "args": {}} and also {"tool": "ml_score", "args": {`}
	d, id := seededDispatcher(t, llm)

	out, err := d.Dispatch(context.Background(), id, ask("give me a full rundown please"), true)
	require.NoError(t, err)

	assert.Contains(t, out, "Here is the data.")
	assert.Contains(t, out, "**Documents Summary**")
	assert.NotContains(t, out, `{"tool"`)
	assert.NotContains(t, out, `"args"`)
}

func TestDispatchLLMMalformedOnlyReplyFallsBack(t *testing.T) {
	llm := &stubLLM{reply: `{"tool": "ml_score", "args": {`}
	d, id := seededDispatcher(t, llm)

	out, err := d.Dispatch(context.Background(), id, ask("go ahead"), true)
	require.NoError(t, err)
	assert.Equal(t, FallbackHelp, out)
}

func TestDispatchLLMDropsUnknownTools(t *testing.T) {
	llm := &stubLLM{reply: `Checking. {"tool": "delete_everything", "args": {}} {"tool": "ml_score"}`}
	d, id := seededDispatcher(t, llm)

	out, err := d.Dispatch(context.Background(), id, ask("go ahead"), true)
	require.NoError(t, err)
	assert.NotContains(t, out, "delete_everything")
	assert.Contains(t, out, "**Eligibility Score**")
}

func TestDispatchLLMOnlyUnknownToolsFallsBack(t *testing.T) {
	llm := &stubLLM{reply: `{"tool": "delete_everything"}`}
	d, id := seededDispatcher(t, llm)

	out, err := d.Dispatch(context.Background(), id, ask("go ahead"), true)
	require.NoError(t, err)
	assert.Equal(t, FallbackHelp, out)
}

func TestDispatchUsesLastUserMessage(t *testing.T) {
	d, id := seededDispatcher(t, nil)
	msgs := []Message{
		{Role: "user", Content: "tell me a story"},
		{Role: "assistant", Content: "once upon a time"},
		{Role: "user", Content: "now summarize my documents"},
	}

	out, err := d.Dispatch(context.Background(), id, msgs, false)
	require.NoError(t, err)
	assert.Contains(t, out, "**Documents Summary**")
}
