package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToolCallsSingleMarker(t *testing.T) {
	calls := ExtractToolCalls(`Let me check. {"tool": "documents_summary", "args": {}} Done.`)

	require.Len(t, calls, 1)
	assert.Equal(t, "documents_summary", calls[0].Name)
}

func TestExtractToolCallsPreservesOrder(t *testing.T) {
	raw := `First {"tool": "policy_validation"} then {"tool": "ml_score"} and finally {"tool": "recommendations"}.`

	calls := ExtractToolCalls(raw)
	require.Len(t, calls, 3)
	assert.Equal(t, "policy_validation", calls[0].Name)
	assert.Equal(t, "ml_score", calls[1].Name)
	assert.Equal(t, "recommendations", calls[2].Name)
}

func TestExtractToolCallsDedupesExactRepeats(t *testing.T) {
	raw := `{"tool": "ml_score", "args": {}} again {"tool": "ml_score", "args": {}}`

	calls := ExtractToolCalls(raw)
	assert.Len(t, calls, 1)
}

func TestExtractToolCallsDistinctArgsAreKept(t *testing.T) {
	raw := `{"tool": "documents_summary", "args": {"limit": 1}} {"tool": "documents_summary", "args": {"limit": 2}}`

	calls := ExtractToolCalls(raw)
	assert.Len(t, calls, 2)
}

func TestExtractToolCallsInsideCodeFence(t *testing.T) {
	raw := "Here you go:\n```json\n{\"tool\": \"decision_explain\", \"args\": {}}\n```\nanything else?"

	calls := ExtractToolCalls(raw)
	require.Len(t, calls, 1)
	assert.Equal(t, "decision_explain", calls[0].Name)
}

func TestExtractToolCallsIgnoresMalformedMarkers(t *testing.T) {
	cases := map[string]string{
		"truncated json":     `{"tool": "ml_score", "args": {`,
		"missing tool field": `{"name": "ml_score"}`,
		"empty tool name":    `{"tool": "  "}`,
		"plain braces":       `if (x) { return y }`,
		"no marker at all":   `just a narrative answer`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, ExtractToolCalls(raw))
		})
	}
}

func TestExtractToolCallsKeepsWellFormedNextToMalformed(t *testing.T) {
	raw := `{"tool": "ml_score", "args": {} {"tool": "documents_summary", "args": {}}`

	calls := ExtractToolCalls(raw)
	require.Len(t, calls, 1)
	assert.Equal(t, "documents_summary", calls[0].Name)
}

func TestExtractToolCallsHandlesBracesInStrings(t *testing.T) {
	raw := `{"tool": "documents_summary", "args": {"note": "curly {brace} inside"}}`

	calls := ExtractToolCalls(raw)
	require.Len(t, calls, 1)
	assert.Equal(t, "documents_summary", calls[0].Name)
}

func TestParseSegmentsKeepsSurroundingNarrative(t *testing.T) {
	segs := parseSegments(`Before. {"tool": "ml_score"} After.`)

	require.Len(t, segs, 3)
	assert.Equal(t, segText, segs[0].kind)
	assert.Contains(t, segs[0].text, "Before.")
	assert.Equal(t, segCall, segs[1].kind)
	assert.Equal(t, segText, segs[2].kind)
	assert.Contains(t, segs[2].text, "After.")
}

func TestStripMarkerDebris(t *testing.T) {
	assert.Equal(t, "and also", stripMarkerDebris(` and also {"tool": "ml_score", "args": {`))
	assert.Equal(t, "plain narrative", stripMarkerDebris("plain narrative"))
	assert.Empty(t, stripMarkerDebris(`{ "tool": "x", "args`))
}

func TestSignatureNormalizesNameAndArgs(t *testing.T) {
	a := ToolCall{Name: "ML_Score", Args: []byte(`{ "k": 1 }`)}
	b := ToolCall{Name: "ml_score", Args: []byte(`{"k":1}`)}

	assert.Equal(t, a.Signature(), b.Signature())
}
