package agent

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Tool marker syntax (stable, documented in the system prompt): an inline
// JSON object {"tool": "<name>", "args": {...}} embedded anywhere in
// otherwise free-form text, optionally inside a ``` code fence. Extraction is
// an explicit scanner over the text, not ad hoc splitting: malformed spans
// are kept as plain narrative, never an error.

// ToolCall is the transient value produced by extraction. Not persisted.
type ToolCall struct {
	Name string          `json:"tool"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Signature identifies exact-duplicate calls for dedupe.
func (c ToolCall) Signature() string {
	var buf bytes.Buffer
	if len(c.Args) > 0 {
		// compaction failure keeps the raw args; signature stays deterministic
		if err := json.Compact(&buf, c.Args); err != nil {
			buf.Reset()
			buf.Write(c.Args)
		}
	}
	return strings.ToLower(c.Name) + "|" + buf.String()
}

type segmentKind int

const (
	segText segmentKind = iota
	segCall
)

// segment is one scanner output token: narrative text or a well-formed call.
type segment struct {
	kind segmentKind
	text string
	call ToolCall
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:json|jsonl|tool)?\\s*(.*?)```")

var markerDebrisRe = regexp.MustCompile(`\{\s*"tool"`)

// stripMarkerDebris drops a malformed marker attempt and anything after it
// from a narrative chunk. Well-formed markers never reach this path, so a
// remaining `{"tool"` span is partial JSON the user must not see.
func stripMarkerDebris(s string) string {
	if loc := markerDebrisRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

// stripCodeFences keeps fenced content in place so marker order is preserved.
func stripCodeFences(s string) string {
	return codeFenceRe.ReplaceAllString(s, "$1")
}

// parseSegments walks the text once, splitting it into narrative chunks and
// well-formed tool-call markers. A '{' that does not open a valid marker is
// consumed as narrative.
func parseSegments(s string) []segment {
	s = stripCodeFences(s)

	var segs []segment
	textStart := 0
	i := 0
	for i < len(s) {
		if s[i] != '{' {
			i++
			continue
		}
		end := scanObjectSpan(s, i)
		if end < 0 {
			i++
			continue
		}
		span := s[i : end+1]
		call, ok := parseMarker(span)
		if !ok {
			i++
			continue
		}
		if txt := s[textStart:i]; strings.TrimSpace(txt) != "" {
			segs = append(segs, segment{kind: segText, text: txt})
		}
		segs = append(segs, segment{kind: segCall, text: span, call: call})
		i = end + 1
		textStart = i
	}
	if txt := s[textStart:]; strings.TrimSpace(txt) != "" {
		segs = append(segs, segment{kind: segText, text: txt})
	}
	return segs
}

// scanObjectSpan returns the index of the brace closing the object opened at
// start, honoring strings and escapes, or -1 when unbalanced.
func scanObjectSpan(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseMarker accepts a span only when it is valid JSON with a non-empty
// string "tool" field.
func parseMarker(span string) (ToolCall, bool) {
	if !strings.Contains(span, `"tool"`) {
		return ToolCall{}, false
	}
	var call ToolCall
	if err := json.Unmarshal([]byte(span), &call); err != nil {
		return ToolCall{}, false
	}
	if strings.TrimSpace(call.Name) == "" {
		return ToolCall{}, false
	}
	return call, true
}

// ExtractToolCalls returns the well-formed tool calls found in the text, in
// order of appearance, exact repeats dropped. Malformed or partial markers
// are silently ignored.
func ExtractToolCalls(s string) []ToolCall {
	var calls []ToolCall
	seen := make(map[string]struct{})
	for _, seg := range parseSegments(s) {
		if seg.kind != segCall {
			continue
		}
		sig := seg.call.Signature()
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		calls = append(calls, seg.call)
	}
	return calls
}
