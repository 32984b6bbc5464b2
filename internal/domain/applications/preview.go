package applications

import (
	"strings"
	"unicode/utf8"
)

const previewLen = 160

// PreviewText collapses whitespace and truncates for inline display. The cut
// lands on a rune boundary so multi-byte text is never split mid-character.
func PreviewText(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if len(collapsed) <= previewLen {
		return collapsed
	}
	cut := previewLen
	for cut > 0 && !utf8.RuneStart(collapsed[cut]) {
		cut--
	}
	return collapsed[:cut]
}
