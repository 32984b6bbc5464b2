package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPlainText(t *testing.T) {
	e := New()

	got := e.Extract(context.Background(), "notes.txt", "text/plain", []byte("  line one \n\n line two  \n"))
	assert.Equal(t, "line one\nline two", got)
}

func TestExtractByExtensionWithoutContentType(t *testing.T) {
	e := New()

	got := e.Extract(context.Background(), "statement.csv", "", []byte("date,amount\n2026-01-01,120"))
	assert.Equal(t, "date,amount\n2026-01-01,120", got)
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	e := New()

	got := e.Extract(context.Background(), "notes.txt", "text/plain", []byte{0xff, 0xfe, 0x00})
	assert.Empty(t, got)
}

func TestExtractUnknownTypeReturnsEmpty(t *testing.T) {
	e := New()

	got := e.Extract(context.Background(), "photo.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47})
	assert.Empty(t, got)
}

func TestExtractEmptyPayload(t *testing.T) {
	e := New()

	assert.Empty(t, e.Extract(context.Background(), "a.pdf", "application/pdf", nil))
}

func TestExtractCorruptPDFReturnsEmpty(t *testing.T) {
	e := New()

	// Valid header, garbage body. Must not panic.
	got := e.Extract(context.Background(), "broken.pdf", "application/pdf", []byte("%PDF-1.7 garbage"))
	assert.Empty(t, got)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a\nb", cleanText("  a  \n\n\n  b\n"))
	assert.Empty(t, cleanText("  \n \t \n"))
}
