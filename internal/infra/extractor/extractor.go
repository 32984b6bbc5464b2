// Package extractor turns uploaded document bytes into plain text. It is a
// deliberate black box: callers get extracted text or an empty string, never
// an error. An unreadable document is still a valid upload.
package extractor

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(_ context.Context, filename, contentType string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	switch {
	case isPDF(filename, contentType):
		return extractPDF(data)
	case isPlainText(filename, contentType):
		if utf8.Valid(data) {
			return cleanText(string(data))
		}
		return ""
	default:
		return ""
	}
}

func isPDF(filename, contentType string) bool {
	return contentType == "application/pdf" ||
		strings.EqualFold(filepath.Ext(filename), ".pdf")
}

func isPlainText(filename, contentType string) bool {
	if strings.HasPrefix(contentType, "text/") || contentType == "application/json" {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".csv", ".json":
		return true
	}
	return false
}

// extractPDF walks every page, skipping unreadable ones. The pdf library can
// panic on corrupt input, so the whole walk is recover-guarded.
func extractPDF(data []byte) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return cleanText(sb.String())
}

// cleanText drops blank lines and per-line padding.
func cleanText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
