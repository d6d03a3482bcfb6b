package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lexgraph/lexgraph/internal/domain"
)

var (
	htmlTags    = regexp.MustCompile(`<[^>]*>`)
	rtfControls = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?|[{}]`)
	blankRuns   = regexp.MustCompile(`[ \t]+`)
)

// PlainExtractor extracts text from the textual MIME families. Binary
// formats (PDF, legacy office) need a richer extractor behind the same
// interface; this one reports an extraction error for them.
type PlainExtractor struct{}

func NewPlainExtractor() *PlainExtractor {
	return &PlainExtractor{}
}

// DetectContentType implements content-type detection for the pipeline
func (e *PlainExtractor) DetectContentType(data []byte, filename string) string {
	return DetectContentType(data, filename)
}

// IsSupported reports whether the pipeline accepts the given MIME type
func (e *PlainExtractor) IsSupported(contentType string) bool {
	return IsSupportedType(contentType)
}

// ExtractText extracts the full text from document bytes, given the detected
// content type
func (e *PlainExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	ct := strings.ToLower(contentType)
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch {
	case ct == "text/html" || ct == "application/xml" || strings.HasSuffix(ct, "+xml"):
		return e.decode(data, func(s string) string {
			return htmlTags.ReplaceAllString(s, " ")
		})
	case ct == "application/rtf":
		return e.decode(data, func(s string) string {
			return rtfControls.ReplaceAllString(s, " ")
		})
	case strings.HasPrefix(ct, "text/") || ct == "application/json":
		return e.decode(data, nil)
	default:
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction,
			"cannot extract text", fmt.Errorf("content type %q requires an external extractor", contentType))
	}
}

func (e *PlainExtractor) decode(data []byte, clean func(string) string) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.NewDomainError(domain.ErrCodeExtraction, "document is not valid UTF-8 text")
	}
	text := string(data)
	if clean != nil {
		text = clean(text)
	}
	text = blankRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), nil
}
