package intent

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultMaxBytes caps how much intent text ReadSource accepts.
const DefaultMaxBytes = 64 * 1024

// SourceOptions controls how raw intent text is read.
type SourceOptions struct {
	// Sanitize strips markup even when the text does not look like HTML.
	Sanitize bool
	// MaxBytes limits the input size; zero means DefaultMaxBytes.
	MaxBytes int64
}

var (
	htmlHint   = regexp.MustCompile(`(?i)<(html|body|p|div|br|li|ul|ol|span|pre)[\s/>]`)
	blockBreak = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|pre|tr)>`)
)

// ReadSource reads intent text from r. HTML input (or any input when Sanitize is set)
// is reduced to plain text with one intent per block element.
func ReadSource(r io.Reader, opts SourceOptions) (string, error) {
	limit := opts.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read intent: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("intent exceeds %d bytes", limit)
	}

	text := string(data)
	if opts.Sanitize || htmlHint.MatchString(text) {
		text = Sanitize(text)
	}
	return text, nil
}

// Sanitize removes all markup from s, keeping block boundaries as line breaks.
func Sanitize(s string) string {
	s = blockBreak.ReplaceAllString(s, "$0\n")
	p := bluemonday.StrictPolicy()
	clean := html.UnescapeString(p.Sanitize(s))
	return strings.ReplaceAll(clean, "\r\n", "\n")
}
