package extract

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// WordBackend extracts raw text from Word documents.
type WordBackend struct{}

// NewWordBackend creates a new Word document backend.
func NewWordBackend() *WordBackend {
	return &WordBackend{}
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

// Extract reads a .docx payload and returns its raw text, one line per
// paragraph. Legacy .doc payloads are not valid OOXML and surface as an
// error, which the extractor converts to a sentinel.
func (b *WordBackend) Extract(data []byte, _ string) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open word document: %w", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()

	// GetContent returns the document.xml markup; reduce it to raw text.
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
