// Package extract turns uploaded files into plain text for prompt assembly.
//
// Extraction never fails from the caller's point of view: unsupported
// formats and backend errors are folded into sentinel strings so the
// pipeline always has something to join.
package extract

import (
	"fmt"
	"strings"
)

// Sentinel strings substituted when a file cannot or will not be parsed.
const (
	SentinelPDF         = "[PDF extraction unsupported]"
	SentinelUnsupported = "[unsupported file type]"
)

// SentinelError wraps a backend error message in the extraction-error sentinel.
func SentinelError(err error) string {
	return fmt.Sprintf("[extraction error: %s]", err.Error())
}

// File is a single uploaded file: payload, declared mime type (possibly
// empty or wrong) and the client-supplied filename.
type File struct {
	Data     []byte
	MIMEType string
	Name     string
}

// Kind identifies the format family a file is routed to.
type Kind string

const (
	KindPDF         Kind = "pdf"
	KindWord        Kind = "word"
	KindSpreadsheet Kind = "spreadsheet"
	KindImage       Kind = "image"
	KindUnknown     Kind = "unknown"
)

// Backend extracts plain text from one format family.
type Backend interface {
	Extract(data []byte, name string) (string, error)
}

// rule pairs a predicate with the kind it selects. Rules are evaluated
// in order; the first match wins, so PDF takes precedence over everything.
type rule struct {
	kind  Kind
	match func(mime, name string) bool
}

var rules = []rule{
	{KindPDF, func(mime, name string) bool {
		return mime == "application/pdf" || strings.HasSuffix(name, ".pdf")
	}},
	{KindWord, func(mime, name string) bool {
		return mime == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" ||
			mime == "application/msword" ||
			strings.HasSuffix(name, ".docx") ||
			strings.HasSuffix(name, ".doc")
	}},
	{KindSpreadsheet, func(mime, name string) bool {
		return mime == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" ||
			mime == "application/vnd.ms-excel" ||
			strings.HasSuffix(name, ".xlsx") ||
			strings.HasSuffix(name, ".xls")
	}},
	{KindImage, func(mime, _ string) bool {
		return strings.HasPrefix(mime, "image/")
	}},
}

// Detect determines the format family from the declared mime type and
// filename. The filename comparison is case-insensitive.
func Detect(mimeType, name string) Kind {
	name = strings.ToLower(name)
	for _, r := range rules {
		if r.match(mimeType, name) {
			return r.kind
		}
	}
	return KindUnknown
}

// Extractor routes files to format backends.
type Extractor struct {
	backends map[Kind]Backend
}

// New creates an extractor with the default backends registered. The OCR
// backend is configured for the given Tesseract languages.
func New(ocrLanguages ...string) *Extractor {
	e := &Extractor{backends: make(map[Kind]Backend)}
	e.Register(KindWord, NewWordBackend())
	e.Register(KindSpreadsheet, NewSpreadsheetBackend())
	e.Register(KindImage, NewOCRBackend(ocrLanguages...))
	return e
}

// Register replaces the backend for a format family.
func (e *Extractor) Register(kind Kind, b Backend) {
	e.backends[kind] = b
}

// Extract returns the plain text of a file, or a sentinel string when
// the format is unsupported or the backend fails. It never errors.
func (e *Extractor) Extract(f File) string {
	switch kind := Detect(f.MIMEType, f.Name); kind {
	case KindPDF:
		// PDFs are rejected before any parsing is attempted.
		return SentinelPDF
	case KindWord, KindSpreadsheet, KindImage:
		backend, ok := e.backends[kind]
		if !ok {
			return SentinelUnsupported
		}
		text, err := backend.Extract(f.Data, f.Name)
		if err != nil {
			return SentinelError(err)
		}
		return text
	default:
		return SentinelUnsupported
	}
}

// ExtractAll extracts every file sequentially, preserving input order.
func (e *Extractor) ExtractAll(files []File) []string {
	texts := make([]string, 0, len(files))
	for _, f := range files {
		texts = append(texts, e.Extract(f))
	}
	return texts
}
