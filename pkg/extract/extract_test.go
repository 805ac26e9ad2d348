package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		fileName string
		want     Kind
	}{
		{"pdf by mime", "application/pdf", "contract.bin", KindPDF},
		{"pdf by suffix", "application/octet-stream", "contract.pdf", KindPDF},
		{"pdf suffix uppercase", "", "CONTRACT.PDF", KindPDF},
		{"docx by mime", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "upload", KindWord},
		{"doc by mime", "application/msword", "upload", KindWord},
		{"docx by suffix", "", "nda.docx", KindWord},
		{"doc by suffix", "", "old.DOC", KindWord},
		{"xlsx by mime", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "upload", KindSpreadsheet},
		{"xls by mime", "application/vnd.ms-excel", "upload", KindSpreadsheet},
		{"xlsx by suffix", "", "fees.xlsx", KindSpreadsheet},
		{"image png", "image/png", "scan.png", KindImage},
		{"image jpeg", "image/jpeg", "photo", KindImage},
		{"pdf wins over image mime", "image/png", "scan.pdf", KindPDF},
		{"plain text", "text/plain", "notes.txt", KindUnknown},
		{"empty everything", "", "", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.mimeType, tt.fileName); got != tt.want {
				t.Errorf("Detect(%q, %q) = %q, want %q", tt.mimeType, tt.fileName, got, tt.want)
			}
		})
	}
}

func TestExtractPDFSentinel(t *testing.T) {
	e := New()
	// Content does not matter: PDFs are rejected before parsing.
	got := e.Extract(File{Data: []byte("%PDF-1.7 ..."), MIMEType: "application/pdf", Name: "contract.pdf"})
	if got != SentinelPDF {
		t.Errorf("Expected %q, got %q", SentinelPDF, got)
	}
}

func TestExtractUnsupportedSentinel(t *testing.T) {
	e := New()
	got := e.Extract(File{Data: []byte("hello"), MIMEType: "text/plain", Name: "notes.txt"})
	if got != SentinelUnsupported {
		t.Errorf("Expected %q, got %q", SentinelUnsupported, got)
	}
}

func TestExtractWordGarbage(t *testing.T) {
	e := New()
	got := e.Extract(File{Data: []byte("not a zip archive"), MIMEType: "application/msword", Name: "broken.docx"})
	if !strings.HasPrefix(got, "[extraction error: ") || !strings.HasSuffix(got, "]") {
		t.Errorf("Expected extraction error sentinel, got %q", got)
	}
}

func TestExtractSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue("Sheet1", "A1", "Item"); err != nil {
		t.Fatalf("Failed to set cell: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "B1", "Fee"); err != nil {
		t.Fatalf("Failed to set cell: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "A2", "Setup"); err != nil {
		t.Fatalf("Failed to set cell: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "B2", "100"); err != nil {
		t.Fatalf("Failed to set cell: %v", err)
	}
	if _, err := f.NewSheet("Terms"); err != nil {
		t.Fatalf("Failed to add sheet: %v", err)
	}
	if err := f.SetCellValue("Terms", "A1", "Term"); err != nil {
		t.Fatalf("Failed to set cell: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}

	e := New()
	got := e.Extract(File{Data: buf.Bytes(), MIMEType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Name: "fees.xlsx"})

	if strings.HasPrefix(got, "[") {
		t.Fatalf("Expected extracted CSV, got sentinel %q", got)
	}
	if !strings.Contains(got, "Item,Fee\n") {
		t.Errorf("Expected header row as CSV, got %q", got)
	}
	if !strings.Contains(got, "Setup,100\n") {
		t.Errorf("Expected data row as CSV, got %q", got)
	}
	// Sheet order is preserved and each sheet's block ends with a newline.
	if !strings.HasSuffix(got, "Term\n") {
		t.Errorf("Expected second sheet block at the end, got %q", got)
	}
	if strings.Index(got, "Item,Fee") > strings.Index(got, "Term") {
		t.Errorf("Sheet blocks out of order: %q", got)
	}
}

func TestExtractSpreadsheetGarbage(t *testing.T) {
	e := New()
	got := e.Extract(File{Data: []byte{0x00, 0x01}, MIMEType: "application/vnd.ms-excel", Name: "fees.xls"})
	if !strings.HasPrefix(got, "[extraction error: ") {
		t.Errorf("Expected extraction error sentinel, got %q", got)
	}
}

// stubBackend lets tests observe routing without a real parser.
type stubBackend struct {
	text  string
	err   error
	calls int
}

func (s *stubBackend) Extract(data []byte, name string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestExtractImageRouting(t *testing.T) {
	stub := &stubBackend{text: "第5条 解約"}
	e := New()
	e.Register(KindImage, stub)

	got := e.Extract(File{Data: []byte("fake image"), MIMEType: "image/png", Name: "scan.png"})
	if got != "第5条 解約" {
		t.Errorf("Expected stub text, got %q", got)
	}
	if stub.calls != 1 {
		t.Errorf("Expected one backend call, got %d", stub.calls)
	}
}

func TestExtractBackendError(t *testing.T) {
	stub := &stubBackend{err: errors.New("ocr failed")}
	e := New()
	e.Register(KindImage, stub)

	got := e.Extract(File{MIMEType: "image/jpeg", Name: "photo.jpg"})
	if got != "[extraction error: ocr failed]" {
		t.Errorf("Expected error sentinel, got %q", got)
	}
}

func TestExtractAllPreservesOrder(t *testing.T) {
	wordStub := &stubBackend{text: "word text"}
	imageStub := &stubBackend{text: "image text"}
	e := New()
	e.Register(KindWord, wordStub)
	e.Register(KindImage, imageStub)

	texts := e.ExtractAll([]File{
		{MIMEType: "image/png", Name: "a.png"},
		{MIMEType: "application/pdf", Name: "b.pdf"},
		{MIMEType: "application/msword", Name: "c.docx"},
	})

	want := []string{"image text", SentinelPDF, "word text"}
	if len(texts) != len(want) {
		t.Fatalf("Expected %d texts, got %d", len(want), len(texts))
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("texts[%d] = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestExtractAllEmpty(t *testing.T) {
	e := New()
	texts := e.ExtractAll(nil)
	if texts == nil {
		t.Fatal("ExtractAll must return a non-nil slice")
	}
	if len(texts) != 0 {
		t.Errorf("Expected empty slice, got %v", texts)
	}
}
