package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetBackend extracts text from Excel workbooks by serializing
// every sheet to CSV.
type SpreadsheetBackend struct{}

// NewSpreadsheetBackend creates a new spreadsheet backend.
func NewSpreadsheetBackend() *SpreadsheetBackend {
	return &SpreadsheetBackend{}
}

// Extract renders each sheet as one CSV block terminated by a newline,
// concatenated in workbook sheet order.
func (b *SpreadsheetBackend) Extract(data []byte, _ string) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
		}
		block, err := rowsToCSV(rows)
		if err != nil {
			return "", fmt.Errorf("failed to serialize sheet %s: %w", sheetName, err)
		}
		out.WriteString(block + "\n")
	}
	return out.String(), nil
}

func rowsToCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
