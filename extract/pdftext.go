package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFText converts a PDF file to plain text. This is the CPU-bound step; the
// caller is expected to run it off the UI thread.
func PDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	if buf.Len() == 0 {
		return "", fmt.Errorf("pdf %s contains no extractable text", path)
	}
	return buf.String(), nil
}
