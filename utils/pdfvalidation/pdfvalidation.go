package pdfvalidation

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Limits defines the validation limits for PDF uploads
type Limits struct {
	MaxFileSizeMB int
	MaxPages      int
}

// MaterialLimits bounds uploaded preparation-material PDFs (notes,
// question sheets).
var MaterialLimits = Limits{
	MaxFileSizeMB: 20,
	MaxPages:      200,
}

// Result contains the result of PDF validation. A non-empty Error means
// the file was rejected; a non-nil error return means we could not even
// attempt validation.
type Result struct {
	Valid     bool
	PageCount int
	FileSize  int64
	Error     string
}

// ValidateBytes validates PDF content against the given limits.
func ValidateBytes(content []byte, limits Limits) (*Result, error) {
	result := &Result{
		FileSize: int64(len(content)),
	}

	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if result.FileSize > maxSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
		return result, nil
	}

	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		result.Error = "Invalid PDF file: missing PDF header"
		return result, nil
	}

	pageCount, err := pageCountOf(content)
	if err != nil {
		result.Error = fmt.Sprintf("Failed to read PDF: %v", err)
		return result, nil
	}

	result.PageCount = pageCount

	if pageCount == 0 {
		result.Error = "PDF has no pages"
		return result, nil
	}

	if pageCount > limits.MaxPages {
		result.Error = fmt.Sprintf("PDF has %d pages, which exceeds the maximum of %d pages",
			pageCount, limits.MaxPages)
		return result, nil
	}

	result.Valid = true
	return result, nil
}

func pageCountOf(content []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
