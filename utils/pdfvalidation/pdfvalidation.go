package pdfvalidation

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFLimits defines the validation limits for PDF uploads
type PDFLimits struct {
	MaxFileSizeMB int // Maximum file size in MB
	MaxPages      int // Maximum number of pages
}

// UploadLimits applies to note and assignment uploads.
var UploadLimits = PDFLimits{
	MaxFileSizeMB: 10,
	MaxPages:      500,
}

// ValidationResult contains the result of PDF validation
type ValidationResult struct {
	Valid     bool
	PageCount int
	FileSize  int64
	Error     string
}

// ValidatePDFFile checks that an uploaded PDF is within limits and actually
// parses as a PDF. A corrupt or oversized file comes back with Valid=false
// and a caller-facing Error; an I/O failure is returned as err.
func ValidatePDFFile(file *multipart.FileHeader, limits PDFLimits) (*ValidationResult, error) {
	result := &ValidationResult{
		FileSize: file.Size,
	}

	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
		return result, nil
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		result.Error = "Only PDF files are supported"
		return result, nil
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer fileContent.Close()

	content, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		result.Error = "File is not a readable PDF"
		return result, nil
	}

	result.PageCount = reader.NumPage()
	if limits.MaxPages > 0 && result.PageCount > limits.MaxPages {
		result.Error = fmt.Sprintf("PDF exceeds maximum of %d pages", limits.MaxPages)
		return result, nil
	}

	result.Valid = true
	return result, nil
}
