// Package extract converts uploaded files into plain text for ingestion.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/inkwell-labs/inkwell/internal/domain"
)

// Extractor implements text extraction by file extension.
type Extractor struct{}

// NewExtractor creates a new Extractor instance
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract converts file data to plain text and reports the detected type.
// The format is decided by extension; unsupported extensions are rejected
// before any parsing happens.
func (e *Extractor) Extract(filename string, data []byte) (string, domain.DocumentType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := extractPDF(data)
		return text, domain.DocumentTypePDF, err
	case ".txt":
		text, err := extractPlain(data)
		return text, domain.DocumentTypeTXT, err
	case ".md", ".markdown":
		text, err := extractPlain(data)
		return text, domain.DocumentTypeMD, err
	default:
		return "", "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
}

func extractPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8")
	}
	return string(data), nil
}
