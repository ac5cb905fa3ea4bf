package domain

import "time"

// DocumentType identifies the source format of an ingested document.
type DocumentType string

const (
	DocumentTypePDF DocumentType = "PDF"
	DocumentTypeTXT DocumentType = "TXT"
	DocumentTypeMD  DocumentType = "MD"
	DocumentTypeURL DocumentType = "URL"
)

// Document is an immutable piece of source material owned by a notebook.
// Deleting a document cascades to its chunks and embeddings.
type Document struct {
	ID         string
	NotebookID string
	Filename   string
	FileType   DocumentType
	Content    string
	CreatedAt  time.Time
}

// ValidateDocument checks required fields before persistence.
func ValidateDocument(d *Document) error {
	if d.ID == "" || d.NotebookID == "" || d.Filename == "" {
		return ErrMissingRequiredField
	}
	switch d.FileType {
	case DocumentTypePDF, DocumentTypeTXT, DocumentTypeMD, DocumentTypeURL:
		return nil
	default:
		return ErrInvalidDocumentType
	}
}
