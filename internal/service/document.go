package service

import (
	"context"
	"time"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/pagination"
	"github.com/inkwell-labs/inkwell/internal/telemetry"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetNames(ctx context.Context, notebookID string) (map[string]string, error)
	ListByNotebook(ctx context.Context, notebookID string, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
	Delete(ctx context.Context, id string) error
}

type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// IngestionJobRepositoryInterface defines the repository interface for ingestion job persistence
type IngestionJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.IngestionJob) error
}

// TxRepositories exposes repositories bound to one transaction.
type TxRepositories interface {
	Documents() DocumentRepositoryInterface
	IngestionJobs() IngestionJobRepositoryInterface
}

// TxRunnerInterface runs a function inside one store transaction.
type TxRunnerInterface interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

// TextExtractor converts an uploaded file into plain text.
type TextExtractor interface {
	Extract(filename string, data []byte) (string, domain.DocumentType, error)
}

// DocumentService handles business logic for documents: upload, extraction,
// and queuing ingestion.
type DocumentService struct {
	notebookRepo NotebookRepositoryInterface
	documentRepo DocumentRepositoryInterface
	txRunner     TxRunnerInterface
	extractor    TextExtractor
	uuidGen      UUIDGenerator
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(
	notebookRepo NotebookRepositoryInterface,
	documentRepo DocumentRepositoryInterface,
	txRunner TxRunnerInterface,
	extractor TextExtractor,
) *DocumentService {
	return &DocumentService{
		notebookRepo: notebookRepo,
		documentRepo: documentRepo,
		txRunner:     txRunner,
		extractor:    extractor,
		uuidGen:      &DefaultUUIDGenerator{},
	}
}

// UploadInput represents the input for uploading a document
type UploadInput struct {
	UserID     string
	NotebookID string
	Filename   string
	Data       []byte
}

type ListDocumentsInput struct {
	UserID     string
	NotebookID string
	Cursor     string
	Limit      int
}

type ListDocumentsOutput struct {
	Items   []*domain.Document
	Cursor  string
	HasMore bool
}

// Upload extracts text from an uploaded file, stores the document, and
// queues an ingestion job. The document row and the job are written in one
// transaction so no document can exist without a queued ingestion.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Upload", telemetry.SpanAttributes{
		UserID:     input.UserID,
		NotebookID: input.NotebookID,
		Operation:  "upload",
	})
	defer span.End()

	if _, err := s.notebookRepo.GetByIDForUser(ctx, input.NotebookID, input.UserID); err != nil {
		return nil, err
	}

	content, fileType, err := s.extractor.Extract(input.Filename, input.Data)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewIngestionError(err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         s.uuidGen.NewString(),
		NotebookID: input.NotebookID,
		Filename:   input.Filename,
		FileType:   fileType,
		Content:    content,
		CreatedAt:  now,
	}
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}

	job := &domain.IngestionJob{
		ID:         s.uuidGen.NewString(),
		DocumentID: doc.ID,
		Status:     domain.IngestionJobStatusPending,
		CreatedAt:  now,
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Documents().Create(ctx, doc); err != nil {
			return err
		}
		return repos.IngestionJobs().Create(ctx, job)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return doc, nil
}

// Get retrieves a document, enforcing user ownership through its notebook
func (s *DocumentService) Get(ctx context.Context, id, userID string) (*domain.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.notebookRepo.GetByIDForUser(ctx, doc.NotebookID, userID); err != nil {
		return nil, err
	}
	return doc, nil
}

// List retrieves a notebook's documents with cursor pagination
func (s *DocumentService) List(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	if _, err := s.notebookRepo.GetByIDForUser(ctx, input.NotebookID, input.UserID); err != nil {
		return nil, err
	}

	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := pagination.ClampLimit(input.Limit)

	result, err := s.documentRepo.ListByNotebook(ctx, input.NotebookID, cursor, limit)
	if err != nil {
		return nil, err
	}
	return &ListDocumentsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Delete removes a document. Stored embeddings and queued jobs cascade at
// the store level.
func (s *DocumentService) Delete(ctx context.Context, id, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		UserID:     userID,
		DocumentID: id,
		Operation:  "delete",
	})
	defer span.End()

	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.notebookRepo.GetByIDForUser(ctx, doc.NotebookID, userID); err != nil {
		return err
	}
	return s.documentRepo.Delete(ctx, id)
}
