package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/pagination"
	"github.com/inkwell-labs/inkwell/internal/telemetry"
)

// NotebookRepositoryInterface defines the repository interface for notebook persistence
type NotebookRepositoryInterface interface {
	Create(ctx context.Context, n *domain.Notebook) error
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Notebook, error)
	ListByUser(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) (*NotebookPageResult, error)
	Update(ctx context.Context, n *domain.Notebook) error
	Delete(ctx context.Context, id string) error
}

type NotebookPageResult struct {
	Items      []*domain.Notebook
	NextCursor string
	HasMore    bool
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// NotebookService handles business logic for notebooks
type NotebookService struct {
	notebookRepo NotebookRepositoryInterface
	uuidGen      UUIDGenerator
}

// NewNotebookService creates a new NotebookService instance
func NewNotebookService(notebookRepo NotebookRepositoryInterface) *NotebookService {
	return &NotebookService{
		notebookRepo: notebookRepo,
		uuidGen:      &DefaultUUIDGenerator{},
	}
}

// CreateNotebookInput represents the input for creating a notebook
type CreateNotebookInput struct {
	UserID string
	Title  string
}

type ListNotebooksInput struct {
	UserID string
	Cursor string
	Limit  int
}

type ListNotebooksOutput struct {
	Items   []*domain.Notebook
	Cursor  string
	HasMore bool
}

// Create creates a new notebook for a user
func (s *NotebookService) Create(ctx context.Context, input CreateNotebookInput) (*domain.Notebook, error) {
	ctx, span := telemetry.StartSpan(ctx, "NotebookService.Create", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "create",
	})
	defer span.End()

	now := time.Now().UTC()
	notebook := &domain.Notebook{
		ID:        s.uuidGen.NewString(),
		UserID:    input.UserID,
		Title:     input.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := domain.ValidateNotebook(notebook); err != nil {
		return nil, err
	}
	if err := s.notebookRepo.Create(ctx, notebook); err != nil {
		return nil, err
	}
	return notebook, nil
}

// Get retrieves a notebook, enforcing user ownership
func (s *NotebookService) Get(ctx context.Context, id, userID string) (*domain.Notebook, error) {
	return s.notebookRepo.GetByIDForUser(ctx, id, userID)
}

// List retrieves a user's notebooks with cursor pagination
func (s *NotebookService) List(ctx context.Context, input ListNotebooksInput) (*ListNotebooksOutput, error) {
	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := pagination.ClampLimit(input.Limit)

	result, err := s.notebookRepo.ListByUser(ctx, input.UserID, cursor, limit)
	if err != nil {
		return nil, err
	}
	return &ListNotebooksOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Rename updates a notebook's title
func (s *NotebookService) Rename(ctx context.Context, id, userID, title string) (*domain.Notebook, error) {
	notebook, err := s.notebookRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	notebook.Title = title
	notebook.UpdatedAt = time.Now().UTC()

	if err := domain.ValidateNotebook(notebook); err != nil {
		return nil, err
	}
	if err := s.notebookRepo.Update(ctx, notebook); err != nil {
		return nil, err
	}
	return notebook, nil
}

// Delete removes a notebook and everything it owns. Documents, embeddings,
// chat history, and notes cascade at the store level.
func (s *NotebookService) Delete(ctx context.Context, id, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "NotebookService.Delete", telemetry.SpanAttributes{
		UserID:     userID,
		NotebookID: id,
		Operation:  "delete",
	})
	defer span.End()

	if _, err := s.notebookRepo.GetByIDForUser(ctx, id, userID); err != nil {
		return err
	}
	return s.notebookRepo.Delete(ctx, id)
}
