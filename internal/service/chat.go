package service

import (
	"context"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/pagination"
)

// ChatRepositoryInterface defines the repository interface for chat history persistence
type ChatRepositoryInterface interface {
	Create(ctx context.Context, t *domain.ChatTurn) error
	GetByID(ctx context.Context, id string) (*domain.ChatTurn, error)
	ListByNotebook(ctx context.Context, notebookID string, cursor *pagination.Cursor, limit int) (*ChatPageResult, error)
	Delete(ctx context.Context, id string) error
	DeleteByNotebook(ctx context.Context, notebookID string) error
}

type ChatPageResult struct {
	Items      []*domain.ChatTurn
	NextCursor string
	HasMore    bool
}

// ChatService handles business logic for notebook chat history
type ChatService struct {
	notebookRepo NotebookRepositoryInterface
	chatRepo     ChatRepositoryInterface
}

// NewChatService creates a new ChatService instance
func NewChatService(notebookRepo NotebookRepositoryInterface, chatRepo ChatRepositoryInterface) *ChatService {
	return &ChatService{notebookRepo: notebookRepo, chatRepo: chatRepo}
}

type ListChatInput struct {
	UserID     string
	NotebookID string
	Cursor     string
	Limit      int
}

type ListChatOutput struct {
	Items   []*domain.ChatTurn
	Cursor  string
	HasMore bool
}

// List retrieves a notebook's chat history, newest first
func (s *ChatService) List(ctx context.Context, input ListChatInput) (*ListChatOutput, error) {
	if _, err := s.notebookRepo.GetByIDForUser(ctx, input.NotebookID, input.UserID); err != nil {
		return nil, err
	}

	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := pagination.ClampLimit(input.Limit)

	result, err := s.chatRepo.ListByNotebook(ctx, input.NotebookID, cursor, limit)
	if err != nil {
		return nil, err
	}
	return &ListChatOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Delete removes one chat turn. Notes linked to it keep their content; the
// link degrades at the store level.
func (s *ChatService) Delete(ctx context.Context, id, userID string) error {
	turn, err := s.chatRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.notebookRepo.GetByIDForUser(ctx, turn.NotebookID, userID); err != nil {
		return err
	}
	return s.chatRepo.Delete(ctx, id)
}

// Clear removes a notebook's entire chat history
func (s *ChatService) Clear(ctx context.Context, notebookID, userID string) error {
	if _, err := s.notebookRepo.GetByIDForUser(ctx, notebookID, userID); err != nil {
		return err
	}
	return s.chatRepo.DeleteByNotebook(ctx, notebookID)
}
