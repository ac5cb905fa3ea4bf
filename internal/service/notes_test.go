package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell/internal/domain"
)

func TestDeriveNoteContent(t *testing.T) {
	t.Run("content under cap passes through", func(t *testing.T) {
		assert.Equal(t, "short note", DeriveNoteContent("short note", 100))
	})

	t.Run("content exactly at cap passes through", func(t *testing.T) {
		content := strings.Repeat("a", 100)
		assert.Equal(t, content, DeriveNoteContent(content, 100))
	})

	t.Run("content over cap is truncated with marker", func(t *testing.T) {
		content := strings.Repeat("a", 101)
		got := DeriveNoteContent(content, 100)
		assert.Equal(t, strings.Repeat("a", 100)+TruncationMarker, got)
	})

	t.Run("cap counts runes not bytes", func(t *testing.T) {
		content := strings.Repeat("é", 100)
		assert.Equal(t, content, DeriveNoteContent(content, 100))

		got := DeriveNoteContent(strings.Repeat("é", 101), 100)
		assert.Equal(t, strings.Repeat("é", 100)+TruncationMarker, got)
	})

	t.Run("non-positive cap uses default", func(t *testing.T) {
		content := strings.Repeat("a", DefaultNoteMaxChars+1)
		got := DeriveNoteContent(content, 0)
		assert.Equal(t, strings.Repeat("a", DefaultNoteMaxChars)+TruncationMarker, got)
	})
}

func TestNoteService_CreateManual(t *testing.T) {
	ctx := context.Background()
	notebookRepo := new(MockNotebookRepository)
	noteRepo := new(MockNoteRepository)
	chatRepo := new(MockChatRepository)
	svc := NewNoteService(notebookRepo, noteRepo, chatRepo, 0)

	notebookRepo.On("GetByIDForUser", mock.Anything, "nb-1", "user-1").Return(&domain.Notebook{ID: "nb-1", UserID: "user-1"}, nil)
	noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Note")).Return(nil)

	note, err := svc.CreateManual(ctx, CreateManualInput{UserID: "user-1", NotebookID: "nb-1", Content: "my note"})
	require.NoError(t, err)
	assert.Equal(t, "my note", note.Content)
	assert.Equal(t, domain.NoteSourceManual, note.SourceType)
	assert.Empty(t, note.LinkedChatID)
	noteRepo.AssertExpectations(t)
}

func TestNoteService_CreateManual_NotebookNotFound(t *testing.T) {
	ctx := context.Background()
	notebookRepo := new(MockNotebookRepository)
	noteRepo := new(MockNoteRepository)
	chatRepo := new(MockChatRepository)
	svc := NewNoteService(notebookRepo, noteRepo, chatRepo, 0)

	notebookRepo.On("GetByIDForUser", mock.Anything, "nb-missing", "user-1").Return(nil, domain.ErrNotebookNotFound)

	_, err := svc.CreateManual(ctx, CreateManualInput{UserID: "user-1", NotebookID: "nb-missing", Content: "my note"})
	assert.ErrorIs(t, err, domain.ErrNotebookNotFound)
	noteRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNoteService_CreateFromChat(t *testing.T) {
	ctx := context.Background()
	notebookRepo := new(MockNotebookRepository)
	noteRepo := new(MockNoteRepository)
	chatRepo := new(MockChatRepository)
	svc := NewNoteService(notebookRepo, noteRepo, chatRepo, 50)

	response := strings.Repeat("r", 80)
	notebookRepo.On("GetByIDForUser", mock.Anything, "nb-1", "user-1").Return(&domain.Notebook{ID: "nb-1", UserID: "user-1"}, nil)
	chatRepo.On("GetByID", mock.Anything, "chat-1").Return(&domain.ChatTurn{
		ID:         "chat-1",
		NotebookID: "nb-1",
		UserPrompt: "question",
		AIResponse: response,
	}, nil)
	noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Note")).Return(nil)

	note, err := svc.CreateFromChat(ctx, CreateFromChatInput{UserID: "user-1", NotebookID: "nb-1", ChatID: "chat-1"})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("r", 50)+TruncationMarker, note.Content)
	assert.Equal(t, domain.NoteSourceAIGenerated, note.SourceType)
	assert.Equal(t, "chat-1", note.LinkedChatID)
}

func TestNoteService_CreateFromChat_TurnInOtherNotebook(t *testing.T) {
	ctx := context.Background()
	notebookRepo := new(MockNotebookRepository)
	noteRepo := new(MockNoteRepository)
	chatRepo := new(MockChatRepository)
	svc := NewNoteService(notebookRepo, noteRepo, chatRepo, 0)

	notebookRepo.On("GetByIDForUser", mock.Anything, "nb-1", "user-1").Return(&domain.Notebook{ID: "nb-1", UserID: "user-1"}, nil)
	chatRepo.On("GetByID", mock.Anything, "chat-1").Return(&domain.ChatTurn{
		ID:         "chat-1",
		NotebookID: "nb-other",
		AIResponse: "response",
	}, nil)

	_, err := svc.CreateFromChat(ctx, CreateFromChatInput{UserID: "user-1", NotebookID: "nb-1", ChatID: "chat-1"})
	assert.ErrorIs(t, err, domain.ErrChatTurnNotFound)
	noteRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNoteService_UpdateContent_PreservesSourceAndLink(t *testing.T) {
	ctx := context.Background()
	notebookRepo := new(MockNotebookRepository)
	noteRepo := new(MockNoteRepository)
	chatRepo := new(MockChatRepository)
	svc := NewNoteService(notebookRepo, noteRepo, chatRepo, 0)

	existing := &domain.Note{
		ID:           "note-1",
		NotebookID:   "nb-1",
		Content:      "old content",
		SourceType:   domain.NoteSourceAIGenerated,
		LinkedChatID: "chat-1",
	}
	noteRepo.On("GetByID", mock.Anything, "note-1").Return(existing, nil)
	notebookRepo.On("GetByIDForUser", mock.Anything, "nb-1", "user-1").Return(&domain.Notebook{ID: "nb-1", UserID: "user-1"}, nil)
	noteRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Note")).Return(nil)

	note, err := svc.UpdateContent(ctx, "note-1", "user-1", "new content")
	require.NoError(t, err)
	assert.Equal(t, "new content", note.Content)
	assert.Equal(t, domain.NoteSourceAIGenerated, note.SourceType)
	assert.Equal(t, "chat-1", note.LinkedChatID)
}
