//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/testutil"
)

func newTestChatTurn(notebookID string, createdAt time.Time) *domain.ChatTurn {
	return &domain.ChatTurn{
		ID:         uuid.NewString(),
		NotebookID: notebookID,
		UserPrompt: "What does the report say?",
		AIResponse: "The report says revenue grew [Document: report.pdf].",
		Metadata: domain.TurnMetadata{
			Citations:           []domain.Citation{{Type: "document", Reference: "report.pdf"}},
			RetrievedChunks:     3,
			DocumentsReferenced: []string{"report.pdf"},
		},
		CreatedAt: createdAt,
	}
}

func TestChatRepository_CreateAndGet_MetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	notebookRepo := NewNotebookRepository(pool)
	chatRepo := NewChatRepository(pool)

	nb := newTestNotebook("user-1", "Notebook")
	require.NoError(t, notebookRepo.Create(ctx, nb))

	turn := newTestChatTurn(nb.ID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, chatRepo.Create(ctx, turn))

	got, err := chatRepo.GetByID(ctx, turn.ID)
	require.NoError(t, err)
	assert.Equal(t, turn.UserPrompt, got.UserPrompt)
	assert.Equal(t, turn.AIResponse, got.AIResponse)
	assert.Equal(t, turn.Metadata.RetrievedChunks, got.Metadata.RetrievedChunks)
	assert.Equal(t, turn.Metadata.Citations, got.Metadata.Citations)
	assert.Equal(t, turn.Metadata.DocumentsReferenced, got.Metadata.DocumentsReferenced)
}

func TestChatRepository_ListByNotebook_Pagination(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	notebookRepo := NewNotebookRepository(pool)
	chatRepo := NewChatRepository(pool)

	nb := newTestNotebook("user-1", "Notebook")
	require.NoError(t, notebookRepo.Create(ctx, nb))

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 4; i++ {
		turn := newTestChatTurn(nb.ID, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, chatRepo.Create(ctx, turn))
	}

	page, err := chatRepo.ListByNotebook(ctx, nb.ID, nil, 3)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextCursor)

	// Newest first.
	for i := 1; i < len(page.Items); i++ {
		assert.False(t, page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt))
	}
}

func TestChatRepository_DeleteByNotebook(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	notebookRepo := NewNotebookRepository(pool)
	chatRepo := NewChatRepository(pool)

	nb := newTestNotebook("user-1", "Notebook")
	require.NoError(t, notebookRepo.Create(ctx, nb))

	turn := newTestChatTurn(nb.ID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, chatRepo.Create(ctx, turn))
	require.NoError(t, chatRepo.DeleteByNotebook(ctx, nb.ID))

	_, err := chatRepo.GetByID(ctx, turn.ID)
	assert.ErrorIs(t, err, domain.ErrChatTurnNotFound)
}

func TestNoteRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	notebookRepo := NewNotebookRepository(pool)
	noteRepo := NewNoteRepository(pool)

	nb := newTestNotebook("user-1", "Notebook")
	require.NoError(t, notebookRepo.Create(ctx, nb))

	now := time.Now().UTC().Truncate(time.Microsecond)
	note := &domain.Note{
		ID:         uuid.NewString(),
		NotebookID: nb.ID,
		Content:    "a manual note",
		SourceType: domain.NoteSourceManual,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, noteRepo.Create(ctx, note))

	got, err := noteRepo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "a manual note", got.Content)
	assert.Equal(t, domain.NoteSourceManual, got.SourceType)
	assert.Empty(t, got.LinkedChatID)
}

func TestNoteRepository_LinkedChatSetNullOnChatDelete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	notebookRepo := NewNotebookRepository(pool)
	chatRepo := NewChatRepository(pool)
	noteRepo := NewNoteRepository(pool)

	nb := newTestNotebook("user-1", "Notebook")
	require.NoError(t, notebookRepo.Create(ctx, nb))

	turn := newTestChatTurn(nb.ID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, chatRepo.Create(ctx, turn))

	now := time.Now().UTC().Truncate(time.Microsecond)
	note := &domain.Note{
		ID:           uuid.NewString(),
		NotebookID:   nb.ID,
		Content:      "derived from a response",
		SourceType:   domain.NoteSourceAIGenerated,
		LinkedChatID: turn.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, noteRepo.Create(ctx, note))

	// Deleting the chat turn degrades the link, never the note.
	require.NoError(t, chatRepo.Delete(ctx, turn.ID))

	got, err := noteRepo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "derived from a response", got.Content)
	assert.Empty(t, got.LinkedChatID)
}

func TestNoteRepository_NotebookDeleteCascades(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	notebookRepo := NewNotebookRepository(pool)
	chatRepo := NewChatRepository(pool)
	noteRepo := NewNoteRepository(pool)

	nb := newTestNotebook("user-1", "Notebook")
	require.NoError(t, notebookRepo.Create(ctx, nb))

	turn := newTestChatTurn(nb.ID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, chatRepo.Create(ctx, turn))

	now := time.Now().UTC().Truncate(time.Microsecond)
	note := &domain.Note{
		ID:         uuid.NewString(),
		NotebookID: nb.ID,
		Content:    "note content",
		SourceType: domain.NoteSourceManual,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, noteRepo.Create(ctx, note))

	require.NoError(t, notebookRepo.Delete(ctx, nb.ID))

	_, err := chatRepo.GetByID(ctx, turn.ID)
	assert.ErrorIs(t, err, domain.ErrChatTurnNotFound)
	_, err = noteRepo.GetByID(ctx, note.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}
