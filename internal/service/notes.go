package service

import (
	"context"
	"time"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/pagination"
	"github.com/inkwell-labs/inkwell/internal/telemetry"
)

// TruncationMarker is appended to note content that was cut at the length cap.
const TruncationMarker = "\n… [truncated]"

// DefaultNoteMaxChars caps derived note content length in runes.
const DefaultNoteMaxChars = 8000

// NoteRepositoryInterface defines the repository interface for note persistence
type NoteRepositoryInterface interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	ListByNotebook(ctx context.Context, notebookID string, cursor *pagination.Cursor, limit int) (*NotePageResult, error)
	Update(ctx context.Context, n *domain.Note) error
	Delete(ctx context.Context, id string) error
}

type NotePageResult struct {
	Items      []*domain.Note
	NextCursor string
	HasMore    bool
}

// ChatReaderInterface is the chat surface note derivation needs.
type ChatReaderInterface interface {
	GetByID(ctx context.Context, id string) (*domain.ChatTurn, error)
}

// DeriveNoteContent applies the length cap to response text being saved as a
// note. Content at or under the cap passes through verbatim; longer content
// is cut at the cap (counted in runes) and the truncation marker appended, so
// truncation is always visible to the reader.
func DeriveNoteContent(content string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultNoteMaxChars
	}
	runes := []rune(content)
	if len(runes) <= maxChars {
		return content
	}
	return string(runes[:maxChars]) + TruncationMarker
}

// NoteService handles business logic for notes
type NoteService struct {
	notebookRepo NotebookRepositoryInterface
	noteRepo     NoteRepositoryInterface
	chatReader   ChatReaderInterface
	maxChars     int
	uuidGen      UUIDGenerator
}

// NewNoteService creates a new NoteService instance
func NewNoteService(
	notebookRepo NotebookRepositoryInterface,
	noteRepo NoteRepositoryInterface,
	chatReader ChatReaderInterface,
	maxChars int,
) *NoteService {
	if maxChars <= 0 {
		maxChars = DefaultNoteMaxChars
	}
	return &NoteService{
		notebookRepo: notebookRepo,
		noteRepo:     noteRepo,
		chatReader:   chatReader,
		maxChars:     maxChars,
		uuidGen:      &DefaultUUIDGenerator{},
	}
}

// CreateManualInput represents the input for creating a manual note
type CreateManualInput struct {
	UserID     string
	NotebookID string
	Content    string
}

// CreateFromChatInput represents the input for saving a response as a note
type CreateFromChatInput struct {
	UserID     string
	NotebookID string
	ChatID     string
}

type ListNotesInput struct {
	UserID     string
	NotebookID string
	Cursor     string
	Limit      int
}

type ListNotesOutput struct {
	Items   []*domain.Note
	Cursor  string
	HasMore bool
}

// CreateManual creates a hand-written note
func (s *NoteService) CreateManual(ctx context.Context, input CreateManualInput) (*domain.Note, error) {
	if _, err := s.notebookRepo.GetByIDForUser(ctx, input.NotebookID, input.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &domain.Note{
		ID:         s.uuidGen.NewString(),
		NotebookID: input.NotebookID,
		Content:    DeriveNoteContent(input.Content, s.maxChars),
		SourceType: domain.NoteSourceManual,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := domain.ValidateNote(note); err != nil {
		return nil, err
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// CreateFromChat derives a note from a chat response. The note copies the
// response text (capped), tags it ai_generated, and links back to the turn.
func (s *NoteService) CreateFromChat(ctx context.Context, input CreateFromChatInput) (*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.CreateFromChat", telemetry.SpanAttributes{
		UserID:     input.UserID,
		NotebookID: input.NotebookID,
		Operation:  "save_note",
	})
	defer span.End()

	if _, err := s.notebookRepo.GetByIDForUser(ctx, input.NotebookID, input.UserID); err != nil {
		return nil, err
	}
	turn, err := s.chatReader.GetByID(ctx, input.ChatID)
	if err != nil {
		return nil, err
	}
	if turn.NotebookID != input.NotebookID {
		return nil, domain.ErrChatTurnNotFound
	}

	now := time.Now().UTC()
	note := &domain.Note{
		ID:           s.uuidGen.NewString(),
		NotebookID:   input.NotebookID,
		Content:      DeriveNoteContent(turn.AIResponse, s.maxChars),
		SourceType:   domain.NoteSourceAIGenerated,
		LinkedChatID: turn.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := domain.ValidateNote(note); err != nil {
		return nil, err
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		span.SetError(err)
		return nil, err
	}
	return note, nil
}

// Get retrieves a note, enforcing user ownership through its notebook
func (s *NoteService) Get(ctx context.Context, id, userID string) (*domain.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.notebookRepo.GetByIDForUser(ctx, note.NotebookID, userID); err != nil {
		return nil, err
	}
	return note, nil
}

// List retrieves a notebook's notes with cursor pagination
func (s *NoteService) List(ctx context.Context, input ListNotesInput) (*ListNotesOutput, error) {
	if _, err := s.notebookRepo.GetByIDForUser(ctx, input.NotebookID, input.UserID); err != nil {
		return nil, err
	}

	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := pagination.ClampLimit(input.Limit)

	result, err := s.noteRepo.ListByNotebook(ctx, input.NotebookID, cursor, limit)
	if err != nil {
		return nil, err
	}
	return &ListNotesOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// UpdateContent replaces a note's content. Both manual and derived notes are
// editable; editing never changes the source type or the chat link.
func (s *NoteService) UpdateContent(ctx context.Context, id, userID, content string) (*domain.Note, error) {
	note, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	note.Content = DeriveNoteContent(content, s.maxChars)
	note.UpdatedAt = time.Now().UTC()

	if err := domain.ValidateNote(note); err != nil {
		return nil, err
	}
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note
func (s *NoteService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	return s.noteRepo.Delete(ctx, id)
}
