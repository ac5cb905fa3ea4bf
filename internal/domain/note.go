package domain

import "time"

// NoteSource tags how a note was created.
type NoteSource string

const (
	NoteSourceManual      NoteSource = "manual"
	NoteSourceAIGenerated NoteSource = "ai_generated"
)

// Note is a mutable text artifact derived from a chat response or entered by
// hand. Its lifecycle is independent from the chat turn it may link to:
// deleting the chat turn degrades LinkedChatID to empty, never the note.
type Note struct {
	ID           string
	NotebookID   string
	Content      string
	SourceType   NoteSource
	LinkedChatID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateNote checks required fields and the source type.
func ValidateNote(n *Note) error {
	if n.ID == "" || n.NotebookID == "" || n.Content == "" {
		return ErrMissingRequiredField
	}
	switch n.SourceType {
	case NoteSourceManual, NoteSourceAIGenerated:
		return nil
	default:
		return ErrInvalidNoteSource
	}
}
