package domain

import "time"

// Citation references a source document whose content was included in the
// grounding context that produced a response.
type Citation struct {
	Type      string `json:"type"`
	Reference string `json:"reference"`
}

// TurnMetadata records how a response was grounded. RetrievedChunks is always
// present, even when zero, so the UI can signal "no sources used".
type TurnMetadata struct {
	Citations           []Citation `json:"citations"`
	RetrievedChunks     int        `json:"retrieved_chunks"`
	DocumentsReferenced []string   `json:"documents_referenced"`
}

// ChatTurn is one prompt/response pair in a notebook's append-only history.
type ChatTurn struct {
	ID         string
	NotebookID string
	UserPrompt string
	AIResponse string
	Metadata   TurnMetadata
	CreatedAt  time.Time
}

// ValidateChatTurn checks required fields before persistence.
func ValidateChatTurn(t *ChatTurn) error {
	if t.ID == "" || t.NotebookID == "" || t.UserPrompt == "" {
		return ErrMissingRequiredField
	}
	return nil
}
