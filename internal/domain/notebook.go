package domain

import "time"

// Notebook groups a user's documents, chat history, and notes.
type Notebook struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateNotebook checks required fields before persistence.
func ValidateNotebook(n *Notebook) error {
	if n.ID == "" || n.UserID == "" || n.Title == "" {
		return ErrMissingRequiredField
	}
	return nil
}
