package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-labs/inkwell/internal/api"
	"github.com/inkwell-labs/inkwell/internal/api/middleware"
	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/service"
)

type NoteService interface {
	CreateManual(ctx context.Context, input service.CreateManualInput) (*domain.Note, error)
	CreateFromChat(ctx context.Context, input service.CreateFromChatInput) (*domain.Note, error)
	Get(ctx context.Context, id, userID string) (*domain.Note, error)
	List(ctx context.Context, input service.ListNotesInput) (*service.ListNotesOutput, error)
	UpdateContent(ctx context.Context, id, userID, content string) (*domain.Note, error)
	Delete(ctx context.Context, id, userID string) error
}

type NoteHandler struct {
	svc NoteService
}

func NewNoteHandler(svc NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

type CreateNoteRequest struct {
	Content string `json:"content"`
	// ChatID, when set, derives the note from that chat response instead of
	// Content.
	ChatID string `json:"chat_id,omitempty"`
}

type UpdateNoteRequest struct {
	Content string `json:"content"`
}

type NoteResponse struct {
	ID           string `json:"id"`
	NotebookID   string `json:"notebook_id"`
	Content      string `json:"content"`
	SourceType   string `json:"source_type"`
	LinkedChatID string `json:"linked_chat_id,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type NoteListResponse struct {
	Items   []*NoteResponse `json:"items"`
	Cursor  string          `json:"cursor,omitempty"`
	HasMore bool            `json:"has_more"`
}

func noteToResponse(n *domain.Note) *NoteResponse {
	return &NoteResponse{
		ID:           n.ID,
		NotebookID:   n.NotebookID,
		Content:      n.Content,
		SourceType:   string(n.SourceType),
		LinkedChatID: n.LinkedChatID,
		CreatedAt:    n.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    n.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	notebookID := chi.URLParam(r, "id")

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var note *domain.Note
	var err error
	if req.ChatID != "" {
		note, err = h.svc.CreateFromChat(r.Context(), service.CreateFromChatInput{
			UserID:     userID,
			NotebookID: notebookID,
			ChatID:     req.ChatID,
		})
	} else {
		if req.Content == "" {
			api.Error(w, http.StatusBadRequest, "content or chat_id is required")
			return
		}
		note, err = h.svc.CreateManual(r.Context(), service.CreateManualInput{
			UserID:     userID,
			NotebookID: notebookID,
			Content:    req.Content,
		})
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, noteToResponse(note))
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "noteID")

	note, err := h.svc.Get(r.Context(), id, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	notebookID := chi.URLParam(r, "id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.svc.List(r.Context(), service.ListNotesInput{
		UserID:     userID,
		NotebookID: notebookID,
		Cursor:     r.URL.Query().Get("cursor"),
		Limit:      limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*NoteResponse, 0, len(out.Items))
	for _, n := range out.Items {
		items = append(items, noteToResponse(n))
	}
	api.Success(w, http.StatusOK, &NoteListResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "noteID")

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	note, err := h.svc.UpdateContent(r.Context(), id, userID, req.Content)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "noteID")

	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
