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

type AnswerService interface {
	AnswerQuery(ctx context.Context, input service.AnswerInput) (*service.AnswerOutput, error)
}

type ChatService interface {
	List(ctx context.Context, input service.ListChatInput) (*service.ListChatOutput, error)
	Delete(ctx context.Context, id, userID string) error
	Clear(ctx context.Context, notebookID, userID string) error
}

type ChatHandler struct {
	answers AnswerService
	chats   ChatService
}

func NewChatHandler(answers AnswerService, chats ChatService) *ChatHandler {
	return &ChatHandler{answers: answers, chats: chats}
}

type AskRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

type ChatTurnResponse struct {
	ID         string              `json:"id"`
	NotebookID string              `json:"notebook_id"`
	UserPrompt string              `json:"user_prompt"`
	AIResponse string              `json:"ai_response"`
	Metadata   domain.TurnMetadata `json:"metadata"`
	CreatedAt  string              `json:"created_at"`
}

type ChatListResponse struct {
	Items   []*ChatTurnResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func chatTurnToResponse(t *domain.ChatTurn) *ChatTurnResponse {
	return &ChatTurnResponse{
		ID:         t.ID,
		NotebookID: t.NotebookID,
		UserPrompt: t.UserPrompt,
		AIResponse: t.AIResponse,
		Metadata:   t.Metadata,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
	}
}

// Ask runs the retrieval-and-generation flow for one question.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	notebookID := chi.URLParam(r, "id")

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	out, err := h.answers.AnswerQuery(r.Context(), service.AnswerInput{
		UserID:      userID,
		NotebookID:  notebookID,
		Question:    req.Question,
		DocumentIDs: req.DocumentIDs,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, chatTurnToResponse(out.Turn))
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	notebookID := chi.URLParam(r, "id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.chats.List(r.Context(), service.ListChatInput{
		UserID:     userID,
		NotebookID: notebookID,
		Cursor:     r.URL.Query().Get("cursor"),
		Limit:      limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ChatTurnResponse, 0, len(out.Items))
	for _, t := range out.Items {
		items = append(items, chatTurnToResponse(t))
	}
	api.Success(w, http.StatusOK, &ChatListResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "chatID")

	if err := h.chats.Delete(r.Context(), id, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	notebookID := chi.URLParam(r, "id")

	if err := h.chats.Clear(r.Context(), notebookID, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
