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

type NotebookService interface {
	Create(ctx context.Context, input service.CreateNotebookInput) (*domain.Notebook, error)
	Get(ctx context.Context, id, userID string) (*domain.Notebook, error)
	List(ctx context.Context, input service.ListNotebooksInput) (*service.ListNotebooksOutput, error)
	Rename(ctx context.Context, id, userID, title string) (*domain.Notebook, error)
	Delete(ctx context.Context, id, userID string) error
}

type NotebookHandler struct {
	svc NotebookService
}

func NewNotebookHandler(svc NotebookService) *NotebookHandler {
	return &NotebookHandler{svc: svc}
}

type CreateNotebookRequest struct {
	Title string `json:"title"`
}

type RenameNotebookRequest struct {
	Title string `json:"title"`
}

type NotebookResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type NotebookListResponse struct {
	Items   []*NotebookResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func notebookToResponse(n *domain.Notebook) *NotebookResponse {
	return &NotebookResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
		UpdatedAt: n.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *NotebookHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateNotebookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	notebook, err := h.svc.Create(r.Context(), service.CreateNotebookInput{
		UserID: userID,
		Title:  req.Title,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, notebookToResponse(notebook))
}

func (h *NotebookHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	notebook, err := h.svc.Get(r.Context(), id, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, notebookToResponse(notebook))
}

func (h *NotebookHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.svc.List(r.Context(), service.ListNotebooksInput{
		UserID: userID,
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*NotebookResponse, 0, len(out.Items))
	for _, n := range out.Items {
		items = append(items, notebookToResponse(n))
	}
	api.Success(w, http.StatusOK, &NotebookListResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

func (h *NotebookHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	var req RenameNotebookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	notebook, err := h.svc.Rename(r.Context(), id, userID, req.Title)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, notebookToResponse(notebook))
}

func (h *NotebookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
