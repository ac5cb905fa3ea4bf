package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell/internal/api/handlers"
	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/service"
)

type MockNotebookService struct {
	mock.Mock
}

func (m *MockNotebookService) Create(ctx context.Context, input service.CreateNotebookInput) (*domain.Notebook, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notebook), args.Error(1)
}

func (m *MockNotebookService) Get(ctx context.Context, id, userID string) (*domain.Notebook, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notebook), args.Error(1)
}

func (m *MockNotebookService) List(ctx context.Context, input service.ListNotebooksInput) (*service.ListNotebooksOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListNotebooksOutput), args.Error(1)
}

func (m *MockNotebookService) Rename(ctx context.Context, id, userID, title string) (*domain.Notebook, error) {
	args := m.Called(ctx, id, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notebook), args.Error(1)
}

func (m *MockNotebookService) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, input service.UploadInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id, userID string) (*domain.Document, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListDocumentsOutput), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockAnswerService struct {
	mock.Mock
}

func (m *MockAnswerService) AnswerQuery(ctx context.Context, input service.AnswerInput) (*service.AnswerOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerOutput), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) List(ctx context.Context, input service.ListChatInput) (*service.ListChatOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListChatOutput), args.Error(1)
}

func (m *MockChatService) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockChatService) Clear(ctx context.Context, notebookID, userID string) error {
	args := m.Called(ctx, notebookID, userID)
	return args.Error(0)
}

type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) CreateManual(ctx context.Context, input service.CreateManualInput) (*domain.Note, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteService) CreateFromChat(ctx context.Context, input service.CreateFromChatInput) (*domain.Note, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteService) Get(ctx context.Context, id, userID string) (*domain.Note, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteService) List(ctx context.Context, input service.ListNotesInput) (*service.ListNotesOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListNotesOutput), args.Error(1)
}

func (m *MockNoteService) UpdateContent(ctx context.Context, id, userID, content string) (*domain.Note, error) {
	args := m.Called(ctx, id, userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteService) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) ([]service.SearchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.SearchResult), args.Error(1)
}

func setupRouter() (http.Handler, *MockNotebookService, *MockAnswerService, *MockChatService, *MockNoteService, *MockSearchService) {
	notebookSvc := new(MockNotebookService)
	documentSvc := new(MockDocumentService)
	answerSvc := new(MockAnswerService)
	chatSvc := new(MockChatService)
	noteSvc := new(MockNoteService)
	searchSvc := new(MockSearchService)

	cfg := RouterConfig{
		NotebookHandler: handlers.NewNotebookHandler(notebookSvc),
		DocumentHandler: handlers.NewDocumentHandler(documentSvc),
		ChatHandler:     handlers.NewChatHandler(answerSvc, chatSvc),
		NoteHandler:     handlers.NewNoteHandler(noteSvc),
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
	}

	router := NewRouter(cfg)
	return router, notebookSvc, answerSvc, chatSvc, noteSvc, searchSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_ProtectedRoutes_RequireUserHeader(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/notebooks"},
		{http.MethodGet, "/notebooks"},
		{http.MethodGet, "/notebooks/nb-1"},
		{http.MethodPatch, "/notebooks/nb-1"},
		{http.MethodDelete, "/notebooks/nb-1"},
		{http.MethodPost, "/notebooks/nb-1/documents"},
		{http.MethodGet, "/notebooks/nb-1/documents"},
		{http.MethodPost, "/notebooks/nb-1/chat"},
		{http.MethodGet, "/notebooks/nb-1/chat"},
		{http.MethodDelete, "/notebooks/nb-1/chat"},
		{http.MethodPost, "/notebooks/nb-1/notes"},
		{http.MethodGet, "/notebooks/nb-1/notes"},
		{http.MethodPost, "/notebooks/nb-1/search"},
		{http.MethodGet, "/documents/doc-1"},
		{http.MethodDelete, "/documents/doc-1"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_GetNotebook_WithUserHeader(t *testing.T) {
	router, notebookSvc, _, _, _, _ := setupRouter()

	now := time.Now().UTC()
	notebookSvc.On("Get", mock.Anything, "nb-1", "user-1").Return(&domain.Notebook{
		ID:        "nb-1",
		UserID:    "user-1",
		Title:     "Research",
		CreatedAt: now,
		UpdatedAt: now,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/notebooks/nb-1", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	notebookSvc.AssertExpectations(t)
}

func TestRouter_GetNotebook_NotFound(t *testing.T) {
	router, notebookSvc, _, _, _, _ := setupRouter()

	notebookSvc.On("Get", mock.Anything, "nb-missing", "user-1").Return(nil, domain.ErrNotebookNotFound)

	req := httptest.NewRequest(http.MethodGet, "/notebooks/nb-missing", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	notebookSvc.AssertExpectations(t)
}

func TestRouter_Ask_RoutesToAnswerService(t *testing.T) {
	router, _, answerSvc, _, _, _ := setupRouter()

	now := time.Now().UTC()
	turn := &domain.ChatTurn{
		ID:         "turn-1",
		NotebookID: "nb-1",
		UserPrompt: "What does the report say?",
		AIResponse: "The report says revenue grew.",
		Metadata: domain.TurnMetadata{
			RetrievedChunks:     2,
			DocumentsReferenced: []string{"report.pdf"},
		},
		CreatedAt: now,
	}
	answerSvc.On("AnswerQuery", mock.Anything, service.AnswerInput{
		UserID:     "user-1",
		NotebookID: "nb-1",
		Question:   "What does the report say?",
	}).Return(&service.AnswerOutput{Turn: turn, State: domain.ResponseReady}, nil)

	body, err := json.Marshal(handlers.AskRequest{Question: "What does the report say?"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/notebooks/nb-1/chat", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "turn-1", data["id"])
	assert.Equal(t, "The report says revenue grew.", data["ai_response"])
	answerSvc.AssertExpectations(t)
}

func TestRouter_Ask_EmptyQuestionRejected(t *testing.T) {
	router, _, answerSvc, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/notebooks/nb-1/chat", bytes.NewReader([]byte(`{"question":""}`)))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	answerSvc.AssertNotCalled(t, "AnswerQuery", mock.Anything, mock.Anything)
}

func TestRouter_CreateNoteFromChat(t *testing.T) {
	router, _, _, _, noteSvc, _ := setupRouter()

	now := time.Now().UTC()
	noteSvc.On("CreateFromChat", mock.Anything, service.CreateFromChatInput{
		UserID:     "user-1",
		NotebookID: "nb-1",
		ChatID:     "turn-1",
	}).Return(&domain.Note{
		ID:           "note-1",
		NotebookID:   "nb-1",
		Content:      "The report says revenue grew.",
		SourceType:   domain.NoteSourceAIGenerated,
		LinkedChatID: "turn-1",
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/notebooks/nb-1/notes", bytes.NewReader([]byte(`{"chat_id":"turn-1"}`)))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ai_generated", data["source_type"])
	assert.Equal(t, "turn-1", data["linked_chat_id"])
	noteSvc.AssertExpectations(t)
}

func TestRouter_Search(t *testing.T) {
	router, _, _, _, _, searchSvc := setupRouter()

	searchSvc.On("Search", mock.Anything, mock.MatchedBy(func(input service.SearchInput) bool {
		return input.UserID == "user-1" && input.NotebookID == "nb-1" && input.Query == "revenue"
	})).Return([]service.SearchResult{
		{DocumentID: "doc-1", Filename: "report.pdf", ChunkIndex: 0, Snippet: "revenue grew", Similarity: 0.91},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/notebooks/nb-1/search", bytes.NewReader([]byte(`{"query":"revenue"}`)))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	searchSvc.AssertExpectations(t)
}
