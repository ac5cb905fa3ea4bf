package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/llm"
	"github.com/inkwell-labs/inkwell/internal/pagination"
)

// MockNotebookRepository is a mock implementation of NotebookRepositoryInterface
type MockNotebookRepository struct {
	mock.Mock
}

func (m *MockNotebookRepository) Create(ctx context.Context, n *domain.Notebook) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotebookRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Notebook, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notebook), args.Error(1)
}

func (m *MockNotebookRepository) ListByUser(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) (*NotebookPageResult, error) {
	args := m.Called(ctx, userID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*NotebookPageResult), args.Error(1)
}

func (m *MockNotebookRepository) Update(ctx context.Context, n *domain.Notebook) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotebookRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetNames(ctx context.Context, notebookID string) (map[string]string, error) {
	args := m.Called(ctx, notebookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockDocumentRepository) ListByNotebook(ctx context.Context, notebookID string, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	args := m.Called(ctx, notebookID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentPageResult), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChatRepository is a mock implementation of ChatRepositoryInterface
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Create(ctx context.Context, t *domain.ChatTurn) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockChatRepository) GetByID(ctx context.Context, id string) (*domain.ChatTurn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatTurn), args.Error(1)
}

func (m *MockChatRepository) ListByNotebook(ctx context.Context, notebookID string, cursor *pagination.Cursor, limit int) (*ChatPageResult, error) {
	args := m.Called(ctx, notebookID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatPageResult), args.Error(1)
}

func (m *MockChatRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChatRepository) DeleteByNotebook(ctx context.Context, notebookID string) error {
	args := m.Called(ctx, notebookID)
	return args.Error(0)
}

// MockNoteRepository is a mock implementation of NoteRepositoryInterface
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, n *domain.Note) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) ListByNotebook(ctx context.Context, notebookID string, cursor *pagination.Cursor, limit int) (*NotePageResult, error) {
	args := m.Called(ctx, notebookID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*NotePageResult), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, n *domain.Note) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEmbeddingRepository is a mock implementation of EmbeddingRepositoryInterface
type MockEmbeddingRepository struct {
	mock.Mock
}

func (m *MockEmbeddingRepository) ReplaceDocumentChunks(ctx context.Context, documentID string, records []*domain.EmbeddingRecord) error {
	args := m.Called(ctx, documentID, records)
	return args.Error(0)
}

func (m *MockEmbeddingRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockEmbeddingRepository) SearchChunks(ctx context.Context, query domain.SearchQuery) ([]domain.RetrievedChunk, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RetrievedChunk), args.Error(1)
}

// MockEmbedder is a mock implementation of the embedding provider surface
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string, task llm.TaskType) ([]float32, error) {
	args := m.Called(ctx, text, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string, task llm.TaskType) ([][]float32, error) {
	args := m.Called(ctx, texts, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbedder) ModelName() string {
	return "mock-embedding-model"
}

// MockGenerator is a mock implementation of GeneratorInterface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.GenerateResult), args.Error(1)
}

func (m *MockGenerator) ModelName() string {
	return "mock-generation-model"
}

// MockRetriever is a mock implementation of RetrieverInterface
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, input RetrieveInput) (*domain.RetrievalResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetrievalResult), args.Error(1)
}
