package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/inkwell-labs/inkwell/internal/domain"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIngestionJobRepository is a mock implementation of IngestionJobRepository
type MockIngestionJobRepository struct {
	mock.Mock
}

func (m *MockIngestionJobRepository) GetPendingJobs(ctx context.Context, limit int) ([]*domain.IngestionJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IngestionJob), args.Error(1)
}

func (m *MockIngestionJobRepository) UpdateJobStatus(ctx context.Context, jobID string, status domain.IngestionJobStatus, errMsg string) error {
	args := m.Called(ctx, jobID, status, errMsg)
	return args.Error(0)
}

func (m *MockIngestionJobRepository) IncrementRetries(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

// MockDocumentReader is a mock implementation of DocumentReader
type MockDocumentReader struct {
	mock.Mock
}

func (m *MockDocumentReader) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

// MockIngester is a mock implementation of Ingester
type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) IngestDocument(ctx context.Context, doc *domain.Document) (int, error) {
	args := m.Called(ctx, doc)
	return args.Int(0), args.Error(1)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestIngestWorker_ProcessJobs_NoPendingJobs(t *testing.T) {
	mockRepo := new(MockIngestionJobRepository)
	mockDocs := new(MockDocumentReader)
	mockIngester := new(MockIngester)

	mockRepo.On("GetPendingJobs", mock.Anything, batchSize).Return([]*domain.IngestionJob{}, nil)

	worker := NewIngestWorker(mockRepo, mockDocs, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIngester.AssertNotCalled(t, "IngestDocument", mock.Anything, mock.Anything)
}

func TestIngestWorker_ProcessJobs_Success(t *testing.T) {
	mockRepo := new(MockIngestionJobRepository)
	mockDocs := new(MockDocumentReader)
	mockIngester := new(MockIngester)

	job := &domain.IngestionJob{
		ID:         "job-1",
		DocumentID: "doc-1",
		Status:     domain.IngestionJobStatusPending,
	}
	doc := &domain.Document{ID: "doc-1", NotebookID: "nb-1", Content: "text"}

	mockRepo.On("GetPendingJobs", mock.Anything, batchSize).Return([]*domain.IngestionJob{job}, nil)
	mockDocs.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
	mockIngester.On("IngestDocument", mock.Anything, doc).Return(4, nil)
	mockRepo.On("UpdateJobStatus", mock.Anything, "job-1", domain.IngestionJobStatusCompleted, "").Return(nil)

	worker := NewIngestWorker(mockRepo, mockDocs, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIngester.AssertExpectations(t)
}

func TestIngestWorker_ProcessJobs_DocumentDeleted(t *testing.T) {
	mockRepo := new(MockIngestionJobRepository)
	mockDocs := new(MockDocumentReader)
	mockIngester := new(MockIngester)

	job := &domain.IngestionJob{ID: "job-1", DocumentID: "doc-gone", Status: domain.IngestionJobStatusPending}

	mockRepo.On("GetPendingJobs", mock.Anything, batchSize).Return([]*domain.IngestionJob{job}, nil)
	mockDocs.On("GetByID", mock.Anything, "doc-gone").Return(nil, domain.ErrDocumentNotFound)
	mockRepo.On("UpdateJobStatus", mock.Anything, "job-1", domain.IngestionJobStatusFailed, "document no longer exists").Return(nil)

	worker := NewIngestWorker(mockRepo, mockDocs, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	// A deleted document is a terminal failure, not a retry.
	mockRepo.AssertNotCalled(t, "IncrementRetries", mock.Anything, mock.Anything)
}

func TestIngestWorker_ProcessJobs_FailureWithRetry(t *testing.T) {
	mockRepo := new(MockIngestionJobRepository)
	mockDocs := new(MockDocumentReader)
	mockIngester := new(MockIngester)

	job := &domain.IngestionJob{ID: "job-1", DocumentID: "doc-1", Status: domain.IngestionJobStatusPending, Retries: 0}
	doc := &domain.Document{ID: "doc-1", Content: "text"}

	mockRepo.On("GetPendingJobs", mock.Anything, batchSize).Return([]*domain.IngestionJob{job}, nil)
	mockDocs.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
	mockIngester.On("IngestDocument", mock.Anything, doc).Return(0, errors.New("embedding failed"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateJobStatus", mock.Anything, "job-1", domain.IngestionJobStatusPending, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker := NewIngestWorker(mockRepo, mockDocs, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestIngestWorker_ProcessJobs_MaxRetriesExceeded(t *testing.T) {
	mockRepo := new(MockIngestionJobRepository)
	mockDocs := new(MockDocumentReader)
	mockIngester := new(MockIngester)

	job := &domain.IngestionJob{ID: "job-1", DocumentID: "doc-1", Status: domain.IngestionJobStatusPending, Retries: MaxRetries - 1}
	doc := &domain.Document{ID: "doc-1", Content: "text"}

	mockRepo.On("GetPendingJobs", mock.Anything, batchSize).Return([]*domain.IngestionJob{job}, nil)
	mockDocs.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
	mockIngester.On("IngestDocument", mock.Anything, doc).Return(0, errors.New("embedding failed"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateJobStatus", mock.Anything, "job-1", domain.IngestionJobStatusFailed, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker := NewIngestWorker(mockRepo, mockDocs, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
