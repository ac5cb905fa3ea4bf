package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/inkwell-labs/inkwell/internal/domain"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3

	// batchSize caps how many pending jobs one poll picks up
	batchSize = 50
)

// IngestionJobRepository defines the interface for ingestion job persistence
type IngestionJobRepository interface {
	// GetPendingJobs retrieves pending ingestion jobs, oldest first
	GetPendingJobs(ctx context.Context, limit int) ([]*domain.IngestionJob, error)

	// UpdateJobStatus updates the status of an ingestion job
	UpdateJobStatus(ctx context.Context, jobID string, status domain.IngestionJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// DocumentReader loads the document a job points at
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// Ingester chunks and embeds one document
type Ingester interface {
	IngestDocument(ctx context.Context, doc *domain.Document) (int, error)
}

// IngestWorker processes ingestion jobs: it loads the document, runs
// chunk-and-embed, and records the outcome with bounded retries.
type IngestWorker struct {
	repo      IngestionJobRepository
	documents DocumentReader
	ingester  Ingester
}

// NewIngestWorker creates a new IngestWorker instance
func NewIngestWorker(repo IngestionJobRepository, documents DocumentReader, ingester Ingester) *IngestWorker {
	return &IngestWorker{
		repo:      repo,
		documents: documents,
		ingester:  ingester,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.GetPendingJobs(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending ingestion jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *IngestWorker) processJob(ctx context.Context, job *domain.IngestionJob) error {
	log.Printf("Processing job %s for document %s", job.ID, job.DocumentID)

	doc, err := w.documents.GetByID(ctx, job.DocumentID)
	if err != nil {
		// The document was deleted after the job was queued. There is
		// nothing left to ingest.
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return w.repo.UpdateJobStatus(ctx, job.ID, domain.IngestionJobStatusFailed, "document no longer exists")
		}
		return w.handleJobFailure(ctx, job, err)
	}

	chunks, err := w.ingester.IngestDocument(ctx, doc)
	if err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IngestionJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed: %d chunks stored for document %s", job.ID, chunks, doc.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IngestWorker) handleJobFailure(ctx context.Context, job *domain.IngestionJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IngestionJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IngestionJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
