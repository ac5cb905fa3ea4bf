package domain

import "time"

// IngestionJobStatus is the lifecycle state of a queued ingestion job.
type IngestionJobStatus string

const (
	IngestionJobStatusPending   IngestionJobStatus = "pending"
	IngestionJobStatusCompleted IngestionJobStatus = "completed"
	IngestionJobStatusFailed    IngestionJobStatus = "failed"
)

// IngestionJob queues a document for background (re-)chunking and embedding.
type IngestionJob struct {
	ID          string
	DocumentID  string
	Status      IngestionJobStatus
	Retries     int
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ValidIngestionJobStatus reports whether the status is a known value.
func ValidIngestionJobStatus(s IngestionJobStatus) bool {
	switch s {
	case IngestionJobStatusPending, IngestionJobStatusCompleted, IngestionJobStatusFailed:
		return true
	}
	return false
}
