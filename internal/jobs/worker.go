package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor drains whatever work is currently pending. Implementations
// must be safe to call repeatedly and return once the backlog is empty.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drives a JobProcessor on a fixed cadence until stopped.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start polls until the context is cancelled or Stop is called. An initial
// pass runs before the first tick so queued work is not left waiting a full
// interval after startup.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("ingestion worker polling every %v", w.pollInterval)

	w.run(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("ingestion worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("ingestion worker stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *Worker) run(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil {
		log.Printf("ingestion pass failed: %v", err)
	}
}

// Stop signals the loop to exit and blocks until it has.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
