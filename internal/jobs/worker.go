package jobs

import (
	"context"
	"log"
	"time"
)

// Processor does one round of background work when the worker ticks
type Processor interface {
	ProcessPending(ctx context.Context) error
}

// Worker runs a Processor on a fixed polling interval
type Worker struct {
	processor    Processor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewWorker(processor Processor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop and blocks until stopped
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("worker started with poll interval %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.processor.ProcessPending(ctx); err != nil {
				log.Printf("worker pass failed: %v", err)
			}
		}
	}
}

// Stop gracefully stops the worker and waits for the loop to exit
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("worker shutdown complete")
}
