package jobs

import "github.com/vytor/conceptpulse/internal/deck"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueDeckImport queues d for insertion. It never blocks and returns
	// worker.ErrQueueFull when the queue is saturated.
	EnqueueDeckImport(jobID string, d *deck.Deck) error
}
