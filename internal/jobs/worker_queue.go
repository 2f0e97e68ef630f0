package jobs

import (
	"github.com/vytor/conceptpulse/internal/deck"
	"github.com/vytor/conceptpulse/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	importPool *worker.Pool
	cards      worker.CardInserter
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool *worker.Pool, cards worker.CardInserter) JobQueue {
	return &WorkerQueue{
		importPool: importPool,
		cards:      cards,
	}
}

func (q *WorkerQueue) EnqueueDeckImport(jobID string, d *deck.Deck) error {
	return q.importPool.Submit(&worker.ImportDeckJob{
		Cards: q.cards,
		Deck:  d,
		JobID: jobID,
	})
}
