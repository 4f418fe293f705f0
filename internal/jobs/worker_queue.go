package jobs

import (
	"github.com/lukamv/studysuite/internal/repository"
	"github.com/lukamv/studysuite/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool     *worker.Pool
	scanner  worker.LibraryScanner
	deckRepo repository.DeckRepository
	deckDir  string
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, scanner worker.LibraryScanner, deckRepo repository.DeckRepository, deckDir string) JobQueue {
	return &WorkerQueue{
		pool:     pool,
		scanner:  scanner,
		deckRepo: deckRepo,
		deckDir:  deckDir,
	}
}

func (q *WorkerQueue) EnqueueLibraryScan() error {
	return q.pool.Submit(&worker.LibraryScanJob{Scanner: q.scanner})
}

func (q *WorkerQueue) EnqueueDeckImport(chapter int) error {
	return q.pool.Submit(&worker.DeckImportJob{
		DeckRepo: q.deckRepo,
		Dir:      q.deckDir,
		Chapter:  chapter,
	})
}
