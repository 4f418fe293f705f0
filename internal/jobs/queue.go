package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueLibraryScan() error
	EnqueueDeckImport(chapter int) error
}
