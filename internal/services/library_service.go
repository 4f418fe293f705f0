package services

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lukamv/studysuite/internal/errors"
	"github.com/lukamv/studysuite/internal/jobs"
	"github.com/lukamv/studysuite/internal/library"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/worker"
)

// LibraryService handles the PDF shelf: uploads, downloads and
// background metadata scans.
type LibraryService interface {
	List(ctx context.Context) ([]models.LibraryFile, error)
	Upload(ctx context.Context, name string, r io.Reader) ([]models.LibraryFile, error)
	Open(ctx context.Context, name string) (*os.File, error)
	Info(ctx context.Context, name string) (models.LibraryFile, error)
	Delete(ctx context.Context, name string) error
	Rescan(ctx context.Context) error
}

type libraryService struct {
	store *library.Store
	queue jobs.JobQueue
}

// NewLibraryService creates a new LibraryService
func NewLibraryService(store *library.Store, queue jobs.JobQueue) LibraryService {
	return &libraryService{store: store, queue: queue}
}

func (s *libraryService) List(ctx context.Context) ([]models.LibraryFile, error) {
	files, err := s.store.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return files, nil
}

// Upload stores the document and queues a metadata scan so page counts
// and excerpts appear shortly after. A zip upload is unpacked and every
// PDF member is stored.
func (s *libraryService) Upload(ctx context.Context, name string, r io.Reader) ([]models.LibraryFile, error) {
	log := logger.FromContext(ctx)

	var files []models.LibraryFile
	if strings.EqualFold(filepath.Ext(name), ".zip") {
		saved, err := s.uploadArchive(ctx, r)
		if err != nil {
			return nil, err
		}
		files = saved
	} else {
		file, err := s.store.Save(ctx, name, r)
		if err != nil {
			return nil, err
		}
		files = []models.LibraryFile{file}
	}

	if err := s.queue.EnqueueLibraryScan(); err != nil {
		// The upload itself succeeded; metadata just stays stale.
		log.Warn("could not queue library scan after upload: %v", err)
	}
	return files, nil
}

// uploadArchive spools the upload to a temp file so the zip directory at
// the end of the stream can be read.
func (s *libraryService) uploadArchive(ctx context.Context, r io.Reader) ([]models.LibraryFile, error) {
	tmp, err := os.CreateTemp("", "library-upload-*.zip")
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return s.store.SaveArchive(ctx, tmp, size)
}

func (s *libraryService) Open(ctx context.Context, name string) (*os.File, error) {
	return s.store.Open(ctx, name)
}

func (s *libraryService) Info(ctx context.Context, name string) (models.LibraryFile, error) {
	return s.store.Info(ctx, name)
}

func (s *libraryService) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

func (s *libraryService) Rescan(ctx context.Context) error {
	if err := s.queue.EnqueueLibraryScan(); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) {
			return errors.NewBadRequestError("scan queue is full, try again later")
		}
		return errors.NewInternalError(err)
	}
	return nil
}
