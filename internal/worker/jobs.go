package worker

import (
	"context"

	"github.com/lukamv/studysuite/internal/flashcard"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/repository"
)

// LibraryScanner refreshes PDF shelf metadata.
// Declared here to avoid importing the library package from jobs.
type LibraryScanner interface {
	Scan(ctx context.Context) error
}

// LibraryScanJob refreshes cached PDF metadata for the whole shelf.
type LibraryScanJob struct {
	Scanner LibraryScanner
}

func (j *LibraryScanJob) Name() string { return "library_scan" }

func (j *LibraryScanJob) Run(ctx context.Context) error {
	return j.Scanner.Scan(ctx)
}

// DeckImportJob loads chapter decks from disk and replaces them in the
// database. A zero Chapter imports every deck found in the directory.
type DeckImportJob struct {
	DeckRepo repository.DeckRepository
	Dir      string
	Chapter  int
}

func (j *DeckImportJob) Name() string { return "deck_import" }

func (j *DeckImportJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("dir", j.Dir)
	log.Info("starting deck import")

	files, err := flashcard.FindDeckFiles(j.Dir)
	if err != nil {
		log.Error("failed to list deck files: %v", err)
		return err
	}
	titles := flashcard.LoadTitles(j.Dir)

	var imported int
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			log.Warn("deck import cancelled: %v", err)
			return err
		}
		if j.Chapter != 0 && file.Chapter != j.Chapter {
			continue
		}
		cards, err := flashcard.LoadDeckFile(file.Path)
		if err != nil {
			log.Warn("skipping deck chapter=%d: %v", file.Chapter, err)
			continue
		}
		deck := models.Deck{
			Chapter: file.Chapter,
			Title:   flashcard.DeckTitle(titles, file.Chapter),
		}
		if _, err := j.DeckRepo.Replace(ctx, deck, cards); err != nil {
			log.Error("failed to import deck chapter=%d: %v", file.Chapter, err)
			return err
		}
		imported++
	}

	log.Info("deck import complete: %d decks", imported)
	return nil
}
