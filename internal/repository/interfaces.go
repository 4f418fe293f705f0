package repository

import (
	"context"

	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/progress"
)

// ProgressStore handles remote per-user study progress. Declared in
// internal/progress next to its consumer; aliased here so the data-access
// surface reads as one set. Implemented by internal/supabase.
type ProgressStore = progress.Store

// DeckRepository handles flashcard deck data access
type DeckRepository interface {
	Get(ctx context.Context, id int64) (*models.Deck, error)
	GetByChapter(ctx context.Context, chapter int) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	// Replace atomically swaps in a deck and its cards, removing any
	// previous deck for the same chapter.
	Replace(ctx context.Context, deck models.Deck, cards []models.Card) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// CardRepository handles flashcard data access
type CardRepository interface {
	Get(ctx context.Context, id int64) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	Count(ctx context.Context, filter models.CardFilter) (int, error)
	NextDue(ctx context.Context, deckID int64, limit int) ([]models.Card, error)
	UpdateScheduling(ctx context.Context, card models.Card) error
	InsertReviewHistory(ctx context.Context, cardID int64, quality int, timeSeconds float64) error
}
