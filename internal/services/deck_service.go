package services

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/lukamv/studysuite/internal/errors"
	"github.com/lukamv/studysuite/internal/flashcard"
	"github.com/lukamv/studysuite/internal/jobs"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/repository"
	"github.com/lukamv/studysuite/internal/worker"
)

// DeckService handles flashcard-related business logic
type DeckService interface {
	ListDecks(ctx context.Context) ([]models.Deck, error)
	GetDeck(ctx context.Context, id int64) (*models.Deck, error)
	ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error)
	NextCard(ctx context.Context, deckID int64) (*models.Card, error)
	ReviewCard(ctx context.Context, cardID int64, quality int, timeSeconds float64) (*models.Card, error)
	ImportDecks(ctx context.Context, chapter int) error
}

type deckService struct {
	decks repository.DeckRepository
	cards repository.CardRepository
	queue jobs.JobQueue
}

// NewDeckService creates a new DeckService
func NewDeckService(decks repository.DeckRepository, cards repository.CardRepository, queue jobs.JobQueue) DeckService {
	return &deckService{decks: decks, cards: cards, queue: queue}
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("deck", id)
		}
		return nil, errors.NewInternalError(err)
	}
	return deck, nil
}

func (s *deckService) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error) {
	cards, err := s.cards.List(ctx, filter)
	if err != nil {
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.cards.Count(ctx, filter)
	if err != nil {
		return nil, 0, errors.NewInternalError(err)
	}
	return cards, total, nil
}

func (s *deckService) NextCard(ctx context.Context, deckID int64) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting next card: deck_id=%d", deckID)

	cards, err := s.cards.NextDue(ctx, deckID, 1)
	if err != nil {
		log.Error("failed to get next due card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(cards) == 0 {
		log.Debug("no cards due for review: deck_id=%d", deckID)
		return nil, nil
	}
	return &cards[0], nil
}

func (s *deckService) ReviewCard(ctx context.Context, cardID int64, quality int, timeSeconds float64) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("reviewing card: card_id=%d, quality=%d", cardID, quality)

	if !flashcard.ValidGrade(quality) {
		return nil, errors.NewValidationError("quality", "must be between 0 and 3")
	}

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("card", cardID)
		}
		log.Error("failed to get card: %v", err)
		return nil, errors.NewInternalError(err)
	}

	updated := flashcard.ApplyReview(*card, quality)

	log.Debug("applied review, new interval=%d days, ease_factor=%.2f", updated.IntervalDays, updated.EaseFactor)

	if err := s.cards.UpdateScheduling(ctx, updated); err != nil {
		log.Error("failed to update card: %v", err)
		return nil, errors.NewInternalError(err)
	}

	// Store review history with timing data (non-blocking)
	if timeSeconds > 0 {
		if err := s.cards.InsertReviewHistory(ctx, card.ID, quality, timeSeconds); err != nil {
			log.Warn("failed to store review history: %v", err)
			// Don't fail the review if history storage fails
		}
	}

	return &updated, nil
}

func (s *deckService) ImportDecks(ctx context.Context, chapter int) error {
	log := logger.FromContext(ctx)
	log.Info("queueing deck import: chapter=%d", chapter)

	if err := s.queue.EnqueueDeckImport(chapter); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) {
			return errors.NewBadRequestError("import queue is full, try again later")
		}
		return errors.NewInternalError(err)
	}
	return nil
}
