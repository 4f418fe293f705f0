package models

import "time"

// Deck is one chapter of flashcards.
type Deck struct {
	ID        int64     `json:"id"`
	Chapter   int       `json:"chapter"`
	Title     string    `json:"title"`
	CardCount int       `json:"card_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Card is a single flashcard with its review scheduling state.
type Card struct {
	ID            int64     `json:"id"`
	DeckID        int64     `json:"deck_id"`
	Position      int       `json:"position"` // order within the deck
	Front         string    `json:"front"`    // HTML
	Back          string    `json:"back"`     // HTML
	DueAt         time.Time `json:"due_at"`
	IntervalDays  int       `json:"interval_days"`
	EaseFactor    float64   `json:"ease_factor"`
	TimesReviewed int       `json:"times_reviewed"`
	TimesCorrect  int       `json:"times_correct"`
	CreatedAt     time.Time `json:"created_at"`
}

// CardFilter narrows a card listing.
type CardFilter struct {
	DeckID  int64
	DueOnly bool
	Limit   int
	Offset  int
	Shuffle bool
}
