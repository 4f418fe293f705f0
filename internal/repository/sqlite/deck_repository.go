package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/repository"
)

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Get(ctx context.Context, id int64) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck: id=%d", id)

	var d models.Deck
	err := r.db.QueryRowContext(ctx, `
SELECT d.id, d.chapter, d.title, d.created_at,
       (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id) AS card_count
FROM decks d
WHERE d.id = ?
`, id).Scan(&d.ID, &d.Chapter, &d.Title, &d.CreatedAt, &d.CardCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found: id=%d", id)
		} else {
			log.Error("failed to get deck: %v", err)
		}
		return nil, err
	}
	return &d, nil
}

func (r *deckRepository) GetByChapter(ctx context.Context, chapter int) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck by chapter: chapter=%d", chapter)

	var d models.Deck
	err := r.db.QueryRowContext(ctx, `
SELECT d.id, d.chapter, d.title, d.created_at,
       (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id) AS card_count
FROM decks d
WHERE d.chapter = ?
`, chapter).Scan(&d.ID, &d.Chapter, &d.Title, &d.CreatedAt, &d.CardCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found: chapter=%d", chapter)
		} else {
			log.Error("failed to get deck by chapter: %v", err)
		}
		return nil, err
	}
	return &d, nil
}

func (r *deckRepository) List(ctx context.Context) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks")

	rows, err := r.db.QueryContext(ctx, `
SELECT d.id, d.chapter, d.title, d.created_at,
       (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id) AS card_count
FROM decks d
ORDER BY d.chapter
`)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()
	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.Chapter, &d.Title, &d.CreatedAt, &d.CardCount); err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		decks = append(decks, d)
	}
	log.Debug("found %d decks", len(decks))
	return decks, rows.Err()
}

func (r *deckRepository) Replace(ctx context.Context, deck models.Deck, cards []models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("replacing deck: chapter=%d, title=%s, cards=%d", deck.Chapter, deck.Title, len(cards))

	var deckID int64
	err := tx(ctx, r.db, func(t *sql.Tx) error {
		// Scheduling state for an existing chapter is discarded on re-import.
		if _, err := t.ExecContext(ctx, `DELETE FROM decks WHERE chapter = ?`, deck.Chapter); err != nil {
			return err
		}
		res, err := t.ExecContext(ctx, `INSERT INTO decks (chapter, title) VALUES (?, ?)`, deck.Chapter, deck.Title)
		if err != nil {
			return err
		}
		deckID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		stmt, err := t.PrepareContext(ctx, `
INSERT INTO cards (deck_id, position, front, back)
VALUES (?, ?, ?, ?)
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, c := range cards {
			if _, err := stmt.ExecContext(ctx, deckID, i+1, c.Front, c.Back); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace deck: %v", err)
		return 0, err
	}
	log.Debug("deck replaced: id=%d", deckID)
	return deckID, nil
}

func (r *deckRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
