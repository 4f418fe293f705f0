package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var cardColumns = []string{
	"id", "deck_id", "position", "front", "back", "due_at",
	"interval_days", "ease_factor", "times_reviewed", "times_correct", "created_at",
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func scanCard(row interface{ Scan(...any) error }, c *models.Card) error {
	return row.Scan(&c.ID, &c.DeckID, &c.Position, &c.Front, &c.Back, &c.DueAt,
		&c.IntervalDays, &c.EaseFactor, &c.TimesReviewed, &c.TimesCorrect, &c.CreatedAt)
}

func (r *cardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%d", id)

	var c models.Card
	err := scanCard(r.db.QueryRowContext(ctx, `
SELECT id, deck_id, position, front, back, due_at, interval_days, ease_factor, times_reviewed, times_correct, created_at
FROM cards
WHERE id = ?
`, id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found: id=%d", id)
		} else {
			log.Error("failed to get card: %v", err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) filterQuery(base squirrel.SelectBuilder, filter models.CardFilter) squirrel.SelectBuilder {
	if filter.DeckID != 0 {
		base = base.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if filter.DueOnly {
		base = base.Where(squirrel.Expr("due_at <= CURRENT_TIMESTAMP"))
	}
	return base
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: deck_id=%d, due_only=%t, shuffle=%t", filter.DeckID, filter.DueOnly, filter.Shuffle)

	query := r.filterQuery(sqlBuilder.Select(cardColumns...).From("cards"), filter)

	if filter.Shuffle {
		query = query.OrderBy("RANDOM()")
	} else {
		query = query.OrderBy("deck_id", "position")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	defer rows.Close()
	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := scanCard(rows, &c); err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) Count(ctx context.Context, filter models.CardFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query := r.filterQuery(sqlBuilder.Select("COUNT(*)").From("cards"), filter)
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build count query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count cards: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *cardRepository) NextDue(ctx context.Context, deckID int64, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("fetching next due cards: deck_id=%d, limit=%d", deckID, limit)

	if limit <= 0 {
		limit = 1
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, deck_id, position, front, back, due_at, interval_days, ease_factor, times_reviewed, times_correct, created_at
FROM cards
WHERE due_at <= CURRENT_TIMESTAMP
AND deck_id = ?
ORDER BY RANDOM()
LIMIT ?
`, deckID, limit)
	if err != nil {
		log.Error("failed to query due cards: %v", err)
		return nil, err
	}
	defer rows.Close()
	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := scanCard(rows, &c); err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d due cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) UpdateScheduling(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card scheduling: id=%d, interval=%d, ease=%.2f", c.ID, c.IntervalDays, c.EaseFactor)

	_, err := r.db.ExecContext(ctx, `
UPDATE cards
SET due_at = ?, interval_days = ?, ease_factor = ?, times_reviewed = ?, times_correct = ?
WHERE id = ?
`, c.DueAt, c.IntervalDays, c.EaseFactor, c.TimesReviewed, c.TimesCorrect, c.ID)
	if err != nil {
		log.Error("failed to update card: %v", err)
	}
	return err
}

func (r *cardRepository) InsertReviewHistory(ctx context.Context, cardID int64, quality int, timeSeconds float64) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting review history: card_id=%d, quality=%d, time=%.2fs", cardID, quality, timeSeconds)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO review_history (card_id, quality, time_seconds)
		VALUES (?, ?, ?)
	`, cardID, quality, timeSeconds)
	if err != nil {
		log.Error("failed to insert review history: %v", err)
	}
	return err
}
