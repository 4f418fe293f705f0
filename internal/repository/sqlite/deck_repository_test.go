package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/repository"
	"github.com/lukamv/studysuite/internal/repository/sqlite"
	"github.com/lukamv/studysuite/internal/testutil"
)

type DeckRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.DeckRepository
}

func (s *DeckRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewDeckRepository(s.db)
}

func (s *DeckRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func sampleCards(n int) []models.Card {
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{
			Front: "front",
			Back:  "back",
		}
	}
	return cards
}

func (s *DeckRepositorySuite) TestReplaceAndGet() {
	ctx := context.Background()

	id, err := s.repo.Replace(ctx, models.Deck{Chapter: 3, Title: "Ratio Analysis"}, sampleCards(4))
	s.Require().NoError(err)
	s.Require().NotZero(id)

	deck, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(3, deck.Chapter)
	s.Equal("Ratio Analysis", deck.Title)
	s.Equal(4, deck.CardCount)
}

func (s *DeckRepositorySuite) TestReplaceExistingChapter() {
	ctx := context.Background()

	oldID, err := s.repo.Replace(ctx, models.Deck{Chapter: 1, Title: "Introduction"}, sampleCards(2))
	s.Require().NoError(err)

	newID, err := s.repo.Replace(ctx, models.Deck{Chapter: 1, Title: "Introduction v2"}, sampleCards(5))
	s.Require().NoError(err)
	s.NotEqual(oldID, newID)

	// Previous deck and its cards are gone.
	_, err = s.repo.Get(ctx, oldID)
	s.ErrorIs(err, sql.ErrNoRows)

	deck, err := s.repo.GetByChapter(ctx, 1)
	s.Require().NoError(err)
	s.Equal(newID, deck.ID)
	s.Equal("Introduction v2", deck.Title)
	s.Equal(5, deck.CardCount)

	var orphans int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE deck_id = ?`, oldID).Scan(&orphans))
	s.Zero(orphans, "cascade delete should remove the old deck's cards")
}

func (s *DeckRepositorySuite) TestReplaceAssignsPositions() {
	ctx := context.Background()

	cards := []models.Card{
		{Front: "a", Back: "1"},
		{Front: "b", Back: "2"},
		{Front: "c", Back: "3"},
	}
	id, err := s.repo.Replace(ctx, models.Deck{Chapter: 2, Title: "Costing"}, cards)
	s.Require().NoError(err)

	rows, err := s.db.QueryContext(ctx, `SELECT position, front FROM cards WHERE deck_id = ? ORDER BY position`, id)
	s.Require().NoError(err)
	defer rows.Close()

	var positions []int
	var fronts []string
	for rows.Next() {
		var pos int
		var front string
		s.Require().NoError(rows.Scan(&pos, &front))
		positions = append(positions, pos)
		fronts = append(fronts, front)
	}
	s.Equal([]int{1, 2, 3}, positions)
	s.Equal([]string{"a", "b", "c"}, fronts)
}

func (s *DeckRepositorySuite) TestList() {
	ctx := context.Background()

	_, err := s.repo.Replace(ctx, models.Deck{Chapter: 5, Title: "Budgeting"}, sampleCards(1))
	s.Require().NoError(err)
	_, err = s.repo.Replace(ctx, models.Deck{Chapter: 2, Title: "Costing"}, sampleCards(3))
	s.Require().NoError(err)

	decks, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(decks, 2)
	s.Equal(2, decks[0].Chapter, "decks should be ordered by chapter")
	s.Equal(5, decks[1].Chapter)
	s.Equal(3, decks[0].CardCount)
}

func (s *DeckRepositorySuite) TestDelete() {
	ctx := context.Background()

	id, err := s.repo.Replace(ctx, models.Deck{Chapter: 4, Title: "Variance"}, sampleCards(2))
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(ctx, id))

	_, err = s.repo.Get(ctx, id)
	s.ErrorIs(err, sql.ErrNoRows)

	s.ErrorIs(s.repo.Delete(ctx, id), sql.ErrNoRows)
}

func TestDeckRepositorySuite(t *testing.T) {
	suite.Run(t, new(DeckRepositorySuite))
}
