package mocks

import (
	"context"
	"io"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/progress"
	"github.com/lukamv/studysuite/internal/quiz"
	"github.com/lukamv/studysuite/internal/services"
)

// MockStudyService is a mock implementation of services.StudyService
type MockStudyService struct {
	mock.Mock
}

func (m *MockStudyService) Questions(ctx context.Context) ([]models.Question, []quiz.Problem) {
	args := m.Called(ctx)
	var qs []models.Question
	if args.Get(0) != nil {
		qs = args.Get(0).([]models.Question)
	}
	var ps []quiz.Problem
	if args.Get(1) != nil {
		ps = args.Get(1).([]quiz.Problem)
	}
	return qs, ps
}

func (m *MockStudyService) Question(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockStudyService) Worklist(ctx context.Context, sel quiz.Selection, jump string) (services.WorklistResult, error) {
	args := m.Called(ctx, sel, jump)
	return args.Get(0).(services.WorklistResult), args.Error(1)
}

func (m *MockStudyService) Answer(ctx context.Context, questionID string, choice int) (services.AnswerResult, error) {
	args := m.Called(ctx, questionID, choice)
	return args.Get(0).(services.AnswerResult), args.Error(1)
}

func (m *MockStudyService) Progress(ctx context.Context) (progress.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(progress.Snapshot), args.Error(1)
}

func (m *MockStudyService) SyncProgress(ctx context.Context) (progress.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(progress.Snapshot), args.Error(1)
}

func (m *MockStudyService) ResetProgress(ctx context.Context) (progress.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(progress.Snapshot), args.Error(1)
}

// MockDeckService is a mock implementation of services.DeckService
type MockDeckService struct {
	mock.Mock
}

func (m *MockDeckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Deck), args.Error(1)
}

func (m *MockDeckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deck), args.Error(1)
}

func (m *MockDeckService) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Card), args.Int(1), args.Error(2)
}

func (m *MockDeckService) NextCard(ctx context.Context, deckID int64) (*models.Card, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockDeckService) ReviewCard(ctx context.Context, cardID int64, quality int, timeSeconds float64) (*models.Card, error) {
	args := m.Called(ctx, cardID, quality, timeSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockDeckService) ImportDecks(ctx context.Context, chapter int) error {
	args := m.Called(ctx, chapter)
	return args.Error(0)
}

// MockLibraryService is a mock implementation of services.LibraryService
type MockLibraryService struct {
	mock.Mock
}

func (m *MockLibraryService) List(ctx context.Context) ([]models.LibraryFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LibraryFile), args.Error(1)
}

func (m *MockLibraryService) Upload(ctx context.Context, name string, r io.Reader) ([]models.LibraryFile, error) {
	args := m.Called(ctx, name, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LibraryFile), args.Error(1)
}

func (m *MockLibraryService) Open(ctx context.Context, name string) (*os.File, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*os.File), args.Error(1)
}

func (m *MockLibraryService) Info(ctx context.Context, name string) (models.LibraryFile, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.LibraryFile), args.Error(1)
}

func (m *MockLibraryService) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockLibraryService) Rescan(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
