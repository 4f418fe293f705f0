package services

import (
	"context"
	stderrors "errors"
	"math/rand"
	"sync"
	"time"

	"github.com/lukamv/studysuite/internal/errors"
	"github.com/lukamv/studysuite/internal/identity"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/progress"
	"github.com/lukamv/studysuite/internal/quiz"
)

// AnswerResult is what the student sees after submitting an answer.
type AnswerResult struct {
	Correct      bool              `json:"correct"`
	CorrectIndex int               `json:"correct_index"`
	Explanation  string            `json:"explanation,omitempty"`
	Progress     progress.Snapshot `json:"progress"`
}

// WorklistResult is a practice worklist plus the position to resume at.
type WorklistResult struct {
	IDs    []string `json:"ids"`
	Total  int      `json:"total"`
	Jumped int      `json:"jumped_to"`
	Exact  bool     `json:"exact_match"`
}

// StudyService drives question practice and progress tracking. Each
// authenticated user gets a server-side session holding the working
// snapshot and a reconciler against the remote progress row.
type StudyService interface {
	Questions(ctx context.Context) ([]models.Question, []quiz.Problem)
	Question(ctx context.Context, id string) (*models.Question, error)
	Worklist(ctx context.Context, sel quiz.Selection, jump string) (WorklistResult, error)
	Answer(ctx context.Context, questionID string, choice int) (AnswerResult, error)
	Progress(ctx context.Context) (progress.Snapshot, error)
	SyncProgress(ctx context.Context) (progress.Snapshot, error)
	ResetProgress(ctx context.Context) (progress.Snapshot, error)
}

// studySession is the per-user mutable state, a server-side stand-in
// for what the browser session used to hold.
type studySession struct {
	mu          sync.Mutex
	rec         *progress.Reconciler
	working     progress.Snapshot
	loaded      bool
	fingerprint string
	order       []string
}

type studyService struct {
	store     progress.Store
	questions []models.Question
	problems  []quiz.Problem
	byID      map[string]*models.Question

	mu       sync.Mutex
	sessions map[string]*studySession
}

// NewStudyService creates a StudyService over a loaded question bank.
// Choice labels are repaired once here so spreadsheet artifacts never
// reach a response.
func NewStudyService(store progress.Store, questions []models.Question, problems []quiz.Problem) StudyService {
	byID := make(map[string]*models.Question, len(questions))
	for i := range questions {
		for j, choice := range questions[i].Choices {
			questions[i].Choices[j] = quiz.CleanLabel(choice)
		}
		byID[questions[i].ID] = &questions[i]
	}
	return &studyService{
		store:     store,
		questions: questions,
		problems:  problems,
		byID:      byID,
		sessions:  make(map[string]*studySession),
	}
}

func (s *studyService) session(userID string) *studySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &studySession{
			rec:     progress.NewReconciler(s.store),
			working: progress.NewSnapshot(),
		}
		s.sessions[userID] = sess
	}
	return sess
}

func (s *studyService) Questions(ctx context.Context) ([]models.Question, []quiz.Problem) {
	return s.questions, s.problems
}

func (s *studyService) Question(ctx context.Context, id string) (*models.Question, error) {
	q, ok := s.byID[id]
	if !ok {
		return nil, errors.NewNotFoundError("question", id)
	}
	return q, nil
}

// Worklist filters and orders the bank for a selection. The ordering is
// cached per session and per selection fingerprint, so paging through a
// shuffled worklist does not reshuffle it.
func (s *studyService) Worklist(ctx context.Context, sel quiz.Selection, jump string) (WorklistResult, error) {
	log := logger.FromContext(ctx)

	snap := progress.NewSnapshot()
	var sess *studySession
	if user, ok := identity.FromContext(ctx); ok {
		sess = s.session(user.UserID)
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if err := s.ensureLoaded(ctx, sess, user.UserID); err != nil {
			return WorklistResult{}, err
		}
		snap = sess.working
	}

	pool := quiz.FilterPool(s.questions, sel, snap)
	fp := sel.Fingerprint()

	var ids []string
	if sess != nil && sess.fingerprint == fp && sess.order != nil {
		ids = sess.order
	} else {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		ids = quiz.OrderIDs(pool, sel, rng)
		if sess != nil {
			sess.fingerprint = fp
			sess.order = ids
		}
	}

	result := WorklistResult{IDs: ids, Total: len(ids)}
	if jump != "" {
		worklist := quiz.OrderByIDs(s.questions, ids)
		result.Jumped, result.Exact = quiz.JumpTo(worklist, jump)
	}
	log.Debug("built worklist: mode=%s size=%d", sel.Mode, len(ids))
	return result, nil
}

// Answer grades a submission, updates the session's working snapshot and
// pushes the merged progress to the remote store. Anonymous users still
// get their answer graded; nothing is recorded for them.
func (s *studyService) Answer(ctx context.Context, questionID string, choice int) (AnswerResult, error) {
	log := logger.FromContext(ctx)

	q, ok := s.byID[questionID]
	if !ok {
		return AnswerResult{}, errors.NewNotFoundError("question", questionID)
	}
	if choice < 0 || choice >= len(q.Choices) {
		return AnswerResult{}, errors.NewValidationError("choice", "out of range for question")
	}

	result := AnswerResult{
		Correct:      choice == q.CorrectIndex,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
	}

	user, ok := identity.FromContext(ctx)
	if !ok {
		log.Debug("anonymous answer graded, not recorded: question=%s", questionID)
		return result, nil
	}

	sess := s.session(user.UserID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := s.ensureLoaded(ctx, sess, user.UserID); err != nil {
		return AnswerResult{}, err
	}

	sess.working.RecordAnswer(q.ID, q.DeckID, result.Correct)

	merged, persisted, err := sess.rec.Save(ctx, user.UserID, sess.working)
	if err != nil {
		return AnswerResult{}, toAppError(err)
	}
	if persisted {
		sess.adoptMerged(merged)
	}

	result.Progress = sess.working.Clone()
	return result, nil
}

func (s *studyService) Progress(ctx context.Context) (progress.Snapshot, error) {
	user, ok := identity.FromContext(ctx)
	if !ok {
		return progress.Snapshot{}, errors.NewUnauthenticatedError()
	}

	sess := s.session(user.UserID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := s.ensureLoaded(ctx, sess, user.UserID); err != nil {
		return progress.Snapshot{}, err
	}
	return sess.working.Clone(), nil
}

// SyncProgress pushes the session's working snapshot and adopts the
// merged result, picking up anything other sessions saved in between.
// An explicit sync that does not reach the store is reported as an
// upstream failure; answer submissions stay best-effort.
func (s *studyService) SyncProgress(ctx context.Context) (progress.Snapshot, error) {
	user, ok := identity.FromContext(ctx)
	if !ok {
		return progress.Snapshot{}, errors.NewUnauthenticatedError()
	}

	sess := s.session(user.UserID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := s.ensureLoaded(ctx, sess, user.UserID); err != nil {
		return progress.Snapshot{}, err
	}

	merged, persisted, err := sess.rec.Save(ctx, user.UserID, sess.working)
	if err != nil {
		return progress.Snapshot{}, toAppError(err)
	}
	if !persisted {
		return progress.Snapshot{}, errors.NewUpstreamError(stderrors.New("progress sync did not reach the store"))
	}
	sess.adoptMerged(merged)
	return sess.working.Clone(), nil
}

// ResetProgress zeroes the session locally and saves. The delta merge
// never subtracts, so remote totals from other sessions survive; only
// this session starts over.
func (s *studyService) ResetProgress(ctx context.Context) (progress.Snapshot, error) {
	user, ok := identity.FromContext(ctx)
	if !ok {
		return progress.Snapshot{}, errors.NewUnauthenticatedError()
	}
	log := logger.FromContext(ctx)
	log.Info("resetting local progress: user=%s", user.UserID)

	sess := s.session(user.UserID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := s.ensureLoaded(ctx, sess, user.UserID); err != nil {
		return progress.Snapshot{}, err
	}

	sess.working = progress.NewSnapshot()
	merged, persisted, err := sess.rec.Save(ctx, user.UserID, sess.working)
	if err != nil {
		return progress.Snapshot{}, toAppError(err)
	}
	if persisted {
		sess.adoptMerged(merged)
	}
	return sess.working.Clone(), nil
}

// ensureLoaded pulls the remote snapshot into a fresh session. Callers
// must hold sess.mu.
func (s *studyService) ensureLoaded(ctx context.Context, sess *studySession, userID string) error {
	if sess.loaded {
		return nil
	}
	snap, err := sess.rec.Load(ctx, userID)
	if err != nil {
		return toAppError(err)
	}
	sess.working = snap
	sess.loaded = true
	return nil
}

// adoptMerged replaces the working counters with the merged result while
// keeping the session-local per-deck breakdown. Callers must hold sess.mu.
func (sess *studySession) adoptMerged(merged progress.Snapshot) {
	byDeck := sess.working.ByDeck
	sess.working = merged
	sess.working.ByDeck = byDeck
}

func toAppError(err error) error {
	if err == progress.ErrUnauthenticated {
		return errors.NewUnauthenticatedError()
	}
	return errors.NewInternalError(err)
}
