package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lukamv/studysuite/internal/errors"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/quiz"
)

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, problems := s.Study.Questions(r.Context())
	respondJSON(w, r, http.StatusOK, map[string]any{
		"questions": questions,
		"problems":  problems,
		"total":     len(questions),
	})
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.Study.Question(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, q)
}

// selectionFromQuery builds a worklist selection from request parameters.
func selectionFromQuery(r *http.Request) quiz.Selection {
	q := r.URL.Query()
	sel := quiz.Selection{Mode: quiz.ParseMode(q.Get("mode"))}
	if v, err := strconv.Atoi(q.Get("range_start")); err == nil {
		sel.RangeStart = v
	}
	if v, err := strconv.Atoi(q.Get("range_end")); err == nil {
		sel.RangeEnd = v
	}
	if v, err := strconv.Atoi(q.Get("random_n")); err == nil {
		sel.RandomN = v
	}
	sel.Shuffle = q.Get("shuffle") == "true" || q.Get("shuffle") == "1"
	return sel
}

func (s *Server) handleWorklist(w http.ResponseWriter, r *http.Request) {
	sel := selectionFromQuery(r)
	jump := r.URL.Query().Get("jump")

	result, err := s.Study.Worklist(r.Context(), sel, jump)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

type answerRequest struct {
	Choice int `json:"choice"`
}

func (s *Server) handleAnswerQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("malformed answer body: %v", err)
		handleError(w, r, errors.NewBadRequestError("malformed request body"))
		return
	}

	result, err := s.Study.Answer(r.Context(), id, req.Choice)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}
