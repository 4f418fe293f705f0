package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lukamv/studysuite/internal/errors"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
)

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.Decks.ListDecks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	deck, err := s.Decks.GetDeck(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.CardFilter{DeckID: id}
	if v, perr := strconv.Atoi(q.Get("limit")); perr == nil {
		filter.Limit = v
	}
	if v, perr := strconv.Atoi(q.Get("offset")); perr == nil {
		filter.Offset = v
	}
	filter.DueOnly = q.Get("due_only") == "true"
	filter.Shuffle = q.Get("shuffle") == "true"

	cards, total, err := s.Decks.ListCards(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"cards": cards,
		"total": total,
	})
}

func (s *Server) handleNextCard(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.Decks.NextCard(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if card == nil {
		respondJSON(w, r, http.StatusOK, map[string]any{"card": nil, "done": true})
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"card": card, "done": false})
}

type reviewRequest struct {
	Quality     int     `json:"quality"`
	TimeSeconds float64 `json:"time_seconds"`
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, err := int64Param(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("malformed review body: %v", err)
		handleError(w, r, errors.NewBadRequestError("malformed request body"))
		return
	}
	if req.TimeSeconds < 0 {
		req.TimeSeconds = 0
	}

	card, err := s.Decks.ReviewCard(r.Context(), id, req.Quality, req.TimeSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleImportDecks(w http.ResponseWriter, r *http.Request) {
	chapter := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("chapter")); err == nil {
		chapter = v
	}

	if err := s.Decks.ImportDecks(r.Context(), chapter); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusAccepted, map[string]any{"queued": true})
}

func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NewBadRequestError("invalid " + name + " parameter")
	}
	return id, nil
}
