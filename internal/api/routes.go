package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(s.identityMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/progress", s.handleGetProgress)
		r.Put("/progress", s.handleSyncProgress)
		r.Post("/progress/reset", s.handleResetProgress)

		r.Get("/questions", s.handleListQuestions)
		r.Get("/questions/worklist", s.handleWorklist)
		r.Get("/questions/{id}", s.handleGetQuestion)
		r.Post("/questions/{id}/answer", s.handleAnswerQuestion)

		r.Get("/decks", s.handleListDecks)
		r.Post("/decks/import", s.handleImportDecks)
		r.Get("/decks/{id}", s.handleGetDeck)
		r.Get("/decks/{id}/cards", s.handleListCards)
		r.Get("/decks/{id}/next", s.handleNextCard)
		r.Post("/cards/{id}/review", s.handleReviewCard)

		r.Get("/library", s.handleListLibrary)
		r.Post("/library", s.handleUploadLibrary)
		r.Post("/library/rescan", s.handleRescanLibrary)
		r.Get("/library/{name}", s.handleDownloadLibrary)
		r.Get("/library/{name}/info", s.handleLibraryInfo)
		r.Delete("/library/{name}", s.handleDeleteLibrary)

		r.Get("/mindmaps", s.handleListMindmaps)
		r.Get("/mindmaps/{index}", s.handleGetMindmap)
	})

	return r
}
