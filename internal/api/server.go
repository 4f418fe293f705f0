package api

import (
	"encoding/json"
	"net/http"

	"github.com/lukamv/studysuite/internal/db"
	"github.com/lukamv/studysuite/internal/identity"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/mindmap"
	"github.com/lukamv/studysuite/internal/services"
)

type Server struct {
	Study    services.StudyService
	Decks    services.DeckService
	Library  services.LibraryService
	Mindmaps *mindmap.Gallery
	Identity identity.Provider
	DB       *db.DB
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}
