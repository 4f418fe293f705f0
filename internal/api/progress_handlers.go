package api

import (
	"net/http"

	"github.com/lukamv/studysuite/internal/logger"
)

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Study.Progress(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleSyncProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("syncing progress")

	snap, err := s.Study.SyncProgress(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Study.ResetProgress(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, snap)
}
