package api

import (
	"io"
	"net/http"

	"github.com/lukamv/studysuite/internal/logger"
)

func (s *Server) handleListMindmaps(w http.ResponseWriter, r *http.Request) {
	chapters, err := s.Mindmaps.Chapters(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"chapters": chapters})
}

func (s *Server) handleGetMindmap(w http.ResponseWriter, r *http.Request) {
	index, err := int64Param(r, "index")
	if err != nil {
		handleError(w, r, err)
		return
	}

	f, err := s.Mindmaps.Open(r.Context(), int(index))
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.Copy(w, f); err != nil {
		logger.FromContext(r.Context()).Warn("mindmap response interrupted: %v", err)
	}
}
