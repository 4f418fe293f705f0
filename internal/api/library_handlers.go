package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lukamv/studysuite/internal/errors"
	"github.com/lukamv/studysuite/internal/logger"
)

// Uploads are capped well above any study-guide PDF.
const maxUploadBytes = 128 << 20

func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	files, err := s.Library.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleUploadLibrary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Warn("failed to parse upload form: %v", err)
		handleError(w, r, errors.NewBadRequestError("malformed multipart upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("missing file field"))
		return
	}
	defer file.Close()

	saved, err := s.Library.Upload(r.Context(), header.Filename, file)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, map[string]any{"files": saved})
}

func (s *Server) handleDownloadLibrary(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := s.Library.Open(r.Context(), name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	if _, err := io.Copy(w, f); err != nil {
		logger.FromContext(r.Context()).Warn("library download interrupted: %v", err)
	}
}

func (s *Server) handleLibraryInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.Library.Info(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, info)
}

func (s *Server) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	if err := s.Library.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleRescanLibrary(w http.ResponseWriter, r *http.Request) {
	if err := s.Library.Rescan(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusAccepted, map[string]any{"queued": true})
}
