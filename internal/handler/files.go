package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/hcissey0/lecture-notes-app/internal/storage"
)

// FilesHandler serves local-storage objects behind signed URLs.
type FilesHandler struct {
	storage *storage.LocalStorage
}

func NewFilesHandler(local *storage.LocalStorage) *FilesHandler {
	return &FilesHandler{storage: local}
}

func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	objectPath := r.PathValue("path")

	err := h.storage.VerifyToken(r.URL.Query().Get("token"), objectPath)
	if err != nil {
		slog.Warn("rejected file token", "error", err, "path", objectPath)
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "link is invalid or has expired"})
		return
	}

	body, err := h.storage.Open(r.Context(), objectPath)
	if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidPath) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(path.Ext(objectPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// The default API policy would block the browser's PDF viewer.
	w.Header().Del("Content-Security-Policy")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)

	_, err = io.Copy(w, body)
	if err != nil {
		slog.Warn("file transfer interrupted", "error", err, "path", objectPath)
	}
}
