package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hcissey0/lecture-notes-app/internal/ctxkeys"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HomeHandler struct {
	db Pinger
}

func NewHomeHandler(db Pinger) *HomeHandler {
	return &HomeHandler{db: db}
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	name := "Lecture Notes"
	if cfg := ctxkeys.Config(r.Context()); cfg != nil {
		name = cfg.AppName
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "notes": "/api/notes"})
}

// Healthz reports whether the record store answers.
func (h *HomeHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	err := h.db.PingContext(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}
