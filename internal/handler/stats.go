package handler

import (
	"net/http"

	"github.com/hcissey0/lecture-notes-app/internal/ctxkeys"
	"github.com/hcissey0/lecture-notes-app/internal/service"
)

type StatsHandler struct {
	noteService *service.NoteService
}

func NewStatsHandler(noteService *service.NoteService) *StatsHandler {
	return &StatsHandler{noteService: noteService}
}

func (h *StatsHandler) Platform(w http.ResponseWriter, r *http.Request) {
	stats, err := h.noteService.PlatformStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	stats, err := h.noteService.UserStats(r.Context(), ctxkeys.Session(r.Context()).UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) Note(w http.ResponseWriter, r *http.Request) {
	stats, err := h.noteService.NoteStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
