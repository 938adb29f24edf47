package handler

import (
	"net/http"

	"github.com/hcissey0/lecture-notes-app/internal/ctxkeys"
	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/service"
)

type SettingsHandler struct {
	profileService *service.ProfileService
}

func NewSettingsHandler(profileService *service.ProfileService) *SettingsHandler {
	return &SettingsHandler{
		profileService: profileService,
	}
}

func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	settings, err := h.profileService.Settings(r.Context(), ctxkeys.Session(r.Context()).UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd model.SettingsUpdate
	err := decodeJSON(r, &upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	settings, err := h.profileService.UpdateSettings(r.Context(), ctxkeys.Session(r.Context()).UserID(), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
