package handler

import (
	"net/http"

	"github.com/hcissey0/lecture-notes-app/internal/ctxkeys"
	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())
	profile, err := h.profileService.Profile(r.Context(), session.UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Update changes full_name and avatar_url. Unknown fields, including
// email, are rejected.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName  *string `json:"full_name"`
		AvatarURL *string `json:"avatar_url"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	session := ctxkeys.Session(r.Context())
	profile, err := h.profileService.UpdateProfile(r.Context(), session.UserID(), model.ProfileUpdate{
		FullName:  body.FullName,
		AvatarURL: body.AvatarURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
