package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/commentdesk/internal/auth"
	"github.com/sakif/commentdesk/internal/service"
)

// ProfileHandler serves /api/user/profile. Routes are mounted behind
// auth.RequireToken.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGet returns the Instagram profile merged with local overrides.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())

	profile, err := h.profiles.Get(r.Context(), token)
	if err != nil {
		writeError(w, h.logger, "get profile", err, "Failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdate applies {fullName?, bio?} and returns the stored user.
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())

	var upd service.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, h.logger, "update profile", err, "Failed to update profile")
		return
	}

	user, err := h.profiles.Update(r.Context(), token, upd)
	if err != nil {
		writeError(w, h.logger, "update profile", err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
