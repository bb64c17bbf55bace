package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/commentdesk/internal/service"
)

// AuthHandler exposes the Instagram login handshake.
//
//   - HandleAuthURL  → GET  /api/auth/instagram/url
//   - HandleCallback → POST /api/auth/instagram/callback
//
// The front end owns the redirect: it sends the user to the URL we return,
// receives the code on its own callback page and posts it to us.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type authURLResponse struct {
	URL string `json:"url"`
}

type callbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

type callbackUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ExternalID string `json:"externalId"`
}

type callbackResponse struct {
	User  callbackUser `json:"user"`
	Token string       `json:"token"`
}

// HandleAuthURL returns the Instagram consent screen URL.
func (h *AuthHandler) HandleAuthURL(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.AuthURL()
	if err != nil {
		writeError(w, h.logger, "auth url", err, "Failed to build authorization URL")
		return
	}
	writeJSON(w, http.StatusOK, authURLResponse{URL: u})
}

// HandleCallback trades the posted code for a token and upserts the user.
//
// Request:  {"code": "...", "state": "..."}   (state optional)
// Response: {"user": {"id", "username", "externalId"}, "token": "..."}
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, "instagram callback", err, "Authentication failed")
		return
	}

	result, err := h.auth.Callback(r.Context(), req.Code, req.State)
	if err != nil {
		writeError(w, h.logger, "instagram callback", err, "Authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, callbackResponse{
		User: callbackUser{
			ID:         result.User.ID,
			Username:   result.User.Username,
			ExternalID: result.User.ExternalID,
		},
		Token: result.Token,
	})
}
