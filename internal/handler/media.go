package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/commentdesk/internal/auth"
	"github.com/sakif/commentdesk/internal/service"
)

// MediaHandler serves /api/media. Every response body is the Graph API's
// own JSON, passed through unchanged.
type MediaHandler struct {
	media  *service.MediaService
	logger *slog.Logger
}

func NewMediaHandler(media *service.MediaService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{media: media, logger: logger}
}

type postCommentRequest struct {
	Message   string `json:"message"`
	CommentID string `json:"commentId"`
}

// HandleList → GET /api/media
func (h *MediaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())

	body, err := h.media.ListMedia(r.Context(), token)
	if err != nil {
		writeError(w, h.logger, "list media", err, "Failed to fetch media")
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// HandleComments → GET /api/media/{mediaId}/comments
func (h *MediaHandler) HandleComments(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	mediaID := chi.URLParam(r, "mediaId")

	body, err := h.media.ListComments(r.Context(), token, mediaID)
	if err != nil {
		writeError(w, h.logger, "list comments", err, "Failed to fetch comments")
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// HandlePostComment → POST /api/media/{mediaId}/comments
//
// Body: {"message": "...", "commentId": "..."}. With commentId the message
// is posted as a reply to that comment instead of on the media.
func (h *MediaHandler) HandlePostComment(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	mediaID := chi.URLParam(r, "mediaId")

	var req postCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, "post comment", err, "Failed to post comment")
		return
	}

	body, err := h.media.PostComment(r.Context(), token, mediaID, req.CommentID, req.Message)
	if err != nil {
		writeError(w, h.logger, "post comment", err, "Failed to post comment")
		return
	}
	writeRaw(w, http.StatusOK, body)
}
