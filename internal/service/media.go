package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sakif/commentdesk/internal/apperror"
)

// MediaService proxies media and comment calls to the Graph API. Responses
// are returned untouched; Instagram enforces its own content rules, so
// message text is not validated here.
type MediaService struct {
	graph  GraphAPI
	logger *slog.Logger
}

func NewMediaService(graph GraphAPI, logger *slog.Logger) *MediaService {
	return &MediaService{graph: graph, logger: logger}
}

// ListMedia returns the caller's media list.
func (s *MediaService) ListMedia(ctx context.Context, token string) (json.RawMessage, error) {
	if token == "" {
		return nil, apperror.Unauthorized("No token provided")
	}
	body, err := s.graph.Media(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("service/media: listing media: %w", err)
	}
	return body, nil
}

// ListComments returns the comments on mediaID, each with its replies.
func (s *MediaService) ListComments(ctx context.Context, token, mediaID string) (json.RawMessage, error) {
	if token == "" {
		return nil, apperror.Unauthorized("No token provided")
	}
	body, err := s.graph.Comments(ctx, token, mediaID)
	if err != nil {
		return nil, fmt.Errorf("service/media: listing comments on %s: %w", mediaID, err)
	}
	return body, nil
}

// PostComment comments on mediaID, or replies to commentID when it is set.
func (s *MediaService) PostComment(ctx context.Context, token, mediaID, commentID, message string) (json.RawMessage, error) {
	if token == "" {
		return nil, apperror.Unauthorized("No token provided")
	}

	body, err := s.graph.PostComment(ctx, token, mediaID, commentID, message)
	if err != nil {
		return nil, fmt.Errorf("service/media: posting comment (media=%s, replyTo=%s): %w", mediaID, commentID, err)
	}

	s.logger.Info("comment posted",
		slog.String("mediaID", mediaID),
		slog.String("replyTo", commentID),
	)
	return body, nil
}
